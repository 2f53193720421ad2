package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phytoscan/phytoscan-api/util"
	"github.com/phytoscan/phytoscan-api/util/tracing"
	"github.com/phytoscan/phytoscan-api/util/values"
)

func (api *API) StatsRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/", Handler(api.GetStats))
	mux.Method(http.MethodGet, "/daily", Handler(api.GetDailyStats))
	mux.Method(http.MethodGet, "/threats", Handler(api.GetThreatStats))
	mux.Method(http.MethodGet, "/departments", Handler(api.GetDepartmentStats))

	return mux
}

func (api *API) GetStats(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	stats, err := api.GetStatsRepo(r.Context())
	if err != nil {
		return respondWithError(err, "failed to compute stats", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Stats retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       stats,
	}
}

func (api *API) GetDailyStats(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	daily, err := api.DailyStatsRepo(r.Context())
	if err != nil {
		return respondWithError(err, "failed to compute daily stats", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Daily stats retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       daily,
	}
}

func (api *API) GetThreatStats(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	threats, err := api.TopThreatsRepo(r.Context())
	if err != nil {
		return respondWithError(err, "failed to compute threat stats", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Threat stats retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       threats,
	}
}

func (api *API) GetDepartmentStats(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	departments, err := api.DepartmentStatsRepo(r.Context())
	if err != nil {
		return respondWithError(err, "failed to compute department stats", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Department stats retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       departments,
	}
}
