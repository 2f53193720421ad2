package rest

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phytoscan/phytoscan-api/internal/reportmap"
	"github.com/phytoscan/phytoscan-api/util"
	"github.com/phytoscan/phytoscan-api/util/tracing"
	"github.com/phytoscan/phytoscan-api/util/values"
)

// Heat intensities per severity level, matching the client's gradient.
const (
	heatIntensityHigh   = 0.9
	heatIntensityMedium = 0.6
	heatIntensityLow    = 0.4
)

func (api *API) MapRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/reports", Handler(api.GetMapReports))
	mux.Method(http.MethodGet, "/reports/export.csv", Handler(api.ExportMapReportsCSV))

	return mux
}

func filterStateFromQuery(r *http.Request) reportmap.FilterState {
	q := r.URL.Query()
	return reportmap.FilterState{
		Country:      q.Get("country"),
		Department:   q.Get("depto"),
		Municipality: q.Get("muni"),
		Category:     q.Get("cat"),
		Diagnosis:    q.Get("diag"),
		Severity:     q.Get("sev"),
		DateFrom:     q.Get("from"),
		DateTo:       q.Get("to"),
	}
}

type heatPoint struct {
	Intensity float64 `json:"intensity"`
}

type mapReportsResponse struct {
	Reports        []reportmap.NormalizedReport `json:"reports"`
	Total          int                          `json:"total"`
	Plotted        int                          `json:"plotted"`
	SeverityCounts map[reportmap.Severity]int   `json:"severity_counts"`
	Facets         reportmap.Facets             `json:"facets"`
	HeatShape      string                       `json:"heat_shape"`
	HeatPoints     []heatPoint                  `json:"heat_points"`
	ShareURL       string                       `json:"share_url"`
}

func heatIntensity(sev reportmap.Severity) float64 {
	switch sev {
	case reportmap.SeverityHigh:
		return heatIntensityHigh
	case reportmap.SeverityMedium:
		return heatIntensityMedium
	default:
		return heatIntensityLow
	}
}

func (api *API) GetMapReports(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	filter := filterStateFromQuery(r)
	result, err := api.ReportView.Query(r.Context(), filter)
	if err != nil {
		return respondWithError(err, "could not load reports", values.Error, &tc)
	}

	// Only placeable reports go on the map; the totals still count the
	// coordinate-less ones.
	var coords []util.Coordinate
	var points []heatPoint
	for _, rep := range result.Reports {
		if !rep.HasCoordinates() {
			continue
		}
		coords = append(coords, util.Coordinate{Lat: *rep.Latitude, Lon: *rep.Longitude})
		points = append(points, heatPoint{Intensity: heatIntensity(rep.Severity)})
	}

	shareURL := api.Config.PublicBaseURL + "/map/reports"
	if qs := filter.QueryString(); qs != "" {
		shareURL += "?" + qs
	}

	resp := mapReportsResponse{
		Reports:        result.Reports,
		Total:          len(result.Reports),
		Plotted:        len(coords),
		SeverityCounts: result.SeverityCounts,
		Facets:         result.Facets,
		HeatShape:      util.EncodePolyline(coords),
		HeatPoints:     points,
		ShareURL:       shareURL,
	}

	return &ServerResponse{
		Message:    "Reports retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       resp,
	}
}

var csvExportHeaders = []string{
	"id", "latitude", "longitude", "diagnosis", "category", "created_at",
	"image_url", "localidad", "municipio", "departamento", "country_name",
	"country_code", "severity", "precision_level", "alert_radius_km",
}

// ExportMapReportsCSV streams the filtered reports as a CSV download.
// It writes the body itself and returns nil.
func (api *API) ExportMapReportsCSV(w http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	filter := filterStateFromQuery(r)
	result, err := api.ReportView.Query(r.Context(), filter)
	if err != nil {
		return respondWithError(err, "could not load reports", values.Error, &tc)
	}

	filename := fmt.Sprintf("reportes_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvExportHeaders); err != nil {
		return respondWithError(err, "failed to write csv", values.Error, &tc)
	}

	for _, rep := range result.Reports {
		row := []string{
			rep.ID,
			formatOptFloat(rep.Latitude),
			formatOptFloat(rep.Longitude),
			rep.Diagnosis,
			rep.Category,
			rep.CreatedAt.Format(time.RFC3339),
			rep.ImageURL,
			rep.Locality,
			rep.Municipality,
			rep.Department,
			rep.CountryName,
			rep.CountryCode,
			string(rep.Severity),
			rep.PrecisionLevel,
			strconv.FormatFloat(rep.AlertRadiusOrDefault(), 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return respondWithError(err, "failed to write csv", values.Error, &tc)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return respondWithError(err, "failed to flush csv", values.Error, &tc)
	}
	return nil
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ReportListRoutes serves the flat normalized report list. With
// offline=1 it bypasses the database chain and reads the bundled file,
// mirroring the client's no-connectivity path.
func (api *API) ReportListRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/", Handler(api.ListReports))

	return mux
}

func queryOrDefault(q url.Values, key, fallback string) string {
	if v := q.Get(key); v != "" {
		return v
	}
	return fallback
}

func (api *API) ListReports(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)
	q := r.URL.Query()

	if q.Get("offline") == "1" {
		src := &reportmap.OfflineSource{
			Path: api.Config.OfflineDataPath,
			ISO3: queryOrDefault(q, "iso3", "NIC"),
			From: queryOrDefault(q, "from", "2022-01-01"),
			To:   queryOrDefault(q, "to", "2025-12-31"),
		}
		reports, err := src.Fetch(r.Context())
		if err != nil {
			return respondWithError(err, "could not load offline reports", values.Error, &tc)
		}
		for i := range reports {
			reports[i] = reportmap.Classify(reports[i])
		}
		return &ServerResponse{
			Message:    "Offline reports retrieved successfully",
			Status:     values.Success,
			StatusCode: util.StatusCode(values.Success),
			Data:       reports,
		}
	}

	err := api.ReportView.Refresh(r.Context())
	reports := api.ReportView.Reports()
	if err != nil && len(reports) == 0 {
		return respondWithError(err, "could not load reports", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Reports retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       reports,
	}
}
