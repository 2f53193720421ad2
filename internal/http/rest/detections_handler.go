package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phytoscan/phytoscan-api/internal/model"
	"github.com/phytoscan/phytoscan-api/internal/reportmap"
	"github.com/phytoscan/phytoscan-api/internal/stream"
	"github.com/phytoscan/phytoscan-api/util"
	"github.com/phytoscan/phytoscan-api/util/tracing"
	"github.com/phytoscan/phytoscan-api/util/values"
	"github.com/phytoscan/phytoscan-api/util/websockets"
)

func (api *API) DetectionRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/threats", Handler(api.ListThreats))

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/", Handler(api.CreateDetection))
		r.Method(http.MethodGet, "/", Handler(api.ListDetections))
	})

	return mux
}

func (api *API) CreateDetection(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.CreateDetectionRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "invalid detection payload", values.BadRequestBody, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	mode := req.Mode
	if mode == "" {
		mode = model.ModeOnline
	}

	detection := model.Detection{
		UserID:          &userID,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		GPSPrecision:    req.GPSPrecision,
		ScannedAt:       time.Now(),
		ThreatID:        req.ThreatID,
		MunicipalityID:  req.MunicipalityID,
		Confidence:      req.Confidence,
		ImageID:         req.ImageID,
		Mode:            mode,
		ValidationState: model.ValidationPending,
		Notes:           req.Notes,
	}

	created, err := api.InsertDetectionRepo(r.Context(), detection)
	if err != nil {
		return respondWithError(err, "failed to create detection", values.Error, &tc)
	}

	api.announceDetection(created)

	return &ServerResponse{
		Message:    "Detection recorded successfully",
		Status:     values.Created,
		StatusCode: util.StatusCode(values.Created),
		Data:       created,
	}
}

// announceDetection fans the new detection out to Kafka and to nearby
// websocket subscribers. Both paths are fire and forget.
func (api *API) announceDetection(d model.Detection) {
	var confidence float64
	if d.Confidence != nil {
		confidence = *d.Confidence
	}
	severity := reportmap.SeverityFromConfidence(confidence)

	event := stream.DetectionEvent{
		ID:        strconv.FormatInt(d.ID, 10),
		Diagnosis: reportmap.PlaceholderDiagnosis,
		Severity:  string(severity),
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		CreatedAt: d.ScannedAt,
	}
	if d.UserID != nil {
		event.UserID = d.UserID.String()
	}

	go api.Deps.Publisher.PublishDetection(context.Background(), event)

	if d.Latitude != nil && d.Longitude != nil {
		alert := websockets.Message{
			Type:     websockets.MsgTypeDetectionAlert,
			Content:  string(severity),
			Latitude: *d.Latitude, Longitude: *d.Longitude,
		}
		if payload, err := json.Marshal(alert); err == nil {
			go api.Deps.WebSocket.BroadcastDetectionAlert(payload, *d.Latitude, *d.Longitude, reportmap.DefaultAlertRadiusKm)
		}
	}
}

func (api *API) ListDetections(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	limit, offset := pageParams(r, 100, 500)

	detections, err := api.ListDetectionsRepo(r.Context(), limit, offset)
	if err != nil {
		return respondWithError(err, "failed to list detections", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Detections retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       detections,
	}
}

func pageParams(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func (api *API) ListThreats(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	threats, err := api.ListThreatsRepo(r.Context())
	if err != nil {
		return respondWithError(err, "failed to list threats", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Threats retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       threats,
	}
}
