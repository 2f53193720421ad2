package rest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phytoscan/phytoscan-api/internal/model"
	"github.com/phytoscan/phytoscan-api/internal/reportmap"
	"github.com/phytoscan/phytoscan-api/util"
	"github.com/phytoscan/phytoscan-api/util/tracing"
	"github.com/phytoscan/phytoscan-api/util/values"
)

func (api *API) DiagnoseRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/", Handler(api.DiagnoseImage))
	})

	return mux
}

// DiagnoseImage runs the AI verdict over an uploaded photo. mode=offline
// skips the cloud model; consent=1 stores the image and a map report.
func (api *API) DiagnoseImage(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return respondWithError(err, "unable to parse upload", values.BadRequestBody, &tc)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return respondWithError(err, "missing image file", values.BadRequestBody, &tc)
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return respondWithError(err, "unable to read image", values.Error, &tc)
	}

	mode := r.FormValue("mode")
	if mode != "offline" {
		mode = "online"
	}

	var verdict model.DiagnosisResponse
	switch mode {
	case "online":
		if api.Deps.Gemini == nil {
			api.Deps.Metrics.ObserveDiagnose(mode, "error")
			return respondWithError(fmt.Errorf("gemini client not configured"), "AI diagnosis unavailable", values.Error, &tc)
		}
		d, err := api.Deps.Gemini.DiagnoseImage(r.Context(), imageBytes, header.Header.Get("Content-Type"))
		if err != nil {
			api.Deps.Metrics.ObserveDiagnose(mode, "error")
			return respondWithError(err, "AI diagnosis failed", values.Error, &tc)
		}
		verdict = model.DiagnosisResponse{
			Type:           d.Type,
			Name:           d.Name,
			Confidence:     d.Confidence,
			Stage:          d.Stage,
			Recommendation: d.Recommendation,
			Treatment: model.TreatmentPlan{
				Natural:  d.Treatment.Natural,
				Chemical: d.Treatment.Chemical,
			},
			Mode: mode,
		}
	case "offline":
		verdict = model.DiagnosisResponse{
			Type:           "Indeterminado",
			Name:           "Motor offline no conectado",
			Confidence:     util.Float64Ptr(0),
			Stage:          "N/A",
			Recommendation: "Carga el modelo offline y vuelve a intentar.",
			Treatment:      model.TreatmentPlan{Natural: []string{}, Chemical: []string{}},
			Mode:           mode,
		}
	}

	var confidence float64
	if verdict.Confidence != nil {
		confidence = *verdict.Confidence
	}
	verdict.Severity = string(reportmap.SeverityFromConfidence(confidence))

	if r.FormValue("consent") == "1" {
		if err := api.saveConsentedReport(r, imageBytes, &verdict); err != nil {
			// The verdict already succeeded; report the save failure
			// without discarding it.
			api.Deps.Metrics.ObserveDiagnose(mode, "error")
			return respondWithError(err, "diagnosis succeeded but saving the report failed", values.Error, &tc)
		}
	}

	api.Deps.Metrics.ObserveDiagnose(mode, "success")

	return &ServerResponse{
		Message:    "Diagnosis completed",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       verdict,
	}
}

func (api *API) saveConsentedReport(r *http.Request, imageBytes []byte, verdict *model.DiagnosisResponse) error {
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return err
	}

	folder := fmt.Sprintf("reports/%s/%s", time.Now().Format("2006/01/02"), userID.String())
	imageURL, _, err := api.Deps.Cloudinary.UploadImage(r.Context(), bytes.NewReader(imageBytes), folder)
	if err != nil {
		return err
	}
	verdict.ImageURL = imageURL

	report := reportmap.NormalizedReport{
		ID:        util.GenerateUUID().String(),
		Diagnosis: verdict.Name,
		Category:  verdict.Type,
		CreatedAt: time.Now(),
		Severity:  reportmap.Severity(verdict.Severity),
		ImageURL:  imageURL,
	}
	if lat, err := strconv.ParseFloat(r.FormValue("lat"), 64); err == nil {
		report.Latitude = &lat
	}
	if lon, err := strconv.ParseFloat(r.FormValue("lon"), 64); err == nil {
		report.Longitude = &lon
	}
	report = reportmap.Classify(report)

	if err := api.InsertFlatReportRepo(r.Context(), report); err != nil {
		return err
	}
	verdict.ReportID = report.ID
	return nil
}
