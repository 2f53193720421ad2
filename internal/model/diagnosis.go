package model

type TreatmentPlan struct {
	Natural  []string `json:"natural"`
	Chemical []string `json:"chemical"`
}

// DiagnosisResponse is the verdict returned to the client after an
// image scan, online or offline.
type DiagnosisResponse struct {
	Type           string        `json:"type"` // Plaga | Enfermedad | Saludable | Indeterminado
	Name           string        `json:"name"`
	Confidence     *float64      `json:"confidence"`
	Stage          string        `json:"stage"`
	Recommendation string        `json:"recommendation"`
	Treatment      TreatmentPlan `json:"treatment"`
	Severity       string        `json:"severity"`
	Mode           string        `json:"mode"` // online | offline
	ImageURL       string        `json:"image_url,omitempty"`
	ReportID       string        `json:"report_id,omitempty"`
}
