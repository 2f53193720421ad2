package reportmap

import (
	"math"
	"time"
)

// Severity is the three-level urgency classification shown on the map.
type Severity string

const (
	SeverityHigh   Severity = "alta"
	SeverityMedium Severity = "media"
	SeverityLow    Severity = "baja"
)

const (
	// PlaceholderDiagnosis is used when no threat name could be resolved.
	PlaceholderDiagnosis = "Desconocido"

	// DefaultAlertRadiusKm is the buffer-zone radius drawn around a report
	// that does not carry its own.
	DefaultAlertRadiusKm = 10.0

	// FetchLimit caps how many rows a source may return per cycle.
	FetchLimit = 5000
)

// SeverityFromConfidence maps a continuous AI confidence score onto the
// discrete severity scale: >=0.8 alta, >=0.5 media, else baja.
func SeverityFromConfidence(confidence float64) Severity {
	switch {
	case confidence >= 0.8:
		return SeverityHigh
	case confidence >= 0.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// NormalizedReport is the canonical record every source materializes into.
// It is immutable once produced; the filter engine only derives views.
type NormalizedReport struct {
	ID             string    `json:"id"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	Diagnosis      string    `json:"diagnosis"`
	Category       string    `json:"category,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Severity       Severity  `json:"severity"`
	Locality       string    `json:"localidad,omitempty"`
	Municipality   string    `json:"municipio,omitempty"`
	Department     string    `json:"departamento,omitempty"`
	CountryName    string    `json:"country_name,omitempty"`
	CountryCode    string    `json:"country_code,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	PrecisionLevel string    `json:"precision_level,omitempty"`
	AlertRadiusKm  *float64  `json:"alert_radius_km,omitempty"`
}

// HasCoordinates reports whether the record can be placed on a map.
// Both coordinates must be present and finite.
func (r NormalizedReport) HasCoordinates() bool {
	if r.Latitude == nil || r.Longitude == nil {
		return false
	}
	if math.IsNaN(*r.Latitude) || math.IsInf(*r.Latitude, 0) {
		return false
	}
	if math.IsNaN(*r.Longitude) || math.IsInf(*r.Longitude, 0) {
		return false
	}
	return true
}

// AlertRadiusOrDefault returns the buffer-zone radius in kilometers.
func (r NormalizedReport) AlertRadiusOrDefault() float64 {
	if r.AlertRadiusKm != nil {
		return *r.AlertRadiusKm
	}
	return DefaultAlertRadiusKm
}
