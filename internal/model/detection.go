package model

import (
	"time"

	"github.com/google/uuid"
)

// Detection modes and validation states.
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
	ModePrueba  = "prueba"

	ValidationPending  = "pendiente"
	ValidationAccepted = "validado"
	ValidationRejected = "rechazado"
)

// Detection is one georeferenced field scan row.
type Detection struct {
	ID              int64      `json:"id"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	GPSPrecision    *float64   `json:"gps_precision,omitempty"`
	ScannedAt       time.Time  `json:"scanned_at"`
	ThreatID        *int64     `json:"threat_id,omitempty"`
	MunicipalityID  *int64     `json:"municipality_id,omitempty"`
	Confidence      *float64   `json:"confidence,omitempty"`
	ImageID         *int64     `json:"image_id,omitempty"`
	Mode            string     `json:"mode"`
	ValidationState string     `json:"validation_state"`
	Notes           *string    `json:"notes,omitempty"`
}

type CreateDetectionRequest struct {
	Latitude       *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude      *float64 `json:"longitude" validate:"omitempty,longitude"`
	GPSPrecision   *float64 `json:"gps_precision,omitempty" validate:"omitempty,gte=0"`
	ThreatID       *int64   `json:"threat_id,omitempty"`
	MunicipalityID *int64   `json:"municipality_id,omitempty"`
	Confidence     *float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	ImageID        *int64   `json:"image_id,omitempty"`
	Mode           string   `json:"mode" validate:"omitempty,oneof=online offline prueba"`
	Notes          *string  `json:"notes,omitempty"`
}

// Threat is a catalog entry for a pest or disease.
type Threat struct {
	ID             int64   `json:"id"`
	CommonName     string  `json:"common_name"`
	ScientificName *string `json:"scientific_name,omitempty"`
	CategoryID     *int64  `json:"category_id,omitempty"`
	Category       *string `json:"category,omitempty"`
}

type Municipality struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

type Department struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CountryID *int64 `json:"country_id,omitempty"`
}

type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	ISO  string `json:"iso"`
}
