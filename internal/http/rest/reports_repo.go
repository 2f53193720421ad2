package rest

import (
	"context"
	"log"

	"github.com/phytoscan/phytoscan-api/internal/reportmap"
)

// InsertFlatReportRepo writes one consented diagnosis into the flat
// reports table the map resolver reads as its third source.
func (api *API) InsertFlatReportRepo(ctx context.Context, r reportmap.NormalizedReport) error {
	stmt := `
        INSERT INTO reports (
            id, latitude, longitude, diagnosis, category, created_at,
            image_url, localidad, municipio, departamento, severity,
            precision_level, alert_radius_km, country_code, country_name
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err := api.DB.Exec(ctx, stmt,
		r.ID, r.Latitude, r.Longitude, r.Diagnosis, r.Category, r.CreatedAt,
		nullIfEmpty(r.ImageURL), nullIfEmpty(r.Locality), nullIfEmpty(r.Municipality),
		nullIfEmpty(r.Department), string(r.Severity), nullIfEmpty(r.PrecisionLevel),
		r.AlertRadiusKm, nullIfEmpty(r.CountryCode), nullIfEmpty(r.CountryName),
	)
	if err != nil {
		log.Println("error inserting report", err)
		return err
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
