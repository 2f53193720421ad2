package rest

import (
	"context"
	"log"

	"github.com/phytoscan/phytoscan-api/internal/model"
)

func (api *API) InsertDetectionRepo(ctx context.Context, d model.Detection) (model.Detection, error) {
	stmt := `
        INSERT INTO "Detecciones_Campo" (
            latitud,
            longitud,
            precision_gps,
            fecha_hora_scan,
            id_amenaza_detectada,
            id_municipio,
            confianza_ia,
            id_usuario,
            id_imagen_scan,
            modo_diagnostico,
            estado_validacion,
            notas_usuario
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id_deteccion
    `
	err := api.DB.QueryRow(ctx, stmt,
		d.Latitude, d.Longitude, d.GPSPrecision, d.ScannedAt,
		d.ThreatID, d.MunicipalityID, d.Confidence,
		d.UserID, d.ImageID, d.Mode, d.ValidationState, d.Notes,
	).Scan(&d.ID)
	if err != nil {
		log.Println("error inserting detection", err)
		return model.Detection{}, err
	}
	return d, nil
}

func (api *API) ListDetectionsRepo(ctx context.Context, limit, offset int) ([]model.Detection, error) {
	stmt := `
        SELECT id_deteccion, id_usuario, latitud, longitud, precision_gps, fecha_hora_scan,
            id_amenaza_detectada, id_municipio, confianza_ia, id_imagen_scan,
            modo_diagnostico, estado_validacion, notas_usuario
        FROM "Detecciones_Campo"
        ORDER BY fecha_hora_scan DESC
        LIMIT $1 OFFSET $2
    `
	rows, err := api.DB.Query(ctx, stmt, limit, offset)
	if err != nil {
		log.Println("error listing detections", err)
		return nil, err
	}
	defer rows.Close()

	var detections []model.Detection
	for rows.Next() {
		var d model.Detection
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Latitude, &d.Longitude, &d.GPSPrecision, &d.ScannedAt,
			&d.ThreatID, &d.MunicipalityID, &d.Confidence, &d.ImageID,
			&d.Mode, &d.ValidationState, &d.Notes,
		); err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}
	return detections, rows.Err()
}

func (api *API) ListThreatsRepo(ctx context.Context) ([]model.Threat, error) {
	stmt := `
        SELECT a.id_amenaza, a.nombre_comun, a.nombre_cientifico, a.id_categoria, c.nombre_categoria
        FROM "Amenazas" a
        LEFT JOIN "Categorias" c ON c.id_categoria = a.id_categoria
        ORDER BY a.nombre_comun
    `
	rows, err := api.DB.Query(ctx, stmt)
	if err != nil {
		log.Println("error listing threats", err)
		return nil, err
	}
	defer rows.Close()

	var threats []model.Threat
	for rows.Next() {
		var t model.Threat
		if err := rows.Scan(&t.ID, &t.CommonName, &t.ScientificName, &t.CategoryID, &t.Category); err != nil {
			return nil, err
		}
		threats = append(threats, t)
	}
	return threats, rows.Err()
}
