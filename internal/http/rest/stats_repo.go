package rest

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/phytoscan/phytoscan-api/internal/model"
)

func (api *API) GetStatsRepo(ctx context.Context) (model.StatsResponse, error) {
	var stats model.StatsResponse

	totalStmt := `SELECT COUNT(*) FROM "Detecciones_Campo"`
	if err := api.DB.QueryRow(ctx, totalStmt).Scan(&stats.TotalDetections); err != nil {
		log.Println("error counting detections", err)
		return model.StatsResponse{}, err
	}

	var err error
	if stats.Daily, err = api.DailyStatsRepo(ctx); err != nil {
		return model.StatsResponse{}, err
	}
	if stats.TopThreats, err = api.TopThreatsRepo(ctx); err != nil {
		return model.StatsResponse{}, err
	}
	if stats.ByDepartment, err = api.DepartmentStatsRepo(ctx); err != nil {
		return model.StatsResponse{}, err
	}
	return stats, nil
}

func (api *API) DailyStatsRepo(ctx context.Context) ([]model.DailyCount, error) {
	stmt := `
        SELECT TO_CHAR(fecha_hora_scan::date, 'YYYY-MM-DD') AS day, COUNT(*)
        FROM "Detecciones_Campo"
        WHERE fecha_hora_scan > NOW() - INTERVAL '30 days'
        GROUP BY day
        ORDER BY day
    `
	rows, err := api.DB.Query(ctx, stmt)
	if err != nil {
		log.Println("error loading daily stats", err)
		return nil, err
	}
	defer rows.Close()

	var daily []model.DailyCount
	for rows.Next() {
		var d model.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		daily = append(daily, d)
	}
	return daily, rows.Err()
}

func (api *API) TopThreatsRepo(ctx context.Context) ([]model.NameCount, error) {
	stmt := `
        SELECT a.nombre_comun, COUNT(*) AS n
        FROM "Detecciones_Campo" d
        JOIN "Amenazas" a ON a.id_amenaza = d.id_amenaza_detectada
        GROUP BY a.nombre_comun
        ORDER BY n DESC
        LIMIT 10
    `
	rows, err := api.DB.Query(ctx, stmt)
	if err != nil {
		log.Println("error loading threat stats", err)
		return nil, err
	}
	defer rows.Close()

	return scanNameCounts(rows)
}

func (api *API) DepartmentStatsRepo(ctx context.Context) ([]model.NameCount, error) {
	stmt := `
        SELECT dep.nombre_depto, COUNT(*) AS n
        FROM "Detecciones_Campo" d
        JOIN "Municipios" m ON m.id_municipio = d.id_municipio
        JOIN "Departamentos" dep ON dep.id_depto = m.id_depto
        GROUP BY dep.nombre_depto
        ORDER BY n DESC
    `
	rows, err := api.DB.Query(ctx, stmt)
	if err != nil {
		log.Println("error loading department stats", err)
		return nil, err
	}
	defer rows.Close()

	return scanNameCounts(rows)
}

func scanNameCounts(rows pgx.Rows) ([]model.NameCount, error) {
	var counts []model.NameCount
	for rows.Next() {
		var nc model.NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, nc)
	}
	return counts, rows.Err()
}
