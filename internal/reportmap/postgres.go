package reportmap

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// DetectionsSource reads the normalized multi-table schema: the
// Detecciones_Campo table joined in memory against the five lookup tables.
type DetectionsSource struct {
	DB *pgxpool.Pool
}

func (s *DetectionsSource) Name() string { return "detecciones_campo" }

type threatRow struct {
	CommonName string
	CategoryID *int64
}

type municipalityRow struct {
	Name         string
	DepartmentID *int64
}

type departmentRow struct {
	Name      string
	CountryID *int64
}

type countryRow struct {
	Name string
	ISO  string
}

func (s *DetectionsSource) Fetch(ctx context.Context) ([]NormalizedReport, error) {
	type detectionRow struct {
		ID             int64
		Latitude       *float64
		Longitude      *float64
		ScannedAt      time.Time
		ThreatID       *int64
		MunicipalityID *int64
		Confidence     *float64
	}

	query := `
        SELECT id_deteccion, latitud, longitud, fecha_hora_scan, id_amenaza_detectada, id_municipio, confianza_ia
        FROM "Detecciones_Campo"
        ORDER BY fecha_hora_scan DESC
        LIMIT $1
    `
	rows, err := s.DB.Query(ctx, query, FetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []detectionRow
	for rows.Next() {
		var d detectionRow
		if err := rows.Scan(&d.ID, &d.Latitude, &d.Longitude, &d.ScannedAt, &d.ThreatID, &d.MunicipalityID, &d.Confidence); err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(detections) == 0 {
		return nil, nil
	}

	// The five lookup tables are independent; fetch them together. Any
	// single failure fails the whole attempt so the chain can fall back.
	var (
		threats        map[int64]threatRow
		municipalities map[int64]municipalityRow
		departments    map[int64]departmentRow
		countries      map[int64]countryRow
		categories     map[int64]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		threats, err = s.fetchThreats(gctx)
		return err
	})
	g.Go(func() (err error) {
		municipalities, err = s.fetchMunicipalities(gctx)
		return err
	})
	g.Go(func() (err error) {
		departments, err = s.fetchDepartments(gctx)
		return err
	})
	g.Go(func() (err error) {
		countries, err = s.fetchCountries(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.fetchCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var reports []NormalizedReport
	for _, d := range detections {
		r := NormalizedReport{
			ID:        strconv.FormatInt(d.ID, 10),
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
			Diagnosis: PlaceholderDiagnosis,
			CreatedAt: d.ScannedAt,
		}

		var confidence float64
		if d.Confidence != nil {
			confidence = *d.Confidence
		}
		r.Severity = SeverityFromConfidence(confidence)

		if d.ThreatID != nil {
			if t, ok := threats[*d.ThreatID]; ok {
				if t.CommonName != "" {
					r.Diagnosis = t.CommonName
				}
				if t.CategoryID != nil {
					r.Category = categories[*t.CategoryID]
				}
			}
		}
		if d.MunicipalityID != nil {
			if m, ok := municipalities[*d.MunicipalityID]; ok {
				r.Municipality = m.Name
				if m.DepartmentID != nil {
					if dep, ok := departments[*m.DepartmentID]; ok {
						r.Department = dep.Name
						if dep.CountryID != nil {
							if c, ok := countries[*dep.CountryID]; ok {
								r.CountryName = c.Name
								r.CountryCode = c.ISO
							}
						}
					}
				}
			}
		}

		// Rows without placeable coordinates never make it out of this
		// source; the flattened shapes keep them for facet purposes.
		if !r.HasCoordinates() {
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (s *DetectionsSource) fetchThreats(ctx context.Context) (map[int64]threatRow, error) {
	rows, err := s.DB.Query(ctx, `SELECT id_amenaza, nombre_comun, id_categoria FROM "Amenazas"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]threatRow)
	for rows.Next() {
		var id int64
		var t threatRow
		if err := rows.Scan(&id, &t.CommonName, &t.CategoryID); err != nil {
			return nil, err
		}
		out[id] = t
	}
	return out, rows.Err()
}

func (s *DetectionsSource) fetchMunicipalities(ctx context.Context) (map[int64]municipalityRow, error) {
	rows, err := s.DB.Query(ctx, `SELECT id_municipio, nombre_municipio, id_depto FROM "Municipios"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]municipalityRow)
	for rows.Next() {
		var id int64
		var m municipalityRow
		if err := rows.Scan(&id, &m.Name, &m.DepartmentID); err != nil {
			return nil, err
		}
		out[id] = m
	}
	return out, rows.Err()
}

func (s *DetectionsSource) fetchDepartments(ctx context.Context) (map[int64]departmentRow, error) {
	rows, err := s.DB.Query(ctx, `SELECT id_depto, nombre_depto, id_pais FROM "Departamentos"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]departmentRow)
	for rows.Next() {
		var id int64
		var d departmentRow
		if err := rows.Scan(&id, &d.Name, &d.CountryID); err != nil {
			return nil, err
		}
		out[id] = d
	}
	return out, rows.Err()
}

func (s *DetectionsSource) fetchCountries(ctx context.Context) (map[int64]countryRow, error) {
	rows, err := s.DB.Query(ctx, `SELECT id_pais, nombre_pais, codigo_iso FROM "Paises"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]countryRow)
	for rows.Next() {
		var id int64
		var c countryRow
		if err := rows.Scan(&id, &c.Name, &c.ISO); err != nil {
			return nil, err
		}
		out[id] = c
	}
	return out, rows.Err()
}

func (s *DetectionsSource) fetchCategories(ctx context.Context) (map[int64]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id_categoria, nombre_categoria FROM "Categorias"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

// LegacyViewSource reads the flattened v_reports_map view left over from
// the previous schema. Rows are already display-ready.
type LegacyViewSource struct {
	DB *pgxpool.Pool
}

func (s *LegacyViewSource) Name() string { return "v_reports_map" }

func (s *LegacyViewSource) Fetch(ctx context.Context) ([]NormalizedReport, error) {
	// id is cast to text: the view carries the official string ids
	// ("IPSA-2022-0147") but older deployments exposed numeric ones.
	query := `
        SELECT id::text, common_name, agent_scientific, observation_date, y_lat, x_lon, level, admin1, admin2, confidence
        FROM v_reports_map
        ORDER BY observation_date ASC
        LIMIT $1
    `
	rows, err := s.DB.Query(ctx, query, FetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []NormalizedReport
	for rows.Next() {
		var (
			id             string
			commonName     *string
			scientificName *string
			observedAt     time.Time
			lat, lon       *float64
			level          *string
			admin1, admin2 *string
			confidence     *float64
		)
		if err := rows.Scan(&id, &commonName, &scientificName, &observedAt, &lat, &lon, &level, &admin1, &admin2, &confidence); err != nil {
			return nil, err
		}

		r := NormalizedReport{
			ID:        id,
			Latitude:  lat,
			Longitude: lon,
			Diagnosis: PlaceholderDiagnosis,
			CreatedAt: observedAt,
		}
		if commonName != nil && *commonName != "" {
			r.Diagnosis = *commonName
		} else if scientificName != nil && *scientificName != "" {
			r.Diagnosis = *scientificName
		}
		if admin1 != nil {
			r.Department = *admin1
		}
		if admin2 != nil {
			r.Municipality = *admin2
		}
		if level != nil {
			r.PrecisionLevel = *level
		}
		var conf float64
		if confidence != nil {
			conf = *confidence
		}
		r.Severity = SeverityFromConfidence(conf)

		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// FlatTableSource reads the generic flattened reports table written by the
// diagnosis flow.
type FlatTableSource struct {
	DB *pgxpool.Pool
}

func (s *FlatTableSource) Name() string { return "reports" }

func (s *FlatTableSource) Fetch(ctx context.Context) ([]NormalizedReport, error) {
	query := `
        SELECT id, latitude, longitude, diagnosis, category, created_at, image_url,
            localidad, municipio, departamento, severity, precision_level,
            alert_radius_km, country_code, country_name
        FROM reports
        ORDER BY created_at DESC
        LIMIT $1
    `
	rows, err := s.DB.Query(ctx, query, FetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []NormalizedReport
	for rows.Next() {
		var (
			id                               string
			lat, lon                         *float64
			diagnosis, category              *string
			createdAt                        time.Time
			imageURL, locality, municipality *string
			department, severity, precision  *string
			alertRadiusKm                    *float64
			countryCode, countryName         *string
		)
		if err := rows.Scan(&id, &lat, &lon, &diagnosis, &category, &createdAt, &imageURL,
			&locality, &municipality, &department, &severity, &precision,
			&alertRadiusKm, &countryCode, &countryName); err != nil {
			return nil, err
		}

		r := NormalizedReport{
			ID:            id,
			Latitude:      lat,
			Longitude:     lon,
			Diagnosis:     PlaceholderDiagnosis,
			CreatedAt:     createdAt,
			AlertRadiusKm: alertRadiusKm,
		}
		if diagnosis != nil && *diagnosis != "" {
			r.Diagnosis = *diagnosis
		}
		if category != nil {
			r.Category = *category
		}
		if imageURL != nil {
			r.ImageURL = *imageURL
		}
		if locality != nil {
			r.Locality = *locality
		}
		if municipality != nil {
			r.Municipality = *municipality
		}
		if department != nil {
			r.Department = *department
		}
		if severity != nil {
			r.Severity = Severity(*severity)
		}
		if precision != nil {
			r.PrecisionLevel = *precision
		}
		if countryCode != nil {
			r.CountryCode = *countryCode
		}
		if countryName != nil {
			r.CountryName = *countryName
		}

		reports = append(reports, r)
	}
	return reports, rows.Err()
}
