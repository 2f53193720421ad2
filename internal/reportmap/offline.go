package reportmap

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// OfflineSource is the zero-network last resort: a static JSON file of
// official reports, filtered client-side by region and date bounds. It
// also backs the plain report-list feature when callers force offline.
type OfflineSource struct {
	Path string
	ISO3 string
	From string // YYYY-MM-DD, inclusive
	To   string // YYYY-MM-DD, inclusive
}

func (s *OfflineSource) Name() string { return "offline_file" }

// offlineID tolerates the dataset's mixed id shapes: official records
// carry string ids ("IPSA-2022-0147"), older extracts numeric ones.
type offlineID string

func (id *offlineID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = offlineID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = offlineID(n.String())
	return nil
}

type offlineReport struct {
	ID              offlineID `json:"id"`
	ISO3            string    `json:"iso3"`
	ObservationDate string    `json:"observation_date"`
	YLat            *float64  `json:"y_lat"`
	XLon            *float64  `json:"x_lon"`
	Lat             *float64  `json:"lat"`
	Lon             *float64  `json:"lon"`
	CommonName      string    `json:"common_name"`
	AgentScientific string    `json:"agent_scientific"`
	Level           string    `json:"level"`
	Admin1          string    `json:"admin1"`
	Admin2          string    `json:"admin2"`
	Source          string    `json:"source"`
	SourceURL       string    `json:"source_url"`
	Confidence      *float64  `json:"confidence"`
}

func (s *OfflineSource) Fetch(_ context.Context) ([]NormalizedReport, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}

	var records []offlineReport
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	var reports []NormalizedReport
	for i, rec := range records {
		if s.ISO3 != "" && rec.ISO3 != s.ISO3 {
			continue
		}
		// Dates are ISO day strings, so lexicographic comparison is
		// chronological comparison.
		if s.From != "" && rec.ObservationDate < s.From {
			continue
		}
		if s.To != "" && rec.ObservationDate > s.To {
			continue
		}
		reports = append(reports, rec.normalize(i))
	}
	return reports, nil
}

func (rec offlineReport) normalize(ordinal int) NormalizedReport {
	r := NormalizedReport{
		Diagnosis:      PlaceholderDiagnosis,
		Department:     rec.Admin1,
		Municipality:   rec.Admin2,
		PrecisionLevel: rec.Level,
	}

	if rec.ID != "" {
		r.ID = string(rec.ID)
	} else {
		r.ID = rec.Admin2 + "-" + rec.ObservationDate + "-" + strconv.Itoa(ordinal)
	}

	if rec.CommonName != "" {
		r.Diagnosis = rec.CommonName
	} else if rec.AgentScientific != "" {
		r.Diagnosis = rec.AgentScientific
	}

	if rec.YLat != nil {
		r.Latitude = rec.YLat
	} else {
		r.Latitude = rec.Lat
	}
	if rec.XLon != nil {
		r.Longitude = rec.XLon
	} else {
		r.Longitude = rec.Lon
	}

	if t, err := time.Parse("2006-01-02", rec.ObservationDate); err == nil {
		r.CreatedAt = t
	} else if t, err := time.Parse(time.RFC3339, rec.ObservationDate); err == nil {
		r.CreatedAt = t
	}

	var conf float64
	if rec.Confidence != nil {
		conf = *rec.Confidence
	}
	r.Severity = SeverityFromConfidence(conf)

	return r
}
