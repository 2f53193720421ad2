package reportmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const offlineFixture = `[
  {"id": "IPSA-2023-0101", "iso3": "NIC", "observation_date": "2023-04-12", "y_lat": 13.09, "x_lon": -86.35,
   "common_name": "Roya del café", "level": "municipio", "admin1": "Estelí", "admin2": "Estelí", "confidence": 0.9},
  {"iso3": "NIC", "observation_date": "2024-07-01", "lat": 12.13, "lon": -86.25,
   "agent_scientific": "Bemisia tabaci", "admin1": "Managua", "admin2": "Managua", "confidence": 0.6},
  {"id": 103, "iso3": "NIC", "observation_date": "2022-01-05",
   "admin1": "León", "admin2": "Telica"},
  {"id": "IPSA-2023-0104", "iso3": "HND", "observation_date": "2023-04-12", "y_lat": 14.08, "x_lon": -87.2,
   "common_name": "Roya del café", "admin1": "Francisco Morazán", "confidence": 0.85}
]`

func writeOfflineFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reports.json")
	require.NoError(t, os.WriteFile(path, []byte(offlineFixture), 0o600))
	return path
}

func TestOfflineSourceFiltersByISO3AndDateRange(t *testing.T) {
	src := &OfflineSource{
		Path: writeOfflineFixture(t),
		ISO3: "NIC",
		From: "2023-01-01",
		To:   "2024-12-31",
	}
	rows, err := src.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "IPSA-2023-0101", rows[0].ID)
	assert.Equal(t, "Roya del café", rows[0].Diagnosis)
	assert.Equal(t, SeverityHigh, rows[0].Severity)
	assert.Equal(t, "Estelí", rows[0].Department)
}

func TestOfflineSourceUnboundedReturnsAllForISO3(t *testing.T) {
	src := &OfflineSource{Path: writeOfflineFixture(t), ISO3: "NIC"}
	rows, err := src.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestOfflineSourceScientificNameFallback(t *testing.T) {
	src := &OfflineSource{Path: writeOfflineFixture(t), ISO3: "NIC", From: "2024-01-01"}
	rows, err := src.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bemisia tabaci", rows[0].Diagnosis)
	assert.Equal(t, SeverityMedium, rows[0].Severity)
	require.True(t, rows[0].HasCoordinates())
	assert.InDelta(t, 12.13, *rows[0].Latitude, 1e-9)
}

func TestOfflineSourceRecordWithoutCoordinates(t *testing.T) {
	src := &OfflineSource{Path: writeOfflineFixture(t), ISO3: "NIC", To: "2022-12-31"}
	rows, err := src.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "103", rows[0].ID)
	assert.False(t, rows[0].HasCoordinates())
	assert.Equal(t, PlaceholderDiagnosis, rows[0].Diagnosis)
	assert.Equal(t, SeverityLow, rows[0].Severity)
}

func TestOfflineSourceMissingFileErrors(t *testing.T) {
	src := &OfflineSource{Path: filepath.Join(t.TempDir(), "absent.json")}
	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

// The shipped dataset must stay loadable: it is the last resort when
// every database source is down.
func TestOfflineSourceReadsBundledDataset(t *testing.T) {
	src := &OfflineSource{
		Path: filepath.Join("..", "..", "data", "official_reports_ni_2022_2025.json"),
		ISO3: "NIC",
	}
	rows, err := src.Fetch(context.Background())

	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "IPSA-2022-0147", rows[0].ID)
	for _, r := range rows {
		assert.NotEmpty(t, r.ID)
		assert.False(t, r.CreatedAt.IsZero())
	}
}
