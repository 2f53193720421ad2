package rest

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/phytoscan/phytoscan-api/config"
	"github.com/phytoscan/phytoscan-api/util/tracing"
	"github.com/phytoscan/phytoscan-api/util/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const offlineListFixture = `[
  {"id": "IPSA-2021-0001", "iso3": "NIC", "observation_date": "2021-06-01",
   "common_name": "Roya del café", "admin1": "Estelí", "admin2": "Estelí"},
  {"id": "IPSA-2023-0002", "iso3": "NIC", "observation_date": "2023-03-15", "y_lat": 12.13, "x_lon": -86.25,
   "common_name": "Mosca blanca", "admin1": "Managua", "admin2": "Managua", "confidence": 0.7},
  {"id": "IPSA-2023-0003", "iso3": "HND", "observation_date": "2023-03-15", "y_lat": 14.08, "x_lon": -87.2,
   "common_name": "Roya del café", "admin1": "Francisco Morazán", "confidence": 0.8}
]`

func tracedRequest(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reports.json")
	require.NoError(t, os.WriteFile(path, []byte(offlineListFixture), 0o600))

	api := &API{Config: &config.Config{OfflineDataPath: path}}

	r := httptest.NewRequest("GET", target, nil)
	ctx := context.WithValue(r.Context(), values.ContextTracingKey, tracing.Context{RequestID: "test"})
	w := httptest.NewRecorder()
	Handler(api.ListReports).ServeHTTP(w, r.WithContext(ctx))
	return w
}

func TestListReportsOfflineAppliesDefaultWindow(t *testing.T) {
	w := tracedRequest(t, "/reports?offline=1")

	require.Equal(t, 200, w.Code)
	body := w.Body.String()
	// Defaults are iso3=NIC and 2022-01-01..2025-12-31: the 2021 record
	// and the Honduran one are filtered out.
	assert.Contains(t, body, "IPSA-2023-0002")
	assert.NotContains(t, body, "IPSA-2021-0001")
	assert.NotContains(t, body, "IPSA-2023-0003")
}

func TestListReportsOfflineHonorsExplicitParams(t *testing.T) {
	w := tracedRequest(t, "/reports?offline=1&iso3=HND&from=2023-01-01&to=2023-12-31")

	require.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "IPSA-2023-0003")
	assert.NotContains(t, body, "IPSA-2023-0002")
}
