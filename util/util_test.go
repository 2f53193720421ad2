package util

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedResult string
	}{
		{"Accented department", "Estelí", "esteli"},
		{"Mixed case", "LEÓN", "leon"},
		{"Enye preserved as n", "Año", "ano"},
		{"Plain ascii untouched", "managua", "managua"},
		{"Country with accent", "Panamá", "panama"},
		{"Empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Normalize(tc.input)
			if result != tc.expectedResult {
				t.Errorf("Normalize(%q) = %q; want %q", tc.input, result, tc.expectedResult)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedResult string
	}{
		{"Disease name", "Roya del frijol", "roya_del_frijol"},
		{"Accents and punctuation", "Mancha angular (húmeda)", "mancha_angular_humeda"},
		{"Leading trailing junk", "  fungi  ", "fungi"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Slugify(tc.input)
			if result != tc.expectedResult {
				t.Errorf("Slugify(%q) = %q; want %q", tc.input, result, tc.expectedResult)
			}
		})
	}
}

func TestPolylineRoundTrip(t *testing.T) {
	coords := []Coordinate{
		{Lat: 12.8654, Lon: -85.2072},
		{Lat: 12.13282, Lon: -86.2504},
		{Lat: 13.09185, Lon: -86.35384},
	}
	encoded := EncodePolyline(coords)
	if encoded == "" {
		t.Fatal("expected non-empty encoding")
	}
	decoded, err := DecodePolyline(encoded)
	if err != nil {
		t.Fatalf("Decoding returned error %v", err)
	}
	if len(decoded) != len(coords) {
		t.Fatalf("got %d coords, want %d", len(decoded), len(coords))
	}
	for i := range coords {
		if diff := decoded[i].Lat - coords[i].Lat; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("lat %d: got %v want %v", i, decoded[i].Lat, coords[i].Lat)
		}
		if diff := decoded[i].Lon - coords[i].Lon; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("lon %d: got %v want %v", i, decoded[i].Lon, coords[i].Lon)
		}
	}
}
