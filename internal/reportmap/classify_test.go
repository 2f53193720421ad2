package reportmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAssignsNicaraguaInsideBox(t *testing.T) {
	r := Classify(NormalizedReport{ID: "1", Latitude: f64(12.8), Longitude: f64(-85.2)})

	assert.Equal(t, "Nicaragua", r.CountryName)
	assert.Equal(t, "NI", r.CountryCode)
}

func TestClassifyFirstMatchingBoxWins(t *testing.T) {
	// This point sits inside both the Nicaragua and Honduras rectangles;
	// table order decides.
	r := Classify(NormalizedReport{ID: "1", Latitude: f64(13.5), Longitude: f64(-86.5)})
	assert.Equal(t, "Nicaragua", r.CountryName)
}

func TestClassifyLeavesExistingCountryAlone(t *testing.T) {
	in := NormalizedReport{ID: "1", Latitude: f64(12.8), Longitude: f64(-85.2), CountryName: "Honduras", CountryCode: "HN"}
	out := Classify(in)
	assert.Equal(t, in, out)
}

func TestClassifyOutsideEveryBoxStaysUnclassified(t *testing.T) {
	r := Classify(NormalizedReport{ID: "1", Latitude: f64(0), Longitude: f64(0)})
	assert.Empty(t, r.CountryName)
	assert.Empty(t, r.CountryCode)
}

func TestClassifyWithoutCoordinatesIsNoop(t *testing.T) {
	r := Classify(NormalizedReport{ID: "1"})
	assert.Empty(t, r.CountryName)
}

func TestMatchesCountryBySubstringIgnoringDiacritics(t *testing.T) {
	r := NormalizedReport{CountryName: "México", CountryCode: "MX"}
	assert.True(t, MatchesCountry(r, "mexico"))
	assert.False(t, MatchesCountry(r, "Nicaragua"))
}

func TestMatchesCountryNICodeSpecialCase(t *testing.T) {
	// CountryName empty, code only: the substring test on "ni" fails for
	// "Nicaragua" but the exact-code rule lets it through.
	r := NormalizedReport{CountryCode: "NI"}
	assert.True(t, MatchesCountry(r, "Nicaragua"))
	assert.False(t, MatchesCountry(r, "Honduras"))
}

func TestMatchesCountryFallsBackToBoundingBox(t *testing.T) {
	inside := NormalizedReport{Latitude: f64(12.8), Longitude: f64(-85.2)}
	outside := NormalizedReport{Latitude: f64(0), Longitude: f64(0)}

	assert.True(t, MatchesCountry(inside, "Nicaragua"))
	assert.False(t, MatchesCountry(outside, "Nicaragua"))
}

func TestMatchesCountryTodosLetsEverythingThrough(t *testing.T) {
	outside := NormalizedReport{Latitude: f64(0), Longitude: f64(0)}
	assert.True(t, MatchesCountry(outside, CountryFilterAll))
	assert.True(t, MatchesCountry(outside, ""))
}

func TestMatchesCountryUnknownSelectionOrMissingCoords(t *testing.T) {
	noCoords := NormalizedReport{ID: "1"}
	assert.True(t, MatchesCountry(noCoords, "Nicaragua"))

	withCoords := NormalizedReport{Latitude: f64(12.8), Longitude: f64(-85.2)}
	assert.True(t, MatchesCountry(withCoords, "Atlantis"))
}

func TestResolverClassifiesEveryReturnedRow(t *testing.T) {
	src := &stubSource{name: "stub", reports: []NormalizedReport{
		{ID: "1", Latitude: f64(12.8), Longitude: f64(-85.2)},
		{ID: "2", Latitude: f64(9.9), Longitude: f64(-84.1)},
	}}
	rows, err := NewResolver(nil, src).Resolve(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Nicaragua", rows[0].CountryName)
	assert.Equal(t, "Costa Rica", rows[1].CountryName)
}
