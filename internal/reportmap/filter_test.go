package reportmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func sampleReports() []NormalizedReport {
	return []NormalizedReport{
		{
			ID: "1", Latitude: f64(13.09), Longitude: f64(-86.35),
			Diagnosis: "Roya del café", Category: "fungi",
			CreatedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
			Severity:  SeverityHigh,
			Department: "Estelí", Municipality: "Estelí",
			CountryName: "Nicaragua", CountryCode: "NI",
		},
		{
			ID: "2", Latitude: f64(12.13), Longitude: f64(-86.25),
			Diagnosis: "Mosca blanca", Category: "insect",
			CreatedAt: time.Date(2024, 5, 20, 15, 30, 0, 0, time.UTC),
			Severity:  SeverityMedium,
			Department: "Managua", Municipality: "Managua",
			CountryName: "Nicaragua", CountryCode: "NI",
		},
		{
			ID: "3",
			Diagnosis: "Antracnosis", Category: "fungi",
			CreatedAt: time.Date(2024, 5, 20, 23, 59, 59, 0, time.UTC),
			Severity:  SeverityLow,
			Department: "León",
		},
		{
			ID: "4", Latitude: f64(14.08), Longitude: f64(-87.2),
			Diagnosis: "Roya del café", Category: "fungi",
			CreatedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
			Severity:  SeverityHigh,
			Department: "Francisco Morazán",
			CountryName: "Honduras", CountryCode: "HN",
		},
	}
}

func TestApplyNoFilterKeepsEverything(t *testing.T) {
	res := Apply(sampleReports(), FilterState{})

	assert.Len(t, res.Reports, 4)
	assert.Equal(t, 2, res.SeverityCounts[SeverityHigh])
	assert.Equal(t, 1, res.SeverityCounts[SeverityMedium])
	assert.Equal(t, 1, res.SeverityCounts[SeverityLow])
}

func TestApplyIsIdempotent(t *testing.T) {
	f := FilterState{Country: "Nicaragua", Severity: "alta"}
	first := Apply(sampleReports(), f)
	second := Apply(first.Reports, f)

	assert.Equal(t, first.Reports, second.Reports)
	assert.Equal(t, first.SeverityCounts, second.SeverityCounts)
}

func TestApplyConjunctionNeverGrows(t *testing.T) {
	reports := sampleReports()
	base := Apply(reports, FilterState{Country: "Nicaragua"})
	narrowed := Apply(reports, FilterState{Country: "Nicaragua", Category: "fungi"})

	assert.LessOrEqual(t, len(narrowed.Reports), len(base.Reports))
	for _, r := range narrowed.Reports {
		assert.Contains(t, base.Reports, r)
	}
}

func TestDateToIsInclusiveForTheWholeDay(t *testing.T) {
	reports := []NormalizedReport{
		{ID: "end", CreatedAt: time.Date(2024, 5, 20, 23, 59, 59, 0, time.UTC), Severity: SeverityLow},
		{ID: "after", CreatedAt: time.Date(2024, 5, 21, 0, 0, 0, 1000, time.UTC), Severity: SeverityLow},
	}
	res := Apply(reports, FilterState{DateTo: "2024-05-20"})

	require.Len(t, res.Reports, 1)
	assert.Equal(t, "end", res.Reports[0].ID)
}

func TestDateFromExcludesEarlierReports(t *testing.T) {
	res := Apply(sampleReports(), FilterState{DateFrom: "2024-05-20"})

	ids := make([]string, 0, len(res.Reports))
	for _, r := range res.Reports {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"2", "3", "4"}, ids)
}

func TestDiagnosisMatchIgnoresCaseAndDiacritics(t *testing.T) {
	res := Apply(sampleReports(), FilterState{Diagnosis: "ROYA DEL CAFE"})
	assert.Len(t, res.Reports, 2)

	res = Apply(sampleReports(), FilterState{Department: "esteli"})
	require.Len(t, res.Reports, 1)
	assert.Equal(t, "1", res.Reports[0].ID)
}

func TestSeverityFilterIsExact(t *testing.T) {
	res := Apply(sampleReports(), FilterState{Severity: "alta"})
	assert.Len(t, res.Reports, 2)
	assert.Equal(t, 2, res.SeverityCounts[SeverityHigh])
	assert.Equal(t, 0, res.SeverityCounts[SeverityMedium])

	res = Apply(sampleReports(), FilterState{Severity: "media"})
	require.Len(t, res.Reports, 1)
	assert.Equal(t, "2", res.Reports[0].ID)
}

func TestSeverityCountsIncludeReportsWithoutCoordinates(t *testing.T) {
	res := Apply(sampleReports(), FilterState{Severity: "baja"})
	require.Len(t, res.Reports, 1)
	assert.Equal(t, "3", res.Reports[0].ID)
	assert.False(t, res.Reports[0].HasCoordinates())
	assert.Equal(t, 1, res.SeverityCounts[SeverityLow])
}

func TestFacetsAreStableUnderFiltering(t *testing.T) {
	reports := sampleReports()
	unfiltered := Apply(reports, FilterState{})
	filtered := Apply(reports, FilterState{Severity: "alta", Diagnosis: "roya"})

	assert.Equal(t, unfiltered.Facets.Departments, filtered.Facets.Departments)
	assert.Equal(t, unfiltered.Facets.Diagnoses, filtered.Facets.Diagnoses)
	assert.Equal(t, unfiltered.Facets.Municipalities, filtered.Facets.Municipalities)
}

func TestNicaraguaDepartmentFacetIsUnionWithCanonicalList(t *testing.T) {
	res := Apply(sampleReports(), FilterState{Country: "Nicaragua"})

	for _, d := range NicaraguaDepartments {
		assert.Contains(t, res.Facets.Departments, d)
	}
	// Data-only departments survive the union.
	assert.Contains(t, res.Facets.Departments, "Francisco Morazán")
}

func TestDepartmentFacetWithoutNicaraguaIsDataOnly(t *testing.T) {
	res := Apply(sampleReports(), FilterState{Country: "Honduras"})
	assert.NotContains(t, res.Facets.Departments, "Boaco")
}

func TestCategoryFacetFallsBackWhenDataHasNone(t *testing.T) {
	reports := []NormalizedReport{{ID: "1", Diagnosis: "x"}}
	res := Apply(reports, FilterState{})
	assert.Equal(t, FallbackCategories, res.Facets.Categories)
}

func TestCountryFacetStartsWithTodos(t *testing.T) {
	res := Apply(sampleReports(), FilterState{})
	require.NotEmpty(t, res.Facets.Countries)
	assert.Equal(t, CountryFilterAll, res.Facets.Countries[0])
	assert.Contains(t, res.Facets.Countries, "Panamá")
}

func TestSpanishCollationOrdersAccentedNames(t *testing.T) {
	reports := []NormalizedReport{
		{ID: "1", Department: "Río San Juan"},
		{ID: "2", Department: "Rivas"},
		{ID: "3", Department: "León"},
		{ID: "4", Department: "Madriz"},
	}
	res := Apply(reports, FilterState{})
	assert.Equal(t, []string{"León", "Madriz", "Río San Juan", "Rivas"}, res.Facets.Departments)
}

func TestQueryStringRoundsTripOnlySetFields(t *testing.T) {
	f := FilterState{Country: "Nicaragua", Severity: "alta", DateFrom: "2024-01-01"}
	qs := f.QueryString()

	assert.Contains(t, qs, "country=Nicaragua")
	assert.Contains(t, qs, "sev=alta")
	assert.Contains(t, qs, "from=2024-01-01")
	assert.NotContains(t, qs, "muni=")
	assert.NotContains(t, qs, "depto=")
}

func TestSeverityFromConfidenceThresholds(t *testing.T) {
	cases := []struct {
		confidence float64
		want       Severity
	}{
		{0.95, SeverityHigh},
		{0.8, SeverityHigh},
		{0.7999, SeverityMedium},
		{0.5, SeverityMedium},
		{0.4999, SeverityLow},
		{0, SeverityLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SeverityFromConfidence(tc.confidence), "confidence %v", tc.confidence)
	}
}
