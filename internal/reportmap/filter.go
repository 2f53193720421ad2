package reportmap

import (
	"sort"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/phytoscan/phytoscan-api/util"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NicaraguaDepartments is the canonical list of the country's departments
// and autonomous regions. The department facet for Nicaragua is the union
// of this list and whatever the data contains, so subdivisions with zero
// current reports still show up as selectable filters.
var NicaraguaDepartments = []string{
	"Boaco", "Carazo", "Chinandega", "Chontales", "Estelí", "Granada",
	"Jinotega", "León", "Madriz", "Managua", "Masaya", "Matagalpa",
	"Nueva Segovia", "Río San Juan", "Rivas", "RACCN", "RACCS",
}

// FallbackCategories populates the category facet when the data carries
// no category values at all.
var FallbackCategories = []string{
	"abiotic", "bacteria", "fungi", "insect", "mite", "nematode", "virus", "healthy",
}

// baseCountries seeds the country facet so the common selections are
// always offered, regardless of what the data contains.
var baseCountries = []string{
	"Nicaragua", "Honduras", "El Salvador", "Guatemala",
	"Costa Rica", "Panamá", "México", "Colombia",
}

// FilterState is the full set of simultaneously-applied predicates. The
// url tags match the query parameters of the client's shareable map links.
type FilterState struct {
	Country      string `json:"country" url:"country,omitempty"`
	Department   string `json:"depto" url:"depto,omitempty"`
	Municipality string `json:"muni" url:"muni,omitempty"`
	Category     string `json:"cat" url:"cat,omitempty"`
	Diagnosis    string `json:"diag" url:"diag,omitempty"`
	Severity     string `json:"sev" url:"sev,omitempty"`
	DateFrom     string `json:"from" url:"from,omitempty"` // YYYY-MM-DD
	DateTo       string `json:"to" url:"to,omitempty"`     // YYYY-MM-DD
}

// QueryString renders the state as a shareable URL query string.
func (f FilterState) QueryString() string {
	v, err := query.Values(f)
	if err != nil {
		return ""
	}
	return v.Encode()
}

// Facets are the distinct selectable values per filter dimension, always
// computed over the unfiltered report set.
type Facets struct {
	Countries      []string `json:"countries"`
	Departments    []string `json:"departments"`
	Municipalities []string `json:"municipalities"`
	Categories     []string `json:"categories"`
	Diagnoses      []string `json:"diagnoses"`
}

// FilterResult is the output of one full recomputation.
type FilterResult struct {
	Reports        []NormalizedReport `json:"reports"`
	SeverityCounts map[Severity]int   `json:"severity_counts"`
	Facets         Facets             `json:"facets"`
}

// dateBounds converts the inclusive YYYY-MM-DD bounds into instants.
// An absent or malformed bound is treated as unbounded.
func (f FilterState) dateBounds() (from, to time.Time, haveFrom, haveTo bool) {
	if f.DateFrom != "" {
		if t, err := time.Parse("2006-01-02", f.DateFrom); err == nil {
			from, haveFrom = t, true
		}
	}
	if f.DateTo != "" {
		if t, err := time.Parse("2006-01-02", f.DateTo); err == nil {
			to = t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
			haveTo = true
		}
	}
	return from, to, haveFrom, haveTo
}

// Matches applies the pure conjunction of all predicates to one report.
func (f FilterState) Matches(r NormalizedReport) bool {
	from, to, haveFrom, haveTo := f.dateBounds()
	if haveFrom && r.CreatedAt.Before(from) {
		return false
	}
	if haveTo && r.CreatedAt.After(to) {
		return false
	}

	if !MatchesCountry(r, f.Country) {
		return false
	}

	if !substringMatch(r.Department, f.Department) {
		return false
	}
	if !substringMatch(r.Municipality, f.Municipality) {
		return false
	}
	if !substringMatch(r.Category, f.Category) {
		return false
	}
	if !substringMatch(r.Diagnosis, f.Diagnosis) {
		return false
	}

	if f.Severity != "" && util.Normalize(string(r.Severity)) != util.Normalize(f.Severity) {
		return false
	}

	return true
}

func substringMatch(field, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(util.Normalize(field), util.Normalize(filter))
}

// Apply recomputes the filtered view, severity counts and facet lists from
// scratch. It never mutates the source slice. Severity counts are taken
// over every matching report, including coordinate-less ones; callers that
// render a map decide separately which reports are placeable.
func Apply(reports []NormalizedReport, f FilterState) FilterResult {
	filtered := make([]NormalizedReport, 0, len(reports))
	counts := map[Severity]int{SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0}

	for _, r := range reports {
		if !f.Matches(r) {
			continue
		}
		filtered = append(filtered, r)
		sev := Severity(util.Normalize(string(r.Severity)))
		if _, ok := counts[sev]; ok {
			counts[sev]++
		}
	}

	return FilterResult{
		Reports:        filtered,
		SeverityCounts: counts,
		Facets:         buildFacets(reports, f),
	}
}

func buildFacets(reports []NormalizedReport, f FilterState) Facets {
	departments := uniqueValues(reports, func(r NormalizedReport) string { return r.Department })
	if f.Country == "Nicaragua" {
		departments = unionSorted(NicaraguaDepartments, departments)
	}

	categories := uniqueValues(reports, func(r NormalizedReport) string { return r.Category })
	if len(categories) == 0 {
		categories = append([]string(nil), FallbackCategories...)
	}

	countries := uniqueValues(reports, func(r NormalizedReport) string { return r.CountryName })
	countries = unionSorted(baseCountries, countries)
	countries = append([]string{CountryFilterAll}, countries...)

	return Facets{
		Countries:      countries,
		Departments:    departments,
		Municipalities: uniqueValues(reports, func(r NormalizedReport) string { return r.Municipality }),
		Categories:     categories,
		Diagnoses:      uniqueValues(reports, func(r NormalizedReport) string { return r.Diagnosis }),
	}
}

// uniqueValues collects the distinct trimmed non-empty values of one field
// over the whole set, sorted with Spanish collation.
func uniqueValues(reports []NormalizedReport, field func(NormalizedReport) string) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, r := range reports {
		v := strings.TrimSpace(field(r))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sortSpanish(values)
	return values
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var merged []string
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			merged = append(merged, v)
		}
	}
	sortSpanish(merged)
	return merged
}

func sortSpanish(values []string) {
	c := collate.New(language.Spanish)
	sort.Slice(values, func(i, j int) bool {
		return c.CompareString(values[i], values[j]) < 0
	})
}
