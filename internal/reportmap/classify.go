package reportmap

import (
	"strings"

	"github.com/phytoscan/phytoscan-api/util"
)

// CountryBox is a coarse rectangular country-membership test. Boxes may
// overlap; the first match in table order wins.
type CountryBox struct {
	Name   string
	Code   string
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// CountryBoxes must match the client's constant table exactly, in the same
// order, for classification results to be reproducible.
var CountryBoxes = []CountryBox{
	{Name: "Nicaragua", Code: "NI", MinLat: 10.7, MaxLat: 15.1, MinLon: -87.8, MaxLon: -82.7},
	{Name: "Honduras", Code: "HN", MinLat: 12.9, MaxLat: 16.5, MinLon: -89.4, MaxLon: -83.1},
	{Name: "El Salvador", Code: "SV", MinLat: 13.0, MaxLat: 14.5, MinLon: -90.2, MaxLon: -87.7},
	{Name: "Guatemala", Code: "GT", MinLat: 13.7, MaxLat: 18.5, MinLon: -92.3, MaxLon: -88.2},
	{Name: "Costa Rica", Code: "CR", MinLat: 8.0, MaxLat: 11.4, MinLon: -86.2, MaxLon: -82.5},
	{Name: "Panamá", Code: "PA", MinLat: 7.1, MaxLat: 9.7, MinLon: -83.1, MaxLon: -77.1},
	{Name: "México", Code: "MX", MinLat: 14.3, MaxLat: 32.7, MinLon: -118.5, MaxLon: -86.5},
	{Name: "Colombia", Code: "CO", MinLat: -4.2, MaxLat: 13.4, MinLon: -79.0, MaxLon: -66.8},
}

// CountryFilterAll is the sentinel meaning "no country filter".
const CountryFilterAll = "Todos"

func (b CountryBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

func boxFor(country string) (CountryBox, bool) {
	for _, b := range CountryBoxes {
		if b.Name == country {
			return b, true
		}
	}
	return CountryBox{}, false
}

// Classify fills in CountryName/CountryCode on a report that lacks them,
// using bounding-box containment. First containing box in table order wins.
// Reports that already carry a country, or that fall outside every box,
// are returned unchanged.
func Classify(r NormalizedReport) NormalizedReport {
	if r.CountryName != "" || r.CountryCode != "" {
		return r
	}
	if !r.HasCoordinates() {
		return r
	}
	for _, b := range CountryBoxes {
		if b.Contains(*r.Latitude, *r.Longitude) {
			r.CountryName = b.Name
			r.CountryCode = b.Code
			return r
		}
	}
	return r
}

// MatchesCountry decides whether a report passes the country filter.
// A report carrying a country field is matched against it directly
// (case/diacritic-insensitive substring, plus the NI exact-code special
// case for Nicaragua); otherwise the selected country's bounding box is
// tested against the coordinates. A report with neither country nor
// usable coordinates, or a selection with no known box, is let through;
// the box test is an exclusion filter, not an inclusion proof.
func MatchesCountry(r NormalizedReport, selected string) bool {
	sel := strings.TrimSpace(selected)
	if sel == "" || sel == CountryFilterAll {
		return true
	}

	if r.CountryName != "" || r.CountryCode != "" {
		field := r.CountryName
		if field == "" {
			field = r.CountryCode
		}
		if strings.Contains(util.Normalize(field), util.Normalize(sel)) {
			return true
		}
		return sel == "Nicaragua" && r.CountryCode == "NI"
	}

	box, ok := boxFor(sel)
	if !ok || !r.HasCoordinates() {
		return true
	}
	return box.Contains(*r.Latitude, *r.Longitude)
}
