package util

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/twpayne/go-polyline"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	RgxEmail = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

	foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	rgxNonSlug      = regexp.MustCompile(`[^a-z0-9]+`)
)

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

func IsEmail(value string) bool {
	if len(value) > 254 {
		return false
	}

	return RgxEmail.MatchString(value)
}

func IsURL(value string) bool {
	u, err := url.ParseRequestURI(value)
	if err != nil {
		return false
	}

	return u.Scheme != "" && u.Host != ""
}

// Normalize lowercases a string and strips diacritics, so "Estelí" and
// "esteli" compare equal. Filter matching and severity comparison both
// go through this.
func Normalize(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// Slugify folds a display name into a storage folder segment, e.g.
// "Roya del frijol" -> "roya_del_frijol".
func Slugify(s string) string {
	return strings.Trim(rgxNonSlug.ReplaceAllString(Normalize(s), "_"), "_")
}

// Coordinate represents a latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lon float64
}

// EncodePolyline encodes coordinates into the standard precision-1e5
// polyline format consumed by map clients.
func EncodePolyline(coords []Coordinate) string {
	pairs := make([][]float64, len(coords))
	for i, c := range coords {
		pairs[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(pairs))
}

// DecodePolyline is the inverse of EncodePolyline.
func DecodePolyline(shape string) ([]Coordinate, error) {
	decoded, _, err := polyline.DecodeCoords([]byte(shape))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, len(decoded))
	for i, p := range decoded {
		coords[i] = Coordinate{Lat: p[0], Lon: p[1]}
	}
	return coords, nil
}

// IntPtr returns a pointer to the given integer.
func IntPtr(i int) *int {
	return &i
}

// StrPtr returns a pointer to the given string.
func StrPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to the given float.
func Float64Ptr(f float64) *float64 {
	return &f
}
