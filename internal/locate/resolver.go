// Package locate resolves free-text locations to canonical names and
// coordinates, with best-effort spelling suggestions.
package locate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrEmptyLocation is returned when the input is blank.
var ErrEmptyLocation = errors.New("location input is empty")

// ErrInvalidCoordinates is returned when a coordinate pair is out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Info is a resolved location.
type Info struct {
	Name      string
	Latitude  float64
	Longitude float64
	HasCoords bool
	Country   string
	Region    string
}

// Resolver turns free text into a canonical location.
type Resolver interface {
	Resolve(text string) (Info, error)
	SuggestCorrections(text string) []string
}

var coordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\(?(-?\d+\.?\d*)\s*,\s*(-?\d+\.?\d*)\)?\s*$`),
	regexp.MustCompile(`^\s*(-?\d+\.?\d*)\s+(-?\d+\.?\d*)\s*$`),
}

// StaticResolver resolves against the built-in gazetteer and alias table.
// Unknown names pass through normalized; the upstream API is the final
// arbiter of whether they exist.
type StaticResolver struct{}

func NewStaticResolver() *StaticResolver { return &StaticResolver{} }

func (r *StaticResolver) Resolve(text string) (Info, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Info{}, ErrEmptyLocation
	}

	if lat, lon, ok := parseCoordinates(trimmed); ok {
		if !ValidCoordinates(lat, lon) {
			return Info{}, fmt.Errorf("%w: %v, %v", ErrInvalidCoordinates, lat, lon)
		}
		return Info{
			Name:      fmt.Sprintf("%.4f,%.4f", lat, lon),
			Latitude:  lat,
			Longitude: lon,
			HasCoords: true,
		}, nil
	}

	name := normalizeName(trimmed)
	if canonical, ok := cityAliases[strings.ToLower(name)]; ok {
		name = canonical
	}

	if city, ok := lookupCity(name); ok {
		return Info{
			Name:      city.name,
			Latitude:  city.lat,
			Longitude: city.lon,
			HasCoords: true,
			Country:   city.country,
			Region:    city.region,
		}, nil
	}

	return Info{Name: name}, nil
}

// SuggestCorrections returns up to five known city names resembling the
// input, most similar first.
func (r *StaticResolver) SuggestCorrections(text string) []string {
	input := strings.ToLower(strings.TrimSpace(text))
	if input == "" {
		return nil
	}

	candidates := make([]string, 0, len(cities)+len(cityAliases))
	for name := range cities {
		candidates = append(candidates, name)
	}
	for alias := range cityAliases {
		candidates = append(candidates, alias)
	}

	matches := closeMatches(input, candidates, 5, 0.6)

	out := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		name := m
		if canonical, ok := cityAliases[m]; ok {
			name = canonical
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// ValidCoordinates reports whether lat/lon are within WGS84 bounds.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func parseCoordinates(s string) (lat, lon float64, ok bool) {
	for _, pattern := range coordPatterns {
		m := pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

var nameSuffixes = []string{"市", "省", "县", "区", "镇", " city", " province", " county"}

func normalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	for _, suffix := range nameSuffixes {
		if n, ok := strings.CutSuffix(name, suffix); ok && n != "" {
			name = strings.TrimSpace(n)
			break
		}
	}
	return name
}
