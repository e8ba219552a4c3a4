package locate

import (
	"log/slog"

	"github.com/kelvins/geocoder"
)

// GeocodingResolver augments the static resolver with an online geocoding
// lookup for names the gazetteer does not know. Geocoding failures degrade
// to the normalized name; the upstream weather API still gets a chance to
// resolve it.
type GeocodingResolver struct {
	static *StaticResolver
	logger *slog.Logger
}

// NewGeocodingResolver configures the geocoding backend with the given API
// key and returns the combined resolver.
func NewGeocodingResolver(apiKey string, logger *slog.Logger) *GeocodingResolver {
	geocoder.ApiKey = apiKey
	return &GeocodingResolver{
		static: NewStaticResolver(),
		logger: logger,
	}
}

func (r *GeocodingResolver) Resolve(text string) (Info, error) {
	info, err := r.static.Resolve(text)
	if err != nil || info.HasCoords {
		return info, err
	}

	loc, gerr := geocoder.Geocoding(geocoder.Address{City: info.Name})
	if gerr != nil {
		r.logger.Warn("geocoding failed", "location", info.Name, "error", gerr)
		return info, nil
	}
	if ValidCoordinates(loc.Latitude, loc.Longitude) {
		info.Latitude = loc.Latitude
		info.Longitude = loc.Longitude
		info.HasCoords = true
	}
	return info, nil
}

func (r *GeocodingResolver) SuggestCorrections(text string) []string {
	return r.static.SuggestCorrections(text)
}
