package weather

import (
	"time"
)

// Units is the measurement system a record is expressed in.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Valid reports whether u is one of the supported unit systems.
func (u Units) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// Source tells the caller where a record came from. Degraded results are
// returned successfully but visibly marked.
type Source string

const (
	SourceLive         Source = "live"
	SourceCache        Source = "cache"
	SourceStaleCache   Source = "stale-cache"
	SourceSimilarCache Source = "similar-cache"
)

// Record is the normalized current-conditions view for a location.
type Record struct {
	Location      string    `json:"location"`
	Temperature   float64   `json:"temperature"`
	FeelsLike     float64   `json:"feelsLike"`
	Humidity      int       `json:"humidity"`      // percent, 0-100
	WindSpeed     float64   `json:"windSpeed"`     // >= 0
	WindDirection int       `json:"windDirection"` // degrees, 0-359
	Pressure      float64   `json:"pressure"`      // hPa
	Visibility    float64   `json:"visibility"`    // km
	UVIndex       float64   `json:"uvIndex"`
	Condition     string    `json:"condition"`
	ConditionCode string    `json:"conditionCode"`
	Timestamp     time.Time `json:"timestamp"`
	Units         Units     `json:"units"`
	Source        Source    `json:"source,omitempty"`
}

// ForecastDay is one day of a multi-day forecast.
type ForecastDay struct {
	Date                time.Time `json:"date"`
	HighTemp            float64   `json:"highTemp"`
	LowTemp             float64   `json:"lowTemp"`
	Condition           string    `json:"condition"`
	PrecipitationChance int       `json:"precipitationChance"` // percent, 0-100
	WindSpeed           float64   `json:"windSpeed"`
	Humidity            int       `json:"humidity"`
}

// ForecastRecord holds the daily forecast for a location.
// Days are ordered chronologically and never exceed the requested count.
type ForecastRecord struct {
	Location    string        `json:"location"`
	Days        []ForecastDay `json:"days"`
	Units       Units         `json:"units"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Source      Source        `json:"source,omitempty"`
}

// HourSlice is a single hour of an hourly forecast.
type HourSlice struct {
	Time                time.Time `json:"time"`
	Temperature         float64   `json:"temperature"`
	FeelsLike           float64   `json:"feelsLike"`
	Humidity            int       `json:"humidity"`
	WindSpeed           float64   `json:"windSpeed"`
	WindDirection       int       `json:"windDirection"`
	Pressure            float64   `json:"pressure"`
	Condition           string    `json:"condition"`
	ConditionCode       string    `json:"conditionCode"`
	PrecipitationChance int       `json:"precipitationChance"`
}

// HourlyRecord holds the hour-by-hour forecast for a location.
type HourlyRecord struct {
	Location    string      `json:"location"`
	Hours       []HourSlice `json:"hours"`
	Units       Units       `json:"units"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Source      Source      `json:"source,omitempty"`
}
