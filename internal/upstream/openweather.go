package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/chatweather/weatherbot/internal/weather"
)

// OpenWeatherClient implements Client for OpenWeatherMap.
type OpenWeatherClient struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenWeatherClient(client *http.Client, apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		client:  client,
	}
}

func (c *OpenWeatherClient) Name() string { return c.name }

// owmCurrent is the /weather response shape, limited to the fields we use.
type owmCurrent struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Visibility float64 `json:"visibility"` // meters
	Weather    []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// owmForecast is the /forecast response: a 3-hourly time series.
type owmForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   int     `json:"deg"`
		} `json:"wind"`
		Pop     float64 `json:"pop"` // precipitation probability, 0..1
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
}

func (c *OpenWeatherClient) FetchCurrent(ctx context.Context, location string, units weather.Units) (weather.Record, error) {
	var payload owmCurrent
	if err := getJSON(ctx, c.client, c.name, c.endpoint("weather", location, units), &payload); err != nil {
		return weather.Record{}, err
	}
	if len(payload.Weather) == 0 {
		return weather.Record{}, &Error{Kind: KindDataFormat, Provider: c.name, Err: fmt.Errorf("missing weather block")}
	}

	return weather.Record{
		Location:      location,
		Temperature:   payload.Main.Temp,
		FeelsLike:     payload.Main.FeelsLike,
		Humidity:      payload.Main.Humidity,
		WindSpeed:     payload.Wind.Speed,
		WindDirection: payload.Wind.Deg,
		Pressure:      payload.Main.Pressure,
		Visibility:    payload.Visibility / 1000, // meters to km
		UVIndex:       0,                         // not available on the basic plan
		Condition:     payload.Weather[0].Description,
		ConditionCode: payload.Weather[0].Icon,
		Timestamp:     time.Unix(payload.Dt, 0).UTC(),
		Units:         units,
		Source:        weather.SourceLive,
	}, nil
}

func (c *OpenWeatherClient) FetchForecast(ctx context.Context, location string, days int, units weather.Units) (weather.ForecastRecord, error) {
	points, err := c.fetchSeries(ctx, location, units)
	if err != nil {
		return weather.ForecastRecord{}, err
	}

	return weather.ForecastRecord{
		Location:    location,
		Days:        GroupDaily(points, days),
		Units:       units,
		GeneratedAt: time.Now().UTC(),
		Source:      weather.SourceLive,
	}, nil
}

func (c *OpenWeatherClient) FetchHourly(ctx context.Context, location string, hours int, units weather.Units) (weather.HourlyRecord, error) {
	var payload owmForecast
	if err := getJSON(ctx, c.client, c.name, c.endpoint("forecast", location, units), &payload); err != nil {
		return weather.HourlyRecord{}, err
	}
	if len(payload.List) == 0 {
		return weather.HourlyRecord{}, &Error{Kind: KindDataFormat, Provider: c.name, Err: fmt.Errorf("empty forecast list")}
	}

	slices := make([]weather.HourSlice, 0, hours)
	for _, item := range payload.List {
		if len(slices) >= hours {
			break
		}
		if len(item.Weather) == 0 {
			return weather.HourlyRecord{}, &Error{Kind: KindDataFormat, Provider: c.name, Err: fmt.Errorf("missing weather block in forecast entry")}
		}
		slices = append(slices, weather.HourSlice{
			Time:                time.Unix(item.Dt, 0).UTC(),
			Temperature:         item.Main.Temp,
			FeelsLike:           item.Main.FeelsLike,
			Humidity:            item.Main.Humidity,
			WindSpeed:           item.Wind.Speed,
			WindDirection:       item.Wind.Deg,
			Pressure:            item.Main.Pressure,
			Condition:           item.Weather[0].Description,
			ConditionCode:       item.Weather[0].Icon,
			PrecipitationChance: int(item.Pop * 100),
		})
	}

	return weather.HourlyRecord{
		Location:    location,
		Hours:       slices,
		Units:       units,
		GeneratedAt: time.Now().UTC(),
		Source:      weather.SourceLive,
	}, nil
}

func (c *OpenWeatherClient) fetchSeries(ctx context.Context, location string, units weather.Units) ([]SeriesPoint, error) {
	var payload owmForecast
	if err := getJSON(ctx, c.client, c.name, c.endpoint("forecast", location, units), &payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, &Error{Kind: KindDataFormat, Provider: c.name, Err: fmt.Errorf("empty forecast list")}
	}

	points := make([]SeriesPoint, 0, len(payload.List))
	for _, item := range payload.List {
		cond := ""
		if len(item.Weather) > 0 {
			cond = item.Weather[0].Description
		}
		points = append(points, SeriesPoint{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
			PrecipProb:  item.Pop,
			Condition:   cond,
		})
	}
	return points, nil
}

func (c *OpenWeatherClient) endpoint(path, location string, units weather.Units) string {
	values := url.Values{}
	values.Set("appid", c.apiKey)
	values.Set("q", location)
	values.Set("units", string(units))
	return fmt.Sprintf("%s/%s?%s", c.baseURL, path, values.Encode())
}
