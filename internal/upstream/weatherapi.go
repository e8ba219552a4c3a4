package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/chatweather/weatherbot/internal/weather"
)

// WeatherAPIClient implements Client for WeatherAPI.com.
type WeatherAPIClient struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewWeatherAPIClient(client *http.Client, apiKey string) *WeatherAPIClient {
	return &WeatherAPIClient{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		client:  client,
	}
}

func (c *WeatherAPIClient) Name() string { return c.name }

type wapiCondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type wapiCurrent struct {
	Current struct {
		LastUpdatedEpoch int64         `json:"last_updated_epoch"`
		TempC            float64       `json:"temp_c"`
		TempF            float64       `json:"temp_f"`
		FeelslikeC       float64       `json:"feelslike_c"`
		FeelslikeF       float64       `json:"feelslike_f"`
		Humidity         int           `json:"humidity"`
		WindKph          float64       `json:"wind_kph"`
		WindMph          float64       `json:"wind_mph"`
		WindDegree       int           `json:"wind_degree"`
		PressureMb       float64       `json:"pressure_mb"`
		VisKm            float64       `json:"vis_km"`
		VisMiles         float64       `json:"vis_miles"`
		UV               float64       `json:"uv"`
		Condition        wapiCondition `json:"condition"`
	} `json:"current"`
}

type wapiForecast struct {
	Forecast struct {
		Forecastday []struct {
			Date      string `json:"date"`
			DateEpoch int64  `json:"date_epoch"`
			Day       struct {
				MaxtempC          float64       `json:"maxtemp_c"`
				MaxtempF          float64       `json:"maxtemp_f"`
				MintempC          float64       `json:"mintemp_c"`
				MintempF          float64       `json:"mintemp_f"`
				MaxwindKph        float64       `json:"maxwind_kph"`
				MaxwindMph        float64       `json:"maxwind_mph"`
				Avghumidity       float64       `json:"avghumidity"`
				DailyChanceOfRain int           `json:"daily_chance_of_rain"`
				Condition         wapiCondition `json:"condition"`
			} `json:"day"`
			Hour []struct {
				TimeEpoch    int64         `json:"time_epoch"`
				TempC        float64       `json:"temp_c"`
				TempF        float64       `json:"temp_f"`
				FeelslikeC   float64       `json:"feelslike_c"`
				FeelslikeF   float64       `json:"feelslike_f"`
				Humidity     int           `json:"humidity"`
				WindKph      float64       `json:"wind_kph"`
				WindMph      float64       `json:"wind_mph"`
				WindDegree   int           `json:"wind_degree"`
				PressureMb   float64       `json:"pressure_mb"`
				ChanceOfRain int           `json:"chance_of_rain"`
				Condition    wapiCondition `json:"condition"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (c *WeatherAPIClient) FetchCurrent(ctx context.Context, location string, units weather.Units) (weather.Record, error) {
	var payload wapiCurrent
	if err := getJSON(ctx, c.client, c.name, c.endpoint("current.json", location, nil), &payload); err != nil {
		return weather.Record{}, err
	}
	cur := payload.Current
	if cur.Condition.Text == "" {
		return weather.Record{}, &Error{Kind: KindDataFormat, Provider: c.name, Err: fmt.Errorf("missing condition block")}
	}

	metric := units == weather.UnitsMetric
	return weather.Record{
		Location:      location,
		Temperature:   pick(metric, cur.TempC, cur.TempF),
		FeelsLike:     pick(metric, cur.FeelslikeC, cur.FeelslikeF),
		Humidity:      cur.Humidity,
		WindSpeed:     pick(metric, cur.WindKph, cur.WindMph),
		WindDirection: cur.WindDegree,
		Pressure:      cur.PressureMb,
		Visibility:    pick(metric, cur.VisKm, cur.VisMiles),
		UVIndex:       cur.UV,
		Condition:     cur.Condition.Text,
		ConditionCode: cur.Condition.Icon,
		Timestamp:     time.Unix(cur.LastUpdatedEpoch, 0).UTC(),
		Units:         units,
		Source:        weather.SourceLive,
	}, nil
}

func (c *WeatherAPIClient) FetchForecast(ctx context.Context, location string, days int, units weather.Units) (weather.ForecastRecord, error) {
	var payload wapiForecast
	params := url.Values{"days": []string{strconv.Itoa(days)}}
	if err := getJSON(ctx, c.client, c.name, c.endpoint("forecast.json", location, params), &payload); err != nil {
		return weather.ForecastRecord{}, err
	}
	if len(payload.Forecast.Forecastday) == 0 {
		return weather.ForecastRecord{}, &Error{Kind: KindDataFormat, Provider: c.name, Err: fmt.Errorf("empty forecastday list")}
	}

	metric := units == weather.UnitsMetric
	out := make([]weather.ForecastDay, 0, days)
	for _, fd := range payload.Forecast.Forecastday {
		if len(out) >= days {
			break
		}
		date, err := time.Parse("2006-01-02", fd.Date)
		if err != nil {
			return weather.ForecastRecord{}, &Error{Kind: KindDataFormat, Provider: c.name, Err: fmt.Errorf("bad forecast date %q", fd.Date)}
		}
		out = append(out, weather.ForecastDay{
			Date:                date,
			HighTemp:            pick(metric, fd.Day.MaxtempC, fd.Day.MaxtempF),
			LowTemp:             pick(metric, fd.Day.MintempC, fd.Day.MintempF),
			Condition:           fd.Day.Condition.Text,
			PrecipitationChance: fd.Day.DailyChanceOfRain,
			WindSpeed:           pick(metric, fd.Day.MaxwindKph, fd.Day.MaxwindMph),
			Humidity:            int(fd.Day.Avghumidity),
		})
	}

	return weather.ForecastRecord{
		Location:    location,
		Days:        out,
		Units:       units,
		GeneratedAt: time.Now().UTC(),
		Source:      weather.SourceLive,
	}, nil
}

func (c *WeatherAPIClient) FetchHourly(ctx context.Context, location string, hours int, units weather.Units) (weather.HourlyRecord, error) {
	var payload wapiForecast
	// WeatherAPI returns hours per forecast day; request enough days to
	// cover the horizon.
	daysNeeded := (hours + 23) / 24
	params := url.Values{"days": []string{strconv.Itoa(daysNeeded + 1)}}
	if err := getJSON(ctx, c.client, c.name, c.endpoint("forecast.json", location, params), &payload); err != nil {
		return weather.HourlyRecord{}, err
	}
	if len(payload.Forecast.Forecastday) == 0 {
		return weather.HourlyRecord{}, &Error{Kind: KindDataFormat, Provider: c.name, Err: fmt.Errorf("empty forecastday list")}
	}

	metric := units == weather.UnitsMetric
	now := time.Now().UTC()
	slices := make([]weather.HourSlice, 0, hours)
	for _, fd := range payload.Forecast.Forecastday {
		for _, h := range fd.Hour {
			if len(slices) >= hours {
				break
			}
			ts := time.Unix(h.TimeEpoch, 0).UTC()
			if !ts.After(now) {
				continue
			}
			slices = append(slices, weather.HourSlice{
				Time:                ts,
				Temperature:         pick(metric, h.TempC, h.TempF),
				FeelsLike:           pick(metric, h.FeelslikeC, h.FeelslikeF),
				Humidity:            h.Humidity,
				WindSpeed:           pick(metric, h.WindKph, h.WindMph),
				WindDirection:       h.WindDegree,
				Pressure:            h.PressureMb,
				Condition:           h.Condition.Text,
				ConditionCode:       h.Condition.Icon,
				PrecipitationChance: h.ChanceOfRain,
			})
		}
	}

	return weather.HourlyRecord{
		Location:    location,
		Hours:       slices,
		Units:       units,
		GeneratedAt: now,
		Source:      weather.SourceLive,
	}, nil
}

func (c *WeatherAPIClient) endpoint(path, location string, extra url.Values) string {
	values := url.Values{}
	values.Set("key", c.apiKey)
	values.Set("q", location)
	for k, vs := range extra {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	return fmt.Sprintf("%s/%s?%s", c.baseURL, path, values.Encode())
}

func pick(metric bool, m, i float64) float64 {
	if metric {
		return m
	}
	return i
}
