package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatweather/weatherbot/internal/cache"
	"github.com/chatweather/weatherbot/internal/locate"
	"github.com/chatweather/weatherbot/internal/observability"
	"github.com/chatweather/weatherbot/internal/prefs"
	"github.com/chatweather/weatherbot/internal/query"
	"github.com/chatweather/weatherbot/internal/upstream"
	"github.com/chatweather/weatherbot/internal/weather"
)

type stubClient struct {
	err error
}

func (c *stubClient) Name() string { return "stub" }

func (c *stubClient) FetchCurrent(_ context.Context, location string, units weather.Units) (weather.Record, error) {
	if c.err != nil {
		return weather.Record{}, c.err
	}
	return weather.Record{
		Location:    location,
		Temperature: 21,
		Humidity:    50,
		WindSpeed:   5,
		Pressure:    1010,
		Condition:   "clear",
		Timestamp:   time.Now(),
		Units:       units,
	}, nil
}

func (c *stubClient) FetchForecast(_ context.Context, location string, days int, units weather.Units) (weather.ForecastRecord, error) {
	if c.err != nil {
		return weather.ForecastRecord{}, c.err
	}
	return weather.ForecastRecord{Location: location, Units: units}, nil
}

func (c *stubClient) FetchHourly(_ context.Context, location string, hours int, units weather.Units) (weather.HourlyRecord, error) {
	if c.err != nil {
		return weather.HourlyRecord{}, c.err
	}
	return weather.HourlyRecord{Location: location, Units: units}, nil
}

func newTestApp(t *testing.T, client upstream.Client) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := query.New(client, cache.NewMemoryStore(), locate.NewStaticResolver(),
		prefs.NewMemoryStore(weather.UnitsMetric, "zh"), query.Options{
			Retry: upstream.RetryPolicy{MaxRetries: 0, BaseDelay: time.Millisecond},
		}, logger, observability.NewMetricsForTesting())

	app := fiber.New()
	NewHandler(svc, "北京", logger).Register(app)
	return app
}

func postQuery(t *testing.T, app *fiber.App, body any) (*queryResponse, int) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/query", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out queryResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return &out, resp.StatusCode
}

func TestQueryCurrentWeather(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	out, status := postQuery(t, app, queryRequest{UserID: "u1", Message: "上海天气怎么样"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "current_weather", string(out.Intent))
	assert.Equal(t, "上海", out.Location)
	assert.NotNil(t, out.Data)
}

func TestQueryEmptyMessage(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	_, status := postQuery(t, app, queryRequest{UserID: "u1", Message: "   "})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestQueryHelp(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	out, status := postQuery(t, app, queryRequest{UserID: "u1", Message: "help"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "help", string(out.Intent))
	assert.NotEmpty(t, out.Message)
}

func TestQueryFallsBackToServerDefaultLocation(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	out, status := postQuery(t, app, queryRequest{UserID: "u1", Message: "天气怎么样"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "北京", out.Location)
}

func TestQuerySetLocationThenImplicitQuery(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	out, status := postQuery(t, app, queryRequest{UserID: "u1", Message: "set location to shanghai"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "set_location", string(out.Intent))

	// A later query without a location uses the saved default.
	out, status = postQuery(t, app, queryRequest{UserID: "u1", Message: "天气怎么样"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "上海", out.Location)
}

func TestQuerySetUnits(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	out, status := postQuery(t, app, queryRequest{UserID: "u1", Message: "set units to imperial"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "set_units", string(out.Intent))
	assert.Contains(t, out.Message, "imperial")
}

func TestQuerySetUnitsUnknown(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	_, status := postQuery(t, app, queryRequest{UserID: "u1", Message: "设置单位 开尔文"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestQueryForecast(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	out, status := postQuery(t, app, queryRequest{UserID: "u1", Message: "forecast for london 5 days"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "forecast", string(out.Intent))
}

func TestQueryAlertsStub(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	out, status := postQuery(t, app, queryRequest{UserID: "u1", Message: "weather alerts for london"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alerts", string(out.Intent))
	assert.NotEmpty(t, out.Message)
}

func TestQueryUpstreamFailureIsUserSafe(t *testing.T) {
	app := newTestApp(t, &stubClient{err: &upstream.Error{Kind: upstream.KindServer, Provider: "stub"}})

	req := httptest.NewRequest("POST", "/api/v1/query", bytes.NewReader([]byte(`{"userId":"u1","message":"上海天气怎么样"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "stub:")
}

func TestRESTCurrentRequiresLocation(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/weather/current", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRESTForecastBounds(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/weather/forecast?location=london&days=17", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/weather/forecast?location=london&days=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRESTHourly(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/weather/hourly?location=london&hours=12", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/weather/hourly?location=london&hours=49", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
