// Package http exposes the chat query endpoint and the direct weather REST
// endpoints over fiber.
package http

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/chatweather/weatherbot/internal/command"
	"github.com/chatweather/weatherbot/internal/query"
	"github.com/chatweather/weatherbot/internal/upstream"
	"github.com/chatweather/weatherbot/internal/weather"
)

// Handler wires the query service into fiber routes.
type Handler struct {
	svc             *query.Service
	defaultLocation string
	logger          *slog.Logger
}

// NewHandler builds the route handler. defaultLocation is used when neither
// the message nor the user's preferences name one.
func NewHandler(svc *query.Service, defaultLocation string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, defaultLocation: defaultLocation, logger: logger}
}

// Register mounts all routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.health)

	v1 := app.Group("/api/v1")
	v1.Post("/query", h.handleQuery)
	v1.Get("/weather/current", h.handleCurrent)
	v1.Get("/weather/forecast", h.handleForecast)
	v1.Get("/weather/hourly", h.handleHourly)
}

func (h *Handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type queryRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type queryResponse struct {
	Intent   command.Intent `json:"intent"`
	Location string         `json:"location,omitempty"`
	Message  string         `json:"message,omitempty"`
	Data     any            `json:"data,omitempty"`
}

const helpText = `我可以帮你查询天气。试试这些:
  "北京天气" / "weather in London"
  "上海明天的预报" / "forecast for Paris 5 days"
  "杭州24小时预报" / "hourly for Tokyo"
  "设置位置 深圳" / "set location to Berlin"
  "设置单位 华氏度" / "set units to imperial"`

func (h *Handler) handleQuery(c *fiber.Ctx) error {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "request body must be JSON with userId and message")
	}

	cmd, ok := h.svc.Classify(req.Message)
	if !ok {
		return badRequest(c, "message must not be empty")
	}

	switch cmd.Intent {
	case command.IntentHelp:
		return c.JSON(queryResponse{Intent: cmd.Intent, Message: helpText})

	case command.IntentSetLocation:
		if cmd.Location == "" {
			return badRequest(c, "tell me which location to remember, e.g. \"set location to Beijing\"")
		}
		if err := h.svc.Prefs().SetDefaultLocation(req.UserID, cmd.Location); err != nil {
			return badRequest(c, err.Error())
		}
		return c.JSON(queryResponse{
			Intent:   cmd.Intent,
			Location: cmd.Location,
			Message:  "Default location saved: " + cmd.Location,
		})

	case command.IntentSetUnits:
		units := weather.Units(cmd.Params["units"])
		if !units.Valid() {
			return badRequest(c, "supported units are metric and imperial")
		}
		if err := h.svc.Prefs().SetUnits(req.UserID, units); err != nil {
			return badRequest(c, err.Error())
		}
		return c.JSON(queryResponse{
			Intent:  cmd.Intent,
			Message: "Units saved: " + string(units),
		})

	case command.IntentAlerts:
		return c.JSON(queryResponse{
			Intent:   cmd.Intent,
			Location: cmd.Location,
			Message:  "Weather alerts are not available yet.",
		})

	case command.IntentActivities:
		return c.JSON(queryResponse{
			Intent:   cmd.Intent,
			Location: cmd.Location,
			Message:  "Activity recommendations are not available yet.",
		})
	}

	location := h.pickLocation(cmd.Location, req.UserID)
	if location == "" {
		return badRequest(c, "which location? Tell me a city, or set a default with \"set location to ...\"")
	}

	switch cmd.Intent {
	case command.IntentHourlyForecast:
		hours := paramInt(cmd.Params, "hours", 24)
		rec, err := h.svc.HourlyForecast(c.Context(), location, hours, req.UserID)
		if err != nil {
			return h.renderError(c, err)
		}
		return c.JSON(queryResponse{Intent: cmd.Intent, Location: rec.Location, Data: rec})

	case command.IntentForecast:
		days := paramInt(cmd.Params, "days", 3)
		rec, err := h.svc.Forecast(c.Context(), location, days, req.UserID)
		if err != nil {
			return h.renderError(c, err)
		}
		return c.JSON(queryResponse{Intent: cmd.Intent, Location: rec.Location, Data: rec})

	default:
		rec, err := h.svc.CurrentWeather(c.Context(), location, req.UserID)
		if err != nil {
			return h.renderError(c, err)
		}
		return c.JSON(queryResponse{Intent: command.IntentCurrentWeather, Location: rec.Location, Data: rec})
	}
}

func (h *Handler) handleCurrent(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		return badRequest(c, "location query parameter is required")
	}
	rec, err := h.svc.CurrentWeather(c.Context(), location, c.Query("userId"))
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(rec)
}

func (h *Handler) handleForecast(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		return badRequest(c, "location query parameter is required")
	}
	days, err := strconv.Atoi(c.Query("days", "3"))
	if err != nil {
		return badRequest(c, "days must be an integer")
	}
	rec, err := h.svc.Forecast(c.Context(), location, days, c.Query("userId"))
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(rec)
}

func (h *Handler) handleHourly(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		return badRequest(c, "location query parameter is required")
	}
	hours, err := strconv.Atoi(c.Query("hours", "24"))
	if err != nil {
		return badRequest(c, "hours must be an integer")
	}
	rec, err := h.svc.HourlyForecast(c.Context(), location, hours, c.Query("userId"))
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(rec)
}

// pickLocation falls back from the message's location to the user's saved
// default, then to the server-wide default.
func (h *Handler) pickLocation(fromMessage, userID string) string {
	if fromMessage != "" {
		return fromMessage
	}
	if saved := h.svc.Prefs().Get(userID).DefaultLocation; saved != "" {
		return saved
	}
	return h.defaultLocation
}

// renderError maps pipeline errors to status codes and user-safe messages.
func (h *Handler) renderError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadGateway

	var ve *weather.ValidationError
	var le *weather.LocationError
	switch {
	case errors.As(err, &ve), errors.As(err, &le):
		status = fiber.StatusBadRequest
	case errors.Is(err, upstream.ErrBreakerOpen):
		status = fiber.StatusServiceUnavailable
	default:
		switch upstream.KindOf(err) {
		case upstream.KindNotFound, upstream.KindBadRequest:
			status = fiber.StatusBadRequest
		case upstream.KindRateLimit, upstream.KindQuota:
			status = fiber.StatusTooManyRequests
		case upstream.KindMaintenance:
			status = fiber.StatusServiceUnavailable
		}
	}

	if status >= 500 {
		h.logger.Error("query failed", "status", status, "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": query.UserMessage(err)})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func paramInt(params map[string]string, key string, fallback int) int {
	if v, ok := params[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
