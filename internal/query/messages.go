package query

import (
	"errors"

	"github.com/chatweather/weatherbot/internal/upstream"
	"github.com/chatweather/weatherbot/internal/weather"
)

// userMessages maps failure kinds to stable, user-presentable text. Raw
// provider errors never reach the chat surface.
var userMessages = map[upstream.Kind]string{
	upstream.KindRateLimit:    "The weather service is busy right now, please try again in a minute.",
	upstream.KindNotFound:     "I couldn't find that location, please check the spelling.",
	upstream.KindNetwork:      "I couldn't reach the weather service, please try again shortly.",
	upstream.KindUnauthorized: "The weather service rejected our credentials, please contact the operator.",
	upstream.KindForbidden:    "The weather service refused the request, please contact the operator.",
	upstream.KindQuota:        "The daily weather quota is used up, please try again tomorrow.",
	upstream.KindMaintenance:  "The weather service is under maintenance, please try again later.",
	upstream.KindServer:       "The weather service had an internal problem, please try again later.",
	upstream.KindBadRequest:   "That request doesn't look right, please rephrase it.",
	upstream.KindDataFormat:   "The weather service returned unusable data, please try again later.",
	upstream.KindUnknown:      "Something went wrong fetching the weather, please try again later.",
}

// UserMessage renders any pipeline error as a safe message for the chat
// surface.
func UserMessage(err error) string {
	var ve *weather.ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	var le *weather.LocationError
	if errors.As(err, &le) {
		return le.Error()
	}
	if errors.Is(err, upstream.ErrBreakerOpen) {
		return "The weather service is temporarily unavailable, please try again in a minute."
	}
	return userMessages[upstream.KindOf(err)]
}
