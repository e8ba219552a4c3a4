// Package command classifies natural-language weather queries into
// structured commands.
package command

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentCurrentWeather Intent = "current_weather"
	IntentForecast       Intent = "forecast"
	IntentHourlyForecast Intent = "hourly_forecast"
	IntentSetLocation    Intent = "set_location"
	IntentSetUnits       Intent = "set_units"
	IntentHelp           Intent = "help"
	IntentAlerts         Intent = "alerts"
	IntentActivities     Intent = "activities"
)

// TimePeriod is a symbolic time tag. Tags are not resolved to concrete
// dates at parse time; the orchestrator interprets them.
type TimePeriod string

const (
	PeriodToday            TimePeriod = "today"
	PeriodTomorrow         TimePeriod = "tomorrow"
	PeriodDayAfterTomorrow TimePeriod = "day_after_tomorrow"
	PeriodThisWeek         TimePeriod = "this_week"
	PeriodNextWeek         TimePeriod = "next_week"
)

// Command is one parsed user message. It is constructed once per inbound
// message and consumed once by the dispatcher.
type Command struct {
	Intent     Intent
	Location   string            // empty when none was extracted
	TimePeriod TimePeriod        // empty when none was found
	Params     map[string]string // intent-specific extras: units, days, hours
}
