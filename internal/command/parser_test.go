package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntents(t *testing.T) {
	p := NewParser()

	cases := []struct {
		name     string
		message  string
		intent   Intent
		location string
	}{
		{"chinese current", "天气 北京", IntentCurrentWeather, "北京"},
		{"chinese current suffix", "北京天气怎么样", IntentCurrentWeather, "北京"},
		{"english current", "weather Beijing", IntentCurrentWeather, "Beijing"},
		{"english current in", "what's the weather in London", IntentCurrentWeather, "London"},
		{"chinese forecast", "预报 上海", IntentForecast, "上海"},
		{"chinese tomorrow", "明天上海天气", IntentForecast, "上海"},
		{"english forecast", "forecast for Paris", IntentForecast, "Paris"},
		{"hourly chinese", "北京的小时预报", IntentHourlyForecast, "北京"},
		{"hourly english", "hourly for Tokyo", IntentHourlyForecast, "Tokyo"},
		{"help chinese", "帮助", IntentHelp, ""},
		{"help english", "help", IntentHelp, ""},
		{"set location", "set location to Berlin", IntentSetLocation, "Berlin"},
		{"set units", "set units to imperial", IntentSetUnits, ""},
		{"alerts", "weather alerts for Sydney", IntentAlerts, "Sydney"},
		{"activities", "what can i do in Paris", IntentActivities, "Paris"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, ok := p.Parse(tc.message)
			require.True(t, ok)
			assert.Equal(t, tc.intent, cmd.Intent)
			if tc.location != "" {
				assert.Equal(t, tc.location, cmd.Location)
			}
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	p := NewParser()

	for _, msg := range []string{"", "   ", "\t\n"} {
		_, ok := p.Parse(msg)
		assert.False(t, ok, "message %q", msg)
	}
}

func TestParseGarbageNeverPanics(t *testing.T) {
	p := NewParser()

	garbage := []string{
		"asdfghjkl",
		"!!!???,,,。。。",
		"1234567890",
		"☀️🌧️❄️",
		"天气天气天气天气天气",
		"in in in for at",
	}
	for _, msg := range garbage {
		cmd, ok := p.Parse(msg)
		require.True(t, ok, "message %q", msg)
		// Unclassifiable input degrades to a current-weather query.
		assert.Equal(t, IntentCurrentWeather, cmd.Intent, "message %q", msg)
	}
}

func TestParseDeterministic(t *testing.T) {
	p := NewParser()

	first, ok := p.Parse("明天上海天气怎么样")
	require.True(t, ok)
	for i := 0; i < 50; i++ {
		cmd, ok := p.Parse("明天上海天气怎么样")
		require.True(t, ok)
		assert.Equal(t, first, cmd)
	}
}

func TestExtractDays(t *testing.T) {
	p := NewParser()

	cases := []struct {
		message string
		days    string
	}{
		{"明天的预报 北京", "1"},
		{"后天的预报 北京", "2"},
		{"三天预报 北京", "3"},
		{"一周预报 北京", "7"},
		{"forecast for London 5 days", "5"},
		{"预报 北京", ""},
		{"forecast for London 99 days", ""},
	}
	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			cmd, ok := p.Parse(tc.message)
			require.True(t, ok)
			require.Equal(t, IntentForecast, cmd.Intent)
			assert.Equal(t, tc.days, cmd.Params["days"])
		})
	}
}

func TestExtractHours(t *testing.T) {
	p := NewParser()

	cases := []struct {
		message string
		hours   string
	}{
		{"北京12小时预报", "12"},
		{"hourly forecast for London 6 hours", "6"},
		{"北京小时预报", "24"},
		{"hourly for Tokyo", "24"},
	}
	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			cmd, ok := p.Parse(tc.message)
			require.True(t, ok)
			require.Equal(t, IntentHourlyForecast, cmd.Intent)
			assert.Equal(t, tc.hours, cmd.Params["hours"])
		})
	}
}

func TestExtractUnits(t *testing.T) {
	cases := []struct {
		text  string
		units string
	}{
		{"set units to metric", "metric"},
		{"set units to imperial", "imperial"},
		{"设置单位 摄氏度", "metric"},
		{"设置单位 华氏度", "imperial"},
		{"set units to c", "metric"},
		{"set units to f", "imperial"},
		// Bare letters must be standalone tokens, not substrings.
		{"set units to fahrenheit please", "imperial"},
		{"set units to celcius", ""},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.units, extractUnits(tc.text))
		})
	}
}

func TestTimePeriods(t *testing.T) {
	p := NewParser()

	cases := []struct {
		message string
		period  TimePeriod
	}{
		{"今天北京天气", PeriodToday},
		{"明天北京天气", PeriodTomorrow},
		{"后天北京天气", PeriodDayAfterTomorrow},
		{"这周北京天气", PeriodThisWeek},
		{"下周北京天气", PeriodNextWeek},
		{"weather in London tomorrow", PeriodTomorrow},
		{"北京天气", TimePeriod("")},
	}
	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			cmd, ok := p.Parse(tc.message)
			require.True(t, ok)
			assert.Equal(t, tc.period, cmd.TimePeriod)
		})
	}
}
