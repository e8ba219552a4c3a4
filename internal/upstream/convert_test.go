package upstream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day1(hour int) time.Time {
	return time.Date(2026, 8, 28, hour, 0, 0, 0, time.UTC)
}

func day2(hour int) time.Time {
	return time.Date(2026, 8, 29, hour, 0, 0, 0, time.UTC)
}

func TestGroupDaily(t *testing.T) {
	points := []SeriesPoint{
		{Time: day1(0), Temperature: 18, Humidity: 60, WindSpeed: 10, PrecipProb: 0.2, Condition: "clouds"},
		{Time: day1(6), Temperature: 22, Humidity: 50, WindSpeed: 12, PrecipProb: 0.4, Condition: "rain"},
		{Time: day1(12), Temperature: 27, Humidity: 40, WindSpeed: 14, PrecipProb: 0.6, Condition: "rain"},
		{Time: day2(0), Temperature: 15, Humidity: 80, WindSpeed: 8, PrecipProb: 0.1, Condition: "clear"},
		{Time: day2(12), Temperature: 19, Humidity: 70, WindSpeed: 6, PrecipProb: 0.1, Condition: "clear"},
	}

	days := GroupDaily(points, 5)
	require.Len(t, days, 2)

	first := days[0]
	assert.Equal(t, "2026-08-28", first.Date.Format("2006-01-02"))
	assert.Equal(t, 27.0, first.HighTemp)
	assert.Equal(t, 18.0, first.LowTemp)
	assert.Equal(t, 50, first.Humidity)
	assert.Equal(t, 12.0, first.WindSpeed)
	assert.Equal(t, 40, first.PrecipitationChance)
	assert.Equal(t, "rain", first.Condition)

	second := days[1]
	assert.Equal(t, "2026-08-29", second.Date.Format("2006-01-02"))
	assert.Equal(t, 19.0, second.HighTemp)
	assert.Equal(t, 15.0, second.LowTemp)
	assert.Equal(t, "clear", second.Condition)
}

func TestGroupDailyTruncates(t *testing.T) {
	points := []SeriesPoint{
		{Time: day1(12), Temperature: 20, Condition: "clear"},
		{Time: day2(12), Temperature: 21, Condition: "clear"},
		{Time: day2(12).AddDate(0, 0, 1), Temperature: 22, Condition: "clear"},
	}

	days := GroupDaily(points, 2)
	require.Len(t, days, 2)
	assert.True(t, days[0].Date.Before(days[1].Date))
}

func TestGroupDailyConditionTieBreak(t *testing.T) {
	points := []SeriesPoint{
		{Time: day1(0), Temperature: 20, Condition: "clouds"},
		{Time: day1(6), Temperature: 20, Condition: "rain"},
		{Time: day1(12), Temperature: 20, Condition: "rain"},
		{Time: day1(18), Temperature: 20, Condition: "clouds"},
	}

	days := GroupDaily(points, 1)
	require.Len(t, days, 1)
	// Tie on count goes to the condition seen first.
	assert.Equal(t, "clouds", days[0].Condition)
}

func TestGroupDailyAscendingRegardlessOfInputOrder(t *testing.T) {
	points := []SeriesPoint{
		{Time: day2(0), Temperature: 10, Condition: "clear"},
		{Time: day1(0), Temperature: 10, Condition: "clear"},
	}

	days := GroupDaily(points, 7)
	require.Len(t, days, 2)
	assert.True(t, days[0].Date.Before(days[1].Date))
}

func TestGroupDailyEmpty(t *testing.T) {
	assert.Empty(t, GroupDaily(nil, 3))
}
