package upstream

import (
	"math"
	"sort"
	"time"

	"github.com/chatweather/weatherbot/internal/weather"
)

// SeriesPoint is one entry of a provider's raw forecast time series
// (OpenWeatherMap emits one every three hours).
type SeriesPoint struct {
	Time        time.Time
	Temperature float64
	Humidity    int
	WindSpeed   float64
	PrecipProb  float64 // probability in [0,1]
	Condition   string
}

// GroupDaily collapses a raw time series into at most days daily entries.
// Per calendar date: high is the max temperature, low the min, humidity and
// wind speed arithmetic means, precipitation chance the mean probability as
// a rounded percentage, and condition the most frequent string with ties
// broken by first appearance. Days come out in ascending date order.
func GroupDaily(points []SeriesPoint, days int) []weather.ForecastDay {
	byDate := make(map[string][]SeriesPoint)
	for _, p := range points {
		key := p.Time.UTC().Format("2006-01-02")
		byDate[key] = append(byDate[key], p)
	}

	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]weather.ForecastDay, 0, days)
	for _, k := range keys {
		if len(out) >= days {
			break
		}
		entries := byDate[k]

		day := weather.ForecastDay{
			HighTemp: entries[0].Temperature,
			LowTemp:  entries[0].Temperature,
		}
		day.Date, _ = time.Parse("2006-01-02", k)

		var sumHumidity, sumWind, sumProb float64
		counts := make(map[string]int)
		firstSeen := make(map[string]int)
		for i, e := range entries {
			if e.Temperature > day.HighTemp {
				day.HighTemp = e.Temperature
			}
			if e.Temperature < day.LowTemp {
				day.LowTemp = e.Temperature
			}
			sumHumidity += float64(e.Humidity)
			sumWind += e.WindSpeed
			sumProb += e.PrecipProb
			if _, ok := firstSeen[e.Condition]; !ok {
				firstSeen[e.Condition] = i
			}
			counts[e.Condition]++
		}

		n := float64(len(entries))
		day.Humidity = int(math.Round(sumHumidity / n))
		day.WindSpeed = sumWind / n
		day.PrecipitationChance = int(math.Round(sumProb / n * 100))
		day.Condition = modeCondition(counts, firstSeen)

		out = append(out, day)
	}
	return out
}

func modeCondition(counts map[string]int, firstSeen map[string]int) string {
	best := ""
	bestCount := -1
	for cond, count := range counts {
		if count > bestCount || (count == bestCount && firstSeen[cond] < firstSeen[best]) {
			best = cond
			bestCount = count
		}
	}
	return best
}
