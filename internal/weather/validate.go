package weather

import "strings"

// Plausibility bounds for incoming data. Values outside them are clamped
// rather than rejected so a best-effort record is always served.
const (
	minTemperature = -100.0
	maxTemperature = 60.0
	minPressure    = 800.0
	maxPressure    = 1100.0
	maxWindSpeed   = 500.0
)

// Valid reports whether rec is inside the plausible ranges. Pure function,
// no side effects.
func Valid(rec Record) bool {
	if rec.Temperature < minTemperature || rec.Temperature > maxTemperature {
		return false
	}
	if rec.Humidity < 0 || rec.Humidity > 100 {
		return false
	}
	if rec.WindSpeed < 0 || rec.WindSpeed > maxWindSpeed {
		return false
	}
	if rec.Pressure < minPressure || rec.Pressure > maxPressure {
		return false
	}
	if rec.Location == "" || rec.Condition == "" {
		return false
	}
	return true
}

// Sanitize clamps out-of-range values to the nearest bound, normalizes the
// wind direction to [0,360) and trims text fields. Idempotent: a second
// pass over already-clamped data is a no-op.
func Sanitize(rec Record) Record {
	rec.Temperature = clamp(rec.Temperature, minTemperature, maxTemperature)
	rec.Humidity = clampInt(rec.Humidity, 0, 100)
	rec.WindSpeed = clamp(rec.WindSpeed, 0, maxWindSpeed)
	rec.Pressure = clamp(rec.Pressure, minPressure, maxPressure)

	rec.WindDirection = ((rec.WindDirection % 360) + 360) % 360

	rec.Location = strings.TrimSpace(rec.Location)
	rec.Condition = strings.TrimSpace(rec.Condition)
	return rec
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
