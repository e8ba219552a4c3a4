package weather

import (
	"fmt"
	"strings"
)

// ValidationError reports request parameters that are out of bounds.
// It is terminal: never retried, never degraded.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// LocationError reports a location that could not be resolved, optionally
// carrying spelling suggestions.
type LocationError struct {
	Location    string
	Suggestions []string
}

func (e *LocationError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("location %q not found, did you mean: %s", e.Location, strings.Join(e.Suggestions, ", "))
	}
	return fmt.Sprintf("cannot resolve location %q", e.Location)
}
