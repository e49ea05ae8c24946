// Package duration provides parsing for human-readable duration strings.
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse parses human-readable durations like "1w", "30d", "6mo".
// It returns the time that is the given duration in the past from now.
func Parse(s string) (time.Time, error) {
	d, err := parseUnit(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(-d), nil
}

// ParseDays parses an inactivity threshold expressed in days. A bare number
// is taken as days and may be fractional ("7", "0.5"); a number with a unit
// suffix is converted ("36h" is 1.5, "2w" is 14).
func ParseDays(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative duration: %s", s)
		}
		return v, nil
	}

	d, err := parseUnit(s)
	if err != nil {
		return 0, err
	}
	return d.Hours() / 24, nil
}

func parseUnit(s string) (time.Duration, error) {
	var n int
	var unit string

	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid duration format: %s (use e.g., 36h, 7d, 2w)", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative duration: %s", s)
	}

	switch unit {
	case "m", "min", "mins":
		return time.Duration(n) * time.Minute, nil
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(n) * time.Hour, nil
	case "d", "day", "days":
		return time.Duration(n) * 24 * time.Hour, nil
	case "w", "wk", "wks", "week", "weeks":
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case "mo", "month", "months":
		return time.Duration(n) * 30 * 24 * time.Hour, nil
	case "y", "yr", "yrs", "year", "years":
		return time.Duration(n) * 365 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}
