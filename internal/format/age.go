package format

import (
	"fmt"
	"time"
)

// FormatAge renders an elapsed duration compactly ("now", "45m", "30h",
// "9d"). Days are never rolled up into weeks or months, so idle times read
// in the same unit as the inactivity threshold.
func FormatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
