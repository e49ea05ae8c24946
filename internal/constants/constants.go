// Package constants provides a centralized location for configuration
// values and magic numbers used throughout the checkin application.
package constants

import "time"

// TUI update and display constants
const (
	// TUIUpdateInterval is the minimum time between TUI progress updates
	// to provide smooth progress display without excessive overhead.
	TUIUpdateInterval = 50 * time.Millisecond

	// LogThrottlePercent is the interval (in percent) at which progress
	// logs are emitted when not using the TUI.
	LogThrottlePercent = 5
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Cache constants
const (
	// TimelineCacheTTL is the maximum age of a cached comment timeline.
	// Entries are also invalidated whenever the item's updated_at moves.
	TimelineCacheTTL = 24 * time.Hour

	// RunHistoryLimit is the number of run summaries kept in the history file.
	RunHistoryLimit = 1000
)

// Defaults for the reminder policy.
const (
	DefaultDaysInactive   = 7.0
	DefaultIgnoreLabel    = "ignore-checkin"
	DefaultStopComment    = "checkin stop"
	DefaultCheckInMessage = "Is there any update on this? Reply `checkin stop` to opt out of reminders."
	DefaultCommentMessage = "{{ check-in-message }}"
	DefaultFormat         = "table"
	DefaultSearchPageSize = 100
)
