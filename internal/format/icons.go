package format

// IconType represents the icon displayed next to an item's outcome.
type IconType int

const (
	// IconNone indicates no icon should be displayed.
	IconNone IconType = iota
	// IconReminder marks an item that was (or would be) reminded.
	IconReminder
	// IconSilenced marks an item that asked the bot to stop.
	IconSilenced
	// IconFailed marks an item whose timeline or effect failed.
	IconFailed
)

// IconInput contains the fields needed to determine which icon to display.
type IconInput struct {
	Action string // "none", "label" or "comment"
	Failed bool
}

// DetermineIcon decides which icon (if any) should be displayed for an outcome.
// Failure takes precedence over the decided action.
func DetermineIcon(input IconInput) IconType {
	if input.Failed {
		return IconFailed
	}
	switch input.Action {
	case "comment":
		return IconReminder
	case "label":
		return IconSilenced
	default:
		return IconNone
	}
}

// Icon strings for display (renderers can apply their own styling)
const (
	// ReminderIcon is the bell emoji for reminders.
	ReminderIcon = "\U0001F514" // 🔔

	// SilencedIcon is the muted bell emoji for silenced items.
	SilencedIcon = "\U0001F515" // 🔕

	// FailedIcon is the warning sign, with U+FE0F to force 2-column emoji presentation.
	FailedIcon = "\u26A0\uFE0F" // ⚠️

	// IconWidth is the display width reserved for the icon column (emoji=2 + space=1).
	IconWidth = 3
)

// String returns the emoji for the icon, or two spaces for IconNone.
func (i IconType) String() string {
	switch i {
	case IconReminder:
		return ReminderIcon
	case IconSilenced:
		return SilencedIcon
	case IconFailed:
		return FailedIcon
	default:
		return "  "
	}
}
