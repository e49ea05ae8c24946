package tui

import "github.com/charmbracelet/lipgloss"

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

var (
	dimStyle     = fg("240")
	nameStyle    = fg("252")
	noteStyle    = fg("244")
	failStyle    = fg("196")
	spinnerStyle = fg("86")
	warnStyle    = fg("214")
	botStyle     = fg("220").Bold(true)
	hintStyle    = fg("240").MarginTop(1)

	statusIcons = map[TaskStatus]string{
		StatusPending:  dimStyle.Render("○"),
		StatusComplete: fg("46").Render("✓"),
		StatusError:    failStyle.Render("✗"),
		StatusSkipped:  dimStyle.Render("-"),
	}
)

// StatusIcon returns the glyph for status. Running tasks show the current
// spinner frame.
func StatusIcon(status TaskStatus, spinnerFrame string) string {
	if status == StatusRunning {
		return spinnerStyle.Render(spinnerFrame)
	}
	if icon, ok := statusIcons[status]; ok {
		return icon
	}
	return statusIcons[StatusPending]
}
