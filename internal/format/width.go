// Package format holds terminal text helpers shared by the report writers.
package format

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ellipsis marks truncated cells.
const ellipsis = "..."

// escapeRegex matches SGR color codes and OSC 8 hyperlink wrappers.
var escapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*m|\x1b\]8;;[^\x1b\a]*(?:\x1b\\|\a)`)

// StripANSI removes color codes and hyperlink wrappers, leaving visible text.
func StripANSI(s string) string {
	return escapeRegex.ReplaceAllString(s, "")
}

// Width returns the number of terminal columns s occupies. A character
// followed by U+FE0F takes two columns, as terminals render it as emoji.
func Width(s string) int {
	w := 0
	var prev rune
	for _, r := range StripANSI(s) {
		if r == '\uFE0F' {
			if prev != 0 && runewidth.RuneWidth(prev) == 1 {
				w++
			}
			prev = 0
			continue
		}
		w += runewidth.RuneWidth(r)
		prev = r
	}
	return w
}

// Truncate shortens s to at most maxWidth columns, ending it with "..." when
// anything was cut. Escape sequences are dropped from truncated output.
// It returns the result and its width.
func Truncate(s string, maxWidth int) (string, int) {
	if w := Width(s); w <= maxWidth {
		return s, w
	}
	if maxWidth < len(ellipsis) {
		return ellipsis[:maxWidth], maxWidth
	}

	limit := maxWidth - len(ellipsis)
	var b strings.Builder
	w := 0
	for _, r := range StripANSI(s) {
		if r == '\uFE0F' {
			continue
		}
		rw := runewidth.RuneWidth(r)
		if w+rw > limit {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	b.WriteString(ellipsis)
	return b.String(), w + len(ellipsis)
}

// PadRight pads s with spaces until it is width columns wide.
func PadRight(s string, width int) string {
	if pad := width - Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
