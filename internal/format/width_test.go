package format

import "testing"

func TestWidth(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "acme/widgets#1", 14},
		{"colored", "\x1b[32mRemind\x1b[0m", 6},
		{"hyperlink", "\x1b]8;;https://github.com/acme/widgets/issues/1\x1b\\Wobble\x1b]8;;\x1b\\", 6},
		{"cjk", "日本語", 6},
		{"emoji", "🔔", 2},
		{"text presentation upgraded", "\u26a0\ufe0f", 2},
		{"wide emoji with selector", "\U0001F514\ufe0f", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Width(tt.in); got != tt.want {
				t.Errorf("Width(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		max       int
		want      string
		wantWidth int
	}{
		{"fits", "short", 10, "short", 5},
		{"exact", "0123456789", 10, "0123456789", 10},
		{"cut", "Widgets wobble badly", 10, "Widgets...", 10},
		{"wide cut on boundary", "日本語テキスト", 8, "日本...", 7},
		{"colored", "\x1b[31mabcdefghij\x1b[0m", 6, "abc...", 6},
		{"tiny", "abcdef", 2, "..", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, w := Truncate(tt.in, tt.max)
			if got != tt.want || w != tt.wantWidth {
				t.Errorf("Truncate(%q, %d) = %q (%d), want %q (%d)", tt.in, tt.max, got, w, tt.want, tt.wantWidth)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight() = %q", got)
	}
	if got := PadRight("\x1b[32mok\x1b[0m", 4); got != "\x1b[32mok\x1b[0m  " {
		t.Errorf("PadRight() must ignore escapes, got %q", got)
	}
	if got := PadRight("toolong", 3); got != "toolong" {
		t.Errorf("PadRight() = %q, want unchanged", got)
	}
}
