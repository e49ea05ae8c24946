package cmd

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/spiffcs/checkin/internal/tui"
)

// autoBool is a pflag.Value for a boolean that may also be left to
// auto-detection. A nil target means "auto".
type autoBool struct {
	target **bool
}

func (a autoBool) String() string {
	if a.target == nil || *a.target == nil {
		return "auto"
	}
	return strconv.FormatBool(**a.target)
}

func (a autoBool) Set(s string) error {
	if s == "auto" {
		*a.target = nil
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid value %q: use true, false, or auto", s)
	}
	*a.target = &v
	return nil
}

func (autoBool) Type() string { return "bool" }

// IsBoolFlag lets a bare --tui mean --tui=true.
func (autoBool) IsBoolFlag() bool { return true }

// shouldUseTUI reports whether the run should draw the progress display.
// Verbose runs always log instead.
func shouldUseTUI(opts *Options) bool {
	if opts.Verbosity > 0 {
		return false
	}
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.Interactive(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv)
}
