package cmd

// Options holds the shared command-line options for the checkin CLI.
type Options struct {
	Format          string
	Repos           []string
	DaysInactive    string
	BotUsername     string
	StopComment     string
	IgnoreLabel     string
	Type            string
	Limit           int
	Verbosity       int
	Workers         int
	DryRun          bool
	NoCache         bool
	StrictTemplates bool
	ShowAll         bool   // List skipped items in table and markdown output
	SummaryFile     string // Append a markdown report here (defaults to $GITHUB_STEP_SUMMARY)
	TUI             *bool  // nil = auto-detect, true = force TUI, false = disable TUI

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithRepos sets the repositories to check.
func WithRepos(repos ...string) Option {
	return func(o *Options) {
		o.Repos = repos
	}
}

// WithDaysInactive sets the inactivity threshold (e.g., "7", "0.5", "36h").
func WithDaysInactive(days string) Option {
	return func(o *Options) {
		o.DaysInactive = days
	}
}

// WithType sets the type filter (pr, issue).
func WithType(t string) Option {
	return func(o *Options) {
		o.Type = t
	}
}

// WithLimit sets the maximum number of items per repository.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithWorkers sets the number of concurrent timeline fetches.
func WithWorkers(workers int) Option {
	return func(o *Options) {
		o.Workers = workers
	}
}

// WithDryRun decides without posting comments or adding labels.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}
