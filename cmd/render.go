package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spiffcs/checkin/config"
	"github.com/spiffcs/checkin/internal/bot"
	"github.com/spiffcs/checkin/internal/template"
)

// NewCmdRender creates the render command.
func NewCmdRender() *cobra.Command {
	var tmpl string
	var vars []string
	var strict bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Preview the reminder message",
		Long: `Render comment_message (or --template) with the configured bindings
plus any --var key=value pairs, and list placeholders left unresolved.

Item-specific placeholders such as {{ author }} stay unresolved unless
passed with --var.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runRender(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, tmpl, vars, strict)
		},
	}

	cmd.Flags().StringVar(&tmpl, "template", "", "Template to render (default: comment_message)")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Binding as key=value (repeatable)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when placeholders remain unresolved")

	return cmd
}

func runRender(stdout, stderr io.Writer, cfg *config.Config, tmpl string, vars []string, strict bool) error {
	if tmpl == "" {
		tmpl = cfg.CommentMessage
	}

	bindings, err := renderBindings(cfg, vars)
	if err != nil {
		return err
	}

	res := template.Render(tmpl, bindings)
	_, _ = fmt.Fprintln(stdout, res.Output)

	if res.Complete() {
		return nil
	}
	_, _ = fmt.Fprintf(stderr, "unresolved: %s\n", strings.Join(res.Unresolved, ", "))
	if strict {
		return fmt.Errorf("%w: %s", bot.ErrUnresolvedPlaceholders, strings.Join(res.Unresolved, ", "))
	}
	return nil
}

// renderBindings returns the config-level bindings overlaid with vars.
func renderBindings(cfg *config.Config, vars []string) (template.Bindings, error) {
	b := template.Bindings{}
	for k, v := range cfg.Vars {
		b[k] = v
	}
	b[bot.VarDaysInactive] = bot.FormatDays(cfg.Threshold())
	b[bot.VarCheckInMessage] = cfg.CheckInMessage

	for _, kv := range vars {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", kv)
		}
		b[strings.TrimSpace(k)] = v
	}
	return b, nil
}

