package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spiffcs/checkin/config"
)

// NewCmdConfig creates the config command. Run bare, it prints the merged
// configuration like "config show".
func NewCmdConfig() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Long: `Show or manage configuration.

Without a subcommand the merged configuration is printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showMergedConfig(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(
		newCmdConfigInit(),
		newCmdConfigPath(),
		newCmdConfigPrint("defaults", "Show all default configuration values",
			`Print a configuration holding every default value. Redirect it to start
a config file:
  checkin config defaults > ~/.config/checkin/config.yaml`,
			func(w io.Writer, format string) error { return printConfig(w, config.DefaultConfig(), format) }),
		newCmdConfigPrint("show", "Show current merged configuration",
			"Print the configuration after merging defaults, global and local files.",
			showMergedConfig),
		newCmdConfigSet(),
	)
	return cmd
}

// newCmdConfigPrint builds a subcommand that prints a config in yaml or json.
func newCmdConfigPrint(use, short, long string, show func(io.Writer, string) error) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return show(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "Output format (yaml, json)")
	return cmd
}

func newCmdConfigInit() *cobra.Command {
	var global, local bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter config file",
		Long: `Write a commented starter config file.

--global writes ~/.config/checkin/config.yaml, --local writes ./.checkin.yaml.
With neither flag you are asked which one to create.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			path, where, err := initTarget(global, local, config.GetConfigPaths(), cmd.InOrStdin(), out)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			}
			if err := config.SaveTo(path, config.MinimalConfig()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s config file: %s\n", where, path)
			fmt.Fprintln(out, "Run 'checkin config defaults' to see every option.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "Create the global config file")
	cmd.Flags().BoolVar(&local, "local", false, "Create the config file in the current directory")
	cmd.MarkFlagsMutuallyExclusive("global", "local")
	return cmd
}

// initTarget picks the file "config init" writes, prompting on in when
// neither location flag was given.
func initTarget(global, local bool, paths config.ConfigPathInfo, in io.Reader, out io.Writer) (path, where string, err error) {
	switch {
	case global && local:
		return "", "", errors.New("cannot specify both --global and --local")
	case global:
		return paths.GlobalPath, "global", nil
	case local:
		return paths.LocalPath, "local", nil
	}

	fmt.Fprintf(out, "Create the config file where?\n  [1] global %s\n  [2] local  %s\nChoose [1/2]: ", paths.GlobalPath, paths.LocalPath)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && answer != "") {
		return "", "", fmt.Errorf("read choice: %w", err)
	}
	fmt.Fprintln(out)

	switch strings.TrimSpace(answer) {
	case "1", "global":
		return paths.GlobalPath, "global", nil
	case "2", "local":
		return paths.LocalPath, "local", nil
	default:
		return "", "", fmt.Errorf("invalid choice %q (must be 1 or 2)", strings.TrimSpace(answer))
	}
}

func newCmdConfigPath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeConfigPaths(cmd.OutOrStdout(), config.GetConfigPaths())
			return nil
		},
	}
}

func writeConfigPaths(w io.Writer, paths config.ConfigPathInfo) {
	state := func(exists bool) string {
		if exists {
			return "exists"
		}
		return "not found"
	}
	fmt.Fprintf(w, "Global: %s (%s)\n", paths.GlobalPath, state(paths.GlobalExists))
	fmt.Fprintf(w, "Local:  %s (%s)\n", paths.LocalPath, state(paths.LocalExists))
	fmt.Fprintln(w, "\nLoad order: defaults, global, local, environment, flags.")
	fmt.Fprintln(w, "A .env file in the working directory is read into the environment first.")
}

func newCmdConfigSet() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a value in the global config file",
		Long: `Set a value in the global config file. Keys:
  format            default output format (table, json, markdown)
  days_inactive     inactivity threshold (7, 0.5, 36h, 2w)
  bot_username      login of the bot account
  stop_comment      phrase that silences reminders
  ignore_label      label applied to silenced items
  comment_message   reminder template
  check_in_message  text bound to {{ check-in-message }}
  workers           concurrent timeline fetches
  strict_templates  withhold reminders with unresolved placeholders

Tokens are never stored; set GITHUB_TOKEN instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigPath()
			if err := setConfigValue(path, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s in %s\n", args[0], args[1], path)
			return nil
		},
	}
}

// setConfigValue updates one key of the config file at path, leaving the
// rest of its settings in place.
func setConfigValue(path, key, value string) error {
	cfg, err := config.LoadFiles(path, "")
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	return cfg.SaveAt(path)
}

func showMergedConfig(w io.Writer, format string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return printConfig(w, cfg, format)
}

// printConfig writes cfg as yaml or indented json.
func printConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "yaml":
		s, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, s)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("invalid format %q (must be yaml or json)", format)
	}
}
