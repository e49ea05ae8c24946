package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spiffcs/checkin/internal/constants"
	"github.com/spiffcs/checkin/internal/duration"
	"github.com/spiffcs/checkin/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a configuration value fails validation.
var ErrInvalid = errors.New("invalid configuration")

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"table", "json", "markdown"}

// Config represents the application configuration
type Config struct {
	Repos          []string `yaml:"repos,omitempty" json:"repos,omitempty"`
	BotUsername    string   `yaml:"bot_username,omitempty" json:"bot_username,omitempty"`
	DaysInactive   *float64 `yaml:"days_inactive,omitempty" json:"days_inactive,omitempty"`
	StopComment    string   `yaml:"stop_comment,omitempty" json:"stop_comment,omitempty"`
	IgnoreLabel    string   `yaml:"ignore_label,omitempty" json:"ignore_label,omitempty"`
	CommentMessage string   `yaml:"comment_message,omitempty" json:"comment_message,omitempty"`
	CheckInMessage string   `yaml:"check_in_message,omitempty" json:"check_in_message,omitempty"`

	// Vars are extra template bindings available to comment_message.
	Vars map[string]string `yaml:"vars,omitempty" json:"vars,omitempty"`

	ItemTypes       []string `yaml:"item_types,omitempty" json:"item_types,omitempty"`
	ExcludeAuthors  []string `yaml:"exclude_authors,omitempty" json:"exclude_authors,omitempty"`
	Workers         int      `yaml:"workers,omitempty" json:"workers,omitempty"`
	StrictTemplates *bool    `yaml:"strict_templates,omitempty" json:"strict_templates,omitempty"`
	DefaultFormat   string   `yaml:"default_format,omitempty" json:"default_format,omitempty"`
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".checkin"
	}
	return filepath.Join(configDir, "checkin")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".checkin.yaml"
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	days := constants.DefaultDaysInactive
	strict := false

	return &Config{
		Repos:           []string{},
		DaysInactive:    &days,
		StopComment:     constants.DefaultStopComment,
		IgnoreLabel:     constants.DefaultIgnoreLabel,
		CommentMessage:  constants.DefaultCommentMessage,
		CheckInMessage:  constants.DefaultCheckInMessage,
		ItemTypes:       []string{string(model.ItemTypeIssue), string(model.ItemTypePullRequest)},
		ExcludeAuthors:  []string{},
		Workers:         10,
		StrictTemplates: &strict,
		DefaultFormat:   constants.DefaultFormat,
	}
}

// Load loads the configuration from disk and the environment.
// Defaults are overlaid by the global config, then any local .checkin.yaml,
// then environment variables (including GitHub Actions inputs).
func Load() (*Config, error) {
	cfg, err := LoadFiles(ConfigPath(), LocalConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFiles merges the given global and local config files over the defaults.
// Missing files are skipped.
func LoadFiles(globalPath, localPath string) (*Config, error) {
	cfg := DefaultConfig()

	for _, f := range []struct{ path, kind string }{{globalPath, "global"}, {localPath, "local"}} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			continue
		}
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s config file: %w", f.kind, err)
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s config file: %w", f.kind, err)
		}
		cfg = mergeConfig(cfg, &fileCfg)
	}

	return cfg, nil
}

// mergeConfig merges overlay on top of base.
// Overlay values take precedence; unset overlay values preserve base values.
func mergeConfig(base, overlay *Config) *Config {
	result := *base

	if len(overlay.Repos) > 0 {
		result.Repos = overlay.Repos
	}
	if overlay.BotUsername != "" {
		result.BotUsername = overlay.BotUsername
	}
	if overlay.DaysInactive != nil {
		result.DaysInactive = overlay.DaysInactive
	}
	if overlay.StopComment != "" {
		result.StopComment = overlay.StopComment
	}
	if overlay.IgnoreLabel != "" {
		result.IgnoreLabel = overlay.IgnoreLabel
	}
	if overlay.CommentMessage != "" {
		result.CommentMessage = overlay.CommentMessage
	}
	if overlay.CheckInMessage != "" {
		result.CheckInMessage = overlay.CheckInMessage
	}
	if len(overlay.ItemTypes) > 0 {
		result.ItemTypes = overlay.ItemTypes
	}
	if len(overlay.ExcludeAuthors) > 0 {
		result.ExcludeAuthors = overlay.ExcludeAuthors
	}
	if overlay.Workers != 0 {
		result.Workers = overlay.Workers
	}
	if overlay.StrictTemplates != nil {
		result.StrictTemplates = overlay.StrictTemplates
	}
	if overlay.DefaultFormat != "" {
		result.DefaultFormat = overlay.DefaultFormat
	}

	// Vars merge key by key
	if len(base.Vars) > 0 || len(overlay.Vars) > 0 {
		result.Vars = make(map[string]string, len(base.Vars)+len(overlay.Vars))
		for k, v := range base.Vars {
			result.Vars[k] = v
		}
		for k, v := range overlay.Vars {
			result.Vars[k] = v
		}
	}

	return &result
}

// Environment variable names read by ApplyEnv.
const (
	EnvToken          = "GITHUB_TOKEN"
	EnvRepository     = "GITHUB_REPOSITORY"
	EnvActionToken    = "INPUT_REPO-TOKEN"
	EnvDaysInactive   = "INPUT_DAYS-INACTIVE"
	EnvCheckInMessage = "INPUT_CHECK-IN-MESSAGE"
	EnvCommentMessage = "INPUT_COMMENT-MESSAGE"
	EnvBotUsername    = "INPUT_BOT-USERNAME"
	EnvIgnoreLabel    = "INPUT_IGNORE-LABEL"
	EnvStopComment    = "INPUT_STOP-COMMENT"
)

// ApplyEnv overlays values from the environment. GitHub Actions passes
// workflow inputs as INPUT_<NAME> variables; GITHUB_REPOSITORY is only used
// when no repository is configured.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvDaysInactive)); v != "" {
		days, err := duration.ParseDays(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvDaysInactive, err)
		}
		c.DaysInactive = &days
	}

	strs := []struct {
		env    string
		target *string
	}{
		{EnvCheckInMessage, &c.CheckInMessage},
		{EnvCommentMessage, &c.CommentMessage},
		{EnvBotUsername, &c.BotUsername},
		{EnvIgnoreLabel, &c.IgnoreLabel},
		{EnvStopComment, &c.StopComment},
	}
	for _, s := range strs {
		if v := getenv(s.env); v != "" {
			*s.target = v
		}
	}

	if len(c.Repos) == 0 {
		if v := strings.TrimSpace(getenv(EnvRepository)); v != "" {
			c.Repos = []string{v}
		}
	}

	return nil
}

// GetGitHubToken returns the GitHub token from the environment.
// GITHUB_TOKEN wins over the action's repo-token input. Tokens are never
// read from config files.
func (c *Config) GetGitHubToken() string {
	if t := os.Getenv(EnvToken); t != "" {
		return t
	}
	return os.Getenv(EnvActionToken)
}

// Threshold returns the inactivity threshold in days.
func (c *Config) Threshold() float64 {
	if c.DaysInactive == nil {
		return constants.DefaultDaysInactive
	}
	return *c.DaysInactive
}

// Strict reports whether unresolved placeholders withhold a reminder.
func (c *Config) Strict() bool {
	return c.StrictTemplates != nil && *c.StrictTemplates
}

// Types returns the configured item types, or all types when unset.
func (c *Config) Types() ([]model.ItemType, error) {
	if len(c.ItemTypes) == 0 {
		return model.AllItemTypes, nil
	}
	seen := make(map[model.ItemType]bool)
	var types []model.ItemType
	for _, s := range c.ItemTypes {
		t, err := model.ParseItemType(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types, nil
}

// IsAuthorExcluded checks if an item author is in the exclude list
func (c *Config) IsAuthorExcluded(author string) bool {
	for _, excluded := range c.ExcludeAuthors {
		if strings.EqualFold(excluded, author) {
			return true
		}
	}
	return false
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	var problems []string

	if d := c.Threshold(); math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		problems = append(problems, fmt.Sprintf("days_inactive must be a non-negative number, got %v", d))
	}
	if strings.TrimSpace(c.IgnoreLabel) == "" {
		problems = append(problems, "ignore_label must not be empty")
	}
	if strings.TrimSpace(c.CommentMessage) == "" {
		problems = append(problems, "comment_message must not be empty")
	}
	if c.Workers < 0 {
		problems = append(problems, fmt.Sprintf("workers must not be negative, got %d", c.Workers))
	}
	if c.DefaultFormat != "" && !isValidFormat(c.DefaultFormat) {
		problems = append(problems, fmt.Sprintf("default_format must be one of %s, got %q", strings.Join(ValidFormats, ", "), c.DefaultFormat))
	}
	if _, err := c.Types(); err != nil {
		problems = append(problems, err.Error())
	}
	for _, r := range c.Repos {
		if _, _, err := model.ParseRepo(r); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Save saves the configuration to the global config file
func (c *Config) Save() error {
	return c.SaveAt(ConfigPath())
}

// SaveAt saves the configuration to path
func (c *Config) SaveAt(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return SaveTo(path, string(data))
}

// SetKeys lists the keys accepted by Set.
var SetKeys = []string{
	"format", "days_inactive", "bot_username", "stop_comment", "ignore_label",
	"comment_message", "check_in_message", "workers", "strict_templates",
}

// Set assigns a single value by key, validating it.
func (c *Config) Set(key, value string) error {
	switch key {
	case "token":
		return fmt.Errorf("tokens cannot be stored in config files for security reasons. Set the GITHUB_TOKEN environment variable instead")
	case "format", "default_format":
		if !isValidFormat(value) {
			return fmt.Errorf("%w: format must be one of %s", ErrInvalid, strings.Join(ValidFormats, ", "))
		}
		c.DefaultFormat = value
	case "days_inactive":
		days, err := duration.ParseDays(value)
		if err != nil {
			return fmt.Errorf("%w: days_inactive: %v", ErrInvalid, err)
		}
		c.DaysInactive = &days
	case "bot_username":
		c.BotUsername = value
	case "stop_comment":
		c.StopComment = value
	case "ignore_label":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: ignore_label must not be empty", ErrInvalid)
		}
		c.IgnoreLabel = value
	case "comment_message":
		c.CommentMessage = value
	case "check_in_message":
		c.CheckInMessage = value
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: workers must be a positive integer", ErrInvalid)
		}
		c.Workers = n
	case "strict_templates":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: strict_templates must be true or false", ErrInvalid)
		}
		c.StrictTemplates = &b
	default:
		return fmt.Errorf("unknown config key: %s (available: %s)", key, strings.Join(SetKeys, ", "))
	}
	return nil
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# checkin configuration file
# See: checkin config defaults  (for all available options)

# Repositories to check (defaults to $GITHUB_REPOSITORY in Actions)
# repos:
#   - owner/repo

# Days without human activity before a reminder is posted (fractions allowed)
days_inactive: 7

# Login of the bot account; defaults to the token's user
# bot_username: my-checkin-bot

# A human comment containing this phrase silences the item
stop_comment: checkin stop

# Label applied to silenced items; labelled items are skipped
ignore_label: ignore-checkin

# Reminder template. Available placeholders:
#   {{ check-in-message }} {{ days-inactive }} {{ author }} {{ number }}
#   {{ title }} {{ repo }} {{ url }} {{ days-since }} and any key under vars
comment_message: "@{{ author }} {{ check-in-message }}"

# Skip items opened by these authors (optional)
# exclude_authors:
#   - dependabot[bot]
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
