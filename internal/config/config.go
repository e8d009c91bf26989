// Package config loads the daemon's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/flairbot/internal/core/flair"
)

// DefaultPath is used when neither --config nor FLAIRBOT_CONFIG is set.
const DefaultPath = "flairbot.yaml"

// PathEnv names the environment variable holding the config path.
const PathEnv = "FLAIRBOT_CONFIG"

// Store drivers
const (
	DriverSQLite3 = "sqlite3" // cgo sqlite
	DriverSQLite  = "sqlite"  // pure-Go sqlite
	DriverJSON    = "json"    // single JSON file
)

// Config is the complete daemon configuration.
type Config struct {
	Community string         `yaml:"community"` // without the r/ prefix
	Timing    TimingConfig   `yaml:"timing"`
	Flairs    []FlairConfig  `yaml:"flairs"` // ordered; earlier names win ties
	Platform  PlatformConfig `yaml:"platform"`
	Store     StoreConfig    `yaml:"store"`
	Loop      LoopConfig     `yaml:"loop"`
	Messages  MessagesConfig `yaml:"messages"`
	Log       LogConfig      `yaml:"log"`
}

// TimingConfig holds the enforcement windows.
type TimingConfig struct {
	PromptDelaySeconds     int `yaml:"prompt_delay_seconds"`
	RemovalDeadlineSeconds int `yaml:"removal_deadline_seconds"`
}

// FlairConfig maps an accepted reply keyword to its flair category.
type FlairConfig struct {
	Name     string `yaml:"name"`
	CSSClass string `yaml:"css_class"`
}

// PlatformConfig holds the API endpoint and bot credentials.
type PlatformConfig struct {
	BaseURL           string `yaml:"base_url"`
	TokenURL          string `yaml:"token_url"`
	UserAgent         string `yaml:"user_agent"`
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	ClientID          string `yaml:"client_id"`
	ClientSecret      string `yaml:"client_secret"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
}

// StoreConfig selects the tracking log backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// LoopConfig holds the orchestrator pacing.
type LoopConfig struct {
	ScanLimit         int `yaml:"scan_limit"`
	ConfirmDelayMS    int `yaml:"confirm_delay_ms"`
	PassDelaySeconds  int `yaml:"pass_delay_seconds"`
	ErrorPauseSeconds int `yaml:"error_pause_seconds"`
	IntervalSeconds   int `yaml:"interval_seconds"`
}

// MessagesConfig holds message template inputs.
type MessagesConfig struct {
	GuideURL string `yaml:"guide_url"`
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	flairs := make([]FlairConfig, len(flair.DefaultFlairs))
	for i, f := range flair.DefaultFlairs {
		flairs[i] = FlairConfig{Name: f.Name, CSSClass: f.CSSClass}
	}

	return &Config{
		Timing: TimingConfig{
			PromptDelaySeconds:     60,
			RemovalDeadlineSeconds: 600,
		},
		Flairs: flairs,
		Platform: PlatformConfig{
			BaseURL:           "https://oauth.reddit.com",
			TokenURL:          "https://www.reddit.com/api/v1/access_token",
			UserAgent:         "flairbot/1.0",
			RequestsPerMinute: 60,
			TimeoutSeconds:    30,
		},
		Store: StoreConfig{
			Driver: DriverSQLite3,
			Path:   "~/.flairbot/flairbot.db",
		},
		Loop: LoopConfig{
			ScanLimit:         100,
			ConfirmDelayMS:    500,
			PassDelaySeconds:  1,
			ErrorPauseSeconds: 5,
			IntervalSeconds:   5,
		},
		Messages: MessagesConfig{
			GuideURL: "http://imgur.com/a/GmrnD",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ResolvePath picks the config path: the flag value, then FLAIRBOT_CONFIG,
// then DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(PathEnv); env != "" {
		return env
	}
	return DefaultPath
}

// LoadConfig reads the YAML file at path over the defaults, applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating the parent directory.
func SaveConfig(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Credentials may be stored here.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnv overrides credentials and the community from the environment.
func (c *Config) applyEnv(getenv func(string) string) {
	overrides := []struct {
		name  string
		field *string
	}{
		{"FLAIRBOT_USERNAME", &c.Platform.Username},
		{"FLAIRBOT_PASSWORD", &c.Platform.Password},
		{"FLAIRBOT_CLIENT_ID", &c.Platform.ClientID},
		{"FLAIRBOT_CLIENT_SECRET", &c.Platform.ClientSecret},
		{"FLAIRBOT_COMMUNITY", &c.Community},
	}
	for _, o := range overrides {
		if v := getenv(o.name); v != "" {
			*o.field = v
		}
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []error

	if strings.TrimSpace(c.Community) == "" {
		problems = append(problems, errors.New("community is required"))
	}
	if strings.HasPrefix(c.Community, "r/") || strings.HasPrefix(c.Community, "/r/") {
		problems = append(problems, fmt.Errorf("community %q must not include the r/ prefix", c.Community))
	}
	if c.Timing.RemovalDeadlineSeconds <= 0 {
		problems = append(problems, errors.New("timing.removal_deadline_seconds must be positive"))
	}
	if c.Timing.PromptDelaySeconds < 0 {
		problems = append(problems, errors.New("timing.prompt_delay_seconds must not be negative"))
	}
	if c.Timing.PromptDelaySeconds >= c.Timing.RemovalDeadlineSeconds {
		problems = append(problems, errors.New("timing.prompt_delay_seconds must be less than removal_deadline_seconds"))
	}
	if _, err := flair.NewCatalog(c.FlairTable()); err != nil {
		problems = append(problems, fmt.Errorf("flairs: %w", err))
	}
	switch c.Store.Driver {
	case DriverSQLite3, DriverSQLite, DriverJSON:
	default:
		problems = append(problems, fmt.Errorf("store.driver %q is not one of %s, %s, %s", c.Store.Driver, DriverSQLite3, DriverSQLite, DriverJSON))
	}
	if c.Store.Path == "" {
		problems = append(problems, errors.New("store.path is required"))
	}
	if c.Loop.ScanLimit <= 0 {
		problems = append(problems, errors.New("loop.scan_limit must be positive"))
	}

	return errors.Join(problems...)
}

// ValidateCredentials checks the settings needed to talk to the platform.
// Offline commands skip it.
func (c *Config) ValidateCredentials() error {
	var problems []error
	if c.Platform.Username == "" {
		problems = append(problems, errors.New("platform.username is required (or FLAIRBOT_USERNAME)"))
	}
	if c.Platform.Password == "" {
		problems = append(problems, errors.New("platform.password is required (or FLAIRBOT_PASSWORD)"))
	}
	if c.Platform.ClientID == "" {
		problems = append(problems, errors.New("platform.client_id is required (or FLAIRBOT_CLIENT_ID)"))
	}
	if c.Platform.UserAgent == "" {
		problems = append(problems, errors.New("platform.user_agent is required"))
	}
	return errors.Join(problems...)
}

// TimingPolicy returns the enforcement windows.
func (c *Config) TimingPolicy() flair.Timing {
	return flair.Timing{
		PromptDelay:     time.Duration(c.Timing.PromptDelaySeconds) * time.Second,
		RemovalDeadline: time.Duration(c.Timing.RemovalDeadlineSeconds) * time.Second,
	}
}

// FlairTable returns the configured flairs in order.
func (c *Config) FlairTable() []flair.Flair {
	flairs := make([]flair.Flair, len(c.Flairs))
	for i, f := range c.Flairs {
		flairs[i] = flair.Flair{Name: f.Name, CSSClass: f.CSSClass}
	}
	return flairs
}

// Seconds converts a whole-second setting.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Milliseconds converts a whole-millisecond setting.
func Milliseconds(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
