package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Graph sources.
const (
	GraphSourceLogseq    = "logseq"
	GraphSourceDirectory = "directory"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Graph     GraphConfig       `yaml:"graph"`
	Logseq    LogseqConfig      `yaml:"logseq"`
	Dashboard DashboardConfig   `yaml:"dashboard"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Graph.Validate(); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	if c.Graph.Source == GraphSourceLogseq {
		if err := c.Logseq.Validate(); err != nil {
			return fmt.Errorf("logseq: %w", err)
		}
	}
	if err := c.Dashboard.Validate(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// GraphConfig selects where pages and blocks are read from.
//
// Source is either:
//   - "logseq" (default): a running Logseq app through its HTTP API server.
//   - "directory": a Logseq graph folder on disk at Path; changes are watched.
type GraphConfig struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
}

// Validate validates the graph configuration.
func (c *GraphConfig) Validate() error {
	if c.Source == "" {
		c.Source = GraphSourceLogseq
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required, validation.In(GraphSourceLogseq, GraphSourceDirectory)),
		validation.Field(&c.Path, validation.When(c.Source == GraphSourceDirectory, validation.Required)),
	)
}

// LogseqConfig holds the Logseq HTTP API server settings.
type LogseqConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the Logseq configuration.
func (c *LogseqConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

var rendererName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// DashboardConfig names the dashboard page, its renderer and the slot the
// HTTP dashboard renders into.
type DashboardConfig struct {
	Page     string `yaml:"page"`
	Renderer string `yaml:"renderer"`
	Slot     string `yaml:"slot"`
}

// Validate validates the dashboard configuration.
func (c *DashboardConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Page, validation.Required),
		validation.Field(&c.Renderer, validation.Required, validation.Match(rendererName)),
		validation.Field(&c.Slot, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Graph: GraphConfig{
			Source: GraphSourceLogseq,
			Path:   "./graph",
		},
		Logseq: LogseqConfig{
			URL:     "http://127.0.0.1:12315",
			Timeout: 10 * time.Second,
		},
		Dashboard: DashboardConfig{
			Page:     "Habits",
			Renderer: "habit-tracker",
			Slot:     "main",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
