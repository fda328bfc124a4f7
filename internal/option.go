package internal

import (
	"io"

	"github.com/starford/habitdash/internal/storage"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	logOutput io.Writer
	provider  storage.Provider
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput sets where the JSON log is written (stdout by default).
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithProvider replaces the host graph built from the configuration.
func WithProvider(p storage.Provider) Option {
	return func(a *application) {
		a.provider = p
	}
}
