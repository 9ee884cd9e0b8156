// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Loaders accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/vero/internal/domain/growth"
	"github.com/okian/vero/internal/domain/phv"
	"github.com/okian/vero/internal/domain/windows"
	"github.com/okian/vero/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// MinSamples is the fewest samples the PHV estimator accepts.
	MinSamples int `koanf:"min_samples"`

	// MinSpanMonths is the shortest consecutive-sample span that counts.
	MinSpanMonths float64 `koanf:"min_span_months"`

	// NormalizationMonths is the window growth rates are scaled to.
	NormalizationMonths float64 `koanf:"normalization_months"`

	// StaleAfterMonths flags measurements older than this as stale.
	StaleAfterMonths int `koanf:"stale_after_months"`

	// MetricsFile, when set, receives a Prometheus textfile after a run.
	MetricsFile string `koanf:"metrics_file"`

	// Windows overrides the default sensitive-window offsets. Empty means
	// the defaults.
	Windows []Window `koanf:"windows"`
}

// Window is the file form of a window definition.
type Window struct {
	Name              string `koanf:"name"`
	OffsetStartMonths int    `koanf:"offset_start_months"`
	OffsetEndMonths   int    `koanf:"offset_end_months"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           logger.FormatText,
		MinSamples:          phv.DefaultMinSamples,
		MinSpanMonths:       phv.DefaultMinSpanMonths,
		NormalizationMonths: phv.DefaultNormalizationMonths,
		StaleAfterMonths:    growth.DefaultStaleAfterMonths,
	}
}

// Definitions returns the configured windows, or the defaults when none are
// configured.
func (c *Config) Definitions() []windows.Definition {
	if len(c.Windows) == 0 {
		return windows.Defaults()
	}
	defs := make([]windows.Definition, len(c.Windows))
	for i, w := range c.Windows {
		defs[i] = windows.Definition{
			Name:              windows.Name(w.Name),
			OffsetStartMonths: w.OffsetStartMonths,
			OffsetEndMonths:   w.OffsetEndMonths,
		}
	}
	return defs
}

// EstimatorOptions translates the estimation settings into phv options.
func (c *Config) EstimatorOptions() []phv.Option {
	return []phv.Option{
		phv.WithMinSamples(c.MinSamples),
		phv.WithMinSpanMonths(c.MinSpanMonths),
		phv.WithNormalizationMonths(c.NormalizationMonths),
	}
}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.LogFormat != logger.FormatText && c.LogFormat != logger.FormatJSON {
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.MinSamples < 2 {
		return fmt.Errorf("%w: min_samples must be at least 2, got %d", ErrInvalidConfig, c.MinSamples)
	}
	if c.MinSpanMonths <= 0 {
		return fmt.Errorf("%w: min_span_months must be positive, got %g", ErrInvalidConfig, c.MinSpanMonths)
	}
	if c.NormalizationMonths <= 0 {
		return fmt.Errorf("%w: normalization_months must be positive, got %g", ErrInvalidConfig, c.NormalizationMonths)
	}
	if c.StaleAfterMonths < 0 {
		return fmt.Errorf("%w: stale_after_months must not be negative, got %d", ErrInvalidConfig, c.StaleAfterMonths)
	}
	if err := windows.Validate(c.Definitions()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
