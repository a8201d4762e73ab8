// Package appraisal_gpt provides the optional generative-text point
// appraisal used by the valuation engine. The service is advisory only:
// any failure (unconfigured, timeout, unparsable output) leaves the engine
// on its deterministic fallback path.
package appraisal_gpt

import (
	"errors"
	"time"
)

// Config holds the appraisal backend configuration. An empty Endpoint means
// the service is disabled, which is a normal, non-error condition.
type Config struct {
	Endpoint        string  `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
	APIKey          string  `yaml:"api_key" json:"api_key" mapstructure:"api_key"`
	Model           string  `yaml:"model" json:"model" mapstructure:"model"`
	Temperature     float64 `yaml:"temperature" json:"temperature" mapstructure:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens" json:"max_output_tokens" mapstructure:"max_output_tokens"`
	TimeoutMs       int     `yaml:"timeout_ms" json:"timeout_ms" mapstructure:"timeout_ms"`
}

// NewConfig returns a configuration with production defaults and the
// service disabled.
func NewConfig() *Config {
	return &Config{
		Model:           "gpt-4o-mini",
		Temperature:     0.2,
		MaxOutputTokens: 512,
		TimeoutMs:       8000,
	}
}

// Enabled reports whether the appraisal service is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.Endpoint != ""
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 8 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Validate checks that an enabled configuration is usable.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Model == "" {
		return errors.New("appraisal model is required when endpoint is set")
	}
	if c.Temperature < 0 || c.Temperature > 2.0 {
		return errors.New("temperature must be between 0 and 2.0")
	}
	if c.MaxOutputTokens < 0 {
		return errors.New("max_output_tokens must be non-negative")
	}
	return nil
}
