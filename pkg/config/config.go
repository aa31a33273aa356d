package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/minhyannv/cogni/pkg/render"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 60 * time.Second
)

// Config holds all runtime configuration for one invocation. It is built once
// and passed by value.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// System is the default system prompt used when none is given on the
	// command line.
	System          string
	Temperature     *float64
	MaxTokens       int64
	ReasoningEffort string
	Timeout         time.Duration

	Output  render.Format
	Pretty  bool
	Stream  bool
	Verbose bool
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Model:   DefaultModel,
		Timeout: DefaultTimeout,
		Output:  render.FormatText,
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.ReasoningEffort = strings.ToLower(strings.TrimSpace(cfg.ReasoningEffort))
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Output.Streams() {
		cfg.Stream = true
	}
	return cfg
}

// ErrMissingAPIKey is reported when neither the flag nor the environment
// supplies a credential.
var ErrMissingAPIKey = errors.New("no API key provided (use --apikey or OPENAI_API_KEY)")

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.APIKey == "" {
		result = multierror.Append(result, ErrMissingAPIKey)
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		result = multierror.Append(result, fmt.Errorf("temperature %.2f is outside [0, 2]", *c.Temperature))
	}
	if c.MaxTokens < 0 {
		result = multierror.Append(result, fmt.Errorf("max tokens %d is negative", c.MaxTokens))
	}
	switch c.ReasoningEffort {
	case "", "low", "medium", "high":
	default:
		result = multierror.Append(result, fmt.Errorf("reasoning effort %q is not one of low, medium, high", c.ReasoningEffort))
	}
	if result != nil {
		result.ErrorFormat = joinErrors
	}
	return result.ErrorOrNil()
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
