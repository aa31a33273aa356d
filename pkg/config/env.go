package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Env holds the environment variables cogni reads.
type Env struct {
	APIKey     string        `env:"OPENAI_API_KEY"`
	BaseURL    string        `env:"OPENAI_BASE_URL"`
	Endpoint   string        `env:"OPENAI_API_ENDPOINT"`
	Model      string        `env:"OPENAI_MODEL"`
	Profile    string        `env:"COGNI_PROFILE"`
	ConfigPath string        `env:"COGNI_CONFIG"`
	Timeout    time.Duration `env:"COGNI_TIMEOUT"`
}

// LoadEnv loads .env if present and parses the environment.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parsing env config: %w", err)
	}
	return e, nil
}

// Apply overlays the set environment values onto cfg. OPENAI_BASE_URL wins
// over OPENAI_API_ENDPOINT, which names the host without the /v1 suffix.
func (e Env) Apply(cfg Config) Config {
	if v := strings.TrimSpace(e.APIKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(e.Endpoint); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/") + "/v1"
	}
	if v := strings.TrimSpace(e.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(e.Model); v != "" {
		cfg.Model = v
	}
	if e.Timeout > 0 {
		cfg.Timeout = e.Timeout
	}
	return cfg
}

// Resolve layers defaults, the profile file and the environment. An explicit
// configPath must exist; the default path is optional.
func Resolve(e Env, configPath, profile string) (Config, error) {
	cfg := DefaultConfig()

	mustExist := true
	if configPath == "" {
		configPath = e.ConfigPath
	}
	if configPath == "" {
		configPath = DefaultPath()
		mustExist = false
	}
	file, err := LoadFile(configPath, mustExist)
	if err != nil {
		return cfg, err
	}

	if profile == "" {
		profile = e.Profile
	}
	p, err := file.Profile(profile)
	if err != nil {
		return cfg, err
	}
	if cfg, err = p.Apply(cfg); err != nil {
		return cfg, fmt.Errorf("profile %q: %w", profile, err)
	}

	return e.Apply(cfg), nil
}
