package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minhyannv/cogni/pkg/render"
	"gopkg.in/yaml.v3"
)

// Profile mirrors one entry under "profiles" in the config file.
type Profile struct {
	Model           string        `yaml:"model"`
	System          string        `yaml:"system"`
	Temperature     *float64      `yaml:"temperature"`
	MaxTokens       int64         `yaml:"max_tokens"`
	ReasoningEffort string        `yaml:"reasoning_effort"`
	Timeout         time.Duration `yaml:"timeout"`
	Output          string        `yaml:"output"`
	Pretty          bool          `yaml:"pretty"`
	Stream          bool          `yaml:"stream"`
	BaseURL         string        `yaml:"base_url"`
}

// File is the on-disk config: a default profile name and named profiles.
type File struct {
	Default  string             `yaml:"default"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// DefaultPath returns ~/.config/cogni/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "cogni", "config.yaml")
	}
	return filepath.Join(home, ".config", "cogni", "config.yaml")
}

// LoadFile reads a config file. A missing file yields an empty File unless
// mustExist is set.
func LoadFile(path string, mustExist bool) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return File{Profiles: map[string]Profile{}}, nil
		}
		return File{}, fmt.Errorf("reading config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	return f, nil
}

// Profile returns the named profile, or the default one when name is empty.
// No name and no default yields an empty profile.
func (f File) Profile(name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(f.Default)
	}
	if name == "" {
		return Profile{}, nil
	}
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// Apply overlays the non-zero profile fields onto cfg.
func (p Profile) Apply(cfg Config) (Config, error) {
	if p.Model != "" {
		cfg.Model = p.Model
	}
	if p.System != "" {
		cfg.System = p.System
	}
	if p.Temperature != nil {
		t := *p.Temperature
		cfg.Temperature = &t
	}
	if p.MaxTokens != 0 {
		cfg.MaxTokens = p.MaxTokens
	}
	if p.ReasoningEffort != "" {
		cfg.ReasoningEffort = p.ReasoningEffort
	}
	if p.Timeout != 0 {
		cfg.Timeout = p.Timeout
	}
	if p.Output != "" {
		format, err := render.ParseFormat(p.Output)
		if err != nil {
			return cfg, err
		}
		cfg.Output = format
	}
	if p.Pretty {
		cfg.Pretty = true
	}
	if p.Stream {
		cfg.Stream = true
	}
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}
	return cfg, nil
}
