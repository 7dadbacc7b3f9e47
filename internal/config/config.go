package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkubaj/fastfetch/internal/core"
	"github.com/pkubaj/fastfetch/internal/identity"
	"gopkg.in/yaml.v3"
)

// DefaultProcessingTimeout bounds every external command and compositor round-trip.
const DefaultProcessingTimeout = time.Second

type Probes struct {
	Wayland bool `yaml:"wayland"`
	X11     bool `yaml:"x11"`
}

type Config struct {
	// ProcessingTimeout is passed to every capture; negative disables it.
	ProcessingTimeout   time.Duration       `yaml:"processing_timeout"`
	DisplayDetectName   bool                `yaml:"display_detect_name"`
	AllowSlowOperations bool                `yaml:"allow_slow_operations"`
	Probes              Probes              `yaml:"probes"`
	Format              string              `yaml:"format"`
	WMRules             []identity.RuleSpec `yaml:"wm_rules"`
	DERules             []identity.RuleSpec `yaml:"de_rules"`
	StateFile           string              `yaml:"state_file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ProcessingTimeout: DefaultProcessingTimeout,
		DisplayDetectName: true,
		Probes:            Probes{Wayland: true, X11: true},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/fastfetch/fastfetch.yaml.
func DefaultPath(env core.Env) string {
	return filepath.Join(xdgDir(env, "XDG_CONFIG_HOME", ".config"), "fastfetch", "fastfetch.yaml")
}

// DefaultStatePath is $XDG_STATE_HOME/fastfetch/state.json.
func DefaultStatePath(env core.Env) string {
	return filepath.Join(xdgDir(env, "XDG_STATE_HOME", filepath.Join(".local", "state")), "fastfetch", "state.json")
}

func xdgDir(env core.Env, key, homeRel string) string {
	if dir := core.Getenv(env, key); dir != "" {
		return dir
	}
	return filepath.Join(core.Getenv(env, "HOME"), homeRel)
}

// LoadConfig reads the YAML file at path over the defaults.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config file could not be read: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("yaml parse error in %s: %w", path, err)
	}
	if _, err := cfg.Rules(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Rules compiles the user classification rules.
func (c *Config) Rules() (*identity.Rules, error) {
	return identity.CompileRules(c.WMRules, c.DERules)
}
