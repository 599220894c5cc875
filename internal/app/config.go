package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"rolechain/internal/protocol/ledger"
	"rolechain/internal/protocol/locator"
)

// ConfigFilename is looked up inside Home when no explicit path is given.
const ConfigFilename = "config.yaml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home     string `yaml:"home"`      // data directory, e.g. $HOME/.rolechain
	Relay    string `yaml:"relay"`     // gRPC relay target; empty uses an in-process broker
	Scheme   string `yaml:"scheme"`    // locator scheme of produced records
	Linkage  string `yaml:"linkage"`   // "adjacent" or "ancestor"
	LogLevel string `yaml:"log_level"` // zap level name
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	home := ".rolechain"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".rolechain")
	}
	return Config{
		Home:     home,
		Scheme:   locator.DefaultScheme,
		Linkage:  ledger.LinkAdjacent.String(),
		LogLevel: "info",
	}
}

// LoadConfig starts from the defaults, merges the YAML file at path (a
// missing file is not an error) and applies environment overrides.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if v := os.Getenv("ROLECHAIN_HOME"); v != "" {
		c.Home = v
	}
	if path == "" {
		path = filepath.Join(c.Home, ConfigFilename)
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("config load: %w", err)
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("config unmarshal: %w", err)
		}
	}
	applyEnvOverrides(&c)
	return c, c.Validate()
}

// applyEnvOverrides lets ROLECHAIN_* variables win over the file.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("ROLECHAIN_HOME"); v != "" {
		c.Home = v
	}
	if v := os.Getenv("ROLECHAIN_RELAY"); v != "" {
		c.Relay = v
	}
	if v := os.Getenv("ROLECHAIN_SCHEME"); v != "" {
		c.Scheme = v
	}
	if v := os.Getenv("ROLECHAIN_LINKAGE"); v != "" {
		c.Linkage = v
	}
	if v := os.Getenv("ROLECHAIN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the fields that are parsed later.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("config: home is required")
	}
	if c.Scheme == "" {
		return errors.New("config: scheme is required")
	}
	if _, err := ledger.ParseLinkage(c.Linkage); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Save writes c as YAML to path.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
