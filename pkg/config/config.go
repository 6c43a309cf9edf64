// Package config loads the settings which aren't specific to a single check.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/digitalocean/atlas-check/pkg/atlas"
	"gopkg.in/yaml.v3"
)

// Config holds settings from an optional YAML file, overridden by the environment.
type Config struct {
	APIURL   string        `yaml:"api_url"`
	Timeout  time.Duration `yaml:"timeout"`
	LogLevel string        `yaml:"log_level"`
}

// Default returns the built in settings.
func Default() Config {
	return Config{
		APIURL:   atlas.DefaultBaseURL,
		Timeout:  30 * time.Second,
		LogLevel: "warn",
	}
}

// Load reads path, when not empty, over the defaults and then applies ATLAS_API_URL,
// ATLAS_TIMEOUT and ATLAS_LOG_LEVEL.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if u := os.Getenv("ATLAS_API_URL"); u != "" {
		c.APIURL = u
	}
	if t := os.Getenv("ATLAS_TIMEOUT"); t != "" {
		timeout, err := time.ParseDuration(t)
		if err != nil {
			return c, fmt.Errorf("parsing ATLAS_TIMEOUT: %w", err)
		}
		c.Timeout = timeout
	}
	if l := os.Getenv("ATLAS_LOG_LEVEL"); l != "" {
		c.LogLevel = l
	}
	if c.Timeout <= 0 {
		return c, fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return c, nil
}
