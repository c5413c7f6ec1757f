// Package config loads the engine's run configuration.
//
// Configuration is optional: the zero file is valid and every field has a
// default. Command-line flags override whatever the file provides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nicmue/payment-engine/internal/engine"
)

// Parse-error policies for malformed input records.
const (
	PolicySkip  = "skip"
	PolicyAbort = "abort"
)

// Config holds the user-tunable settings of a run.
type Config struct {
	// Shards is the worker count. Zero selects the host's reported
	// parallelism.
	Shards int `yaml:"shards"`

	// ChannelCapacity bounds each shard's delivery channel.
	ChannelCapacity int `yaml:"channel_capacity"`

	// OnParseError selects what happens on a malformed record:
	// "skip" logs and continues, "abort" stops the run.
	OnParseError string `yaml:"on_parse_error"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Shards:          0,
		ChannelCapacity: engine.DefaultChannelCapacity,
		OnParseError:    PolicySkip,
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	if c.Shards < 0 {
		return fmt.Errorf("shards must not be negative, got %d", c.Shards)
	}
	if c.ChannelCapacity < 1 {
		return fmt.Errorf("channel_capacity must be at least 1, got %d", c.ChannelCapacity)
	}
	if c.OnParseError != PolicySkip && c.OnParseError != PolicyAbort {
		return fmt.Errorf("on_parse_error must be %q or %q, got %q", PolicySkip, PolicyAbort, c.OnParseError)
	}
	return nil
}
