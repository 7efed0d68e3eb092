// Package config loads polykv's JSON configuration, with environment
// variable overrides and optional hot-reload, using Koanf for layered
// loading from multiple sources with priority: Env > File > Default.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "POLYKV_"

// Loader loads configuration from multiple sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	loaded    bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration from all sources and unmarshals into target.
// Loading order (later sources override earlier):
//  1. Default values (the caller populates target before calling Load)
//  2. Configuration file (JSON)
//  3. Environment variables
func (l *Loader) Load(target *Spec) error {
	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("config: load file: %w", err)
		}
	}
	if err := l.LoadEnv(); err != nil {
		return fmt.Errorf("config: load env: %w", err)
	}
	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}
	l.loaded = true
	return nil
}

// LoadFile loads configuration from a JSON file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if err := l.k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("config: load file %s: %w", path, err)
	}
	return nil
}

// LoadEnv loads configuration from environment variables.
// Environment variables use the format: POLYKV_SECTION_KEY (uppercase,
// underscores). Example: POLYKV_ENGINE_BACKEND=badger
func (l *Loader) LoadEnv() error {
	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, l.envPrefix)
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "_", ".")
		return s
	}
	provider := env.Provider(l.envPrefix, ".", envTransformer)
	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("config: load env: %w", err)
	}
	return nil
}

// LoadMap loads configuration from a map (useful for flags or testing).
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("config: load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into target.
func (l *Loader) Unmarshal(target *Spec) error {
	return l.k.Unmarshal("", target)
}

// Get returns a value from the configuration by key.
func (l *Loader) Get(key string) any { return l.k.Get(key) }

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string { return l.k.String(key) }

// GetInt returns an int value from the configuration.
func (l *Loader) GetInt(key string) int { return l.k.Int(key) }

// GetBool returns a bool value from the configuration.
func (l *Loader) GetBool(key string) bool { return l.k.Bool(key) }

// IsLoaded reports whether configuration has been loaded.
func (l *Loader) IsLoaded() bool { return l.loaded }

// All returns all configuration as a map.
func (l *Loader) All() map[string]any { return l.k.All() }

// Keys returns all configuration keys.
func (l *Loader) Keys() []string { return l.k.Keys() }
