// Package config provides configuration loading for the payplan server.
//
// Precedence (highest to lowest): PAYPLAN_* environment variables, the
// optional YAML config file, hardcoded defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PAYPLAN_"

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Cache  CacheConfig  `koanf:"cache"`
	Log    LogConfig    `koanf:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// CacheConfig bounds the in-memory extraction result cache.
type CacheConfig struct {
	Size int `koanf:"size"`
}

// LogConfig selects logger verbosity and encoding.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

var defaults = []byte(`
server:
  addr: ":8080"
cache:
  size: 128
log:
  level: info
  format: json
`)

// Load reads configuration from the optional YAML file at configPath,
// then overrides with environment variables.
//
// Environment variables map section_field to section.field:
//
//	PAYPLAN_SERVER_ADDR -> server.addr
//	PAYPLAN_CACHE_SIZE  -> cache.size
//	PAYPLAN_LOG_LEVEL   -> log.level
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// PAYPLAN_SERVER_ADDR -> server.addr: split on the first
		// underscore after the prefix is stripped.
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
