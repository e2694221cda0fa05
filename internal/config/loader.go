package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix = "KALPHA_"
	EnvConfig = "KALPHA_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from path, or KALPHA_CONFIG when path is empty
//  3. env (prefix KALPHA_)
func Load(_ context.Context, path ...string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	cfgPath := os.Getenv(EnvConfig)
	if len(path) > 0 && path[0] != "" {
		cfgPath = path[0]
	}
	if cfgPath != "" {
		if err := k.Load(file.Provider(cfgPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, cfgPath, err)
		}
	}

	// Environment variables: KALPHA_ADDR, KALPHA_QUEUE_SIZE, ...
	// Keys keep their underscores to match the flat koanf tags.
	// KALPHA_MISSING is a comma separated list.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "config" {
			return "", nil
		}
		if key == "missing" {
			return key, strings.Split(value, ",")
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
