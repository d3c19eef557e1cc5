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

// Environment conventions.
const (
	EnvPrefix     = "EVENTQUOTE_"
	EnvConfigFile = "EVENTQUOTE_CONFIG"
)

// legacyEnv maps the variable names used by earlier deployments onto config keys.
var legacyEnv = map[string]string{
	"CLOUDANT_USERNAME": "events.store.username",
	"CLOUDANT_API_KEY":  "events.store.api_key",
	"CLOUDANT_URL":      "events.store.url",
	"FINNHUB_API_KEY":   "market.api_key",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if EVENTQUOTE_CONFIG is set
//  3. legacy variables (CLOUDANT_USERNAME, CLOUDANT_API_KEY, CLOUDANT_URL, FINNHUB_API_KEY)
//  4. env (prefix EVENTQUOTE_, "__" separates nested keys)
//
// Only the sections named by scopes are validated; none means all.
func Load(_ context.Context, scopes ...Scope) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	legacy := env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// EVENTQUOTE_EVENTS__STORE__DRIVER -> events.store.driver
	prefixed := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(scopes...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
