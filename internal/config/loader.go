package config

import (
	"context"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if ARTRANK_CONFIG is set
//  3. env (prefix ARTRANK_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("ARTRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Env keys like ARTRANK_RATE_LIMIT map to rate_limit; underscores
	// are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("ARTRANK_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "artrank_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, ErrEmptyAddr
	}
	if cfg.EventLogPath == "" {
		return nil, ErrEmptyLogPath
	}
	return &cfg, nil
}
