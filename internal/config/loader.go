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

// mongoURLEnvNames are the unprefixed connection-string variables the
// original deployment sets, in lookup order.
var mongoURLEnvNames = []string{"MONGO_URL", "MONGODB_URI", "MONGO_URI"} //nolint:gochecknoglobals // deployment contract

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if TRACEL_CONFIG is set
//  3. env (prefix TRACEL_)
//
// Fields the layers leave untouched additionally honor the unprefixed
// deployment names MONGO_URL, MONGODB_URI, MONGO_URI, MONGO_DB_NAME and
// MODEL_PATH.
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("TRACEL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: TRACEL_ADDR, TRACEL_MONGO_URL, ...
	// Map env keys like TRACEL_MONGO_URL -> mongo_url (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("TRACEL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "tracel_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// Compatibility fallbacks for the unprefixed deployment names.
	if !k.Exists("mongo_url") {
		for _, name := range mongoURLEnvNames {
			if v := strings.TrimSpace(os.Getenv(name)); v != "" {
				cfg.MongoURL = v
				break
			}
		}
	}
	if !k.Exists("mongo_db_name") {
		if v := strings.TrimSpace(os.Getenv("MONGO_DB_NAME")); v != "" {
			cfg.MongoDBName = v
		}
	}
	if !k.Exists("model_path") {
		if v := strings.TrimSpace(os.Getenv("MODEL_PATH")); v != "" {
			cfg.ModelPath = v
		}
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	}
	return &cfg, nil
}
