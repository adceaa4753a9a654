// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package main

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the full server configuration. Values are layered:
// built-in defaults, then the YAML config file, then CLI flags, then
// TASKLOOM_* environment variables.
type Config struct {
	HTTP struct {
		Addr string `koanf:"addr"`
	} `koanf:"http"`

	Metrics struct {
		// Addr is the observability listen address. Empty disables the
		// metrics/health listener.
		Addr string `koanf:"addr"`
	} `koanf:"metrics"`

	Log struct {
		Format string `koanf:"format"`
		Level  string `koanf:"level"`
	} `koanf:"log"`

	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`

	Token struct {
		Secret     string `koanf:"secret"`
		Algorithm  string `koanf:"algorithm"`
		TTLMinutes int    `koanf:"ttl_minutes"`
	} `koanf:"token"`
}

// Default configuration values.
const (
	defaultHTTPAddr    = ":8080"
	defaultMetricsAddr = "127.0.0.1:9100"
	defaultLogFormat   = "json"
	defaultLogLevel    = "info"
	defaultAlgorithm   = "HS256"
	defaultTTLMinutes  = 30
)

func defaultConfig() Config {
	var cfg Config
	cfg.HTTP.Addr = defaultHTTPAddr
	cfg.Metrics.Addr = defaultMetricsAddr
	cfg.Log.Format = defaultLogFormat
	cfg.Log.Level = defaultLogLevel
	cfg.Token.Algorithm = defaultAlgorithm
	cfg.Token.TTLMinutes = defaultTTLMinutes
	return cfg
}

// loadConfig assembles the layered configuration. The flags set may be
// nil for subcommands that take no config flags.
func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Flag --http-addr maps to key http.addr.
			return strings.ReplaceAll(f.Name, "-", "."), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	if err := k.Load(env.Provider("TASKLOOM_", ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "load environment").
			Wrap(err)
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	// DATABASE_URL carries no prefix; the conventional name wins over
	// everything else when set.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}

	return &cfg, nil
}

// envKey maps a TASKLOOM_* environment variable to a config key.
func envKey(name string) string {
	if name == "TASKLOOM_SECRET_KEY" {
		return "token.secret"
	}
	key := strings.ToLower(strings.TrimPrefix(name, "TASKLOOM_"))
	// Only the first underscore separates the section from the field,
	// so TOKEN_TTL_MINUTES maps to token.ttl_minutes.
	return strings.Replace(key, "_", ".", 1)
}

// Validate checks that the configuration can run the server.
func (cfg *Config) Validate() error {
	if cfg.HTTP.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("http listen address is required")
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("format", cfg.Log.Format).
			Errorf("log format must be 'json' or 'text'")
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (database.url or DATABASE_URL)")
	}
	if cfg.Token.Secret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("token secret is required (token.secret or TASKLOOM_SECRET_KEY)")
	}
	if cfg.Token.TTLMinutes <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("ttl_minutes", cfg.Token.TTLMinutes).
			Errorf("token ttl must be positive")
	}
	return nil
}
