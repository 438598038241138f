// internal/config/config.go
package config

import (
	"fmt"
	"runtime"

	"github.com/caarlos0/env/v11"
)

// Env holds process defaults read from SEISDISAGG_* variables. Command-line
// flags override them.
type Env struct {
	LogLevel  string `env:"SEISDISAGG_LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"SEISDISAGG_LOG_FORMAT" envDefault:"text"`
	Workers   int    `env:"SEISDISAGG_WORKERS"`
	DBPath    string `env:"SEISDISAGG_DB"`

	OTelEndpoint string `env:"SEISDISAGG_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"SEISDISAGG_OTEL_ENABLED" envDefault:"true"`
}

// Load parses Env from the process environment.
func Load() (Env, error) {
	return parse(env.Options{})
}

// LoadFrom parses Env from an explicit variable map instead of the process
// environment.
func LoadFrom(vars map[string]string) (Env, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Env, error) {
	var cfg Env
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers < 0 {
		return Env{}, fmt.Errorf("parse env: SEISDISAGG_WORKERS must be >= 0, got %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg, nil
}
