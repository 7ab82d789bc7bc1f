package config

import (
	"github.com/kelseyhightower/envconfig"

	"symptom-triage-api/internal/agent"
)

// Config defines all configurable parameters for the service, sourced from
// environment variables (loaded from .env for local runs).
type Config struct {
	Port        string `default:"8080"`
	Environment string `default:"development"`

	Inference agent.Config
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
