package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL        string        `envconfig:"ROSTERCHAT_URL" default:"http://localhost:8080"`
	OrganizationID string        `envconfig:"ROSTERCHAT_ORGANIZATION" required:"true"`
	Timeout        time.Duration `envconfig:"ROSTERCHAT_TIMEOUT" default:"10s"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"WARN"`
	// ROSTERCHAT_COLOURS enables colorized output in the terminal
	Colours bool `envconfig:"ROSTERCHAT_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
