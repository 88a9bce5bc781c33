package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerURL string        `envconfig:"BOARDCTL_SERVER" default:"http://localhost:8000"`
	Model     string        `envconfig:"BOARDCTL_MODEL" default:"gpt-4.1-mini"`
	Tone      string        `envconfig:"BOARDCTL_TONE" default:"balanced"`
	SessionID string        `envconfig:"BOARDCTL_SESSION"`
	Timeout   time.Duration `envconfig:"BOARDCTL_TIMEOUT" default:"10m"`
	// BOARDCTL_COLOURS enables one colour per agent
	Colours bool `envconfig:"BOARDCTL_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
