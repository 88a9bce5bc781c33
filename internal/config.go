package internal

import (
	"boardroom/generation"
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/samber/lo"
)

type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	Port              int           `env:"PORT,default=8000"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	Language          string        `env:"LANGUAGE,default=en"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=2s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	AllowedOrigins    string        `env:"ALLOWED_ORIGINS"`
	// DEBUG_ADDRESS serves the inspect page when set, e.g. 127.0.0.1:8099
	DebugAddress string `env:"DEBUG_ADDRESS"`

	AzureAPIKey         string `env:"AZURE_OPENAI_API_KEY"`
	AzureEndpoint       string `env:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIVersion     string `env:"AZURE_OPENAI_API_VERSION,default=2024-10-21"`
	DefaultDeployment   string `env:"AZURE_OPENAI_DEPLOYMENT"`
	OpenAIBaseURL       string `env:"OPENAI_BASE_URL"`
	MaxRetries          int    `env:"OPENAI_MAX_RETRIES,default=2"`
	DeploymentGPT41     string `env:"AZURE_OPENAI_DEPLOYMENT_GPT41"`
	DeploymentGPT41Mini string `env:"AZURE_OPENAI_DEPLOYMENT_GPT41_MINI"`
	DeploymentGPT41Nano string `env:"AZURE_OPENAI_DEPLOYMENT_GPT41_NANO"`
	DeploymentGPT52     string `env:"AZURE_OPENAI_DEPLOYMENT_GPT52"`
	DeploymentGPT52Chat string `env:"AZURE_OPENAI_DEPLOYMENT_GPT52_CHAT"`

	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/sessions"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH"`
	GuidelinesDir  string `env:"GUIDELINES_DIR,default=./guidelines"`
	LimitMessages  *int   `env:"LIMIT_MESSAGES"`
	SearchTop      int    `env:"SEARCH_TOP,default=3"`
	BoardMaxRounds int    `env:"BOARD_MAX_ROUNDS,default=10"`
	BoardMaxCalls  int    `env:"BOARD_MAX_CALLS,default=50"`
}

func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if config.BoardMaxRounds <= 0 || config.BoardMaxCalls <= 0 {
		return Config{}, fmt.Errorf("BOARD_MAX_ROUNDS and BOARD_MAX_CALLS must be positive")
	}
	return config, nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	return lo.Compact(lo.Map(strings.Split(c.AllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
}

// Catalog maps the public model names to their configured deployments.
func (c Config) Catalog() generation.CatalogConfig {
	deployments := lo.OmitByValues(map[string]string{
		"gpt-4.1":      c.DeploymentGPT41,
		"gpt-4.1-mini": c.DeploymentGPT41Mini,
		"gpt-4.1-nano": c.DeploymentGPT41Nano,
		"gpt-5.2":      c.DeploymentGPT52,
		"gpt-5.2-chat": c.DeploymentGPT52Chat,
	}, []string{""})
	return generation.CatalogConfig{
		APIKey:            c.AzureAPIKey,
		Endpoint:          c.AzureEndpoint,
		APIVersion:        c.AzureAPIVersion,
		BaseURL:           c.OpenAIBaseURL,
		MaxRetries:        c.MaxRetries,
		DefaultDeployment: c.DefaultDeployment,
		Deployments:       deployments,
	}
}
