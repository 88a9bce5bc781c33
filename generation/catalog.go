package generation

import (
	"boardroom/contract"
	"boardroom/errors"
	"log/slog"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

const DefaultModel = "gpt-4.1-mini"

type CatalogConfig struct {
	APIKey     string
	Endpoint   string // Azure resource endpoint
	APIVersion string
	BaseURL    string // OpenAI-compatible endpoint, used when Endpoint is empty
	MaxRetries int
	// DefaultDeployment serves every model without its own deployment.
	DefaultDeployment string
	Deployments       map[string]string
}

// Catalog maps public model names to deployments and hands out one
// generator per deployment.
type Catalog struct {
	log        *slog.Logger
	cfg        CatalogConfig
	mu         sync.Mutex
	generators map[string]*OpenAIGenerator
	client     *openai.Client
}

func NewCatalog(log *slog.Logger, cfg CatalogConfig) *Catalog {
	return &Catalog{log: log, cfg: cfg, generators: make(map[string]*OpenAIGenerator)}
}

// Configured reports whether credentials are present.
func (c *Catalog) Configured() bool {
	return c.cfg.APIKey != "" && (c.cfg.Endpoint != "" || c.cfg.BaseURL != "")
}

// Deployment resolves a model name; unknown or empty names use the default deployment.
func (c *Catalog) Deployment(model string) string {
	if d, ok := c.cfg.Deployments[model]; ok && d != "" {
		return d
	}
	return c.cfg.DefaultDeployment
}

func (c *Catalog) GeneratorFor(model string) (contract.Generator, error) {
	if !c.Configured() {
		return nil, errors.ErrConfigMissing
	}
	deployment := c.Deployment(model)
	if deployment == "" {
		return nil, errors.ErrConfigMissing
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.generators[deployment]; ok {
		return g, nil
	}
	if c.client == nil {
		client := openai.NewClient(c.options()...)
		c.client = &client
	}
	c.log.Info("Model selected", "model", model, "deployment", deployment)
	g := NewOpenAIGenerator(*c.client, deployment)
	c.generators[deployment] = g
	return g, nil
}

func (c *Catalog) options() []option.RequestOption {
	opts := []option.RequestOption{option.WithMaxRetries(c.cfg.MaxRetries)}
	if c.cfg.Endpoint != "" {
		return append(opts,
			azure.WithEndpoint(c.cfg.Endpoint, c.cfg.APIVersion),
			azure.WithAPIKey(c.cfg.APIKey),
		)
	}
	return append(opts,
		option.WithAPIKey(c.cfg.APIKey),
		option.WithBaseURL(c.cfg.BaseURL),
	)
}
