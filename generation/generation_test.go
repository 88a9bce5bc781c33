package generation

import (
	"boardroom/domain"
	"boardroom/errors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path   string
	query  string
	apiKey string
	auth   string
	body   map[string]any
}

// completionServer streams the given deltas as server-sent events.
func completionServer(t *testing.T, deltas ...string) (*httptest.Server, *[]capturedRequest) {
	var (
		mu       sync.Mutex
		captured []capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		captured = append(captured, capturedRequest{
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			apiKey: r.Header.Get("Api-Key"),
			auth:   r.Header.Get("Authorization"),
			body:   body,
		})
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			payload, _ := json.Marshal(map[string]any{
				"id":      "chatcmpl-42",
				"object":  "chat.completion.chunk",
				"created": 1,
				"model":   "deployment",
				"choices": []map[string]any{{"index": 0, "delta": map[string]any{"content": d}}},
			})
			_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestCatalog_MissingCredentials(t *testing.T) {
	tests := []struct {
		description string
		cfg         CatalogConfig
	}{
		{"Should fail without api key", CatalogConfig{Endpoint: "https://x", DefaultDeployment: "d"}},
		{"Should fail without endpoint", CatalogConfig{APIKey: "k", DefaultDeployment: "d"}},
		{"Should fail without deployment", CatalogConfig{APIKey: "k", Endpoint: "https://x"}},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			c := NewCatalog(logs.GetLoggerFromLevel(slog.LevelDebug), tt.cfg)
			_, err := c.GeneratorFor(DefaultModel)
			req.ErrorIs(err, errors.ErrConfigMissing)
		})
	}
}

func TestCatalog_DeploymentFallback(t *testing.T) {
	req := require.New(t)
	c := NewCatalog(logs.GetLoggerFromLevel(slog.LevelDebug), CatalogConfig{
		DefaultDeployment: "main",
		Deployments:       map[string]string{"gpt-4.1": "big", "gpt-4.1-nano": ""},
	})

	req.Equal("big", c.Deployment("gpt-4.1"))
	req.Equal("main", c.Deployment("gpt-4.1-nano"))
	req.Equal("main", c.Deployment("unknown"))
	req.Equal("main", c.Deployment(""))
}

func TestCatalog_ReusesGeneratorPerDeployment(t *testing.T) {
	req := require.New(t)
	c := NewCatalog(logs.GetLoggerFromLevel(slog.LevelDebug), CatalogConfig{
		APIKey: "k", BaseURL: "http://localhost", DefaultDeployment: "main",
	})

	first, err := c.GeneratorFor("gpt-4.1")
	req.NoError(err)
	second, err := c.GeneratorFor("gpt-5.2")
	req.NoError(err)

	req.Same(first, second)
}

func TestGenerate_StreamsDeltasFromCompatibleEndpoint(t *testing.T) {
	req := require.New(t)
	srv, captured := completionServer(t, "Hel", "", "lo")
	c := NewCatalog(logs.GetLoggerFromLevel(slog.LevelDebug), CatalogConfig{
		APIKey: "secret", BaseURL: srv.URL + "/v1/", DefaultDeployment: "mini",
	})
	g, err := c.GeneratorFor(DefaultModel)
	req.NoError(err)

	var texts []string
	for chunk, err := range g.Generate(context.Background(), domain.GenerationRequest{
		Agent:        "CTO",
		Instructions: "be technical",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "agenda"},
			{Role: domain.RoleAssistant, Name: "CEO", Content: "strategy"},
		},
	}) {
		req.NoError(err)
		req.Equal("CTO", chunk.Author)
		req.Equal("chatcmpl-42", chunk.ExecutionID)
		texts = append(texts, chunk.Text)
	}

	req.Equal([]string{"Hel", "lo"}, texts)
	req.Len(*captured, 1)
	got := (*captured)[0]
	req.Equal("/v1/chat/completions", got.path)
	req.Equal("Bearer secret", got.auth)
	req.Equal("mini", got.body["model"])
	messages := got.body["messages"].([]any)
	req.Len(messages, 3)
	req.Equal("system", messages[0].(map[string]any)["role"])
	req.Equal("CEO", messages[2].(map[string]any)["name"])
}

func TestGenerate_UsesAzureDeploymentRoute(t *testing.T) {
	req := require.New(t)
	srv, captured := completionServer(t, "ok")
	c := NewCatalog(logs.GetLoggerFromLevel(slog.LevelDebug), CatalogConfig{
		APIKey:            "azure-key",
		Endpoint:          srv.URL,
		APIVersion:        "2024-10-21",
		DefaultDeployment: "board-mini",
	})
	g, err := c.GeneratorFor(DefaultModel)
	req.NoError(err)

	for _, err := range g.Generate(context.Background(), domain.GenerationRequest{Agent: "CEO"}) {
		req.NoError(err)
	}

	got := (*captured)[0]
	req.Equal("/openai/deployments/board-mini/chat/completions", got.path)
	req.Equal("api-version=2024-10-21", got.query)
	req.Equal("azure-key", got.apiKey)
}

func TestGenerate_ReportsServerFailure(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, `{"error":{"message":"bad deployment","type":"invalid_request_error"}}`)
	}))
	t.Cleanup(srv.Close)
	c := NewCatalog(logs.GetLoggerFromLevel(slog.LevelDebug), CatalogConfig{
		APIKey: "k", BaseURL: srv.URL, DefaultDeployment: "d",
	})
	g, err := c.GeneratorFor(DefaultModel)
	req.NoError(err)

	var failure error
	for _, err := range g.Generate(context.Background(), domain.GenerationRequest{Agent: "CEO"}) {
		failure = err
	}

	req.Error(failure)
}
