package e2e

import (
	"boardroom/client"
	"boardroom/generation"
	"boardroom/infrastructure/httpapi"
	"boardroom/observability"
	"boardroom/repositories"
	"boardroom/search"
	"boardroom/services"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// boardSpeakers is the number of messages a COO request carries:
// instructions, the prompt and the three earlier executives.
const boardSpeakers = 5

// BaseSuite runs the whole service in process against a fake
// OpenAI-compatible completion endpoint.
type BaseSuite struct {
	suite.Suite
	Config Config
	Stats  *observability.StreamStats

	model  *httptest.Server
	server *httptest.Server
	db     *badger.DB
	index  *search.Index

	mu       sync.Mutex
	requests []map[string]any
}

func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	s.model = httptest.NewServer(http.HandlerFunc(s.complete))

	s.db, err = badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)

	guidelines := s.T().TempDir()
	s.Require().NoError(os.WriteFile(filepath.Join(guidelines, "travel.md"),
		[]byte("Travel policy\n\nEmployees fly economy class on every trip under six hours."), 0o600))
	s.index, err = search.OpenIndex(log, "")
	s.Require().NoError(err)
	_, err = s.index.LoadDir(context.Background(), guidelines)
	s.Require().NoError(err)

	catalog := generation.NewCatalog(log, generation.CatalogConfig{
		APIKey:            "e2e",
		BaseURL:           s.model.URL + "/v1",
		DefaultDeployment: "e2e-mini",
	})
	s.Stats = observability.NewStreamStats()
	repository := repositories.NewSessionRepository(s.db, log, nil)
	streams := services.NewStreamService(log, catalog, s.index, repository, s.Stats,
		services.StreamConfig{MaxRounds: 10, MaxCalls: 50, SearchTop: 3})
	sessions := services.NewSessionService(log, repository)
	s.server = httptest.NewServer(httpapi.NewServer(log, streams, sessions, nil, 5*time.Second).Handler())
}

func (s *BaseSuite) TearDownSuite() {
	s.server.Close()
	s.model.Close()
	_ = s.index.Close()
	_ = s.db.Close()
}

// WithClient runs fn within a named, time-boxed step.
func (s *BaseSuite) WithClient(name string, fn func(ctx context.Context, c *client.Client)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.Timeout)
	defer cancel()
	fn(ctx, client.New(s.server.URL, nil))
}

// Requests returns the completion requests received so far.
func (s *BaseSuite) Requests() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.requests...)
}

// complete answers every completion with two deltas. The last board
// speaker closes the meeting.
func (s *BaseSuite) complete(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	s.mu.Lock()
	s.requests = append(s.requests, body)
	s.mu.Unlock()
	if s.Config.DebugJSON {
		pretty, _ := json.MarshalIndent(body, "", "  ")
		s.T().Logf("COMPLETION REQUEST %s\n%s", r.URL.Path, pretty)
	}

	messages, _ := body["messages"].([]any)
	deltas := []string{"Considered ", "view."}
	if len(messages) >= boardSpeakers {
		deltas = []string{"PLAN_READY: ", "execute."}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	for _, d := range deltas {
		payload, _ := json.Marshal(map[string]any{
			"id":      "chatcmpl-e2e",
			"object":  "chat.completion.chunk",
			"created": 1,
			"model":   "e2e-mini",
			"choices": []map[string]any{{"index": 0, "delta": map[string]any{"content": d}}},
		})
		_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
	}
	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
}
