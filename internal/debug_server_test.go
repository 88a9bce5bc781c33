package internal

import (
	"boardroom/domain"
	"boardroom/observability"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	counts   map[string]int
	messages []domain.SessionMessage
	err      error
}

func (f fakeInspector) Sessions() (map[string]int, error) { return f.counts, f.err }

func (f fakeInspector) List(string) ([]domain.SessionMessage, error) { return f.messages, f.err }

func inspect(t *testing.T, inspector SessionInspector, query string) (int, string) {
	t.Helper()
	handler := NewDebugHandler(slog.New(slog.DiscardHandler), inspector, func() observability.StreamSnapshot {
		return observability.StreamSnapshot{StartedStreams: 7}
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect"+query, nil))
	body, _ := io.ReadAll(rec.Body)
	return rec.Code, string(body)
}

func TestDebugHandler_ListsSessions(t *testing.T) {
	req := require.New(t)

	code, body := inspect(t, fakeInspector{counts: map[string]int{"team-b": 1, "team-a": 5}}, "")

	req.Equal(http.StatusOK, code)
	req.Contains(body, "started_streams: 7")
	req.Contains(body, `href="/inspect?session=team-a"`)
	req.Contains(body, "5 messages")
	req.Less(strings.Index(body, "team-a"), strings.Index(body, "team-b"))
}

func TestDebugHandler_ShowsTranscript(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	code, body := inspect(t, fakeInspector{messages: []domain.SessionMessage{
		{ID: uuid.New(), IsUser: true, Content: "Open a Tokyo office?", At: at},
		{ID: uuid.New(), Agent: "CFO", Content: "Budget <ok>", At: at},
	}}, "?session=team-a")

	req.Equal(http.StatusOK, code)
	req.Contains(body, "Session team-a")
	req.Contains(body, `class="USER"`)
	req.Contains(body, "CFO")
	req.Contains(body, "Budget &lt;ok&gt;")
	req.Contains(body, "09:30:00")
}

func TestDebugHandler_StoreFailure(t *testing.T) {
	req := require.New(t)

	code, _ := inspect(t, fakeInspector{err: errors.New("badger closed")}, "")

	req.Equal(http.StatusInternalServerError, code)
}
