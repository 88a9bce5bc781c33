package internal

import (
	"boardroom/domain"
	"boardroom/observability"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/samber/lo"
)

//go:embed inspect.html
var templatesFS embed.FS

// SessionInspector is the read side of the session store.
type SessionInspector interface {
	Sessions() (map[string]int, error)
	List(sessionID string) ([]domain.SessionMessage, error)
}

type StatsProvider func() observability.StreamSnapshot

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Detail    string
}

type PageData struct {
	Session string
	Items   []InspectRow
	Stats   map[string]any
}

// NewDebugHandler serves a read-only page over the session store and
// the stream counters. ?session= switches from the session list to a transcript.
func NewDebugHandler(log *slog.Logger, sessions SessionInspector, statsProvider StatsProvider) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	mux := http.NewServeMux()

	mux.HandleFunc("GET /inspect", func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			Session: r.URL.Query().Get("session"),
			Stats:   make(map[string]any),
		}
		if statsProvider != nil {
			s := statsProvider()
			data.Stats = map[string]any{
				"active_streams":  s.ActiveStreams,
				"started_streams": s.StartedStreams,
				"failed_streams":  s.FailedStreams,
				"agent_updates":   s.AgentUpdates,
				"error_records":   s.ErrorRecords,
				"alloc_mem_mb":    s.AllocMemMb,
			}
		}

		var err error
		if data.Session == "" {
			data.Items, err = sessionRows(sessions)
		} else {
			data.Items, err = messageRows(sessions, data.Session)
		}
		if err != nil {
			log.Error("Inspect failed", "session", data.Session, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
	return mux
}

func sessionRows(sessions SessionInspector) ([]InspectRow, error) {
	counts, err := sessions.Sessions()
	if err != nil {
		return nil, err
	}
	ids := lo.Keys(counts)
	slices.Sort(ids)
	return lo.Map(ids, func(id string, _ int) InspectRow {
		return InspectRow{
			Key:       id,
			Type:      "SESSION",
			Timestamp: "--:--:--",
			EntityID:  id,
			Detail:    strconv.Itoa(counts[id]) + " messages",
		}
	}), nil
}

func messageRows(sessions SessionInspector, sessionID string) ([]InspectRow, error) {
	messages, err := sessions.List(sessionID)
	if err != nil {
		return nil, err
	}
	return lo.Map(messages, func(m domain.SessionMessage, _ int) InspectRow {
		row := InspectRow{
			Key:       m.ID.String(),
			Type:      "AGENT",
			Timestamp: m.At.Format("15:04:05"),
			EntityID:  m.Agent,
			Detail:    m.Content,
		}
		if m.IsUser {
			row.Type, row.EntityID = "USER", "user"
		}
		if len(row.Key) > 8 {
			row.Key = row.Key[:8]
		}
		return row
	}), nil
}
