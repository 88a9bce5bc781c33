package httpapi

import (
	"boardroom/domain"
	"boardroom/errors"
	"boardroom/generation"
	"boardroom/relay"
	"boardroom/services"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	maxBodyBytes = 1 << 20
	framework    = "boardroom"
)

type Server struct {
	log          *slog.Logger
	streams      services.IStreamService
	sessions     services.ISessionService
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

func NewServer(log *slog.Logger, streams services.IStreamService, sessions services.ISessionService,
	allowedOrigins []string, writeTimeout time.Duration) *Server {
	return &Server{
		log:          log,
		streams:      streams,
		sessions:     sessions,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Handler routes every endpoint. Each route gets its own span name.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "POST /api/stream", "chat", s.plainStream("chat", s.streams.Chat))
	s.route(mux, "POST /api/rag/stream", "guideline", s.plainStream("rag", s.streams.Guideline))
	s.route(mux, "POST /api/guideline/stream", "guideline", s.plainStream("rag", s.streams.Guideline))
	s.route(mux, "POST /api/multi-agent-stream", "debate", s.eventStream("multi", s.streams.Debate))
	s.route(mux, "POST /api/phase1/stream", "board", s.eventStream("board", s.streams.Board))
	s.route(mux, "GET /ws/{mode}", "websocket", s.serveWebsocket)
	s.route(mux, "GET /api/messages", "messages", s.history)
	s.route(mux, "POST /api/messages/clear", "messages.clear", s.clear)
	s.route(mux, "GET /{$}", "health", s.health)
	return mux
}

func (s *Server) route(mux *http.ServeMux, pattern, operation string, h http.HandlerFunc) {
	mux.Handle(pattern, otelhttp.NewHandler(h, operation))
}

type streamFunc[W any] func(ctx context.Context, request services.StreamRequest, w W) error

// eventStream serves a newline-delimited JSON record stream.
func (s *Server) eventStream(kind string, run streamFunc[relay.LineWriter]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serveStream(w, r, kind, func(ctx context.Context, request services.StreamRequest, out *relay.FlushWriter) error {
			return run(ctx, request, out)
		})
	}
}

// plainStream serves raw text increments.
func (s *Server) plainStream(kind string, run streamFunc[io.Writer]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serveStream(w, r, kind, func(ctx context.Context, request services.StreamRequest, out *relay.FlushWriter) error {
			return run(ctx, request, out)
		})
	}
}

func (s *Server) serveStream(w http.ResponseWriter, r *http.Request, kind string,
	run func(ctx context.Context, request services.StreamRequest, out *relay.FlushWriter) error) {
	start := time.Now()
	requestID := kind + "_" + uuid.NewString()
	log := s.log.With("request_id", requestID)
	log.Info("Request received", "path", r.URL.Path)

	var request services.StreamRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&request); err != nil {
		log.Warn("Invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	// net/http only notices a client disconnect, and cancels r.Context(),
	// once the request body has been read to EOF.
	_, _ = io.Copy(io.Discard, body)
	if request.Model == "" {
		request.Model = generation.DefaultModel
	}
	log.Info("Request parsed", "model", request.Model, "prompt_length", len(request.Prompt),
		"elapsed", time.Since(start).String())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Request-Id", requestID)
	out := relay.NewFlushWriter(w)

	err := run(r.Context(), request, out)
	switch {
	case err == nil:
		log.Info("Stream completed", "elapsed", time.Since(start).String())
	case !out.Wrote():
		writeJSON(w, errors.MapToHTTPStatus(err), map[string]string{"error": err.Error()})
	default:
		log.Warn("Stream ended with error", "error", err, "elapsed", time.Since(start).String())
	}
}

type messageResponse struct {
	ID        string    `json:"id"`
	IsUser    bool      `json:"is_user"`
	Agent     string    `json:"agent,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	sessionID := lo.CoalesceOrEmpty(r.URL.Query().Get("session_id"), domain.DefaultSessionID)
	messages, err := s.sessions.History(sessionID)
	if err != nil {
		s.log.Error("Failed to read session", "session_id", sessionID, "error", err)
		writeJSON(w, errors.MapToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(messages, func(m domain.SessionMessage, _ int) messageResponse {
		return messageResponse{ID: m.ID.String(), IsUser: m.IsUser, Agent: m.Agent, Content: m.Content, Timestamp: m.At}
	}))
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}
	sessionID := lo.CoalesceOrEmpty(body.SessionID, domain.DefaultSessionID)
	if err := s.sessions.Clear(sessionID); err != nil {
		s.log.Error("Failed to clear session", "session_id", sessionID, "error", err)
		writeJSON(w, errors.MapToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "framework": framework})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
