package httpapi

import (
	"boardroom/domain/event"
	"boardroom/generation"
	"boardroom/relay"
	"boardroom/services"
	"context"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	ModeBoard  = "board"
	ModeDebate = "debate"
)

// serveWebsocket runs one stream per connection. The first client frame is the
// request body, then every record goes out as its own text frame.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	mode := r.PathValue("mode")
	var run streamFunc[relay.LineWriter]
	switch mode {
	case ModeBoard:
		run = s.streams.Board
	case ModeDebate:
		run = s.streams.Debate
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown conversation mode: " + mode})
		return
	}

	requestID := "ws_" + mode + "_" + uuid.NewString()
	log := s.log.With("request_id", requestID)
	conn, err := s.upgrader.Upgrade(w, r, http.Header{"X-Request-Id": {requestID}})
	if err != nil {
		log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(maxBodyBytes)

	var request services.StreamRequest
	if err := conn.ReadJSON(&request); err != nil {
		log.Warn("Invalid websocket request", "error", err)
		s.closeWith(conn, websocket.CloseUnsupportedData, "invalid request body")
		return
	}
	if request.Model == "" {
		request.Model = generation.DefaultModel
	}

	// The hijacked connection no longer cancels r.Context(): a close frame
	// or a dropped connection is only seen by reading.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				log.Debug("Websocket client gone", "error", err)
				cancel()
				return
			}
		}
	}()

	start := time.Now()
	out := relay.NewWebsocketWriter(conn, s.writeTimeout)
	err = run(ctx, request, out)
	switch {
	case err == nil:
		log.Info("Websocket stream completed", "elapsed", time.Since(start).String())
	case !out.Wrote():
		// Requests refused before streaming still get their single error record.
		log.Warn("Websocket request refused", "error", err)
		_, _ = relay.New(out).Emit(event.Error{Message: err.Error()})
	default:
		log.Warn("Websocket stream ended with error", "error", err)
	}
	s.closeWith(conn, websocket.CloseNormalClosure, "")
}

func (s *Server) closeWith(conn *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}

// originChecker accepts same-host requests, requests without an Origin and
// the configured origins. "*" accepts everything.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
