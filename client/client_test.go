package client

import (
	"boardroom/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_EventsStopsAtTerminalRecord(t *testing.T) {
	req := require.New(t)
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"type":"start"}`+"\n")
		_, _ = io.WriteString(w, `{"agent":"CEO","seq":1,"content":"Hi","is_final":false}`+"\n\n")
		_, _ = io.WriteString(w, `{"type":"complete"}`+"\n")
		_, _ = io.WriteString(w, `{"type":"start"}`+"\n")
	}))
	defer server.Close()

	var events []event.Event
	for e, err := range New(server.URL+"/", nil).Events(context.Background(), PathBoard, Request{Prompt: "go", Tone: "casual"}) {
		req.NoError(err)
		events = append(events, e)
	}

	req.Equal(Request{Prompt: "go", Tone: "casual"}, got)
	req.Equal([]event.Event{
		event.Start{},
		event.AgentUpdate{Agent: "CEO", Seq: 1, Content: "Hi"},
		event.Complete{},
	}, events)
}

func TestClient_RefusedRequest(t *testing.T) {
	tests := []struct {
		description string
		body        string
		wantMessage string
	}{
		{"Should read the json error field", `{"error":"prompt required"}`, "prompt required"},
		{"Should fall back to the raw body", "boom\n", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			err := New(server.URL, nil).Text(context.Background(), PathChat, Request{}, io.Discard)

			var statusErr *StatusError
			req.ErrorAs(err, &statusErr)
			req.Equal(http.StatusBadRequest, statusErr.Code)
			req.Equal(tt.wantMessage, statusErr.Message)
		})
	}
}

func TestClient_Messages(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `[{"id":"1","is_user":true,"content":"%s"}]`, r.URL.Query().Get("session_id"))
	}))
	defer server.Close()

	messages, err := New(server.URL, nil).Messages(context.Background(), "team a")

	req.NoError(err)
	req.Len(messages, 1)
	req.True(messages[0].IsUser)
	req.Equal("team a", messages[0].Content)
}

func TestClient_TextCopiesStream(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "Hello there")
	}))
	defer server.Close()

	var out strings.Builder
	err := New(server.URL, nil).Text(context.Background(), PathChat, Request{Prompt: "hi"}, &out)

	req.NoError(err)
	req.Equal("Hello there", out.String())
}
