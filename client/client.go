// Package client talks to the boardroom HTTP API.
package client

import (
	"boardroom/domain/event"
	"boardroom/relay"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	PathChat      = "/api/stream"
	PathGuideline = "/api/rag/stream"
	PathDebate    = "/api/multi-agent-stream"
	PathBoard     = "/api/phase1/stream"
)

type Request struct {
	Prompt    string `json:"prompt"`
	Model     string `json:"model,omitempty"`
	Tone      string `json:"tone,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type Message struct {
	ID        string    `json:"id"`
	IsUser    bool      `json:"is_user"`
	Agent     string    `json:"agent,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusError is a request refused before any streaming started.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server replied %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Events posts request to an event stream endpoint and yields each record.
// The sequence ends after a terminal record or on the first error.
func (c *Client) Events(ctx context.Context, path string, request Request) iter.Seq2[event.Event, error] {
	return func(yield func(event.Event, error) bool) {
		body, err := c.post(ctx, path, request)
		if err != nil {
			yield(nil, err)
			return
		}
		defer func() { _ = body.Close() }()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			e, err := relay.Decode(line)
			if !yield(e, err) || err != nil || event.IsTerminal(e) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Text copies a plain text stream to w.
func (c *Client) Text(ctx context.Context, path string, request Request, w io.Writer) error {
	body, err := c.post(ctx, path, request)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()
	_, err = io.Copy(w, body)
	return err
}

func (c *Client) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	u := c.baseURL + "/api/messages?session_id=" + url.QueryEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var messages []Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}

func (c *Client) Clear(ctx context.Context, sessionID string) error {
	body, err := c.post(ctx, "/api/messages/clear", map[string]string{"session_id": sessionID})
	if err != nil {
		return err
	}
	return body.Close()
}

func (c *Client) post(ctx context.Context, path string, payload any) (io.ReadCloser, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, statusError(resp)
	}
	return resp.Body, nil
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}
	return &StatusError{Code: resp.StatusCode, Message: body.Error}
}
