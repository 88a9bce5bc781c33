package relay

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// FlushWriter writes lines to an HTTP response and flushes after each one.
type FlushWriter struct {
	w       io.Writer
	flusher http.Flusher
	wrote   bool
}

func NewFlushWriter(w io.Writer) *FlushWriter {
	f, _ := w.(http.Flusher)
	return &FlushWriter{w: w, flusher: f}
}

func (f *FlushWriter) WriteLine(line []byte) error {
	f.wrote = true
	if _, err := f.w.Write(line); err != nil {
		return err
	}
	if f.flusher != nil {
		f.flusher.Flush()
	}
	return nil
}

// Write lets plain-text streams share the flushing behaviour.
func (f *FlushWriter) Write(p []byte) (int, error) {
	f.wrote = true
	n, err := f.w.Write(p)
	if err == nil && f.flusher != nil {
		f.flusher.Flush()
	}
	return n, err
}

// Wrote reports whether anything reached the response, after which the status is fixed.
func (f *FlushWriter) Wrote() bool {
	return f.wrote
}

// WebsocketWriter sends one record per text frame.
type WebsocketWriter struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	wrote        bool
}

func NewWebsocketWriter(conn *websocket.Conn, writeTimeout time.Duration) *WebsocketWriter {
	return &WebsocketWriter{conn: conn, writeTimeout: writeTimeout}
}

func (w *WebsocketWriter) WriteLine(line []byte) error {
	w.wrote = true
	if w.writeTimeout > 0 {
		if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
			return err
		}
	}
	return w.conn.WriteMessage(websocket.TextMessage, bytes.TrimRight(line, "\n"))
}

func (w *WebsocketWriter) Wrote() bool {
	return w.wrote
}
