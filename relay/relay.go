// Package relay frames protocol records into a line-oriented stream.
package relay

import (
	"boardroom/domain/event"
	"boardroom/errors"
	"sync"
)

// LineWriter transmits one self-contained record.
type LineWriter interface {
	WriteLine(line []byte) error
}

// Relay stamps agent updates with a stream-wide sequence number and writes
// records in the order Emit is called. Stamping and writing happen under
// the same lock, so concurrent producers never observe seq out of order.
type Relay struct {
	mu         sync.Mutex
	w          LineWriter
	seq        int64
	terminated bool
}

func New(w LineWriter) *Relay {
	return &Relay{w: w}
}

func (r *Relay) Emit(e event.Event) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.terminated {
		return e, errors.ErrStreamTerminated
	}
	if u, ok := e.(event.AgentUpdate); ok {
		r.seq++
		u.Seq = r.seq
		e = u
	}
	line, err := Encode(e)
	if err != nil {
		return e, err
	}
	r.terminated = event.IsTerminal(e)
	return e, r.w.WriteLine(line)
}

// Seq returns the last stamped sequence number.
func (r *Relay) Seq() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}
