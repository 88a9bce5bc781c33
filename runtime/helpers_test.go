package runtime

import (
	"boardroom/domain"
	"boardroom/domain/event"
	"boardroom/relay"
	"context"
	"iter"
	"log/slog"
	"sync"

	"github.com/mama165/sdk-go/logs"
)

var testLog = logs.GetLoggerFromLevel(slog.LevelDebug)

type generatorFunc func(ctx context.Context, req domain.GenerationRequest) iter.Seq2[domain.Chunk, error]

func (f generatorFunc) Generate(ctx context.Context, req domain.GenerationRequest) iter.Seq2[domain.Chunk, error] {
	return f(ctx, req)
}

// said yields one chunk per text, authored by agent.
func said(agent string, texts ...string) iter.Seq2[domain.Chunk, error] {
	return func(yield func(domain.Chunk, error) bool) {
		for _, t := range texts {
			if !yield(domain.Chunk{Author: agent, ExecutionID: "exec_" + agent, Text: t}, nil) {
				return
			}
		}
	}
}

// saidThenFailed yields the texts then err.
func saidThenFailed(agent string, err error, texts ...string) iter.Seq2[domain.Chunk, error] {
	return func(yield func(domain.Chunk, error) bool) {
		for c, e := range said(agent, texts...) {
			if !yield(c, e) {
				return
			}
		}
		yield(domain.Chunk{}, err)
	}
}

// recorder decodes every line written by a relay.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func newRecordingRelay() (*relay.Relay, *recorder) {
	rec := &recorder{}
	return relay.New(rec), rec
}

func (r *recorder) WriteLine(line []byte) error {
	e, err := relay.Decode(line)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) all() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

func (r *recorder) types() []event.Type {
	var types []event.Type
	for _, e := range r.all() {
		types = append(types, e.Type())
	}
	return types
}

func (r *recorder) updates() []event.AgentUpdate {
	var updates []event.AgentUpdate
	for _, e := range r.all() {
		if u, ok := e.(event.AgentUpdate); ok {
			updates = append(updates, u)
		}
	}
	return updates
}

func (r *recorder) last() event.Event {
	all := r.all()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}
