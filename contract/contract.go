//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"boardroom/domain"
	"boardroom/domain/event"
	"context"
	"iter"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Generator is the language-model capability. Each call is independent
// and the returned sequence is consumed at most once.
// A non-nil error ends the sequence.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) iter.Seq2[domain.Chunk, error]
}

// GeneratorProvider resolves the generator backing a model name.
type GeneratorProvider interface {
	GeneratorFor(model string) (Generator, error)
}

// EventSink receives protocol records in production order.
// It returns the record as written, with its sequence number stamped.
type EventSink interface {
	Emit(e event.Event) (event.Event, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, top int) ([]domain.Passage, error)
}

type SessionStore interface {
	Append(message domain.SessionMessage) error
	List(sessionID string) ([]domain.SessionMessage, error)
	Clear(sessionID string) error
}
