package services

import (
	"boardroom/contract"
	"boardroom/domain/event"
	"strings"
	"sync"
)

type segment struct {
	agent string
	text  strings.Builder
}

// transcript forwards records and groups agent updates into segments.
// Sequential streams get one segment per speaking run. Concurrent streams
// interleave, so they get one segment per agent.
type transcript struct {
	mu         sync.Mutex
	sink       contract.EventSink
	segments   []*segment
	concurrent bool
}

func newTranscript(sink contract.EventSink, concurrent bool) *transcript {
	return &transcript{sink: sink, concurrent: concurrent}
}

func (t *transcript) Emit(e event.Event) (event.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	written, err := t.sink.Emit(e)
	if err != nil {
		return written, err
	}
	update, ok := written.(event.AgentUpdate)
	if !ok {
		return written, nil
	}
	t.segmentFor(update.Agent).text.WriteString(update.Content)
	return written, nil
}

func (t *transcript) segmentFor(agent string) *segment {
	if t.concurrent {
		for _, s := range t.segments {
			if s.agent == agent {
				return s
			}
		}
	} else if n := len(t.segments); n > 0 && t.segments[n-1].agent == agent {
		return t.segments[n-1]
	}
	s := &segment{agent: agent}
	t.segments = append(t.segments, s)
	return s
}
