package observability

import (
	"boardroom/contract"
	"boardroom/domain/event"
	"runtime"
	"sync/atomic"
)

// StreamSnapshot aggregates the counters reported by the heartbeat.
type StreamSnapshot struct {
	ActiveStreams  int64  `json:"active_streams"`
	StartedStreams uint64 `json:"started_streams"`
	FailedStreams  uint64 `json:"failed_streams"`
	AgentUpdates   uint64 `json:"agent_updates"`
	ErrorRecords   uint64 `json:"error_records"`
	AllocMemMb     uint64 `json:"alloc_mem_mb"`
	NumGC          uint32 `json:"num_gc"`
}

// StreamStats counts streams and relayed records across requests.
type StreamStats struct {
	active       atomic.Int64
	started      atomic.Uint64
	failed       atomic.Uint64
	agentUpdates atomic.Uint64
	errorRecords atomic.Uint64
}

func NewStreamStats() *StreamStats {
	return &StreamStats{}
}

// Begin marks a stream as active and returns the function ending it.
func (s *StreamStats) Begin() (end func(err error)) {
	s.active.Add(1)
	s.started.Add(1)
	return func(err error) {
		s.active.Add(-1)
		if err != nil {
			s.failed.Add(1)
		}
	}
}

// Observe counts the records written through sink.
func (s *StreamStats) Observe(sink contract.EventSink) contract.EventSink {
	return observedSink{sink: sink, stats: s}
}

func (s *StreamStats) Snapshot() StreamSnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return StreamSnapshot{
		ActiveStreams:  s.active.Load(),
		StartedStreams: s.started.Load(),
		FailedStreams:  s.failed.Load(),
		AgentUpdates:   s.agentUpdates.Load(),
		ErrorRecords:   s.errorRecords.Load(),
		AllocMemMb:     m.Alloc / 1024 / 1024,
		NumGC:          m.NumGC,
	}
}

type observedSink struct {
	sink  contract.EventSink
	stats *StreamStats
}

func (o observedSink) Emit(e event.Event) (event.Event, error) {
	written, err := o.sink.Emit(e)
	if err != nil {
		return written, err
	}
	switch e.(type) {
	case event.AgentUpdate:
		o.stats.agentUpdates.Add(1)
	case event.Error:
		o.stats.errorRecords.Add(1)
	}
	return written, nil
}
