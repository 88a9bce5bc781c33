// Package selector decides who speaks next in a round-robin conversation.
// It is a pure decision over the history and the caller-owned State.
package selector

import (
	"boardroom/domain"
	"strings"

	"github.com/samber/lo"
)

// State is threaded by the caller between calls of one conversation.
// CallsMade never decreases; a new conversation starts from the zero value.
type State struct {
	CallsMade    int
	LastReturned string
}

type Params struct {
	Participants     []string
	CompletionMarker string
	MaxRounds        int
	MaxCalls         int
}

type Reason int

const (
	ReasonNext Reason = iota
	ReasonMaxRounds
	ReasonMaxCalls
	ReasonMarker
	ReasonNoParticipants
)

func (r Reason) String() string {
	switch r {
	case ReasonNext:
		return "next"
	case ReasonMaxRounds:
		return "max_rounds"
	case ReasonMaxCalls:
		return "max_calls"
	case ReasonMarker:
		return "completion_marker"
	case ReasonNoParticipants:
		return "no_participants"
	default:
		return "unknown"
	}
}

type Decision struct {
	Speaker   string
	Terminate bool
	Reason    Reason
}

func terminate(r Reason) Decision { return Decision{Terminate: true, Reason: r} }

// Select returns the next speaker or a termination decision.
// Unknown speakers in history are ignored, never rejected.
func Select(history []domain.Turn, round int, state *State, p Params) Decision {
	n := len(p.Participants)
	if n == 0 {
		return terminate(ReasonNoParticipants)
	}
	if round >= p.MaxRounds {
		return terminate(ReasonMaxRounds)
	}
	if state.CallsMade >= p.MaxCalls {
		return terminate(ReasonMaxCalls)
	}
	if hasMarker(history, p.CompletionMarker) {
		return terminate(ReasonMarker)
	}

	next := p.Participants[0]
	if last, ok := lastParticipantIndex(history, p.Participants); ok {
		next = p.Participants[(last+1)%n]
	}

	// The caller may ask again before history shows the previous turn.
	// TODO: a speaker legitimately selected twice in a row gets skipped here; keep until the board flow is reviewed.
	if next == state.LastReturned {
		i := lo.IndexOf(p.Participants, next)
		next = p.Participants[(i+1)%n]
	}

	state.CallsMade++
	state.LastReturned = next
	return Decision{Speaker: next, Reason: ReasonNext}
}

func hasMarker(history []domain.Turn, marker string) bool {
	if marker == "" {
		return false
	}
	for i := len(history) - 1; i >= 0; i-- {
		if strings.Contains(history[i].Text, marker) {
			return true
		}
	}
	return false
}

func lastParticipantIndex(history []domain.Turn, participants []string) (int, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		idx := lo.IndexOf(participants, strings.TrimSpace(history[i].Speaker))
		if idx >= 0 {
			return idx, true
		}
	}
	return -1, false
}
