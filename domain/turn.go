package domain

// Turn is one completed utterance. Turns are never mutated once recorded.
type Turn struct {
	Speaker    string
	Text       string
	ProducedAt int
}

// History is the append-only conversation record owned by one orchestrator.
type History struct {
	turns []Turn
}

func (h *History) Append(speaker, text string) Turn {
	turn := Turn{Speaker: speaker, Text: text, ProducedAt: len(h.turns)}
	h.turns = append(h.turns, turn)
	return turn
}

// Turns returns a copy so callers cannot rewrite recorded turns.
func (h *History) Turns() []Turn {
	return append([]Turn(nil), h.turns...)
}

func (h *History) Len() int { return len(h.turns) }

// CountBy counts the turns whose speaker satisfies keep.
func (h *History) CountBy(keep func(speaker string) bool) int {
	n := 0
	for _, t := range h.turns {
		if keep(t.Speaker) {
			n++
		}
	}
	return n
}
