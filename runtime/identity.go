package runtime

import (
	"boardroom/domain"
	"strings"
)

const unknownSpeaker = "unknown"

// resolveParticipant maps a substrate chunk to a participant name.
// An explicit author wins; the execution id only counts when it is itself a participant name.
// Everything else (routing or control actors) resolves to nothing.
func resolveParticipant(c domain.Chunk, roster domain.Roster) (string, bool) {
	if strings.TrimSpace(c.Author) != "" {
		return roster.Lookup(c.Author)
	}
	return roster.Lookup(c.ExecutionID)
}

// rawSpeaker names the producer of a chunk that did not resolve.
func rawSpeaker(c domain.Chunk) string {
	for _, s := range []string{c.Author, c.ExecutionID} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return unknownSpeaker
}

// utterances collects the text of one generation call per speaker,
// keeping speakers in order of first appearance.
type utterances struct {
	order []string
	texts map[string]*strings.Builder
}

func newUtterances() *utterances {
	return &utterances{texts: make(map[string]*strings.Builder)}
}

func (u *utterances) add(speaker, text string) {
	b, ok := u.texts[speaker]
	if !ok {
		b = &strings.Builder{}
		u.texts[speaker] = b
		u.order = append(u.order, speaker)
	}
	b.WriteString(text)
}

func (u *utterances) text(speaker string) string {
	if b, ok := u.texts[speaker]; ok {
		return b.String()
	}
	return ""
}

func (u *utterances) flush(history *domain.History) {
	for _, s := range u.order {
		history.Append(s, u.texts[s].String())
	}
}
