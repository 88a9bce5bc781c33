package domain

type Tone string

const (
	ToneFormal   Tone = "formal"
	ToneBalanced Tone = "balanced"
	ToneCasual   Tone = "casual"
	ToneConcise  Tone = "concise"
	ToneDetailed Tone = "detailed"
)

// ParseTone falls back to ToneBalanced for unknown or empty values.
func ParseTone(s string) Tone {
	switch t := Tone(s); t {
	case ToneFormal, ToneBalanced, ToneCasual, ToneConcise, ToneDetailed:
		return t
	default:
		return ToneBalanced
	}
}
