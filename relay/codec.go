package relay

import (
	"boardroom/domain/event"
	"bytes"
	"encoding/json"
	"fmt"
)

type controlRecord struct {
	Type    event.Type `json:"type"`
	Message string     `json:"message,omitempty"`
	Detail  string     `json:"detail,omitempty"`
}

// agentRecord has no type field: clients recognize it by the agent key.
type agentRecord struct {
	Agent   string `json:"agent"`
	Seq     int64  `json:"seq"`
	Content string `json:"content"`
	IsFinal bool   `json:"is_final"`
}

// Encode serializes one record as a single newline-terminated JSON line.
// Text is written verbatim (no HTML escaping) so multilingual content survives as is.
func Encode(e event.Event) ([]byte, error) {
	var v any
	switch evt := e.(type) {
	case event.AgentUpdate:
		v = agentRecord{Agent: evt.Agent, Seq: evt.Seq, Content: evt.Content, IsFinal: evt.IsFinal}
	case event.UIMessage:
		v = controlRecord{Type: evt.Type(), Message: evt.Text}
	case event.Error:
		v = controlRecord{Type: evt.Type(), Message: evt.Message, Detail: evt.Detail}
	case event.Start, event.AgentsComplete, event.SynthesisStart, event.Complete:
		v = controlRecord{Type: evt.Type()}
	default:
		return nil, fmt.Errorf("unsupported event %T", e)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses one line produced by Encode.
func Decode(line []byte) (event.Event, error) {
	var raw struct {
		Type    event.Type `json:"type"`
		Agent   string     `json:"agent"`
		Seq     int64      `json:"seq"`
		Content string     `json:"content"`
		IsFinal bool       `json:"is_final"`
		Message string     `json:"message"`
		Detail  string     `json:"detail"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(line), &raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if raw.Type == "" && raw.Agent != "" {
		raw.Type = event.TypeAgentUpdate
	}
	switch raw.Type {
	case event.TypeStart:
		return event.Start{}, nil
	case event.TypeUIMessage:
		return event.UIMessage{Text: raw.Message}, nil
	case event.TypeAgentUpdate:
		return event.AgentUpdate{Agent: raw.Agent, Seq: raw.Seq, Content: raw.Content, IsFinal: raw.IsFinal}, nil
	case event.TypeAgentsComplete:
		return event.AgentsComplete{}, nil
	case event.TypeSynthesisStart:
		return event.SynthesisStart{}, nil
	case event.TypeComplete:
		return event.Complete{}, nil
	case event.TypeError:
		return event.Error{Message: raw.Message, Detail: raw.Detail}, nil
	default:
		return nil, fmt.Errorf("unknown record type %q", raw.Type)
	}
}
