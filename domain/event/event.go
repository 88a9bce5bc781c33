package event

type Type string

const (
	TypeStart          Type = "start"
	TypeUIMessage      Type = "ui_message"
	TypeAgentUpdate    Type = "agent_update"
	TypeAgentsComplete Type = "agents_complete"
	TypeSynthesisStart Type = "synthesis_start"
	TypeComplete       Type = "complete"
	TypeError          Type = "error"
)

// Event is the closed set of records relayed to a client.
// Only types in this package implement it.
type Event interface {
	Type() Type
	isEvent()
}

type Start struct{}

type UIMessage struct {
	Text string
}

// AgentUpdate carries one text increment. Seq is stamped by the relay.
type AgentUpdate struct {
	Agent   string
	Seq     int64
	Content string
	IsFinal bool
}

type AgentsComplete struct{}

type SynthesisStart struct{}

type Complete struct{}

type Error struct {
	Message string
	Detail  string
}

func (Start) Type() Type          { return TypeStart }
func (UIMessage) Type() Type      { return TypeUIMessage }
func (AgentUpdate) Type() Type    { return TypeAgentUpdate }
func (AgentsComplete) Type() Type { return TypeAgentsComplete }
func (SynthesisStart) Type() Type { return TypeSynthesisStart }
func (Complete) Type() Type       { return TypeComplete }
func (Error) Type() Type          { return TypeError }

func (Start) isEvent()          {}
func (UIMessage) isEvent()      {}
func (AgentUpdate) isEvent()    {}
func (AgentsComplete) isEvent() {}
func (SynthesisStart) isEvent() {}
func (Complete) isEvent()       {}
func (Error) isEvent()          {}

// IsTerminal reports whether e ends a stream.
func IsTerminal(e Event) bool {
	switch e.(type) {
	case Complete, Error:
		return true
	default:
		return false
	}
}
