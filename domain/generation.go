package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the context handed to a generator.
type Message struct {
	Role    Role
	Name    string
	Content string
}

type GenerationRequest struct {
	// Agent is the logical name of the invoking participant.
	Agent        string
	Instructions string
	Messages     []Message
}

// Chunk is a text increment normalized from the generation substrate.
// ExecutionID identifies the unit of work and may not be a participant name.
type Chunk struct {
	ExecutionID string
	Author      string
	Text        string
}

// Passage is a retrieved guideline excerpt.
type Passage struct {
	Source  string
	Content string
	Score   float64
}
