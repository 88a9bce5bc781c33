package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultSessionID = "default"

// SessionMessage is one entry of a client session transcript.
type SessionMessage struct {
	ID        uuid.UUID `msgpack:"id"`
	SessionID string    `msgpack:"session_id"`
	IsUser    bool      `msgpack:"is_user"`
	Agent     string    `msgpack:"agent,omitempty"`
	Content   string    `msgpack:"content"`
	At        time.Time `msgpack:"at"`
}
