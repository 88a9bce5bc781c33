package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrConfigMissing    = fmt.Errorf("azure openai configuration is missing")
	ErrPromptRequired   = fmt.Errorf("prompt required")
	ErrUnknownMode      = fmt.Errorf("unknown conversation mode")
	ErrEmptyRoster      = fmt.Errorf("roster must contain at least one participant")
	ErrDuplicateName    = fmt.Errorf("participant names must be unique")
	ErrTooFewBranches   = fmt.Errorf("fan-out requires at least two branches")
	ErrStreamTerminated = fmt.Errorf("stream already terminated")
	ErrSessionRequired  = fmt.Errorf("session id required")
	ErrEmptyQuery       = fmt.Errorf("search query is empty")
	ErrInvalidRequest   = fmt.Errorf("invalid request")
)

// GenerationError reports a generation call that failed mid-stream.
// Text already relayed for the agent stays valid.
type GenerationError struct {
	Agent string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for %s: %v", e.Agent, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// MapToHTTPStatus converts domain errors into HTTP status codes for
// failures that happen before the stream starts.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrPromptRequired),
		errors.Is(err, ErrSessionRequired),
		errors.Is(err, ErrUnknownMode),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrConfigMissing):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
