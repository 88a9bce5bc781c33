package services

import (
	"boardroom/contract"
	"boardroom/domain"
	"boardroom/errors"
	"log/slog"
	"strings"
)

type ISessionService interface {
	History(sessionID string) ([]domain.SessionMessage, error)
	Clear(sessionID string) error
}

type SessionService struct {
	log   *slog.Logger
	store contract.SessionStore
}

func NewSessionService(log *slog.Logger, store contract.SessionStore) *SessionService {
	return &SessionService{log: log, store: store}
}

// History returns the session transcript, oldest first.
// An unknown session has an empty history.
func (s *SessionService) History(sessionID string) ([]domain.SessionMessage, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, errors.ErrSessionRequired
	}
	messages, err := s.store.List(id)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.SessionMessage{}
	}
	return messages, nil
}

func (s *SessionService) Clear(sessionID string) error {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return errors.ErrSessionRequired
	}
	if err := s.store.Clear(id); err != nil {
		return err
	}
	s.log.Info("Session cleared", "session_id", id)
	return nil
}
