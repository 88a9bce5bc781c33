package services

import (
	"boardroom/domain"
	"boardroom/errors"
	"boardroom/mocks"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSessionService_History(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	service := NewSessionService(slog.Default(), store)

	// Given a known and an unknown session
	store.EXPECT().List("team").Return([]domain.SessionMessage{{SessionID: "team", Content: "hi", IsUser: true}}, nil)
	store.EXPECT().List("nobody").Return(nil, nil)

	messages, err := service.History(" team ")
	req.NoError(err)
	req.Len(messages, 1)

	// Then an unknown session is empty, not missing
	messages, err = service.History("nobody")
	req.NoError(err)
	req.NotNil(messages)
	req.Empty(messages)
}

func TestSessionService_RequiresSessionID(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service := NewSessionService(slog.Default(), mocks.NewMockSessionStore(ctrl))

	_, err := service.History("  ")
	req.ErrorIs(err, errors.ErrSessionRequired)
	req.ErrorIs(service.Clear(""), errors.ErrSessionRequired)
}

func TestSessionService_Clear(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	store.EXPECT().Clear("team").Return(nil)

	req.NoError(NewSessionService(slog.Default(), store).Clear("team"))
}
