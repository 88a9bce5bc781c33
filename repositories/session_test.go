package repositories

import (
	"boardroom/domain"
	"boardroom/errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func transcript(sessionID string, at time.Time) []domain.SessionMessage {
	return []domain.SessionMessage{
		{ID: uuid.New(), SessionID: sessionID, IsUser: true, Content: "Should we open a Tokyo office?", At: at},
		{ID: uuid.New(), SessionID: sessionID, Agent: "CEO", Content: "Strategy first.", At: at.Add(time.Second)},
		{ID: uuid.New(), SessionID: sessionID, Agent: "COO", Content: "PLAN_READY: go", At: at.Add(2 * time.Second)},
	}
}

func TestSessionRepository_AppendAndList(t *testing.T) {
	req := require.New(t)
	repository := NewSessionRepository(openTestDB(t), slog.Default(), nil)
	at := time.Now().UTC()
	messages := transcript("alice", at)

	// Given messages stored out of order
	for _, i := range []int{2, 0, 1} {
		req.NoError(repository.Append(messages[i]))
	}

	// When
	fetched, err := repository.List("alice")

	// Then they come back oldest first
	req.NoError(err)
	req.Equal(messages, fetched)
}

func TestSessionRepository_LimitKeepsMostRecent(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := NewSessionRepository(openTestDB(t), slog.Default(), &limit)
	messages := transcript("alice", time.Now().UTC())
	for _, m := range messages {
		req.NoError(repository.Append(m))
	}

	fetched, err := repository.List("alice")

	req.NoError(err)
	req.Equal(messages[1:], fetched)
}

func TestSessionRepository_SessionsAreIsolated(t *testing.T) {
	req := require.New(t)
	repository := NewSessionRepository(openTestDB(t), slog.Default(), nil)
	at := time.Now().UTC()
	for _, m := range transcript("team", at) {
		req.NoError(repository.Append(m))
	}
	for _, m := range transcript("team:b", at) {
		req.NoError(repository.Append(m))
	}

	// When clearing one session
	req.NoError(repository.Clear("team"))

	// Then the other one, even sharing a prefix, is untouched
	cleared, err := repository.List("team")
	req.NoError(err)
	req.Empty(cleared)
	kept, err := repository.List("team:b")
	req.NoError(err)
	req.Len(kept, 3)
}

func TestSessionRepository_UnknownSessionIsEmpty(t *testing.T) {
	req := require.New(t)
	repository := NewSessionRepository(openTestDB(t), slog.Default(), nil)

	fetched, err := repository.List("nobody")

	req.NoError(err)
	req.Empty(fetched)
}

func TestSessionRepository_RequiresSessionID(t *testing.T) {
	req := require.New(t)
	repository := NewSessionRepository(openTestDB(t), slog.Default(), nil)

	req.ErrorIs(repository.Append(domain.SessionMessage{ID: uuid.New()}), errors.ErrSessionRequired)
	_, err := repository.List("")
	req.ErrorIs(err, errors.ErrSessionRequired)
	req.ErrorIs(repository.Clear(""), errors.ErrSessionRequired)
}

func TestSessionRepository_FillsMissingIDAndTimestamp(t *testing.T) {
	req := require.New(t)
	repository := NewSessionRepository(openTestDB(t), slog.Default(), nil)

	// Given two messages without id nor timestamp
	req.NoError(repository.Append(domain.SessionMessage{SessionID: "bob", IsUser: true, Content: "first"}))
	req.NoError(repository.Append(domain.SessionMessage{SessionID: "bob", Agent: "CEO", Content: "second"}))

	messages, err := repository.List("bob")

	// Then both are kept with their own id
	req.NoError(err)
	req.Len(messages, 2)
	req.NotEqual(uuid.Nil, messages[0].ID)
	req.NotEqual(messages[0].ID, messages[1].ID)
	req.False(messages[0].At.IsZero())
}

func TestSessionRepository_Sessions(t *testing.T) {
	req := require.New(t)
	repository := NewSessionRepository(openTestDB(t), slog.Default(), nil)
	at := time.Now().UTC()
	for _, m := range append(transcript("team:a b", at), transcript("carol", at)[:1]...) {
		req.NoError(repository.Append(m))
	}

	counts, err := repository.Sessions()

	req.NoError(err)
	req.Equal(map[string]int{"team:a b": 3, "carol": 1}, counts)
}
