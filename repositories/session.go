package repositories

import (
	"boardroom/domain"
	"boardroom/errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const sessionKeyPrefix = "session:"

// SessionRepository keeps client transcripts in BadgerDB.
// A session exists from its first Append until Clear; nothing expires it.
type SessionRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewSessionRepository(db *badger.DB, log *slog.Logger, limitMessages *int) SessionRepository {
	return SessionRepository{db: db, log: log, limitMessages: limitMessages}
}

// Append persists a message under "session:{id}:{timestamp_padded}:{uuid}".
// The 19-digit padding keeps keys in chronological order and the uuid
// separates messages stored in the same nanosecond.
// A missing id or timestamp is filled in.
func (r SessionRepository) Append(message domain.SessionMessage) error {
	if message.SessionID == "" {
		return errors.ErrSessionRequired
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.At.IsZero() {
		message.At = time.Now().UTC()
	}
	key := fmt.Sprintf("%s%019d:%s",
		sessionPrefix(message.SessionID),
		message.At.UnixNano(),
		message.ID,
	)
	bytes, err := msgpack.Marshal(message)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// List returns the session transcript oldest first.
// With a limit, only the most recent messages are kept.
func (r SessionRepository) List(sessionID string) ([]domain.SessionMessage, error) {
	if sessionID == "" {
		return nil, errors.ErrSessionRequired
	}
	var messages []domain.SessionMessage
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(sessionPrefix(sessionID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		// Newest first, so the limit keeps the latest messages
		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if r.limitMessages != nil && len(messages) == *r.limitMessages {
				r.log.Debug(fmt.Sprintf("Maximum of %d message reached", *r.limitMessages))
				break
			}
			var message domain.SessionMessage
			err := it.Item().Value(func(value []byte) error {
				return msgpack.Unmarshal(value, &message)
			})
			if err != nil {
				return err
			}
			message.At = message.At.UTC()
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

func (r SessionRepository) Clear(sessionID string) error {
	if sessionID == "" {
		return errors.ErrSessionRequired
	}
	return r.db.DropPrefix([]byte(sessionPrefix(sessionID)))
}

// Sessions counts the stored messages of every session.
func (r SessionRepository) Sessions() (map[string]int, error) {
	counts := make(map[string]int)
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = []byte(sessionKeyPrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			rest := strings.TrimPrefix(string(it.Item().Key()), sessionKeyPrefix)
			escaped, _, found := strings.Cut(rest, ":")
			if !found {
				continue
			}
			id, err := url.QueryUnescape(escaped)
			if err != nil {
				r.log.Warn("Skipping malformed session key", "key", string(it.Item().Key()))
				continue
			}
			counts[id]++
		}
		return nil
	})
	return counts, err
}

// sessionPrefix escapes the id so one session can never be a prefix of another.
func sessionPrefix(sessionID string) string {
	return sessionKeyPrefix + url.QueryEscape(sessionID) + ":"
}
