package session

import (
	"context"
	"errors"

	"bidscout-engine/internal/domain"
	"bidscout-engine/internal/store"
)

var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by (userID, platform).
type Store interface {
	Save(ctx context.Context, s domain.SessionState) error
	Load(ctx context.Context, userID string, platform domain.Platform) (domain.SessionState, error)
}

type SQLiteStore struct {
	db *store.DB
}

func NewSQLiteStore(db *store.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Save(ctx context.Context, st domain.SessionState) error {
	return s.db.SaveSession(ctx, st)
}

func (s *SQLiteStore) Load(ctx context.Context, userID string, platform domain.Platform) (domain.SessionState, error) {
	st, err := s.db.LoadSession(ctx, userID, platform)
	if errors.Is(err, store.ErrNoSession) {
		return domain.SessionState{}, ErrNotFound
	}
	return st, err
}
