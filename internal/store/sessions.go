package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bidscout-engine/internal/domain"
)

var ErrNoSession = errors.New("no stored session")

// SaveSession replaces the session stored for (UserID, Platform).
func (d *DB) SaveSession(ctx context.Context, s domain.SessionState) error {
	payload, err := json.Marshal(s.Storage)
	if err != nil {
		return fmt.Errorf("encode session payload: %w", err)
	}
	_, err = d.Pool.ExecContext(ctx, `
INSERT INTO sessions(user_id, platform, payload, created_at, expires_at)
VALUES(?,?,?,?,?)
ON CONFLICT(user_id, platform) DO UPDATE SET
  payload = excluded.payload,
  created_at = excluded.created_at,
  expires_at = excluded.expires_at;`,
		s.UserID, string(s.Platform), string(payload),
		s.CreatedAt.UTC().Format(time.RFC3339Nano), s.ExpiresAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (d *DB) LoadSession(ctx context.Context, userID string, platform domain.Platform) (domain.SessionState, error) {
	var payload, created, expires string
	err := d.Pool.QueryRowContext(ctx, `
SELECT payload, created_at, expires_at FROM sessions WHERE user_id = ? AND platform = ?;`,
		userID, string(platform)).Scan(&payload, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionState{}, ErrNoSession
	}
	if err != nil {
		return domain.SessionState{}, err
	}

	s := domain.SessionState{UserID: userID, Platform: platform}
	if err := json.Unmarshal([]byte(payload), &s.Storage); err != nil {
		return domain.SessionState{}, fmt.Errorf("decode session payload: %w", err)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	s.ExpiresAt, err = time.Parse(time.RFC3339Nano, expires)
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("parse session expiry: %w", err)
	}
	return s, nil
}
