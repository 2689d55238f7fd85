// Package session encodes, parses and persists authenticated browser sessions.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
)

// wire accepts both a full session document and a bare storage state
// ({"cookies":[...],"origins":[...]}) with an optional "expiry".
type wire struct {
	domain.SessionState
	Cookies []domain.Cookie        `json:"cookies"`
	Origins []domain.OriginStorage `json:"origins"`
	Expiry  *time.Time             `json:"expiry"`
}

func Encode(s domain.SessionState) ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses a session document. A document without an expiry decodes to
// a session that is already expired.
func Decode(b []byte) (domain.SessionState, error) {
	var w wire
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&w); err != nil {
		return domain.SessionState{}, apperrors.InvalidSession("session payload is not valid JSON", err)
	}
	s := w.SessionState
	if s.Storage.Empty() && (len(w.Cookies) > 0 || len(w.Origins) > 0) {
		s.Storage = domain.StorageState{Cookies: w.Cookies, Origins: w.Origins}
	}
	if s.ExpiresAt.IsZero() && w.Expiry != nil {
		s.ExpiresAt = *w.Expiry
	}
	return s, nil
}

// ParseArg accepts either a path to a session file or the inline JSON itself.
func ParseArg(arg string) (domain.SessionState, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return domain.SessionState{}, apperrors.InvalidSession("no session supplied", nil)
	}
	if strings.HasPrefix(arg, "{") {
		return Decode([]byte(arg))
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		return domain.SessionState{}, apperrors.InvalidSession(fmt.Sprintf("read session file %s", arg), err)
	}
	return Decode(b)
}

// New builds the session captured by a successful login.
func New(userID string, platform domain.Platform, storage domain.StorageState, ttl time.Duration) domain.SessionState {
	now := time.Now().UTC()
	return domain.SessionState{
		UserID:    userID,
		Platform:  platform,
		Storage:   storage,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
