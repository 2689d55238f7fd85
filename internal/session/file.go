package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofrs/flock"

	"bidscout-engine/internal/domain"
)

const lockRetry = 50 * time.Millisecond

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._@-]+`)

// FileStore keeps one JSON file per (platform, user) under Dir. Writers and
// readers of the same file serialize on a sidecar lock file.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (f *FileStore) Path(userID string, platform domain.Platform) string {
	return filepath.Join(f.Dir, string(platform), unsafeName.ReplaceAllString(userID, "_")+".json")
}

func (f *FileStore) Save(ctx context.Context, s domain.SessionState) error {
	path := f.Path(s.UserID, s.Platform)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := Encode(s)
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if _, err := lock.TryLockContext(ctx, lockRetry); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (f *FileStore) Load(ctx context.Context, userID string, platform domain.Platform) (domain.SessionState, error) {
	path := f.Path(userID, platform)

	lock := flock.New(path + ".lock")
	if _, err := lock.TryRLockContext(ctx, lockRetry); err != nil {
		return domain.SessionState{}, fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.SessionState{}, ErrNotFound
	}
	if err != nil {
		return domain.SessionState{}, err
	}
	return Decode(b)
}
