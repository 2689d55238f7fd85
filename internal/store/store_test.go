package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidscout-engine/internal/domain"
	"bidscout-engine/internal/store"
)

func openDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndKnownLinks(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	jobs := []domain.JobRecord{
		{Title: "a", Platform: domain.Workana, Link: "https://www.workana.com/job/a", Skills: []string{"Go"}},
		{Title: "b", Platform: domain.Workana, Link: "https://www.workana.com/job/b"},
		{Title: "c", Platform: domain.Upwork, Link: "https://www.workana.com/job/a"},
	}
	added, err := db.InsertJobs(ctx, jobs)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	// second insert of the same records is a no-op
	added, err = db.InsertJobs(ctx, jobs)
	require.NoError(t, err)
	assert.Zero(t, added)

	known, err := db.KnownLinks(ctx, domain.Workana, []string{
		"https://www.workana.com/job/a",
		"https://www.workana.com/job/z",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"https://www.workana.com/job/a": {}}, known)

	// identity is (platform, link)
	known, err = db.KnownLinks(ctx, domain.Upwork, []string{"https://www.workana.com/job/a", "https://www.workana.com/job/b"})
	require.NoError(t, err)
	assert.Len(t, known, 1)
}

func TestKnownLinks_SpansChunks(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	var jobs []domain.JobRecord
	var links []string
	for i := 0; i < 1000; i++ {
		l := fmt.Sprintf("https://www.upwork.com/jobs/~%04d", i)
		links = append(links, l)
		if i%2 == 0 {
			jobs = append(jobs, domain.JobRecord{Title: "t", Platform: domain.Upwork, Link: l})
		}
	}
	_, err := db.InsertJobs(ctx, jobs)
	require.NoError(t, err)

	known, err := db.KnownLinks(ctx, domain.Upwork, links)
	require.NoError(t, err)
	assert.Len(t, known, 500)
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	_, err := db.LoadSession(ctx, "u1", domain.Upwork)
	assert.ErrorIs(t, err, store.ErrNoSession)

	now := time.Now().UTC().Truncate(time.Second)
	s := domain.SessionState{
		UserID:    "u1",
		Platform:  domain.Upwork,
		Storage:   domain.StorageState{Cookies: []domain.Cookie{{Name: "sid", Value: "1"}}},
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	require.NoError(t, db.SaveSession(ctx, s))

	s.Storage.Cookies[0].Value = "2"
	require.NoError(t, db.SaveSession(ctx, s))

	got, err := db.LoadSession(ctx, "u1", domain.Upwork)
	require.NoError(t, err)
	assert.Equal(t, "2", got.Storage.Cookies[0].Value)
	assert.True(t, got.ExpiresAt.Equal(s.ExpiresAt))
	assert.True(t, got.Valid())
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openDB(t)
	require.NoError(t, store.Migrate(db.Pool))
}
