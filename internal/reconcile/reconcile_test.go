package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/reconcile"
)

func records(p domain.Platform, n int) []domain.JobRecord {
	out := make([]domain.JobRecord, n)
	for i := range out {
		out[i] = domain.JobRecord{Title: fmt.Sprintf("job %d", i), Platform: p, Link: fmt.Sprintf("https://www.workana.com/job/%d", i)}
	}
	return out
}

func TestReconcile_TenScrapedThreeKnown(t *testing.T) {
	scraped := records(domain.Workana, 10)
	lookup := reconcile.MapLookup{}
	lookup.Add(domain.Workana, scraped[1].Link, scraped[4].Link, scraped[8].Link)

	res, err := reconcile.Reconcile(context.Background(), lookup, domain.Workana, scraped)
	require.NoError(t, err)
	assert.Len(t, res.New, 7)
	assert.Equal(t, 3, res.DuplicateCount)
	assert.Equal(t, "https://www.workana.com/job/0", res.New[0].Link)
	assert.Equal(t, "https://www.workana.com/job/9", res.New[6].Link)
}

func TestReconcile_KnownLinksArePerPlatform(t *testing.T) {
	scraped := records(domain.Workana, 3)
	lookup := reconcile.MapLookup{}
	lookup.Add(domain.Upwork, scraped[0].Link)

	res, err := reconcile.Reconcile(context.Background(), lookup, domain.Workana, scraped)
	require.NoError(t, err)
	assert.Len(t, res.New, 3)
}

func TestReconcile_CollapsesRepeatsWithinRun(t *testing.T) {
	scraped := records(domain.Workana, 3)
	scraped = append(scraped, scraped[1])

	res, err := reconcile.Reconcile(context.Background(), reconcile.MapLookup{}, domain.Workana, scraped)
	require.NoError(t, err)
	assert.Len(t, res.New, 3)
	assert.Equal(t, 1, res.DuplicateCount)
}

func TestReconcile_Empty(t *testing.T) {
	res, err := reconcile.Reconcile(context.Background(), nil, domain.Upwork, nil)
	require.NoError(t, err)
	assert.Empty(t, res.New)
	assert.Zero(t, res.DuplicateCount)
}

type failingLookup struct{}

func (failingLookup) KnownLinks(context.Context, domain.Platform, []string) (map[string]struct{}, error) {
	return nil, errors.New("database is locked")
}

func TestReconcile_LookupFailureIsStorageError(t *testing.T) {
	_, err := reconcile.Reconcile(context.Background(), failingLookup{}, domain.Upwork, records(domain.Upwork, 2))
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
}

// Randomized check of the subset, count and ordering properties.
func TestReconcile_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 200; iter++ {
		n := r.IntN(30)
		scraped := make([]domain.JobRecord, n)
		for i := range scraped {
			// small link space so repeats and hits both happen
			scraped[i] = domain.JobRecord{Platform: domain.Upwork, Link: fmt.Sprintf("https://www.upwork.com/jobs/~%d", r.IntN(20))}
		}
		lookup := reconcile.MapLookup{}
		for i := 0; i < 20; i++ {
			if r.IntN(3) == 0 {
				lookup.Add(domain.Upwork, fmt.Sprintf("https://www.upwork.com/jobs/~%d", i))
			}
		}

		res, err := reconcile.Reconcile(context.Background(), lookup, domain.Upwork, scraped)
		require.NoError(t, err)
		assert.Equal(t, len(scraped), len(res.New)+res.DuplicateCount)

		again, err := reconcile.Reconcile(context.Background(), lookup, domain.Upwork, scraped)
		require.NoError(t, err)
		assert.Equal(t, res, again)

		// New must be an order-preserving subsequence of scraped with no stored link.
		j := 0
		for _, rec := range res.New {
			_, stored := lookup[domain.Upwork][rec.Link]
			assert.False(t, stored)
			for j < len(scraped) && scraped[j].Link != rec.Link {
				j++
			}
			require.Less(t, j, len(scraped), "new records out of scrape order")
			j++
		}
	}
}
