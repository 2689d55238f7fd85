// Package reconcile decides which scraped records are new to storage.
package reconcile

import (
	"context"

	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
)

// LinkLookup answers, in one batched call, which of links are already stored
// for platform.
type LinkLookup interface {
	KnownLinks(ctx context.Context, platform domain.Platform, links []string) (map[string]struct{}, error)
}

type Result struct {
	New            []domain.JobRecord
	DuplicateCount int
}

// Reconcile splits scraped into records absent from storage and a duplicate
// count. Scrape order is preserved and nothing is written. A link repeated
// within scraped is kept once; later copies count as duplicates.
func Reconcile(ctx context.Context, lookup LinkLookup, platform domain.Platform, scraped []domain.JobRecord) (Result, error) {
	if len(scraped) == 0 {
		return Result{}, nil
	}

	links := make([]string, 0, len(scraped))
	for _, r := range scraped {
		links = append(links, r.Link)
	}
	known, err := lookup.KnownLinks(ctx, platform, links)
	if err != nil {
		return Result{}, apperrors.Storage("look up known links", err)
	}

	res := Result{New: make([]domain.JobRecord, 0, len(scraped))}
	seen := make(map[string]struct{}, len(scraped))
	for _, r := range scraped {
		if _, ok := known[r.Link]; ok {
			res.DuplicateCount++
			continue
		}
		if _, ok := seen[r.Link]; ok {
			res.DuplicateCount++
			continue
		}
		seen[r.Link] = struct{}{}
		res.New = append(res.New, r)
	}
	return res, nil
}

// MapLookup is an in-memory LinkLookup keyed by platform.
type MapLookup map[domain.Platform]map[string]struct{}

func (m MapLookup) KnownLinks(_ context.Context, platform domain.Platform, links []string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	for _, l := range links {
		if _, ok := m[platform][l]; ok {
			out[l] = struct{}{}
		}
	}
	return out, nil
}

func (m MapLookup) Add(platform domain.Platform, links ...string) {
	if m[platform] == nil {
		m[platform] = map[string]struct{}{}
	}
	for _, l := range links {
		m[platform][l] = struct{}{}
	}
}
