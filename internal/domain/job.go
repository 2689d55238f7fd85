package domain

import (
	"fmt"
	"strings"
	"time"
)

type Platform string

const (
	Workana Platform = "workana"
	Upwork  Platform = "upwork"
)

var AllPlatforms = []Platform{Workana, Upwork}

func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case Workana:
		return Workana, nil
	case Upwork:
		return Upwork, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// JobRecord is one scraped posting. (Link, Platform) is its identity across runs.
type JobRecord struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Platform    Platform `json:"platform"`
	Link        string   `json:"link"`
	Skills      []string `json:"skills,omitempty"`
	Client      string   `json:"client,omitempty"`
	Posted      string   `json:"posted,omitempty"`
}

type RunStats struct {
	Total      int `json:"total"`
	Processed  int `json:"processed"`
	Errors     int `json:"errors"`
	New        int `json:"new"`
	Duplicates int `json:"duplicates"`
	// NotifyErrors counts new records whose notification was not confirmed.
	NotifyErrors int `json:"notifyErrors"`
}

// ScrapeRun holds the records one platform scraper produced in a single invocation.
type ScrapeRun struct {
	ID          string        `json:"id"`
	Platform    Platform      `json:"platform"`
	Records     []JobRecord   `json:"-"`
	ParseErrors int           `json:"parseErrors"`
	StartedAt   time.Time     `json:"startedAt"`
	Duration    time.Duration `json:"-"`
}
