package util_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidscout-engine/internal/scrape/util"
)

func TestStripQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.workana.com/job/landing-page?ref=projects_1#x", "https://www.workana.com/job/landing-page"},
		{"  HTTPS://WWW.Upwork.com/jobs/~01abc?source=rss  ", "https://www.upwork.com/jobs/~01abc"},
		{"https://www.workana.com/job/plain", "https://www.workana.com/job/plain"},
		{"https://www.workana.com/job/empty?", "https://www.workana.com/job/empty"},
		{"", ""},
	}
	for _, tt := range tests {
		got := util.StripQuery(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, util.StripQuery(got), "idempotent for %q", tt.in)
		assert.NotContains(t, got, "?")
	}
}

func TestAbsolute(t *testing.T) {
	assert.Equal(t, "https://www.upwork.com/jobs/~01", util.Absolute("https://www.upwork.com/nx/search/jobs/", "/jobs/~01"))
	assert.Equal(t, "https://other.example/x", util.Absolute("https://www.upwork.com", "https://other.example/x"))
	assert.Equal(t, "", util.Absolute("https://www.upwork.com", "  "))
}

func TestStripBoilerplate(t *testing.T) {
	in := "Need a  landing page.\n Ver más  Category: IT & Programming Subcategory: Web"
	got := util.StripBoilerplate(in, []string{"Ver más"}, []string{"Category:"})
	assert.Equal(t, "Need a landing page.", got)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"Go", "React"}, util.Dedupe([]string{" Go", "go", "", "React "}))
}

func TestHostLimiter_NilAndZeroRateNeverBlock(t *testing.T) {
	var nilLimiter *util.HostLimiter
	require.NoError(t, nilLimiter.WaitURL(context.Background(), "https://a"))

	hl := util.NewHostLimiter(0, 1)
	for i := 0; i < 5; i++ {
		require.NoError(t, hl.WaitURL(context.Background(), "https://a"))
	}
}

func TestHostLimiter_PacesPerHost(t *testing.T) {
	hl := util.NewHostLimiter(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, hl.WaitURL(ctx, "https://www.workana.com/jobs"))
	require.NoError(t, hl.WaitURL(ctx, "https://www.upwork.com/jobs"), "other host has its own bucket")
	assert.Error(t, hl.WaitURL(ctx, "https://www.workana.com/login"), "second hit on same host exceeds the deadline")
}
