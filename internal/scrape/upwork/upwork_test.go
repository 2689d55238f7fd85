package upwork_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidscout-engine/internal/domain"
	"bidscout-engine/internal/scrape"
	"bidscout-engine/internal/scrape/upwork"
)

func TestExtractListing(t *testing.T) {
	html, err := os.ReadFile("testdata/listing.html")
	require.NoError(t, err)

	records, failed := scrape.ExtractAll(string(html), upwork.New(""), nil)
	assert.Equal(t, 1, failed)
	require.Len(t, records, 9)

	first := records[0]
	assert.Equal(t, "Build API 1", first.Title)
	assert.Equal(t, "https://www.upwork.com/jobs/Build-API_~01abc1/", first.Link)
	assert.Equal(t, domain.Upwork, first.Platform)
	assert.Equal(t, "Fixed price - $100", first.Price)
	assert.Equal(t, "Backend work for project 1", first.Description)
	assert.Equal(t, []string{"Go", "REST API"}, first.Skills)
	assert.Equal(t, "Payment verified · $10K+ spent · United States", first.Client)
	assert.Equal(t, "1 hours ago", first.Posted)
}
