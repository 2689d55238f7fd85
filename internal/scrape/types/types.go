package types

import (
	"bidscout-engine/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// Platform is what a marketplace must provide to be scraped. New platforms
// are added by implementing it.
type Platform interface {
	Name() domain.Platform
	ListingURL() string
	// CardSelector matches one element per job posting on the listing page.
	CardSelector() string
	// ExpandSelector matches "view more" toggles to click before extraction;
	// "" when the platform does not truncate.
	ExpandSelector() string
	ExtractCard(card *goquery.Selection) (domain.JobRecord, error)
}
