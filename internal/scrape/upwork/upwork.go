package upwork

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bidscout-engine/internal/domain"
	"bidscout-engine/internal/scrape/util"
)

const BaseURL = "https://www.upwork.com"

const DefaultListingURL = BaseURL + "/nx/search/jobs/?category2_uid=531770282580668418&sort=recency"

var descriptionNoise = []string{"more", "less"}

type Platform struct {
	listingURL string
}

func New(listingURL string) *Platform {
	if strings.TrimSpace(listingURL) == "" {
		listingURL = DefaultListingURL
	}
	return &Platform{listingURL: listingURL}
}

func (p *Platform) Name() domain.Platform { return domain.Upwork }
func (p *Platform) ListingURL() string    { return p.listingURL }
func (p *Platform) CardSelector() string  { return `article[data-test="JobTile"]` }
func (p *Platform) ExpandSelector() string {
	return `article[data-test="JobTile"] [data-test*="JobDescription"] button`
}

func (p *Platform) ExtractCard(card *goquery.Selection) (domain.JobRecord, error) {
	titleSel := []string{`[data-test="job-tile-title-link"]`, "h2.job-tile-title a", "h2 a"}
	title := util.FirstText(card, titleSel...)
	href := util.FirstAttr(card, "href", titleSel...)
	if title == "" {
		return domain.JobRecord{}, errors.New("tile has no title")
	}
	if href == "" {
		return domain.JobRecord{}, errors.New("tile has no link")
	}

	desc := util.FirstText(card, `[data-test*="JobDescription"] p`, `[data-test*="JobDescription"]`)
	desc = trimToggle(desc)

	return domain.JobRecord{
		Title:       title,
		Description: desc,
		Price:       price(card),
		Platform:    domain.Upwork,
		Link:        util.Absolute(BaseURL, href),
		Skills:      util.Dedupe(util.AllText(card, `[data-test="token"] span, .air3-token`)),
		Client:      client(card),
		Posted: util.FirstText(card,
			`[data-test="job-pubilshed-date"] span:last-child`,
			`[data-test="job-published-date"] span:last-child`,
			`[data-test="job-pubilshed-date"]`,
			`[data-test="job-published-date"]`),
	}, nil
}

// trimToggle drops a trailing "more"/"less" button label left in the text.
func trimToggle(s string) string {
	for _, w := range descriptionNoise {
		if strings.HasSuffix(strings.ToLower(s), " "+w) {
			s = strings.TrimSpace(s[:len(s)-len(w)])
		}
	}
	return s
}

func price(card *goquery.Selection) string {
	jobType := util.FirstText(card, `[data-test="job-type-label"]`)
	budget := util.FirstText(card, `[data-test="is-fixed-price"] strong:last-child`, `[data-test="budget"]`)
	switch {
	case jobType != "" && budget != "":
		return jobType + " - " + budget
	case jobType != "":
		return jobType
	default:
		return budget
	}
}

func client(card *goquery.Selection) string {
	var parts []string
	if v := util.FirstText(card, `[data-test="payment-verified"]`, `[data-test="payment-verification-status"]`); v != "" {
		parts = append(parts, v)
	}
	if v := util.FirstText(card, `[data-test="total-spent"] strong`, `[data-test="total-spent"]`); v != "" {
		parts = append(parts, v+" spent")
	}
	if v := util.FirstText(card, `[data-test="location"] span:last-child`, `[data-test="client-country"]`); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, " · ")
}
