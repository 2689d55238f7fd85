package workana

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bidscout-engine/internal/domain"
	"bidscout-engine/internal/scrape/util"
)

const BaseURL = "https://www.workana.com"

const DefaultListingURL = BaseURL + "/jobs?category=it-programming&language=en%2Ces"

var (
	descriptionNoise  = []string{"Ver más detalles", "View more details", "Ver más", "View more", "Ver menos", "View less"}
	descriptionFooter = []string{"Categoría:", "Category:", "Subcategoría:", "Subcategory:", "¿Cuál es el alcance del proyecto?", "What is the scope of the project?"}
)

type Platform struct {
	listingURL string
}

func New(listingURL string) *Platform {
	if strings.TrimSpace(listingURL) == "" {
		listingURL = DefaultListingURL
	}
	return &Platform{listingURL: listingURL}
}

func (p *Platform) Name() domain.Platform { return domain.Workana }
func (p *Platform) ListingURL() string    { return p.listingURL }
func (p *Platform) CardSelector() string  { return "#projects .project-item" }
func (p *Platform) ExpandSelector() string {
	return "#projects .project-item .link-more, #projects .project-item a.show-more"
}

func (p *Platform) ExtractCard(card *goquery.Selection) (domain.JobRecord, error) {
	title := util.FirstText(card, ".project-title a", ".project-title", "h2 a", "h2")
	href := util.FirstAttr(card, "href", ".project-title a", "h2 a")
	if title == "" {
		return domain.JobRecord{}, errors.New("card has no title")
	}
	if href == "" {
		return domain.JobRecord{}, errors.New("card has no link")
	}

	desc := util.FirstText(card, ".html-desc", ".project-details", ".expander")
	desc = util.StripBoilerplate(desc, descriptionNoise, descriptionFooter)

	return domain.JobRecord{
		Title:       title,
		Description: desc,
		Price:       util.FirstText(card, ".budget .values", ".values", ".budget"),
		Platform:    domain.Workana,
		Link:        util.Absolute(BaseURL, href),
		Skills:      util.Dedupe(util.AllText(card, ".skills .skill")),
		Client:      util.FirstText(card, ".author-info .user-name", ".author-info", ".project-author"),
		Posted:      util.FirstText(card, ".date", "time"),
	}, nil
}
