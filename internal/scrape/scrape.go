package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bidscout-engine/internal/browser"
	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/scrape/types"
	"bidscout-engine/internal/scrape/util"
)

type Options struct {
	// CardWait bounds how long to wait for the first job card.
	CardWait time.Duration
	// ExpandSettle is the pause after clicking "view more" toggles.
	ExpandSettle time.Duration
	// Storage, when set, seeds the browser with an authenticated session.
	Storage *domain.StorageState
}

type Scraper struct {
	driver   *browser.Driver
	platform types.Platform
	log      *zap.Logger
}

func New(driver *browser.Driver, platform types.Platform, log *zap.Logger) *Scraper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scraper{
		driver:   driver,
		platform: platform,
		log:      log.Named("scrape").With(zap.String("platform", string(platform.Name()))),
	}
}

// Execute opens the listing page and extracts every job card on it. A page
// that never shows a card yields an empty run, not an error.
func (s *Scraper) Execute(ctx context.Context, opts Options) (domain.ScrapeRun, error) {
	run := domain.ScrapeRun{
		ID:        uuid.NewString(),
		Platform:  s.platform.Name(),
		StartedAt: time.Now().UTC(),
	}
	finish := func() { run.Duration = time.Since(run.StartedAt) }

	page, err := s.driver.Launch(ctx, opts.Storage)
	if err != nil {
		finish()
		return run, err
	}
	defer s.driver.Close(page)

	if err := s.driver.Navigate(ctx, page, s.platform.ListingURL()); err != nil {
		s.driver.Screenshot(ctx, page, string(s.platform.Name())+"-navigate")
		finish()
		return run, err
	}

	s.driver.SimulateHumanBehavior(ctx, page)

	if err := s.driver.WaitVisible(ctx, page, s.platform.CardSelector(), opts.CardWait); err != nil {
		finish()
		if apperrors.Is(err, apperrors.ErrTypeSelectorTimeout) {
			s.log.Warn("no job cards appeared", zap.Duration("waited", opts.CardWait))
			s.driver.Screenshot(ctx, page, string(s.platform.Name())+"-empty")
			return run, nil
		}
		return run, err
	}

	if sel := s.platform.ExpandSelector(); sel != "" {
		n, err := page.ClickAll(ctx, sel)
		if err != nil {
			s.log.Debug("expand toggles failed", zap.Error(err))
		}
		if n > 0 && opts.ExpandSettle > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.ExpandSettle):
			}
		}
	}

	html, err := page.HTML(ctx)
	if err != nil {
		finish()
		return run, apperrors.Navigation("read listing page", err)
	}

	run.Records, run.ParseErrors = ExtractAll(html, s.platform, s.log)
	finish()
	s.log.Info("scraped listing",
		zap.Int("records", len(run.Records)),
		zap.Int("parse_errors", run.ParseErrors),
		zap.Duration("took", run.Duration))
	return run, nil
}

// ExtractAll runs the platform extractor over every card in html. A card that
// fails (or panics) is counted and skipped; it never aborts the others.
func ExtractAll(html string, p types.Platform, log *zap.Logger) ([]domain.JobRecord, int) {
	if log == nil {
		log = zap.NewNop()
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn("parse listing html", zap.Error(err))
		return nil, 0
	}

	var (
		out    []domain.JobRecord
		failed int
	)
	doc.Find(p.CardSelector()).Each(func(i int, card *goquery.Selection) {
		rec, err := extractOne(p, card)
		if err != nil {
			failed++
			log.Debug("skip card", zap.Int("index", i), zap.Error(err))
			return
		}
		out = append(out, rec)
	})
	return out, failed
}

func extractOne(p types.Platform, card *goquery.Selection) (rec domain.JobRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Parse("card extractor panicked", fmt.Errorf("%v", r))
		}
	}()
	rec, err = p.ExtractCard(card)
	if err != nil {
		return domain.JobRecord{}, apperrors.Parse("extract card", err)
	}
	return Normalize(rec, p.Name())
}

// Normalize trims every field, canonicalizes the link and stamps the platform.
func Normalize(rec domain.JobRecord, platform domain.Platform) (domain.JobRecord, error) {
	rec.Title = util.CleanText(rec.Title)
	rec.Description = util.CleanText(rec.Description)
	rec.Price = util.CleanText(rec.Price)
	rec.Client = util.CleanText(rec.Client)
	rec.Posted = util.CleanText(rec.Posted)
	rec.Link = util.StripQuery(strings.TrimSpace(rec.Link))
	rec.Skills = util.Dedupe(rec.Skills)
	rec.Platform = platform

	if rec.Link == "" {
		return domain.JobRecord{}, apperrors.Parse("record has no link", nil)
	}
	if rec.Title == "" {
		return domain.JobRecord{}, apperrors.Parse("record has no title", nil)
	}
	return rec, nil
}
