// Package proposal replays a stored session to send proposal text for one job.
package proposal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"bidscout-engine/internal/browser"
	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/scrape/util"
)

type Options struct {
	// Timeout bounds the wait for the message field.
	Timeout time.Duration
	// Now is the clock used for session validity.
	Now func() time.Time
}

type Flow struct {
	driver *browser.Driver
	opts   Options
	log    *zap.Logger
}

func New(driver *browser.Driver, opts Options, log *zap.Logger) *Flow {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{driver: driver, opts: opts, log: log.Named("proposal")}
}

// Send submits text against jobLink. It never returns an error: every failure
// is folded into the result.
func (f *Flow) Send(ctx context.Context, spec Spec, sess domain.SessionState, text, jobLink string) (res domain.SubmissionResult) {
	start := time.Now()
	res = domain.SubmissionResult{Platform: spec.Platform, JobLink: jobLink}
	defer func() {
		if r := recover(); r != nil {
			res = failed(res, apperrors.Internal("proposal flow panicked", fmt.Errorf("%v", r)))
		}
		res.Duration = time.Since(start)
	}()

	if !sess.ValidAt(f.opts.Now()) {
		return failed(res, apperrors.InvalidSession("session is expired or empty; log in again", nil))
	}
	if sess.Platform != "" && sess.Platform != spec.Platform {
		return failed(res, apperrors.InvalidSession(fmt.Sprintf("session belongs to %s, not %s", sess.Platform, spec.Platform), nil))
	}
	if strings.TrimSpace(text) == "" {
		return failed(res, apperrors.InvalidInput("proposal text is empty", nil))
	}
	bidURL, err := spec.BidURL(jobLink)
	if err != nil {
		return failed(res, apperrors.InvalidInput("derive bid url", err))
	}

	log := f.log.With(zap.String("platform", string(spec.Platform)), zap.String("job", jobLink))

	page, err := f.driver.Launch(ctx, &sess.Storage)
	if err != nil {
		return failed(res, err)
	}
	defer f.driver.Close(page)

	if err := f.driver.Navigate(ctx, page, jobLink); err != nil {
		return failed(res, err)
	}
	f.driver.SimulateHumanBehavior(ctx, page)
	res.Counterpart = f.counterpart(ctx, page, spec, log)

	if err := f.driver.Navigate(ctx, page, bidURL); err != nil {
		return failed(res, err)
	}
	if loc, err := page.Location(ctx); err == nil && spec.LoginRedirect != nil && spec.LoginRedirect.MatchString(loc) {
		return failed(res, apperrors.InvalidSession("platform rejected the stored session", nil))
	}

	if err := f.driver.WaitVisible(ctx, page, spec.MessageSelector, f.opts.Timeout); err != nil {
		f.driver.Screenshot(ctx, page, string(spec.Platform)+"-proposal")
		return failed(res, err)
	}
	if err := f.driver.TypeHuman(ctx, page, spec.MessageSelector, text); err != nil {
		f.driver.Screenshot(ctx, page, string(spec.Platform)+"-proposal")
		return failed(res, apperrors.Navigation("fill proposal text", err))
	}
	if err := f.driver.Click(ctx, page, spec.SubmitSelector, f.opts.Timeout); err != nil {
		f.driver.Screenshot(ctx, page, string(spec.Platform)+"-proposal")
		return failed(res, err)
	}

	log.Info("proposal sent", zap.String("counterpart", res.Counterpart))
	res.Success = true
	res.Message = "Proposal sent"
	return res
}

// counterpart reads the client's display name from the job page; "" when
// the page doesn't show one.
func (f *Flow) counterpart(ctx context.Context, page browser.Page, spec Spec, log *zap.Logger) string {
	html, err := page.HTML(ctx)
	if err != nil {
		log.Debug("read job page", zap.Error(err))
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return util.FirstText(doc.Selection, spec.CounterpartSelectors...)
}

func failed(res domain.SubmissionResult, err error) domain.SubmissionResult {
	res.Success = false
	res.ErrorKind = string(apperrors.TypeOf(err))
	res.Error = err.Error()
	return res
}
