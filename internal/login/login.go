// Package login drives a platform's sign-in form and captures the resulting
// browser session.
package login

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"bidscout-engine/internal/browser"
	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/session"
)

const consentWait = 3 * time.Second

type Options struct {
	// Timeout bounds each field wait and the wait for the success URL.
	Timeout time.Duration
	// TTL is the fixed session lifetime; platforms don't expose one.
	TTL time.Duration
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
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{driver: driver, opts: opts, log: log.Named("login")}
}

// Login signs in with username/password and returns the captured session.
// Wrong credentials, changed markup and challenge pages all surface as an
// authentication error since the DOM can't tell them apart.
func (f *Flow) Login(ctx context.Context, spec Spec, userID, username, password string) (domain.SessionState, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return domain.SessionState{}, apperrors.InvalidInput("username and password are required", nil)
	}
	if userID == "" {
		userID = username
	}
	log := f.log.With(zap.String("platform", string(spec.Platform)), zap.String("user_id", userID))

	page, err := f.driver.Launch(ctx, nil)
	if err != nil {
		return domain.SessionState{}, err
	}
	defer f.driver.Close(page)

	if err := f.driver.Navigate(ctx, page, spec.LoginURL); err != nil {
		return domain.SessionState{}, err
	}

	f.dismissConsent(ctx, page, spec, log)

	if err := f.fill(ctx, page, spec.UsernameSelector, username); err != nil {
		return domain.SessionState{}, f.fail(ctx, page, spec, "username field", err)
	}
	if spec.ContinueSelector != "" {
		if err := f.driver.Click(ctx, page, spec.ContinueSelector, f.opts.Timeout); err != nil {
			return domain.SessionState{}, f.fail(ctx, page, spec, "continue button", err)
		}
	}
	if err := f.fill(ctx, page, spec.PasswordSelector, password); err != nil {
		return domain.SessionState{}, f.fail(ctx, page, spec, "password field", err)
	}
	if err := f.driver.Click(ctx, page, spec.SubmitSelector, f.opts.Timeout); err != nil {
		return domain.SessionState{}, f.fail(ctx, page, spec, "submit button", err)
	}

	landed, err := f.driver.WaitForURL(ctx, page, spec.Success, f.opts.Timeout)
	if err != nil {
		return domain.SessionState{}, f.fail(ctx, page, spec, "success redirect", err)
	}
	log.Info("login succeeded", zap.String("landed", landed))

	storage, err := page.StorageState(ctx)
	if err != nil {
		return domain.SessionState{}, apperrors.Internal("capture session state", err)
	}
	if storage.Empty() {
		return domain.SessionState{}, apperrors.Authentication("login produced no cookies", nil)
	}
	return session.New(userID, spec.Platform, storage, f.opts.TTL), nil
}

func (f *Flow) dismissConsent(ctx context.Context, page browser.Page, spec Spec, log *zap.Logger) {
	if spec.ConsentSelector == "" {
		return
	}
	if err := page.WaitVisible(ctx, spec.ConsentSelector, consentWait); err != nil {
		log.Debug("no cookie banner", zap.Error(err))
		return
	}
	if err := f.driver.Click(ctx, page, spec.ConsentSelector, consentWait); err != nil {
		log.Debug("cookie banner click failed", zap.Error(err))
	}
}

func (f *Flow) fill(ctx context.Context, page browser.Page, selector, text string) error {
	if err := f.driver.WaitVisible(ctx, page, selector, f.opts.Timeout); err != nil {
		return err
	}
	return f.driver.TypeHuman(ctx, page, selector, text)
}

// fail converts a step failure into an authentication error, keeping
// navigation and cancellation errors as they are.
func (f *Flow) fail(ctx context.Context, page browser.Page, spec Spec, step string, err error) error {
	f.driver.Screenshot(ctx, page, string(spec.Platform)+"-login")
	if apperrors.Is(err, apperrors.ErrTypeNavigation) || ctx.Err() != nil {
		return err
	}
	return apperrors.Authentication("login failed at "+step, err)
}
