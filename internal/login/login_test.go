package login_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidscout-engine/internal/browser"
	"bidscout-engine/internal/browser/browsertest"
	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/login"
)

const upworkLoginPage = `<html><body>
<div id="onetrust-banner"><button id="onetrust-accept-btn-handler">Accept</button></div>
<form>
  <input id="login_username"><button id="login_password_continue">Continue</button>
  <input id="login_password" type="password"><button id="login_control_continue">Log in</button>
</form></body></html>`

const workanaLoginPage = `<html><body><form>
  <input name="email"><input name="password" type="password"><button type="submit">Ingresar</button>
</form></body></html>`

func newFlow(l browser.Launcher, timeout time.Duration) *login.Flow {
	d := browser.NewDriver(l, browser.Options{NavigationTimeout: time.Second}, nil)
	return login.New(d, login.Options{Timeout: timeout, TTL: 24 * time.Hour}, nil)
}

func TestLogin_UpworkTwoStep(t *testing.T) {
	spec, err := login.SpecFor(domain.Upwork)
	require.NoError(t, err)

	l := browsertest.NewLauncher()
	l.Pages[spec.LoginURL] = upworkLoginPage
	l.Redirects[spec.SubmitSelector] = "https://www.upwork.com/nx/find-work/best-matches"

	s, err := newFlow(l, time.Second).Login(context.Background(), spec, "u-1", "me@example.com", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "u-1", s.UserID)
	assert.Equal(t, domain.Upwork, s.Platform)
	assert.False(t, s.Storage.Empty())
	assert.True(t, s.ExpiresAt.After(time.Now()))
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), s.ExpiresAt, time.Minute)

	pages := l.Launched()
	require.Len(t, pages, 1)
	assert.Equal(t, "me@example.com", pages[0].Typed(spec.UsernameSelector))
	assert.Equal(t, "s3cret", pages[0].Typed(spec.PasswordSelector))
	assert.Equal(t, []string{spec.ConsentSelector, spec.ContinueSelector, spec.SubmitSelector}, pages[0].Clicks())
	assert.True(t, l.AllClosed())
}

func TestLogin_WorkanaWithoutBanner(t *testing.T) {
	spec, err := login.SpecFor(domain.Workana)
	require.NoError(t, err)

	l := browsertest.NewLauncher()
	l.Pages[spec.LoginURL] = workanaLoginPage
	l.Redirects[spec.SubmitSelector] = "https://www.workana.com/dashboard"

	s, err := newFlow(l, time.Second).Login(context.Background(), spec, "", "me@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", s.UserID)
	assert.Equal(t, []string{spec.SubmitSelector}, l.Launched()[0].Clicks())
}

func TestLogin_NeverRedirectsIsAuthenticationError(t *testing.T) {
	spec, _ := login.SpecFor(domain.Workana)
	l := browsertest.NewLauncher()
	l.Pages[spec.LoginURL] = workanaLoginPage

	timeout := 300 * time.Millisecond
	start := time.Now()
	_, err := newFlow(l, timeout).Login(context.Background(), spec, "", "me@example.com", "wrong")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeAuthentication, apperrors.TypeOf(err))
	assert.Less(t, time.Since(start), timeout+2*time.Second)
	assert.True(t, l.AllClosed())
}

func TestLogin_MissingFieldIsAuthenticationError(t *testing.T) {
	spec, _ := login.SpecFor(domain.Workana)
	l := browsertest.NewLauncher()
	l.Pages[spec.LoginURL] = "<html><body><h1>Are you human?</h1></body></html>"

	_, err := newFlow(l, 50*time.Millisecond).Login(context.Background(), spec, "", "me@example.com", "pw")
	assert.Equal(t, apperrors.ErrTypeAuthentication, apperrors.TypeOf(err))
	assert.True(t, l.AllClosed())
}

func TestLogin_MissingSubmitButtonTimesOut(t *testing.T) {
	spec, _ := login.SpecFor(domain.Workana)
	l := browsertest.NewLauncher()
	l.WaitForNodes = true
	l.Pages[spec.LoginURL] = `<html><body><form>
  <input name="email"><input name="password" type="password"><a class="btn">Ingresar</a>
</form></body></html>`

	timeout := 200 * time.Millisecond
	start := time.Now()
	_, err := newFlow(l, timeout).Login(context.Background(), spec, "", "me@example.com", "pw")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeAuthentication, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), "submit button")
	assert.Less(t, time.Since(start), timeout+2*time.Second)
	assert.True(t, l.AllClosed())
}

func TestLogin_NavigationFailureKeepsType(t *testing.T) {
	spec, _ := login.SpecFor(domain.Upwork)
	l := browsertest.NewLauncher()
	l.Fail["navigate:"+spec.LoginURL] = errors.New("net::ERR_CONNECTION_RESET")

	_, err := newFlow(l, time.Second).Login(context.Background(), spec, "", "me@example.com", "pw")
	assert.Equal(t, apperrors.ErrTypeNavigation, apperrors.TypeOf(err))
	assert.True(t, l.AllClosed())
}

func TestLogin_NoCookiesIsAuthenticationError(t *testing.T) {
	spec, _ := login.SpecFor(domain.Workana)
	l := browsertest.NewLauncher()
	l.Pages[spec.LoginURL] = workanaLoginPage
	l.Redirects[spec.SubmitSelector] = "https://www.workana.com/dashboard"
	l.State = domain.StorageState{}

	_, err := newFlow(l, time.Second).Login(context.Background(), spec, "", "me@example.com", "pw")
	assert.Equal(t, apperrors.ErrTypeAuthentication, apperrors.TypeOf(err))
}

func TestLogin_RequiresCredentials(t *testing.T) {
	spec, _ := login.SpecFor(domain.Workana)
	l := browsertest.NewLauncher()

	_, err := newFlow(l, time.Second).Login(context.Background(), spec, "", " ", "pw")
	assert.Equal(t, apperrors.ErrTypeInvalidInput, apperrors.TypeOf(err))
	assert.Empty(t, l.Launched())
}

func TestSpecFor_Unknown(t *testing.T) {
	_, err := login.SpecFor("fiverr")
	assert.Error(t, err)
}

func TestSpecs_SuccessOnlyOnSignedInRoutes(t *testing.T) {
	w, _ := login.SpecFor(domain.Workana)
	assert.True(t, w.Success.MatchString("https://www.workana.com/dashboard"))
	assert.True(t, w.Success.MatchString("https://www.workana.com/inbox/123"))
	assert.False(t, w.Success.MatchString("https://www.workana.com/jobs?category=it-programming"))
	assert.False(t, w.Success.MatchString("https://www.workana.com/login"))

	u, _ := login.SpecFor(domain.Upwork)
	assert.True(t, u.Success.MatchString("https://www.upwork.com/nx/find-work/best-matches"))
	assert.True(t, u.Success.MatchString("https://www.upwork.com/nx/proposals/"))
	assert.False(t, u.Success.MatchString("https://www.upwork.com/nx/search/jobs/?q=go"))
	assert.False(t, u.Success.MatchString("https://www.upwork.com/ab/account-security/login"))
}
