package proposal_test

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
	"bidscout-engine/internal/proposal"
)

const (
	jobLink = "https://www.workana.com/job/build-a-go-scraper"
	bidLink = "https://www.workana.com/messages/bid/build-a-go-scraper"
)

const jobPage = `<html><body>
<div class="project-author"><span class="user-name"> María G. </span></div>
<h1>Build a Go scraper</h1></body></html>`

const bidPage = `<html><body><form>
<textarea name="content"></textarea><button id="submitBid">Enviar</button>
</form></body></html>`

func validSession() domain.SessionState {
	now := time.Now()
	return domain.SessionState{
		UserID:    "u-1",
		Platform:  domain.Workana,
		Storage:   domain.StorageState{Cookies: []domain.Cookie{{Name: "sid", Value: "1"}}},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func fixture() *browsertest.Launcher {
	l := browsertest.NewLauncher()
	l.Pages[jobLink] = jobPage
	l.Pages[bidLink] = bidPage
	return l
}

func newFlow(l browser.Launcher) *proposal.Flow {
	d := browser.NewDriver(l, browser.Options{NavigationTimeout: time.Second}, nil)
	return proposal.New(d, proposal.Options{Timeout: 100 * time.Millisecond}, nil)
}

func workana(t *testing.T) proposal.Spec {
	t.Helper()
	spec, err := proposal.SpecFor(domain.Workana)
	require.NoError(t, err)
	return spec
}

func TestSend_Success(t *testing.T) {
	l := fixture()
	sess := validSession()

	res := newFlow(l).Send(context.Background(), workana(t), sess, "Hola, puedo ayudar.", jobLink)

	assert.True(t, res.Success, res.Error)
	assert.Equal(t, "María G.", res.Counterpart)
	assert.Equal(t, jobLink, res.JobLink)
	assert.Equal(t, domain.Workana, res.Platform)
	assert.Equal(t, []string{jobLink, bidLink}, l.Navigations())
	assert.Equal(t, "Hola, puedo ayudar.", l.Launched()[0].Typed(`textarea[name="content"]`))
	assert.Equal(t, &sess.Storage, l.Options()[0].Storage)
	assert.True(t, l.AllClosed())
}

func TestSend_ExpiredSessionNeverNavigates(t *testing.T) {
	l := fixture()
	sess := validSession()
	sess.ExpiresAt = time.Now().Add(-time.Second)

	res := newFlow(l).Send(context.Background(), workana(t), sess, "text", jobLink)

	assert.False(t, res.Success)
	assert.Equal(t, string(apperrors.ErrTypeInvalidSession), res.ErrorKind)
	assert.Empty(t, l.Navigations())
	assert.Empty(t, l.Launched())
}

func TestSend_EmptySessionRejected(t *testing.T) {
	l := fixture()
	sess := validSession()
	sess.Storage = domain.StorageState{}

	res := newFlow(l).Send(context.Background(), workana(t), sess, "text", jobLink)
	assert.Equal(t, string(apperrors.ErrTypeInvalidSession), res.ErrorKind)
	assert.Empty(t, l.Launched())
}

func TestSend_FillFailureClosesBrowser(t *testing.T) {
	l := fixture()
	l.Fail[`keys:textarea[name="content"]`] = errors.New("element is detached")

	res := newFlow(l).Send(context.Background(), workana(t), validSession(), "text", jobLink)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "element is detached")
	require.Len(t, l.Launched(), 1)
	assert.True(t, l.Launched()[0].Closed())
}

func TestSend_MissingMessageFieldFails(t *testing.T) {
	l := fixture()
	l.Pages[bidLink] = "<html><body><p>You have reached your bid limit</p></body></html>"

	res := newFlow(l).Send(context.Background(), workana(t), validSession(), "text", jobLink)
	assert.False(t, res.Success)
	assert.Equal(t, string(apperrors.ErrTypeSelectorTimeout), res.ErrorKind)
	assert.True(t, l.AllClosed())
}

func TestSend_MissingSubmitButtonTimesOut(t *testing.T) {
	l := fixture()
	l.WaitForNodes = true
	l.Pages[bidLink] = `<html><body><form><textarea name="content"></textarea></form></body></html>`

	start := time.Now()
	res := newFlow(l).Send(context.Background(), workana(t), validSession(), "text", jobLink)

	assert.False(t, res.Success)
	assert.Equal(t, string(apperrors.ErrTypeSelectorTimeout), res.ErrorKind)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, l.AllClosed())
}

func TestSend_InputValidation(t *testing.T) {
	l := fixture()
	flow := newFlow(l)

	res := flow.Send(context.Background(), workana(t), validSession(), "  ", jobLink)
	assert.Equal(t, string(apperrors.ErrTypeInvalidInput), res.ErrorKind)

	res = flow.Send(context.Background(), workana(t), validSession(), "text", "https://www.upwork.com/jobs/~01")
	assert.Equal(t, string(apperrors.ErrTypeInvalidInput), res.ErrorKind)

	upwork, _ := proposal.SpecFor(domain.Upwork)
	res = flow.Send(context.Background(), upwork, validSession(), "text", "https://www.upwork.com/jobs/~01")
	assert.Equal(t, string(apperrors.ErrTypeInvalidSession), res.ErrorKind)

	assert.Empty(t, l.Launched())
}

func TestBidURL(t *testing.T) {
	w, _ := proposal.SpecFor(domain.Workana)
	u, err := w.BidURL("https://www.workana.com/job/some-project?ref=home")
	require.NoError(t, err)
	assert.Equal(t, "https://www.workana.com/messages/bid/some-project", u)

	up, _ := proposal.SpecFor(domain.Upwork)
	for _, link := range []string{
		"https://www.upwork.com/jobs/Build-API_~01abc123/",
		"https://www.upwork.com/jobs/~01abc123",
		"https://www.upwork.com/freelance-jobs/apply/Build-API_~01abc123/",
	} {
		u, err := up.BidURL(link)
		require.NoError(t, err, link)
		assert.Equal(t, "https://www.upwork.com/ab/proposals/job/~01abc123/apply/", u)
	}

	_, err = up.BidURL("https://www.upwork.com/nx/find-work")
	assert.Error(t, err)
	_, err = w.BidURL("https://www.workana.com/jobs")
	assert.Error(t, err)
}
