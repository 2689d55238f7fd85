package proposal

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"bidscout-engine/internal/domain"
)

// Spec describes where and how a platform accepts a proposal.
type Spec struct {
	Platform domain.Platform
	// BidURL derives the messaging/bid page from a job link.
	BidURL func(jobLink string) (string, error)
	// CounterpartSelectors locate the client's display name on the job page.
	CounterpartSelectors []string
	MessageSelector      string
	SubmitSelector       string
	// LoginRedirect matches where the platform sends a rejected session.
	LoginRedirect *regexp.Regexp
}

var upworkJobID = regexp.MustCompile(`~([0-9A-Za-z]+)`)

var specs = map[domain.Platform]Spec{
	domain.Workana: {
		Platform:             domain.Workana,
		BidURL:               workanaBidURL,
		CounterpartSelectors: []string{".project-author .user-name", ".client-info .name", ".author-info a"},
		MessageSelector:      `textarea[name="content"]`,
		SubmitSelector:       `#submitBid`,
		LoginRedirect:        regexp.MustCompile(`workana\.com/login`),
	},
	domain.Upwork: {
		Platform:             domain.Upwork,
		BidURL:               upworkBidURL,
		CounterpartSelectors: []string{`[data-test="client-name"]`, `[data-qa="client-name"]`, `.client-name`},
		MessageSelector:      `textarea[aria-labelledby="cover_letter_label"]`,
		SubmitSelector:       `footer button.air3-btn-primary`,
		LoginRedirect:        regexp.MustCompile(`upwork\.com/ab/account-security/login`),
	},
}

func SpecFor(p domain.Platform) (Spec, error) {
	s, ok := specs[p]
	if !ok {
		return Spec{}, fmt.Errorf("no proposal flow for platform %q", p)
	}
	return s, nil
}

// workanaBidURL maps /job/<slug> to /messages/bid/<slug>.
func workanaBidURL(jobLink string) (string, error) {
	u, err := url.Parse(jobLink)
	if err != nil || !strings.HasSuffix(u.Hostname(), "workana.com") {
		return "", fmt.Errorf("not a workana job link: %q", jobLink)
	}
	i := strings.Index(u.Path, "/job/")
	if i < 0 {
		return "", fmt.Errorf("workana link has no /job/ segment: %q", jobLink)
	}
	slug := strings.Trim(u.Path[i+len("/job/"):], "/")
	if slug == "" {
		return "", fmt.Errorf("workana link has no job slug: %q", jobLink)
	}
	u.Path = u.Path[:i] + "/messages/bid/" + slug
	u.RawQuery, u.Fragment = "", ""
	return u.String(), nil
}

// upworkBidURL maps /jobs/<title>_~<id>/ to /ab/proposals/job/~<id>/apply/.
func upworkBidURL(jobLink string) (string, error) {
	u, err := url.Parse(jobLink)
	if err != nil || !strings.HasSuffix(u.Hostname(), "upwork.com") {
		return "", fmt.Errorf("not an upwork job link: %q", jobLink)
	}
	m := upworkJobID.FindStringSubmatch(u.Path)
	if m == nil {
		return "", fmt.Errorf("upwork link has no ~id: %q", jobLink)
	}
	return fmt.Sprintf("%s://%s/ab/proposals/job/~%s/apply/", u.Scheme, u.Host, m[1]), nil
}
