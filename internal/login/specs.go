package login

import (
	"fmt"
	"regexp"

	"bidscout-engine/internal/domain"
)

// Spec describes one platform's login form.
type Spec struct {
	Platform domain.Platform
	LoginURL string
	// ConsentSelector is the cookie banner accept button; absent banners are fine.
	ConsentSelector  string
	UsernameSelector string
	// ContinueSelector is set for two-step forms that ask for the password
	// on a second screen.
	ContinueSelector string
	PasswordSelector string
	SubmitSelector   string
	// Success matches a URL only reachable when authenticated.
	Success *regexp.Regexp
}

var specs = map[domain.Platform]Spec{
	domain.Workana: {
		Platform:         domain.Workana,
		LoginURL:         "https://www.workana.com/login",
		ConsentSelector:  "#onetrust-accept-btn-handler",
		UsernameSelector: `input[name="email"]`,
		PasswordSelector: `input[name="password"]`,
		SubmitSelector:   `form button[type="submit"]`,
		Success:          regexp.MustCompile(`^https://(www\.)?workana\.com/(dashboard|inbox)`),
	},
	domain.Upwork: {
		Platform:         domain.Upwork,
		LoginURL:         "https://www.upwork.com/ab/account-security/login",
		ConsentSelector:  "#onetrust-accept-btn-handler",
		UsernameSelector: "#login_username",
		ContinueSelector: "#login_password_continue",
		PasswordSelector: "#login_password",
		SubmitSelector:   "#login_control_continue",
		Success:          regexp.MustCompile(`^https://(www\.)?upwork\.com/nx/(find-work|proposals)`),
	},
}

func SpecFor(p domain.Platform) (Spec, error) {
	s, ok := specs[p]
	if !ok {
		return Spec{}, fmt.Errorf("no login flow for platform %q", p)
	}
	return s, nil
}
