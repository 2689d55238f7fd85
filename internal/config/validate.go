package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg plus soft findings.
// Hard errors are left to Validate.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Browser.UserAgents = trimList(out.Browser.UserAgents)
	out.Session.Backend = strings.ToLower(strings.TrimSpace(out.Session.Backend))
	out.Notify.Backend = strings.ToLower(strings.TrimSpace(out.Notify.Backend))
	out.App.LogLevel = strings.ToLower(strings.TrimSpace(out.App.LogLevel))
	out.Telemetry.OTLPEndpoint = strings.TrimSpace(out.Telemetry.OTLPEndpoint)
	if strings.TrimSpace(out.Telemetry.ServiceName) == "" {
		out.Telemetry.ServiceName = "bidscout"
	}

	if len(out.Browser.UserAgents) == 0 {
		res.addWarn("browser.user_agents is empty; the engine's default user agent will be sent.")
	}
	if out.Browser.RequestsPerSecond > 2 {
		res.addWarn("browser.requests_per_second is high (%.1f) and may trigger rate limits.", out.Browser.RequestsPerSecond)
	}
	if out.Behavior.MaxPauseMs == 0 {
		res.addWarn("behavior.max_pause_ms is 0; human behavior simulation will not pause.")
	}
	if !out.Platforms.Workana.Enabled && !out.Platforms.Upwork.Enabled {
		res.addErr("no platforms enabled: enable platforms.workana or platforms.upwork")
	}
	if out.Session.TTLHours > 24*7 {
		res.addWarn("session.ttl_hours is %d; platform sessions usually expire sooner.", out.Session.TTLHours)
	}

	return out, res
}
