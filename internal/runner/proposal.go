package runner

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/proposal"
	"bidscout-engine/internal/session"
)

var errNoSession = errors.New("pass --session or --user-id")

type ProposalRequest struct {
	// Platform may be empty; it is then taken from the session or the link.
	Platform string
	// Session is a session file path or inline session JSON.
	Session string
	// UserID loads the session from the session store when Session is empty.
	UserID  string
	Text    string
	JobLink string
}

// SendProposal replays a stored session to submit text for one job.
func (r *Runner) SendProposal(ctx context.Context, req ProposalRequest) (res ProposalResult) {
	start := time.Now()
	res.Envelope = r.envelope(OpSendProposal, req.Platform)
	res.ProjectLink = req.JobLink
	defer res.finish(start)
	defer r.recoverInto(&res.Envelope)

	ctx, span := tracer().Start(ctx, "runner.SendProposal")
	defer span.End()

	if strings.TrimSpace(req.JobLink) == "" {
		res.fail(apperrors.InvalidInput("job link is required", nil))
		return res
	}

	var (
		sess domain.SessionState
		err  error
	)
	switch {
	case strings.TrimSpace(req.Session) != "":
		sess, err = session.ParseArg(req.Session)
	case req.UserID != "":
		p, perr := r.platformFor(req, domain.SessionState{})
		if perr != nil {
			res.fail(perr)
			return res
		}
		sess, err = r.loadSession(ctx, req.UserID, p)
	default:
		err = apperrors.InvalidSession("no session supplied", errNoSession)
	}
	if err != nil {
		res.fail(err)
		return res
	}

	p, err := r.platformFor(req, sess)
	if err != nil {
		res.fail(err)
		return res
	}
	res.Platform = string(p)

	spec, err := proposal.SpecFor(p)
	if err != nil {
		res.fail(apperrors.InvalidInput("platform", err))
		return res
	}

	flow := proposal.New(r.driver, proposal.Options{Timeout: r.cfg.NavigationTimeout(), Now: r.now}, r.log)
	out := flow.Send(ctx, spec, sess, req.Text, req.JobLink)
	res.Counterpart = out.Counterpart
	if !out.Success {
		span.RecordError(errFromResult(out))
		res.Success = false
		res.Error = &ErrorBody{Type: out.ErrorKind, Message: strings.TrimPrefix(out.Error, out.ErrorKind+": ")}
		return res
	}
	res.Message = out.Message
	return res
}

// platformFor picks the platform from the flag, then the session, then the
// job link's host.
func (r *Runner) platformFor(req ProposalRequest, sess domain.SessionState) (domain.Platform, error) {
	if req.Platform != "" {
		p, err := domain.ParsePlatform(req.Platform)
		if err != nil {
			return "", apperrors.InvalidInput("platform must be workana or upwork", err)
		}
		return p, nil
	}
	if sess.Platform != "" {
		return sess.Platform, nil
	}
	if u, err := url.Parse(req.JobLink); err == nil {
		host := strings.ToLower(u.Hostname())
		for _, p := range domain.AllPlatforms {
			if strings.HasSuffix(host, string(p)+".com") {
				return p, nil
			}
		}
	}
	return "", apperrors.InvalidInput("cannot tell the platform from the job link; pass --platform", nil)
}

func errFromResult(out domain.SubmissionResult) error {
	return apperrors.New(apperrors.ErrorType(out.ErrorKind), out.Error, nil)
}
