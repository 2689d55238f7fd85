package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/login"
	"bidscout-engine/internal/retry"
	"bidscout-engine/internal/secrets"
)

type LoginRequest struct {
	Platform string
	Username string
	// Password falls back to the OS keychain when empty.
	Password string
	// UserID keys the stored session; defaults to Username.
	UserID string
	// SavePassword stores Password in the keychain after a successful login.
	SavePassword bool
}

// Login authenticates, persists the captured session and returns it.
func (r *Runner) Login(ctx context.Context, req LoginRequest) (res LoginResult) {
	start := time.Now()
	res.Envelope = r.envelope(OpLogin, req.Platform)
	defer res.finish(start)
	defer r.recoverInto(&res.Envelope)

	ctx, span := tracer().Start(ctx, "runner.Login")
	defer span.End()

	p, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		res.fail(apperrors.InvalidInput("platform must be workana or upwork", err))
		return res
	}
	res.Platform = string(p)

	password := req.Password
	fromKeychain := false
	if password == "" {
		password, err = secrets.GetPassword(p, req.Username)
		if err != nil {
			res.fail(apperrors.InvalidInput("no password given and none stored in the keychain", err))
			return res
		}
		fromKeychain = true
	}

	spec, err := login.SpecFor(p)
	if err != nil {
		res.fail(apperrors.InvalidInput("platform", err))
		return res
	}

	flow := login.New(r.driver, login.Options{Timeout: r.cfg.LoginTimeout(), TTL: r.cfg.SessionTTL()}, r.log)
	sess, err := flow.Login(ctx, spec, req.UserID, req.Username, password)
	if err != nil {
		span.RecordError(err)
		res.fail(err)
		return res
	}

	if r.sessions == nil {
		res.fail(apperrors.Internal("no session store configured", nil))
		return res
	}
	err = retry.WithBackoff(ctx, persistAttempts, persistBaseDelay, func(ctx context.Context) error {
		return r.sessions.Save(ctx, sess)
	})
	if err != nil {
		res.fail(apperrors.Storage("save session", err))
		return res
	}

	if req.SavePassword && !fromKeychain {
		if err := secrets.SetPassword(p, req.Username, password); err != nil {
			r.log.Warn("store password in keychain", zap.Error(err))
		}
	}

	res.SessionData = &sess
	return res
}
