// Package runner composes the scrape, login and proposal flows into the three
// operations the CLI exposes. Every operation returns a result document and
// never an error or panic.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"bidscout-engine/internal/browser"
	"bidscout-engine/internal/config"
	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/notify"
	"bidscout-engine/internal/reconcile"
	"bidscout-engine/internal/session"
	"bidscout-engine/internal/telemetry"
)

func tracer() trace.Tracer { return telemetry.GetTracer("bidscout/runner") }

// JobStore is the job storage the scrape operation reads and appends to.
type JobStore interface {
	reconcile.LinkLookup
	InsertJobs(ctx context.Context, jobs []domain.JobRecord) (int, error)
}

type Deps struct {
	Config   config.Config
	Driver   *browser.Driver
	Jobs     JobStore
	Sessions session.Store
	Notifier notify.Notifier
	Log      *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Runner struct {
	cfg      config.Config
	driver   *browser.Driver
	jobs     JobStore
	sessions session.Store
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func New(d Deps) *Runner {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	return &Runner{
		cfg:      d.Config,
		driver:   d.Driver,
		jobs:     d.Jobs,
		sessions: d.Sessions,
		notifier: d.Notifier,
		log:      d.Log.Named("runner"),
		now:      d.Now,
	}
}

func (r *Runner) envelope(op, platform string) Envelope {
	return Envelope{
		Success:   true,
		Operation: op,
		Platform:  platform,
		RunID:     uuid.NewString(),
		Timestamp: r.now().UTC().Format(time.RFC3339),
	}
}

// recoverInto turns a panic in an operation into an INTERNAL failure.
func (r *Runner) recoverInto(env *Envelope) {
	if p := recover(); p != nil {
		r.log.Error("operation panicked", zap.String("operation", env.Operation), zap.Any("panic", p), zap.Stack("stack"))
		env.fail(apperrors.Internal("unexpected failure", fmt.Errorf("%v", p)))
	}
}

// loadSession fetches the stored session for (userID, platform) and checks
// that it can still be replayed.
func (r *Runner) loadSession(ctx context.Context, userID string, p domain.Platform) (domain.SessionState, error) {
	if r.sessions == nil {
		return domain.SessionState{}, apperrors.Internal("no session store configured", nil)
	}
	s, err := r.sessions.Load(ctx, userID, p)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return domain.SessionState{}, apperrors.InvalidSession(fmt.Sprintf("no stored %s session for %s; log in first", p, userID), nil)
		}
		return domain.SessionState{}, apperrors.Storage("load session", err)
	}
	if !s.ValidAt(r.now()) {
		return domain.SessionState{}, apperrors.InvalidSession(fmt.Sprintf("stored %s session for %s has expired; log in again", p, userID), nil)
	}
	return s, nil
}
