package runner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bidscout-engine/internal/domain"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/reconcile"
	"bidscout-engine/internal/retry"
	"bidscout-engine/internal/scrape"
	"bidscout-engine/internal/telemetry"
)

const (
	expandSettle     = 750 * time.Millisecond
	persistAttempts  = 3
	persistBaseDelay = 200 * time.Millisecond
)

type ScrapeRequest struct {
	// Platform is workana, upwork, or "all"/"" for every enabled platform.
	Platform string
	// UserID, when set, scrapes with that user's stored session.
	UserID string
}

// Scrape runs the requested platforms concurrently, reconciles each run
// against job storage, persists and announces the new records.
func (r *Runner) Scrape(ctx context.Context, req ScrapeRequest) (res ScrapeResult) {
	start := time.Now()
	res.Envelope = r.envelope(OpScrape, req.Platform)
	res.Projects = []domain.JobRecord{}
	defer res.finish(start)
	defer r.recoverInto(&res.Envelope)

	ctx, span := tracer().Start(ctx, "runner.Scrape")
	defer span.End()

	platforms, err := r.resolvePlatforms(req.Platform)
	if err != nil {
		res.fail(err)
		return res
	}
	if len(platforms) == 1 {
		res.Platform = string(platforms[0])
	} else {
		res.Platform = "all"
	}

	// Each platform owns its browser; results land in their own slot.
	results := make([]PlatformResult, len(platforms))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range platforms {
		g.Go(func() error {
			results[i] = r.scrapeOne(gctx, res.RunID, p, req.UserID)
			return nil
		})
	}
	_ = g.Wait()

	for _, pr := range results {
		res.Stats.Total += pr.Stats.Total
		res.Stats.Processed += pr.Stats.Processed
		res.Stats.Errors += pr.Stats.Errors
		res.Stats.New += pr.Stats.New
		res.Stats.Duplicates += pr.Stats.Duplicates
		res.Stats.NotifyErrors += pr.Stats.NotifyErrors
		res.Projects = append(res.Projects, pr.Projects...)
		if !pr.Success && res.Success {
			res.Success = false
			res.Error = pr.Error
		}
	}
	if len(results) > 1 {
		res.Platforms = results
	}
	if !res.Success {
		span.SetStatus(codes.Error, res.Error.Message)
	}
	span.SetAttributes(telemetry.Int("jobs.total", res.Stats.Total), telemetry.Int("jobs.new", res.Stats.New))
	return res
}

func (r *Runner) resolvePlatforms(arg string) ([]domain.Platform, error) {
	if arg == "" || arg == "all" {
		ps := scrape.EnabledPlatforms(r.cfg)
		if len(ps) == 0 {
			return nil, apperrors.InvalidInput("no platform is enabled in config", nil)
		}
		return ps, nil
	}
	p, err := domain.ParsePlatform(arg)
	if err != nil {
		return nil, apperrors.InvalidInput("platform must be workana, upwork or all", err)
	}
	return []domain.Platform{p}, nil
}

func (r *Runner) scrapeOne(ctx context.Context, runID string, p domain.Platform, userID string) (pr PlatformResult) {
	pr = PlatformResult{Platform: p, Success: true}
	log := r.log.With(zap.String("platform", string(p)), zap.String("run_id", runID))

	ctx, span := tracer().Start(ctx, "runner.scrapeOne")
	defer span.End()
	span.SetAttributes(telemetry.String("platform", string(p)))

	fail := func(err error) PlatformResult {
		log.Error("scrape failed", zap.Error(err))
		span.RecordError(err)
		pr.Success = false
		pr.Error = &ErrorBody{Type: string(apperrors.TypeOf(err)), Message: message(err)}
		return pr
	}
	defer func() {
		if rec := recover(); rec != nil {
			pr = fail(apperrors.Internal("scrape panicked", nil))
			log.Error("scrape panicked", zap.Any("panic", rec), zap.Stack("stack"))
		}
	}()

	def, err := scrape.PlatformFor(r.cfg, p)
	if err != nil {
		return fail(apperrors.InvalidInput("platform", err))
	}

	opts := scrape.Options{CardWait: r.cfg.CardWait(), ExpandSettle: expandSettle}
	if userID != "" {
		sess, err := r.loadSession(ctx, userID, p)
		if err != nil {
			return fail(err)
		}
		opts.Storage = &sess.Storage
	}

	run, err := scrape.New(r.driver, def, r.log).Execute(ctx, opts)
	if err != nil {
		return fail(err)
	}
	pr.Stats.Total = len(run.Records) + run.ParseErrors
	pr.Stats.Errors = run.ParseErrors
	if len(run.Records) == 0 {
		log.Warn("scrape returned no records", zap.Int("parse_errors", run.ParseErrors))
	}

	if r.jobs == nil {
		return fail(apperrors.Internal("no job store configured", nil))
	}
	rec, err := reconcile.Reconcile(ctx, r.jobs, p, run.Records)
	if err != nil {
		return fail(err)
	}
	pr.Stats.New = len(rec.New)
	pr.Stats.Duplicates = rec.DuplicateCount

	if len(rec.New) > 0 {
		var added int
		err := retry.WithBackoff(ctx, persistAttempts, persistBaseDelay, func(ctx context.Context) error {
			n, err := r.jobs.InsertJobs(ctx, rec.New)
			added = n
			return err
		})
		if err != nil {
			pr.Stats.Errors += len(rec.New)
			return fail(apperrors.Storage("persist new jobs", err))
		}
		pr.Stats.Processed = added

		if err := r.notifier.Notify(ctx, runID, rec.New); err != nil {
			pr.Stats.NotifyErrors = len(rec.New)
			span.RecordError(err)
			log.Warn("notify new jobs", zap.Int("records", len(rec.New)), zap.Error(err))
		}
	}

	pr.Projects = rec.New
	log.Info("scrape reconciled",
		zap.Int("total", pr.Stats.Total),
		zap.Int("new", pr.Stats.New),
		zap.Int("duplicates", pr.Stats.Duplicates),
		zap.Int("errors", pr.Stats.Errors),
		zap.Duration("took", run.Duration))
	return pr
}
