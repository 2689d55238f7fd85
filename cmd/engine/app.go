package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"bidscout-engine/internal/browser"
	"bidscout-engine/internal/config"
	apperrors "bidscout-engine/internal/errors"
	"bidscout-engine/internal/logging"
	"bidscout-engine/internal/notify"
	"bidscout-engine/internal/runner"
	"bidscout-engine/internal/scrape/util"
	"bidscout-engine/internal/session"
	"bidscout-engine/internal/store"
	"bidscout-engine/internal/telemetry"
)

// app holds everything one invocation wires together.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	db       *store.DB
	sessions session.Store
	notifier notify.Notifier
	runner   *runner.Runner
	// shutdownTracer flushes spans; nil when tracing is off.
	shutdownTracer func()
}

func openApp(ctx context.Context, g *globalFlags, flags *pflag.FlagSet) (*app, error) {
	cfg, err := loadConfig(g, flags)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Config{Level: cfg.App.LogLevel, Debug: g.debug})
	if err != nil {
		return nil, apperrors.InvalidInput("logger", err)
	}

	a := &app{cfg: cfg, log: log}

	a.db, err = store.Open(cfg.Storage.DBPath)
	if err != nil {
		_ = log.Sync()
		return nil, apperrors.Storage("open job storage "+cfg.Storage.DBPath, err)
	}

	if ep := cfg.Telemetry.OTLPEndpoint; ep != "" {
		a.shutdownTracer, err = telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, ep)
		if err != nil {
			log.Warn("tracing disabled", zap.String("endpoint", ep), zap.Error(err))
		}
	}

	// Only flows that need a stored session fail when the backend is down.
	a.sessions, err = session.Open(ctx, cfg, a.db)
	if err != nil {
		log.Warn("session backend unavailable", zap.String("backend", cfg.Session.Backend), zap.Error(err))
	}

	a.notifier, err = notify.Open(cfg, log)
	if err != nil {
		log.Warn("notify backend unavailable, logging new jobs instead", zap.String("backend", cfg.Notify.Backend), zap.Error(err))
		a.notifier = notify.NewLogNotifier(log)
	}

	driver := browser.NewDriver(&browser.ChromeLauncher{ExecPath: cfg.Browser.ExecPath}, browser.Options{
		Headless:          cfg.Browser.Headless,
		LaunchTimeout:     cfg.LaunchTimeout(),
		NavigationTimeout: cfg.NavigationTimeout(),
		UserAgents:        cfg.Browser.UserAgents,
		ScreenshotDir:     cfg.Browser.ScreenshotDir,
		Behavior:          behaviorFrom(cfg),
		Limiter:           util.NewHostLimiter(cfg.Browser.RequestsPerSecond, 1),
	}, log)

	a.runner = runner.New(runner.Deps{
		Config:   cfg,
		Driver:   driver,
		Jobs:     a.db,
		Sessions: a.sessions,
		Notifier: a.notifier,
		Log:      log,
	})
	return a, nil
}

func (a *app) Close() {
	a.notifier.Close()
	if c, ok := a.sessions.(io.Closer); ok {
		_ = c.Close()
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn("close db", zap.Error(err))
	}
	if a.shutdownTracer != nil {
		a.shutdownTracer()
	}
	_ = a.log.Sync()
}

// loadConfig resolves config from file, then environment, then flags.
func loadConfig(g *globalFlags, flags *pflag.FlagSet) (config.Config, error) {
	dataDir := g.dataDir
	if dataDir == "" {
		dataDir = os.Getenv("BIDSCOUT_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, apperrors.InvalidInput("create data dir", err)
	}

	path := g.configPath
	if path == "" {
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return config.Config{}, apperrors.InvalidInput("config bootstrap failed", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, apperrors.InvalidInput("config load failed ("+path+")", err)
	}
	config.OverlayEnv(&cfg)
	if g.dataDir != "" || cfg.App.DataDir == "" {
		cfg.App.DataDir = dataDir
	}
	if flags != nil && flags.Changed("headless") {
		cfg.Browser.Headless = g.headless
	}

	cfg, v := config.NormalizeAndValidate(cfg)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, apperrors.InvalidInput(err.Error(), nil)
	}
	for _, w := range v.Warnings {
		// the logger isn't built yet
		_, _ = os.Stderr.WriteString("config warning: " + w + "\n")
	}

	cfg.Storage.DBPath = underDataDir(cfg.App.DataDir, cfg.Storage.DBPath)
	cfg.Notify.EventsFile = underDataDir(cfg.App.DataDir, cfg.Notify.EventsFile)
	if cfg.Browser.ScreenshotDir != "" {
		cfg.Browser.ScreenshotDir = underDataDir(cfg.App.DataDir, cfg.Browser.ScreenshotDir)
	}
	return cfg, nil
}

func underDataDir(dataDir, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(dataDir, p)
}

func behaviorFrom(cfg config.Config) browser.Behavior {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	b := cfg.Behavior
	return browser.Behavior{
		MinIterations: b.MinIterations,
		MaxIterations: b.MaxIterations,
		MinPause:      ms(b.MinPauseMs),
		MaxPause:      ms(b.MaxPauseMs),
		MinScroll:     b.MinScrollPx,
		MaxScroll:     b.MaxScrollPx,
		MinKeyDelay:   ms(b.MinKeyDelayMs),
		MaxKeyDelay:   ms(b.MaxKeyDelayMs),
	}
}
