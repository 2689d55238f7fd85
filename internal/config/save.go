package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	checkRange := func(name string, lo, hi int) {
		if lo < 0 || hi < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
		if lo > hi {
			errs = append(errs, fmt.Sprintf("%s min must be <= max", name))
		}
	}

	if cfg.Browser.LaunchTimeoutSeconds <= 0 {
		errs = append(errs, "browser.launch_timeout_seconds must be > 0")
	}
	if cfg.Browser.NavigationTimeoutSeconds <= 0 {
		errs = append(errs, "browser.navigation_timeout_seconds must be > 0")
	}
	if cfg.Browser.CardWaitSeconds <= 0 {
		errs = append(errs, "browser.card_wait_seconds must be > 0")
	}
	if cfg.Browser.LoginTimeoutSeconds <= 0 {
		errs = append(errs, "browser.login_timeout_seconds must be > 0")
	}
	if cfg.Browser.RequestsPerSecond < 0 {
		errs = append(errs, "browser.requests_per_second must be >= 0")
	}

	checkRange("behavior.iterations", cfg.Behavior.MinIterations, cfg.Behavior.MaxIterations)
	checkRange("behavior.pause_ms", cfg.Behavior.MinPauseMs, cfg.Behavior.MaxPauseMs)
	checkRange("behavior.scroll_px", cfg.Behavior.MinScrollPx, cfg.Behavior.MaxScrollPx)
	checkRange("behavior.key_delay_ms", cfg.Behavior.MinKeyDelayMs, cfg.Behavior.MaxKeyDelayMs)

	switch cfg.Session.Backend {
	case "sqlite", "file":
	case "redis":
		if strings.TrimSpace(cfg.Session.RedisAddr) == "" {
			errs = append(errs, "session.redis_addr is required when session.backend=redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("session.backend %q must be one of sqlite|file|redis", cfg.Session.Backend))
	}
	if cfg.Session.TTLHours <= 0 {
		errs = append(errs, "session.ttl_hours must be > 0")
	}

	if strings.TrimSpace(cfg.Storage.DBPath) == "" {
		errs = append(errs, "storage.db_path is required")
	}

	switch cfg.Notify.Backend {
	case "log", "none":
	case "nats":
		if strings.TrimSpace(cfg.Notify.NATSURL) == "" {
			errs = append(errs, "notify.nats_url is required when notify.backend=nats")
		}
		if strings.TrimSpace(cfg.Notify.Subject) == "" {
			errs = append(errs, "notify.subject is required when notify.backend=nats")
		}
	case "file":
		if strings.TrimSpace(cfg.Notify.EventsFile) == "" {
			errs = append(errs, "notify.events_file is required when notify.backend=file")
		}
	default:
		errs = append(errs, fmt.Sprintf("notify.backend %q must be one of log|nats|file|none", cfg.Notify.Backend))
	}

	for name, p := range map[string]PlatformConfig{"workana": cfg.Platforms.Workana, "upwork": cfg.Platforms.Upwork} {
		if p.Enabled && strings.TrimSpace(p.ListingURL) == "" {
			errs = append(errs, fmt.Sprintf("platforms.%s.listing_url is required when enabled", name))
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + joinLines(errs))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n- ")
}
