package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type PlatformConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListingURL string `yaml:"listing_url"`
}

type Config struct {
	App struct {
		DataDir  string `yaml:"data_dir"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Browser struct {
		Headless                 bool     `yaml:"headless"`
		ExecPath                 string   `yaml:"exec_path"`
		LaunchTimeoutSeconds     int      `yaml:"launch_timeout_seconds"`
		NavigationTimeoutSeconds int      `yaml:"navigation_timeout_seconds"`
		CardWaitSeconds          int      `yaml:"card_wait_seconds"`
		LoginTimeoutSeconds      int      `yaml:"login_timeout_seconds"`
		ScreenshotDir            string   `yaml:"screenshot_dir"`
		UserAgents               []string `yaml:"user_agents"`
		RequestsPerSecond        float64  `yaml:"requests_per_second"`
	} `yaml:"browser"`

	Behavior struct {
		MinIterations int `yaml:"min_iterations"`
		MaxIterations int `yaml:"max_iterations"`
		MinPauseMs    int `yaml:"min_pause_ms"`
		MaxPauseMs    int `yaml:"max_pause_ms"`
		MinScrollPx   int `yaml:"min_scroll_px"`
		MaxScrollPx   int `yaml:"max_scroll_px"`
		MinKeyDelayMs int `yaml:"min_key_delay_ms"`
		MaxKeyDelayMs int `yaml:"max_key_delay_ms"`
	} `yaml:"behavior"`

	Session struct {
		Backend       string `yaml:"backend"` // sqlite | file | redis
		Dir           string `yaml:"dir"`
		TTLHours      int    `yaml:"ttl_hours"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
	} `yaml:"session"`

	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`

	Notify struct {
		Backend    string `yaml:"backend"` // log | nats | file | none
		NATSURL    string `yaml:"nats_url"`
		Subject    string `yaml:"subject"`
		EventsFile string `yaml:"events_file"`
	} `yaml:"notify"`

	Telemetry struct {
		// OTLPEndpoint is a host:port gRPC collector; empty disables tracing.
		OTLPEndpoint string `yaml:"otlp_endpoint"`
		ServiceName  string `yaml:"service_name"`
	} `yaml:"telemetry"`

	Platforms struct {
		Workana PlatformConfig `yaml:"workana"`
		Upwork  PlatformConfig `yaml:"upwork"`
	} `yaml:"platforms"`
}

func Default() Config {
	var cfg Config
	cfg.App.DataDir = "."
	cfg.App.LogLevel = "info"

	cfg.Browser.Headless = true
	cfg.Browser.LaunchTimeoutSeconds = 30
	cfg.Browser.NavigationTimeoutSeconds = 45
	cfg.Browser.CardWaitSeconds = 15
	cfg.Browser.LoginTimeoutSeconds = 30
	cfg.Browser.UserAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36",
	}
	cfg.Browser.RequestsPerSecond = 0.5

	cfg.Behavior.MinIterations = 3
	cfg.Behavior.MaxIterations = 5
	cfg.Behavior.MinPauseMs = 500
	cfg.Behavior.MaxPauseMs = 2000
	cfg.Behavior.MinScrollPx = 200
	cfg.Behavior.MaxScrollPx = 700
	cfg.Behavior.MinKeyDelayMs = 40
	cfg.Behavior.MaxKeyDelayMs = 160

	cfg.Session.Backend = "sqlite"
	cfg.Session.Dir = "sessions"
	cfg.Session.TTLHours = 24
	cfg.Session.RedisAddr = "localhost:6379"

	cfg.Storage.DBPath = "bidscout.db"

	cfg.Notify.Backend = "log"
	cfg.Notify.NATSURL = "nats://localhost:4222"
	cfg.Notify.Subject = "jobs.new"
	cfg.Notify.EventsFile = "events.jsonl"

	cfg.Telemetry.ServiceName = "bidscout"

	cfg.Platforms.Workana = PlatformConfig{
		Enabled:    true,
		ListingURL: "https://www.workana.com/jobs?category=it-programming&language=en%2Ces",
	}
	cfg.Platforms.Upwork = PlatformConfig{
		Enabled:    true,
		ListingURL: "https://www.upwork.com/nx/search/jobs/?category2_uid=531770282580668418&sort=recency",
	}
	return cfg
}

// Load reads path over the defaults, so a partial file only overrides what it names.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) LaunchTimeout() time.Duration {
	return time.Duration(c.Browser.LaunchTimeoutSeconds) * time.Second
}

func (c Config) NavigationTimeout() time.Duration {
	return time.Duration(c.Browser.NavigationTimeoutSeconds) * time.Second
}

func (c Config) CardWait() time.Duration {
	return time.Duration(c.Browser.CardWaitSeconds) * time.Second
}

func (c Config) LoginTimeout() time.Duration {
	return time.Duration(c.Browser.LoginTimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}
