package config

import (
	"os"
	"strconv"
	"strings"
)

// OverlayEnv applies BIDSCOUT_* environment overrides on top of cfg.
func OverlayEnv(cfg *Config) {
	cfg.App.DataDir = getEnvString("BIDSCOUT_DATA_DIR", cfg.App.DataDir)
	cfg.App.LogLevel = getEnvString("BIDSCOUT_LOG_LEVEL", cfg.App.LogLevel)

	cfg.Browser.Headless = getEnvBool("BIDSCOUT_HEADLESS", cfg.Browser.Headless)
	cfg.Browser.ExecPath = getEnvString("BIDSCOUT_CHROME_PATH", cfg.Browser.ExecPath)
	cfg.Browser.ScreenshotDir = getEnvString("BIDSCOUT_SCREENSHOT_DIR", cfg.Browser.ScreenshotDir)
	cfg.Browser.NavigationTimeoutSeconds = getEnvInt("BIDSCOUT_NAVIGATION_TIMEOUT_SECONDS", cfg.Browser.NavigationTimeoutSeconds)

	cfg.Session.Backend = getEnvString("BIDSCOUT_SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.Dir = getEnvString("BIDSCOUT_SESSION_DIR", cfg.Session.Dir)
	cfg.Session.RedisAddr = getEnvString("BIDSCOUT_REDIS_ADDR", cfg.Session.RedisAddr)
	cfg.Session.RedisPassword = getEnvString("BIDSCOUT_REDIS_PASSWORD", cfg.Session.RedisPassword)
	cfg.Session.RedisDB = getEnvInt("BIDSCOUT_REDIS_DB", cfg.Session.RedisDB)

	cfg.Storage.DBPath = getEnvString("BIDSCOUT_DB_PATH", cfg.Storage.DBPath)

	cfg.Notify.Backend = getEnvString("BIDSCOUT_NOTIFY_BACKEND", cfg.Notify.Backend)
	cfg.Notify.NATSURL = getEnvString("BIDSCOUT_NATS_URL", cfg.Notify.NATSURL)
	cfg.Notify.EventsFile = getEnvString("BIDSCOUT_EVENTS_FILE", cfg.Notify.EventsFile)

	cfg.Telemetry.OTLPEndpoint = getEnvString("BIDSCOUT_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
