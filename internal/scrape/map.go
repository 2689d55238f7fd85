package scrape

import (
	"fmt"

	"bidscout-engine/internal/config"
	"bidscout-engine/internal/domain"
	"bidscout-engine/internal/scrape/types"
	"bidscout-engine/internal/scrape/upwork"
	"bidscout-engine/internal/scrape/workana"
)

// PlatformFor builds the scraper definition for name using its configured
// listing URL.
func PlatformFor(cfg config.Config, name domain.Platform) (types.Platform, error) {
	switch name {
	case domain.Workana:
		return workana.New(cfg.Platforms.Workana.ListingURL), nil
	case domain.Upwork:
		return upwork.New(cfg.Platforms.Upwork.ListingURL), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", name)
	}
}

// EnabledPlatforms expands "all" into the enabled platforms in a stable order.
func EnabledPlatforms(cfg config.Config) []domain.Platform {
	var out []domain.Platform
	if cfg.Platforms.Workana.Enabled {
		out = append(out, domain.Workana)
	}
	if cfg.Platforms.Upwork.Enabled {
		out = append(out, domain.Upwork)
	}
	return out
}
