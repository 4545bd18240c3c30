package module

import "dejavu/internal/platform/config"

// Options holds configuration settings for the alerts module
type Options struct {
	HardLimit int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	af := cfg.Prefix("CORE_ALERTS_")
	return Options{
		HardLimit: af.MayInt("HARD_LIMIT", 200),
	}
}
