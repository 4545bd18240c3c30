package module

import "dejavu/internal/platform/config"

// Options holds engine tuning for the analyze module
type Options struct {
	ShingleK int
	Hashes   int
	Bands    int
	Rows     int

	Likely  float64
	Similar float64

	MaxScriptBytes int
}

// FromConfig reads engine tuning from the config.Conf
func FromConfig(cfg config.Conf) Options {
	ef := cfg.Prefix("CORE_ENGINE_")
	return Options{
		ShingleK:       ef.MayInt("SHINGLE_K", 5),
		Hashes:         ef.MayInt("HASHES", 128),
		Bands:          ef.MayInt("BANDS", 16),
		Rows:           ef.MayInt("ROWS", 8),
		Likely:         ef.MayFloat64("LIKELY_THRESHOLD", 0.85),
		Similar:        ef.MayFloat64("SIMILAR_THRESHOLD", 0.60),
		MaxScriptBytes: ef.MayInt("MAX_SCRIPT_BYTES", 1<<20),
	}
}
