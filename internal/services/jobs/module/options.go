package module

import (
	"runtime"
	"time"

	"dejavu/internal/platform/config"
)

// Options holds configuration settings for the jobs module
type Options struct {
	Capacity    int
	Workers     int
	MaxAttempts int
	RetryBase   time.Duration
	JobTimeout  time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	jf := cfg.Prefix("CORE_JOBS_")
	return Options{
		Capacity:    jf.MayInt("CAPACITY", 1024),
		Workers:     jf.MayInt("WORKERS", runtime.NumCPU()),
		MaxAttempts: jf.MayInt("MAX_ATTEMPTS", 4),
		RetryBase:   jf.MayDuration("RETRY_BASE", 250*time.Millisecond),
		JobTimeout:  jf.MayDuration("JOB_TIMEOUT", 30*time.Second),
	}
}
