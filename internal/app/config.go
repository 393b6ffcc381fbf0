package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds everything an App instance needs to run.
type Config struct {
	// PatchPath points at the .hcl patch to install.
	PatchPath string

	// SampleRate and BufferSize shape the audio stream. Zero means the
	// engine defaults (44100 Hz, 512 samples).
	SampleRate int
	BufferSize int

	// LowWaterMs and HighWaterMs tune the production pacing: fill bursts
	// trigger below the low mark and stop at the high mark. Zero means the
	// engine defaults (80 and 100).
	LowWaterMs  int
	HighWaterMs int

	// ListenPort serves /health and /metrics over HTTP. 0 is disabled.
	ListenPort int

	// CaptureWAV, when set, records the played signal and writes it to this
	// path on shutdown.
	CaptureWAV string

	// Duration stops the app after this long. 0 runs until interrupted.
	Duration time.Duration

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PatchPath == "" {
		return nil, errors.New("PatchPath is a required configuration field and cannot be empty")
	}
	if cfg.SampleRate < 0 || cfg.BufferSize < 0 {
		return nil, errors.New("sample rate and buffer size cannot be negative")
	}
	if cfg.LowWaterMs < 0 || cfg.HighWaterMs < 0 {
		return nil, errors.New("water marks cannot be negative")
	}
	if cfg.LowWaterMs > 0 && cfg.HighWaterMs > 0 && cfg.LowWaterMs >= cfg.HighWaterMs {
		return nil, fmt.Errorf("low-water mark (%dms) must be below the high-water mark (%dms)", cfg.LowWaterMs, cfg.HighWaterMs)
	}
	if cfg.Duration < 0 {
		return nil, errors.New("duration cannot be negative")
	}
	return &cfg, nil
}
