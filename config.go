package qrscan

import (
	"os"
	"strconv"
)

// Config holds the tuning knobs from spec.md §6. All fields are optional;
// Defaults() returns the values the controller uses when the caller
// supplies none.
type Config struct {
	// MaxDimension downscales the input so that max(width, height) <= this
	// value before detection runs. 0 disables downscaling.
	MaxDimension int

	// Debug emits per-stage telemetry events via log/slog when true.
	Debug bool

	// TopKTriplets caps the number of finder-pattern groups considered per
	// image (spec.md §4.3).
	TopKTriplets int

	// Budget is the soft per-image cost cap the strategy controller
	// enforces (spec.md §4.7, §5).
	Budget int

	EnableContourFallback bool
	EnableMeshWarp        bool
	EnableDeskew          bool

	// ErasureThreshold is the sampler confidence below which a codeword is
	// converted to a Reed-Solomon erasure (spec.md §9 open question).
	ErasureThreshold float64
}

// Defaults returns the baseline Config used when Detect is called with no
// options.
func Defaults() Config {
	return Config{
		MaxDimension:     1600,
		Debug:            false,
		TopKTriplets:     8,
		Budget:           2000,
		ErasureThreshold: 0.15,
	}
}

// Option mutates a Config. Entry points take a variadic list of Options so
// callers only specify what they need to override.
type Option func(*Config)

// WithMaxDimension overrides MaxDimension.
func WithMaxDimension(v int) Option { return func(c *Config) { c.MaxDimension = v } }

// WithDebug toggles telemetry emission.
func WithDebug(v bool) Option { return func(c *Config) { c.Debug = v } }

// WithTopKTriplets overrides the per-image triplet cap.
func WithTopKTriplets(v int) Option { return func(c *Config) { c.TopKTriplets = v } }

// WithBudget overrides the per-image cost budget.
func WithBudget(v int) Option { return func(c *Config) { c.Budget = v } }

// WithErasureThreshold overrides the confidence-to-erasure cutoff.
func WithErasureThreshold(v float64) Option { return func(c *Config) { c.ErasureThreshold = v } }

// WithFallbacks toggles the expensive fallback paths named in spec.md §6.
func WithFallbacks(contour, meshWarp, deskew bool) Option {
	return func(c *Config) {
		c.EnableContourFallback = contour
		c.EnableMeshWarp = meshWarp
		c.EnableDeskew = deskew
	}
}

// resolve applies options over Defaults().
func resolve(opts []Option) Config {
	cfg := Defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// ConfigFromEnv reads the host-facing environment variables named in
// spec.md §6 (QR_MAX_DIM, QR_DEBUG, QR_DECODE_TOP_K, QR_BENCH_LIMIT).
// The core itself never reads the environment; this is a helper for the
// host collaborator (e.g. cmd/qrscan) to build a Config once per process.
func ConfigFromEnv() Config {
	cfg := Defaults()
	if v, ok := os.LookupEnv("QR_MAX_DIM"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDimension = n
		}
	}
	if v, ok := os.LookupEnv("QR_DEBUG"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v, ok := os.LookupEnv("QR_DECODE_TOP_K"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TopKTriplets = n
		}
	}
	if v, ok := os.LookupEnv("QR_BENCH_LIMIT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Budget = n
		}
	}
	return cfg
}
