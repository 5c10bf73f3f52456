package parser

import "fmt"

// Option configures a Pipeline constructed by New.
type Option func(*pipelineConfig) error

// pipelineConfig holds configuration for a Pipeline.
type pipelineConfig struct {
	forceTier     Tier // zero value means "auto": try tiers in order
	justBinary    string
	justTimeout   int // seconds, 0 means use default
	logger        Logger
	cacheDisabled bool
}

func applyOptions(opts ...Option) (*pipelineConfig, error) {
	cfg := &pipelineConfig{
		justBinary: "just",
		logger:     NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	switch cfg.forceTier {
	case "", TierGrammar, TierCLI, TierRegex, TierFloor:
	default:
		return nil, fmt.Errorf("parser: unknown forced tier %q", cfg.forceTier)
	}
	return cfg, nil
}

// WithForcedTier forces the pipeline to use exactly one tier, bypassing
// the fallback chain. Used by --parser=ast|cli|regex for diagnostics;
// the zero value (unset) means "auto".
func WithForcedTier(t Tier) Option {
	return func(cfg *pipelineConfig) error {
		cfg.forceTier = t
		return nil
	}
}

// WithJustBinary overrides the "just" executable name/path used by the
// external-CLI tier. Default: "just" (resolved via PATH).
func WithJustBinary(path string) Option {
	return func(cfg *pipelineConfig) error {
		if path == "" {
			return fmt.Errorf("parser: just binary path cannot be empty")
		}
		cfg.justBinary = path
		return nil
	}
}

// WithJustTimeoutSeconds bounds how long the external-CLI tier's two
// subprocess invocations may run before being killed. A value of 0
// means use the default (10s).
func WithJustTimeoutSeconds(seconds int) Option {
	return func(cfg *pipelineConfig) error {
		if seconds < 0 {
			return fmt.Errorf("parser: just timeout cannot be negative")
		}
		cfg.justTimeout = seconds
		return nil
	}
}

// WithLogger sets a structured logger for tier-fallback diagnostics.
// By default, a NopLogger is used.
func WithLogger(l Logger) Option {
	return func(cfg *pipelineConfig) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}

// WithCacheDisabled turns off the content-hash keyed parse cache, so
// every call reparses from bytes. Used by tests that need to observe
// tier selection deterministically across repeated identical input.
func WithCacheDisabled(disabled bool) Option {
	return func(cfg *pipelineConfig) error {
		cfg.cacheDisabled = disabled
		return nil
	}
}
