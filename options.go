package entmatch

import screeninguc "github.com/clearwatch-io/entmatch/internal/usecase/screening"

// Option configures the embedded client.
type Option func(*clientConfig)

type clientConfig struct {
	normalizerVariant  string
	disabledAlgorithms []string
	workers            int
	limits             screeninguc.Limits
}

// WithNormalizer selects the name normalization variant: "basic"
// (default) or "full".
func WithNormalizer(variant string) Option {
	return func(c *clientConfig) {
		c.normalizerVariant = variant
	}
}

// WithoutAlgorithms disables the named algorithms. The default algorithm
// cannot be disabled.
func WithoutAlgorithms(names ...string) Option {
	return func(c *clientConfig) {
		c.disabledAlgorithms = append(c.disabledAlgorithms, names...)
	}
}

// WithWorkers bounds the scoring goroutines per match call.
func WithWorkers(n int) Option {
	return func(c *clientConfig) {
		c.workers = n
	}
}

// WithLimits overrides the result count and score bound defaults.
func WithLimits(limit, maxLimit int, threshold, cutoff float64) Option {
	return func(c *clientConfig) {
		c.limits.DefaultLimit = limit
		c.limits.MaxLimit = maxLimit
		c.limits.Threshold = threshold
		c.limits.Cutoff = cutoff
	}
}
