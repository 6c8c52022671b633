package service

// Fraction of requests allowed to fail before Enrich gives up, unless the
// caller overrides it with WithMaxFailureRate.
const defaultMaxFailureRate = 0.05

// EnrichProgress is called after each request completes. completed is the
// running count of processed requests, total the overall request count.
type EnrichProgress func(completed, total int)

// RequestError is called with the failing request's ID and the upstream
// error whenever an individual request fails.
type RequestError func(requestID string, err error)

// EnrichOption configures the behaviour of an Enrich call.
type EnrichOption func(*EnrichConfig)

// EnrichConfig holds the resolved configuration for an Enrich call.
type EnrichConfig struct {
	progress       EnrichProgress
	requestError   RequestError
	maxFailureRate float64
	rateSet        bool
}

// NewEnrichConfig applies all options and returns the resolved config.
func NewEnrichConfig(opts ...EnrichOption) EnrichConfig {
	var cfg EnrichConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.rateSet {
		cfg.maxFailureRate = defaultMaxFailureRate
	}
	return cfg
}

// Progress returns the progress callback, or nil if none was set.
func (c EnrichConfig) Progress() EnrichProgress { return c.progress }

// RequestError returns the request error callback, or nil if none was set.
func (c EnrichConfig) RequestError() RequestError { return c.requestError }

// MaxFailureRate returns the maximum fraction of requests that may fail
// before the Enrich call returns an error.
func (c EnrichConfig) MaxFailureRate() float64 { return c.maxFailureRate }

// WithEnrichProgress registers a callback invoked after each enrichment
// request completes successfully.
func WithEnrichProgress(fn EnrichProgress) EnrichOption {
	return func(c *EnrichConfig) { c.progress = fn }
}

// WithRequestError registers a callback invoked when an individual request
// fails, so callers can log each upstream error as it occurs.
func WithRequestError(fn RequestError) EnrichOption {
	return func(c *EnrichConfig) { c.requestError = fn }
}

// WithMaxFailureRate sets the maximum fraction of requests that may fail
// before the Enrich call returns an error. The rate is clamped to [0, 1];
// zero makes any single failure fatal.
func WithMaxFailureRate(rate float64) EnrichOption {
	return func(c *EnrichConfig) {
		c.maxFailureRate = min(max(rate, 0), 1)
		c.rateSet = true
	}
}
