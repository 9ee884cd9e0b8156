package phv

// Option applies a configuration option to the HeuristicEstimator.
type Option func(*HeuristicEstimator)

// WithMinSamples sets how many samples are needed before an estimate is
// attempted.
func WithMinSamples(n int) Option {
	return func(e *HeuristicEstimator) {
		if n >= 2 {
			e.minSamples = n
		}
	}
}

// WithMinSpanMonths sets the shortest gap between consecutive samples that
// is still used for a rate.
func WithMinSpanMonths(months float64) Option {
	return func(e *HeuristicEstimator) {
		if months > 0 {
			e.minSpanMonths = months
		}
	}
}

// WithNormalizationMonths sets the window every segment rate is scaled to.
func WithNormalizationMonths(months float64) Option {
	return func(e *HeuristicEstimator) {
		if months > 0 {
			e.normalizationMonths = months
		}
	}
}
