// Package phv estimates the date of Peak Height Velocity from a series of
// stature measurements.
//
// The estimate is a heuristic, not a curve fit: the series is split into
// consecutive segments, each segment's growth is normalized to a fixed
// window, and the later end of the fastest segment is reported as PHV. No
// smoothing or growth-curve model is applied, so the answer is only as fine
// as the measurement cadence. Auxological practice fits a growth curve
// instead; treat this estimate as a screening aid.
package phv

import (
	"context"

	"github.com/okian/vero/internal/domain/calendar"
	"github.com/okian/vero/internal/domain/model"
	"github.com/okian/vero/pkg/metrics"
)

// Default estimation constants.
const (
	DefaultMinSamples          = 3
	DefaultMinSpanMonths       = 3.0
	DefaultNormalizationMonths = 6.0
)

// Estimate is a computed PHV date together with the segment that produced it.
type Estimate struct {
	Date calendar.Date
	// Rate is the winning growth in cm per normalization window.
	Rate float64
	// From and To are the samples bounding the winning segment; Date == To.Date.
	From model.GrowthSample
	To   model.GrowthSample
	// SkippedPairs counts consecutive pairs ignored for spanning too little time.
	SkippedPairs int
}

// Estimator computes a PHV estimate from growth samples.
type Estimator interface {
	// Estimate returns the estimate and true, or false when there is not
	// enough data. Absence is not an error.
	Estimate(ctx context.Context, samples []model.GrowthSample) (Estimate, bool)
}

// HeuristicEstimator implements Estimator with the largest-segment-rate rule.
type HeuristicEstimator struct {
	minSamples          int
	minSpanMonths       float64
	normalizationMonths float64
}

// NewHeuristicEstimator creates an estimator with configuration options.
func NewHeuristicEstimator(opts ...Option) *HeuristicEstimator {
	e := &HeuristicEstimator{
		minSamples:          DefaultMinSamples,
		minSpanMonths:       DefaultMinSpanMonths,
		normalizationMonths: DefaultNormalizationMonths,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Estimate implements Estimator. Samples are sorted by date first; the input
// slice is not modified. Among equal rates the earliest segment wins.
func (e *HeuristicEstimator) Estimate(_ context.Context, samples []model.GrowthSample) (Estimate, bool) {
	if len(samples) < e.minSamples {
		metrics.RecordPHVEstimate(metrics.OutcomeTooFew)
		return Estimate{}, false
	}

	sorted := model.SortSamples(samples)

	var (
		best  Estimate
		found bool
	)
	skipped := 0
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		months := calendar.MonthsBetween(prev.Date, cur.Date)
		if months < e.minSpanMonths {
			skipped++
			continue
		}
		rate := (cur.HeightCM - prev.HeightCM) * e.normalizationMonths / months
		if !found || rate > best.Rate {
			best = Estimate{Date: cur.Date, Rate: rate, From: prev, To: cur}
			found = true
		}
	}

	metrics.RecordSkippedPairs(skipped)
	if !found {
		metrics.RecordPHVEstimate(metrics.OutcomeNoQualifying)
		return Estimate{}, false
	}

	best.SkippedPairs = skipped
	metrics.RecordPHVEstimate(metrics.OutcomeEstimated)
	metrics.ObservePeakRate(best.Rate)
	return best, true
}
