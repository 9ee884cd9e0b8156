// Package growth holds age and data-freshness helpers that sit beside PHV
// estimation.
package growth

import (
	"github.com/okian/vero/internal/domain/calendar"
	"github.com/okian/vero/internal/domain/model"
)

// DefaultStaleAfterMonths is the usual freshness threshold: a latest sample
// older than this many whole months is stale.
const DefaultStaleAfterMonths = 12

// Freshness classifies how current an athlete's measurements are.
type Freshness string

// Freshness values.
const (
	FreshnessNoData  Freshness = "no_data"
	FreshnessCurrent Freshness = "current"
	FreshnessStale   Freshness = "stale"
)

// AgeInYears returns whole years between dob and on, computed as the floor of
// whole calendar months divided by twelve. Day of month is ignored.
func AgeInYears(dob, on calendar.Date) int {
	return calendar.FloorDiv(calendar.WholeMonthsBetween(dob, on), 12)
}

// MonthsSinceLastSample returns whole months from the latest sample to today,
// or false when there are no samples.
func MonthsSinceLastSample(samples []model.GrowthSample, today calendar.Date) (int, bool) {
	last, ok := model.LatestSample(samples)
	if !ok {
		return 0, false
	}
	return calendar.WholeMonthsBetween(last.Date, today), true
}

// Classify grades freshness against staleAfterMonths. Months strictly greater
// than the threshold are stale.
func Classify(samples []model.GrowthSample, today calendar.Date, staleAfterMonths int) Freshness {
	months, ok := MonthsSinceLastSample(samples, today)
	switch {
	case !ok:
		return FreshnessNoData
	case months > staleAfterMonths:
		return FreshnessStale
	default:
		return FreshnessCurrent
	}
}
