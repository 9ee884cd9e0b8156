// Package model contains domain models passed between layers.
package model

import (
	"slices"

	"github.com/okian/vero/internal/domain/calendar"
)

// GrowthSample is one stature measurement.
type GrowthSample struct {
	Date     calendar.Date `json:"date"`
	HeightCM float64       `json:"height_cm"` // positive, centimetres
}

// Athlete is an individual whose growth is tracked.
type Athlete struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DateOfBirth calendar.Date  `json:"date_of_birth"`
	Samples     []GrowthSample `json:"samples"`

	// ManualPHVDate is a reviewer-supplied PHV date. When set it takes
	// precedence over any estimate.
	ManualPHVDate *calendar.Date `json:"manual_phv_date,omitempty"`
}

// SortSamples returns a date-ascending copy of samples. The sort is stable so
// same-day entries keep their insertion order. The input is not modified.
func SortSamples(samples []GrowthSample) []GrowthSample {
	out := slices.Clone(samples)
	slices.SortStableFunc(out, func(a, b GrowthSample) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// SortedSamples returns the athlete's samples in date order.
func (a *Athlete) SortedSamples() []GrowthSample {
	return SortSamples(a.Samples)
}

// LastSample returns the most recent sample by date.
func (a *Athlete) LastSample() (GrowthSample, bool) {
	return LatestSample(a.Samples)
}

// HasManualPHV reports whether a reviewer override is present.
func (a *Athlete) HasManualPHV() bool {
	return a.ManualPHVDate != nil && !a.ManualPHVDate.IsZero()
}

// Clone returns a deep copy of a.
func (a *Athlete) Clone() Athlete {
	c := *a
	c.Samples = slices.Clone(a.Samples)
	if a.ManualPHVDate != nil {
		d := *a.ManualPHVDate
		c.ManualPHVDate = &d
	}
	return c
}

// LatestSample returns the sample with the greatest date regardless of slice
// order. On equal dates the later entry wins.
func LatestSample(samples []GrowthSample) (GrowthSample, bool) {
	if len(samples) == 0 {
		return GrowthSample{}, false
	}
	latest := samples[0]
	for _, s := range samples[1:] {
		if !s.Date.Before(latest.Date) {
			latest = s
		}
	}
	return latest, true
}
