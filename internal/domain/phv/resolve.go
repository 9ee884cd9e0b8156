package phv

import (
	"context"

	"github.com/okian/vero/internal/domain/calendar"
	"github.com/okian/vero/internal/domain/model"
	"github.com/okian/vero/pkg/metrics"
)

// Source tells where an effective PHV date came from.
type Source string

// Sources of an effective PHV date.
const (
	SourceNone      Source = "none"
	SourceManual    Source = "manual"
	SourceEstimated Source = "estimated"
)

// EffectivePHV is the PHV date downstream calculations should use.
type EffectivePHV struct {
	Date   calendar.Date
	Source Source
	// Estimate is set only when Source is SourceEstimated.
	Estimate *Estimate
}

// Known reports whether a PHV date is available.
func (p EffectivePHV) Known() bool {
	return p.Source != SourceNone
}

// Resolve applies the override rule: a manual PHV date is used as-is and the
// estimator is not consulted; otherwise the estimator's answer is used, if
// any.
func Resolve(ctx context.Context, est Estimator, a *model.Athlete) EffectivePHV {
	if a.HasManualPHV() {
		metrics.RecordEffectivePHV(metrics.SourceManual)
		return EffectivePHV{Date: *a.ManualPHVDate, Source: SourceManual}
	}
	if e, ok := est.Estimate(ctx, a.Samples); ok {
		metrics.RecordEffectivePHV(metrics.SourceEstimated)
		return EffectivePHV{Date: e.Date, Source: SourceEstimated, Estimate: &e}
	}
	metrics.RecordEffectivePHV(metrics.SourceNone)
	return EffectivePHV{Source: SourceNone}
}
