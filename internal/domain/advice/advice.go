// Package advice turns an athlete's growth state into coaching reasons and,
// separately, into human-readable messages. Classify makes every decision;
// Render only formats what Classify returned.
package advice

import (
	"github.com/okian/vero/internal/domain/growth"
	"github.com/okian/vero/internal/domain/phv"
	"github.com/okian/vero/internal/domain/windows"
)

// CircaPHVMonths is the half-width of the band treated as "around PHV".
const CircaPHVMonths = 6

// Reason is a tagged classification outcome.
type Reason string

// Reasons, in the order Classify emits them.
const (
	ReasonInsufficientData Reason = "insufficient_data"
	ReasonStaleData        Reason = "stale_data"
	ReasonManualOverride   Reason = "manual_override"
	ReasonPrePHV           Reason = "pre_phv"
	ReasonCircaPHV         Reason = "circa_phv"
	ReasonPostPHV          Reason = "post_phv"
	ReasonNoActiveWindow   Reason = "no_active_window"

	ReasonWindowStamina     Reason = "window_stamina"
	ReasonWindowStrength    Reason = "window_strength"
	ReasonWindowSpeed       Reason = "window_speed"
	ReasonWindowFlexibility Reason = "window_flexibility"
	ReasonWindowSkill       Reason = "window_skill"
)

var windowReasons = map[windows.Name]Reason{
	windows.Stamina:     ReasonWindowStamina,
	windows.Strength:    ReasonWindowStrength,
	windows.Speed:       ReasonWindowSpeed,
	windows.Flexibility: ReasonWindowFlexibility,
	windows.Skill:       ReasonWindowSkill,
}

// WindowReason maps an active window to its reason.
func WindowReason(n windows.Name) (Reason, bool) {
	r, ok := windowReasons[n]
	return r, ok
}

// Input is everything Classify looks at.
type Input struct {
	Name                  string
	PHV                   phv.EffectivePHV
	Evaluation            windows.Evaluation
	Freshness             growth.Freshness
	MonthsSinceLastSample int
}

// Classify returns the reasons that apply to in. It is pure: the same input
// always yields the same reasons in the same order.
func Classify(in Input) []Reason {
	var out []Reason

	if in.Freshness == growth.FreshnessStale {
		out = append(out, ReasonStaleData)
	}

	if in.Evaluation.Status != windows.StatusEvaluated || !in.PHV.Known() {
		return append([]Reason{ReasonInsufficientData}, out...)
	}

	if in.PHV.Source == phv.SourceManual {
		out = append(out, ReasonManualOverride)
	}

	switch m := in.Evaluation.MonthsFromPHV; {
	case m < -CircaPHVMonths:
		out = append(out, ReasonPrePHV)
	case m > CircaPHVMonths:
		out = append(out, ReasonPostPHV)
	default:
		out = append(out, ReasonCircaPHV)
	}

	if len(in.Evaluation.Active) == 0 {
		return append(out, ReasonNoActiveWindow)
	}
	for _, n := range in.Evaluation.Active {
		if r, ok := WindowReason(n); ok {
			out = append(out, r)
		}
	}
	return out
}
