package windows

import (
	"github.com/okian/vero/internal/domain/calendar"
	"github.com/okian/vero/pkg/metrics"
)

// Status separates "no PHV to evaluate against" from a real evaluation.
type Status string

// Evaluation statuses.
const (
	// StatusInsufficientData means no effective PHV date exists. This is a
	// data-quality gap, not a developmental state.
	StatusInsufficientData Status = "insufficient_data"
	// StatusEvaluated means windows were checked; Active may still be empty.
	StatusEvaluated Status = "evaluated"
)

// Evaluation is the outcome of checking windows for one query date.
type Evaluation struct {
	Status        Status        `json:"status"`
	Query         calendar.Date `json:"query"`
	MonthsFromPHV int           `json:"months_from_phv"`
	Active        []Name        `json:"active"`
}

// Evaluate checks defs against query. A nil phv yields
// StatusInsufficientData with no active windows.
func Evaluate(phv *calendar.Date, query calendar.Date, defs []Definition) Evaluation {
	if phv == nil || phv.IsZero() {
		metrics.RecordWindowEvaluation(string(StatusInsufficientData), nil)
		return Evaluation{Status: StatusInsufficientData, Query: query, Active: []Name{}}
	}

	active := ActiveWindows(*phv, query, defs)

	names := make([]string, len(active))
	for i, n := range active {
		names[i] = string(n)
	}
	metrics.RecordWindowEvaluation(string(StatusEvaluated), names)

	return Evaluation{
		Status:        StatusEvaluated,
		Query:         query,
		MonthsFromPHV: calendar.WholeMonthsBetween(*phv, query),
		Active:        active,
	}
}

// IsActive reports whether name is among the active windows.
func (e Evaluation) IsActive(name Name) bool {
	for _, n := range e.Active {
		if n == name {
			return true
		}
	}
	return false
}
