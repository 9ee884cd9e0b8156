// Package windows evaluates which developmental sensitive windows are open
// relative to an athlete's PHV date.
package windows

import (
	"fmt"

	"github.com/okian/vero/internal/domain/calendar"
)

// Name identifies a sensitive window.
type Name string

// The fixed set of windows.
const (
	Stamina     Name = "Stamina"
	Strength    Name = "Strength"
	Speed       Name = "Speed"
	Flexibility Name = "Flexibility"
	Skill       Name = "Skill"
)

// Names lists every window in canonical order.
var Names = []Name{Stamina, Strength, Speed, Flexibility, Skill}

// Definition places a window relative to PHV. Offsets are signed months;
// negative means before PHV. OffsetStartMonths <= OffsetEndMonths.
type Definition struct {
	Name              Name `json:"name"`
	OffsetStartMonths int  `json:"offset_start_months"`
	OffsetEndMonths   int  `json:"offset_end_months"`
}

// Contains reports whether monthsFromPHV falls inside the window, both ends
// inclusive.
func (d Definition) Contains(monthsFromPHV int) bool {
	return d.OffsetStartMonths <= monthsFromPHV && monthsFromPHV <= d.OffsetEndMonths
}

// Defaults returns a fresh copy of the five standard windows.
func Defaults() []Definition {
	return []Definition{
		{Name: Stamina, OffsetStartMonths: -12, OffsetEndMonths: 12},
		{Name: Strength, OffsetStartMonths: 0, OffsetEndMonths: 24},
		{Name: Speed, OffsetStartMonths: -24, OffsetEndMonths: 6},
		{Name: Flexibility, OffsetStartMonths: -60, OffsetEndMonths: -12},
		{Name: Skill, OffsetStartMonths: -48, OffsetEndMonths: -6},
	}
}

// Validate checks every definition: known name, no duplicates, start <= end.
func Validate(defs []Definition) error {
	seen := make(map[Name]bool, len(defs))
	for _, d := range defs {
		if !isKnown(d.Name) {
			return fmt.Errorf("%w: unknown window %q", ErrInvalidDefinition, d.Name)
		}
		if seen[d.Name] {
			return fmt.Errorf("%w: duplicate window %q", ErrInvalidDefinition, d.Name)
		}
		seen[d.Name] = true
		if d.OffsetStartMonths > d.OffsetEndMonths {
			return fmt.Errorf("%w: %s starts at %d after it ends at %d",
				ErrInvalidDefinition, d.Name, d.OffsetStartMonths, d.OffsetEndMonths)
		}
	}
	return nil
}

func isKnown(n Name) bool {
	for _, k := range Names {
		if k == n {
			return true
		}
	}
	return false
}

// ActiveWindows returns every window containing the whole-month offset of
// query from phv, in definition order. Windows overlap; no priority applies.
func ActiveWindows(phv, query calendar.Date, defs []Definition) []Name {
	months := calendar.WholeMonthsBetween(phv, query)
	active := make([]Name, 0, len(defs))
	for _, d := range defs {
		if d.Contains(months) {
			active = append(active, d.Name)
		}
	}
	return active
}
