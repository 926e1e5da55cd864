// Package wam implements the accessibility indicator analyzer: a
// depth-first walk of a PDF's logical structure tree followed by a battery
// of WCAG/eGovMon checks, folded into a report of pass/fail indicators.
package wam

import "fmt"

// Location identifies where an indicator result was observed: a 1-based
// page number (0 meaning "unknown" or "whole document") paired with an
// element or occurrence index.
type Location struct {
	Page  int
	Count int
}

func (l Location) String() string {
	return fmt.Sprintf("%d,%d", l.Page, l.Count)
}

// Value is the result recorded for an indicator at a Location: either an
// integer status (0 fail, 1 pass, 2 not-applicable) or a string, used by
// the EGOVMON.PDF.PROP.* metadata-carrier indicators.
type Value struct {
	Int    int
	Str    string
	IsText bool
}

// IntValue returns an integer-valued Value.
func IntValue(i int) Value { return Value{Int: i} }

// TextValue returns a string-valued Value.
func TextValue(s string) Value { return Value{Str: s, IsText: true} }

const (
	// StatusFail indicates the check failed at this location.
	StatusFail = 0
	// StatusPass indicates the check passed at this location.
	StatusPass = 1
	// StatusNotApplicable marks a test as not applicable to this document.
	StatusNotApplicable = 2
)

// ResultMap is the raw indicator result mapping: indicator id -> location -> value.
type ResultMap map[string]map[Location]Value

func newResultMap() ResultMap { return ResultMap{} }

func (m ResultMap) set(indicator string, loc Location, v Value) {
	locs, ok := m[indicator]
	if !ok {
		locs = map[Location]Value{}
		m[indicator] = locs
	}
	locs[loc] = v
}

// elementIdentity is used as a map key to track visited structure elements
// and figure/table bookkeeping by pointer-free identity (object number,
// generation).
type elementIdentity struct {
	objNr int
	genNr int
}

// TableRecord is the table-structure state-machine's per-table evaluation
// state (§4.4 in the design).
type TableRecord struct {
	Root    elementIdentity
	Current elementIdentity
	Prev    *elementIdentity
	Level   int
	Invalid bool
	Page    int
}
