package wam

import (
	"github.com/pdfwam/pdfwam/pkg/pdfcpu/types"
	"testing"
)

func newHandler() (*docState, *indicatorHandler) {
	ds := newDS()
	tc := newTableChecker()
	return ds, newIndicatorHandler(ds, tc)
}

// Scenario 1: an image structure element with a non-empty /Alt passes
// wcag.pdf.01 (plain id, not the sc244 hyperlink id).
func TestHandleFigureWithAltPasses(t *testing.T) {
	ds, h := newHandler()
	e := &structElement{
		s:    "Figure",
		page: 1,
		dict: types.Dict{"Alt": types.StringLiteral("a chart of sales")},
	}
	h.handleFigure(e)

	v, n := statusOf(ds, "wcag.pdf.01")
	if n != 1 || v.Int != StatusPass {
		t.Errorf("got n=%d status=%d, want n=1 status=Pass", n, v.Int)
	}
	if _, ok := ds.results["wcag.pdf.sc244"]; ok {
		t.Errorf("handleFigure must not write wcag.pdf.sc244")
	}
}

func TestHandleFigureWithActualTextPasses(t *testing.T) {
	ds, h := newHandler()
	e := &structElement{
		s:    "Figure",
		page: 1,
		dict: types.Dict{"ActualText": types.StringLiteral("a chart of sales")},
	}
	h.handleFigure(e)

	v, _ := statusOf(ds, "wcag.pdf.01")
	if v.Int != StatusPass {
		t.Errorf("got %d, want Pass", v.Int)
	}
}

func TestHandleFigureWithNeitherFails(t *testing.T) {
	ds, h := newHandler()
	e := &structElement{
		s:    "Figure",
		page: 1,
		dict: types.Dict{},
	}
	h.handleFigure(e)

	v, _ := statusOf(ds, "wcag.pdf.01")
	if v.Int != StatusFail {
		t.Errorf("got %d, want Fail", v.Int)
	}
}

// Scenario 6: a form field's widget has a non-empty /V -> Pass; empty /V
// -> Fail.
func TestHandleFormWithValuePasses(t *testing.T) {
	ds, h := newHandler()
	widgetRef := types.IndirectRef{ObjectNumber: 9}
	ds.facade = &fakeFacade{objects: map[types.IndirectRef]types.Object{
		widgetRef: types.Dict{"V": types.StringLiteral("Jane Doe")},
	}}
	e := &structElement{s: "Form", page: 1, dict: types.Dict{"K": widgetRef}}
	h.handleForm(e)

	v, _ := statusOf(ds, "wcag.pdf.12")
	if v.Int != StatusPass {
		t.Errorf("got %d, want Pass", v.Int)
	}
}

func TestHandleFormWithEmptyValueFails(t *testing.T) {
	ds, h := newHandler()
	widgetRef := types.IndirectRef{ObjectNumber: 9}
	ds.facade = &fakeFacade{objects: map[types.IndirectRef]types.Object{
		widgetRef: types.Dict{"V": types.StringLiteral("")},
	}}
	e := &structElement{s: "Form", page: 1, dict: types.Dict{"K": widgetRef}}
	h.handleForm(e)

	v, _ := statusOf(ds, "wcag.pdf.12")
	if v.Int != StatusFail {
		t.Errorf("got %d, want Fail", v.Int)
	}
}

func TestHandleFormWithNoKFails(t *testing.T) {
	ds, h := newHandler()
	e := &structElement{s: "Form", page: 1, dict: types.Dict{}}
	h.handleForm(e)

	v, _ := statusOf(ds, "wcag.pdf.12")
	if v.Int != StatusFail {
		t.Errorf("got %d, want Fail", v.Int)
	}
}

// A table that sees an unexpected structure type directly under /Table
// latches Invalid permanently, even once later rows/cells look fine, per
// the design's "Invalid latches permanently" invariant.
func TestTableInvalidLatchesPermanently(t *testing.T) {
	tc := newTableChecker()
	tableRoot := &structElement{
		ref:  types.IndirectRef{ObjectNumber: 1},
		s:    "Table",
		page: 1,
		dict: types.Dict{},
	}
	tc.observe(tableRoot)

	// A /P directly under /Table isn't part of the row/cell lattice and
	// latches Invalid.
	stray := &structElement{
		ref:    types.IndirectRef{ObjectNumber: 2},
		s:      "P",
		page:   1,
		dict:   types.Dict{},
		parent: tableRoot,
	}
	tc.observe(stray)

	root := identityOf(tableRoot)
	if !tc.isInvalid(root) {
		t.Fatalf("table should be invalid after an unexpected child type")
	}

	// A subsequent well-formed row/header must not clear the latch.
	row := &structElement{
		ref:    types.IndirectRef{ObjectNumber: 3},
		s:      "TR",
		page:   1,
		dict:   types.Dict{},
		parent: tableRoot,
	}
	header := &structElement{
		ref:    types.IndirectRef{ObjectNumber: 4},
		s:      "TH",
		page:   1,
		dict:   types.Dict{},
		parent: row,
	}
	tc.observe(row)
	tc.observe(header)

	if !tc.isInvalid(root) {
		t.Errorf("table must remain invalid once latched, even with a later valid header")
	}
}
