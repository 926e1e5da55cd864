package wam

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pdfwam/pdfwam/pkg/pdfcpu/model"
	"github.com/pdfwam/pdfwam/pkg/pdfcpu/types"
)

// Scenario 1: a tagged single-page document with one /Figure carrying
// /Alt reports wcag.pdf.01 {Pass: 1}.
func TestAnalyzeScenario1ImageWithAltPasses(t *testing.T) {
	f := newFakeFacade()
	f.metadata["Title"] = "Annual Report"
	f.metadata["Producer"] = "pdfwam test fixture"

	figRef := f.ref(types.Dict{"S": types.Name("Figure"), "Alt": types.StringLiteral("a bar chart")})
	f.root = types.Dict{
		"StructTreeRoot": f.ref(types.Dict{"K": figRef}),
	}
	f.pages = []types.Dict{types.NewDict()}

	report, err := Analyze(context.Background(), f, "", Config{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	row := findRow(report, "wcag.pdf.01")
	if row == nil {
		t.Fatalf("wcag.pdf.01 missing from report")
	}
	if !row.Status.Counted || row.Status.Pass != 1 || row.Status.Fail != 0 {
		t.Errorf("got %+v, want counted Pass:1 Fail:0", row.Status)
	}
}

// Scenario 2: presence/absence of an outline controls wcag.pdf.02.
func TestAnalyzeScenario2OutlinePresence(t *testing.T) {
	f := newFakeFacade()
	f.pages = []types.Dict{types.NewDict()}
	f.outline = &model.Bookmarks{Kids: []model.Bookmarks{{Title: "Chapter 1"}}}

	report, err := Analyze(context.Background(), f, "", Config{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	row := findRow(report, "wcag.pdf.02")
	if row == nil || row.Status.Scalar != StatusPass {
		t.Errorf("got %+v, want Pass with bookmarks present", row)
	}

	f2 := newFakeFacade()
	f2.pages = []types.Dict{types.NewDict()}
	report2, err := Analyze(context.Background(), f2, "", Config{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	row2 := findRow(report2, "wcag.pdf.02")
	if row2 == nil || row2.Status.Scalar != StatusFail {
		t.Errorf("got %+v, want Fail with no outline", row2)
	}
}

func findRow(r *Report, id string) *ResultRow {
	for i := range r.Result {
		if r.Result[i].Test == id {
			return &r.Result[i]
		}
	}
	return nil
}

// Every indicator id must appear exactly once in the final report (seeded
// by initialize, never silently dropped) for a minimal untagged document.
func TestAnalyzeReportsEveryIndicator(t *testing.T) {
	f := newFakeFacade()
	f.pages = []types.Dict{types.NewDict()}

	report, err := Analyze(context.Background(), f, "", Config{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	seen := map[string]bool{}
	for _, row := range report.Result {
		seen[row.Test] = true
	}
	for _, id := range indicatorIDs {
		if !seen[id] {
			t.Errorf("indicator %s missing from report", id)
		}
	}
}

// Report.Summary round-trips through JSON unchanged, and the per-row
// Status marshals to the right shape: a bare string for scalar
// Pass/Fail/N-A rows, an object for counted (per-occurrence) rows.
func TestReportJSONShape(t *testing.T) {
	f := newFakeFacade()
	f.metadata["Title"] = "Doc"
	figRef := f.ref(types.Dict{"S": types.Name("Figure"), "Alt": types.StringLiteral("x")})
	f.root = types.Dict{"StructTreeRoot": f.ref(types.Dict{"K": figRef})}
	f.pages = []types.Dict{types.NewDict()}

	report, err := Analyze(context.Background(), f, "", Config{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var generic struct {
		Result  []map[string]json.RawMessage `json:"result"`
		Summary Summary                      `json:"summary"`
	}
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if generic.Summary != report.Summary {
		t.Errorf("summary mismatch after round trip: got %+v, want %+v", generic.Summary, report.Summary)
	}
	if len(generic.Result) != len(report.Result) {
		t.Fatalf("result length mismatch: got %d, want %d", len(generic.Result), len(report.Result))
	}

	for i, row := range report.Result {
		raw := generic.Result[i]["Status"]
		if row.Status.Counted {
			var obj struct {
				Fail int
				Pass int
			}
			if err := json.Unmarshal(raw, &obj); err != nil {
				t.Errorf("row %s: counted status did not unmarshal as an object: %v", row.Test, err)
			}
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			t.Errorf("row %s: scalar status did not unmarshal as a string: %v", row.Test, err)
		}
	}
}

func TestAnalyzeContextCancellation(t *testing.T) {
	f := newFakeFacade()
	f.pages = []types.Dict{types.NewDict()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, f, "", Config{})
	if err == nil {
		t.Errorf("expected an error from a cancelled context")
	}
}
