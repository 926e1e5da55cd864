package wam

// Report is the JSON-serializable outcome of Analyze: one row per
// indicator occurrence plus a pass/fail summary, matching the reporter
// schema in the design doc.
type Report struct {
	Result  []ResultRow `json:"result"`
	Summary Summary     `json:"summary"`
}

// ResultRow is one reported row. Status is either "Pass", "Fail", or, for
// per-occurrence tests, a {"Fail": n, "Pass": n} object — represented here
// as StatusValue, whose MarshalJSON picks the right shape.
type ResultRow struct {
	Test        string      `json:"Test"`
	Status      StatusValue `json:"Status"`
	Description string      `json:"Description"`
}

// Summary totals every row's pass/fail contribution.
type Summary struct {
	Total int `json:"Total"`
	Fail  int `json:"Fail"`
	Pass  int `json:"Pass"`
}

// descriptions gives each short test id its human-readable report text,
// verbatim from test_id_desc in the original implementation.
var descriptions = map[string]string{
	"wcag.pdf.01":    "alt text for images",
	"wcag.pdf.02":    "bookmarks",
	"wcag.pdf.03":    "tab and reading order",
	"wcag.pdf.04":    "artifact images",
	"wcag.pdf.06":    "accessible tables",
	"wcag.pdf.09":    "consistent headers",
	"wcag.pdf.12":    "forms name/role/value",
	"wcag.pdf.15":    "submit buttons in forms",
	"wcag.pdf.16":    "natural language",
	"wcag.pdf.17":    "consistent page-numbers",
	"wcag.pdf.18":    "title",
	"wcag.pdf.sc244": "accessible external links",
	"egovmon.pdf.03": "structure tree",
	"egovmon.pdf.05": "permissions",
	"egovmon.pdf.08": "scanned",
}

// buildReport folds ds.results into the public Report shape.
func buildReport(ds *docState) *Report {
	r := &Report{}

	for _, id := range indicatorIDs {
		locs := ds.results[id]
		if len(locs) == 0 {
			continue
		}

		// initialize seeds every indicator with a placeholder Fail at
		// Location{0,0} so a check that never fires still reports a
		// definite result. Once a real occurrence has been recorded
		// elsewhere, the placeholder no longer reflects anything the
		// battery observed and must not count toward the indicator's
		// tally.
		if len(locs) > 1 {
			delete(locs, Location{Page: 0, Count: 0})
		}
		if len(locs) == 0 {
			continue
		}

		// Per-occurrence indicators record under Count >= 1 and report a
		// {Fail, Pass} object even for a single occurrence; document-wide
		// checks record under Count 0 and report a scalar.
		counted := false
		for loc := range locs {
			if loc.Count > 0 {
				counted = true
			}
		}

		if len(locs) == 1 && !counted {
			for _, v := range locs {
				r.Result = append(r.Result, ResultRow{
					Test:        id,
					Status:      statusFromValue(v),
					Description: descriptions[id],
				})
			}
			continue
		}

		pass, fail := 0, 0
		for _, v := range locs {
			if v.Int == StatusPass {
				pass++
			} else if v.Int == StatusFail {
				fail++
			}
		}
		r.Result = append(r.Result, ResultRow{
			Test:        id,
			Status:      StatusValue{Counted: true, Pass: pass, Fail: fail},
			Description: descriptions[id],
		})
	}

	for _, id := range propertyIDs {
		locs := ds.results[id]
		for _, v := range locs {
			r.Result = append(r.Result, ResultRow{
				Test:        id,
				Status:      StatusValue{IsText: true, Text: v.Str},
				Description: descriptions[id],
			})
		}
	}

	for _, row := range r.Result {
		if row.Status.IsText {
			continue
		}
		if row.Status.Counted {
			r.Summary.Pass += row.Status.Pass
			r.Summary.Fail += row.Status.Fail
			r.Summary.Total += row.Status.Pass + row.Status.Fail
			continue
		}
		r.Summary.Total++
		switch row.Status.Scalar {
		case StatusPass:
			r.Summary.Pass++
		case StatusFail:
			r.Summary.Fail++
		}
	}

	return r
}

func statusFromValue(v Value) StatusValue {
	if v.IsText {
		return StatusValue{IsText: true, Text: v.Str}
	}
	return StatusValue{Scalar: v.Int}
}
