package wam

import (
	"testing"

	"github.com/pdfwam/pdfwam/pkg/pdfcpu/types"
)

// Scenario 3: encrypted, revision 2, bit 5 set -> Pass; bit 5 cleared ->
// Fail; revision 3 with bit 10 set but bit 5 cleared -> Pass.
func TestEncryptionPermissionsRevisionBitLogic(t *testing.T) {
	cases := []struct {
		name       string
		revision   int
		perms      int
		wantStatus int
	}{
		{"r2 bit5 set", 2, 0x10, StatusPass},
		{"r2 bit5 cleared", 2, 0x00, StatusFail},
		{"r2 bit10 only, no bit5", 2, 0x200, StatusFail},
		{"r3 bit10 set bit5 cleared", 3, 0x200, StatusPass},
		{"r3 neither bit set", 3, 0x00, StatusFail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeFacade()
			encDict := types.Dict{"R": types.Integer(tc.revision), "P": types.Integer(tc.perms)}
			f.trailer = types.Dict{"Encrypt": f.ref(encDict)}

			ds := newDS()
			testEncryptionPermissions(ds, f)

			v, n := statusOf(ds, "egovmon.pdf.05")
			if n != 1 {
				t.Fatalf("expected exactly one result, got %d", n)
			}
			if v.Int != tc.wantStatus {
				t.Errorf("got status %d, want %d", v.Int, tc.wantStatus)
			}
		})
	}
}

func TestEncryptionPermissionsNoEncryptDict(t *testing.T) {
	f := newFakeFacade()
	ds := newDS()
	testEncryptionPermissions(ds, f)

	v, _ := statusOf(ds, "egovmon.pdf.05")
	if v.Int != StatusPass {
		t.Errorf("unencrypted document should pass, got %d", v.Int)
	}
}

// Scenario 4: scanned single-page document whose producer is "Adobe PDF
// Scan Library" -> Fail.
func TestScannedDocumentProducerHeuristic(t *testing.T) {
	f := newFakeFacade()
	f.metadata["Producer"] = "Adobe PDF Scan Library 4.2"
	ds := newDS()

	testScannedDocument(ds, f)

	v, _ := statusOf(ds, "egovmon.pdf.08")
	if v.Int != StatusFail {
		t.Errorf("got %d, want Fail for a known scanner producer", v.Int)
	}
}

func TestScannedDocumentOrdinaryProducerPasses(t *testing.T) {
	f := newFakeFacade()
	f.metadata["Producer"] = "pdfwam test fixture"
	ds := newDS()

	testScannedDocument(ds, f)

	v, _ := statusOf(ds, "egovmon.pdf.08")
	if v.Int != StatusPass {
		t.Errorf("got %d, want Pass for an ordinary producer string", v.Int)
	}
}

// Scenario 5: headers on page 1 are H1, page 2 introduces H3 directly ->
// Fail with failing page = 2. Exercises collectHeaders grouping by the
// numbers tree, not by flat walk order.
func TestHeadingOrderSkipDetectedViaNumbersTree(t *testing.T) {
	f := newFakeFacade()
	f.pages = []types.Dict{types.NewDict(), types.NewDict()}

	h1Ref := f.ref(types.Dict{"S": types.Name("H1")})
	h3Ref := f.ref(types.Dict{"S": types.Name("H3")})

	strRoot := types.Dict{
		"K": types.Array{h1Ref, h3Ref},
		"ParentTree": types.Dict{
			"Nums": types.Array{types.Integer(0), h1Ref, types.Integer(1), h3Ref},
		},
	}

	ds := newDS()
	ds.facade = f
	ds.structTreeRootFound = true
	ds.structTreeRootRef = strRoot["K"]
	ds.numsTree = buildNumbersTree(f, strRoot)

	if err := ds.walkStructureTree(func(e *structElement) {
		if e.s == "H1" || e.s == "H3" {
			ds.headings = append(ds.headings, e)
		}
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	testHeadingOrder(ds, f)

	locs := ds.results["wcag.pdf.09"]
	if len(locs) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(locs))
	}
	for loc, v := range locs {
		if v.Int != StatusFail {
			t.Errorf("got status %d, want Fail", v.Int)
		}
		if loc.Page != 2 {
			t.Errorf("got failing page %d, want 2", loc.Page)
		}
	}
}

func TestHeadingOrderNoHeadingsIsNotApplicable(t *testing.T) {
	ds := newDS()
	f := newFakeFacade()
	testHeadingOrder(ds, f)

	v, _ := statusOf(ds, "wcag.pdf.09")
	if v.Int != StatusNotApplicable {
		t.Errorf("got %d, want N/A when no headings were found", v.Int)
	}
}

func TestHeadingOrderConsistentPassesViaWalkFallback(t *testing.T) {
	// No numbers tree at all (no /ParentTree): collectHeaders falls back
	// to grouping the walk's own page attribution.
	ds := newDS()
	ds.headings = []*structElement{
		{s: "H1", page: 1},
		{s: "H2", page: 1},
		{s: "H2", page: 2},
	}
	testHeadingOrder(ds, &fakeFacade{})

	v, _ := statusOf(ds, "wcag.pdf.09")
	if v.Int != StatusPass {
		t.Errorf("got %d, want Pass for a consistent heading sequence", v.Int)
	}
}

func TestPageLabels(t *testing.T) {
	validStyle := func() types.Dict { return types.Dict{"S": types.Name("D")} }

	t.Run("no PageLabels is not applicable", func(t *testing.T) {
		f := newFakeFacade()
		f.root = types.NewDict()
		ds := newDS()
		testPageLabels(ds, f)
		v, _ := statusOf(ds, "wcag.pdf.17")
		if v.Int != StatusNotApplicable {
			t.Errorf("got %d, want N/A", v.Int)
		}
	})

	t.Run("valid Nums passes", func(t *testing.T) {
		f := newFakeFacade()
		f.root = types.Dict{"PageLabels": types.Dict{
			"Nums": types.Array{types.Integer(0), validStyle()},
		}}
		ds := newDS()
		testPageLabels(ds, f)
		v, _ := statusOf(ds, "wcag.pdf.17")
		if v.Int != StatusPass {
			t.Errorf("got %d, want Pass", v.Int)
		}
	})

	t.Run("odd length fails", func(t *testing.T) {
		f := newFakeFacade()
		f.root = types.Dict{"PageLabels": types.Dict{
			"Nums": types.Array{types.Integer(0)},
		}}
		ds := newDS()
		testPageLabels(ds, f)
		v, _ := statusOf(ds, "wcag.pdf.17")
		if v.Int != StatusFail {
			t.Errorf("got %d, want Fail", v.Int)
		}
	})

	t.Run("missing key 0 fails", func(t *testing.T) {
		f := newFakeFacade()
		f.root = types.Dict{"PageLabels": types.Dict{
			"Nums": types.Array{types.Integer(1), validStyle()},
		}}
		ds := newDS()
		testPageLabels(ds, f)
		v, _ := statusOf(ds, "wcag.pdf.17")
		if v.Int != StatusFail {
			t.Errorf("got %d, want Fail", v.Int)
		}
	})

	t.Run("invalid style value fails", func(t *testing.T) {
		f := newFakeFacade()
		f.root = types.Dict{"PageLabels": types.Dict{
			"Nums": types.Array{types.Integer(0), types.Dict{"S": types.Name("bogus")}},
		}}
		ds := newDS()
		testPageLabels(ds, f)
		v, _ := statusOf(ds, "wcag.pdf.17")
		if v.Int != StatusFail {
			t.Errorf("got %d, want Fail", v.Int)
		}
	})
}

func TestTabOrderTaggedDocumentAutoPasses(t *testing.T) {
	ds := newDS()
	ds.structTreeRootFound = true
	testTabOrder(ds, newFakeFacade())
	v, _ := statusOf(ds, "wcag.pdf.03")
	if v.Int != StatusPass {
		t.Errorf("got %d, want Pass for a tagged document", v.Int)
	}
}

func TestTabOrderUntaggedDocumentChecksTabsAttribute(t *testing.T) {
	structured := types.Dict{"Tabs": types.Name("S")}
	unstructured := types.Dict{}

	f := newFakeFacade()
	f.pages = []types.Dict{structured, structured}
	ds := newDS()
	testTabOrder(ds, f)
	v, _ := statusOf(ds, "wcag.pdf.03")
	if v.Int != StatusPass {
		t.Errorf("got %d, want Pass when every page has /Tabs /S", v.Int)
	}

	f2 := newFakeFacade()
	f2.pages = []types.Dict{structured, unstructured}
	ds2 := newDS()
	testTabOrder(ds2, f2)
	v2, _ := statusOf(ds2, "wcag.pdf.03")
	if v2.Int != StatusFail {
		t.Errorf("got %d, want Fail when a page is missing /Tabs /S", v2.Int)
	}
}

func TestSubmitButtonsNoAcroFormIsNotApplicable(t *testing.T) {
	f := newFakeFacade()
	f.root = types.NewDict()
	ds := newDS()
	testSubmitButtons(ds, f)
	v, _ := statusOf(ds, "wcag.pdf.15")
	if v.Int != StatusNotApplicable {
		t.Errorf("got %d, want N/A with no /AcroForm", v.Int)
	}
}

func TestSubmitButtonsMKCAPasses(t *testing.T) {
	f := newFakeFacade()
	btn := types.Dict{
		"Ff": types.Integer(65536),
		"MK": types.Dict{"CA": types.StringLiteral("Submit")},
	}
	f.root = types.Dict{"AcroForm": types.Dict{
		"Fields": types.Array{f.ref(btn)},
	}}
	ds := newDS()
	testSubmitButtons(ds, f)
	v, _ := statusOf(ds, "wcag.pdf.15")
	if v.Int != StatusPass {
		t.Errorf("got %d, want Pass", v.Int)
	}
}

func TestSubmitButtonsJavaScriptWithoutJSFails(t *testing.T) {
	f := newFakeFacade()
	btn := types.Dict{
		"Ff": types.Integer(65536),
		"S":  types.Name("JavaScript"),
	}
	f.root = types.Dict{"AcroForm": types.Dict{
		"Fields": types.Array{f.ref(btn)},
	}}
	ds := newDS()
	testSubmitButtons(ds, f)
	v, _ := statusOf(ds, "wcag.pdf.15")
	if v.Int != StatusFail {
		t.Errorf("got %d, want Fail for a JavaScript submit action missing /JS", v.Int)
	}
}

func TestSubmitButtonsNonPushButtonFieldIsNotApplicable(t *testing.T) {
	f := newFakeFacade()
	textField := types.Dict{"FT": types.Name("Tx")}
	f.root = types.Dict{"AcroForm": types.Dict{
		"Fields": types.Array{f.ref(textField)},
	}}
	ds := newDS()
	testSubmitButtons(ds, f)
	v, _ := statusOf(ds, "wcag.pdf.15")
	if v.Int != StatusNotApplicable {
		t.Errorf("got %d, want N/A with no push-button field", v.Int)
	}
}

func TestHyperlinksNoExternalLinksIsNotApplicable(t *testing.T) {
	ds := newDS()
	testHyperlinks(ds, newFakeFacade())
	v, _ := statusOf(ds, "wcag.pdf.sc244")
	if v.Int != StatusNotApplicable {
		t.Errorf("got %d, want N/A with no external links", v.Int)
	}
}

func TestHyperlinksExternalLinksWithoutStructTreeFails(t *testing.T) {
	f := newFakeFacade()
	linkAnnot := types.Dict{
		"Subtype": types.Name("Link"),
		"A":       types.Dict{"URI": types.StringLiteral("https://example.com")},
		"Rect":    types.Array{types.Integer(0), types.Integer(0), types.Integer(1), types.Integer(1)},
	}
	page := types.Dict{"Annots": types.Array{f.ref(linkAnnot)}}
	f.pages = []types.Dict{page}

	ds := newDS()
	testHyperlinks(ds, f)
	v, _ := statusOf(ds, "wcag.pdf.sc244")
	if v.Int != StatusFail {
		t.Errorf("got %d, want Fail: external links with no structure tree", v.Int)
	}
}

func TestHyperlinksCombinedFailMinPassMax(t *testing.T) {
	f := newFakeFacade()

	// Link 1: tagged (reachable + has /Rect) but no /Alt -> pass11, fail13.
	link1 := types.Dict{
		"Subtype": types.Name("Link"),
		"A":       types.Dict{"URI": types.StringLiteral("https://a.example")},
		"Rect":    types.Array{types.Integer(0), types.Integer(0), types.Integer(1), types.Integer(1)},
	}
	link1Ref := f.ref(link1)

	// Link 2: untagged (not reachable via /Link -> /OBJR) but has /Alt
	// -> fail11, pass13.
	link2 := types.Dict{
		"Subtype": types.Name("Link"),
		"A":       types.Dict{"URI": types.StringLiteral("https://b.example")},
		"Rect":    types.Array{types.Integer(0), types.Integer(0), types.Integer(1), types.Integer(1)},
		"Alt":     types.StringLiteral("Visit B"),
	}
	link2Ref := f.ref(link2)

	page := types.Dict{"Annots": types.Array{link1Ref, link2Ref}}
	f.pages = []types.Dict{page}

	ds := newDS()
	ds.structTreeRootFound = true
	ds.linkAnnotRefs = map[types.IndirectRef]bool{link1Ref: true}

	testHyperlinks(ds, f)

	pass, fail := tally(ds, "wcag.pdf.sc244")
	// fail11=1 (link2), fail13=1 (link1) -> fail=min(1,1)=1
	// pass11=1 (link1), pass13=1 (link2) -> pass=max(1,1)=1
	if fail != 1 || pass != 1 {
		t.Errorf("got pass=%d fail=%d, want pass=1 fail=1 (min/max combination)", pass, fail)
	}
}

func TestStructureTreePresent(t *testing.T) {
	ds := newDS()
	ds.structTreeRootFound = true
	testStructureTreePresent(ds, newFakeFacade())
	v, _ := statusOf(ds, "egovmon.pdf.03")
	if v.Int != StatusPass {
		t.Errorf("got %d, want Pass when structure tree is present", v.Int)
	}

	ds2 := newDS()
	testStructureTreePresent(ds2, newFakeFacade())
	v2, _ := statusOf(ds2, "egovmon.pdf.03")
	if v2.Int != StatusFail {
		t.Errorf("got %d, want Fail when structure tree is absent", v2.Int)
	}
}

// Locks in the id <-> test binding this package must report under, per
// test_id_desc in the original implementation: every id in indicatorIDs
// must have a non-empty description, and descriptions must not collide
// between unrelated tests.
func TestDescriptionsCoverEveryIndicator(t *testing.T) {
	for _, id := range indicatorIDs {
		if descriptions[id] == "" {
			t.Errorf("indicator %s has no description", id)
		}
	}
	if descriptions["wcag.pdf.01"] != "alt text for images" {
		t.Errorf("wcag.pdf.01 description = %q, want %q", descriptions["wcag.pdf.01"], "alt text for images")
	}
	if descriptions["wcag.pdf.18"] != "title" {
		t.Errorf("wcag.pdf.18 description = %q, want %q", descriptions["wcag.pdf.18"], "title")
	}
	if descriptions["wcag.pdf.16"] != "natural language" {
		t.Errorf("wcag.pdf.16 description = %q, want %q", descriptions["wcag.pdf.16"], "natural language")
	}
	if descriptions["wcag.pdf.17"] != "consistent page-numbers" {
		t.Errorf("wcag.pdf.17 description = %q, want %q", descriptions["wcag.pdf.17"], "consistent page-numbers")
	}
	if descriptions["wcag.pdf.15"] != "submit buttons in forms" {
		t.Errorf("wcag.pdf.15 description = %q, want %q", descriptions["wcag.pdf.15"], "submit buttons in forms")
	}
	if descriptions["egovmon.pdf.03"] != "structure tree" {
		t.Errorf("egovmon.pdf.03 description = %q, want %q", descriptions["egovmon.pdf.03"], "structure tree")
	}
}
