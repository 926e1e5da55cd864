package wam

import (
	"sort"
	"strings"

	"github.com/pdfwam/pdfwam/pkg/pdfcpu/types"
)

// runBattery evaluates every document-wide (non-structure-walk) test: the
// ones that look at metadata, page content streams, or the presence of
// particular top-level document constructs rather than a specific
// structure element. Structure-driven tests (wcag.pdf.06/12/01) were
// already folded into ds.results by the indicatorHandler during the walk.
func runBattery(ds *docState, f Facade) error {
	testTitlePresent(ds, f)
	testLanguageSpecified(ds, f)
	testOutlinePresent(ds, f)
	testTabOrder(ds, f)
	testHeadingOrder(ds, f)
	testStructureTreePresent(ds, f)
	testScannedDocument(ds, f)
	testEncryptionPermissions(ds, f)
	testReadingOrderArtifacts(ds, f)
	testPageLabels(ds, f)
	testSubmitButtons(ds, f)
	testHyperlinks(ds, f)
	return nil
}

// wcag.pdf.18: document title present in /Info, per the original's title
// AWAM (set_awam_id('wcag.pdf.18', len(title) > 0)).
func testTitlePresent(ds *docState, f Facade) {
	title, ok := f.Metadata("Title")
	if ok && strings.TrimSpace(title) != "" {
		ds.results.set("wcag.pdf.18", Location{Page: 0}, IntValue(StatusPass))
		return
	}
	ds.results.set("wcag.pdf.18", Location{Page: 0}, IntValue(StatusFail))
}

// wcag.pdf.02: document outline (bookmarks) present.
func testOutlinePresent(ds *docState, f Facade) {
	outline, err := f.Outline()
	if err != nil || outline == nil || len(outline.Kids) == 0 {
		ds.results.set("wcag.pdf.02", Location{Page: 0}, IntValue(StatusFail))
		return
	}
	ds.results.set("wcag.pdf.02", Location{Page: 0}, IntValue(StatusPass))
}

// wcag.pdf.16: natural language specified at the catalog level (/Lang).
func testLanguageSpecified(ds *docState, f Facade) {
	if lang, ok := catalogLang(f); ok && strings.TrimSpace(lang) != "" {
		ds.results.set("wcag.pdf.16", Location{Page: 0}, IntValue(StatusPass))
		return
	}
	ds.results.set("wcag.pdf.16", Location{Page: 0}, IntValue(StatusFail))
}

// wcag.pdf.03: tab and reading order. A tagged document is an automatic
// pass (the original defers to the structure tree rather than splitting
// this test further); otherwise every page's /Tabs entry must equal /S.
func testTabOrder(ds *docState, f Facade) {
	if ds.structTreeRootFound {
		ds.results.set("wcag.pdf.03", Location{Page: 0}, IntValue(StatusPass))
		return
	}

	n := f.PageCount()
	for i := 0; i < n; i++ {
		d, err := f.PageDict(i)
		if err != nil || d == nil {
			ds.results.set("wcag.pdf.03", Location{Page: i + 1}, IntValue(StatusFail))
			return
		}
		if tabs := d.NameEntry("Tabs"); tabs == nil || *tabs != "S" {
			ds.results.set("wcag.pdf.03", Location{Page: i + 1}, IntValue(StatusFail))
			return
		}
	}
	ds.results.set("wcag.pdf.03", Location{Page: 0}, IntValue(StatusPass))
}

// egovmon.pdf.03: a structure tree exists at all.
func testStructureTreePresent(ds *docState, f Facade) {
	if ds.structTreeRootFound {
		ds.results.set("egovmon.pdf.03", Location{Page: 0}, IntValue(StatusPass))
		return
	}
	ds.results.set("egovmon.pdf.03", Location{Page: 0}, IntValue(StatusFail))
}

// wcag.pdf.09: heading levels (H1..H6) must not skip a level (H1 -> H3
// without an intervening H2), checked in page order across the document,
// using the structure tree's numbers tree to group headers by the page
// they belong to rather than relying on walk order alone. Per
// document_headers_consistent, the very first heading in the document
// must be an H1.
func testHeadingOrder(ds *docState, f Facade) {
	if len(ds.headings) == 0 {
		ds.results.set("wcag.pdf.09", Location{Page: 0}, IntValue(StatusNotApplicable))
		return
	}

	headers := ds.collectHeaders()

	pages := make([]int, 0, len(headers))
	for pg, hs := range headers {
		if len(hs) > 0 {
			pages = append(pages, pg)
		}
	}
	sort.Ints(pages)
	if len(pages) == 0 {
		ds.results.set("wcag.pdf.09", Location{Page: 0}, IntValue(StatusNotApplicable))
		return
	}

	firstPage := pages[0]
	if headingLevel(headers[firstPage][0].s) != 1 {
		ds.results.set("wcag.pdf.09", Location{Page: firstPage}, IntValue(StatusFail))
		return
	}

	lprev := 0
	for _, pg := range pages {
		for _, h := range headers[pg] {
			lvl := headingLevel(h.s)
			if lvl == 0 {
				continue
			}
			if lprev != 0 && lvl > lprev+1 {
				ds.results.set("wcag.pdf.09", Location{Page: pg}, IntValue(StatusFail))
				return
			}
			lprev = lvl
		}
	}
	ds.results.set("wcag.pdf.09", Location{Page: 0}, IntValue(StatusPass))
}

func headingLevel(s string) int {
	if len(s) != 2 || s[0] != 'H' {
		return 0
	}
	if s[1] < '1' || s[1] > '6' {
		return 0
	}
	return int(s[1] - '0')
}

// egovmon.pdf.08: scanned-image document detection, keyed off a handful of
// known scan-tool Producer strings (Adobe PDF Scan Library and friends).
var scannerProducers = []string{
	"adobe pdf scan library",
	"scansoft",
	"abbyy",
}

func testScannedDocument(ds *docState, f Facade) {
	if producer, ok := f.Metadata("Producer"); ok {
		lower := strings.ToLower(producer)
		for _, p := range scannerProducers {
			if strings.Contains(lower, p) {
				ds.results.set("egovmon.pdf.08", Location{Page: 0}, IntValue(StatusFail))
				return
			}
		}
	}
	ds.results.set("egovmon.pdf.08", Location{Page: 0}, IntValue(StatusPass))
}

// egovmon.pdf.05: encrypted documents must not strip the accessibility
// permission bit from the standard security handler's /P entry. An
// unencrypted document passes trivially. Per the original: revision 2
// checks only bit 5 (0x10); revision >= 3 accepts bit 5 OR bit 10 (0x200).
func testEncryptionPermissions(ds *docState, f Facade) {
	trailer := f.Trailer()
	encObj, ok := trailer.Find("Encrypt")
	if !ok {
		ds.results.set("egovmon.pdf.05", Location{Page: 0}, IntValue(StatusPass))
		return
	}
	resolved, err := f.Resolve(encObj)
	if err != nil {
		ds.results.set("egovmon.pdf.05", Location{Page: 0}, IntValue(StatusFail))
		return
	}
	ed, ok := resolved.(types.Dict)
	if !ok {
		ds.results.set("egovmon.pdf.05", Location{Page: 0}, IntValue(StatusFail))
		return
	}

	revision := 2
	if rv := ed.IntEntry("R"); rv != nil {
		revision = *rv
	}
	permissions := 1
	if p := ed.IntEntry("P"); p != nil {
		permissions = *p
	}

	const (
		bit5  = 0x10
		bit10 = 0x200
	)
	var pass bool
	if revision == 2 {
		pass = permissions&bit5 != 0
	} else {
		pass = permissions&(bit5|bit10) != 0
	}
	if pass {
		ds.results.set("egovmon.pdf.05", Location{Page: 0}, IntValue(StatusPass))
		return
	}
	ds.results.set("egovmon.pdf.05", Location{Page: 0}, IntValue(StatusFail))
}

// wcag.pdf.04: content not part of the reading order must be tagged
// /Artifact so it isn't announced once per page.
func testReadingOrderArtifacts(ds *docState, f Facade) {
	n := f.PageCount()
	if n == 0 {
		return
	}
	anyArtifacts := false
	for i := 0; i < n; i++ {
		tokens, err := f.ContentStream(i)
		if err != nil {
			continue
		}
		if artifactElements(tokens) > 0 {
			anyArtifacts = true
		}
	}
	if anyArtifacts {
		ds.results.set("wcag.pdf.04", Location{Page: 0}, IntValue(StatusPass))
	} else {
		ds.results.set("wcag.pdf.04", Location{Page: 0}, IntValue(StatusNotApplicable))
	}
}

// validPageLabelStyles are the /S values a /PageLabels /Nums entry may
// carry, per document_has_consistent_page_numbers.
var validPageLabelStyles = map[string]bool{
	"D": true, "r": true, "R": true, "A": true, "a": true,
}

// wcag.pdf.17: consistent page numbering between the viewer's page
// controls and the document's own numbering, via the catalog's
// /PageLabels/Nums entry. N/A when the catalog has no /PageLabels at all.
func testPageLabels(ds *docState, f Facade) {
	root := f.RootDict()
	if root == nil {
		ds.results.set("wcag.pdf.17", Location{Page: 0}, IntValue(StatusNotApplicable))
		return
	}
	pl, err := resolveDictEntry(f, root, "PageLabels")
	if err != nil || pl == nil {
		ds.results.set("wcag.pdf.17", Location{Page: 0}, IntValue(StatusNotApplicable))
		return
	}

	numsObj, ok := pl.Find("Nums")
	if !ok {
		ds.results.set("wcag.pdf.17", Location{Page: 0}, IntValue(StatusFail))
		return
	}
	resolvedNums, err := f.Resolve(numsObj)
	if err != nil {
		ds.results.set("wcag.pdf.17", Location{Page: 0}, IntValue(StatusFail))
		return
	}
	nums, ok := resolvedNums.(types.Array)
	if !ok || len(nums)%2 != 0 {
		ds.results.set("wcag.pdf.17", Location{Page: 0}, IntValue(StatusFail))
		return
	}

	hasZeroKey := false
	for i := 0; i < len(nums); i += 2 {
		if n, ok := numberValue(nums[i]); ok && n == 0 {
			hasZeroKey = true
		}

		entry, err := f.Resolve(nums[i+1])
		if err != nil {
			ds.results.set("wcag.pdf.17", Location{Page: 0}, IntValue(StatusFail))
			return
		}
		ed, ok := entry.(types.Dict)
		if !ok {
			ds.results.set("wcag.pdf.17", Location{Page: 0}, IntValue(StatusFail))
			return
		}
		s := ed.NameEntry("S")
		if s == nil || !validPageLabelStyles[*s] {
			ds.results.set("wcag.pdf.17", Location{Page: 0}, IntValue(StatusFail))
			return
		}
	}
	if !hasZeroKey {
		ds.results.set("wcag.pdf.17", Location{Page: 0}, IntValue(StatusFail))
		return
	}
	ds.results.set("wcag.pdf.17", Location{Page: 0}, IntValue(StatusPass))
}

func numberValue(o types.Object) (int, bool) {
	switch v := o.(type) {
	case types.Integer:
		return int(v), true
	case types.Float:
		return int(v), true
	}
	return 0, false
}

// wcag.pdf.15: a form with a submit (push) button must have the button
// configured in a way that's accessible: either an /MK/CA caption, or, for
// a JavaScript-driven submit action, a non-empty /JS. N/A when the
// document has no /AcroForm or no push-button field at all. Per the
// original's document_has_accessible_submit_buttons, only the first
// push-button field found decides the whole test.
func testSubmitButtons(ds *docState, f Facade) {
	form := acroForm(f)
	if form == nil {
		ds.results.set("wcag.pdf.15", Location{Page: 0}, IntValue(StatusNotApplicable))
		return
	}

	for _, fd := range collectFormFields(f, form) {
		ff := fd.IntEntry("Ff")
		if ff == nil || *ff != 65536 {
			continue
		}

		if mk, err := resolveDictEntry(f, fd, "MK"); err == nil && mk != nil {
			if _, hasCA := mk.Find("CA"); hasCA {
				ds.results.set("wcag.pdf.15", Location{Page: 0}, IntValue(StatusPass))
				return
			}
		}

		if s := fd.NameEntry("S"); s != nil && strings.EqualFold(*s, "JavaScript") {
			if _, hasJS := fd.Find("JS"); !hasJS {
				ds.results.set("wcag.pdf.15", Location{Page: 0}, IntValue(StatusFail))
				return
			}
		}

		ds.results.set("wcag.pdf.15", Location{Page: 0}, IntValue(StatusPass))
		return
	}

	ds.results.set("wcag.pdf.15", Location{Page: 0}, IntValue(StatusNotApplicable))
}

func acroForm(f Facade) types.Dict {
	root := f.RootDict()
	if root == nil {
		return nil
	}
	d, err := resolveDictEntry(f, root, "AcroForm")
	if err != nil {
		return nil
	}
	return d
}

// collectFormFields flattens /AcroForm's /Fields tree, yielding every
// field dict reached including compound fields and their /Kids,
// grounded on pdfstruct.py's fetch_form_fields/_fetch_form_fields.
func collectFormFields(f Facade, form types.Dict) []types.Dict {
	fieldsObj, ok := form.Find("Fields")
	if !ok {
		return nil
	}
	fields, err := f.Resolve(fieldsObj)
	if err != nil {
		return nil
	}
	arr, ok := fields.(types.Array)
	if !ok {
		return nil
	}
	var out []types.Dict
	for _, fo := range arr {
		out = appendFormField(f, fo, out)
	}
	return out
}

func appendFormField(f Facade, fo types.Object, out []types.Dict) []types.Dict {
	resolved, err := f.Resolve(fo)
	if err != nil {
		return out
	}
	fd, ok := resolved.(types.Dict)
	if !ok {
		return out
	}
	out = append(out, fd)

	kidsObj, ok := fd.Find("Kids")
	if !ok {
		return out
	}
	kids, err := f.Resolve(kidsObj)
	if err != nil {
		return out
	}
	karr, ok := kids.(types.Array)
	if !ok {
		return out
	}
	for _, k := range karr {
		out = appendFormField(f, k, out)
	}
	return out
}

// externalLinkAnnotation is one page /Link annotation carrying an
// external (/A/URI) destination.
type externalLinkAnnotation struct {
	page int
	ref  types.IndirectRef
	dict types.Dict
}

// collectExternalLinks scans every page's /Annots for /Link annotations
// whose /A action has a /URI entry, grounded on get_external_links.
func collectExternalLinks(f Facade) []externalLinkAnnotation {
	var links []externalLinkAnnotation
	n := f.PageCount()
	for i := 0; i < n; i++ {
		d, err := f.PageDict(i)
		if err != nil || d == nil {
			continue
		}
		annotsObj, ok := d.Find("Annots")
		if !ok {
			continue
		}
		annots, err := f.Resolve(annotsObj)
		if err != nil {
			continue
		}
		arr, ok := annots.(types.Array)
		if !ok {
			continue
		}
		for _, a := range arr {
			ref, isRef := a.(types.IndirectRef)
			if !isRef {
				continue
			}
			resolved, err := f.Resolve(a)
			if err != nil {
				continue
			}
			ad, ok := resolved.(types.Dict)
			if !ok {
				continue
			}
			if sub := ad.NameEntry("Subtype"); sub == nil || *sub != "Link" {
				continue
			}
			action, err := resolveDictEntry(f, ad, "A")
			if err != nil || action == nil || action.StringEntry("URI") == nil {
				continue
			}
			links = append(links, externalLinkAnnotation{page: i + 1, ref: ref, dict: ad})
		}
	}
	return links
}

// wcag.pdf.sc244: combines PDF.11 (every external link annotation must be
// reachable from the structure tree's /Link -> /OBJR chain, i.e. be
// properly tagged) and PDF.13 (that annotation must carry a non-empty
// /Alt). Combined per the original's get_dict: fail is the min of the two
// sub-tests' fail counts, pass the max of their pass counts. N/A when the
// document has no external links at all; an automatic fail when external
// links exist but there is no structure tree to tag them with.
func testHyperlinks(ds *docState, f Facade) {
	links := collectExternalLinks(f)
	if len(links) == 0 {
		ds.results.set("wcag.pdf.sc244", Location{Page: 0}, IntValue(StatusNotApplicable))
		return
	}
	if !ds.structTreeRootFound {
		ds.results.set("wcag.pdf.sc244", Location{Page: 0}, IntValue(StatusFail))
		return
	}

	var pass11, fail11, pass13, fail13 int
	for _, l := range links {
		_, hasRect := l.dict.Find("Rect")
		if ds.linkAnnotRefs[l.ref] && hasRect {
			pass11++
		} else {
			fail11++
		}

		if alt := l.dict.StringLiteralEntry("Alt"); alt != nil && len(string(*alt)) > 0 {
			pass13++
		} else {
			fail13++
		}
	}

	fail := fail11
	if fail13 < fail {
		fail = fail13
	}
	pass := pass11
	if pass13 > pass {
		pass = pass13
	}

	count := 0
	for i := 0; i < fail; i++ {
		count++
		ds.results.set("wcag.pdf.sc244", Location{Page: 0, Count: count}, IntValue(StatusFail))
	}
	for i := 0; i < pass; i++ {
		count++
		ds.results.set("wcag.pdf.sc244", Location{Page: 0, Count: count}, IntValue(StatusPass))
	}
}

// TestRunningHeaders is an opt-in-only check (PDF.14): running headers and
// footers repeated on every page should be tagged /Artifact rather than
// real content, so they don't get read aloud once per page. Never called
// by the default Analyze battery; a caller wires it in explicitly.
func TestRunningHeaders(f Facade) (pass bool, err error) {
	n := f.PageCount()
	if n < 2 {
		return true, nil
	}
	var first, second []string
	for i := 0; i < n && i < 2; i++ {
		tokens, terr := f.ContentStream(i)
		if terr != nil {
			return true, nil
		}
		text := extractText(tokens)
		lines := strings.Split(text, "\n")
		if len(lines) == 0 {
			continue
		}
		if i == 0 {
			first = lines
		} else {
			second = lines
		}
	}
	if len(first) == 0 || len(second) == 0 {
		return true, nil
	}
	return first[0] != second[0], nil
}
