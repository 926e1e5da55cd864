package wam

import "github.com/pdfwam/pdfwam/pkg/pdfcpu/types"

// indicatorHandler folds one visited structure element into the result
// map, in the order each battery test needs: element counting, table
// dispatch, form-field value checks, and figure alt-text/actual-text
// evaluation.
type indicatorHandler struct {
	ds      *docState
	tables  *tableChecker
	counter map[string]int // per-indicator occurrence counter, resets per page via countKey
}

func newIndicatorHandler(ds *docState, tables *tableChecker) *indicatorHandler {
	return &indicatorHandler{ds: ds, tables: tables, counter: map[string]int{}}
}

// countKey returns the next occurrence index for indicator on page,
// per the design's decision that per-occurrence numbering resets per page.
func (h *indicatorHandler) countKey(indicator string, page int) int {
	key := indicator + "@" + itoa(page)
	h.counter[key]++
	return h.counter[key]
}

func (h *indicatorHandler) recordPass(indicator string, page int) {
	h.ds.results.set(indicator, Location{Page: page, Count: h.countKey(indicator, page)}, IntValue(StatusPass))
}

func (h *indicatorHandler) recordFail(indicator string, page int) {
	h.ds.results.set(indicator, Location{Page: page, Count: h.countKey(indicator, page)}, IntValue(StatusFail))
}

// handle is called once per structure element in document order.
func (h *indicatorHandler) handle(e *structElement) {
	h.tables.observe(e)

	switch e.s {
	case "Figure":
		h.handleFigure(e)
	case "Form":
		h.handleForm(e)
	case "Table":
		h.handleTableRoot(e)
	}
}

// handleFigure implements wcag.pdf.01: a /Figure needs either /Alt or
// /ActualText giving it a text alternative.
func (h *indicatorHandler) handleFigure(e *structElement) {
	if alt := e.dict.StringLiteralEntry("Alt"); alt != nil && len(string(*alt)) > 0 {
		h.recordPass("wcag.pdf.01", e.page)
		return
	}
	if at := e.dict.StringLiteralEntry("ActualText"); at != nil && len(string(*at)) > 0 {
		h.recordPass("wcag.pdf.01", e.page)
		return
	}

	if h.ds.cfg.ValidateImages && h.figureLooksDecorative(e) {
		h.recordPass("wcag.pdf.01", e.page)
		return
	}

	h.recordFail("wcag.pdf.01", e.page)
}

// figureLooksDecorative is the opt-in image heuristic: a /Figure without
// Alt/ActualText is treated as acceptable only when it resolves to a
// single-bit-per-component image XObject and the caller asked to ignore
// those (logos, rules, watermarks commonly encode this way).
func (h *indicatorHandler) figureLooksDecorative(e *structElement) bool {
	if !h.ds.cfg.IgnoreSingleBitImages {
		return false
	}
	obj, ok := e.dict.Find("Obj")
	if !ok {
		return false
	}
	resolved, err := h.ds.facade.Resolve(obj)
	if err != nil {
		return false
	}
	sd, ok := resolved.(types.StreamDict)
	if !ok {
		return false
	}
	if bpc := sd.Dict.IntEntry("BitsPerComponent"); bpc != nil && *bpc == 1 {
		return true
	}
	return false
}

// handleForm implements PDF.12: a form field's structure element must
// carry an /Obj reference to the underlying widget annotation carrying a
// non-empty value; per the bound decision, any missing requirement fails
// the element (no partial credit).
func (h *indicatorHandler) handleForm(e *structElement) {
	k, hasK := e.dict.Find("K")
	if !hasK {
		h.recordFail("wcag.pdf.12", e.page)
		return
	}

	objRef, ok := formObjRef(k)
	if !ok {
		h.recordFail("wcag.pdf.12", e.page)
		return
	}

	widget, err := h.ds.facade.Resolve(objRef)
	if err != nil {
		h.recordFail("wcag.pdf.12", e.page)
		return
	}
	wd, ok := widget.(types.Dict)
	if !ok {
		h.recordFail("wcag.pdf.12", e.page)
		return
	}

	if v, ok := wd.Find("V"); ok {
		if resolved, err := h.ds.facade.Resolve(v); err == nil && !isEmptyValue(resolved) {
			h.recordPass("wcag.pdf.12", e.page)
			return
		}
	}
	h.recordFail("wcag.pdf.12", e.page)
}

func formObjRef(k types.Object) (types.IndirectRef, bool) {
	switch v := k.(type) {
	case types.IndirectRef:
		return v, true
	case types.Dict:
		if ir := v.IndirectRefEntry("Obj"); ir != nil {
			return *ir, true
		}
	case types.Array:
		for _, e := range v {
			if ir, ok := formObjRef(e); ok {
				return ir, true
			}
		}
	}
	return types.IndirectRef{}, false
}

func isEmptyValue(o types.Object) bool {
	switch v := o.(type) {
	case types.StringLiteral:
		return len(string(v)) == 0
	case types.HexLiteral:
		return len(string(v)) == 0
	case nil:
		return true
	}
	return false
}

func (h *indicatorHandler) handleTableRoot(e *structElement) {
	// The actual pass/fail determination happens once per table in
	// finalizeTables, after the whole tree has been walked and every row
	// has been observed; this just ensures a record exists even for an
	// empty <Table>.
	h.tables.observe(e)
}

// finalizeTables folds each observed table into wcag.pdf.06: headerless
// or structurally invalid tables fail, the rest pass.
func (h *indicatorHandler) finalizeTables() {
	for _, root := range h.tables.tableRoots() {
		page := h.tables.page(root)
		if h.tables.isInvalid(root) || !h.tables.hasHeader(root) {
			h.recordFail("wcag.pdf.06", page)
			continue
		}
		h.recordPass("wcag.pdf.06", page)
	}
}
