package wam

// tableChecker accumulates the per-table state needed by PDF.06 (table
// header association): each /Table root gets one TableRecord tracking
// whether a /TR row directly under it (or under a /THead /TBody) ever
// contains a /TH, and latching Invalid the first time the row/cell
// nesting breaks the expected lattice (Table -> [THead|TBody|TFoot]* ->
// TR -> [TH|TD]*).
type tableChecker struct {
	records map[elementIdentity]*TableRecord
}

func newTableChecker() *tableChecker {
	return &tableChecker{records: map[elementIdentity]*TableRecord{}}
}

func identityOf(e *structElement) elementIdentity {
	return elementIdentity{objNr: e.ref.ObjectNumber.Value(), genNr: e.ref.GenerationNumber.Value()}
}

// tableRootOf walks up the parent chain to find the nearest ancestor (or
// self) whose structure type is /Table, nil if e isn't inside one.
func tableRootOf(e *structElement) *structElement {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.s == "Table" {
			return cur
		}
	}
	return nil
}

// observe folds one structure element into its table's record, if it's
// inside a /Table subtree.
func (tc *tableChecker) observe(e *structElement) {
	root := tableRootOf(e)
	if root == nil {
		return
	}

	id := identityOf(root)
	rec, ok := tc.records[id]
	if !ok {
		rec = &TableRecord{Root: id, Page: root.page}
		tc.records[id] = rec
	}

	switch e.s {
	case "Table", "THead", "TBody", "TFoot", "TR", "TH", "TD":
		// expected lattice members; nothing to latch.
	default:
		// A structure type nested inside a table that isn't part of the
		// expected row/cell lattice (e.g. a /P directly under /Table)
		// invalidates header-association analysis for this table: we can
		// no longer tell whether an unadorned cell is a layout artifact
		// or a missing header.
		if e.parent != nil && e.parent.s == "Table" {
			rec.Invalid = true
		}
	}

	if e.s == "TH" {
		rec.Current = identityOf(e)
	}
}

// hasHeader reports whether the table rooted at root ever saw a /TH cell.
func (tc *tableChecker) hasHeader(root elementIdentity) bool {
	rec, ok := tc.records[root]
	if !ok {
		return false
	}
	return rec.Current != elementIdentity{}
}

func (tc *tableChecker) isInvalid(root elementIdentity) bool {
	rec, ok := tc.records[root]
	return ok && rec.Invalid
}

func (tc *tableChecker) tableRoots() []elementIdentity {
	ids := make([]elementIdentity, 0, len(tc.records))
	for id := range tc.records {
		ids = append(ids, id)
	}
	return ids
}

func (tc *tableChecker) page(root elementIdentity) int {
	if rec, ok := tc.records[root]; ok {
		return rec.Page
	}
	return 0
}
