package wam

import (
	"github.com/pdfwam/pdfwam/pkg/log"
	"github.com/pdfwam/pdfwam/pkg/pdfcpu/types"
)

// structElement is one node reached during the structure-tree walk: its
// dictionary, resolved /S (structure type), and the page it was reached
// through (best-effort — the page walkStructureTree passes down from its
// top-level kid, or 0; /Pg entries are not read).
type structElement struct {
	ref    types.IndirectRef
	dict   types.Dict
	s      string
	page   int
	parent *structElement
}

// walkState accumulates everything the indicator handlers and battery need
// out of a single depth-first pass over the structure tree: cycle
// detection, a flat visit order, and link-annotation cross references
// (the /Link + /OBJR bookkeeping wcag.pdf.sc244 uses).
type walkState struct {
	facade  Facade
	roleMap map[string]string

	visited map[types.IndirectRef]bool
	order   []*structElement

	linkAnnotRefs map[types.IndirectRef]bool // object refs reached via /OBJR under a /Link
}

func newWalkState(f Facade, roleMap map[string]string) *walkState {
	return &walkState{
		facade:        f,
		roleMap:       roleMap,
		visited:       map[types.IndirectRef]bool{},
		linkAnnotRefs: map[types.IndirectRef]bool{},
	}
}

// resolvedType maps a structure type through the document's /RoleMap, if
// the role map defines a substitution, falling back to the raw value
// otherwise. Role mapping may chain (A -> B -> C); a cycle there is broken
// after a few hops rather than looping forever.
func (w *walkState) resolvedType(s string) string {
	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		mapped, ok := w.roleMap[s]
		if !ok || mapped == s || seen[mapped] {
			return s
		}
		seen[s] = true
		s = mapped
	}
	return s
}

// walk performs a depth-first traversal of the structure tree rooted at
// root (the StructTreeRoot's /K entry, an IndirectRef or array of them),
// invoking visit for every structure element reached exactly once.
func (w *walkState) walk(root types.Object, page int, parent *structElement, visit func(*structElement)) error {
	switch v := root.(type) {
	case types.Array:
		for _, e := range v {
			if err := w.walk(e, page, parent, visit); err != nil {
				return err
			}
		}
		return nil

	case types.IndirectRef:
		if w.visited[v] {
			if log.ReadEnabled() {
				log.Read.Printf("wam: cycle detected at %s, skipping\n", v)
			}
			return nil
		}
		w.visited[v] = true

		resolved, err := w.facade.Resolve(v)
		if err != nil {
			return err
		}

		d, ok := resolved.(types.Dict)
		if !ok {
			return nil
		}

		// /OBJR (object reference) marks a leaf pointing at content or an
		// annotation rather than another structure element; if reached
		// through a /Link ancestor, record it for the link-text checks.
		if t := d.NameEntry("Type"); t != nil && *t == "OBJR" {
			if parent != nil && parent.s == "Link" {
				if obj := d.IndirectRefEntry("Obj"); obj != nil {
					w.linkAnnotRefs[*obj] = true
				}
			}
			return nil
		}

		sName := ""
		if s := d.NameEntry("S"); s != nil {
			sName = w.resolvedType(*s)
		}

		elem := &structElement{ref: v, dict: d, s: sName, page: page, parent: parent}
		w.order = append(w.order, elem)
		visit(elem)

		k, hasK := d.Find("K")
		if !hasK {
			return nil
		}
		return w.walk(k, page, elem, visit)

	case types.Dict:
		// Some /K entries are inline dicts (marked-content references)
		// rather than indirect structure elements; treat as a leaf.
		return nil
	}
	return nil
}
