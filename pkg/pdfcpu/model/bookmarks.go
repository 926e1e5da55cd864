/*
Copyright 2020 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"strings"

	"github.com/pdfwam/pdfwam/pkg/pdfcpu/types"
)

// Bookmarks represents a node of an outline (bookmark) tree as found via
// the catalog's /Outlines entry. Unlike the teacher's generation-oriented
// Bookmark type this is read-only: no Style/Color/Parent bookkeeping
// needed for writing a new outline back out.
type Bookmarks struct {
	Title    string
	PageFrom int
	PageThru int
	Kids     []Bookmarks
}

func outlineItemTitle(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if b := s[i]; b >= 32 {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

// pageObjFromDestinationArray returns the IndirectRef of the page object
// a /Dest or GoTo-action destination array points at.
func pageObjFromDestinationArray(dest types.Object) (*types.IndirectRef, error) {
	arr, ok := dest.(types.Array)
	if !ok || len(arr) == 0 || arr[0] == nil {
		return nil, nil
	}
	ir, ok := arr[0].(types.IndirectRef)
	if !ok {
		return nil, nil
	}
	return &ir, nil
}

func (xRefTable *XRefTable) bookmarksForOutlineItem(item *types.IndirectRef) ([]Bookmarks, error) {
	var bms []Bookmarks

	d, err := xRefTable.DereferenceDict(*item)
	if err != nil || d == nil {
		return nil, err
	}

	for ir := item; ir != nil; ir = d.IndirectRefEntry("Next") {

		if d, err = xRefTable.DereferenceDict(*ir); err != nil || d == nil {
			return bms, err
		}

		title, _ := Text(d["Title"])
		title = outlineItemTitle(title)

		dest, destFound := d["Dest"]
		if !destFound {
			act, actFound := d["A"]
			if !actFound {
				continue
			}
			act, err := xRefTable.Dereference(act)
			if err != nil {
				continue
			}
			actDict, ok := act.(types.Dict)
			if !ok {
				continue
			}
			if s := actDict.NameEntry("S"); s == nil || *s != "GoTo" {
				continue
			}
			dest = actDict["D"]
		}

		dest, err := xRefTable.Dereference(dest)
		if err != nil {
			continue
		}

		pageIR, err := pageObjFromDestinationArray(dest)
		if err != nil || pageIR == nil {
			continue
		}

		pageFrom, err := xRefTable.PageNumber(pageIR.ObjectNumber.Value())
		if err != nil {
			continue
		}

		if n := len(bms); n > 0 {
			if pageFrom > bms[n-1].PageFrom {
				bms[n-1].PageThru = pageFrom - 1
			} else {
				bms[n-1].PageThru = bms[n-1].PageFrom
			}
		}

		bm := Bookmarks{Title: title, PageFrom: pageFrom}

		if first := d.IndirectRefEntry("First"); first != nil {
			kids, err := xRefTable.bookmarksForOutlineItem(first)
			if err == nil {
				bm.Kids = kids
			}
		}

		bms = append(bms, bm)
	}

	return bms, nil
}

// Outline returns the root of the document's outline (bookmark) tree, or
// nil if the document carries no /Outlines or it is empty.
func (xRefTable *XRefTable) Outline() (*Bookmarks, error) {
	catalog, err := xRefTable.Catalog()
	if err != nil || catalog == nil {
		return nil, err
	}

	outlinesIR := catalog.IndirectRefEntry("Outlines")
	if outlinesIR == nil {
		return nil, nil
	}

	d, err := xRefTable.DereferenceDict(*outlinesIR)
	if err != nil || d == nil {
		return nil, nil
	}

	first := d.IndirectRefEntry("First")
	if first == nil {
		return nil, nil
	}

	kids, err := xRefTable.bookmarksForOutlineItem(first)
	if err != nil {
		return nil, nil
	}
	if len(kids) == 0 {
		return nil, nil
	}

	return &Bookmarks{Title: "", PageFrom: 0, Kids: kids}, nil
}
