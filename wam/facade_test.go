package wam

import (
	"github.com/pdfwam/pdfwam/pkg/pdfcpu/model"
	"github.com/pdfwam/pdfwam/pkg/pdfcpu/types"
)

// fakeFacade is an in-memory Facade for exercising the battery and the
// structure-tree walk without a real PDF file: objects are registered by
// indirect reference and resolved from a plain map, mirroring the shape
// model.XRefTable gives the real facade.
type fakeFacade struct {
	root     types.Dict
	trailer  types.Dict
	objects  map[types.IndirectRef]types.Object
	pages    []types.Dict
	content  map[int][]ContentToken
	metadata map[string]string
	outline  *model.Bookmarks
}

func newFakeFacade() *fakeFacade {
	return &fakeFacade{
		objects:  map[types.IndirectRef]types.Object{},
		metadata: map[string]string{},
		content:  map[int][]ContentToken{},
	}
}

// ref registers o under a freshly allocated indirect reference and
// returns it, for building cross-references between test fixtures.
func (f *fakeFacade) ref(o types.Object) types.IndirectRef {
	ir := types.IndirectRef{ObjectNumber: types.Integer(len(f.objects) + 1)}
	f.objects[ir] = o
	return ir
}

func (f *fakeFacade) Version() model.Version { return model.Version(17) }

func (f *fakeFacade) Metadata(name string) (string, bool) {
	v, ok := f.metadata[name]
	return v, ok
}

func (f *fakeFacade) Trailer() types.Dict {
	if f.trailer == nil {
		return types.NewDict()
	}
	return f.trailer
}

func (f *fakeFacade) RootDict() types.Dict { return f.root }

func (f *fakeFacade) XRefEntry(objNr int) (*model.XRefTableEntry, bool) { return nil, false }

func (f *fakeFacade) PageCount() int { return len(f.pages) }

func (f *fakeFacade) PageDict(pageIndex int) (types.Dict, error) {
	if pageIndex < 0 || pageIndex >= len(f.pages) {
		return nil, nil
	}
	return f.pages[pageIndex], nil
}

func (f *fakeFacade) Resolve(o types.Object) (types.Object, error) {
	if ir, ok := o.(types.IndirectRef); ok {
		return f.objects[ir], nil
	}
	return o, nil
}

func (f *fakeFacade) ContentStream(pageIndex int) ([]ContentToken, error) {
	return f.content[pageIndex], nil
}

func (f *fakeFacade) Outline() (*model.Bookmarks, error) { return f.outline, nil }

func (f *fakeFacade) ExtractText(pageIndex int) (string, error) {
	return extractText(f.content[pageIndex]), nil
}

// newDS builds a bare docState for unit tests that exercise one battery
// function directly rather than the full Analyze pipeline.
func newDS() *docState {
	return &docState{
		results: newResultMap(),
		roleMap: map[string]string{},
	}
}

// statusOf returns the Pass/Fail/N-A scalar this indicator resolved to and
// how many locations were recorded for it.
func statusOf(ds *docState, id string) (val Value, count int) {
	locs := ds.results[id]
	count = len(locs)
	for _, v := range locs {
		val = v
	}
	return val, count
}

// tally sums the pass/fail occurrences recorded for a per-occurrence
// indicator, ignoring N/A entries.
func tally(ds *docState, id string) (pass, fail int) {
	for _, v := range ds.results[id] {
		switch v.Int {
		case StatusPass:
			pass++
		case StatusFail:
			fail++
		}
	}
	return pass, fail
}
