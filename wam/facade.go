package wam

import (
	"github.com/pdfwam/pdfwam/pkg/pdfcpu/model"
	"github.com/pdfwam/pdfwam/pkg/pdfcpu/types"
)

// ContentToken is one (operands, operator) pair extracted from a content
// stream, e.g. operands=["/Artifact"] operator="BDC".
type ContentToken struct {
	Operands []types.Object
	Operator string
}

// Facade is the PDF access surface the analyzer consumes. model.XRefTable
// (adapted from the teacher's reader) implements it via NewFacade; tests
// may supply a fake.
type Facade interface {
	Version() model.Version
	Metadata(name string) (string, bool)

	Trailer() types.Dict
	RootDict() types.Dict
	XRefEntry(objNr int) (*model.XRefTableEntry, bool)

	PageCount() int
	PageDict(pageIndex int) (types.Dict, error)

	Resolve(o types.Object) (types.Object, error)

	ContentStream(pageIndex int) ([]ContentToken, error)

	Outline() (*model.Bookmarks, error)

	ExtractText(pageIndex int) (string, error)
}

// facade adapts a model.XRefTable to the Facade interface.
type facade struct {
	xRefTable *model.XRefTable
}

// NewFacade wraps xRefTable so it can be driven through Analyze.
func NewFacade(xRefTable *model.XRefTable) Facade {
	return &facade{xRefTable: xRefTable}
}

func (f *facade) Version() model.Version {
	return f.xRefTable.Version()
}

func (f *facade) Metadata(name string) (string, bool) {
	switch name {
	case "Creator":
		return f.xRefTable.Creator, f.xRefTable.Creator != ""
	case "Producer":
		return f.xRefTable.Producer, f.xRefTable.Producer != ""
	case "Author":
		return f.xRefTable.Author, f.xRefTable.Author != ""
	case "Title":
		return f.xRefTable.Title, f.xRefTable.Title != ""
	case "Subject":
		return f.xRefTable.Subject, f.xRefTable.Subject != ""
	case "CreationDate":
		return f.xRefTable.CreationDate, f.xRefTable.CreationDate != ""
	case "ModDate":
		return f.xRefTable.ModDate, f.xRefTable.ModDate != ""
	case "Keywords":
		return f.xRefTable.Keywords, f.xRefTable.Keywords != ""
	}
	return "", false
}

func (f *facade) Trailer() types.Dict {
	d := types.NewDict()
	if f.xRefTable.Size != nil {
		d.InsertInt("Size", *f.xRefTable.Size)
	}
	if f.xRefTable.Root != nil {
		d.Insert("Root", *f.xRefTable.Root)
	}
	if f.xRefTable.Info != nil {
		d.Insert("Info", *f.xRefTable.Info)
	}
	if f.xRefTable.Encrypt != nil {
		d.Insert("Encrypt", *f.xRefTable.Encrypt)
	}
	if f.xRefTable.ID != nil {
		d.Insert("ID", f.xRefTable.ID)
	}
	return d
}

func (f *facade) RootDict() types.Dict {
	return f.xRefTable.RootDict
}

func (f *facade) XRefEntry(objNr int) (*model.XRefTableEntry, bool) {
	return f.xRefTable.Find(objNr)
}

func (f *facade) PageCount() int {
	return f.xRefTable.PageCount
}

// PageDict is 0-based at the Facade boundary; model.XRefTable.PageDict is 1-based.
func (f *facade) PageDict(pageIndex int) (types.Dict, error) {
	d, _, _, err := f.xRefTable.PageDict(pageIndex+1, true)
	return d, err
}

func (f *facade) Resolve(o types.Object) (types.Object, error) {
	return f.xRefTable.Dereference(o)
}

func (f *facade) ContentStream(pageIndex int) ([]ContentToken, error) {
	d, err := f.PageDict(pageIndex)
	if err != nil || d == nil {
		return nil, err
	}
	raw, err := f.xRefTable.PageContent(d)
	if err != nil || raw == nil {
		return nil, err
	}
	return tokenizeContent(string(raw))
}

func (f *facade) Outline() (*model.Bookmarks, error) {
	return f.xRefTable.Outline()
}

func (f *facade) ExtractText(pageIndex int) (string, error) {
	tokens, err := f.ContentStream(pageIndex)
	if err != nil {
		return "", err
	}
	return extractText(tokens), nil
}
