/*
Copyright 2018 The pdfcpu Authors.

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

// Package reader parses a PDF byte stream into an in-memory model.Context.
//
// Unlike a full pdfcpu reader this package never needs to support
// incremental writing, so it resolves the complete cross reference table
// and every live object in one eager pass rather than pdfcpu's lazy,
// two-phase dereference-on-demand pipeline. The underlying tokenizing
// (object, dict, stream and xref-stream parsing) is the same machinery
// model/parse.go already provides.
package reader

import (
	"bytes"
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pdfwam/pdfwam/pkg/pdfcpu/model"
	"github.com/pdfwam/pdfwam/pkg/pdfcpu/types"
	"github.com/pkg/errors"
)

var (
	errMissingStartXRef = errors.New("pdfwam: reader: missing startxref")
	errCorruptXRef      = errors.New("pdfwam: reader: corrupt xref section")
	errCorruptTrailer   = errors.New("pdfwam: reader: corrupt trailer")
	errCorruptObject    = errors.New("pdfwam: reader: corrupt object")
)

// File reads fileName from disk and returns a populated model.Context.
func File(fileName string, conf *model.Configuration) (*model.Context, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "pdfwam: can't open %q", fileName)
	}
	defer f.Close()
	return Reader(f, conf)
}

// Reader reads rs fully and returns a populated model.Context.
func Reader(rs io.ReadSeeker, conf *model.Configuration) (*model.Context, error) {
	ctx, err := model.NewContext(rs, conf)
	if err != nil {
		return nil, err
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	buf, err := io.ReadAll(rs)
	if err != nil {
		return nil, err
	}

	r := &fileReader{buf: buf, ctx: ctx}

	offset, err := r.lastStartXRef()
	if err != nil {
		return nil, err
	}

	seen := map[int64]bool{}
	for offset >= 0 && !seen[offset] {
		seen[offset] = true
		prev, err := r.readXRefSectionAt(offset)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			break
		}
		offset = *prev
	}

	if ctx.Root == nil {
		return nil, errors.New("pdfwam: reader: trailer has no /Root entry")
	}

	if err := r.resolveAll(); err != nil {
		return nil, err
	}

	rootDict, err := ctx.DereferenceDict(*ctx.Root)
	if err != nil {
		return nil, errors.Wrap(err, "pdfwam: reader: can't resolve /Root")
	}
	ctx.RootDict = rootDict

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}

	return ctx, nil
}

type fileReader struct {
	buf []byte
	ctx *model.Context
}

// lastStartXRef returns the byte offset of the first xref section,
// read from the last "startxref" keyword in the file.
func (r *fileReader) lastStartXRef() (int64, error) {
	i := bytes.LastIndex(r.buf, []byte("startxref"))
	if i < 0 {
		return 0, errMissingStartXRef
	}
	s := string(r.buf[i+len("startxref"):])
	s = strings.TrimLeft(s, " \t\r\n")
	j := 0
	for j < len(s) && (s[j] >= '0' && s[j] <= '9') {
		j++
	}
	if j == 0 {
		return 0, errMissingStartXRef
	}
	off, err := strconv.ParseInt(s[:j], 10, 64)
	if err != nil {
		return 0, errMissingStartXRef
	}
	return off, nil
}

// readXRefSectionAt parses the xref section (classic table or xref stream)
// located at offset and merges its entries and trailer fields into the
// context. It returns the offset of the previous xref section, if any.
func (r *fileReader) readXRefSectionAt(offset int64) (*int64, error) {
	if offset < 0 || int(offset) >= len(r.buf) {
		return nil, errCorruptXRef
	}
	s := string(r.buf[offset:])
	s = strings.TrimLeft(s, " \t\r\n")

	if strings.HasPrefix(s, "xref") {
		return r.readClassicXRefSection(s[len("xref"):])
	}
	return r.readXRefStreamSection(s, offset)
}

func (r *fileReader) readClassicXRefSection(s string) (*int64, error) {
	s = strings.TrimLeft(s, " \t\r\n")

	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if strings.HasPrefix(s, "trailer") {
			s = s[len("trailer"):]
			break
		}

		// subsection header: "startObj count"
		line, rest := splitLine(s)
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errCorruptXRef
		}
		startObj, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errCorruptXRef
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errCorruptXRef
		}
		s = rest

		for i := 0; i < count; i++ {
			line, rest := splitLine(s)
			s = rest
			fields := strings.Fields(line)
			if len(fields) < 3 {
				return nil, errCorruptXRef
			}
			objNr := startObj + i
			if _, found := r.ctx.Find(objNr); found {
				continue // covered by a newer incremental update already in the table.
			}
			if fields[2] == "f" {
				gen, _ := strconv.Atoi(fields[1])
				r.ctx.Table[objNr] = &model.XRefTableEntry{Free: true, Generation: &gen}
				continue
			}
			off, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, errCorruptXRef
			}
			gen, _ := strconv.Atoi(fields[1])
			r.ctx.Table[objNr] = &model.XRefTableEntry{Offset: &off, Generation: &gen}
		}
	}

	s = strings.TrimLeft(s, " \t\r\n")
	d, _, err := r.parseDictAt(s)
	if err != nil {
		return nil, errors.Wrap(err, "pdfwam: reader: trailer dict")
	}

	return r.mergeTrailer(d)
}

func (r *fileReader) readXRefStreamSection(s string, offset int64) (*int64, error) {
	// "objNr genNr obj <<...>> stream ... endstream endobj"
	o, _, err := r.parseIndirectObjectAt(offset)
	if err != nil {
		return nil, errors.Wrap(err, "pdfwam: reader: xref stream object")
	}
	sd, ok := o.(types.StreamDict)
	if !ok {
		return nil, errCorruptXRef
	}
	if err := sd.Decode(); err != nil {
		return nil, errors.Wrap(err, "pdfwam: reader: xref stream decode")
	}

	xsd, err := model.ParseXRefStreamDict(&sd)
	if err != nil {
		return nil, err
	}

	if err := r.populateFromXRefStream(xsd); err != nil {
		return nil, err
	}

	return r.mergeTrailer(sd.Dict)
}

func (r *fileReader) populateFromXRefStream(xsd *types.XRefStreamDict) error {
	w0, w1, w2 := xsd.W[0], xsd.W[1], xsd.W[2]
	recLen := w0 + w1 + w2
	data := xsd.Content

	for i, objNr := range xsd.Objects {
		if _, found := r.ctx.Find(objNr); found {
			continue
		}
		start := i * recLen
		if start+recLen > len(data) {
			break
		}
		rec := data[start : start+recLen]

		fieldType := 1
		if w0 > 0 {
			fieldType = int(beUint(rec[:w0]))
		}
		f2 := beUint(rec[w0 : w0+w1])
		f3 := beUint(rec[w0+w1 : w0+w1+w2])

		switch fieldType {
		case 0:
			gen := int(f3)
			r.ctx.Table[objNr] = &model.XRefTableEntry{Free: true, Generation: &gen}
		case 1:
			off := int64(f2)
			gen := int(f3)
			r.ctx.Table[objNr] = &model.XRefTableEntry{Offset: &off, Generation: &gen}
		case 2:
			streamObjNr := int(f2)
			idx := int(f3)
			gen := 0
			r.ctx.Table[objNr] = &model.XRefTableEntry{
				Generation:      &gen,
				Compressed:      true,
				ObjectStream:    &streamObjNr,
				ObjectStreamInd: &idx,
			}
		}
	}

	return nil
}

func beUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// mergeTrailer merges trailer fields not yet known onto the context.
// The first (most recent) trailer encountered wins, matching the way
// incremental updates layer on top of the original document.
func (r *fileReader) mergeTrailer(d types.Dict) (*int64, error) {
	ctx := r.ctx

	if ctx.Size == nil {
		if i := d.IntEntry("Size"); i != nil {
			ctx.Size = i
		}
	}
	if ctx.Root == nil {
		if ir := d.IndirectRefEntry("Root"); ir != nil {
			ctx.Root = ir
		}
	}
	if ctx.Info == nil {
		if ir := d.IndirectRefEntry("Info"); ir != nil {
			ctx.Info = ir
		}
	}
	if ctx.Encrypt == nil {
		if ir := d.IndirectRefEntry("Encrypt"); ir != nil {
			ctx.Encrypt = ir
		}
	}
	if ctx.ID == nil {
		if a := d.ArrayEntry("ID"); a != nil {
			ctx.ID = a
		}
	}

	if prevF := d.IntEntry("Prev"); prevF != nil {
		off := int64(*prevF)
		return &off, nil
	}

	return nil, nil
}

func splitLine(s string) (line, rest string) {
	i := strings.IndexAny(s, "\r\n")
	if i < 0 {
		return s, ""
	}
	line = s[:i]
	rest = s[i:]
	rest = strings.TrimLeft(rest, "\r\n")
	return line, rest
}

// parseDictAt parses a dict (or dict+stream, returned via parseIndirectObjectAt)
// starting at the first "<<" found in s.
func (r *fileReader) parseDictAt(s string) (types.Dict, string, error) {
	i := strings.Index(s, "<<")
	if i < 0 {
		return nil, s, errCorruptTrailer
	}
	s = s[i:]
	o, err := model.ParseObjectContext(context.Background(), &s)
	if err != nil {
		return nil, s, err
	}
	d, ok := o.(types.Dict)
	if !ok {
		return nil, s, errCorruptTrailer
	}
	return d, s, nil
}

// parseIndirectObjectAt parses "objNr genNr obj ... endobj" starting at offset
// and returns the contained object (Dict, StreamDict, Array, or a scalar).
func (r *fileReader) parseIndirectObjectAt(offset int64) (types.Object, int64, error) {
	if offset < 0 || int(offset) >= len(r.buf) {
		return nil, 0, errCorruptObject
	}
	s := string(r.buf[offset:])

	objNr, genNr, err := model.ParseObjectAttributes(&s)
	if err != nil || objNr == nil || genNr == nil {
		return nil, 0, errors.Wrap(errCorruptObject, "object header")
	}

	s = strings.TrimLeft(s, " \t\r\n")
	o, err := model.ParseObjectContext(context.Background(), &s)
	if err != nil {
		return nil, 0, err
	}

	s = strings.TrimLeft(s, " \t\r\n")
	if !strings.HasPrefix(s, "stream") {
		return o, offset, nil
	}

	d, ok := o.(types.Dict)
	if !ok {
		return nil, 0, errCorruptObject
	}

	s = s[len("stream"):]
	s = strings.TrimPrefix(s, "\r")
	s = strings.TrimPrefix(s, "\n")

	length, err := r.streamLength(d)
	if err != nil {
		return nil, 0, err
	}

	if length < 0 || length > int64(len(s)) {
		// Length missing or wrong (common in malformed/incrementally edited
		// files): fall back to scanning for the "endstream" keyword.
		length = int64(strings.Index(s, "endstream"))
		if length < 0 {
			return nil, 0, errCorruptObject
		}
	}

	raw := []byte(s[:length])

	fp, err := filterPipeline(d)
	if err != nil {
		return nil, 0, err
	}

	sd := types.NewStreamDict(d, offset, &length, nil, fp)
	sd.Raw = raw

	return sd, offset, nil
}

func (r *fileReader) streamLength(d types.Dict) (int64, error) {
	o, found := d.Find("Length")
	if !found {
		return -1, nil
	}
	if i, ok := o.(types.Integer); ok {
		return int64(i.Value()), nil
	}
	if ir, ok := o.(types.IndirectRef); ok {
		obj, err := r.resolveObject(int(ir.ObjectNumber))
		if err != nil {
			return -1, nil
		}
		if i, ok := obj.(types.Integer); ok {
			return int64(i.Value()), nil
		}
	}
	return -1, nil
}

func filterPipeline(d types.Dict) ([]types.PDFFilter, error) {
	o, found := d.Find("Filter")
	if !found {
		return nil, nil
	}

	parmsArr := func(idx int, parms types.Object) types.Dict {
		if pa, ok := parms.(types.Array); ok {
			if idx < len(pa) {
				if pd, ok := pa[idx].(types.Dict); ok {
					return pd
				}
			}
			return nil
		}
		if pd, ok := parms.(types.Dict); ok && idx == 0 {
			return pd
		}
		return nil
	}

	parms, _ := d.Find("DecodeParms")
	if parms == nil {
		parms, _ = d.Find("DP")
	}

	switch f := o.(type) {
	case types.Name:
		return []types.PDFFilter{{Name: f.Value(), DecodeParms: parmsArr(0, parms)}}, nil
	case types.Array:
		pl := make([]types.PDFFilter, 0, len(f))
		for i, e := range f {
			n, ok := e.(types.Name)
			if !ok {
				return nil, errCorruptObject
			}
			pl = append(pl, types.PDFFilter{Name: n.Value(), DecodeParms: parmsArr(i, parms)})
		}
		return pl, nil
	}

	return nil, nil
}

// resolveAll loads every live object referenced from the cross reference
// table into its XRefTableEntry, decoding object streams as needed.
func (r *fileReader) resolveAll() error {
	objStmCache := map[int]*types.ObjectStreamDict{}

	for objNr, e := range r.ctx.Table {
		if e.Free || e.Object != nil {
			continue
		}
		if e.Compressed {
			continue // resolved in the second pass below, after caches warm up.
		}
		o, _, err := r.parseIndirectObjectAt(*e.Offset)
		if err != nil {
			return errors.Wrapf(err, "pdfwam: reader: object %d", objNr)
		}
		if sd, ok := o.(types.StreamDict); ok {
			if err := sd.Decode(); err != nil {
				// Leave undecoded; a handful of malformed/unsupported filter
				// streams shouldn't abort the whole document read.
				sd.Content = nil
			}
			o = sd
		}
		e.Object = o
	}

	for objNr, e := range r.ctx.Table {
		if e.Free || e.Object != nil || !e.Compressed {
			continue
		}
		osd, err := r.objectStream(*e.ObjectStream, objStmCache)
		if err != nil {
			return errors.Wrapf(err, "pdfwam: reader: object stream %d", *e.ObjectStream)
		}
		if osd == nil || *e.ObjectStreamInd >= len(osd.ObjArray) {
			continue
		}
		e.Object = osd.ObjArray[*e.ObjectStreamInd]
		_ = objNr
	}

	return nil
}

func (r *fileReader) objectStream(objNr int, cache map[int]*types.ObjectStreamDict) (*types.ObjectStreamDict, error) {
	if osd, ok := cache[objNr]; ok {
		return osd, nil
	}

	e, ok := r.ctx.Table[objNr]
	if !ok || e.Free || e.Offset == nil {
		return nil, errCorruptObject
	}

	o := e.Object
	if o == nil {
		parsed, _, err := r.parseIndirectObjectAt(*e.Offset)
		if err != nil {
			return nil, err
		}
		o = parsed
		e.Object = o
	}

	sd, ok := o.(types.StreamDict)
	if !ok {
		return nil, errCorruptObject
	}
	if err := sd.Decode(); err != nil {
		return nil, err
	}

	osd, err := model.ObjectStreamDict(&sd)
	if err != nil {
		return nil, err
	}

	if err := decodeObjectStreamEntries(osd); err != nil {
		return nil, err
	}

	cache[objNr] = osd
	return osd, nil
}

// decodeObjectStreamEntries parses every object embedded in osd's decoded
// content, following the "objNr offset objNr offset ..." prolog laid out
// in 7.5.7.
func decodeObjectStreamEntries(osd *types.ObjectStreamDict) error {
	prolog := string(osd.Content[:osd.FirstObjOffset])
	fields := strings.Fields(prolog)
	if len(fields)%2 != 0 {
		return errCorruptObject
	}

	n := len(fields) / 2
	offsets := make([]int, n)
	for i := 0; i < n; i++ {
		off, err := strconv.Atoi(fields[2*i+1])
		if err != nil {
			return errCorruptObject
		}
		offsets[i] = off
	}

	objs := make(types.Array, n)
	for i := 0; i < n; i++ {
		start := osd.FirstObjOffset + offsets[i]
		if start > len(osd.Content) {
			return errCorruptObject
		}
		s := string(osd.Content[start:])
		o, err := model.ParseObjectContext(context.Background(), &s)
		if err != nil {
			return err
		}
		objs[i] = o
	}

	osd.ObjCount = n
	osd.ObjArray = objs
	return nil
}

func (r *fileReader) resolveObject(objNr int) (types.Object, error) {
	e, ok := r.ctx.Table[objNr]
	if !ok || e.Free {
		return nil, nil
	}
	if e.Object != nil {
		return e.Object, nil
	}
	if e.Offset == nil {
		return nil, nil
	}
	o, _, err := r.parseIndirectObjectAt(*e.Offset)
	if err != nil {
		return nil, err
	}
	e.Object = o
	return o, nil
}
