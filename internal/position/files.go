package position

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
)

// Files is a registry of source files. It hands out FileIDs and converts
// between hcl.Range values produced by the parser and the spans stored in
// the call log.
//
// Files is safe for concurrent use; an evaluation session only reads from it
// once loading is finished.
type Files struct {
	mu     sync.RWMutex
	byName map[string]FileID
	files  []sourceFile
}

type sourceFile struct {
	name string
	src  []byte
}

// NewFiles creates an empty registry.
func NewFiles() *Files {
	return &Files{byName: make(map[string]FileID)}
}

// Add registers a file and returns its id. Adding a name twice replaces the
// stored source and keeps the original id.
func (f *Files) Add(name string, src []byte) FileID {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id, ok := f.byName[name]; ok {
		f.files[id].src = src
		return id
	}
	id := FileID(len(f.files))
	f.files = append(f.files, sourceFile{name: name, src: src})
	f.byName[name] = id
	return id
}

// Lookup returns the id of a registered filename.
func (f *Files) Lookup(name string) (FileID, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	id, ok := f.byName[name]
	return id, ok
}

// Name returns the filename of id, or an empty string for unknown ids.
func (f *Files) Name(id FileID) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if int(id) >= len(f.files) {
		return ""
	}
	return f.files[id].name
}

// Source returns the bytes registered for id.
func (f *Files) Source(id FileID) ([]byte, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if int(id) >= len(f.files) {
		return nil, false
	}
	return f.files[id].src, true
}

// Len returns the number of registered files.
func (f *Files) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.files)
}

// SpanOf converts a parser range into a span. It reports false when the
// range's file was never registered.
func (f *Files) SpanOf(rng hcl.Range) (Span, bool) {
	id, ok := f.Lookup(rng.Filename)
	if !ok {
		return Span{}, false
	}
	return Span{File: id, Start: rng.Start.Byte, End: rng.End.Byte}, true
}

// OriginalPos returns an original position for rng, or an undefined one if
// the file is unknown.
func (f *Files) OriginalPos(rng hcl.Range) TermPos {
	span, ok := f.SpanOf(rng)
	if !ok {
		return Undefined()
	}
	return Original(span)
}

// InheritedPos returns an inherited position for rng, or an undefined one if
// the file is unknown.
func (f *Files) InheritedPos(rng hcl.Range) TermPos {
	span, ok := f.SpanOf(rng)
	if !ok {
		return Undefined()
	}
	return Inherited(span)
}

// Range converts a span back into an hcl.Range with line and column
// information computed from the registered source.
func (f *Files) Range(span Span) hcl.Range {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if int(span.File) >= len(f.files) {
		return hcl.Range{}
	}
	file := f.files[span.File]
	return hcl.Range{
		Filename: file.name,
		Start:    posAt(file.src, span.Start),
		End:      posAt(file.src, span.End),
	}
}

// Describe renders a span as "file:line,col-line,col".
func (f *Files) Describe(span Span) string {
	rng := f.Range(span)
	if rng.Filename == "" {
		return span.String()
	}
	return rng.String()
}

// posAt computes the 1-based line and column of a byte offset. Columns count
// runes; offsets past the end of src are clamped.
func posAt(src []byte, offset int) hcl.Pos {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	pos := hcl.Pos{Line: 1, Column: 1, Byte: offset}
	for i := 0; i < offset; {
		r, size := utf8.DecodeRune(src[i:])
		i += size
		if r == '\n' {
			pos.Line++
			pos.Column = 1
			continue
		}
		pos.Column++
	}
	return pos
}

// String lists the registered files; used in debug logs.
func (f *Files) String() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, len(f.files))
	for i, file := range f.files {
		names[i] = file.name
	}
	return fmt.Sprint(names)
}
