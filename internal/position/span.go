package position

import "fmt"

// FileID identifies a source file registered in a Files registry.
type FileID uint32

// Span is a half-open byte interval [Start, End) inside a single file.
type Span struct {
	File  FileID
	Start int
	End   int
}

// NewSpan returns the span [start, end) of file.
func NewSpan(file FileID, start, end int) Span {
	return Span{File: file, Start: start, End: end}
}

// Equal reports whether both spans cover exactly the same bytes of the same file.
func (s Span) Equal(other Span) bool {
	return s == other
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:[%d,%d)", s.File, s.Start, s.End)
}

// Contains reports whether inner lies entirely within outer. An equal start
// or end is permitted, so every span contains itself.
func Contains(outer, inner Span) bool {
	return inner.File == outer.File &&
		inner.Start >= outer.Start &&
		inner.End <= outer.End
}

// IsSubcall reports whether inner is a curried sub-application of outer:
// contained in it and starting at the same offset. In `f a b` the inner
// application `f a` starts where `f a b` does.
func IsSubcall(outer, inner Span) bool {
	return Contains(outer, inner) && inner.Start == outer.Start
}
