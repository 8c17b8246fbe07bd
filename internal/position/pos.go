package position

// Kind is the provenance tag of a TermPos.
type Kind uint8

const (
	// KindUndefined marks a term without any source attribution.
	KindUndefined Kind = iota
	// KindOriginal marks a term that points at text written in a source file.
	KindOriginal
	// KindInherited marks a position copied from another term.
	KindInherited
)

func (k Kind) String() string {
	switch k {
	case KindOriginal:
		return "original"
	case KindInherited:
		return "inherited"
	default:
		return "undefined"
	}
}

// TermPos is the position of a term together with its provenance. The zero
// value is the undefined position.
type TermPos struct {
	kind Kind
	span Span
}

// Original returns a position pointing at user-written source.
func Original(span Span) TermPos {
	return TermPos{kind: KindOriginal, span: span}
}

// Inherited returns a position copied from another term.
func Inherited(span Span) TermPos {
	return TermPos{kind: KindInherited, span: span}
}

// Undefined returns a position without source attribution.
func Undefined() TermPos {
	return TermPos{}
}

// Kind returns the provenance tag.
func (p TermPos) Kind() Kind { return p.kind }

// IsDef reports whether the position carries a span, original or inherited.
func (p TermPos) IsDef() bool { return p.kind != KindUndefined }

// IsOriginal reports whether the position points at user-written source.
func (p TermPos) IsOriginal() bool { return p.kind == KindOriginal }

// IsInherited reports whether the position was copied from another term.
func (p TermPos) IsInherited() bool { return p.kind == KindInherited }

// Span returns the underlying span and whether the position is defined.
func (p TermPos) Span() (Span, bool) {
	if p.kind == KindUndefined {
		return Span{}, false
	}
	return p.span, true
}

// Unwrap returns the span of a defined position. It panics on an undefined
// position; callers check IsDef first.
func (p TermPos) Unwrap() Span {
	if p.kind == KindUndefined {
		panic("position: unwrap of an undefined position")
	}
	return p.span
}

// AsInherited converts a defined position into an inherited one. Undefined
// positions stay undefined.
func (p TermPos) AsInherited() TermPos {
	if p.kind == KindUndefined {
		return p
	}
	return Inherited(p.span)
}

func (p TermPos) String() string {
	if p.kind == KindUndefined {
		return "undefined"
	}
	return p.kind.String() + "(" + p.span.String() + ")"
}
