// Package ident defines identifiers and binding kinds shared by the
// evaluator and the call log.
package ident

import (
	"strconv"
	"sync/atomic"
)

// generatedPrefix starts every identifier introduced by the evaluator. It is
// not a valid HCL identifier character, so user code can never produce one.
const generatedPrefix = "%"

var freshCounter atomic.Uint64

// Ident is a variable or field name.
type Ident struct {
	Name string
}

// New returns the identifier called name.
func New(name string) Ident {
	return Ident{Name: name}
}

// Fresh returns a new generated identifier built from prefix. Two calls never
// return the same identifier.
func Fresh(prefix string) Ident {
	n := freshCounter.Add(1)
	return Ident{Name: generatedPrefix + prefix + strconv.FormatUint(n, 10)}
}

// IsGenerated reports whether the identifier was introduced by a program
// transformation rather than written by the user.
func (i Ident) IsGenerated() bool {
	return len(i.Name) > 0 && i.Name[:1] == generatedPrefix
}

func (i Ident) String() string {
	return i.Name
}

// Kind classifies the binding a variable resolved to.
type Kind uint8

const (
	// Let is a top-level binding.
	Let Kind = iota
	// Lambda is a function parameter.
	Lambda
	// Record is a field of an enclosing record, visible to its siblings.
	Record
)

func (k Kind) String() string {
	switch k {
	case Let:
		return "let"
	case Lambda:
		return "lambda"
	case Record:
		return "record"
	default:
		return "unknown"
	}
}
