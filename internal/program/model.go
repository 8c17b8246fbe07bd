// Package program holds the format-agnostic model of a loaded program: its
// top-level bindings and function definitions, each tagged with the file it
// was defined in.
package program

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/lazygrid/internal/position"
	"github.com/vk/lazygrid/internal/typeexpr"
)

// Binding is a lazy top-level `name = expr` definition.
type Binding struct {
	Name  string
	Expr  hclsyntax.Expression
	Range hcl.Range // the whole attribute
	File  position.FileID
}

// Function is a curried function declared with a `function` block.
type Function struct {
	Name      string
	Params    []string
	Contracts map[string]typeexpr.Contract
	Body      hclsyntax.Expression
	DefRange  hcl.Range
	File      position.FileID
}

// Program is the merged content of all loaded files.
type Program struct {
	Lets      map[string]*Binding
	Functions map[string]*Function
}

// New creates an empty program.
func New() *Program {
	return &Program{
		Lets:      make(map[string]*Binding),
		Functions: make(map[string]*Function),
	}
}

// DefRange returns where name is defined, whether as a binding or a function.
func (p *Program) DefRange(name string) (hcl.Range, bool) {
	if b, ok := p.Lets[name]; ok {
		return b.Range, true
	}
	if f, ok := p.Functions[name]; ok {
		return f.DefRange, true
	}
	return hcl.Range{}, false
}

// UserLets returns the names of the bindings not defined in the builtin
// file, sorted.
func (p *Program) UserLets(builtin position.FileID) []string {
	var names []string
	for name, b := range p.Lets {
		if b.File != builtin {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
