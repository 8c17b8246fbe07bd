package engine

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/lazygrid/internal/program"
	"github.com/vk/lazygrid/internal/typeexpr"
	"github.com/zclconf/go-cty/cty"
)

// Value is the weak head normal form of an expression.
type Value interface {
	// TypeName describes the value in error messages.
	TypeName() string
}

// Primitive is a string, number, bool or null.
type Primitive struct {
	Val cty.Value
}

func (p Primitive) TypeName() string {
	if p.Val.IsNull() {
		return "null"
	}
	return p.Val.Type().FriendlyName()
}

// List is a tuple of lazily evaluated items.
type List struct {
	Items []*thunk
	Range hcl.Range
}

func (*List) TypeName() string { return "list" }

// Record is an object of lazily evaluated fields. Fields can refer to their
// siblings by name.
type Record struct {
	Fields map[string]*Field
	Range  hcl.Range
}

// Field is one record field.
type Field struct {
	value    *thunk
	KeyRange hcl.Range
}

func (*Record) TypeName() string { return "record" }

// Names returns the field names in sorted order.
func (r *Record) Names() []string {
	names := make([]string, 0, len(r.Fields))
	for n := range r.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Closure is a function applied to fewer arguments than it has parameters.
type Closure struct {
	fn   *callable
	args []*thunk
}

func (*Closure) TypeName() string { return "function" }

// Name returns the name of the underlying function.
func (c *Closure) Name() string { return c.fn.name }

// Arity returns how many arguments are still missing.
func (c *Closure) Arity() int { return len(c.fn.params) - len(c.args) }

func (c *Closure) with(arg *thunk) *Closure {
	args := make([]*thunk, len(c.args), len(c.args)+1)
	copy(args, c.args)
	return &Closure{fn: c.fn, args: append(args, arg)}
}

type nativeFunc func(ev *evaluator, call hcl.Range, args []*thunk) (Value, error)

// callable is a function definition, written in HCL or implemented natively.
type callable struct {
	name      string
	params    []string
	contracts map[string]typeexpr.Contract
	body      hclsyntax.Expression
	defRange  hcl.Range
	native    nativeFunc
}

func fromProgram(f *program.Function) *callable {
	return &callable{
		name:      f.Name,
		params:    f.Params,
		contracts: f.Contracts,
		body:      f.Body,
		defRange:  f.DefRange,
	}
}
