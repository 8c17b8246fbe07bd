package engine

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/lazygrid/internal/ident"
)

type thunkState uint8

const (
	thunkIdle thunkState = iota
	thunkForcing
	thunkDone
)

// thunk is a suspended computation, evaluated at most once successfully.
type thunk struct {
	name    string
	rng     hcl.Range
	expr    hclsyntax.Expression
	env     *scope
	compute func(ev *evaluator) (Value, error)
	state   thunkState
	value   Value
}

func exprThunk(name string, expr hclsyntax.Expression, env *scope) *thunk {
	return &thunk{name: name, rng: expr.Range(), expr: expr, env: env}
}

func valueThunk(v Value, rng hcl.Range) *thunk {
	return &thunk{rng: rng, state: thunkDone, value: v}
}

// force evaluates th, or returns its memoised value. A failed evaluation is
// not memoised.
func (ev *evaluator) force(th *thunk) (Value, error) {
	switch th.state {
	case thunkDone:
		return th.value, nil
	case thunkForcing:
		what := "This expression"
		if th.name != "" {
			what = fmt.Sprintf("The value of %q", th.name)
		}
		return nil, ev.fail(th.rng, "Infinite recursion", what+" depends on itself.")
	}

	th.state = thunkForcing
	var (
		v   Value
		err error
	)
	if th.compute != nil {
		v, err = th.compute(ev)
	} else {
		v, err = ev.eval(th.expr, th.env)
	}
	if err != nil {
		th.state = thunkIdle
		return nil, err
	}

	th.state, th.value = thunkDone, v
	th.expr, th.env, th.compute = nil, nil, nil
	return v, nil
}

type binding struct {
	kind  ident.Kind
	value *thunk
}

// scope is a lexical environment.
type scope struct {
	parent *scope
	vars   map[string]binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]binding)}
}

func (s *scope) bind(name string, kind ident.Kind, th *thunk) {
	s.vars[name] = binding{kind: kind, value: th}
}

func (s *scope) lookup(name string) (binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return binding{}, false
}
