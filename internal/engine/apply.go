package engine

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/lazygrid/internal/ident"
	"github.com/vk/lazygrid/internal/position"
	"github.com/vk/lazygrid/internal/typeexpr"
)

// call evaluates `f(a1, ..., an)` as n nested applications.
func (ev *evaluator) call(call *hclsyntax.FunctionCallExpr, env *scope) (Value, error) {
	if call.ExpandFinal {
		return nil, ev.fail(call.Range(), "Unsupported argument expansion", "Expanding the final argument with `...` is not supported.")
	}
	if len(call.Args) > 0 {
		return ev.applyN(call, env, len(call.Args))
	}

	// f() runs the body of a function without parameters.
	rng := call.Range()
	pos := ev.files.OriginalPos(rng)
	ev.stack.EnterApp(pos)
	fn, err := ev.callee(call, env)
	if err != nil {
		return nil, err
	}
	if fn.Arity() > 0 {
		return nil, ev.fail(rng, "Missing arguments",
			fmt.Sprintf("Function %q expects %d more argument(s).", fn.Name(), fn.Arity()))
	}
	ev.stack.EnterFun(pos)
	return ev.enterBody(fn, rng)
}

// applyN evaluates the application of the callee to its first n arguments.
// The application markers of all prefixes share the start of the call, so
// the reconstruction folds them into one call.
func (ev *evaluator) applyN(call *hclsyntax.FunctionCallExpr, env *scope, n int) (Value, error) {
	rng := appRange(call, n)
	pos := ev.files.OriginalPos(rng)
	ev.stack.EnterApp(pos)

	var (
		fn  *Closure
		err error
	)
	if n == 1 {
		fn, err = ev.callee(call, env)
	} else {
		var partial Value
		if partial, err = ev.applyN(call, env, n-1); err == nil {
			var ok bool
			if fn, ok = partial.(*Closure); !ok {
				err = ev.fail(rng, "Too many arguments",
					fmt.Sprintf("Applying %q to %d argument(s) gives a %s, not a function.", call.Name, n-1, partial.TypeName()))
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return ev.apply(fn, exprThunk("", call.Args[n-1], env), pos, rng)
}

func appRange(call *hclsyntax.FunctionCallExpr, n int) hcl.Range {
	if n == len(call.Args) {
		return call.Range()
	}
	return hcl.RangeBetween(call.NameRange, call.Args[n-1].Range())
}

func (ev *evaluator) callee(call *hclsyntax.FunctionCallExpr, env *scope) (*Closure, error) {
	if _, ok := env.lookup(call.Name); !ok {
		return nil, ev.fail(call.NameRange, "Call to unknown function",
			fmt.Sprintf("There is no function named %q.", call.Name))
	}
	v, err := ev.variable(call.Name, call.NameRange, env)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(*Closure)
	if !ok {
		return nil, ev.fail(call.NameRange, "Not a function",
			fmt.Sprintf("%q is a %s, not a function.", call.Name, v.TypeName()))
	}
	return fn, nil
}

// apply binds the next parameter of fn to arg and enters the body once
// every parameter is bound.
func (ev *evaluator) apply(fn *Closure, arg *thunk, pos position.TermPos, rng hcl.Range) (Value, error) {
	if fn.Arity() == 0 {
		return nil, ev.fail(rng, "Too many arguments",
			fmt.Sprintf("Function %q expects %d argument(s).", fn.Name(), len(fn.fn.params)))
	}
	param := fn.fn.params[len(fn.args)]
	next := fn.with(ev.guard(fn.fn, param, arg))

	ev.stack.EnterFun(pos)
	if next.Arity() > 0 {
		return next, nil
	}
	return ev.enterBody(next, rng)
}

func (ev *evaluator) enterBody(fn *Closure, rng hcl.Range) (Value, error) {
	if err := ev.ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation interrupted: %w", err)
	}
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.depth > ev.opts.MaxDepth {
		return nil, ev.fail(rng, "Maximum call depth exceeded",
			fmt.Sprintf("More than %d nested function calls.", ev.opts.MaxDepth))
	}

	if fn.fn.native != nil {
		return fn.fn.native(ev, rng, fn.args)
	}
	body := newScope(ev.globals)
	for i, p := range fn.fn.params {
		body.bind(p, ident.Lambda, fn.args[i])
	}
	return ev.eval(fn.fn.body, body)
}

// guard wraps arg in the contract declared for param, if any. The check
// runs when the argument is forced, as an application of a generated
// function positioned at the argument.
func (ev *evaluator) guard(fn *callable, param string, arg *thunk) *thunk {
	c, ok := fn.contracts[param]
	if !ok || c.Shape == typeexpr.ShapeAny {
		return arg
	}

	inherited := ev.files.InheritedPos(arg.rng)
	check := ident.Fresh("contract")
	return &thunk{
		name: param,
		rng:  arg.rng,
		compute: func(ev *evaluator) (Value, error) {
			ev.stack.EnterVar(ident.Lambda, check, inherited)
			ev.stack.EnterApp(inherited)
			v, err := ev.force(arg)
			if err != nil {
				return nil, err
			}
			if !satisfies(c, v) {
				return nil, ev.fail(arg.rng, "Contract broken by a function argument",
					fmt.Sprintf("Parameter %q of %q expects a %s, but got a %s.", param, fn.name, c.Keyword, v.TypeName()))
			}
			ev.stack.EnterFun(inherited)
			return v, nil
		},
	}
}

func satisfies(c typeexpr.Contract, v Value) bool {
	switch c.Shape {
	case typeexpr.ShapePrimitive:
		p, ok := v.(Primitive)
		return ok && !p.Val.IsNull() && p.Val.Type().Equals(c.Type)
	case typeexpr.ShapeList:
		_, ok := v.(*List)
		return ok
	case typeexpr.ShapeRecord:
		_, ok := v.(*Record)
		return ok
	case typeexpr.ShapeFunction:
		_, ok := v.(*Closure)
		return ok
	default:
		return true
	}
}
