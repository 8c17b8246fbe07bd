package engine

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/lazygrid/internal/ident"
	"github.com/vk/lazygrid/internal/position"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// eval reduces expr to weak head normal form in env.
func (ev *evaluator) eval(expr hclsyntax.Expression, env *scope) (Value, error) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return Primitive{Val: e.Val}, nil

	case *hclsyntax.ParenthesesExpr:
		return ev.eval(e.Expression, env)

	case *hclsyntax.TemplateWrapExpr:
		return ev.eval(e.Wrapped, env)

	case *hclsyntax.TemplateExpr:
		return ev.template(e, env)

	case *hclsyntax.ScopeTraversalExpr:
		rootRange := e.Traversal[0].SourceRange()
		v, err := ev.variable(e.Traversal.RootName(), rootRange, env)
		if err != nil {
			return nil, err
		}
		return ev.traverse(v, e.Traversal[1:], rootRange)

	case *hclsyntax.RelativeTraversalExpr:
		v, err := ev.eval(e.Source, env)
		if err != nil {
			return nil, err
		}
		return ev.traverse(v, e.Traversal, e.Source.Range())

	case *hclsyntax.FunctionCallExpr:
		return ev.call(e, env)

	case *hclsyntax.BinaryOpExpr:
		return ev.binary(e, env)

	case *hclsyntax.UnaryOpExpr:
		return ev.unary(e, env)

	case *hclsyntax.ConditionalExpr:
		return ev.conditional(e, env)

	case *hclsyntax.TupleConsExpr:
		items := make([]*thunk, len(e.Exprs))
		for i, item := range e.Exprs {
			items[i] = exprThunk("", item, env)
		}
		return &List{Items: items, Range: e.SrcRange}, nil

	case *hclsyntax.ObjectConsExpr:
		return ev.record(e, env)

	case *hclsyntax.IndexExpr:
		coll, err := ev.eval(e.Collection, env)
		if err != nil {
			return nil, err
		}
		key, err := ev.strict(e.Key, env)
		if err != nil {
			return nil, err
		}
		return ev.index(coll, key, e.SrcRange)

	default:
		return nil, ev.fail(expr.Range(), "Unsupported expression",
			fmt.Sprintf("Expressions of type %T are not supported.", expr))
	}
}

// strict evaluates an operand whose value is needed immediately. Once it
// evaluated successfully the call log is rolled back: the markers it pushed
// belong to a finished computation.
func (ev *evaluator) strict(expr hclsyntax.Expression, env *scope) (cty.Value, error) {
	checkpoint := ev.stack.Len()
	v, err := ev.eval(expr, env)
	if err != nil {
		return cty.NilVal, err
	}
	p, ok := v.(Primitive)
	if !ok {
		return cty.NilVal, ev.fail(expr.Range(), "Unexpected "+v.TypeName(),
			fmt.Sprintf("A primitive value is required here, but this is a %s.", v.TypeName()))
	}
	ev.stack.Truncate(checkpoint)
	return p.Val, nil
}

func (ev *evaluator) variable(name string, rng hcl.Range, env *scope) (Value, error) {
	b, ok := env.lookup(name)
	if !ok {
		return nil, ev.fail(rng, "Unknown variable", fmt.Sprintf("There is no variable named %q.", name))
	}
	ev.stack.EnterVar(b.kind, ident.New(name), ev.files.OriginalPos(rng))
	return ev.force(b.value)
}

func (ev *evaluator) traverse(v Value, steps hcl.Traversal, start hcl.Range) (Value, error) {
	var err error
	for _, step := range steps {
		access := hcl.RangeBetween(start, step.SourceRange())
		switch s := step.(type) {
		case hcl.TraverseAttr:
			rec, ok := v.(*Record)
			if !ok {
				return nil, ev.fail(access, "Unsupported attribute",
					fmt.Sprintf("Can't access field %q on a %s.", s.Name, v.TypeName()))
			}
			v, err = ev.field(rec, s.Name, ev.files.OriginalPos(access), access)
		case hcl.TraverseIndex:
			v, err = ev.index(v, s.Key, access)
		default:
			return nil, ev.fail(step.SourceRange(), "Unsupported traversal", "Splat expressions are not supported.")
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// field forces the field name of rec. access is the position of the whole
// access expression, errRange where a missing field is reported.
func (ev *evaluator) field(rec *Record, name string, access position.TermPos, errRange hcl.Range) (Value, error) {
	f, ok := rec.Fields[name]
	if !ok {
		return nil, ev.fail(errRange, "Unsupported attribute",
			fmt.Sprintf("This record does not have a field named %q.", name))
	}
	ev.stack.EnterField(ident.New(name), ev.files.OriginalPos(rec.Range), ev.files.OriginalPos(f.KeyRange), access)
	return ev.force(f.value)
}

func (ev *evaluator) index(v Value, key cty.Value, rng hcl.Range) (Value, error) {
	if key.IsNull() {
		return nil, ev.fail(rng, "Invalid index", "Can't use a null value as an index.")
	}
	switch v := v.(type) {
	case *List:
		num, err := convert.Convert(key, cty.Number)
		if err != nil {
			return nil, ev.fail(rng, "Invalid index", "A list must be indexed by a number.")
		}
		var i int
		if err := gocty.FromCtyValue(num, &i); err != nil {
			return nil, ev.fail(rng, "Invalid index", fmt.Sprintf("The index must be a whole number: %s.", err))
		}
		if i < 0 || i >= len(v.Items) {
			return nil, ev.fail(rng, "Invalid index",
				fmt.Sprintf("The index %d is out of range for a list of %d items.", i, len(v.Items)))
		}
		return ev.force(v.Items[i])
	case *Record:
		str, err := convert.Convert(key, cty.String)
		if err != nil {
			return nil, ev.fail(rng, "Invalid index", "A record must be indexed by a string.")
		}
		return ev.field(v, str.AsString(), ev.files.OriginalPos(rng), rng)
	default:
		return nil, ev.fail(rng, "Invalid index", fmt.Sprintf("A %s can't be indexed.", v.TypeName()))
	}
}

func (ev *evaluator) template(e *hclsyntax.TemplateExpr, env *scope) (Value, error) {
	if e.IsStringLiteral() {
		return ev.eval(e.Parts[0], env)
	}

	var sb strings.Builder
	for _, part := range e.Parts {
		v, err := ev.strict(part, env)
		if err != nil {
			return nil, err
		}
		s, err := convert.Convert(v, cty.String)
		if err != nil || s.IsNull() {
			return nil, ev.fail(part.Range(), "Invalid template interpolation value",
				fmt.Sprintf("Can't interpolate a %s into a string.", Primitive{Val: v}.TypeName()))
		}
		sb.WriteString(s.AsString())
	}
	return Primitive{Val: cty.StringVal(sb.String())}, nil
}

func (ev *evaluator) binary(e *hclsyntax.BinaryOpExpr, env *scope) (Value, error) {
	lhs, err := ev.strict(e.LHS, env)
	if err != nil {
		return nil, err
	}
	rhs, err := ev.strict(e.RHS, env)
	if err != nil {
		return nil, err
	}
	res, err := e.Op.Impl.Call([]cty.Value{lhs, rhs})
	if err != nil {
		return nil, ev.fail(e.SrcRange, "Invalid operand", err.Error())
	}
	return Primitive{Val: res}, nil
}

func (ev *evaluator) unary(e *hclsyntax.UnaryOpExpr, env *scope) (Value, error) {
	v, err := ev.strict(e.Val, env)
	if err != nil {
		return nil, err
	}
	res, err := e.Op.Impl.Call([]cty.Value{v})
	if err != nil {
		return nil, ev.fail(e.SrcRange, "Invalid operand", err.Error())
	}
	return Primitive{Val: res}, nil
}

func (ev *evaluator) conditional(e *hclsyntax.ConditionalExpr, env *scope) (Value, error) {
	cond, err := ev.strict(e.Condition, env)
	if err != nil {
		return nil, err
	}
	cond, convErr := convert.Convert(cond, cty.Bool)
	if convErr != nil || cond.IsNull() {
		return nil, ev.fail(e.Condition.Range(), "Incorrect condition type", "The condition must be a bool.")
	}
	if cond.True() {
		return ev.eval(e.TrueResult, env)
	}
	return ev.eval(e.FalseResult, env)
}

// record builds a recursive record: field values see their siblings.
func (ev *evaluator) record(e *hclsyntax.ObjectConsExpr, env *scope) (Value, error) {
	rec := &Record{Fields: make(map[string]*Field, len(e.Items)), Range: e.SrcRange}
	fieldEnv := newScope(env)

	for _, item := range e.Items {
		key, diags := item.KeyExpr.Value(nil)
		if diags.HasErrors() {
			return nil, ev.fail(item.KeyExpr.Range(), "Invalid field name", diags.Error())
		}
		key, err := convert.Convert(key, cty.String)
		if err != nil || key.IsNull() {
			return nil, ev.fail(item.KeyExpr.Range(), "Invalid field name", "A field name must be a string.")
		}
		name := key.AsString()
		if prev, dup := rec.Fields[name]; dup {
			return nil, ev.fail(item.KeyExpr.Range(), "Duplicate field",
				fmt.Sprintf("The field %q was already defined at %s.", name, prev.KeyRange))
		}

		th := exprThunk(name, item.ValueExpr, fieldEnv)
		rec.Fields[name] = &Field{value: th, KeyRange: item.KeyExpr.Range()}
		fieldEnv.bind(name, ident.Record, th)
	}
	return rec, nil
}
