package engine

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// natives are functions implemented by the engine itself. Programs can't
// redefine them.
var natives = map[string]*callable{
	"fail":   {name: "fail", params: []string{"message"}, native: nativeFail},
	"length": {name: "length", params: []string{"value"}, native: nativeLength},
}

// nativeFail aborts evaluation with a user supplied message.
func nativeFail(ev *evaluator, call hcl.Range, args []*thunk) (Value, error) {
	v, err := ev.force(args[0])
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("fail called with a %s", v.TypeName())
	if p, ok := v.(Primitive); ok {
		if s, err := convert.Convert(p.Val, cty.String); err == nil && !s.IsNull() {
			msg = s.AsString()
		}
	}
	return nil, ev.fail(call, "Evaluation failed", msg)
}

// nativeLength returns the number of items of a list, fields of a record or
// characters of a string. Items are not forced.
func nativeLength(ev *evaluator, call hcl.Range, args []*thunk) (Value, error) {
	v, err := ev.force(args[0])
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case *List:
		return Primitive{Val: cty.NumberIntVal(int64(len(v.Items)))}, nil
	case *Record:
		return Primitive{Val: cty.NumberIntVal(int64(len(v.Fields)))}, nil
	case Primitive:
		if !v.Val.IsNull() && v.Val.Type() == cty.String {
			return Primitive{Val: cty.NumberIntVal(int64(len([]rune(v.Val.AsString()))))}, nil
		}
	}
	return nil, ev.fail(args[0].rng, "Invalid function argument",
		fmt.Sprintf("length expects a list, a record or a string, but got a %s.", v.TypeName()))
}
