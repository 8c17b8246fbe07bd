package engine

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// export forces v completely and converts it to a cty value. Lists become
// tuples and records become objects.
func (ev *evaluator) export(v Value) (cty.Value, error) {
	switch v := v.(type) {
	case Primitive:
		return v.Val, nil

	case *List:
		if len(v.Items) == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, len(v.Items))
		for i, th := range v.Items {
			item, err := ev.force(th)
			if err != nil {
				return cty.NilVal, err
			}
			if vals[i], err = ev.export(item); err != nil {
				return cty.NilVal, err
			}
		}
		return cty.TupleVal(vals), nil

	case *Record:
		if len(v.Fields) == 0 {
			return cty.EmptyObjectVal, nil
		}
		vals := make(map[string]cty.Value, len(v.Fields))
		for _, name := range v.Names() {
			f := v.Fields[name]
			item, err := ev.force(f.value)
			if err != nil {
				return cty.NilVal, err
			}
			if vals[name], err = ev.export(item); err != nil {
				return cty.NilVal, err
			}
		}
		return cty.ObjectVal(vals), nil

	case *Closure:
		return cty.NilVal, ev.fail(v.fn.defRange, "Unexported function",
			fmt.Sprintf("The result contains the function %q; only data can be exported.", v.Name()))

	default:
		return cty.NilVal, fmt.Errorf("unexpected value %T", v)
	}
}
