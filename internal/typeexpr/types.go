// Package typeexpr turns contract keywords written in HCL (`number`,
// `record`, ...) into contracts the evaluator can check.
package typeexpr

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Shape is the structural category a contract checks for.
type Shape uint8

const (
	// ShapeAny accepts every value.
	ShapeAny Shape = iota
	// ShapePrimitive requires a non-null primitive of Contract.Type.
	ShapePrimitive
	// ShapeList requires a list.
	ShapeList
	// ShapeRecord requires a record.
	ShapeRecord
	// ShapeFunction requires a function, partially applied or not.
	ShapeFunction
)

// Contract is a runtime check attached to a function parameter.
type Contract struct {
	// Keyword is the name written in the source, e.g. "number".
	Keyword string
	Shape   Shape
	// Type is the required primitive type when Shape is ShapePrimitive.
	Type cty.Type
}

var keywords = map[string]Contract{
	"string":   {Keyword: "string", Shape: ShapePrimitive, Type: cty.String},
	"number":   {Keyword: "number", Shape: ShapePrimitive, Type: cty.Number},
	"bool":     {Keyword: "bool", Shape: ShapePrimitive, Type: cty.Bool},
	"list":     {Keyword: "list", Shape: ShapeList},
	"record":   {Keyword: "record", Shape: ShapeRecord},
	"function": {Keyword: "function", Shape: ShapeFunction},
	"any":      {Keyword: "any", Shape: ShapeAny},
}

// Keywords returns the supported contract keywords in sorted order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ContractForExpr converts an HCL expression that names a contract (e.g. the
// `number` keyword) into a Contract.
func ContractForExpr(expr hcl.Expression) (Contract, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	// We expect a simple identifier like `number`, not a complex expression.
	traversal, travDiags := hcl.AbsTraversalForExpr(expr)
	if travDiags.HasErrors() || len(traversal) != 1 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid contract",
			Detail:   "A contract must be a simple keyword like 'string', 'number' or 'record', not a complex expression.",
			Subject:  expr.Range().Ptr(),
		})
		return Contract{}, diags
	}

	name := traversal.RootName()
	c, ok := keywords[name]
	if !ok {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported contract",
			Detail:   fmt.Sprintf("The keyword '%s' is not a valid contract. Supported contracts are: %v.", name, Keywords()),
			Subject:  expr.Range().Ptr(),
		})
		return Contract{}, diags
	}
	return c, diags
}

// ContractsForExpr decodes an object of parameter names to contract keywords,
// e.g. `{ x = number, f = function }`.
func ContractsForExpr(expr hcl.Expression) (map[string]Contract, hcl.Diagnostics) {
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, diags
	}

	out := make(map[string]Contract, len(pairs))
	for _, pair := range pairs {
		name := hcl.ExprAsKeyword(pair.Key)
		if name == "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid contract key",
				Detail:   "Contract keys must be parameter names.",
				Subject:  pair.Key.Range().Ptr(),
			})
			continue
		}
		c, cDiags := ContractForExpr(pair.Value)
		diags = append(diags, cDiags...)
		if cDiags.HasErrors() {
			continue
		}
		out[name] = c
	}
	return out, diags
}
