// Package loader discovers, parses and decodes HCL program files into a
// program.Program, registering every source with a position.Files registry.
package loader

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/lazygrid/internal/ctxlog"
	"github.com/vk/lazygrid/internal/fsutil"
	"github.com/vk/lazygrid/internal/position"
	"github.com/vk/lazygrid/internal/program"
	"github.com/vk/lazygrid/internal/stdlib"
	"github.com/vk/lazygrid/internal/typeexpr"
)

// functionBlockType is the only block allowed at the top level of a program
// file. Everything else must be a plain attribute.
const functionBlockType = "function"

// functionBody is decoded from the body of a function block.
type functionBody struct {
	Params    []string       `hcl:"params,optional"`
	Contracts hcl.Expression `hcl:"contracts,optional"`
	Result    hcl.Expression `hcl:"result"`
}

// Loader parses program files. One loader serves one evaluation session.
type Loader struct {
	parser *hclparse.Parser
	files  *position.Files
}

// New creates a loader registering sources with files.
func New(files *position.Files) *Loader {
	return &Loader{parser: hclparse.NewParser(), files: files}
}

// HCLFiles returns every parsed file keyed by filename, as expected by
// hcl.NewDiagnosticTextWriter.
func (l *Loader) HCLFiles() map[string]*hcl.File {
	return l.parser.Files()
}

// LoadStdlib loads the embedded builtin library into prog and returns its
// file id.
func (l *Loader) LoadStdlib(ctx context.Context, prog *program.Program) (position.FileID, error) {
	if err := l.LoadSource(ctx, prog, stdlib.FileName, stdlib.Source()); err != nil {
		return 0, fmt.Errorf("failed to load builtin library: %w", err)
	}
	id, _ := l.files.Lookup(stdlib.FileName)
	return id, nil
}

// LoadPaths loads every .hcl file found under paths into prog.
func (l *Loader) LoadPaths(ctx context.Context, prog *program.Program, paths ...string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return err
	}
	if len(hclFiles) == 0 {
		return fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	for _, file := range hclFiles {
		src, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if err := l.LoadSource(ctx, prog, file, src); err != nil {
			return err
		}
	}

	logger.Debug("HCL loading complete.", "lets", len(prog.Lets), "functions", len(prog.Functions))
	return nil
}

// LoadSource parses src as the file name and merges its definitions into prog.
func (l *Loader) LoadSource(ctx context.Context, prog *program.Program, name string, src []byte) error {
	logger := ctxlog.FromContext(ctx)

	hclFile, diags := l.parser.ParseHCL(src, name)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", name, diags)
	}
	id := l.files.Add(name, src)

	body, ok := hclFile.Body.(*hclsyntax.Body)
	if !ok {
		return fmt.Errorf("HCL file %s is not native HCL syntax", name)
	}
	if diags := checkBlocks(body); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", name, diags)
	}

	for _, block := range body.Blocks {
		fn, diags := translateFunction(ctx, block.AsHCLBlock(), id)
		if diags.HasErrors() {
			return fmt.Errorf("failed to decode function in %s: %w", name, diags)
		}
		if diags := checkDuplicate(prog, fn.Name, fn.DefRange); diags.HasErrors() {
			return diags
		}
		prog.Functions[fn.Name] = fn
		logger.Debug("Loaded function.", "name", fn.Name, "params", fn.Params, "file", name)
	}

	// Sorted for deterministic duplicate reporting.
	attrs := body.Attributes
	names := make([]string, 0, len(attrs))
	for n := range attrs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		attr := attrs[n]
		if diags := checkDuplicate(prog, n, attr.SrcRange); diags.HasErrors() {
			return diags
		}
		prog.Lets[n] = &program.Binding{Name: n, Expr: attr.Expr, Range: attr.SrcRange, File: id}
		logger.Debug("Loaded binding.", "name", n, "file", name)
	}
	return nil
}

// translateFunction decodes one function block.
func translateFunction(ctx context.Context, block *hcl.Block, file position.FileID) (*program.Function, hcl.Diagnostics) {
	var body functionBody
	diags := gohcl.DecodeBody(block.Body, nil, &body)
	if diags.HasErrors() {
		return nil, diags
	}

	name := block.Labels[0]
	if !hclsyntax.ValidIdentifier(name) {
		return nil, diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid function name",
			Detail:   fmt.Sprintf("%q is not a valid identifier.", name),
			Subject:  block.LabelRanges[0].Ptr(),
		})
	}

	seen := make(map[string]struct{}, len(body.Params))
	for _, p := range body.Params {
		if !hclsyntax.ValidIdentifier(p) {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid parameter name",
				Detail:   fmt.Sprintf("Parameter %q of function %q is not a valid identifier.", p, name),
				Subject:  block.DefRange.Ptr(),
			})
		}
		if _, dup := seen[p]; dup {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate parameter",
				Detail:   fmt.Sprintf("Parameter %q of function %q is declared twice.", p, name),
				Subject:  block.DefRange.Ptr(),
			})
		}
		seen[p] = struct{}{}
	}

	contracts := map[string]typeexpr.Contract{}
	if isExprDefined(ctx, body.Contracts, "contracts") {
		decoded, cDiags := typeexpr.ContractsForExpr(body.Contracts)
		diags = append(diags, cDiags...)
		for param := range decoded {
			if _, ok := seen[param]; !ok {
				diags = diags.Append(&hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Contract for unknown parameter",
					Detail:   fmt.Sprintf("Function %q has no parameter %q.", name, param),
					Subject:  body.Contracts.Range().Ptr(),
				})
			}
		}
		contracts = decoded
	}

	if !isExprDefined(ctx, body.Result, "result") {
		return nil, diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing required argument",
			Detail:   fmt.Sprintf("Function %q must define its result with the \"result\" argument.", name),
			Subject:  block.DefRange.Ptr(),
		})
	}
	result, ok := body.Result.(hclsyntax.Expression)
	if !ok {
		diags = diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported syntax",
			Detail:   "Function results must be written in native HCL syntax.",
			Subject:  body.Result.Range().Ptr(),
		})
	}
	if diags.HasErrors() {
		return nil, diags
	}

	return &program.Function{
		Name:      name,
		Params:    body.Params,
		Contracts: contracts,
		Body:      result,
		DefRange:  block.DefRange,
		File:      file,
	}, diags
}

func checkDuplicate(prog *program.Program, name string, rng hcl.Range) hcl.Diagnostics {
	prev, exists := prog.DefRange(name)
	if !exists {
		return nil
	}
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Duplicate definition",
		Detail:   fmt.Sprintf("%q was already defined at %s.", name, prev),
		Subject:  rng.Ptr(),
	}}
}

// checkBlocks rejects top-level blocks other than function blocks with a
// single name label.
func checkBlocks(body *hclsyntax.Body) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, block := range body.Blocks {
		if block.Type != functionBlockType {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported block type",
				Detail:   fmt.Sprintf("Blocks of type %q are not expected here. Only %q blocks are allowed.", block.Type, functionBlockType),
				Subject:  block.TypeRange.Ptr(),
			})
			continue
		}
		if len(block.Labels) != 1 {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid function block",
				Detail:   "A function block must have exactly one label: the function name.",
				Subject:  block.DefRange().Ptr(),
			})
		}
	}
	return diags
}
