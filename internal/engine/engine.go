package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/lazygrid/internal/callstack"
	"github.com/vk/lazygrid/internal/ctxlog"
	"github.com/vk/lazygrid/internal/entrypath"
	"github.com/vk/lazygrid/internal/ident"
	"github.com/vk/lazygrid/internal/position"
	"github.com/vk/lazygrid/internal/program"
	"github.com/zclconf/go-cty/cty"
)

// DefaultMaxDepth bounds the number of nested function bodies.
const DefaultMaxDepth = 2048

// Options tunes an Engine.
type Options struct {
	// MaxDepth is the maximum number of nested function bodies. Zero means
	// DefaultMaxDepth.
	MaxDepth int
}

// Engine evaluates one loaded program. It is not safe for concurrent use.
type Engine struct {
	files   *position.Files
	prog    *program.Program
	builtin position.FileID
	stack   *callstack.CallStack
	globals *scope
	opts    Options
}

// New creates an engine for prog. builtin is the file id of the builtin
// library; markers from that file are hidden from reported call chains.
func New(files *position.Files, prog *program.Program, builtin position.FileID, opts Options) (*Engine, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	e := &Engine{
		files:   files,
		prog:    prog,
		builtin: builtin,
		stack:   callstack.New(),
		globals: newScope(nil),
		opts:    opts,
	}

	for name, fn := range natives {
		e.globals.bind(name, ident.Let, valueThunk(&Closure{fn: fn}, hcl.Range{}))
	}
	for name, f := range prog.Functions {
		if _, reserved := natives[name]; reserved {
			return nil, fmt.Errorf("%s: %q is a reserved builtin name", f.DefRange, name)
		}
		e.globals.bind(name, ident.Let, valueThunk(&Closure{fn: fromProgram(f)}, f.DefRange))
	}
	for name, b := range prog.Lets {
		if _, reserved := natives[name]; reserved {
			return nil, fmt.Errorf("%s: %q is a reserved builtin name", b.Range, name)
		}
		e.globals.bind(name, ident.Let, exprThunk(name, b.Expr, e.globals))
	}
	return e, nil
}

// CallStack returns the call log written during evaluation.
func (e *Engine) CallStack() *callstack.CallStack {
	return e.stack
}

// Builtin returns the file id of the builtin library.
func (e *Engine) Builtin() position.FileID {
	return e.builtin
}

// evaluator holds the state of one Eval call.
type evaluator struct {
	*Engine
	ctx   context.Context
	depth int
}

// Eval evaluates the value at path and converts it to data. Each call starts
// a fresh call log; memoised values are shared between calls.
func (e *Engine) Eval(ctx context.Context, path *entrypath.Path) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Evaluation started.", "entry", path.String())

	e.stack.Truncate(0)
	ev := &evaluator{Engine: e, ctx: ctx}

	v, err := ev.entry(path)
	var out cty.Value
	if err == nil {
		out, err = ev.export(v)
	}
	if err != nil {
		e.logFailure(logger, err)
		return cty.NilVal, err
	}

	logger.Debug("Evaluation finished.", "entry", path.String(), "markers", e.stack.Len())
	return out, nil
}

// EvalAll evaluates every top-level binding outside the builtin library and
// returns them as one object.
func (e *Engine) EvalAll(ctx context.Context) (cty.Value, error) {
	names := e.prog.UserLets(e.builtin)
	if len(names) == 0 {
		return cty.EmptyObjectVal, nil
	}

	out := make(map[string]cty.Value, len(names))
	for _, name := range names {
		v, err := e.Eval(ctx, &entrypath.Path{Segments: []entrypath.Segment{entrypath.NewSegment(name)}})
		if err != nil {
			return cty.NilVal, err
		}
		out[name] = v
	}
	return cty.ObjectVal(out), nil
}

func (e *Engine) logFailure(logger *slog.Logger, err error) {
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		logger.Debug("Evaluation aborted.", "error", err)
		return
	}

	report := e.stack.Audit(e.builtin)
	logger.Debug("Evaluation failed.",
		"summary", evalErr.Summary,
		"subject", evalErr.Subject.String(),
		"calls", len(evalErr.Calls),
		"open", evalErr.Open != nil,
		"audit", report.String(),
	)
	if !report.Consistent() {
		logger.Debug("Call log is not well nested; the reported chain may be incomplete.", "audit", report.String())
	}
}

// entry resolves a path from the top-level scope. Markers for entry
// lookups carry no position: nothing in the source wrote them.
func (ev *evaluator) entry(path *entrypath.Path) (Value, error) {
	if path == nil || len(path.Segments) == 0 {
		return nil, &EvalError{Summary: "Invalid entry", Detail: "The entry path is empty."}
	}

	name := path.Root()
	b, ok := ev.globals.lookup(name)
	if !ok {
		return nil, &EvalError{
			Summary: "Unknown entry",
			Detail:  fmt.Sprintf("There is no top-level definition named %q.", name),
		}
	}
	ev.stack.EnterVar(b.kind, ident.New(name), position.Undefined())
	root := path.Segments[0]
	v, err := ev.force(b.value)
	if err != nil {
		return nil, err
	}
	if v, err = ev.entryIndex(v, root, b.value.rng); err != nil {
		return nil, err
	}

	for _, seg := range path.Segments[1:] {
		rec, ok := v.(*Record)
		if !ok {
			return nil, ev.fail(valueRange(v, b.value.rng), "Unsupported attribute",
				fmt.Sprintf("Can't access field %q on a %s.", seg.Name, v.TypeName()))
		}
		if v, err = ev.field(rec, seg.Name, position.Undefined(), rec.Range); err != nil {
			return nil, err
		}
		if v, err = ev.entryIndex(v, seg, rec.Range); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (ev *evaluator) entryIndex(v Value, seg entrypath.Segment, rng hcl.Range) (Value, error) {
	if !seg.HasIndex() {
		return v, nil
	}
	return ev.index(v, cty.NumberIntVal(int64(seg.Index)), valueRange(v, rng))
}

func valueRange(v Value, fallback hcl.Range) hcl.Range {
	switch v := v.(type) {
	case *List:
		return v.Range
	case *Record:
		return v.Range
	}
	return fallback
}
