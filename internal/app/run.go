package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/lazygrid/internal/ctxlog"
	"github.com/vk/lazygrid/internal/diagnostic"
	"github.com/vk/lazygrid/internal/engine"
	"github.com/vk/lazygrid/internal/entrypath"
	"github.com/zclconf/go-cty/cty"
)

// Run loads the program and executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	if a.engine == nil {
		if err := a.Load(ctx); err != nil {
			return err
		}
	}

	var err error
	switch a.config.Command {
	case CommandCalls:
		err = a.runCalls(ctx)
	default:
		err = a.runEval(ctx)
	}

	a.logger.Debug("App.Run method finished.")
	return err
}

func (a *App) evaluate(ctx context.Context) (cty.Value, error) {
	if a.config.Entry == "" {
		return a.engine.EvalAll(ctx)
	}
	path, err := entrypath.Parse(a.config.Entry)
	if err != nil {
		return cty.NilVal, fmt.Errorf("invalid entry: %w", err)
	}
	return a.engine.Eval(ctx, path)
}

func (a *App) runEval(ctx context.Context) error {
	v, err := a.evaluate(ctx)
	if err != nil {
		return a.failed(err)
	}
	return writeValue(a.outW, v, a.config.Output)
}

// runCalls evaluates and then dumps the call log, successful or not, with
// the chain reconstructed from it.
func (a *App) runCalls(ctx context.Context) error {
	_, evalErr := a.evaluate(ctx)

	stack := a.engine.CallStack()
	markers := stack.Markers()
	fmt.Fprintf(a.outW, "Call log (%d markers):\n", len(markers))
	for i, m := range markers {
		fmt.Fprintf(a.outW, "%4d  %s\n", i, diagnostic.FormatMarker(a.files, m))
	}

	calls, open := stack.GroupByCalls(a.engine.Builtin())
	if err := a.renderer.WriteChain(a.outW, calls, open); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Audit: %s\n", stack.Audit(a.engine.Builtin()))

	if evalErr != nil {
		return a.failed(evalErr)
	}
	return nil
}

func (a *App) failed(err error) error {
	var evalErr *engine.EvalError
	if !errors.As(err, &evalErr) {
		return err
	}
	a.report(err)
	return fmt.Errorf("%w: %s", ErrEvaluationFailed, evalErr.Summary)
}
