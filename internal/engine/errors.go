package engine

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/lazygrid/internal/callstack"
)

// EvalError is an evaluation failure together with the call chain that led
// to it.
type EvalError struct {
	Summary string
	Detail  string
	Subject hcl.Range
	// Calls are the closed calls, innermost first.
	Calls []callstack.CallDescr
	// Open is the call that was still being set up, if any.
	Open *callstack.CallDescr
}

func (e *EvalError) Error() string {
	if e.Subject.Filename == "" {
		return fmt.Sprintf("%s: %s", e.Summary, e.Detail)
	}
	return fmt.Sprintf("%s: %s; %s", e.Subject, e.Summary, e.Detail)
}

// Diagnostic converts the error into an HCL diagnostic.
func (e *EvalError) Diagnostic() *hcl.Diagnostic {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  e.Summary,
		Detail:   e.Detail,
	}
	if e.Subject.Filename != "" {
		d.Subject = e.Subject.Ptr()
	}
	return d
}

// fail builds an EvalError, snapshotting the call chain from the current
// state of the call log.
func (ev *evaluator) fail(rng hcl.Range, summary, detail string) *EvalError {
	calls, open := ev.stack.GroupByCalls(ev.builtin)
	return &EvalError{
		Summary: summary,
		Detail:  detail,
		Subject: rng,
		Calls:   calls,
		Open:    open,
	}
}
