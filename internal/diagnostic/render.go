// Package diagnostic renders evaluation failures for humans: the HCL
// diagnostic with a source snippet, followed by the call chain recovered from
// the call log.
package diagnostic

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/lazygrid/internal/callstack"
	"github.com/vk/lazygrid/internal/engine"
	"github.com/vk/lazygrid/internal/position"
)

// anonymous is shown for calls whose head could not be inferred.
const anonymous = "<anonymous>"

// Renderer writes errors returned by the loader and the engine.
type Renderer struct {
	files    *position.Files
	hclFiles map[string]*hcl.File
	width    uint
	color    bool

	heading *color.Color
	name    *color.Color
	loc     *color.Color
}

// NewRenderer creates a renderer. hclFiles provides the sources for
// snippets; width wraps diagnostic text, 0 disables wrapping.
func NewRenderer(files *position.Files, hclFiles map[string]*hcl.File, width uint, useColor bool) *Renderer {
	r := &Renderer{
		files:    files,
		hclFiles: hclFiles,
		width:    width,
		color:    useColor,
		heading:  color.New(color.Bold),
		name:     color.New(color.FgCyan, color.Bold),
		loc:      color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.heading, r.name, r.loc} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Write renders err to w.
func (r *Renderer) Write(w io.Writer, err error) error {
	diagWriter := hcl.NewDiagnosticTextWriter(w, r.hclFiles, r.width, r.color)

	var evalErr *engine.EvalError
	if errors.As(err, &evalErr) {
		if err := diagWriter.WriteDiagnostic(evalErr.Diagnostic()); err != nil {
			return err
		}
		return r.WriteChain(w, evalErr.Calls, evalErr.Open)
	}

	var diags hcl.Diagnostics
	if errors.As(err, &diags) {
		return diagWriter.WriteDiagnostics(diags)
	}

	_, werr := fmt.Fprintf(w, "Error: %s\n", err)
	return werr
}

// WriteChain renders reconstructed calls, innermost first, and the call that
// was still being set up.
func (r *Renderer) WriteChain(w io.Writer, calls []callstack.CallDescr, open *callstack.CallDescr) error {
	if len(calls) > 0 {
		if _, err := r.heading.Fprintln(w, "Call chain (innermost first):"); err != nil {
			return err
		}
		for _, c := range calls {
			if err := r.writeCall(w, c); err != nil {
				return err
			}
		}
	}
	if open != nil {
		if _, err := r.heading.Fprintln(w, "While evaluating the call:"); err != nil {
			return err
		}
		return r.writeCall(w, *open)
	}
	return nil
}

func (r *Renderer) writeCall(w io.Writer, c callstack.CallDescr) error {
	name := c.Name()
	if name == "" {
		name = anonymous
	}
	if _, err := fmt.Fprint(w, "  "); err != nil {
		return err
	}
	if _, err := r.name.Fprint(w, name); err != nil {
		return err
	}
	_, err := r.loc.Fprintf(w, " at %s\n", r.files.Describe(c.Span))
	return err
}

// FormatMarker describes one call log entry with resolved source locations.
func FormatMarker(files *position.Files, m callstack.Marker) string {
	switch m := m.(type) {
	case callstack.AppEvaluated:
		return fmt.Sprintf("app    %s", describePos(files, m.Position))
	case callstack.FunEntered:
		return fmt.Sprintf("fun    %s", describePos(files, m.Position))
	case callstack.VarEntered:
		return fmt.Sprintf("var    %s %s (%s)", describePos(files, m.Position), m.ID, m.Kind)
	case callstack.FieldEntered:
		return fmt.Sprintf("field  %s %s (record %s)", describePos(files, m.PosAccess), m.ID, describePos(files, m.PosRecord))
	default:
		return fmt.Sprint(m)
	}
}

func describePos(files *position.Files, pos position.TermPos) string {
	span, ok := pos.Span()
	if !ok {
		return "-"
	}
	desc := files.Describe(span)
	if pos.IsInherited() {
		return desc + " [inherited]"
	}
	return desc
}
