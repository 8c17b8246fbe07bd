package callstack

import (
	"slices"

	"github.com/vk/lazygrid/internal/ident"
	"github.com/vk/lazygrid/internal/position"
)

// CallDescr is the reconstructed description of one function call.
type CallDescr struct {
	// Head is the name of the called function, nil if it could not be inferred.
	Head *ident.Ident
	// Span is the source extent of the whole application.
	Span position.Span
}

// Name returns the head's name, or an empty string for anonymous calls.
func (c CallDescr) Name() string {
	if c.Head == nil {
		return ""
	}
	return c.Head.Name
}

// GroupByCalls aggregates the markers belonging to the same call. It returns
// the closed calls from the most nested/recent to the least, together with
// the last pending call, if any.
//
// When `f arg` is evaluated, the application is entered first (AppEvaluated),
// then the function part is evaluated, which resolves `f` (VarEntered), and
// finally the body of the resulting function is entered (FunEntered with the
// application's position). Several markers thus describe one call, and a
// multi-argument call `f a b` produces the nested sequence
// App(f a b) App(f a) Var(f) Fun(f a) Fun(f a b). GroupByCalls folds such
// sequences into a single CallDescr named after `f`.
//
// Markers attributed to builtinID, generated variables, and applications
// with inherited positions are ignored: they come from builtin contracts and
// program transformations and do not point at calls the user wrote.
//
// The log is not modified.
func (cs *CallStack) GroupByCalls(builtinID position.FileID) ([]CallDescr, *CallDescr) {
	var pending, entered []CallDescr

	for _, m := range cs.markers {
		if !keep(m, builtinID) {
			continue
		}

		switch m := m.(type) {
		case VarEntered:
			nameTop(pending, m.ID, m.Position.Unwrap())
		case FieldEntered:
			nameTop(pending, m.ID, m.PosAccess.Unwrap())
		case AppEvaluated:
			span := m.Position.Unwrap()
			if n := len(pending); n > 0 && position.IsSubcall(pending[n-1].Span, span) {
				// A curried sub-application of the pending call.
				continue
			}
			pending = append(pending, CallDescr{Span: span})
		case FunEntered:
			span := m.Position.Unwrap()
			if n := len(pending); n > 0 && pending[n-1].Span.Equal(span) {
				entered = append(entered, pending[n-1])
				pending = pending[:n-1]
			}
			// Otherwise this enters a sub-application already merged into
			// the pending call.
		}
	}

	slices.Reverse(entered)

	var open *CallDescr
	if n := len(pending); n > 0 {
		last := pending[n-1]
		open = &last
	}
	return entered, open
}

// keep reports whether a marker takes part in reconstruction.
func keep(m Marker, builtinID position.FileID) bool {
	switch m := m.(type) {
	case VarEntered:
		if m.ID.IsGenerated() {
			return false
		}
		return userPos(m.Position, builtinID, true)
	case FieldEntered:
		return userPos(m.PosAccess, builtinID, true)
	case AppEvaluated:
		return userPos(m.Position, builtinID, false)
	case FunEntered:
		return userPos(m.Position, builtinID, false)
	default:
		return false
	}
}

// userPos reports whether pos points outside the builtin file. Inherited
// positions are accepted only when allowInherited is set.
func userPos(pos position.TermPos, builtinID position.FileID, allowInherited bool) bool {
	switch {
	case pos.IsOriginal():
	case pos.IsInherited() && allowInherited:
	default:
		return false
	}
	return pos.Unwrap().File != builtinID
}

func nameTop(pending []CallDescr, id ident.Ident, span position.Span) {
	n := len(pending)
	if n == 0 {
		return
	}
	top := &pending[n-1]
	if top.Head == nil && position.Contains(top.Span, span) {
		head := id
		top.Head = &head
	}
}
