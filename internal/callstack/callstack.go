package callstack

import (
	"github.com/vk/lazygrid/internal/ident"
	"github.com/vk/lazygrid/internal/position"
)

// CallStack is the marker log of one evaluation session. The zero value is
// an empty log ready for use.
type CallStack struct {
	markers []Marker
}

// New creates an empty call log.
func New() *CallStack {
	return &CallStack{}
}

// EnterVar records that a variable was resolved.
func (cs *CallStack) EnterVar(kind ident.Kind, id ident.Ident, pos position.TermPos) {
	cs.markers = append(cs.markers, VarEntered{Kind: kind, ID: id, Position: pos})
}

// EnterField records that a record field was accessed.
func (cs *CallStack) EnterField(id ident.Ident, posRecord, posField, posAccess position.TermPos) {
	cs.markers = append(cs.markers, FieldEntered{
		ID:        id,
		PosRecord: posRecord,
		PosField:  posField,
		PosAccess: posAccess,
	})
}

// EnterApp records that an application was evaluated. Applications without a
// position were generated by the evaluator and are ignored.
func (cs *CallStack) EnterApp(pos position.TermPos) {
	if pos.IsDef() {
		cs.markers = append(cs.markers, AppEvaluated{Position: pos})
	}
}

// EnterFun records that, during the evaluation of the application at pos,
// the function part reduced to a function and its body was entered.
// Applications without a position are ignored.
func (cs *CallStack) EnterFun(pos position.TermPos) {
	if pos.IsDef() {
		cs.markers = append(cs.markers, FunEntered{Position: pos})
	}
}

// Len returns the number of markers, used as a checkpoint before a strict
// sub-evaluation.
func (cs *CallStack) Len() int {
	return len(cs.markers)
}

// Truncate drops every marker past index n. Truncating to a length greater
// than or equal to Len is a no-op.
func (cs *CallStack) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(cs.markers) {
		return
	}
	clear(cs.markers[n:])
	cs.markers = cs.markers[:n]
}

// Markers returns a copy of the log.
func (cs *CallStack) Markers() []Marker {
	out := make([]Marker, len(cs.markers))
	copy(out, cs.markers)
	return out
}
