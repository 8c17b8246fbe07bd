package callstack

import (
	"fmt"

	"github.com/vk/lazygrid/internal/ident"
	"github.com/vk/lazygrid/internal/position"
)

// Marker is one event of the call log. The concrete types are FunEntered,
// AppEvaluated, VarEntered and FieldEntered.
type Marker interface {
	// Pos is the position the marker is attributed to when filtering.
	Pos() position.TermPos
	fmt.Stringer
	marker()
}

// FunEntered records that a function body was entered. Position is the
// position of the originating application, not of the function definition.
type FunEntered struct {
	Position position.TermPos
}

// AppEvaluated records that an application node was reduced.
type AppEvaluated struct {
	Position position.TermPos
}

// VarEntered records that a variable was resolved to its binding.
type VarEntered struct {
	Kind     ident.Kind
	ID       ident.Ident
	Position position.TermPos
}

// FieldEntered records that a record field was accessed.
type FieldEntered struct {
	ID        ident.Ident
	PosRecord position.TermPos
	PosField  position.TermPos
	PosAccess position.TermPos
}

func (m FunEntered) Pos() position.TermPos   { return m.Position }
func (m AppEvaluated) Pos() position.TermPos { return m.Position }
func (m VarEntered) Pos() position.TermPos   { return m.Position }
func (m FieldEntered) Pos() position.TermPos { return m.PosAccess }

func (FunEntered) marker()   {}
func (AppEvaluated) marker() {}
func (VarEntered) marker()   {}
func (FieldEntered) marker() {}

func (m FunEntered) String() string {
	return "fun " + m.Position.String()
}

func (m AppEvaluated) String() string {
	return "app " + m.Position.String()
}

func (m VarEntered) String() string {
	return fmt.Sprintf("var %s %q %s", m.Kind, m.ID.Name, m.Position)
}

func (m FieldEntered) String() string {
	return fmt.Sprintf("field %q record=%s field=%s access=%s", m.ID.Name, m.PosRecord, m.PosField, m.PosAccess)
}
