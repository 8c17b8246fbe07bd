package callstack

import (
	"fmt"

	"github.com/vk/lazygrid/internal/position"
)

// Report summarises how well a log matches the nesting GroupByCalls expects.
// It is purely informational: GroupByCalls degrades silently on malformed
// logs and its result never depends on an audit.
type Report struct {
	Total    int // markers in the log
	Filtered int // markers dropped by the reconstruction filter
	Merged   int // applications folded into an enclosing pending call
	Closed   int // calls closed by a matching FunEntered
	Skipped  int // FunEntered markers that matched no pending call
	Pending  int // calls left open at the end of the log
	Unnamed  int // closed or pending calls without a head
}

// Audit replays the reconstruction over the log and counts what happened to
// each marker. An evaluator with correct instrumentation only produces
// Skipped markers for curried sub-applications, so Skipped == Merged for a
// completed evaluation.
func (cs *CallStack) Audit(builtinID position.FileID) Report {
	r := Report{Total: len(cs.markers)}
	var pending []position.Span

	for _, m := range cs.markers {
		if !keep(m, builtinID) {
			r.Filtered++
			continue
		}
		switch m := m.(type) {
		case AppEvaluated:
			span := m.Position.Unwrap()
			if n := len(pending); n > 0 && position.IsSubcall(pending[n-1], span) {
				r.Merged++
				continue
			}
			pending = append(pending, span)
		case FunEntered:
			span := m.Position.Unwrap()
			if n := len(pending); n > 0 && pending[n-1].Equal(span) {
				pending = pending[:n-1]
				r.Closed++
				continue
			}
			r.Skipped++
		}
	}
	r.Pending = len(pending)

	calls, open := cs.GroupByCalls(builtinID)
	for _, c := range calls {
		if c.Head == nil {
			r.Unnamed++
		}
	}
	if open != nil && open.Head == nil {
		r.Unnamed++
	}
	return r
}

// Consistent reports whether every skipped FunEntered is explained by a
// merged sub-application.
func (r Report) Consistent() bool {
	return r.Skipped <= r.Merged
}

func (r Report) String() string {
	return fmt.Sprintf("total=%d filtered=%d merged=%d closed=%d skipped=%d pending=%d unnamed=%d",
		r.Total, r.Filtered, r.Merged, r.Closed, r.Skipped, r.Pending, r.Unnamed)
}
