package entrypath

// Segment is a single component of a path, e.g. `name[index]`.
type Segment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewSegment creates a segment without an index.
func NewSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// NewSegmentWithIndex creates a segment that includes an index.
func NewSegmentWithIndex(name string, index int) Segment {
	return Segment{Name: name, Index: index}
}

// HasIndex returns true if the segment has an explicit index.
func (s Segment) HasIndex() bool {
	return s.Index != -1
}

// Path selects a value reachable from a top-level binding.
type Path struct {
	Segments []Segment
}

// Root returns the name of the top-level binding the path starts at.
func (p *Path) Root() string {
	if p == nil || len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[0].Name
}
