package entrypath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex parses a single segment, e.g. `name` or `name[1]`. Names follow
// HCL identifier rules.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_-]*)(?:\[(\d+)\])?$`)

// Parse creates a Path from its canonical string representation.
func Parse(raw string) (*Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("entry path cannot be empty")
	}

	path := &Path{}
	for _, segmentStr := range strings.Split(raw, ".") {
		if segmentStr == "" {
			return nil, fmt.Errorf("entry path contains empty segment")
		}

		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return nil, fmt.Errorf("invalid path segment format: %q", segmentStr)
		}

		segment := NewSegment(matches[1])
		if matches[2] != "" {
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				return nil, fmt.Errorf("invalid index in segment %q: %w", segmentStr, err)
			}
			segment = NewSegmentWithIndex(matches[1], index)
		}
		path.Segments = append(path.Segments, segment)
	}

	return path, nil
}
