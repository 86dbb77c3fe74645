// Package audit records the human-readable trail a resolution run leaves
// behind. The trail explains decisions after the fact; nothing reads it to
// decide anything.
package audit

import (
	"fmt"
	"strings"
)

// Part is one line of the trail. Depth is the number of open stages at the
// time it was written.
type Part struct {
	Depth int
	Text  string
}

// Description is an ordered log of pipeline stages and annotations. All
// methods accept a nil receiver and do nothing, so components can be used
// without an audit trail.
type Description struct {
	parts []Part
	depth int
}

// New returns an empty description.
func New() *Description {
	return &Description{}
}

// StartStage opens a named stage; subsequent text is nested under it.
func (d *Description) StartStage(name string) *Description {
	if d == nil {
		return nil
	}
	d.parts = append(d.parts, Part{Depth: d.depth, Text: name})
	d.depth++
	return d
}

// FinishStage closes the innermost open stage.
func (d *Description) FinishStage() *Description {
	if d == nil {
		return nil
	}
	if d.depth > 0 {
		d.depth--
	}
	return d
}

// AppendText adds a formatted annotation at the current depth.
func (d *Description) AppendText(format string, args ...any) *Description {
	if d == nil {
		return nil
	}
	d.parts = append(d.parts, Part{Depth: d.depth, Text: fmt.Sprintf(format, args...)})
	return d
}

// Parts returns a copy of the recorded lines.
func (d *Description) Parts() []Part {
	if d == nil {
		return nil
	}
	out := make([]Part, len(d.parts))
	copy(out, d.parts)
	return out
}

// Contains reports whether any line contains substr.
func (d *Description) Contains(substr string) bool {
	if d == nil {
		return false
	}
	for _, part := range d.parts {
		if strings.Contains(part.Text, substr) {
			return true
		}
	}
	return false
}

func (d *Description) String() string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range d.parts {
		b.WriteString(strings.Repeat("  ", part.Depth))
		b.WriteString(part.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
