package models

// Semantic field names used by the built-in layouts.
const (
	FieldTime          = "time"
	FieldCwnd          = "cwnd"
	FieldCwndUpdate    = "cwnd_update"
	FieldInflight      = "inflight"
	FieldBDP           = "bdp"
	FieldPackageWindow = "package_window"
	FieldDeliverWindow = "deliver_window"
	FieldPacketCount   = "packet_count"
)

// Field maps a semantic name to a position in the numeric tokens of a line.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Index int    `json:"index" yaml:"index"`
}

// Layout describes where the fields of one log-producer version sit in the
// flat list of numbers on a line. Adding or removing a number anywhere on a
// line shifts every later index.
type Layout struct {
	Name      string  `json:"name" yaml:"name"`
	Event     string  `json:"event,omitempty" yaml:"event,omitempty"`
	Fields    []Field `json:"fields" yaml:"fields"`
	MinTokens int     `json:"min_tokens,omitempty" yaml:"min_tokens,omitempty"`
	Sample    string  `json:"sample,omitempty" yaml:"sample,omitempty"`
}

// MaxIndex returns the highest token index used by the layout, or -1.
func (l *Layout) MaxIndex() int {
	max := -1
	for _, f := range l.Fields {
		if f.Index > max {
			max = f.Index
		}
	}
	return max
}

// NeededTokens is the number of tokens a line must carry to be extracted.
func (l *Layout) NeededTokens() int {
	if n := l.MaxIndex() + 1; n > l.MinTokens {
		return n
	}
	return l.MinTokens
}

// Position returns the slot of a named field in Record.Values.
func (l *Layout) Position(name string) (int, bool) {
	for i, f := range l.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Summarizable reports whether groups of this layout carry the fields a
// series summary is computed from.
func (l *Layout) Summarizable() bool {
	_, hasTime := l.Position(FieldTime)
	_, hasCount := l.Position(FieldPacketCount)
	return hasTime && hasCount
}

// FieldNames returns the field names in layout order.
func (l *Layout) FieldNames() []string {
	names := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		names[i] = f.Name
	}
	return names
}
