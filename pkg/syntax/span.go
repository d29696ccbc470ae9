// Package syntax provides the error-tolerant ritobin front end: a lexer,
// a concrete syntax tree (CST) that keeps every significant token, a flat
// parse-error list, and the visitor framework used to walk the tree.
package syntax

// Span is a half-open byte interval [Start, End) into the source text.
type Span struct {
	// Start is the byte index where the span begins (inclusive).
	Start uint32

	// End is the byte index where the span ends (exclusive).
	End uint32
}

// NewSpan returns the span [start, end).
func NewSpan(start, end uint32) Span {
	return Span{Start: start, End: end}
}

// Len returns the length of the span in bytes.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

// IsEmpty returns true if the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Contains returns true if offset falls inside the span.
func (s Span) Contains(offset uint32) bool {
	return offset >= s.Start && offset < s.End
}

// Intersects returns true if the two spans share at least one byte.
func (s Span) Intersects(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Text returns the source text covered by the span.
// Returns "" if the span lies outside src.
func (s Span) Text(src string) string {
	if s.Start > s.End || int(s.End) > len(src) {
		return ""
	}
	return src[s.Start:s.End]
}
