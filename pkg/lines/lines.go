// Package lines translates between byte offsets and the line/column
// positions used on the wire.
//
// Columns are counted in UTF-16 code units, the default position encoding of
// the language server protocol. For ASCII text a column is equal to the byte
// offset from the start of its line.
package lines

import (
	"iter"
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/yaklabco/ritobin-lsp/pkg/syntax"
)

// Position is a zero-based line and UTF-16 column.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range is a half-open interval between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// LineSpan is the part of a single line covered by a span. StartCol and
// EndCol are UTF-16 columns; EndCol is exclusive.
type LineSpan struct {
	Line     uint32
	StartCol uint32
	EndCol   uint32
}

// Len returns the number of columns covered.
func (ls LineSpan) Len() uint32 {
	return ls.EndCol - ls.StartCol
}

// LineNumbers indexes the line starts of a document.
type LineNumbers struct {
	text       string
	lineStarts []uint32
}

// New indexes text. The first line starts at 0 and every '\n' starts a new
// line one byte after it.
func New(text string) *LineNumbers {
	starts := make([]uint32, 1, 1+len(text)/32)
	for i := range len(text) {
		if text[i] == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &LineNumbers{text: text, lineStarts: starts}
}

// Len returns the byte length of the indexed text.
func (ln *LineNumbers) Len() uint32 {
	return uint32(len(ln.text))
}

// LineCount returns the number of lines. A trailing newline opens an
// additional, empty line.
func (ln *LineNumbers) LineCount() int {
	return len(ln.lineStarts)
}

// LineNumber returns the zero-based line containing byteIndex.
func (ln *LineNumbers) LineNumber(byteIndex uint32) uint32 {
	idx := sort.Search(len(ln.lineStarts), func(i int) bool {
		return ln.lineStarts[i] > byteIndex
	})
	return uint32(idx - 1)
}

// Position converts a byte offset into a line and UTF-16 column. Offsets past
// the end of the text are clamped to its length.
func (ln *LineNumbers) Position(byteIndex uint32) Position {
	byteIndex = min(byteIndex, ln.Len())
	line := ln.LineNumber(byteIndex)
	start := ln.lineStarts[line]
	return Position{Line: line, Character: utf16Len(ln.text[start:byteIndex])}
}

// ByteIndex converts a line and UTF-16 column back into a byte offset. A line
// past the end of the document maps to the text length; a column past the end
// of its line maps to the start of the next line.
func (ln *LineNumbers) ByteIndex(line, character uint32) uint32 {
	if int(line) >= len(ln.lineStarts) {
		return ln.Len()
	}
	start, end := ln.lineBounds(line)

	units := uint32(0)
	offset := start
	for offset < end && units < character {
		r, size := utf8.DecodeRuneInString(ln.text[offset:end])
		units += runeUnits(r)
		offset += uint32(size)
	}
	return offset
}

// Range converts both endpoints of span.
func (ln *LineNumbers) Range(span syntax.Span) Range {
	return Range{Start: ln.Position(span.Start), End: ln.Position(span.End)}
}

// SpanFromRange is the inverse of Range.
func (ln *LineNumbers) SpanFromRange(rng Range) syntax.Span {
	start := ln.ByteIndex(rng.Start.Line, rng.Start.Character)
	end := ln.ByteIndex(rng.End.Line, rng.End.Character)
	if end < start {
		end = start
	}
	return syntax.NewSpan(start, end)
}

// SpanLines yields the portion of every line touched by span, in order.
//
// A single-line span yields one entry with its exact columns. A multi-line
// span yields its first line from the start column to the end of the line
// (the terminating newline included), every interior line in full, and the
// last line from column 0 to the end column. A span ending right after a
// newline therefore yields an empty final entry.
func (ln *LineNumbers) SpanLines(span syntax.Span) iter.Seq[LineSpan] {
	return func(yield func(LineSpan) bool) {
		first := ln.Position(span.Start)
		last := ln.Position(span.End)

		for line := first.Line; line <= last.Line; line++ {
			entry := LineSpan{Line: line}
			switch {
			case first.Line == last.Line:
				entry.StartCol, entry.EndCol = first.Character, last.Character
			case line == first.Line:
				entry.StartCol, entry.EndCol = first.Character, ln.lineLen(line)
			case line == last.Line:
				entry.EndCol = last.Character
			default:
				entry.EndCol = ln.lineLen(line)
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// lineBounds returns the byte range of line, including its newline.
func (ln *LineNumbers) lineBounds(line uint32) (uint32, uint32) {
	start := ln.lineStarts[line]
	end := ln.Len()
	if int(line)+1 < len(ln.lineStarts) {
		end = ln.lineStarts[line+1]
	}
	return start, end
}

func (ln *LineNumbers) lineLen(line uint32) uint32 {
	start, end := ln.lineBounds(line)
	return utf16Len(ln.text[start:end])
}

func utf16Len(s string) uint32 {
	n := uint32(0)
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) uint32 {
	if utf16.RuneLen(r) == 2 { //nolint:mnd // surrogate pair
		return 2
	}
	return 1
}
