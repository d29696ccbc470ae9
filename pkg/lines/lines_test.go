package lines_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ritobin-lsp/pkg/lines"
	"github.com/yaklabco/ritobin-lsp/pkg/syntax"
)

const gleam = `import gleam/io

pub fn main() {
  io.println("Hello, world!")
}
`

func TestByteIndex(t *testing.T) {
	t.Parallel()

	ln := lines.New(gleam)

	tests := []struct {
		name      string
		line      uint32
		character uint32
		expected  uint32
	}{
		{name: "origin", line: 0, character: 0, expected: 0},
		{name: "first line", line: 0, character: 4, expected: 4},
		{name: "past last line", line: 100, character: 1, expected: uint32(len(gleam))},
		{name: "after blank line", line: 2, character: 1, expected: 18},
		{name: "column past line end", line: 1, character: 50, expected: 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ln.ByteIndex(tt.line, tt.character))
		})
	}
}

func TestPosition_RoundTripASCII(t *testing.T) {
	t.Parallel()

	texts := []string{
		"",
		"a",
		gleam,
		"a: u8 = 1\n\n\nb: list[u8] = {\n  1\n  2\n}",
		"\n\n",
	}

	for _, text := range texts {
		ln := lines.New(text)
		for i := range uint32(len(text)) + 1 {
			pos := ln.Position(i)
			assert.Equal(t, i, ln.ByteIndex(pos.Line, pos.Character), "offset %d in %q", i, text)
		}
	}
}

func TestLineNumber(t *testing.T) {
	t.Parallel()

	ln := lines.New("ab\ncd\n\nef")

	expected := []uint32{0, 0, 0, 1, 1, 1, 2, 3, 3, 3}
	for i, line := range expected {
		assert.Equal(t, line, ln.LineNumber(uint32(i)), "offset %d", i)
	}
	assert.Equal(t, 4, ln.LineCount())
}

func TestPosition_UTF16(t *testing.T) {
	t.Parallel()

	// "é" is 2 bytes and one UTF-16 unit, "😀" is 4 bytes and two units.
	text := "é😀x\nab"
	ln := lines.New(text)

	xOffset := uint32(strings.Index(text, "x"))
	assert.Equal(t, lines.Position{Line: 0, Character: 3}, ln.Position(xOffset))
	assert.Equal(t, xOffset, ln.ByteIndex(0, 3))

	bOffset := uint32(strings.Index(text, "b"))
	assert.Equal(t, lines.Position{Line: 1, Character: 1}, ln.Position(bOffset))
}

func TestRange(t *testing.T) {
	t.Parallel()

	text := "a: u8 = 1\nbb: string = \"x\""
	ln := lines.New(text)

	start := strings.Index(text, "string")
	end := start + strings.Index(text[start:], " =")
	span := syntax.NewSpan(uint32(start), uint32(end))
	rng := ln.Range(span)

	assert.Equal(t, lines.Range{
		Start: lines.Position{Line: 1, Character: 4},
		End:   lines.Position{Line: 1, Character: 10},
	}, rng)
	assert.Equal(t, span, ln.SpanFromRange(rng))
}

func TestSpanLines(t *testing.T) {
	t.Parallel()

	text := "abc\ndefg\nhi\njkl"
	ln := lines.New(text)

	tests := []struct {
		name     string
		span     syntax.Span
		expected []lines.LineSpan
	}{
		{
			name:     "single line",
			span:     syntax.NewSpan(5, 7),
			expected: []lines.LineSpan{{Line: 1, StartCol: 1, EndCol: 3}},
		},
		{
			name: "two lines",
			span: syntax.NewSpan(2, 6),
			expected: []lines.LineSpan{
				{Line: 0, StartCol: 2, EndCol: 4},
				{Line: 1, StartCol: 0, EndCol: 2},
			},
		},
		{
			name: "interior lines in full",
			span: syntax.NewSpan(1, 14),
			expected: []lines.LineSpan{
				{Line: 0, StartCol: 1, EndCol: 4},
				{Line: 1, StartCol: 0, EndCol: 5},
				{Line: 2, StartCol: 0, EndCol: 3},
				{Line: 3, StartCol: 0, EndCol: 2},
			},
		},
		{
			name:     "empty span",
			span:     syntax.NewSpan(4, 4),
			expected: []lines.LineSpan{{Line: 1, StartCol: 0, EndCol: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got []lines.LineSpan
			for entry := range ln.SpanLines(tt.span) {
				got = append(got, entry)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSpanLines_Reconstructs(t *testing.T) {
	t.Parallel()

	text := "entries: map[hash, embed] = {\n  \"a\n  b\" = 1\n}\n# tail\n"
	ln := lines.New(text)

	for start := range uint32(len(text)) + 1 {
		for end := start; end <= uint32(len(text)); end++ {
			span := syntax.NewSpan(start, end)

			var sb strings.Builder
			for entry := range ln.SpanLines(span) {
				from := ln.ByteIndex(entry.Line, entry.StartCol)
				to := ln.ByteIndex(entry.Line, entry.EndCol)
				require.LessOrEqual(t, from, to)
				sb.WriteString(text[from:to])
			}

			require.Equal(t, text[start:end], sb.String(), "span %d..%d", start, end)
		}
	}
}

func TestSpanLines_Restartable(t *testing.T) {
	t.Parallel()

	ln := lines.New("ab\ncd\nef")
	seq := ln.SpanLines(syntax.NewSpan(1, 7))

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}

	assert.Equal(t, 3, count())
	assert.Equal(t, 3, count())

	for entry := range seq {
		assert.Equal(t, uint32(0), entry.Line)
		break
	}
}
