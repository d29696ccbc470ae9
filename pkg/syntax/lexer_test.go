package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/ritobin-lsp/pkg/syntax"
)

func kinds(tokens []syntax.Token) []syntax.TokenKind {
	out := make([]syntax.TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Kind)
	}
	return out
}

func TestLex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		expected []syntax.TokenKind
	}{
		{
			name:     "empty",
			src:      "",
			expected: []syntax.TokenKind{syntax.TokEOF},
		},
		{
			name: "simple entry",
			src:  "a: u8 = 1",
			expected: []syntax.TokenKind{
				syntax.TokName, syntax.TokColon, syntax.TokName, syntax.TokEq, syntax.TokNumber, syntax.TokEOF,
			},
		},
		{
			name: "type arguments",
			src:  "m: map[hash,embed]",
			expected: []syntax.TokenKind{
				syntax.TokName, syntax.TokColon, syntax.TokName, syntax.TokLBrack, syntax.TokName,
				syntax.TokComma, syntax.TokName, syntax.TokRBrack, syntax.TokEOF,
			},
		},
		{
			name:     "comment runs to end of line",
			src:      "#PROP_text\nx",
			expected: []syntax.TokenKind{syntax.TokComment, syntax.TokName, syntax.TokEOF},
		},
		{
			name:     "strings",
			src:      `"a\"b" 'c'`,
			expected: []syntax.TokenKind{syntax.TokString, syntax.TokString, syntax.TokEOF},
		},
		{
			name:     "unterminated string stops at newline",
			src:      "\"abc\nx",
			expected: []syntax.TokenKind{syntax.TokUnterminatedString, syntax.TokName, syntax.TokEOF},
		},
		{
			name:     "numbers and hex",
			src:      "-1.5 0xDEADbeef 42",
			expected: []syntax.TokenKind{syntax.TokNumber, syntax.TokHexLit, syntax.TokNumber, syntax.TokEOF},
		},
		{
			name:     "unknown character",
			src:      "@",
			expected: []syntax.TokenKind{syntax.TokError, syntax.TokEOF},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, kinds(syntax.Lex(testCase.src)))
		})
	}
}

func TestLex_Spans(t *testing.T) {
	t.Parallel()

	src := "key: string = \"v\""
	tokens := syntax.Lex(src)

	texts := make([]string, 0, len(tokens))
	for i := range tokens {
		texts = append(texts, tokens[i].Text(src))
	}

	assert.Equal(t, []string{"key", ":", "string", "=", `"v"`, ""}, texts)
	assert.Equal(t, syntax.NewSpan(uint32(len(src)), uint32(len(src))), tokens[len(tokens)-1].Span)
}

func TestLex_NonASCIIOutsideString(t *testing.T) {
	t.Parallel()

	src := "a: u8 = 1 😀 é"
	tokens := syntax.Lex(src)

	assert.Equal(t, []syntax.TokenKind{
		syntax.TokName, syntax.TokColon, syntax.TokName, syntax.TokEq, syntax.TokNumber,
		syntax.TokError, syntax.TokError, syntax.TokEOF,
	}, kinds(tokens))
	assert.Equal(t, "😀", tokens[5].Text(src))
	assert.Equal(t, "é", tokens[6].Text(src))
}
