package syntax

// TokenKind classifies a lexical token.
type TokenKind uint8

// Token kinds produced by the lexer.
const (
	TokName TokenKind = iota
	TokString
	TokUnterminatedString
	TokNumber
	TokHexLit
	TokColon  // ':'
	TokComma  // ','
	TokEq     // '='
	TokLCurly // '{'
	TokRCurly // '}'
	TokLBrack // '['
	TokRBrack // ']'
	TokComment
	TokEOF
	TokError
)

//nolint:gochecknoglobals // Read-only lookup table.
var tokenKindNames = [...]string{
	TokName:               "name",
	TokString:             "string",
	TokUnterminatedString: "unterminated string",
	TokNumber:             "number",
	TokHexLit:             "hex literal",
	TokColon:              "':'",
	TokComma:              "','",
	TokEq:                 "'='",
	TokLCurly:             "'{'",
	TokRCurly:             "'}'",
	TokLBrack:             "'['",
	TokRBrack:             "']'",
	TokComment:            "comment",
	TokEOF:                "end of file",
	TokError:              "unknown token",
}

// String returns the human-readable description used in parse errors.
func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "token"
}

// IsLiteral returns true for string and number literal kinds.
func (k TokenKind) IsLiteral() bool {
	switch k {
	case TokString, TokUnterminatedString, TokNumber, TokHexLit:
		return true
	default:
		return false
	}
}

// Token is a classified span of the source.
type Token struct {
	Kind TokenKind
	Span Span
}

// Text returns the source text of the token.
func (t *Token) Text(src string) string {
	return t.Span.Text(src)
}
