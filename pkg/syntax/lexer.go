package syntax

import "unicode/utf8"

// Lex splits src into tokens. Whitespace and line breaks are dropped; comments
// are kept. The returned slice always ends with a TokEOF token.
func Lex(src string) []Token {
	lx := lexer{src: src}
	var tokens []Token
	for {
		tok := lx.next()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			return tokens
		}
	}
}

type lexer struct {
	src    string
	cursor int
}

func (lx *lexer) next() Token {
	lx.skipWhitespace()

	start := lx.cursor
	if lx.cursor >= len(lx.src) {
		return lx.token(TokEOF, start)
	}

	ch := lx.src[lx.cursor]
	switch {
	case ch == '#':
		for lx.cursor < len(lx.src) && lx.src[lx.cursor] != '\n' {
			lx.cursor++
		}
		return lx.token(TokComment, start)
	case ch == '"' || ch == '\'':
		return lx.scanString(ch)
	case ch == '0' && lx.peek(1) == 'x' || ch == '0' && lx.peek(1) == 'X':
		lx.cursor += 2
		for lx.cursor < len(lx.src) && isHexDigit(lx.src[lx.cursor]) {
			lx.cursor++
		}
		return lx.token(TokHexLit, start)
	case isDigit(ch) || (ch == '-' || ch == '+' || ch == '.') && isDigit(lx.peek(1)):
		lx.cursor++
		for lx.cursor < len(lx.src) && isNumberTail(lx.src[lx.cursor]) {
			lx.cursor++
		}
		return lx.token(TokNumber, start)
	case isIdentStart(ch):
		for lx.cursor < len(lx.src) && isIdentPart(lx.src[lx.cursor]) {
			lx.cursor++
		}
		return lx.token(TokName, start)
	}

	if ch >= utf8.RuneSelf {
		_, size := utf8.DecodeRuneInString(lx.src[lx.cursor:])
		lx.cursor += size
		return lx.token(TokError, start)
	}

	lx.cursor++
	kind := TokError
	switch ch {
	case ':':
		kind = TokColon
	case ',':
		kind = TokComma
	case '=':
		kind = TokEq
	case '{':
		kind = TokLCurly
	case '}':
		kind = TokRCurly
	case '[':
		kind = TokLBrack
	case ']':
		kind = TokRBrack
	}
	return lx.token(kind, start)
}

// scanString consumes a quoted string. A string that reaches the end of its
// line or of the input without a closing quote is unterminated.
func (lx *lexer) scanString(quote byte) Token {
	start := lx.cursor
	lx.cursor++
	for lx.cursor < len(lx.src) {
		switch lx.src[lx.cursor] {
		case '\\':
			lx.cursor += 2
			if lx.cursor > len(lx.src) {
				lx.cursor = len(lx.src)
			}
			continue
		case '\n':
			return lx.token(TokUnterminatedString, start)
		case quote:
			lx.cursor++
			return lx.token(TokString, start)
		}
		lx.cursor++
	}
	return lx.token(TokUnterminatedString, start)
}

func (lx *lexer) skipWhitespace() {
	for lx.cursor < len(lx.src) {
		switch lx.src[lx.cursor] {
		case ' ', '\t', '\r', '\n':
			lx.cursor++
		default:
			return
		}
	}
}

func (lx *lexer) peek(n int) byte {
	if lx.cursor+n < len(lx.src) {
		return lx.src[lx.cursor+n]
	}
	return 0
}

func (lx *lexer) token(kind TokenKind, start int) Token {
	return Token{Kind: kind, Span: NewSpan(uint32(start), uint32(lx.cursor))}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// isNumberTail accepts everything that may continue a numeric literal,
// including letters so that malformed numbers stay a single token.
func isNumberTail(ch byte) bool {
	return isIdentPart(ch) || ch == '.'
}
