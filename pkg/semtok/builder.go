package semtok

import "github.com/yaklabco/ritobin-lsp/pkg/lines"

// FieldsPerToken is the number of integers a token occupies on the wire.
const FieldsPerToken = 5

// Token is a relatively encoded semantic token record.
type Token struct {
	DeltaLine  uint32
	DeltaStart uint32
	Length     uint32
	Type       TokenType
	Modifiers  ModifierSet
}

// Encode flattens tokens into the wire representation.
func Encode(tokens []Token) []uint32 {
	data := make([]uint32, 0, len(tokens)*FieldsPerToken)
	for _, tok := range tokens {
		data = append(data, tok.DeltaLine, tok.DeltaStart, tok.Length, uint32(tok.Type), uint32(tok.Modifiers))
	}
	return data
}

// Decode is the inverse of Encode. Trailing integers that do not form a
// complete record are ignored.
func Decode(data []uint32) []Token {
	tokens := make([]Token, 0, len(data)/FieldsPerToken)
	for i := 0; i+FieldsPerToken <= len(data); i += FieldsPerToken {
		tokens = append(tokens, Token{
			DeltaLine:  data[i],
			DeltaStart: data[i+1],
			Length:     data[i+2],
			Type:       TokenType(data[i+3]),
			Modifiers:  ModifierSet(data[i+4]),
		})
	}
	return tokens
}

type absToken struct {
	line, start, length uint32
	typ                 TokenType
	mods                ModifierSet
}

// Builder accumulates tokens in document order and encodes them relative to
// each other.
type Builder struct {
	tokens   []absToken
	fallback bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithStandardFallback makes the builder map custom types and modifiers to
// their standard equivalents. Tokens whose type has no standard fallback are
// dropped.
func (b *Builder) WithStandardFallback() *Builder {
	b.fallback = true
	return b
}

// Push adds a token covering rng, which must lie on a single line and come
// after every token pushed before. Empty ranges are ignored.
func (b *Builder) Push(rng lines.Range, typ TokenType, mods ModifierSet) {
	if rng.End.Character <= rng.Start.Character {
		return
	}
	if b.fallback {
		var ok bool
		if typ, ok = typ.StandardFallback(); !ok {
			return
		}
		mods = mods.StandardFallback()
	}
	b.tokens = append(b.tokens, absToken{
		line:   rng.Start.Line,
		start:  rng.Start.Character,
		length: rng.End.Character - rng.Start.Character,
		typ:    typ,
		mods:   mods,
	})
}

// Len returns the number of tokens pushed so far.
func (b *Builder) Len() int {
	return len(b.tokens)
}

// Build encodes the accumulated tokens. The first token is absolute; each
// following token stores the line delta and, on the same line, the column
// delta to its predecessor.
func (b *Builder) Build() []Token {
	out := make([]Token, 0, len(b.tokens))
	var prevLine, prevStart uint32
	for _, tok := range b.tokens {
		deltaLine := tok.line - prevLine
		deltaStart := tok.start
		if deltaLine == 0 {
			deltaStart = tok.start - prevStart
		}
		out = append(out, Token{
			DeltaLine:  deltaLine,
			DeltaStart: deltaStart,
			Length:     tok.length,
			Type:       tok.typ,
			Modifiers:  tok.mods,
		})
		prevLine, prevStart = tok.line, tok.start
	}
	return out
}
