package semtok

import (
	"github.com/yaklabco/ritobin-lsp/pkg/lines"
	"github.com/yaklabco/ritobin-lsp/pkg/syntax"
)

// Classify picks the token type for tok given the kind of its innermost
// enclosing tree. Comments, punctuation and brackets are classified the same
// everywhere; names take their meaning from the tree; literals keep a literal
// type. It returns false for tokens that are not highlighted.
func Classify(enclosing syntax.TreeKind, tok syntax.TokenKind) (TokenType, bool) {
	switch tok {
	case syntax.TokComment:
		return TypeComment, true
	case syntax.TokColon, syntax.TokComma, syntax.TokEq:
		return TypePunctuation, true
	case syntax.TokLCurly, syntax.TokRCurly, syntax.TokLBrack, syntax.TokRBrack:
		return TypeBracket, true
	default:
	}

	switch enclosing {
	case syntax.TreeTypeExpr:
		return TypeType, true
	case syntax.TreeTypeArg, syntax.TreeTypeArgList:
		return TypeTypeParameter, true
	case syntax.TreeClass:
		return TypeClass, true
	default:
	}

	switch tok {
	case syntax.TokName:
		return TypeKeyword, true
	case syntax.TokString, syntax.TokUnterminatedString:
		return TypeString, true
	case syntax.TokNumber, syntax.TokHexLit:
		return TypeNumber, true
	default:
		return 0, false
	}
}

// Collect classifies the tokens of tree and feeds them to builder. When rng
// is non-nil only tokens intersecting it are considered. Multi-line tokens are
// pushed once per line they cover.
func Collect(tree *syntax.Tree, ln *lines.LineNumbers, rng *syntax.Span, builder *Builder) {
	syntax.Walk(tree, &collector{lines: ln, rng: rng, builder: builder})
}

type collector struct {
	lines   *lines.LineNumbers
	rng     *syntax.Span
	builder *Builder
	stack   []syntax.TreeKind
}

// Error trees do not take part in classification; their tokens are
// classified by the tree around them.
func (c *collector) EnterTree(tree *syntax.Tree) syntax.Visit {
	if tree.Kind != syntax.TreeError {
		c.stack = append(c.stack, tree.Kind)
	}
	return syntax.Continue
}

func (c *collector) ExitTree(tree *syntax.Tree) syntax.Visit {
	if tree.Kind != syntax.TreeError {
		c.stack = c.stack[:len(c.stack)-1]
	}
	return syntax.Continue
}

func (c *collector) VisitToken(tok *syntax.Token, _ *syntax.Tree) syntax.Visit {
	if c.rng != nil && !tok.Span.Intersects(*c.rng) {
		return syntax.Continue
	}

	enclosing := syntax.TreeFile
	if len(c.stack) > 0 {
		enclosing = c.stack[len(c.stack)-1]
	}
	typ, ok := Classify(enclosing, tok.Kind)
	if !ok {
		return syntax.Continue
	}

	for part := range c.lines.SpanLines(tok.Span) {
		c.builder.Push(lines.Range{
			Start: lines.Position{Line: part.Line, Character: part.StartCol},
			End:   lines.Position{Line: part.Line, Character: part.EndCol},
		}, typ, 0)
	}
	return syntax.Continue
}
