package analysis

import (
	"fmt"
	"maps"
	"slices"

	"github.com/yaklabco/ritobin-lsp/pkg/syntax"
)

// ParamRule describes which type parameters a type accepts.
type ParamRule uint8

const (
	// ParamsNone rejects any bracketed parameter group.
	ParamsNone ParamRule = iota
	// ParamsOpaque accepts anything; parameters are not inspected.
	ParamsOpaque
	// ParamsExactlyOne requires a single type argument.
	ParamsExactlyOne
)

// ValueRule constrains the value of an entry.
type ValueRule uint8

const (
	// ValueAny accepts every value.
	ValueAny ValueRule = iota
	// ValueString requires a string literal.
	ValueString
)

// TypeRule is the validation rule for one type name.
type TypeRule struct {
	Params ParamRule
	Value  ValueRule
}

// TypeRules maps every known type name to its rule. Names missing from the
// table are reported as unknown types.
//
//nolint:gochecknoglobals // Read-only rule table.
var TypeRules = map[string]TypeRule{
	"u8":     {Params: ParamsNone},
	"u16":    {Params: ParamsNone},
	"u32":    {Params: ParamsNone},
	"i8":     {Params: ParamsNone},
	"i16":    {Params: ParamsNone},
	"i32":    {Params: ParamsNone},
	"string": {Params: ParamsNone, Value: ValueString},
	"map":    {Params: ParamsOpaque},
	"embed":  {Params: ParamsOpaque},
	"list":   {Params: ParamsExactlyOne},
}

// TypeNames returns the known type names in sorted order.
func TypeNames() []string {
	return slices.Sorted(maps.Keys(TypeRules))
}

// Type checker messages.
const (
	msgMissingTypeParam  = "missing type parameter"
	msgListRequiresParam = "list requires type parameter"
	msgTooManyTypeParams = "too many type parameters"
	msgValueMustBeString = "type of bin value must be string"
	fmtNoTypeParams      = "type %s does not take type parameters"
	fmtUnknownType       = "unknown type '%s'"
)

// TypeCheck validates every entry of tree against TypeRules.
//
// Each entry is matched child by child. When the entry does not have the
// expected shape, for example because the parser gave up half way, checking
// of that entry stops without a diagnostic and the walk moves on.
func TypeCheck(src string, tree *syntax.Tree) []Diagnostic {
	checker := &typeChecker{src: src}
	syntax.Walk(tree, checker)
	return checker.diags
}

type typeChecker struct {
	syntax.BaseVisitor
	src   string
	diags []Diagnostic
}

func (c *typeChecker) EnterTree(tree *syntax.Tree) syntax.Visit {
	if tree.Kind == syntax.TreeEntry {
		c.checkEntry(tree)
	}
	return syntax.Continue
}

func (c *typeChecker) report(span syntax.Span, message string) {
	c.diags = append(c.diags, Diagnostic{
		Span:     span,
		Severity: SeverityError,
		Message:  message,
		Origin:   OriginTypeCheck,
	})
}

func (c *typeChecker) checkEntry(entry *syntax.Tree) {
	children := newCursor(entry)
	if _, ok := children.tree(syntax.TreeEntryKey); !ok {
		return
	}
	if _, ok := children.token(syntax.TokColon); !ok {
		return
	}
	typeExpr, ok := children.tree(syntax.TreeTypeExpr)
	if !ok {
		return
	}

	typeChildren := newCursor(typeExpr)
	nameTok, ok := typeChildren.token(syntax.TokName)
	if !ok {
		return
	}
	name := nameTok.Text(c.src)

	rule, known := TypeRules[name]
	if !known {
		c.report(typeExpr.Span, fmt.Sprintf(fmtUnknownType, name))
		return
	}

	switch rule.Params {
	case ParamsNone:
		if open, ok := typeChildren.token(syntax.TokLBrack); ok {
			c.report(syntax.NewSpan(open.Span.Start, typeExpr.Span.End), fmt.Sprintf(fmtNoTypeParams, name))
		}
	case ParamsExactlyOne:
		if !c.checkSingleParam(nameTok, typeExpr, typeChildren) {
			return
		}
	case ParamsOpaque:
	}

	if rule.Value == ValueString {
		c.checkStringValue(children)
	}
}

// checkSingleParam validates a `name[arg]` group. It returns false when
// checking of the entry should stop.
func (c *typeChecker) checkSingleParam(nameTok *syntax.Token, typeExpr *syntax.Tree, children *cursor) bool {
	if _, ok := children.token(syntax.TokLBrack); !ok {
		c.report(nameTok.Span, msgMissingTypeParam)
		return false
	}

	next, ok := children.next()
	switch {
	case ok && next.IsToken(syntax.TokRBrack):
		c.report(nameTok.Span, msgMissingTypeParam)
		return false
	case !ok || !next.IsTree(syntax.TreeTypeArgList):
		c.report(nameTok.Span, msgListRequiresParam)
		return false
	}

	var args []syntax.Child
	for _, child := range next.Tree.Children {
		if child.IsToken(syntax.TokComma) || child.IsToken(syntax.TokComment) {
			continue
		}
		args = append(args, child)
	}

	switch {
	case len(args) == 0:
		c.report(nameTok.Span, msgMissingTypeParam)
		return false
	case !args[0].IsTree(syntax.TreeTypeArg):
		c.report(nameTok.Span, msgListRequiresParam)
		return false
	case len(args) > 1:
		end := typeExpr.Span.End
		if last := typeExpr.Children[len(typeExpr.Children)-1]; last.IsToken(syntax.TokRBrack) {
			end = last.Span().Start
		}
		c.report(syntax.NewSpan(args[1].Span().Start, end), msgTooManyTypeParams)
		return false
	}

	_, ok = children.token(syntax.TokRBrack)
	return ok
}

func (c *typeChecker) checkStringValue(children *cursor) {
	if _, ok := children.token(syntax.TokEq); !ok {
		return
	}
	value, ok := children.tree(syntax.TreeEntryValue)
	if !ok {
		return
	}
	first, ok := newCursor(value).next()
	if !ok {
		return
	}
	if first.IsToken(syntax.TokString) || first.IsToken(syntax.TokUnterminatedString) {
		return
	}
	c.report(first.Span(), msgValueMustBeString)
}

// cursor steps through the children of a tree, skipping comments.
type cursor struct {
	children []syntax.Child
	pos      int
}

func newCursor(tree *syntax.Tree) *cursor {
	return &cursor{children: tree.Children}
}

func (c *cursor) next() (syntax.Child, bool) {
	for c.pos < len(c.children) {
		child := c.children[c.pos]
		c.pos++
		if child.IsToken(syntax.TokComment) {
			continue
		}
		return child, true
	}
	return syntax.Child{}, false
}

// token consumes the next child when it is a token of kind.
func (c *cursor) token(kind syntax.TokenKind) (*syntax.Token, bool) {
	save := c.pos
	child, ok := c.next()
	if !ok || !child.IsToken(kind) {
		c.pos = save
		return nil, false
	}
	return child.Token, true
}

// tree consumes the next child when it is a tree of kind.
func (c *cursor) tree(kind syntax.TreeKind) (*syntax.Tree, bool) {
	save := c.pos
	child, ok := c.next()
	if !ok || !child.IsTree(kind) {
		c.pos = save
		return nil, false
	}
	return child.Tree, true
}
