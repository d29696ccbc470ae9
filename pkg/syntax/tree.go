package syntax

// TreeKind classifies a CST node.
type TreeKind uint8

// Tree kinds produced by the parser.
const (
	TreeFile TreeKind = iota
	TreeEntry
	TreeEntryKey
	TreeTypeExpr
	TreeTypeArgList
	TreeTypeArg
	TreeEntryValue
	TreeBlock
	TreeListItem
	TreeMapEntry
	TreeClass
	TreeError
)

//nolint:gochecknoglobals // Read-only lookup table.
var treeKindNames = [...]string{
	TreeFile:        "file",
	TreeEntry:       "entry",
	TreeEntryKey:    "entry key",
	TreeTypeExpr:    "type expression",
	TreeTypeArgList: "type argument list",
	TreeTypeArg:     "type argument",
	TreeEntryValue:  "entry value",
	TreeBlock:       "block",
	TreeListItem:    "list item",
	TreeMapEntry:    "map entry",
	TreeClass:       "class",
	TreeError:       "error",
}

// String returns the display name used as parse-error context.
func (k TreeKind) String() string {
	if int(k) < len(treeKindNames) {
		return treeKindNames[k]
	}
	return "tree"
}

// Tree is an interior CST node. Its children appear in document order.
type Tree struct {
	Kind     TreeKind
	Span     Span
	Children []Child
}

// Child is either a token or a subtree. Exactly one field is non-nil.
type Child struct {
	Token *Token
	Tree  *Tree
}

// Span returns the span of whichever variant is set.
func (c Child) Span() Span {
	if c.Token != nil {
		return c.Token.Span
	}
	if c.Tree != nil {
		return c.Tree.Span
	}
	return Span{}
}

// IsToken returns true if the child is a token of the given kind.
func (c Child) IsToken(kind TokenKind) bool {
	return c.Token != nil && c.Token.Kind == kind
}

// IsTree returns true if the child is a subtree of the given kind.
func (c Child) IsTree(kind TreeKind) bool {
	return c.Tree != nil && c.Tree.Kind == kind
}

// TokenChild wraps tok as a Child.
func TokenChild(tok *Token) Child {
	return Child{Token: tok}
}

// TreeChild wraps tree as a Child.
func TreeChild(tree *Tree) Child {
	return Child{Tree: tree}
}

// NewTree builds a tree and computes its span from the children.
// A tree without children gets an empty span at 0.
func NewTree(kind TreeKind, children ...Child) *Tree {
	tree := &Tree{Kind: kind, Children: children}
	tree.fixSpan(0)
	return tree
}

func (t *Tree) push(child Child) {
	t.Children = append(t.Children, child)
}

// fixSpan recomputes the span from the first and last child. Childless trees
// collapse to an empty span at fallback.
func (t *Tree) fixSpan(fallback uint32) {
	if len(t.Children) == 0 {
		t.Span = NewSpan(fallback, fallback)
		return
	}
	t.Span = NewSpan(t.Children[0].Span().Start, t.Children[len(t.Children)-1].Span().End)
}
