package analysis

import "github.com/yaklabco/ritobin-lsp/pkg/syntax"

// NodeMatch is the result of a point query.
type NodeMatch struct {
	// Stack holds the kinds of the trees enclosing Token, outermost first.
	Stack []syntax.TreeKind
	Token *syntax.Token
}

// FindNode returns the first token whose span contains offset together with
// its ancestors. Only tokens are addressable: an offset in whitespace or past
// the last token yields no match.
func FindNode(tree *syntax.Tree, offset uint32) (NodeMatch, bool) {
	finder := &nodeFinder{offset: offset}
	syntax.Walk(tree, finder)
	if finder.found == nil {
		return NodeMatch{}, false
	}
	return NodeMatch{Stack: finder.stack, Token: finder.found}, true
}

type nodeFinder struct {
	offset uint32
	stack  []syntax.TreeKind
	found  *syntax.Token
}

func (f *nodeFinder) EnterTree(tree *syntax.Tree) syntax.Visit {
	f.stack = append(f.stack, tree.Kind)
	return syntax.Continue
}

func (f *nodeFinder) VisitToken(tok *syntax.Token, _ *syntax.Tree) syntax.Visit {
	if tok.Span.Contains(f.offset) {
		f.found = tok
		return syntax.Stop
	}
	return syntax.Continue
}

func (f *nodeFinder) ExitTree(*syntax.Tree) syntax.Visit {
	f.stack = f.stack[:len(f.stack)-1]
	return syntax.Continue
}

// ClassMatch is the result of FindEnclosingClass.
type ClassMatch struct {
	// Name is the span of the innermost class name enclosing Token.
	Name  syntax.Span
	Token *syntax.Token
}

// FindEnclosingClass locates the token at offset and the name of the
// innermost class value containing it. It returns false when no token
// contains offset or the token is not inside a class.
func FindEnclosingClass(tree *syntax.Tree, offset uint32) (ClassMatch, bool) {
	finder := &classFinder{nodeFinder: nodeFinder{offset: offset}}
	syntax.Walk(tree, finder)
	if finder.found == nil || len(finder.classes) == 0 {
		return ClassMatch{}, false
	}
	return ClassMatch{Name: finder.classes[len(finder.classes)-1].name, Token: finder.found}, true
}

type classRecord struct {
	name  syntax.Span
	depth int
}

type classFinder struct {
	nodeFinder
	classes []classRecord
}

func (f *classFinder) EnterTree(tree *syntax.Tree) syntax.Visit {
	if tree.Kind == syntax.TreeClass && len(tree.Children) > 0 {
		f.classes = append(f.classes, classRecord{name: tree.Children[0].Span(), depth: len(f.stack)})
	}
	return f.nodeFinder.EnterTree(tree)
}

func (f *classFinder) ExitTree(tree *syntax.Tree) syntax.Visit {
	f.nodeFinder.ExitTree(tree)
	if n := len(f.classes); n > 0 && f.classes[n-1].depth >= len(f.stack) {
		f.classes = f.classes[:n-1]
	}
	return syntax.Continue
}
