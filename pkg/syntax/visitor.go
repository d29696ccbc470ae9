package syntax

// Visit controls how Walk proceeds after a hook returns.
type Visit uint8

const (
	// Continue proceeds with the walk normally.
	Continue Visit = iota

	// Skip, returned from EnterTree, suppresses descent into the tree's
	// children. ExitTree is still called for the tree.
	Skip

	// Stop aborts the walk. No further hook is invoked, including the
	// ExitTree calls of ancestors that are still open.
	Stop
)

// Visitor receives callbacks while a tree is walked in document order.
type Visitor interface {
	// EnterTree is called before the children of tree are visited.
	EnterTree(tree *Tree) Visit

	// VisitToken is called for each token; parent is the tree that
	// directly contains it.
	VisitToken(tok *Token, parent *Tree) Visit

	// ExitTree is called after the children of tree were visited, or
	// skipped.
	ExitTree(tree *Tree) Visit
}

// BaseVisitor implements every Visitor hook as a no-op returning Continue.
// Embed it to override only the hooks a traversal needs.
type BaseVisitor struct{}

// EnterTree implements Visitor.
func (BaseVisitor) EnterTree(*Tree) Visit { return Continue }

// VisitToken implements Visitor.
func (BaseVisitor) VisitToken(*Token, *Tree) Visit { return Continue }

// ExitTree implements Visitor.
func (BaseVisitor) ExitTree(*Tree) Visit { return Continue }

// Walk performs a pre-order, depth-first traversal of tree. It returns Stop
// if a hook aborted the walk and Continue otherwise.
//
// EnterTree and ExitTree calls are balanced unless the walk is stopped.
func Walk(tree *Tree, visitor Visitor) Visit {
	if tree == nil {
		return Continue
	}

	switch visitor.EnterTree(tree) {
	case Stop:
		return Stop
	case Skip:
	case Continue:
		for _, child := range tree.Children {
			var result Visit
			if child.Token != nil {
				result = visitor.VisitToken(child.Token, tree)
			} else {
				result = Walk(child.Tree, visitor)
			}
			if result == Stop {
				return Stop
			}
		}
	}

	if visitor.ExitTree(tree) == Stop {
		return Stop
	}
	return Continue
}
