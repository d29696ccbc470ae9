package syntax

import "strconv"

// Parse builds a CST for src. Parsing never fails: malformed input produces
// ErrorTree nodes and entries in the returned error list, and the rest of the
// document is still parsed.
func Parse(src string) (*Tree, []Error) {
	p := &parser{src: src, tokens: Lex(src)}
	return p.file(), p.errors
}

type parser struct {
	src    string
	tokens []Token
	pos    int
	errors []Error
}

func (p *parser) file() *Tree {
	root := &Tree{Kind: TreeFile}
	for {
		p.eatTrivia(root)
		switch kind := p.peek(0); {
		case kind == TokEOF:
			root.Span = NewSpan(0, uint32(len(p.src)))
			return root
		case isKeyStart(kind):
			root.push(TreeChild(p.entry()))
		default:
			p.recover(root)
		}
	}
}

// entry parses `key ':' type '=' value`. Parsing stops at the first missing
// element; the caller resumes at the offending token.
func (p *parser) entry() *Tree {
	entry := &Tree{Kind: TreeEntry}

	key := &Tree{Kind: TreeEntryKey}
	p.eatTrivia(entry)
	p.bump(key)
	entry.push(TreeChild(p.finish(key)))

	if !p.expect(entry, TokColon, "':'") {
		return p.finish(entry)
	}
	entry.push(TreeChild(p.typeExpr()))
	if !p.expect(entry, TokEq, "'='") {
		return p.finish(entry)
	}

	value := &Tree{Kind: TreeEntryValue}
	p.value(value, "value")
	entry.push(TreeChild(p.finish(value)))

	return p.finish(entry)
}

func (p *parser) typeExpr() *Tree {
	expr := &Tree{Kind: TreeTypeExpr}
	if !p.expect(expr, TokName, "type name") {
		return p.finish(expr)
	}
	if p.peek(0) != TokLBrack {
		return p.finish(expr)
	}

	p.bump(expr)
	if p.peek(0) != TokRBrack {
		if args := p.typeArgList(); len(args.Children) > 0 {
			expr.push(TreeChild(args))
		}
	}
	p.expect(expr, TokRBrack, "']'")

	return p.finish(expr)
}

func (p *parser) typeArgList() *Tree {
	list := &Tree{Kind: TreeTypeArgList}
	for {
		switch kind := p.peek(0); {
		case kind == TokName:
			arg := &Tree{Kind: TreeTypeArg}
			p.eatTrivia(list)
			p.bump(arg)
			list.push(TreeChild(p.finish(arg)))
		case isTypeArgTerminator(kind):
			p.errorExpected(list.Kind, "type argument")
		default:
			p.recover(list)
		}

		if p.peek(0) != TokComma {
			return p.finish(list)
		}
		p.bump(list)
	}
}

// value parses a single value into parent. It reports an Expected error and
// returns false when the current token cannot start a value.
func (p *parser) value(parent *Tree, what string) bool {
	switch p.peek(0) {
	case TokString, TokUnterminatedString, TokNumber, TokHexLit:
		p.bump(parent)
	case TokName:
		if p.peek(1) == TokColon {
			// The name starts the next entry; the value is missing.
			p.errorExpected(parent.Kind, what)
			return false
		}
		if p.peek(1) != TokLCurly {
			p.bump(parent)
			break
		}
		class := &Tree{Kind: TreeClass}
		p.eatTrivia(parent)
		p.bump(class)
		class.push(TreeChild(p.block()))
		parent.push(TreeChild(p.finish(class)))
	case TokLCurly, TokLBrack:
		parent.push(TreeChild(p.block()))
	default:
		p.errorExpected(parent.Kind, what)
		return false
	}
	return true
}

// block parses a braced or bracketed body holding entries, map entries or
// list items, optionally separated by commas.
func (p *parser) block() *Tree {
	block := &Tree{Kind: TreeBlock}
	closer := TokRCurly
	if p.peek(0) == TokLBrack {
		closer = TokRBrack
	}
	p.bump(block)

	for {
		p.eatTrivia(block)
		switch kind := p.peek(0); {
		case kind == closer:
			p.bump(block)
			return p.finish(block)
		case kind == TokEOF:
			p.errorExpected(block.Kind, closer.String())
			return p.finish(block)
		case kind == TokComma:
			p.bump(block)
		case isKeyStart(kind) && p.peek(1) == TokColon:
			block.push(TreeChild(p.entry()))
		case startsValue(kind):
			item := &Tree{Kind: TreeListItem}
			p.value(item, "value")
			if p.peek(0) == TokEq {
				item.Kind = TreeMapEntry
				p.bump(item)
				p.value(item, "map value")
			}
			block.push(TreeChild(p.finish(item)))
		default:
			p.recover(block)
		}
	}
}

// peek returns the kind of the n-th upcoming non-comment token.
func (p *parser) peek(n int) TokenKind {
	for i := p.pos; i < len(p.tokens); i++ {
		kind := p.tokens[i].Kind
		if kind == TokComment {
			continue
		}
		if n == 0 || kind == TokEOF {
			return kind
		}
		n--
	}
	return TokEOF
}

// current returns the next non-comment token without consuming anything.
func (p *parser) current() *Token {
	for i := p.pos; i < len(p.tokens); i++ {
		if p.tokens[i].Kind != TokComment {
			return &p.tokens[i]
		}
	}
	return &p.tokens[len(p.tokens)-1]
}

// eatTrivia moves pending comments into tree.
func (p *parser) eatTrivia(tree *Tree) {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind == TokComment {
		tree.push(TokenChild(&p.tokens[p.pos]))
		p.pos++
	}
}

// bump appends the next token to tree and advances. EOF is never consumed.
func (p *parser) bump(tree *Tree) {
	p.eatTrivia(tree)
	tok := &p.tokens[p.pos]
	if tok.Kind == TokEOF {
		return
	}
	p.checkLiteral(tok, tree.Kind)
	tree.push(TokenChild(tok))
	p.pos++
}

func (p *parser) expect(tree *Tree, kind TokenKind, what string) bool {
	if p.peek(0) == kind {
		p.bump(tree)
		return true
	}
	p.errorExpected(tree.Kind, what)
	return false
}

// recover wraps the offending token in an ErrorTree and reports it.
func (p *parser) recover(parent *Tree) {
	p.eatTrivia(parent)
	tok := p.current()
	p.errors = append(p.errors, Error{
		Span: tok.Span,
		Kind: Unexpected{Token: tok.Kind},
		Tree: parent.Kind,
	})
	if tok.Kind == TokEOF {
		return
	}

	errTree := &Tree{Kind: TreeError}
	p.bump(errTree)
	parent.push(TreeChild(p.finish(errTree)))
}

func (p *parser) errorExpected(context TreeKind, what string) {
	tok := p.current()
	p.errors = append(p.errors, Error{
		Span: tok.Span,
		Kind: Expected{Expected: what, Got: tok.Kind},
		Tree: context,
	})
}

func (p *parser) checkLiteral(tok *Token, context TreeKind) {
	switch tok.Kind {
	case TokUnterminatedString:
		p.errors = append(p.errors, Error{Span: tok.Span, Kind: UnterminatedString{}, Tree: context})
	case TokNumber:
		text := tok.Text(p.src)
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			p.errors = append(p.errors, Error{Span: tok.Span, Kind: InvalidNumber{Text: text}, Tree: context})
		}
	default:
	}
}

func (p *parser) finish(tree *Tree) *Tree {
	tree.fixSpan(p.current().Span.Start)
	return tree
}

func isKeyStart(kind TokenKind) bool {
	switch kind {
	case TokName, TokString, TokNumber, TokHexLit:
		return true
	default:
		return false
	}
}

func startsValue(kind TokenKind) bool {
	switch kind {
	case TokName, TokString, TokUnterminatedString, TokNumber, TokHexLit, TokLCurly, TokLBrack:
		return true
	default:
		return false
	}
}

// isTypeArgTerminator reports tokens that end a type argument list without
// being consumed by it.
func isTypeArgTerminator(kind TokenKind) bool {
	switch kind {
	case TokComma, TokRBrack, TokEq, TokLCurly, TokRCurly, TokEOF:
		return true
	default:
		return false
	}
}
