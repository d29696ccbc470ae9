package syntax

import (
	"fmt"
	"strings"
)

// ErrorKind describes what went wrong at a parse error. The concrete types
// are Expected, Unexpected, UnterminatedString and InvalidNumber.
type ErrorKind interface {
	errorKind()
}

// Expected reports a missing element; Got is what was found instead.
type Expected struct {
	Expected string
	Got      TokenKind
}

// Unexpected reports a token that cannot start or continue the current tree.
type Unexpected struct {
	Token TokenKind
}

// UnterminatedString reports a string literal without a closing quote.
type UnterminatedString struct{}

// InvalidNumber reports a numeric literal that does not parse.
type InvalidNumber struct {
	Text string
}

func (Expected) errorKind()           {}
func (Unexpected) errorKind()         {}
func (UnterminatedString) errorKind() {}
func (InvalidNumber) errorKind()      {}

// Error is a single parse error. Tree is the kind of the tree being built when
// the error occurred and provides message context.
type Error struct {
	Span Span
	Kind ErrorKind
	Tree TreeKind
}

// Message renders the error the way diagnostics show it.
func (e Error) Message() string {
	switch kind := e.Kind.(type) {
	case Expected:
		return fmt.Sprintf("Missing %s for %s - got %s", kind.Expected, e.Tree, kind.Got)
	case Unexpected:
		return fmt.Sprintf("Unexpected %s, expected %s", kind.Token, e.Tree)
	default:
		return describeKind(e.Kind)
	}
}

// describeKind is the generic structural rendering used for kinds without a
// dedicated message, e.g. "InvalidNumber { Text: 12ab }".
func describeKind(kind ErrorKind) string {
	name := fmt.Sprintf("%T", kind)
	name = name[strings.LastIndexByte(name, '.')+1:]

	fields := fmt.Sprintf("%+v", kind)
	fields = strings.TrimSuffix(strings.TrimPrefix(fields, "{"), "}")
	if fields == "" {
		return name
	}
	return name + " { " + strings.ReplaceAll(fields, ":", ": ") + " }"
}
