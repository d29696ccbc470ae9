package semtok

import "strings"

// Modifier is a bit position in a ModifierSet.
type Modifier uint8

// Standard modifiers first, then custom ones.
const (
	ModDocumentation Modifier = iota
	ModDeclaration
	ModStatic
	ModDefaultLibrary
	ModDeprecated

	ModCallable
	ModConstant
	ModIntraDocLink
	ModLibrary

	numModifiers
)

const lastStandardModifier = ModCallable

//nolint:gochecknoglobals // Read-only legend table.
var modifierNames = [numModifiers]string{
	ModDocumentation:  "documentation",
	ModDeclaration:    "declaration",
	ModStatic:         "static",
	ModDefaultLibrary: "defaultLibrary",
	ModDeprecated:     "deprecated",
	ModCallable:       "callable",
	ModConstant:       "constant",
	ModIntraDocLink:   "intraDocLink",
	ModLibrary:        "library",
}

// String returns the legend name of m.
func (m Modifier) String() string {
	if m < numModifiers {
		return modifierNames[m]
	}
	return "unknown"
}

// ModifierSet is the bitset sent with every token.
type ModifierSet uint32

// With returns s with m added.
func (s ModifierSet) With(m Modifier) ModifierSet {
	return s | 1<<m
}

// Has reports whether m is in s.
func (s ModifierSet) Has(m Modifier) bool {
	return s&(1<<m) != 0
}

// StandardFallback drops every custom modifier.
func (s ModifierSet) StandardFallback() ModifierSet {
	return s & (1<<lastStandardModifier - 1)
}

func (s ModifierSet) String() string {
	var names []string
	for m := range numModifiers {
		if s.Has(m) {
			names = append(names, m.String())
		}
	}
	return strings.Join(names, "|")
}
