// Package semtok classifies ritobin tokens for syntax highlighting and
// encodes them in the relative semantic token format.
package semtok

// TokenType is an index into the legend's token types.
type TokenType uint32

// Standard token types, in legend order.
const (
	TypeComment TokenType = iota
	TypeDecorator
	TypeEnumMember
	TypeEnum
	TypeKeyword
	TypeMethod
	TypeNamespace
	TypeNumber
	TypeOperator
	TypeParameter
	TypeProperty
	TypeString
	TypeStruct
	TypeTypeParameter
	TypeVariable
	TypeType
	TypeClass

	// Custom token types follow the standard ones.
	TypeBoolean
	TypeBrace
	TypeBracket
	TypeBuiltinType
	TypeColon
	TypeEscapeSequence
	TypeInvalidEscapeSequence
	TypePunctuation
	TypeUnresolvedReference

	numTokenTypes
)

// lastStandardType is the first custom token type.
const lastStandardType = TypeBoolean

type typeInfo struct {
	name     string
	fallback TokenType
	// hasFallback is false for custom types no standard type can stand in for.
	hasFallback bool
}

//nolint:gochecknoglobals // Read-only legend table.
var tokenTypes = [numTokenTypes]typeInfo{
	TypeComment:       {name: "comment"},
	TypeDecorator:     {name: "decorator"},
	TypeEnumMember:    {name: "enumMember"},
	TypeEnum:          {name: "enum"},
	TypeKeyword:       {name: "keyword"},
	TypeMethod:        {name: "method"},
	TypeNamespace:     {name: "namespace"},
	TypeNumber:        {name: "number"},
	TypeOperator:      {name: "operator"},
	TypeParameter:     {name: "parameter"},
	TypeProperty:      {name: "property"},
	TypeString:        {name: "string"},
	TypeStruct:        {name: "struct"},
	TypeTypeParameter: {name: "typeParameter"},
	TypeVariable:      {name: "variable"},
	TypeType:          {name: "type"},
	TypeClass:         {name: "class"},

	TypeBoolean:               {name: "boolean"},
	TypeBrace:                 {name: "brace"},
	TypeBracket:               {name: "bracket"},
	TypeBuiltinType:           {name: "builtinType", fallback: TypeType, hasFallback: true},
	TypeColon:                 {name: "colon"},
	TypeEscapeSequence:        {name: "escapeSequence", fallback: TypeString, hasFallback: true},
	TypeInvalidEscapeSequence: {name: "invalidEscapeSequence", fallback: TypeString, hasFallback: true},
	TypePunctuation:           {name: "punctuation"},
	TypeUnresolvedReference:   {name: "unresolvedReference"},
}

// String returns the legend name of t.
func (t TokenType) String() string {
	if t < numTokenTypes {
		return tokenTypes[t].name
	}
	return "unknown"
}

// IsStandard reports whether t is one of the protocol's predefined types.
func (t TokenType) IsStandard() bool {
	return t < lastStandardType
}

// StandardFallback maps a custom type to the standard type that best
// approximates it. It returns false for custom types without a fallback.
func (t TokenType) StandardFallback() (TokenType, bool) {
	if t.IsStandard() {
		return t, true
	}
	if t >= numTokenTypes || !tokenTypes[t].hasFallback {
		return 0, false
	}
	return tokenTypes[t].fallback, true
}

// Legend lists the token types and modifiers in index order, as announced in
// the server capabilities.
type Legend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

// NewLegend returns the legend matching TokenType and Modifier indices.
func NewLegend() Legend {
	legend := Legend{
		TokenTypes:     make([]string, 0, numTokenTypes),
		TokenModifiers: make([]string, 0, numModifiers),
	}
	for t := range numTokenTypes {
		legend.TokenTypes = append(legend.TokenTypes, t.String())
	}
	for m := range numModifiers {
		legend.TokenModifiers = append(legend.TokenModifiers, m.String())
	}
	return legend
}
