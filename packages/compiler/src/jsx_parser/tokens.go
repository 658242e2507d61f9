package jsx_parser

import (
	"bfc-go/packages/compiler/src/util"
)

// TokenType identifies the lexical class of a token
type TokenType int

const (
	TokenTypeEOF TokenType = iota
	TokenTypeIdent
	TokenTypeNumber
	TokenTypeString
	TokenTypeTemplate
	TokenTypeRegex
	TokenTypePunct
	TokenTypeJSXText
)

func (t TokenType) String() string {
	switch t {
	case TokenTypeEOF:
		return "EOF"
	case TokenTypeIdent:
		return "IDENT"
	case TokenTypeNumber:
		return "NUMBER"
	case TokenTypeString:
		return "STRING"
	case TokenTypeTemplate:
		return "TEMPLATE"
	case TokenTypeRegex:
		return "REGEX"
	case TokenTypePunct:
		return "PUNCT"
	case TokenTypeJSXText:
		return "JSX_TEXT"
	}
	return "UNKNOWN"
}

// TemplatePart is one piece of a template literal token: either a literal
// quasi or the raw source of an embedded expression.
type TemplatePart struct {
	Literal bool
	Text    string
	Offset  int
}

// Token is one lexical token
type Token struct {
	Type TokenType
	// Text holds the token's meaning: the identifier name, the decoded
	// string value, the operator spelling, or the raw number.
	Text string
	// Parts is set for template tokens.
	Parts []TemplatePart
	// Flags is set for regex tokens.
	Flags string
	Span  *util.ParseSourceSpan
}

// Is reports whether the token is a punctuator with the given spelling
func (t Token) Is(punct string) bool {
	return t.Type == TokenTypePunct && t.Text == punct
}

// IsIdent reports whether the token is the given identifier or keyword
func (t Token) IsIdent(name string) bool {
	return t.Type == TokenTypeIdent && t.Text == name
}

// keywords that can never be component-local value identifiers. The lexer
// does not distinguish keywords from identifiers; the parser checks Text.
var reservedWords = map[string]bool{
	"const": true, "let": true, "var": true, "function": true,
	"return": true, "if": true, "else": true, "export": true,
	"import": true, "default": true, "new": true, "typeof": true,
	"interface": true, "type": true, "extends": true, "from": true,
	"for": true, "of": true, "in": true, "while": true, "do": true,
}
