package lang

import (
	"strconv"
)

// Position identifies a location in source text.
// Offset is a zero-based byte offset; Line and Column are one-based, with
// Column counted in runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns the position formatted as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// TokenKind classifies a [Token].
type TokenKind uint8

// Token kinds.
const (
	TokenEOF TokenKind = iota
	TokenNumber
	TokenString
	TokenName
	TokenKeyword
	TokenOperator
	TokenPunctuation
)

var tokenKindName = [...]string{
	TokenEOF:         "EOF",
	TokenNumber:      "Number",
	TokenString:      "String",
	TokenName:        "Name",
	TokenKeyword:     "Keyword",
	TokenOperator:    "Operator",
	TokenPunctuation: "Punctuation",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindName) {
		return tokenKindName[k]
	}

	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Token is a lexical unit of an expression.
//
// Text holds the token's source text, except for string literals whose Text
// is the decoded value (escapes resolved, quotes and prefix removed).
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// String returns a short description of the token for error messages.
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return "string " + quote(t.Text)
	default:
		return strconv.Quote(t.Text)
	}
}

// keywords are the reserved words of the language. The table is immutable.
//
//nolint:gochecknoglobals
var keywords = map[string]struct{}{
	"True":   {},
	"False":  {},
	"None":   {},
	"and":    {},
	"or":     {},
	"not":    {},
	"in":     {},
	"is":     {},
	"if":     {},
	"else":   {},
	"lambda": {},
}

// IsKeyword reports whether name is a reserved word.
func IsKeyword(name string) bool {
	_, ok := keywords[name]

	return ok
}

// operators lists the symbolic operators ordered so that every multi-character
// operator precedes its single-character prefix. The table is immutable.
//
//nolint:gochecknoglobals
var operators = []string{
	"**", "//", "==", "!=", "<=", ">=",
	"+", "-", "*", "/", "%", "<", ">", "=", ",",
}

// punctuation characters. The table is immutable.
const punctuation = "()[]{}:."
