package lexer

import "fmt"

// Kind classifies a token.
type Kind uint8

const (
	KindWhitespace Kind = iota
	KindComment
	KindIdent
	KindKeyword
	KindNumber
	KindString
	KindPunct
	KindInvalid // bytes that were not valid UTF-8 where text was expected
)

var kindNames = [...]string{
	KindWhitespace: "whitespace",
	KindComment:    "comment",
	KindIdent:      "ident",
	KindKeyword:    "keyword",
	KindNumber:     "number",
	KindString:     "string",
	KindPunct:      "punct",
	KindInvalid:    "invalid",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsLiteral reports whether the token is a number or string literal.
func (k Kind) IsLiteral() bool {
	return k == KindNumber || k == KindString
}

// Token is a single lexeme. Text preserves the input byte-for-byte; the
// concatenation of all token texts reproduces the source exactly, so
// whitespace and comments are tokens too. Immutable once produced.
type Token struct {
	Kind  Kind
	Text  string
	Start uint32 // byte offset, inclusive
	End   uint32 // byte offset, exclusive
	Line  uint32 // 1-based
	Col   uint32 // 1-based byte column
}

// Significant reports whether the token participates in structure
// detection (everything except whitespace and comments).
func (t Token) Significant() bool {
	return t.Kind != KindWhitespace && t.Kind != KindComment
}
