// Package lexer turns raw source text into a full-coverage token stream.
//
// The lexer is deliberately tolerant: it never fails on malformed input.
// Unterminated comments, invalid byte sequences, and unusual whitespace
// degrade to diagnostics while lexing continues to end of input.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/vitruves/loupe/pkg/models"
)

// Lexer produces tokens lazily from a single file's text. A Lexer is
// single-use; create a new one per file.
type Lexer struct {
	src      []byte
	keywords map[string]bool
	pos      int
	line     uint32
	col      uint32
	diags    []models.Diagnostic
}

// New creates a lexer over src using the family's keyword table.
func New(src []byte, family Family) *Lexer {
	return &Lexer{
		src:      src,
		keywords: family.Keywords(),
		line:     1,
		col:      1,
	}
}

// Scan tokenizes src in one call and returns the tokens plus any
// diagnostics collected along the way.
func Scan(src []byte, family Family) ([]Token, []models.Diagnostic) {
	l := New(src, family)
	tokens := l.Tokenize()
	return tokens, l.Diagnostics()
}

// Tokenize drains the lexer into a slice.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok, ok := l.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Diagnostics returns anomalies found so far. FileID is left empty; the
// caller owning the file identity stamps it.
func (l *Lexer) Diagnostics() []models.Diagnostic {
	return l.diags
}

// Next returns the next token. The second result is false at end of input.
// Tokens cover the input with no gaps: whitespace and comments are tokens.
func (l *Lexer) Next() (Token, bool) {
	if l.pos >= len(l.src) {
		return Token{}, false
	}

	c := l.src[l.pos]
	switch {
	case isSpace(c):
		return l.emit(KindWhitespace, l.scanWhitespace()), true
	case c == '/' && l.peek(1) == '/':
		return l.emit(KindComment, l.scanLineComment()), true
	case c == '/' && l.peek(1) == '*':
		return l.emit(KindComment, l.scanBlockComment()), true
	case c == '"' || c == '\'' || c == '`':
		return l.emit(KindString, l.scanString(c)), true
	case c >= '0' && c <= '9':
		return l.emit(KindNumber, l.scanNumber()), true
	case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		return l.emitIdent(l.scanIdent()), true
	case c < utf8.RuneSelf:
		return l.emit(KindPunct, l.scanOperator()), true
	}

	r, size := utf8.DecodeRune(l.src[l.pos:])
	if r == utf8.RuneError && size == 1 {
		end := l.scanInvalid()
		l.diag(models.DiagEncodingWarning, "invalid UTF-8 byte sequence")
		return l.emit(KindInvalid, end), true
	}
	if unicode.IsLetter(r) {
		return l.emitIdent(l.scanIdent()), true
	}
	// Some other non-ASCII rune (symbol, emoji): a single punct token.
	return l.emit(KindPunct, l.pos+size), true
}

// peek returns the byte at offset from the current position, or 0 past end.
func (l *Lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

// emit builds the token [l.pos, end) and advances position tracking.
func (l *Lexer) emit(kind Kind, end int) Token {
	text := l.src[l.pos:end]
	tok := Token{
		Kind:  kind,
		Text:  string(text),
		Start: uint32(l.pos),
		End:   uint32(end),
		Line:  l.line,
		Col:   l.col,
	}
	for _, b := range text {
		if b == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
	l.pos = end
	return tok
}

// emitIdent emits an identifier, reclassifying keywords via the family
// table. Unicode names pass through byte-for-byte.
func (l *Lexer) emitIdent(end int) Token {
	tok := l.emit(KindIdent, end)
	if l.keywords[tok.Text] {
		tok.Kind = KindKeyword
	}
	return tok
}

func (l *Lexer) diag(kind models.DiagnosticKind, msg string) {
	l.diags = append(l.diags, models.Diagnostic{
		Kind:    kind,
		Offset:  uint32(l.pos),
		Message: msg,
	})
}

func (l *Lexer) scanWhitespace() int {
	i := l.pos
	for i < len(l.src) && isSpace(l.src[i]) {
		i++
	}
	return i
}

func (l *Lexer) scanLineComment() int {
	i := l.pos + 2
	for i < len(l.src) && l.src[i] != '\n' {
		i++
	}
	return i
}

// scanBlockComment consumes through the first "*/". Nested openers are not
// honored: the first closer wins, matching single-pass lexing. An
// unterminated comment runs to end of file and records a diagnostic.
func (l *Lexer) scanBlockComment() int {
	i := l.pos + 2
	for i+1 < len(l.src) {
		if l.src[i] == '*' && l.src[i+1] == '/' {
			return i + 2
		}
		i++
	}
	l.diag(models.DiagUnterminatedComment, "block comment not terminated before end of file")
	return len(l.src)
}

// scanString consumes a quoted literal. Backslash escapes the next byte.
// An unterminated literal ends at the newline (or end of file) without a
// diagnostic; stray quotes are common in the inputs this engine sees.
func (l *Lexer) scanString(quote byte) int {
	i := l.pos + 1
	for i < len(l.src) {
		c := l.src[i]
		if c == '\\' && i+1 < len(l.src) {
			i += 2
			continue
		}
		if c == quote {
			return i + 1
		}
		if c == '\n' {
			return i
		}
		i++
	}
	return i
}

func (l *Lexer) scanNumber() int {
	i := l.pos
	for i < len(l.src) {
		c := l.src[i]
		if (c >= '0' && c <= '9') || c == '.' || c == '_' ||
			c == 'x' || c == 'X' || c == 'b' || c == 'B' ||
			c == 'o' || c == 'O' || c == 'e' || c == 'E' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			i++
		} else {
			break
		}
	}
	return i
}

// scanIdent consumes an identifier using a broad letter/digit/underscore
// rule that accepts non-ASCII letters, so names like 变量1 or π are single
// tokens.
func (l *Lexer) scanIdent() int {
	i := l.pos
	for i < len(l.src) {
		c := l.src[i]
		if c == '_' || (c >= '0' && c <= '9') ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			i++
			continue
		}
		if c < utf8.RuneSelf {
			break
		}
		r, size := utf8.DecodeRune(l.src[i:])
		if r == utf8.RuneError && size == 1 {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			i += size
			continue
		}
		break
	}
	return i
}

// scanInvalid consumes a maximal run of bytes that do not decode as UTF-8.
func (l *Lexer) scanInvalid() int {
	i := l.pos
	for i < len(l.src) {
		r, size := utf8.DecodeRune(l.src[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		break
	}
	return i
}

var threeByteOps = map[string]bool{
	"<<=": true, ">>=": true, "...": true,
}

var twoByteOps = map[string]bool{
	"==": true, "!=": true, "<=": true, ">=": true, "&&": true, "||": true,
	"<<": true, ">>": true, "+=": true, "-=": true, "*=": true, "/=": true,
	"%=": true, "&=": true, "|=": true, "^=": true, "++": true, "--": true,
	"->": true, "=>": true, "::": true, "..": true, "##": true,
}

// scanOperator consumes the longest matching operator, else one byte.
func (l *Lexer) scanOperator() int {
	if l.pos+3 <= len(l.src) && threeByteOps[string(l.src[l.pos:l.pos+3])] {
		return l.pos + 3
	}
	if l.pos+2 <= len(l.src) && twoByteOps[string(l.src[l.pos:l.pos+2])] {
		return l.pos + 2
	}
	return l.pos + 1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
