package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitruves/loupe/pkg/models"
)

func TestTokenizeCoversInput(t *testing.T) {
	inputs := []string{
		"int main() { return 0; }\n",
		"x = \"a \\\" quote\" + 'c';",
		"/* block */ // line\nif (a && b) { c++; }",
		"\t  \r\n\v\f mixed whitespace",
		"#define FOO(x, y) ((x) + (y))\n",
		"",
	}
	for _, input := range inputs {
		tokens, _ := Scan([]byte(input), FamilyCLike)
		var sb strings.Builder
		for _, tok := range tokens {
			sb.WriteString(tok.Text)
		}
		assert.Equal(t, input, sb.String(), "concatenated tokens must reproduce the input")
	}
}

func TestTokenizeClassification(t *testing.T) {
	tokens, diags := Scan([]byte("if (count >= 10) { total += 0x1F; }"), FamilyCLike)
	require.Empty(t, diags)

	var kinds []Kind
	var texts []string
	for _, tok := range tokens {
		if tok.Significant() {
			kinds = append(kinds, tok.Kind)
			texts = append(texts, tok.Text)
		}
	}
	assert.Equal(t, []string{"if", "(", "count", ">=", "10", ")", "{", "total", "+=", "0x1F", ";", "}"}, texts)
	assert.Equal(t, []Kind{
		KindKeyword, KindPunct, KindIdent, KindPunct, KindNumber, KindPunct,
		KindPunct, KindIdent, KindPunct, KindNumber, KindPunct, KindPunct,
	}, kinds)
}

func TestUnicodeIdentifiers(t *testing.T) {
	tokens, diags := Scan([]byte("变量1 = π + résumé;"), FamilyGeneric)
	require.Empty(t, diags)

	var idents []string
	for _, tok := range tokens {
		if tok.Kind == KindIdent {
			idents = append(idents, tok.Text)
		}
	}
	assert.Equal(t, []string{"变量1", "π", "résumé"}, idents)
}

func TestUnterminatedBlockComment(t *testing.T) {
	src := "int x;\n/* never closed"
	tokens, diags := Scan([]byte(src), FamilyCLike)

	require.Len(t, diags, 1)
	assert.Equal(t, models.DiagUnterminatedComment, diags[0].Kind)
	assert.Equal(t, uint32(7), diags[0].Offset)

	last := tokens[len(tokens)-1]
	assert.Equal(t, KindComment, last.Kind)
	assert.Equal(t, uint32(len(src)), last.End, "comment token must extend to end of input")
}

func TestBlockCommentFirstCloserWins(t *testing.T) {
	src := "/* outer /* inner */ trailing"
	tokens, diags := Scan([]byte(src), FamilyCLike)
	require.Empty(t, diags)

	require.Equal(t, KindComment, tokens[0].Kind)
	assert.Equal(t, "/* outer /* inner */", tokens[0].Text)

	var idents []string
	for _, tok := range tokens {
		if tok.Kind == KindIdent {
			idents = append(idents, tok.Text)
		}
	}
	assert.Equal(t, []string{"trailing"}, idents)
}

func TestStringEscapes(t *testing.T) {
	tokens, diags := Scan([]byte(`s = "he said \"hi\"";`), FamilyCLike)
	require.Empty(t, diags)

	var strs []string
	for _, tok := range tokens {
		if tok.Kind == KindString {
			strs = append(strs, tok.Text)
		}
	}
	assert.Equal(t, []string{`"he said \"hi\""`}, strs)
}

func TestUnterminatedStringEndsAtNewline(t *testing.T) {
	src := "s = \"open\nnext_line;"
	tokens, diags := Scan([]byte(src), FamilyCLike)
	require.Empty(t, diags, "stray quotes are tolerated without diagnostics")

	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
	}
	assert.Equal(t, src, sb.String())

	var idents []string
	for _, tok := range tokens {
		if tok.Kind == KindIdent {
			idents = append(idents, tok.Text)
		}
	}
	assert.Contains(t, idents, "next_line")
}

func TestInvalidBytes(t *testing.T) {
	src := append([]byte("a = "), 0xFF, 0xFE)
	src = append(src, []byte("; b = 1;")...)
	tokens, diags := Scan(src, FamilyCLike)

	require.Len(t, diags, 1)
	assert.Equal(t, models.DiagEncodingWarning, diags[0].Kind)
	assert.Equal(t, uint32(4), diags[0].Offset)

	var invalid []Token
	for _, tok := range tokens {
		if tok.Kind == KindInvalid {
			invalid = append(invalid, tok)
		}
	}
	require.Len(t, invalid, 1, "an invalid run is a single token")
	assert.Equal(t, string([]byte{0xFF, 0xFE}), invalid[0].Text)

	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
	}
	assert.Equal(t, string(src), sb.String(), "invalid bytes are preserved verbatim")
}

func TestLineAndColumnTracking(t *testing.T) {
	tokens, _ := Scan([]byte("a\nbb ccc"), FamilyCLike)

	byText := map[string]Token{}
	for _, tok := range tokens {
		byText[tok.Text] = tok
	}
	assert.Equal(t, uint32(1), byText["a"].Line)
	assert.Equal(t, uint32(1), byText["a"].Col)
	assert.Equal(t, uint32(2), byText["bb"].Line)
	assert.Equal(t, uint32(1), byText["bb"].Col)
	assert.Equal(t, uint32(2), byText["ccc"].Line)
	assert.Equal(t, uint32(4), byText["ccc"].Col)
}

func TestMultiByteOperators(t *testing.T) {
	tokens, _ := Scan([]byte("a <<= b >>= c ... d && e || f -> g :: h"), FamilyCLike)

	var ops []string
	for _, tok := range tokens {
		if tok.Kind == KindPunct {
			ops = append(ops, tok.Text)
		}
	}
	assert.Equal(t, []string{"<<=", ">>=", "...", "&&", "||", "->", "::"}, ops)
}

func TestFamilyKeywordTables(t *testing.T) {
	clike, _ := Scan([]byte("def f"), FamilyCLike)
	assert.Equal(t, KindIdent, clike[0].Kind, "def is not a C-like keyword")

	generic, _ := Scan([]byte("def f"), FamilyGeneric)
	assert.Equal(t, KindKeyword, generic[0].Kind)
}

func TestParseFamily(t *testing.T) {
	for hint, want := range map[string]Family{
		"":        FamilyGeneric,
		"unknown": FamilyGeneric,
		"generic": FamilyGeneric,
		"clike":   FamilyCLike,
		"c":       FamilyCLike,
		"cpp":     FamilyCLike,
		"c++":     FamilyCLike,
	} {
		got, err := ParseFamily(hint)
		require.NoError(t, err, hint)
		assert.Equal(t, want, got, hint)
	}

	_, err := ParseFamily("cobol")
	assert.Error(t, err)
}

func TestPreprocessorLinesAreOrdinaryTokens(t *testing.T) {
	tokens, diags := Scan([]byte("#define MAX(a, b) ((a) > (b) ? (a) : (b))\n"), FamilyCLike)
	require.Empty(t, diags)

	require.Equal(t, KindPunct, tokens[0].Kind)
	assert.Equal(t, "#", tokens[0].Text)
	assert.Equal(t, KindIdent, tokens[1].Kind)
	assert.Equal(t, "define", tokens[1].Text)
}
