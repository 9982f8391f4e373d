// Package doccomment extracts documentation comments from a token stream
// and attaches them to the spans they document.
//
// Recognized forms: block comments opening with /** or /*!, and maximal
// runs of /// or //! line comments, which merge into a single comment.
package doccomment

import (
	"strings"

	"github.com/vitruves/loupe/pkg/lexer"
	"github.com/vitruves/loupe/pkg/models"
)

// Extract returns the doc comments found in tokens, attached to spans per
// the adjacency rule: a doc comment documents the nearest following span
// when nothing but whitespace separates them. A doc comment followed by
// another comment, or by no span at all, is reported unattached with a
// diagnostic.
func Extract(tokens []lexer.Token, spans []models.Span) ([]models.DocComment, []models.Diagnostic) {
	byTokenStart := make(map[int]int, len(spans))
	for _, sp := range spans {
		byTokenStart[sp.TokenStart] = sp.ID
	}

	var docs []models.DocComment
	var diags []models.Diagnostic
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != lexer.KindComment {
			continue
		}
		var doc models.DocComment
		var last int
		switch {
		case isDocBlock(tok.Text):
			doc, last = blockDoc(tokens, i)
		case isDocLine(tok.Text):
			doc, last = lineRunDoc(tokens, i)
		default:
			continue
		}

		doc.Span = models.Unattached
		if next := nextSignificant(tokens, last); next >= 0 {
			if id, ok := byTokenStart[next]; ok {
				doc.Span = id
			}
		}
		if nc := nextNonWhitespace(tokens, last); nc >= 0 && tokens[nc].Kind == lexer.KindComment {
			// The later comment wins the attachment.
			doc.Span = models.Unattached
		}
		if !doc.Attached() {
			diags = append(diags, models.Diagnostic{
				Kind:    models.DiagUnattachedDocComment,
				Offset:  doc.StartByte,
				Message: "documentation comment has no subject",
			})
		}
		docs = append(docs, doc)
		i = last
	}
	return docs, diags
}

func isDocBlock(text string) bool {
	return strings.HasPrefix(text, "/**") || strings.HasPrefix(text, "/*!")
}

func isDocLine(text string) bool {
	return strings.HasPrefix(text, "///") || strings.HasPrefix(text, "//!")
}

// blockDoc builds a DocComment from a single block comment token.
func blockDoc(tokens []lexer.Token, i int) (models.DocComment, int) {
	tok := tokens[i]
	return models.DocComment{
		Text:      tok.Text,
		StartByte: tok.Start,
		EndByte:   tok.End,
		StartLine: tok.Line,
		Tags:      parseTags(blockLines(tok.Text)),
	}, i
}

// lineRunDoc merges a maximal run of adjacent doc line comments, where
// adjacent means separated by whitespace containing at most one newline.
func lineRunDoc(tokens []lexer.Token, i int) (models.DocComment, int) {
	last := i
	for j := i + 1; j < len(tokens); j++ {
		tok := tokens[j]
		if tok.Kind == lexer.KindWhitespace && strings.Count(tok.Text, "\n") <= 1 {
			continue
		}
		if tok.Kind == lexer.KindComment && isDocLine(tok.Text) {
			last = j
			continue
		}
		break
	}

	var text strings.Builder
	var lines []string
	for j := i; j <= last; j++ {
		text.WriteString(tokens[j].Text)
		if tokens[j].Kind == lexer.KindComment {
			lines = append(lines, strings.TrimPrefix(strings.TrimPrefix(tokens[j].Text, "///"), "//!"))
		}
	}
	return models.DocComment{
		Text:      text.String(),
		StartByte: tokens[i].Start,
		EndByte:   tokens[last].End,
		StartLine: tokens[i].Line,
		Tags:      parseTags(lines),
	}, last
}

// blockLines strips the comment markers and per-line `*` decoration from a
// block comment, returning its content lines.
func blockLines(text string) []string {
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*!")
	text = strings.TrimSuffix(text, "*/")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "*") {
			trimmed = strings.TrimPrefix(trimmed, "*")
			trimmed = strings.TrimPrefix(trimmed, " ")
		}
		lines[i] = trimmed
	}
	return lines
}

// parseTags scans content lines for `@word` tags. A tag's value runs to
// the next tag or the end of the comment. Lines inside a fenced code block
// are payload, never tags. Order and duplicates are preserved.
func parseTags(lines []string) []models.DocTag {
	var tags []models.DocTag
	var value []string
	inFence := false
	flush := func() {
		if len(tags) > 0 {
			tags[len(tags)-1].Value = strings.TrimSpace(strings.Join(value, "\n"))
		}
		value = value[:0]
	}
	for _, line := range lines {
		content := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(content, "```") {
			inFence = !inFence
			value = append(value, line)
			continue
		}
		if !inFence {
			if name, rest, ok := tagLine(content); ok {
				flush()
				tags = append(tags, models.DocTag{Name: name})
				value = append(value, rest)
				continue
			}
		}
		value = append(value, line)
	}
	flush()
	return tags
}

// tagLine splits "@word rest" into its tag name and remainder.
func tagLine(content string) (string, string, bool) {
	if !strings.HasPrefix(content, "@") || len(content) < 2 {
		return "", "", false
	}
	rest := content[1:]
	end := 0
	for end < len(rest) {
		c := rest[end]
		if c == ' ' || c == '\t' {
			break
		}
		end++
	}
	if end == 0 {
		return "", "", false
	}
	return rest[:end], strings.TrimLeft(rest[end:], " \t"), true
}

func nextSignificant(tokens []lexer.Token, i int) int {
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].Significant() {
			return j
		}
	}
	return -1
}

func nextNonWhitespace(tokens []lexer.Token, i int) int {
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].Kind != lexer.KindWhitespace {
			return j
		}
	}
	return -1
}
