// Package structure delimits spans (functions, class-like types, blocks)
// in a token stream using brace-depth tracking. No grammar is involved:
// strings and comments are already opaque tokens, so braces inside them
// never reach the extractor.
package structure

import (
	"github.com/vitruves/loupe/pkg/lexer"
	"github.com/vitruves/loupe/pkg/models"
)

// classKeywords map type-introducing keywords to the span kind they open.
var classKeywords = map[string]models.SpanKind{
	"class":     models.SpanClass,
	"interface": models.SpanClass,
	"namespace": models.SpanClass,
	"struct":    models.SpanStruct,
	"enum":      models.SpanStruct,
	"union":     models.SpanStruct,
}

// frame is one open span on the extraction stack.
type frame struct {
	spanID    int
	openDepth int
}

type extractor struct {
	tokens []lexer.Token
	spans  []models.Span
	stack  []frame
	depth  int
	diags  []models.Diagnostic
}

// Extract walks the token stream and returns the ordered span list plus
// any brace-mismatch diagnostics. Spans are ordered by opening position;
// children always follow their parent. Prototype declarations (no body)
// produce no span.
func Extract(tokens []lexer.Token) ([]models.Span, []models.Diagnostic) {
	e := &extractor{tokens: tokens}
	for i, tok := range tokens {
		if tok.Kind != lexer.KindPunct {
			continue
		}
		switch tok.Text {
		case "{":
			e.open(i)
		case "}":
			e.close(i)
		}
	}
	e.finish()
	return e.spans, e.diags
}

// open classifies the header preceding the brace at index i and pushes a
// span frame when it introduces a function, a class-like type, or a
// file-scope block.
func (e *extractor) open(i int) {
	kind, name, headerStart := e.classify(i)
	if kind == "" {
		e.depth++
		return
	}

	parent := models.NoParent
	depth := 0
	if len(e.stack) > 0 {
		top := e.stack[len(e.stack)-1]
		parent = top.spanID
		depth = e.spans[top.spanID].Depth + 1
		// A type declared inside another span is a nested type.
		if kind == models.SpanClass || kind == models.SpanStruct {
			kind = models.SpanNestedType
		}
	}

	head := e.tokens[headerStart]
	id := len(e.spans)
	e.spans = append(e.spans, models.Span{
		ID:         id,
		Kind:       kind,
		Name:       name,
		StartByte:  head.Start,
		StartLine:  head.Line,
		Depth:      depth,
		Parent:     parent,
		TokenStart: headerStart,
	})
	e.stack = append(e.stack, frame{spanID: id, openDepth: e.depth})
	e.depth++
}

// close matches the brace at index i against the innermost open frame. An
// orphan closer records a diagnostic and scanning continues.
func (e *extractor) close(i int) {
	if e.depth == 0 {
		e.diags = append(e.diags, models.Diagnostic{
			Kind:    models.DiagBraceMismatch,
			Offset:  e.tokens[i].Start,
			Message: "closing brace without a matching opener",
		})
		return
	}
	e.depth--
	if len(e.stack) == 0 {
		return
	}
	top := e.stack[len(e.stack)-1]
	if top.openDepth != e.depth {
		return
	}
	tok := e.tokens[i]
	sp := &e.spans[top.spanID]
	sp.EndByte = tok.End
	sp.EndLine = tok.Line
	sp.TokenEnd = i + 1
	e.stack = e.stack[:len(e.stack)-1]
}

// finish closes any spans still open at end of input and records a single
// mismatch diagnostic for them.
func (e *extractor) finish() {
	if len(e.stack) == 0 {
		return
	}
	endByte := uint32(0)
	endLine := uint32(1)
	if n := len(e.tokens); n > 0 {
		endByte = e.tokens[n-1].End
		endLine = e.tokens[n-1].Line
	}
	for _, f := range e.stack {
		sp := &e.spans[f.spanID]
		sp.EndByte = endByte
		sp.EndLine = endLine
		sp.TokenEnd = len(e.tokens)
	}
	first := e.stack[0]
	e.diags = append(e.diags, models.Diagnostic{
		Kind:    models.DiagBraceMismatch,
		Offset:  e.spans[first.spanID].StartByte,
		Message: "span still open at end of input",
	})
	e.stack = e.stack[:0]
}

// classify inspects the tokens before the brace at index i. It returns the
// span kind ("" when the brace is plain bookkeeping), the span's name, and
// the token index where the header begins.
func (e *extractor) classify(i int) (models.SpanKind, string, int) {
	prev := e.prevSignificant(i)
	if prev >= 0 && e.isPunct(prev, ")") {
		if name, nameIdx, ok := e.functionHeader(prev); ok {
			return models.SpanFunction, name, e.headerStart(nameIdx)
		}
	}
	if kind, name, kwIdx, ok := e.classHeader(i); ok {
		return kind, name, e.headerStart(kwIdx)
	}
	if len(e.stack) == 0 && e.depth == 0 {
		// An initializer brace (`= { ... }` or an element inside one) is
		// plain bookkeeping, not a block span.
		if prev >= 0 && (e.isPunct(prev, "=") || e.isPunct(prev, ",")) {
			return "", "", 0
		}
		return models.SpanBlock, "", i
	}
	return "", "", 0
}

// functionHeader checks for the `ident ( ... )` shape ending at the closing
// paren closeIdx. Control-flow constructs are excluded naturally: `if`,
// `while`, and kin are keyword tokens, not identifiers.
func (e *extractor) functionHeader(closeIdx int) (string, int, bool) {
	balance := 0
	j := closeIdx
	for j >= 0 {
		if e.isPunct(j, ")") {
			balance++
		} else if e.isPunct(j, "(") {
			balance--
			if balance == 0 {
				break
			}
		} else if e.isBoundary(j) {
			return "", 0, false
		}
		j--
	}
	if j < 0 {
		return "", 0, false
	}
	nameIdx := e.prevSignificant(j)
	if nameIdx < 0 || e.tokens[nameIdx].Kind != lexer.KindIdent {
		return "", 0, false
	}
	return e.tokens[nameIdx].Text, nameIdx, true
}

// classHeader scans back from the brace at index i to the previous
// statement boundary looking for a type-introducing keyword. The name is
// the first identifier after that keyword, empty for anonymous types.
func (e *extractor) classHeader(i int) (models.SpanKind, string, int, bool) {
	for j := i - 1; j >= 0; j-- {
		if !e.tokens[j].Significant() {
			if e.tokens[j].Kind == lexer.KindComment {
				break
			}
			continue
		}
		if e.isBoundary(j) {
			break
		}
		if e.tokens[j].Kind != lexer.KindKeyword {
			continue
		}
		kind, ok := classKeywords[e.tokens[j].Text]
		if !ok {
			continue
		}
		name := ""
		if nameIdx := e.nextSignificant(j); nameIdx >= 0 && e.tokens[nameIdx].Kind == lexer.KindIdent {
			name = e.tokens[nameIdx].Text
		}
		return kind, name, j, true
	}
	return "", "", 0, false
}

// headerStart backtracks from a token to the start of its statement: past
// qualifier and type tokens, up to the previous `;`, brace, comment, or
// start of input.
func (e *extractor) headerStart(idx int) int {
	start := idx
	for j := idx - 1; j >= 0; j-- {
		tok := e.tokens[j]
		if tok.Kind == lexer.KindComment || e.isBoundary(j) {
			break
		}
		if tok.Significant() {
			start = j
		}
	}
	return start
}

func (e *extractor) prevSignificant(i int) int {
	for j := i - 1; j >= 0; j-- {
		if e.tokens[j].Significant() {
			return j
		}
	}
	return -1
}

func (e *extractor) nextSignificant(i int) int {
	for j := i + 1; j < len(e.tokens); j++ {
		if e.tokens[j].Significant() {
			return j
		}
	}
	return -1
}

func (e *extractor) isPunct(i int, text string) bool {
	return e.tokens[i].Kind == lexer.KindPunct && e.tokens[i].Text == text
}

// isBoundary reports whether token i terminates backward header scanning.
func (e *extractor) isBoundary(i int) bool {
	if e.tokens[i].Kind != lexer.KindPunct {
		return false
	}
	switch e.tokens[i].Text {
	case ";", "{", "}":
		return true
	}
	return false
}
