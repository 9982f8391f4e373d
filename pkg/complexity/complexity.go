// Package complexity scores spans with cyclomatic complexity using a
// fixed decision-point rule table over the span's own tokens.
package complexity

import (
	"github.com/vitruves/loupe/pkg/lexer"
	"github.com/vitruves/loupe/pkg/models"
)

// decisionKeywords add one decision point each. A bare else, default, and
// switch add none: the switch is counted through its cases, and else-if is
// counted through its if.
var decisionKeywords = map[string]bool{
	"if":    true,
	"for":   true,
	"while": true,
	"case":  true,
	"catch": true,
	"when":  true,
	"elif":  true,
}

// decisionPuncts are the short-circuit operators and the ternary.
var decisionPuncts = map[string]bool{
	"&&": true,
	"||": true,
	"?":  true,
}

// Compute scores every span. Tokens belonging to a nested child span are
// excluded from the parent's count; each span is scored independently.
// Cyclomatic complexity is decisions+1, so it is always at least 1.
func Compute(tokens []lexer.Token, spans []models.Span) []models.ComplexityResult {
	results := make([]models.ComplexityResult, 0, len(spans))
	for _, sp := range spans {
		decisions := 0
		for _, iv := range models.OwnIntervals(spans, sp.ID) {
			decisions += countDecisions(tokens[iv[0]:iv[1]])
		}
		results = append(results, models.ComplexityResult{
			Span:       sp.ID,
			Decisions:  decisions,
			Cyclomatic: decisions + 1,
		})
	}
	return results
}

func countDecisions(tokens []lexer.Token) int {
	n := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.KindKeyword:
			if decisionKeywords[tok.Text] {
				n++
			}
		case lexer.KindPunct:
			if decisionPuncts[tok.Text] {
				n++
			}
		}
	}
	return n
}
