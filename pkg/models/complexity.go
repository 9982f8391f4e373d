package models

// ComplexityResult holds the cyclomatic complexity score for one span.
// Cyclomatic is always Decisions+1, so it is >= 1 even for empty spans.
type ComplexityResult struct {
	Span       int `json:"span"`
	Decisions  int `json:"decisions"`
	Cyclomatic int `json:"cyclomatic"`
}
