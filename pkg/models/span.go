package models

import "sort"

// SpanKind classifies a structural span.
type SpanKind string

const (
	SpanFunction   SpanKind = "function"
	SpanClass      SpanKind = "class"
	SpanStruct     SpanKind = "struct"
	SpanNestedType SpanKind = "nested_type"
	SpanBlock      SpanKind = "block"
)

// String returns the string representation.
func (k SpanKind) String() string {
	return string(k)
}

// NoParent marks a top-level span.
const NoParent = -1

// Span is a delimited region of source identified as a function, class,
// struct, nested type, or file-scope block. Spans live in a flat per-file
// list; Parent is an index into that list, not a pointer, so the list stays
// independently serializable.
type Span struct {
	ID        int      `json:"id"`
	Kind      SpanKind `json:"kind"`
	Name      string   `json:"name"`
	StartByte uint32   `json:"start_byte"`
	EndByte   uint32   `json:"end_byte"`
	StartLine uint32   `json:"start_line"`
	EndLine   uint32   `json:"end_line"`
	Depth     int      `json:"depth"`
	Parent    int      `json:"parent"`

	// Token index range [TokenStart, TokenEnd) into the file's token slice.
	// Internal bookkeeping for downstream passes; stable across runs.
	TokenStart int `json:"token_start"`
	TokenEnd   int `json:"token_end"`
}

// Children returns the IDs of direct child spans, ordered by token start.
func Children(spans []Span, id int) []int {
	var kids []int
	for _, s := range spans {
		if s.Parent == id {
			kids = append(kids, s.ID)
		}
	}
	sort.Slice(kids, func(i, j int) bool {
		return spans[kids[i]].TokenStart < spans[kids[j]].TokenStart
	})
	return kids
}

// OwnIntervals returns the token index intervals belonging to span id with
// the ranges of direct children carved out. Both complexity scoring and
// duplicate fingerprinting operate on these intervals so nested spans are
// scored and fingerprinted independently.
func OwnIntervals(spans []Span, id int) [][2]int {
	s := spans[id]
	cur := s.TokenStart
	var out [][2]int
	for _, kid := range Children(spans, id) {
		c := spans[kid]
		if c.TokenStart > cur {
			out = append(out, [2]int{cur, c.TokenStart})
		}
		if c.TokenEnd > cur {
			cur = c.TokenEnd
		}
	}
	if s.TokenEnd > cur {
		out = append(out, [2]int{cur, s.TokenEnd})
	}
	return out
}
