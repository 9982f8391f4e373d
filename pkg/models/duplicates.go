package models

// GroupKind distinguishes exact from near duplicate groups.
type GroupKind string

const (
	GroupExact GroupKind = "exact"
	GroupNear  GroupKind = "near"
)

// SpanRef identifies a span across the analyzed corpus.
type SpanRef struct {
	FileID    string `json:"file_id"`
	Span      int    `json:"span"`
	Name      string `json:"name,omitempty"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line"`
	EndLine   uint32 `json:"end_line"`
}

// DuplicateGroup is a set of two or more spans that are exact or near
// duplicates of each other. Members are sorted by (FileID, StartByte) so
// output is deterministic regardless of processing order.
type DuplicateGroup struct {
	Kind       GroupKind `json:"kind"`
	Similarity float64   `json:"similarity"`
	Members    []SpanRef `json:"members"`
}
