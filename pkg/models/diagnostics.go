package models

// DiagnosticKind classifies recoverable anomalies found during analysis.
type DiagnosticKind string

const (
	DiagUnterminatedComment  DiagnosticKind = "unterminated_comment"
	DiagBraceMismatch        DiagnosticKind = "brace_mismatch"
	DiagEncodingWarning      DiagnosticKind = "encoding_warning"
	DiagUnattachedDocComment DiagnosticKind = "unattached_doc_comment"
)

// Diagnostic reports a recoverable anomaly. Malformed input never aborts
// analysis; it surfaces here alongside best-effort results.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	FileID  string         `json:"file_id"`
	Offset  uint32         `json:"offset"`
	Message string         `json:"message"`
}
