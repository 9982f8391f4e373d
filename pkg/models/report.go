package models

// FileAnalysis holds the per-file results of one analysis run.
type FileAnalysis struct {
	FileID      string             `json:"file_id"`
	Spans       []Span             `json:"spans"`
	DocComments []DocComment       `json:"doc_comments,omitempty"`
	Complexity  []ComplexityResult `json:"complexity,omitempty"`
}

// Summary provides aggregate statistics for a Report.
type Summary struct {
	TotalFiles     int     `json:"total_files"`
	TotalSpans     int     `json:"total_spans"`
	TotalDocs      int     `json:"total_doc_comments"`
	MaxCyclomatic  int     `json:"max_cyclomatic"`
	AvgCyclomatic  float64 `json:"avg_cyclomatic"`
	ExactGroups    int     `json:"exact_groups"`
	NearGroups     int     `json:"near_groups"`
	AvgSimilarity  float64 `json:"avg_similarity"`
	P50Similarity  float64 `json:"p50_similarity"`
	P95Similarity  float64 `json:"p95_similarity"`
	TotalDiagnosed int     `json:"total_diagnostics"`
}

// Report is the only artifact crossing the engine boundary. Files are
// sorted by FileID and diagnostics by (FileID, Offset), so identical input
// produces identical output.
type Report struct {
	Files       []FileAnalysis   `json:"files"`
	Duplicates  []DuplicateGroup `json:"duplicates,omitempty"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
	Summary     Summary          `json:"summary"`
}

// File returns the analysis for a file ID, or nil if absent.
func (r *Report) File(id string) *FileAnalysis {
	for i := range r.Files {
		if r.Files[i].FileID == id {
			return &r.Files[i]
		}
	}
	return nil
}
