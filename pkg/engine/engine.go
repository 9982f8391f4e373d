// Package engine coordinates the analysis pipeline: tokenize, extract
// spans and doc comments, score complexity, fingerprint, and detect
// duplicates across the corpus. The engine performs no I/O; callers hand
// it file contents and receive a Report.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/vitruves/loupe/internal/fileproc"
	"github.com/vitruves/loupe/pkg/complexity"
	"github.com/vitruves/loupe/pkg/doccomment"
	"github.com/vitruves/loupe/pkg/duplicates"
	"github.com/vitruves/loupe/pkg/lexer"
	"github.com/vitruves/loupe/pkg/models"
	"github.com/vitruves/loupe/pkg/stats"
	"github.com/vitruves/loupe/pkg/structure"
)

// FileInput is one file handed to the engine. ID is an opaque identifier
// (usually a path), Family a lexical family hint; empty means generic.
type FileInput struct {
	ID     string
	Text   string
	Family string
}

// Engine runs the analysis pipeline. Configure it once with options; an
// Engine is safe for repeated Analyze calls, each run rebuilding all state
// from scratch.
type Engine struct {
	detector   duplicates.Config
	workers    int
	onProgress fileproc.ProgressFunc
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithShingleSize sets the k-gram size for near-duplicate matching.
func WithShingleSize(k int) Option {
	return func(e *Engine) { e.detector.ShingleSize = k }
}

// WithSimilarityThreshold sets the Jaccard similarity a near pair must exceed.
func WithSimilarityThreshold(threshold float64) Option {
	return func(e *Engine) { e.detector.SimilarityThreshold = threshold }
}

// WithMinTokens drops spans with fewer canonical tokens from duplicate
// detection.
func WithMinTokens(n int) Option {
	return func(e *Engine) { e.detector.MinTokens = n }
}

// WithDetectorConfig replaces the whole duplicate-detection configuration.
func WithDetectorConfig(cfg duplicates.Config) Option {
	return func(e *Engine) { e.detector = cfg }
}

// WithWorkers bounds the per-file worker pool. Zero or negative means
// 2x NumCPU.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithProgress registers a callback invoked once per completed file.
func WithProgress(fn func()) Option {
	return func(e *Engine) { e.onProgress = fileproc.ProgressFunc(fn) }
}

// New creates an engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{detector: duplicates.DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fileResult is the immutable product of the per-file phase. Tokens are
// dropped once spans are fingerprinted; only the fingerprints travel to
// the merge phase.
type fileResult struct {
	analysis models.FileAnalysis
	prints   []duplicates.Fingerprint
	diags    []models.Diagnostic
}

// Analyze runs the pipeline over files. Setup problems (bad thresholds,
// unknown language hints) fail before any file is processed, with no
// Report. Malformed file content never fails: it degrades to diagnostics.
//
// On context cancellation the results of already-completed files are kept,
// the duplicate merge phase is skipped, and Analyze returns the partial
// Report together with the context error.
func (e *Engine) Analyze(ctx context.Context, files []FileInput) (*models.Report, error) {
	if err := e.validate(files); err != nil {
		return nil, err
	}

	results, procErrs := fileproc.MapWithContext(ctx, files, e.workers,
		func(f FileInput) string { return f.ID },
		func(_ context.Context, f FileInput) (fileResult, error) {
			return analyzeFile(f, e.detector), nil
		}, e.onProgress)

	sort.Slice(results, func(i, j int) bool {
		return results[i].analysis.FileID < results[j].analysis.FileID
	})

	if procErrs != nil && ctx.Err() != nil {
		report := e.assemble(results, nil)
		return report, ctx.Err()
	}

	detector := duplicates.New(duplicates.WithConfig(e.detector))
	for _, r := range results {
		detector.Add(r.prints...)
	}
	return e.assemble(results, detector.Groups()), nil
}

// validate rejects bad setup before any file is touched.
func (e *Engine) validate(files []FileInput) error {
	cfg := e.detector
	if cfg.ShingleSize <= 0 {
		return fmt.Errorf("shingle size must be positive, got %d", cfg.ShingleSize)
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got %g", cfg.SimilarityThreshold)
	}
	if cfg.AnchorCount <= 0 {
		return fmt.Errorf("anchor count must be positive, got %d", cfg.AnchorCount)
	}
	if cfg.MinTokens < 0 {
		return fmt.Errorf("min tokens must not be negative, got %d", cfg.MinTokens)
	}
	for _, f := range files {
		if _, err := lexer.ParseFamily(f.Family); err != nil {
			return fmt.Errorf("file %q: %w", f.ID, err)
		}
	}
	return nil
}

// analyzeFile runs the per-file passes. It is a pure function of the
// file's content and shares no state with other files.
func analyzeFile(f FileInput, cfg duplicates.Config) fileResult {
	family, _ := lexer.ParseFamily(f.Family)
	tokens, diags := lexer.Scan([]byte(f.Text), family)
	spans, spanDiags := structure.Extract(tokens)
	diags = append(diags, spanDiags...)
	docs, docDiags := doccomment.Extract(tokens, spans)
	diags = append(diags, docDiags...)

	for i := range diags {
		diags[i].FileID = f.ID
	}

	return fileResult{
		analysis: models.FileAnalysis{
			FileID:      f.ID,
			Spans:       spans,
			DocComments: docs,
			Complexity:  complexity.Compute(tokens, spans),
		},
		prints: duplicates.Build(f.ID, tokens, spans, cfg),
		diags:  diags,
	}
}

// assemble folds sorted per-file results and duplicate groups into the
// final Report.
func (e *Engine) assemble(results []fileResult, groups []models.DuplicateGroup) *models.Report {
	report := &models.Report{Duplicates: groups}

	var cyclomatics []float64
	for _, r := range results {
		report.Files = append(report.Files, r.analysis)
		report.Diagnostics = append(report.Diagnostics, r.diags...)
		report.Summary.TotalSpans += len(r.analysis.Spans)
		report.Summary.TotalDocs += len(r.analysis.DocComments)
		for _, c := range r.analysis.Complexity {
			cyclomatics = append(cyclomatics, float64(c.Cyclomatic))
			if c.Cyclomatic > report.Summary.MaxCyclomatic {
				report.Summary.MaxCyclomatic = c.Cyclomatic
			}
		}
	}
	sort.SliceStable(report.Diagnostics, func(i, j int) bool {
		a, b := report.Diagnostics[i], report.Diagnostics[j]
		if a.FileID != b.FileID {
			return a.FileID < b.FileID
		}
		return a.Offset < b.Offset
	})

	var sims []float64
	for _, g := range groups {
		switch g.Kind {
		case models.GroupExact:
			report.Summary.ExactGroups++
		case models.GroupNear:
			report.Summary.NearGroups++
		}
		sims = append(sims, g.Similarity)
	}

	report.Summary.TotalFiles = len(results)
	report.Summary.AvgCyclomatic = stats.Mean(cyclomatics)
	report.Summary.AvgSimilarity = stats.Mean(sims)
	report.Summary.P50Similarity = stats.Percentile(sims, 50)
	report.Summary.P95Similarity = stats.Percentile(sims, 95)
	report.Summary.TotalDiagnosed = len(report.Diagnostics)
	return report
}
