package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"

	"github.com/vitruves/loupe/pkg/models"
)

// ReportView renders a models.Report. Top limits the rows shown in the
// complexity table; zero shows everything.
type ReportView struct {
	Report *models.Report
	Top    int
}

func (v *ReportView) RenderData() any {
	return v.Report
}

func (v *ReportView) RenderText(w io.Writer, colored bool) error {
	for _, t := range v.tables() {
		if err := t.RenderText(w, colored); err != nil {
			return err
		}
	}
	if colored && v.Report.Summary.TotalDiagnosed > 0 {
		color.New(color.FgYellow).Fprintf(w, "%d diagnostic(s) reported\n", v.Report.Summary.TotalDiagnosed)
	}
	return nil
}

func (v *ReportView) RenderMarkdown(w io.Writer) error {
	for _, t := range v.tables() {
		if err := t.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

func (v *ReportView) tables() []*Table {
	tables := []*Table{v.summaryTable(), v.complexityTable()}
	if len(v.Report.Duplicates) > 0 {
		tables = append(tables, v.duplicatesTable())
	}
	if len(v.Report.Diagnostics) > 0 {
		tables = append(tables, v.diagnosticsTable())
	}
	return tables
}

func (v *ReportView) summaryTable() *Table {
	s := v.Report.Summary
	rows := [][]string{
		{"Files", strconv.Itoa(s.TotalFiles)},
		{"Spans", strconv.Itoa(s.TotalSpans)},
		{"Doc comments", strconv.Itoa(s.TotalDocs)},
		{"Max cyclomatic", strconv.Itoa(s.MaxCyclomatic)},
		{"Avg cyclomatic", fmt.Sprintf("%.2f", s.AvgCyclomatic)},
		{"Exact groups", strconv.Itoa(s.ExactGroups)},
		{"Near groups", strconv.Itoa(s.NearGroups)},
		{"Diagnostics", strconv.Itoa(s.TotalDiagnosed)},
	}
	return NewTable("Analysis Summary", []string{"Metric", "Value"}, rows, nil, nil)
}

// complexityTable lists spans sorted by descending cyclomatic complexity.
func (v *ReportView) complexityTable() *Table {
	type entry struct {
		file string
		span models.Span
		cx   models.ComplexityResult
	}
	var entries []entry
	for _, f := range v.Report.Files {
		for _, c := range f.Complexity {
			entries = append(entries, entry{file: f.FileID, span: f.Spans[c.Span], cx: c})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].cx.Cyclomatic > entries[j].cx.Cyclomatic
	})
	if v.Top > 0 && len(entries) > v.Top {
		entries = entries[:v.Top]
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		name := e.span.Name
		if name == "" {
			name = "(" + string(e.span.Kind) + ")"
		}
		rows = append(rows, []string{
			e.file,
			name,
			string(e.span.Kind),
			strconv.FormatUint(uint64(e.span.StartLine), 10),
			strconv.Itoa(e.cx.Cyclomatic),
		})
	}
	return NewTable("Complexity", []string{"File", "Span", "Kind", "Line", "Cyclomatic"}, rows, nil, nil)
}

func (v *ReportView) duplicatesTable() *Table {
	var rows [][]string
	for i, g := range v.Report.Duplicates {
		for _, m := range g.Members {
			name := m.Name
			if name == "" {
				name = "(anonymous)"
			}
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				string(g.Kind),
				fmt.Sprintf("%.2f", g.Similarity),
				m.FileID,
				name,
				fmt.Sprintf("%d-%d", m.StartLine, m.EndLine),
			})
		}
	}
	return NewTable("Duplicates", []string{"Group", "Kind", "Similarity", "File", "Span", "Lines"}, rows, nil, nil)
}

func (v *ReportView) diagnosticsTable() *Table {
	rows := make([][]string, 0, len(v.Report.Diagnostics))
	for _, d := range v.Report.Diagnostics {
		rows = append(rows, []string{
			string(d.Kind),
			d.FileID,
			strconv.FormatUint(uint64(d.Offset), 10),
			d.Message,
		})
	}
	return NewTable("Diagnostics", []string{"Kind", "File", "Offset", "Message"}, rows, nil, nil)
}
