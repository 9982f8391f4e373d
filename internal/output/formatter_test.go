package output

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitruves/loupe/pkg/engine"
	"github.com/vitruves/loupe/pkg/models"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatMarkdown, ParseFormat("md"))
	assert.Equal(t, FormatMarkdown, ParseFormat("markdown"))
	assert.Equal(t, FormatTOON, ParseFormat("toon"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("anything"))
}

func sampleReport(t *testing.T) *models.Report {
	t.Helper()
	report, err := engine.New().Analyze(context.Background(), []engine.FileInput{
		{ID: "a.c", Text: "int f(int x) { if (x > 0) { return x; } return 0; }\n", Family: "c"},
		{ID: "b.c", Text: "int g(int y) { if (y > 0) { return y; } return 0; }\n", Family: "c"},
	})
	require.NoError(t, err)
	return report
}

func TestTableRenderText(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("Results", []string{"Name", "Count"},
		[][]string{{"alpha", "1"}, {"beta", "2"}}, nil, nil)
	require.NoError(t, table.RenderText(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "Results")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
}

func TestTableRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("Results", []string{"Name", "Count"},
		[][]string{{"alpha", "1"}}, nil, nil)
	require.NoError(t, table.RenderMarkdown(&buf))

	out := buf.String()
	assert.Contains(t, out, "## Results")
	assert.Contains(t, out, "| Name | Count |")
	assert.Contains(t, out, "| --- | --- |")
	assert.Contains(t, out, "| alpha | 1 |")
}

func TestReportViewText(t *testing.T) {
	var buf bytes.Buffer
	view := &ReportView{Report: sampleReport(t)}
	require.NoError(t, view.RenderText(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "Analysis Summary")
	assert.Contains(t, out, "Complexity")
	assert.Contains(t, out, "Duplicates")
	assert.Contains(t, out, "exact")
}

func TestReportViewMarkdown(t *testing.T) {
	var buf bytes.Buffer
	view := &ReportView{Report: sampleReport(t)}
	require.NoError(t, view.RenderMarkdown(&buf))
	assert.Contains(t, buf.String(), "## Analysis Summary")
}

func TestReportViewTopLimit(t *testing.T) {
	view := &ReportView{Report: sampleReport(t), Top: 1}
	table := view.complexityTable()
	assert.Len(t, table.Rows, 1)
}

func TestFormatterJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	f, err := NewFormatter(FormatJSON, path, true)
	require.NoError(t, err)
	assert.False(t, f.Colored(), "file output disables color")

	report := sampleReport(t)
	require.NoError(t, f.Output(&ReportView{Report: report}))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded models.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.Summary.TotalFiles, decoded.Summary.TotalFiles)
	assert.Len(t, decoded.Files, 2)
}

func TestFormatterTOON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.toon")
	f, err := NewFormatter(FormatTOON, path, false)
	require.NoError(t, err)
	require.NoError(t, f.Output(&ReportView{Report: sampleReport(t)}))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotEmpty(t, strings.TrimSpace(out))
	// The sample corpus yields an exact duplicate group; its kind enum must
	// serialize rather than abort the render.
	assert.Contains(t, out, "exact")
	assert.Contains(t, out, "a.c")
}
