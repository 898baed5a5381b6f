package render

import (
	"testing"

	"gostatcore/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() Report {
	t := table.FormattedTable{
		Title: "Statistics",
		ColumnHeaders: []table.ColumnHeader{
			{Header: "", Key: "rowHeader"},
			{Header: "score<sup>b</sup>", Key: "score"},
		},
		Rows: []table.Row{
			table.NewRow("N").Set("score", ""),
			table.NewRow("Mode").Set("score", "1.00<sup>a</sup>"),
		},
		Footer: "a. Multiple modes exist; the smallest value is shown.",
	}
	t.Rows[0].Children = []table.Row{table.NewRow(nil, "Valid").Set("score", 4.0)}
	return Report{
		Title:    "Frequencies",
		Note:     "first note\n\nsecond note",
		Sections: []Section{{Title: "Statistics", Tables: []table.FormattedTable{t}}},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MD")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	out := Text(sampleReport())

	assert.Contains(t, out, "FREQUENCIES")
	assert.Contains(t, out, "1.00^a")
	assert.Contains(t, out, "score^b")
	assert.Contains(t, out, "  Valid")
	assert.Contains(t, out, "Note: first note")
	assert.Contains(t, out, "Note: second note")
	assert.NotContains(t, out, "<sup>")
}

func TestMarkdownAndHTML(t *testing.T) {
	r := sampleReport()
	r.ErrorMsg = "x: failed"

	md := Markdown(r)
	assert.Contains(t, md, "# Frequencies")
	assert.Contains(t, md, "## Statistics")
	assert.Contains(t, md, "| Mode")
	assert.Contains(t, md, "_a. Multiple modes exist; the smallest value is shown._")
	assert.Contains(t, md, "> Error: x: failed")

	out, err := Render(r, FormatHTML)
	require.NoError(t, err)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<sup>a</sup>")
}
