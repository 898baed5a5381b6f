// Package render turns formatted tables into text, Markdown or HTML for
// terminals and reports.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"gostatcore/domain/table"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
)

// Format selects an output flavour
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Section is one persisted statistic: a heading and its tables
type Section struct {
	Title  string
	Tables []table.FormattedTable
}

// Report is the printable output of one analysis run
type Report struct {
	Title    string
	Note     string
	ErrorMsg string
	Sections []Section
}

var supText = strings.NewReplacer("<sup>", "^", "</sup>", "")

// Render writes the report in the requested format
func Render(r Report, f Format) (string, error) {
	switch f {
	case FormatText, "":
		return Text(r), nil
	case FormatMarkdown:
		return Markdown(r), nil
	case FormatHTML:
		return HTML(r), nil
	}
	return "", fmt.Errorf("unknown output format %q", f)
}

// Text renders box-drawn tables
func Text(r Report) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(r.Title) + "\n")
	for _, s := range r.Sections {
		for _, t := range s.Tables {
			w := writer(t, true)
			w.SetStyle(prettytable.StyleLight)
			b.WriteString("\n" + w.Render() + "\n")
		}
	}
	writeNotes(&b, r, "")
	return b.String()
}

// Markdown renders GitHub-flavoured Markdown tables
func Markdown(r Report) string {
	var b strings.Builder
	b.WriteString("# " + r.Title + "\n")
	for _, s := range r.Sections {
		b.WriteString("\n## " + s.Title + "\n")
		for _, t := range s.Tables {
			if t.Title != "" && t.Title != s.Title {
				b.WriteString("\n### " + t.Title + "\n")
			}
			b.WriteString("\n" + writer(t, false).RenderMarkdown() + "\n")
			if t.Footer != "" {
				for _, line := range strings.Split(t.Footer, "\n") {
					b.WriteString("\n_" + line + "_\n")
				}
			}
		}
	}
	writeNotes(&b, r, "> ")
	return b.String()
}

// HTML renders the Markdown report as an HTML fragment
func HTML(r Report) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(Markdown(r)), p, renderer))
}

func writeNotes(b *strings.Builder, r Report, prefix string) {
	for _, line := range nonEmptyLines(r.Note) {
		b.WriteString("\n" + prefix + "Note: " + line + "\n")
	}
	for _, line := range nonEmptyLines(r.ErrorMsg) {
		b.WriteString("\n" + prefix + "Error: " + line + "\n")
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// writer lays a formatted table out as a go-pretty table. Column groups
// become an auto-merged header row; nested rows are indented.
func writer(t table.FormattedTable, plain bool) prettytable.Writer {
	w := prettytable.NewWriter()
	if plain {
		w.SetTitle(t.Title)
	}
	clean := func(s string) string {
		if plain {
			return supText.Replace(s)
		}
		return s
	}

	keys := t.LeafKeys()
	var groups, leaves prettytable.Row
	hasGroups := false
	for _, c := range t.ColumnHeaders {
		if len(c.Children) == 0 {
			groups = append(groups, clean(c.Header))
			leaves = append(leaves, clean(c.Header))
			continue
		}
		hasGroups = true
		for _, child := range c.Children {
			groups = append(groups, clean(c.Header))
			leaves = append(leaves, clean(child.Header))
		}
	}
	if hasGroups {
		w.AppendHeader(groups, prettytable.RowConfig{AutoMerge: true})
	}
	w.AppendHeader(leaves)

	var walk func(rows []table.Row, depth int)
	walk = func(rows []table.Row, depth int) {
		for _, row := range rows {
			line := make(prettytable.Row, len(keys))
			for i, k := range keys {
				if k == "rowHeader" {
					line[i] = clean(rowHeader(row.RowHeader, depth))
					continue
				}
				line[i] = clean(cellText(row.Get(k)))
			}
			w.AppendRow(line)
			walk(row.Children, depth+1)
		}
	}
	walk(t.Rows, 0)

	if plain && t.Footer != "" {
		for _, line := range strings.Split(t.Footer, "\n") {
			w.AppendFooter(prettytable.Row{clean(line)})
		}
	}
	return w
}

func rowHeader(cells []any, depth int) string {
	var parts []string
	for _, c := range cells {
		if s := cellText(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Repeat("  ", depth) + strings.Join(parts, " ")
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	}
	return fmt.Sprint(v)
}
