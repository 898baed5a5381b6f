package excel

import (
	"fmt"
	"strings"

	"gostatcore/domain/table"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

const maxSheetName = 31

// sheet is the cell grid of one table, header rows first
type sheet struct {
	name  string
	cells [][]any
}

// WriteWorkbook saves tables to an xlsx file, one sheet per table
func WriteWorkbook(path string, tables []table.FormattedTable) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to export")
	}

	sheets := make([]sheet, len(tables))
	var g errgroup.Group
	for i, t := range tables {
		g.Go(func() error {
			sheets[i] = sheet{name: sheetTitle(i, t.Title), cells: tableCells(t)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", s.name, err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", s.name, err)
		}
		for r, row := range s.cells {
			ref, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, ref, &row); err != nil {
				return fmt.Errorf("failed to write sheet %q: %w", s.name, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// sheetTitle makes a unique sheet name within Excel's length limit
func sheetTitle(i int, title string) string {
	r := strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")
	name := strings.TrimSpace(r.Replace(title))
	prefix := fmt.Sprintf("%d ", i+1)
	name = prefix + name
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

// tableCells lays a table out as a grid: group headers, leaf headers, then
// the body rows with their children indented one header column.
func tableCells(t table.FormattedTable) [][]any {
	keys := t.LeafKeys()
	var grid [][]any

	var groups, leaves []any
	hasGroups := false
	for _, c := range t.ColumnHeaders {
		if len(c.Children) == 0 {
			groups = append(groups, "")
			leaves = append(leaves, c.Header)
			continue
		}
		hasGroups = true
		for j, child := range c.Children {
			if j == 0 {
				groups = append(groups, c.Header)
			} else {
				groups = append(groups, "")
			}
			leaves = append(leaves, child.Header)
		}
	}
	grid = append(grid, []any{t.Title})
	if hasGroups {
		grid = append(grid, groups)
	}
	grid = append(grid, leaves)

	var walk func(rows []table.Row, depth int)
	walk = func(rows []table.Row, depth int) {
		for _, row := range rows {
			line := make([]any, len(keys))
			for i, k := range keys {
				if k == "rowHeader" {
					line[i] = headerText(row.RowHeader, depth)
					continue
				}
				line[i] = row.Get(k)
			}
			grid = append(grid, line)
			walk(row.Children, depth+1)
		}
	}
	walk(t.Rows, 0)

	if t.Footer != "" {
		for _, line := range strings.Split(t.Footer, "\n") {
			grid = append(grid, []any{line})
		}
	}
	return grid
}

func headerText(cells []any, depth int) string {
	var parts []string
	for _, c := range cells {
		if c == nil {
			continue
		}
		if s := fmt.Sprint(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Repeat("  ", depth) + strings.Join(parts, " ")
}
