package tables

import (
	"strconv"

	"gostatcore/domain/analysis"
	"gostatcore/domain/table"
	"gostatcore/domain/variable"
	"gostatcore/internal/format"
)

const zPlaces = 3

var cutPointTitles = map[analysis.CutPointKind]string{
	analysis.CutMedian: "Median",
	analysis.CutMean:   "Mean",
	analysis.CutMode:   "Mode",
	analysis.CutCustom: "Custom",
}

var runsRowLabels = []struct{ key, label string }{
	{"TestValue", "Test Value"},
	{"CasesBelow", "Cases < Test Value"},
	{"CasesAbove", "Cases >= Test Value"},
	{"Total", "Total Cases"},
	{"Runs", "Number of Runs"},
	{"Z", "Z"},
	{"PValue", "Asymp. Sig. (2-tailed)"},
}

type runsColumn struct {
	v      variable.Variable
	result *analysis.RunsResult
}

// FormatRunsTestTables emits one table per cut point kind that has at least
// one variable with a test value. Without any, results are shown in a single
// ungrouped table, and with no results at all a "No Data" placeholder is
// returned.
func FormatRunsTestTables(outcomes []analysis.VariableOutcome, customValue *float64) []table.FormattedTable {
	var out []table.FormattedTable
	for _, kind := range analysis.CutPointKinds {
		var cols []runsColumn
		defined := false
		for _, o := range outcomes {
			r := o.Results.Runs[kind]
			if r == nil {
				continue
			}
			if r.TestValue != nil {
				defined = true
			}
			cols = append(cols, runsColumn{v: o.Variable, result: r})
		}
		if !defined {
			continue
		}
		out = append(out, runsTable(runsTitle(kind, customValue), cols))
	}
	if len(out) > 0 {
		return out
	}

	var cols []runsColumn
	for _, o := range outcomes {
		for _, kind := range analysis.CutPointKinds {
			if r := o.Results.Runs[kind]; r != nil {
				cols = append(cols, runsColumn{v: o.Variable, result: r})
				break
			}
		}
	}
	if len(cols) > 0 {
		return []table.FormattedTable{runsTable("Runs Test", cols)}
	}

	return []table.FormattedTable{{
		Title:         "Runs Test",
		ColumnHeaders: []table.ColumnHeader{{Header: "No Data", Key: "noData"}},
		Rows:          []table.Row{},
	}}
}

func runsTitle(kind analysis.CutPointKind, customValue *float64) string {
	name := cutPointTitles[kind]
	if kind == analysis.CutCustom && customValue != nil {
		name += " (" + strconv.FormatFloat(*customValue, 'f', -1, 64) + ")"
	}
	return "Runs Test (" + name + ")"
}

func runsTable(title string, cols []runsColumn) table.FormattedTable {
	headers := []table.ColumnHeader{{Header: "", Key: "rowHeader"}}
	rows := make([]table.Row, len(runsRowLabels))
	for i, rl := range runsRowLabels {
		rows[i] = table.NewRow(rl.label)
	}

	for _, c := range cols {
		key := c.v.Name
		headers = append(headers, table.ColumnHeader{Header: c.v.DisplayName(), Key: key})
		cells := runsCells(c.v, c.result)
		for i, rl := range runsRowLabels {
			rows[i] = rows[i].Set(key, cells[rl.key])
		}
	}

	return table.FormattedTable{Title: title, ColumnHeaders: headers, Rows: rows}
}

func runsCells(v variable.Variable, r *analysis.RunsResult) map[string]any {
	testValue := any("")
	if r.TestValue != nil {
		if variable.IsDateVariable(v) {
			testValue = format.FormatSPSSDate(r.TestValue)
		} else {
			testValue = *format.FormatNumber(r.TestValue, v.Decimals+2)
		}
	}
	z := any("")
	if r.Z != nil {
		z = format.Fixed(*r.Z, zPlaces)
	}
	p := any("")
	if r.PValue != nil {
		p = *format.FormatPValue(r.PValue)
	}
	return map[string]any{
		"TestValue":  testValue,
		"CasesBelow": r.CasesBelow,
		"CasesAbove": r.CasesAbove,
		"Total":      r.Total,
		"Runs":       r.Runs,
		"Z":          z,
		"PValue":     p,
	}
}
