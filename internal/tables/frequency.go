// Package tables turns computation results into presentation-ready
// FormattedTables. Every builder is a pure function of its inputs.
package tables

import (
	"gostatcore/domain/analysis"
	"gostatcore/domain/table"
	"gostatcore/domain/variable"
	"gostatcore/internal/format"
)

const percentPlaces = 1

var frequencyColumns = []table.ColumnHeader{
	{Header: "", Key: "rowHeader"},
	{Header: "Frequency", Key: "frequency"},
	{Header: "Percent", Key: "percent"},
	{Header: "Valid Percent", Key: "validPercent"},
	{Header: "Cumulative Percent", Key: "cumulativePercent"},
}

// FormatFrequencyTable lays out one variable's frequency distribution as a
// Valid group, an optional Missing group and a grand Total row.
func FormatFrequencyTable(ft analysis.FrequencyTable, v variable.Variable) table.FormattedTable {
	s := ft.Summary
	title := ft.Title
	if title == "" {
		title = v.DisplayName()
	}

	valid := table.NewRow("Valid")
	for _, r := range ft.Rows {
		valid.Children = append(valid.Children, table.NewRow(nil, r.Label).
			Set("frequency", r.Frequency).
			Set("percent", format.Fixed(r.Percent, percentPlaces)).
			Set("validPercent", format.Fixed(r.ValidPercent, percentPlaces)).
			Set("cumulativePercent", format.Fixed(r.CumulativePercent, percentPlaces)))
	}

	validTotal := table.NewRow(nil, "Total").
		Set("frequency", s.Valid).
		Set("percent", percentOf(s.Valid, s.Total))
	if s.Valid > 0 {
		validTotal = validTotal.Set("validPercent", "100.0")
	}
	valid.Children = append(valid.Children, validTotal)

	rows := []table.Row{valid}
	if s.Missing > 0 {
		missing := table.NewRow("Missing")
		missing.Children = []table.Row{
			table.NewRow(nil, "System").
				Set("frequency", s.Missing).
				Set("percent", percentOf(s.Missing, s.Total)),
		}
		rows = append(rows, missing)
	}
	rows = append(rows, table.NewRow("Total").
		Set("frequency", s.Total).
		Set("percent", percentOf(s.Total, s.Total)))

	return table.FormattedTable{
		Title:         title,
		ColumnHeaders: frequencyColumns,
		Rows:          rows,
	}
}

// percentOf returns part/total*100 with one decimal, or 0 when total is 0
func percentOf(part, total float64) any {
	if total == 0 {
		return 0
	}
	return format.Fixed(part/total*100, percentPlaces)
}
