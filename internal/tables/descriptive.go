package tables

import (
	"gostatcore/domain/analysis"
	"gostatcore/domain/table"
	"gostatcore/domain/variable"
	"gostatcore/internal/format"
)

// FormatDescriptiveStatistics builds the descriptive table shown before
// Chi-Square and Runs results. Mean uses the variable's decimals plus two
// and Std. Deviation plus three. Returns nil when nothing is requested.
func FormatDescriptiveStatistics(outcomes []analysis.VariableOutcome, display analysis.DisplayStatistics) *table.FormattedTable {
	if !display.Any() {
		return nil
	}

	cols := []table.ColumnHeader{{Header: "", Key: "rowHeader"}, {Header: "N", Key: "N"}}
	if display.Descriptive {
		cols = append(cols,
			table.ColumnHeader{Header: "Mean", Key: "Mean"},
			table.ColumnHeader{Header: "Std. Deviation", Key: "StdDev"},
			table.ColumnHeader{Header: "Minimum", Key: "Min"},
			table.ColumnHeader{Header: "Maximum", Key: "Max"},
		)
	}
	if display.Quartiles {
		cols = append(cols, table.ColumnHeader{
			Header: "Percentiles",
			Key:    "Percentiles",
			Children: []table.ColumnHeader{
				{Header: "25th", Key: "Percentile25"},
				{Header: "50th (Median)", Key: "Percentile50"},
				{Header: "75th", Key: "Percentile75"},
			},
		})
	}

	var rows []table.Row
	for _, o := range outcomes {
		d := o.Results.Descriptive
		if d == nil {
			continue
		}
		v := o.Variable
		row := table.NewRow(v.DisplayName()).Set("N", d.N)
		if display.Descriptive {
			row = row.
				Set("Mean", descriptiveCell(v, d.Mean, v.Decimals+2)).
				Set("StdDev", descriptiveCell(v, d.StdDev, v.Decimals+3)).
				Set("Min", descriptiveCell(v, d.Min, v.Decimals)).
				Set("Max", descriptiveCell(v, d.Max, v.Decimals))
		}
		if display.Quartiles {
			row = row.
				Set("Percentile25", descriptiveCell(v, d.P25, v.Decimals+2)).
				Set("Percentile50", descriptiveCell(v, d.P50, v.Decimals+2)).
				Set("Percentile75", descriptiveCell(v, d.P75, v.Decimals+2))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	return &table.FormattedTable{
		Title:         "Descriptive Statistics",
		ColumnHeaders: cols,
		Rows:          rows,
	}
}

func descriptiveCell(v variable.Variable, value *float64, precision int) any {
	if value == nil {
		return ""
	}
	if variable.IsDateVariable(v) {
		return format.FormatSPSSDate(value)
	}
	return *format.FormatNumber(value, precision)
}
