package tables

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gostatcore/domain/analysis"
	"gostatcore/domain/table"
	"gostatcore/internal/format"
)

const chiSquarePlaces = 3

// FormatChiSquareFrequencies builds the observed/expected tables. Categories
// taken from the data give one table per variable; a specified range gives a
// single table aligned on the range's category axis.
func FormatChiSquareFrequencies(outcomes []analysis.VariableOutcome, opts analysis.ChiSquareOptions) []table.FormattedTable {
	withResults := make([]analysis.VariableOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Results.ChiSquare != nil {
			withResults = append(withResults, o)
		}
	}
	if len(withResults) == 0 {
		return nil
	}

	if opts.ExpectedRange.UseSpecifiedRange {
		return []table.FormattedTable{mergedChiSquareFrequencies(withResults, opts.ExpectedRange)}
	}

	out := make([]table.FormattedTable, 0, len(withResults))
	for _, o := range withResults {
		out = append(out, chiSquareFrequencies(o))
	}
	return out
}

func chiSquareFrequencies(o analysis.VariableOutcome) table.FormattedTable {
	cs := o.Results.ChiSquare
	rows := make([]table.Row, 0, len(cs.Categories)+1)
	for _, c := range cs.Categories {
		rows = append(rows, table.NewRow(c.Category).
			Set("observedN", c.ObservedN).
			Set("expectedN", format.Fixed(c.ExpectedN, percentPlaces)).
			Set("residual", format.Fixed(c.Residual, percentPlaces)))
	}
	rows = append(rows, table.NewRow("Total").Set("observedN", cs.TotalObserved))

	return table.FormattedTable{
		Title: o.Variable.DisplayName(),
		ColumnHeaders: []table.ColumnHeader{
			{Header: "", Key: "rowHeader"},
			{Header: "Observed N", Key: "observedN"},
			{Header: "Expected N", Key: "expectedN"},
			{Header: "Residual", Key: "residual"},
		},
		Rows: rows,
	}
}

// mergedChiSquareFrequencies puts every variable on the same category axis.
// A category missing from a variable's result is shown with no observations,
// an even share of the variable's total as expected count and a blank label.
func mergedChiSquareFrequencies(outcomes []analysis.VariableOutcome, r analysis.ExpectedRange) table.FormattedTable {
	axis := categoryAxis(outcomes, r)

	cols := []table.ColumnHeader{{Header: "", Key: "rowHeader"}}
	for i, o := range outcomes {
		cols = append(cols, table.ColumnHeader{
			Header: o.Variable.DisplayName(),
			Key:    fmt.Sprintf("var%d", i),
			Children: []table.ColumnHeader{
				{Header: "Category", Key: fmt.Sprintf("category%d", i)},
				{Header: "Observed N", Key: fmt.Sprintf("observedN%d", i)},
				{Header: "Expected N", Key: fmt.Sprintf("expectedN%d", i)},
				{Header: "Residual", Key: fmt.Sprintf("residual%d", i)},
			},
		})
	}

	rows := make([]table.Row, 0, len(axis)+1)
	for pos, value := range axis {
		row := table.NewRow(strconv.Itoa(pos + 1))
		for i, o := range outcomes {
			cs := o.Results.ChiSquare
			c, ok := findCategory(cs.Categories, value)
			if !ok {
				expected := 0.0
				if len(cs.Categories) > 0 {
					expected = cs.TotalObserved / float64(len(cs.Categories))
				}
				c = analysis.ChiSquareCategory{ExpectedN: expected, Residual: -expected}
			}
			label := c.Category
			if c.ObservedN == 0 {
				label = ""
			}
			row = row.
				Set(fmt.Sprintf("category%d", i), label).
				Set(fmt.Sprintf("observedN%d", i), c.ObservedN).
				Set(fmt.Sprintf("expectedN%d", i), format.Fixed(c.ExpectedN, percentPlaces)).
				Set(fmt.Sprintf("residual%d", i), format.Fixed(c.Residual, percentPlaces))
		}
		rows = append(rows, row)
	}

	total := table.NewRow("Total")
	for i, o := range outcomes {
		total = total.Set(fmt.Sprintf("observedN%d", i), o.Results.ChiSquare.TotalObserved)
	}
	rows = append(rows, total)

	return table.FormattedTable{
		Title:         "Frequencies",
		ColumnHeaders: cols,
		Rows:          rows,
	}
}

// categoryAxis is every integer in a bounded specified range plus any category a
// result reports outside it, ascending.
func categoryAxis(outcomes []analysis.VariableOutcome, r analysis.ExpectedRange) []float64 {
	seen := map[float64]bool{}
	var axis []float64
	add := func(v float64) {
		if !seen[v] {
			seen[v] = true
			axis = append(axis, v)
		}
	}
	if r.Lower != nil && r.Upper != nil {
		if _, ok := analysis.RangeCategories(*r.Lower, *r.Upper); ok {
			for v := math.Ceil(*r.Lower); v <= math.Floor(*r.Upper); v++ {
				add(v)
			}
		}
	}
	for _, o := range outcomes {
		for _, c := range o.Results.ChiSquare.Categories {
			if v, ok := categoryValue(c); ok {
				add(v)
			}
		}
	}
	sort.Float64s(axis)
	return axis
}

func categoryValue(c analysis.ChiSquareCategory) (float64, bool) {
	if c.Value != nil {
		return *c.Value, true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Category), 64)
	return v, err == nil
}

func findCategory(cats []analysis.ChiSquareCategory, value float64) (analysis.ChiSquareCategory, bool) {
	for _, c := range cats {
		if v, ok := categoryValue(c); ok && v == value {
			return c, true
		}
	}
	return analysis.ChiSquareCategory{}, false
}

// FormatChiSquareTestStatistics builds the "Test Statistics" table. Each
// variable's Chi-Square cell carries a footnote on cells with expected
// frequencies below 5.
func FormatChiSquareTestStatistics(outcomes []analysis.VariableOutcome) *table.FormattedTable {
	cols := []table.ColumnHeader{{Header: "", Key: "rowHeader"}}
	chi := table.NewRow("Chi-Square")
	df := table.NewRow("df")
	sig := table.NewRow("Asymp. Sig.")
	var notes []string

	for _, o := range outcomes {
		cs := o.Results.ChiSquare
		if cs == nil {
			continue
		}
		key := o.Variable.Name
		cols = append(cols, table.ColumnHeader{Header: o.Variable.DisplayName(), Key: key})

		if cs.ChiSquare == nil {
			chi = chi.Set(key, "")
			df = df.Set(key, "")
			sig = sig.Set(key, "")
			continue
		}

		mark := string(rune('a' + len(notes)))
		notes = append(notes, mark+". "+expectedBelowFiveNote(cs))
		chi = chi.Set(key, format.Fixed(*cs.ChiSquare, chiSquarePlaces)+sup(mark))
		df = df.Set(key, format.FormatDF(cs.DF))
		sig = sig.Set(key, format.Cell(format.FormatPValue(cs.PValue)))
	}

	if len(cols) == 1 {
		return nil
	}
	return &table.FormattedTable{
		Title:         "Test Statistics",
		ColumnHeaders: cols,
		Rows:          []table.Row{chi, df, sig},
		Footer:        strings.Join(notes, "\n"),
	}
}

func expectedBelowFiveNote(cs *analysis.ChiSquareResult) string {
	share := 0.0
	if n := len(cs.Categories); n > 0 {
		share = float64(cs.CellsBelowFive) / float64(n) * 100
	}
	return fmt.Sprintf("%d cells (%s%%) have expected frequencies less than 5. The minimum expected cell frequency is %s.",
		cs.CellsBelowFive, format.Fixed(share, percentPlaces), format.Fixed(cs.MinExpected, percentPlaces))
}
