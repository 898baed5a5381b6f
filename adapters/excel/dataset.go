package excel

import (
	"fmt"
	"strings"

	"gostatcore/domain/analysis"
	"gostatcore/domain/variable"
)

// Dataset is a loaded data file: one variable per column and the column
// values in case order.
type Dataset struct {
	Variables []variable.Variable
	Columns   [][]any
	Cases     int
}

// Variable looks a variable up by name, case-insensitively
func (d *Dataset) Variable(name string) (analysis.VariableData, bool) {
	for i, v := range d.Variables {
		if strings.EqualFold(v.Name, name) {
			return analysis.VariableData{Variable: v, Data: d.Columns[i]}, true
		}
	}
	return analysis.VariableData{}, false
}

// Select returns the named variables in the given order
func (d *Dataset) Select(names []string) ([]analysis.VariableData, error) {
	out := make([]analysis.VariableData, 0, len(names))
	for _, name := range names {
		vd, ok := d.Variable(name)
		if !ok {
			return nil, fmt.Errorf("variable %q not found in dataset", name)
		}
		out = append(out, vd)
	}
	return out, nil
}
