package table

import (
	"encoding/json"
	"fmt"
)

// ColumnHeader describes one output column; Children turn it into a column group
type ColumnHeader struct {
	Header   string         `json:"header"`
	Key      string         `json:"key"`
	Children []ColumnHeader `json:"children,omitempty"`
}

// Row is one table row. Values holds the cells addressed by column key and is
// flattened next to rowHeader when serialized.
type Row struct {
	RowHeader []any
	Values    map[string]any
	Children  []Row
}

// FormattedTable is the presentation-ready table handed to result sinks
type FormattedTable struct {
	Title         string         `json:"title"`
	ColumnHeaders []ColumnHeader `json:"columnHeaders"`
	Rows          []Row          `json:"rows"`
	Footer        string         `json:"footer,omitempty"`
}

// Output is the payload stored as a statistic's output_data
type Output struct {
	Tables []FormattedTable `json:"tables"`
}

// NewRow creates a row with the given header cells
func NewRow(header ...any) Row {
	return Row{RowHeader: header, Values: map[string]any{}}
}

// Set assigns a cell value and returns the row for chaining
func (r Row) Set(key string, value any) Row {
	if r.Values == nil {
		r.Values = map[string]any{}
	}
	r.Values[key] = value
	return r
}

// Get returns the cell stored under key
func (r Row) Get(key string) any {
	return r.Values[key]
}

// MarshalJSON flattens Values beside rowHeader and children
func (r Row) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Values)+2)
	for k, v := range r.Values {
		flat[k] = v
	}
	header := r.RowHeader
	if header == nil {
		header = []any{}
	}
	flat["rowHeader"] = header
	if len(r.Children) > 0 {
		flat["children"] = r.Children
	}
	return json.Marshal(flat)
}

// UnmarshalJSON restores a flattened row
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Row{Values: map[string]any{}}
	for k, v := range raw {
		switch k {
		case "rowHeader":
			if err := json.Unmarshal(v, &r.RowHeader); err != nil {
				return fmt.Errorf("rowHeader: %w", err)
			}
		case "children":
			if err := json.Unmarshal(v, &r.Children); err != nil {
				return fmt.Errorf("children: %w", err)
			}
		default:
			var cell any
			if err := json.Unmarshal(v, &cell); err != nil {
				return fmt.Errorf("cell %s: %w", k, err)
			}
			r.Values[k] = cell
		}
	}
	return nil
}

// MarshalOutput serializes tables into the output_data JSON string
func MarshalOutput(tables ...FormattedTable) (string, error) {
	if tables == nil {
		tables = []FormattedTable{}
	}
	b, err := json.Marshal(Output{Tables: tables})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalOutput parses an output_data JSON string
func UnmarshalOutput(s string) (Output, error) {
	var out Output
	err := json.Unmarshal([]byte(s), &out)
	return out, err
}

// LeafKeys returns the keys of the leaf columns in display order
func (t FormattedTable) LeafKeys() []string {
	var keys []string
	var walk func([]ColumnHeader)
	walk = func(cols []ColumnHeader) {
		for _, c := range cols {
			if len(c.Children) > 0 {
				walk(c.Children)
				continue
			}
			keys = append(keys, c.Key)
		}
	}
	walk(t.ColumnHeaders)
	return keys
}
