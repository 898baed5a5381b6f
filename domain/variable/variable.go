package variable

import "strings"

// Type is the storage/display type of a dataset column
type Type string

const (
	TypeNumeric    Type = "NUMERIC"
	TypeString     Type = "STRING"
	TypeDate       Type = "DATE"
	TypeADate      Type = "ADATE"
	TypeEDate      Type = "EDATE"
	TypeSDate      Type = "SDATE"
	TypeJDate      Type = "JDATE"
	TypeQYR        Type = "QYR"
	TypeMOYR       Type = "MOYR"
	TypeWKYR       Type = "WKYR"
	TypeDateTime   Type = "DATETIME"
	TypeTime       Type = "TIME"
	TypeDTime      Type = "DTIME"
	TypeWkDay      Type = "WKDAY"
	TypeMonth      Type = "MONTH"
	TypeDollar     Type = "DOLLAR"
	TypeComma      Type = "COMMA"
	TypeDot        Type = "DOT"
	TypeScientific Type = "SCIENTIFIC"
)

// Measure is the declared level of measurement
type Measure string

const (
	MeasureNominal Measure = "nominal"
	MeasureOrdinal Measure = "ordinal"
	MeasureScale   Measure = "scale"
	MeasureUnknown Measure = "unknown"
)

// Variable describes one column of the active dataset. Variables are treated
// as read-only values; nothing in this module mutates them.
type Variable struct {
	Name        string  `json:"name"`
	Label       string  `json:"label,omitempty"`
	ColumnIndex int     `json:"columnIndex"`
	Type        Type    `json:"type"`
	Measure     Measure `json:"measure"`
	Decimals    int     `json:"decimals"`
	TempID      string  `json:"tempId,omitempty"`
}

// DisplayName returns the label when one is set, otherwise the name
func (v Variable) DisplayName() string {
	if strings.TrimSpace(v.Label) != "" {
		return v.Label
	}
	return v.Name
}

// IsString reports whether the variable holds free text
func (v Variable) IsString() bool {
	return strings.EqualFold(string(v.Type), string(TypeString))
}
