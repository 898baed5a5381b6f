package analysis

import "gostatcore/domain/variable"

// Analysis types understood by per-variable computation units
const (
	TypeDescriptiveStatistics = "descriptiveStatistics"
	TypeChiSquare             = "chiSquare"
	TypeRuns                  = "runs"
)

// Response statuses of per-variable computation units
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// VariableData is one variable with its raw column values
// (string, float64, nil for system-missing).
type VariableData struct {
	Variable variable.Variable `json:"variable"`
	Data     []any             `json:"data"`
}

// FrequenciesRequest is the single batched request of a Frequencies run
type FrequenciesRequest struct {
	VariableData       []VariableData     `json:"variableData"`
	WeightVariableData *VariableData      `json:"weightVariableData"`
	Options            FrequenciesOptions `json:"options"`
}

// FrequenciesResponse is the reply of a Frequencies unit
type FrequenciesResponse struct {
	Success bool                `json:"success"`
	Results *FrequenciesResults `json:"results,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// VariableRequest asks a unit to analyze one variable
type VariableRequest struct {
	AnalysisType []string          `json:"analysisType"`
	Variable     variable.Variable `json:"variable1"`
	Data         []any             `json:"data1"`
	ChiSquare    *ChiSquareOptions `json:"chiSquareOptions,omitempty"`
	Runs         *RunsOptions      `json:"runsOptions,omitempty"`
}

// Wants reports whether the request includes the given analysis type
func (r VariableRequest) Wants(analysisType string) bool {
	for _, t := range r.AnalysisType {
		if t == analysisType {
			return true
		}
	}
	return false
}

// VariableResponse is the per-variable reply of a Chi-Square or Runs unit
type VariableResponse struct {
	VariableName string           `json:"variableName"`
	Status       string           `json:"status"`
	Results      *VariableResults `json:"results,omitempty"`
	Error        string           `json:"error,omitempty"`
}
