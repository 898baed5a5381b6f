package worker

import (
	"fmt"
	"sync"

	"gostatcore/adapters/stats/compute"
	"gostatcore/domain/analysis"
)

// Kind names a family of computation units
type Kind string

const (
	KindFrequencies Kind = "frequencies"
	KindChiSquare   Kind = "chisquare"
	KindRuns        Kind = "runs"
)

var (
	registryMu sync.RWMutex
	registry   = map[Kind]Handler{
		KindFrequencies: frequenciesHandler,
		KindChiSquare:   chiSquareHandler,
		KindRuns:        runsHandler,
	}
)

// Register installs or replaces the handler for kind
func Register(kind Kind, h Handler) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = h
}

// Lookup returns the handler registered for kind
func Lookup(kind Kind) (Handler, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	h, ok := registry[kind]
	return h, ok
}

// frequenciesHandler answers a batched request. Kernel errors become an
// unsuccessful response rather than a unit failure.
func frequenciesHandler(msg any) (any, error) {
	req, ok := msg.(analysis.FrequenciesRequest)
	if !ok {
		return nil, fmt.Errorf("frequencies unit received %T", msg)
	}
	results, err := compute.Frequencies(req)
	if err != nil {
		return analysis.FrequenciesResponse{Success: false, Error: err.Error()}, nil
	}
	return analysis.FrequenciesResponse{Success: true, Results: results}, nil
}

func chiSquareHandler(msg any) (any, error) {
	req, ok := msg.(analysis.VariableRequest)
	if !ok {
		return nil, fmt.Errorf("chi-square unit received %T", msg)
	}
	return compute.ChiSquare(req), nil
}

func runsHandler(msg any) (any, error) {
	req, ok := msg.(analysis.VariableRequest)
	if !ok {
		return nil, fmt.Errorf("runs unit received %T", msg)
	}
	return compute.Runs(req), nil
}
