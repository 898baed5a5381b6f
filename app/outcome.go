package app

import (
	"context"

	"gostatcore/domain/analysis"
)

// Outcome is what a caller sees once a run has settled
type Outcome struct {
	Result   *Result
	ErrorMsg string
	State    State
}

// runSync starts a run and blocks until it settles. A validation failure
// is returned as an error together with its outcome; a cancelled ctx
// cancels the run.
func (r *runner) runSync(ctx context.Context, start func() error) (Outcome, error) {
	if err := start(); err != nil {
		return r.outcome(), err
	}
	if err := r.Wait(ctx); err != nil {
		r.Cancel()
		return r.outcome(), err
	}
	return r.outcome(), nil
}

func (r *runner) outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Outcome{Result: r.last, ErrorMsg: r.errMsg, State: r.state}
}

// Run is RunAnalysis followed by Wait
func (a *FrequenciesAnalysis) Run(ctx context.Context, req analysis.FrequenciesRequest) (Outcome, error) {
	return a.runSync(ctx, func() error { return a.RunAnalysis(ctx, req) })
}

// Run is RunAnalysis followed by Wait
func (a *ChiSquareAnalysis) Run(ctx context.Context, req ChiSquareRequest) (Outcome, error) {
	return a.runSync(ctx, func() error { return a.RunAnalysis(ctx, req) })
}

// Run is RunAnalysis followed by Wait
func (a *RunsAnalysis) Run(ctx context.Context, req RunsRequest) (Outcome, error) {
	return a.runSync(ctx, func() error { return a.RunAnalysis(ctx, req) })
}
