package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gostatcore/domain/variable"
	"gostatcore/internal"
	apperrors "gostatcore/internal/errors"
	"gostatcore/internal/metrics"
	"gostatcore/internal/worker"
	"gostatcore/ports"

	"golang.org/x/sync/semaphore"
)

// State is the lifecycle phase of an analysis
type State int

const (
	StateIdle State = iota
	StateDispatching
	StateAwaitingResults
	StateAggregating
	StatePersisting
	StateFailed
)

var stateNames = [...]string{"Idle", "Dispatching", "AwaitingResults", "Aggregating", "Persisting", "Failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	defaultMaxConcurrentUnits = 4
	saveErrorMessage          = "Error saving results"
)

// Deps are the collaborators of an analysis. Units defaults to
// worker.NewUnit and Logger to the default logger.
type Deps struct {
	Sink               ports.ResultSink
	Units              worker.Factory
	OnClose            func()
	Logger             *internal.Logger
	MaxConcurrentUnits int64
	UnitTimeout        time.Duration
}

// job is one request posted to one computation unit
type job struct {
	key      string
	variable variable.Variable
	msg      any
}

// Result is what one run hands to the sink: the command syntax, the analytic
// title and note, and one statistic entry per output block.
type Result struct {
	Log        string
	Title      string
	Note       string
	Statistics []ports.StatisticEntry
}

// procedure supplies the parts of a run that differ between analyses
type procedure interface {
	// decode turns a unit reply into a result, or into a per-variable error
	decode(j job, reply any) (any, error)
	aggregate(results map[string]any) (Result, error)
}

// run is the state owned by one RunAnalysis invocation
type run struct {
	ctx       context.Context
	cancel    context.CancelFunc
	proc      procedure
	sem       *semaphore.Weighted
	started   time.Time
	total     int
	processed int
	errCount  int
	errs      []string
	seen      map[string]bool
	results   map[string]any
	units     []*worker.Unit
	timer     *time.Timer
	done      chan struct{}
	closeOnce sync.Once
}

// runner drives the lifecycle shared by every analysis: validate, dispatch,
// collect, aggregate, persist.
type runner struct {
	name       string
	workerName string
	kind       worker.Kind
	deps       Deps
	logger     *internal.Logger

	mu      sync.Mutex
	state   State
	loading bool
	errMsg  string
	cur     *run
	done    chan struct{}
	last    *Result
}

func newRunner(name, workerName string, kind worker.Kind, deps Deps) *runner {
	if deps.Units == nil {
		deps.Units = worker.NewUnit
	}
	if deps.MaxConcurrentUnits <= 0 {
		deps.MaxConcurrentUnits = defaultMaxConcurrentUnits
	}
	return &runner{
		name:       name,
		workerName: workerName,
		kind:       kind,
		deps:       deps,
		logger:     deps.Logger.With(workerName),
	}
}

// IsLoading reports whether a run is in flight
func (r *runner) IsLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// ErrorMsg returns the user-facing message of the last run, "" when none
func (r *runner) ErrorMsg() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errMsg
}

// LastResult returns the output of the latest completed run, nil when the
// run failed, was cancelled or produced no result.
func (r *runner) LastResult() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// State returns the current lifecycle phase
func (r *runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Wait blocks until the latest run has finished, failed or been cancelled
func (r *runner) Wait(ctx context.Context) error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel terminates the live units and discards the run. Replies still in
// flight are dropped. Calling it while idle does nothing.
func (r *runner) Cancel() {
	r.mu.Lock()
	cur := r.cur
	if cur == nil {
		r.mu.Unlock()
		return
	}
	r.cur = nil
	r.loading = false
	r.state = StateIdle
	r.mu.Unlock()

	r.teardown(cur)
	metrics.RecordRun(r.name, metrics.OutcomeCancelled, time.Since(cur.started))
	r.logger.Info("analysis cancelled")
}

// Close releases everything the analysis owns
func (r *runner) Close() {
	r.Cancel()
}

// start cancels any previous run, validates, resets per-run state and posts
// one message per job. It returns once every job has been dispatched; at most
// MaxConcurrentUnits units are alive at a time.
func (r *runner) start(ctx context.Context, invalid string, jobs []job, proc procedure) error {
	r.Cancel()

	r.mu.Lock()
	r.state = StateDispatching
	if invalid != "" {
		r.state = StateIdle
		r.loading = false
		r.errMsg = invalid
		r.mu.Unlock()
		metrics.RecordRun(r.name, metrics.OutcomeInvalid, 0)
		return apperrors.ValidationError(invalid)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cur := &run{
		ctx:     runCtx,
		cancel:  cancel,
		proc:    proc,
		sem:     semaphore.NewWeighted(r.deps.MaxConcurrentUnits),
		started: time.Now(),
		total:   len(jobs),
		seen:    make(map[string]bool, len(jobs)),
		results: make(map[string]any, len(jobs)),
		done:    make(chan struct{}),
	}
	r.cur = cur
	r.done = cur.done
	r.last = nil
	r.loading = true
	r.errMsg = ""
	if timeout := r.deps.UnitTimeout; timeout > 0 {
		cur.timer = time.AfterFunc(timeout, func() {
			r.fail(cur, fmt.Errorf("no result within %s", timeout))
		})
	}
	r.mu.Unlock()

	r.logger.Info("dispatching %d request(s)", len(jobs))

	acquireCtx, stop := context.WithCancel(runCtx)
	defer stop()
	defer context.AfterFunc(ctx, stop)()

	for _, j := range jobs {
		if runCtx.Err() != nil {
			return nil
		}
		if err := cur.sem.Acquire(acquireCtx, 1); err != nil {
			if ctx.Err() != nil {
				r.Cancel()
				return ctx.Err()
			}
			return nil
		}
		if err := r.dispatch(cur, j); err != nil {
			if r.fail(cur, err) {
				return apperrors.WorkerFailure(r.workerName, err)
			}
			return nil
		}
	}

	r.mu.Lock()
	if r.cur == cur && r.state == StateDispatching {
		r.state = StateAwaitingResults
	}
	r.mu.Unlock()
	return nil
}

func (r *runner) dispatch(cur *run, j job) error {
	unit, err := r.deps.Units(r.kind)
	if err != nil {
		cur.sem.Release(1)
		return err
	}
	unit.SetOnMessage(func(msg any) { r.onMessage(cur, unit, j, msg) })
	unit.SetOnError(func(err error) {
		r.logger.Debug("%s unit for %q reported: %v", unit.Kind(), j.key, err)
		r.fail(cur, err)
	})

	r.mu.Lock()
	if r.cur != cur {
		r.mu.Unlock()
		unit.Terminate()
		return nil
	}
	cur.units = append(cur.units, unit)
	r.mu.Unlock()

	return unit.PostMessage(j.msg)
}

// onMessage records one reply. The reply that completes the set triggers
// aggregation; later or duplicate replies are ignored.
func (r *runner) onMessage(cur *run, unit *worker.Unit, j job, msg any) {
	result, err := cur.proc.decode(j, msg)

	r.mu.Lock()
	if r.cur != cur || (r.state != StateDispatching && r.state != StateAwaitingResults) || cur.seen[j.key] {
		r.mu.Unlock()
		return
	}
	cur.seen[j.key] = true
	if err != nil {
		cur.errCount++
		cur.errs = append(cur.errs, err.Error())
	} else {
		cur.results[j.key] = result
	}
	cur.processed++
	complete := cur.processed == cur.total
	if complete {
		r.state = StateAggregating
	}
	r.mu.Unlock()

	if err != nil {
		metrics.RecordVariableError(r.name)
		r.logger.Warn("%v", err)
	}
	unit.Terminate()
	cur.sem.Release(1)

	if complete {
		r.finish(cur)
	}
}

// fail ends the run after a unit died. It reports whether the failure applied
// to the live run.
func (r *runner) fail(cur *run, cause error) bool {
	r.mu.Lock()
	if r.cur != cur || (r.state != StateDispatching && r.state != StateAwaitingResults) {
		r.mu.Unlock()
		return false
	}
	r.cur = nil
	r.state = StateFailed
	r.loading = false
	r.errMsg = fmt.Sprintf("An error occurred in the %s worker: %v", r.workerName, cause)
	r.mu.Unlock()

	r.logger.Error("unit failure: %v", cause)
	r.teardown(cur)
	metrics.RecordRun(r.name, metrics.OutcomeFailed, time.Since(cur.started))
	return true
}

func (r *runner) finish(cur *run) {
	var (
		plan       Result
		aggregated bool
		err        error
	)
	if len(cur.results) > 0 {
		plan, err = cur.proc.aggregate(cur.results)
		aggregated = err == nil
		if aggregated && r.advance(cur, StatePersisting) {
			err = r.persist(cur.ctx, plan)
		}
	}

	r.mu.Lock()
	if r.cur != cur {
		r.mu.Unlock()
		return
	}
	r.cur = nil
	r.state = StateIdle
	r.loading = false
	if aggregated {
		r.last = &plan
	}
	outcome, closeNow := metrics.OutcomeSuccess, false
	switch {
	case err != nil:
		r.errMsg = saveErrorMessage
		outcome = metrics.OutcomeSaveFailed
	case cur.errCount > 0:
		r.errMsg = strings.Join(cur.errs, "\n")
		outcome = metrics.OutcomePartial
	default:
		r.errMsg = ""
		closeNow = true
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("saving results: %v", err)
	}
	r.teardown(cur)
	metrics.RecordRun(r.name, outcome, time.Since(cur.started))
	r.logger.Info("analysis finished: %d result(s), %d error(s)", len(cur.results), cur.errCount)

	if closeNow && r.deps.OnClose != nil {
		r.deps.OnClose()
	}
}

func (r *runner) advance(cur *run, next State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur != cur {
		return false
	}
	r.state = next
	return true
}

// persist writes the log, the analytic and every statistic, in order
func (r *runner) persist(ctx context.Context, plan Result) error {
	sink := r.deps.Sink
	if sink == nil {
		r.logger.Debug("no result sink configured, skipping persistence")
		return nil
	}

	logID, err := sink.AddLog(ctx, ports.LogEntry{Log: plan.Log})
	if err != nil {
		return apperrors.PersistenceError("add log", err)
	}
	analyticID, err := sink.AddAnalytic(ctx, logID, ports.AnalyticEntry{Title: plan.Title, Note: plan.Note})
	if err != nil {
		return apperrors.PersistenceError("add analytic", err)
	}
	for _, s := range plan.Statistics {
		if err := sink.AddStatistic(ctx, analyticID, s); err != nil {
			return apperrors.PersistenceError("add statistic "+s.Title, err)
		}
	}
	return nil
}

// teardown stops the run's timer and units and releases Wait
func (r *runner) teardown(cur *run) {
	if cur.timer != nil {
		cur.timer.Stop()
	}
	for _, u := range cur.units {
		u.Terminate()
	}
	cur.cancel()
	cur.closeOnce.Do(func() { close(cur.done) })
}
