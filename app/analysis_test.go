package app

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gostatcore/adapters/memory"
	"gostatcore/domain/analysis"
	"gostatcore/domain/table"
	"gostatcore/domain/variable"
	apperrors "gostatcore/internal/errors"
	"gostatcore/internal/worker"
	"gostatcore/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResultSink struct {
	mock.Mock
}

func (m *MockResultSink) AddLog(ctx context.Context, entry ports.LogEntry) (uuid.UUID, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockResultSink) AddAnalytic(ctx context.Context, logID uuid.UUID, entry ports.AnalyticEntry) (uuid.UUID, error) {
	args := m.Called(ctx, logID, entry)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockResultSink) AddStatistic(ctx context.Context, analyticID uuid.UUID, entry ports.StatisticEntry) error {
	args := m.Called(ctx, analyticID, entry)
	return args.Error(0)
}

// expectRun stubs a log and analytic and returns the analytic id
func (m *MockResultSink) expectRun() uuid.UUID {
	logID, analyticID := uuid.New(), uuid.New()
	m.On("AddLog", mock.Anything, mock.Anything).Return(logID, nil)
	m.On("AddAnalytic", mock.Anything, logID, mock.Anything).Return(analyticID, nil)
	return analyticID
}

// stubUnits builds every unit around h
func stubUnits(h worker.Handler) worker.Factory {
	return func(kind worker.Kind) (*worker.Unit, error) {
		return worker.NewUnitWithHandler(kind, h), nil
	}
}

// gatedHandler replies only after gate is closed
func gatedHandler(gate <-chan struct{}, reply any) worker.Handler {
	return func(any) (any, error) {
		<-gate
		return reply, nil
	}
}

func wait(t *testing.T, w interface{ Wait(context.Context) error }) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Wait(ctx))
}

func numeric(name string) variable.Variable {
	return variable.Variable{Name: name, Type: variable.TypeNumeric, Measure: variable.MeasureScale}
}

func equalChiSquare(vars ...analysis.VariableData) ChiSquareRequest {
	return ChiSquareRequest{
		Variables: vars,
		Options: analysis.ChiSquareOptions{
			ExpectedRange: analysis.ExpectedRange{GetFromData: true},
			ExpectedValue: analysis.ExpectedValue{AllCategoriesEqual: true},
		},
	}
}

func TestFrequencies_HappyPath(t *testing.T) {
	sink := &MockResultSink{}
	analyticID := sink.expectRun()
	sink.On("AddStatistic", mock.Anything, analyticID, mock.MatchedBy(func(e ports.StatisticEntry) bool {
		return e.Components == ports.ComponentTable
	})).Return(nil)

	reply := analysis.FrequenciesResponse{
		Success: true,
		Results: &analysis.FrequenciesResults{
			Statistics: map[string]analysis.DescriptiveStatistics{},
			FrequencyTables: map[string]analysis.FrequencyTable{
				"var1": {Title: "Var1 Frequencies", Summary: analysis.FrequencySummary{Valid: 3, Total: 3}},
			},
		},
	}
	var closed atomic.Int32
	a := NewFrequenciesAnalysis(Deps{
		Sink:    sink,
		Units:   stubUnits(func(any) (any, error) { return reply, nil }),
		OnClose: func() { closed.Add(1) },
	})

	err := a.RunAnalysis(context.Background(), analysis.FrequenciesRequest{
		VariableData: []analysis.VariableData{{
			Variable: variable.Variable{Name: "var1", Type: variable.TypeString, Measure: variable.MeasureNominal},
			Data:     []any{"A", "B", "A"},
		}},
		Options: analysis.FrequenciesOptions{DisplayFrequency: true},
	})
	require.NoError(t, err)
	wait(t, a)

	sink.AssertNumberOfCalls(t, "AddLog", 1)
	sink.AssertNumberOfCalls(t, "AddAnalytic", 1)
	sink.AssertNumberOfCalls(t, "AddStatistic", 1)
	assert.Equal(t, int32(1), closed.Load())
	assert.Empty(t, a.ErrorMsg())
	assert.False(t, a.IsLoading())
	assert.Equal(t, StateIdle, a.State())

	res := a.LastResult()
	require.NotNil(t, res)
	assert.Equal(t, "Frequencies", res.Title)
	assert.Contains(t, res.Log, "FREQUENCIES VARIABLES=var1")
	out, err := table.UnmarshalOutput(res.Statistics[0].OutputData)
	require.NoError(t, err)
	require.Len(t, out.Tables, 1)
	assert.Equal(t, "Var1 Frequencies", out.Tables[0].Title)
}

func TestFrequencies_UnsuccessfulReplyIsReported(t *testing.T) {
	sink := &MockResultSink{}
	var closed atomic.Int32
	a := NewFrequenciesAnalysis(Deps{
		Sink:    sink,
		Units:   stubUnits(func(any) (any, error) { return analysis.FrequenciesResponse{}, nil }),
		OnClose: func() { closed.Add(1) },
	})

	require.NoError(t, a.RunAnalysis(context.Background(), analysis.FrequenciesRequest{
		VariableData: []analysis.VariableData{{Variable: numeric("x"), Data: []any{1.0}}},
	}))
	wait(t, a)

	assert.Equal(t, "Unknown error", a.ErrorMsg())
	assert.Zero(t, closed.Load())
	sink.AssertNotCalled(t, "AddLog", mock.Anything, mock.Anything)
}

func TestFrequencies_StatisticsAndCharts(t *testing.T) {
	store := memory.NewResultStore()
	a := NewFrequenciesAnalysis(Deps{Sink: store})

	stats := &analysis.StatisticsOptions{CentralTendency: analysis.CentralTendencyOptions{Mean: true}}
	require.NoError(t, a.RunAnalysis(context.Background(), analysis.FrequenciesRequest{
		VariableData: []analysis.VariableData{{Variable: numeric("score"), Data: []any{1.0, 2.0, 2.0, nil}}},
		Options: analysis.FrequenciesOptions{
			DisplayFrequency:   true,
			DisplayDescriptive: true,
			Statistics:         stats,
			Charts:             &analysis.ChartOptions{Type: analysis.ChartBar, Values: analysis.ChartFrequencies},
		},
	}))
	wait(t, a)
	require.Empty(t, a.ErrorMsg())

	res := a.LastResult()
	require.NotNil(t, res)
	require.Len(t, res.Statistics, 3)
	assert.Equal(t, "Statistics", res.Statistics[0].Title)
	assert.Equal(t, ports.ComponentTable, res.Statistics[1].Components)
	assert.Equal(t, ports.ComponentChart, res.Statistics[2].Components)
	assert.Contains(t, res.Log, "/STATISTICS=MEAN")
	assert.Contains(t, res.Log, "/BARCHART FREQ")

	analytics, err := store.ListAnalytics(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, analytics, 1)
	saved, err := store.ListStatistics(context.Background(), analytics[0].ID)
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestChiSquare_AggregatesExactlyOnce(t *testing.T) {
	sink := &MockResultSink{}
	analyticID := sink.expectRun()
	sink.On("AddStatistic", mock.Anything, analyticID, mock.Anything).Return(nil)

	gate := make(chan struct{})
	defer close(gate)
	var closed atomic.Int32
	a := NewChiSquareAnalysis(Deps{
		Sink:    sink,
		Units:   stubUnits(gatedHandler(gate, nil)),
		OnClose: func() { closed.Add(1) },
	})

	x, y := numeric("x"), numeric("y")
	require.NoError(t, a.RunAnalysis(context.Background(), equalChiSquare(
		analysis.VariableData{Variable: x, Data: []any{1.0}},
		analysis.VariableData{Variable: y, Data: []any{2.0}},
	)))

	a.mu.Lock()
	cur := a.cur
	a.mu.Unlock()
	require.NotNil(t, cur)
	require.Len(t, cur.units, 2)

	ok := func(name string) analysis.VariableResponse {
		return analysis.VariableResponse{VariableName: name, Status: analysis.StatusSuccess, Results: &analysis.VariableResults{}}
	}
	jx, jy := job{key: "x", variable: x}, job{key: "y", variable: y}

	a.onMessage(cur, cur.units[0], jx, ok("x"))
	a.onMessage(cur, cur.units[0], jx, ok("x"))
	assert.True(t, a.IsLoading())
	sink.AssertNotCalled(t, "AddAnalytic", mock.Anything, mock.Anything, mock.Anything)

	a.onMessage(cur, cur.units[1], jy, ok("y"))
	wait(t, a)
	a.onMessage(cur, cur.units[1], jy, ok("y"))

	sink.AssertNumberOfCalls(t, "AddLog", 1)
	sink.AssertNumberOfCalls(t, "AddAnalytic", 1)
	assert.Equal(t, int32(1), closed.Load())
	assert.False(t, a.IsLoading())
}

func TestChiSquare_CancelIsTerminal(t *testing.T) {
	sink := &MockResultSink{}
	gate := make(chan struct{})
	reply := analysis.VariableResponse{Status: analysis.StatusSuccess, Results: &analysis.VariableResults{}}
	var closed atomic.Int32
	a := NewChiSquareAnalysis(Deps{
		Sink:    sink,
		Units:   stubUnits(gatedHandler(gate, reply)),
		OnClose: func() { closed.Add(1) },
	})

	require.NoError(t, a.RunAnalysis(context.Background(), equalChiSquare(
		analysis.VariableData{Variable: numeric("x"), Data: []any{1.0, 2.0}},
	)))
	a.mu.Lock()
	cur := a.cur
	a.mu.Unlock()

	a.Cancel()
	a.Cancel()
	close(gate)
	a.onMessage(cur, cur.units[0], job{key: "x", variable: numeric("x")}, reply)
	time.Sleep(50 * time.Millisecond)

	assert.False(t, a.IsLoading())
	assert.Equal(t, StateIdle, a.State())
	assert.Empty(t, a.ErrorMsg())
	assert.Nil(t, a.LastResult())
	assert.Zero(t, closed.Load())
	sink.AssertNotCalled(t, "AddLog", mock.Anything, mock.Anything)
}

func TestChiSquare_ValidationFailure(t *testing.T) {
	a := NewChiSquareAnalysis(Deps{})

	err := a.RunAnalysis(context.Background(), ChiSquareRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))
	assert.Equal(t, msgNoVariables, a.ErrorMsg())
	assert.False(t, a.IsLoading())

	req := equalChiSquare(analysis.VariableData{Variable: numeric("x")})
	req.Options.ExpectedValue = analysis.ExpectedValue{}
	require.Error(t, a.RunAnalysis(context.Background(), req))
	assert.Equal(t, msgNoExpectedValues, a.ErrorMsg())

	req = equalChiSquare(analysis.VariableData{Variable: numeric("x")})
	req.Options.ExpectedRange = analysis.ExpectedRange{UseSpecifiedRange: true}
	require.Error(t, a.RunAnalysis(context.Background(), req))
	assert.Equal(t, msgNoRangeBound, a.ErrorMsg())

	lower, upper := 0.0, 1e9
	req = equalChiSquare(analysis.VariableData{Variable: numeric("x")})
	req.Options.ExpectedRange = analysis.ExpectedRange{UseSpecifiedRange: true, Lower: &lower, Upper: &upper}
	require.Error(t, a.RunAnalysis(context.Background(), req))
	assert.Equal(t, msgRangeTooWide, a.ErrorMsg())
}

func TestChiSquare_UnitFailure(t *testing.T) {
	sink := &MockResultSink{}
	a := NewChiSquareAnalysis(Deps{
		Sink:  sink,
		Units: stubUnits(func(any) (any, error) { return nil, errors.New("boom") }),
	})

	require.NoError(t, a.RunAnalysis(context.Background(), equalChiSquare(
		analysis.VariableData{Variable: numeric("x"), Data: []any{1.0}},
	)))
	wait(t, a)

	assert.Equal(t, "An error occurred in the Chi-Square worker: boom", a.ErrorMsg())
	assert.Equal(t, StateFailed, a.State())
	assert.False(t, a.IsLoading())
	sink.AssertNotCalled(t, "AddLog", mock.Anything, mock.Anything)
}

func TestChiSquare_UnitTimeout(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	a := NewChiSquareAnalysis(Deps{
		Units:       stubUnits(gatedHandler(gate, nil)),
		UnitTimeout: 20 * time.Millisecond,
	})

	require.NoError(t, a.RunAnalysis(context.Background(), equalChiSquare(
		analysis.VariableData{Variable: numeric("x"), Data: []any{1.0}},
	)))
	wait(t, a)

	assert.Contains(t, a.ErrorMsg(), "no result within")
	assert.Equal(t, StateFailed, a.State())
}

func TestChiSquare_PartialErrorsSkipClose(t *testing.T) {
	sink := &MockResultSink{}
	analyticID := sink.expectRun()
	sink.On("AddStatistic", mock.Anything, analyticID, mock.Anything).Return(nil)
	var closed atomic.Int32
	a := NewChiSquareAnalysis(Deps{Sink: sink, OnClose: func() { closed.Add(1) }})

	text := variable.Variable{Name: "city", Label: "City", Type: variable.TypeString}
	require.NoError(t, a.RunAnalysis(context.Background(), equalChiSquare(
		analysis.VariableData{Variable: numeric("x"), Data: []any{1.0, 2.0, 2.0}},
		analysis.VariableData{Variable: text, Data: []any{"a", "b"}},
	)))
	wait(t, a)

	assert.Contains(t, a.ErrorMsg(), "City: Chi-Square Test requires a numeric variable")
	assert.Zero(t, closed.Load())
	sink.AssertNumberOfCalls(t, "AddAnalytic", 1)
	titles := make([]string, 0, 2)
	for _, s := range a.LastResult().Statistics {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"Frequencies", "Test Statistics"}, titles)
}

func TestChiSquare_SaveError(t *testing.T) {
	sink := &MockResultSink{}
	sink.On("AddLog", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("connection refused"))
	var closed atomic.Int32
	a := NewChiSquareAnalysis(Deps{Sink: sink, OnClose: func() { closed.Add(1) }})

	require.NoError(t, a.RunAnalysis(context.Background(), equalChiSquare(
		analysis.VariableData{Variable: numeric("x"), Data: []any{1.0, 2.0}},
	)))
	wait(t, a)

	assert.Equal(t, saveErrorMessage, a.ErrorMsg())
	assert.Zero(t, closed.Load())
	assert.NotNil(t, a.LastResult())
}

func TestRuns_InsufficientDataIsANote(t *testing.T) {
	sink := &MockResultSink{}
	analyticID := sink.expectRun()
	sink.On("AddStatistic", mock.Anything, analyticID, mock.Anything).Return(nil)
	var closed atomic.Int32
	a := NewRunsAnalysis(Deps{Sink: sink, OnClose: func() { closed.Add(1) }})

	require.NoError(t, a.RunAnalysis(context.Background(), RunsRequest{
		Variables: []analysis.VariableData{{Variable: numeric("x"), Data: []any{3.0, 3.0, 3.0, 3.0}}},
		Options:   analysis.RunsOptions{CutPoint: analysis.CutPoints{Median: true}},
	}))
	wait(t, a)

	assert.Empty(t, a.ErrorMsg())
	assert.Equal(t, int32(1), closed.Load())
	sink.AssertCalled(t, "AddAnalytic", mock.Anything, mock.Anything, mock.MatchedBy(func(e ports.AnalyticEntry) bool {
		return e.Title == "Runs Test" && strings.Contains(e.Note, "Runs Test cannot be performed")
	}))
	sink.AssertNumberOfCalls(t, "AddStatistic", 1)
}

func TestRuns_ValidationFailure(t *testing.T) {
	a := NewRunsAnalysis(Deps{})
	vars := []analysis.VariableData{{Variable: numeric("x")}}

	require.Error(t, a.RunAnalysis(context.Background(), RunsRequest{Variables: vars}))
	assert.Equal(t, msgNoCutPoint, a.ErrorMsg())

	require.Error(t, a.RunAnalysis(context.Background(), RunsRequest{
		Variables: vars,
		Options:   analysis.RunsOptions{CutPoint: analysis.CutPoints{Custom: true}},
	}))
	assert.Equal(t, msgNoCustomCutValue, a.ErrorMsg())
}

func TestRuns_NewRunReplacesPrevious(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	sink := &MockResultSink{}
	analyticID := sink.expectRun()
	sink.On("AddStatistic", mock.Anything, analyticID, mock.Anything).Return(nil)

	blocked := true
	a := NewRunsAnalysis(Deps{
		Sink: sink,
		Units: func(kind worker.Kind) (*worker.Unit, error) {
			if blocked {
				blocked = false
				return worker.NewUnitWithHandler(kind, gatedHandler(gate, nil)), nil
			}
			return worker.NewUnit(kind)
		},
	})

	req := RunsRequest{
		Variables: []analysis.VariableData{{Variable: numeric("x"), Data: []any{1.0, 5.0, 2.0, 6.0}}},
		Options:   analysis.RunsOptions{CutPoint: analysis.CutPoints{Mean: true}},
	}
	require.NoError(t, a.RunAnalysis(context.Background(), req))
	require.NoError(t, a.RunAnalysis(context.Background(), req))
	wait(t, a)

	assert.Empty(t, a.ErrorMsg())
	sink.AssertNumberOfCalls(t, "AddAnalytic", 1)
}
