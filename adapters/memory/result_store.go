// Package memory keeps analysis results in process memory. It backs the CLI
// and runs without DATABASE_URL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "gostatcore/internal/errors"
	"gostatcore/ports"

	"github.com/google/uuid"
)

// ResultStore implements ports.ResultStore
type ResultStore struct {
	mu         sync.RWMutex
	logs       map[uuid.UUID]string
	analytics  map[uuid.UUID]ports.AnalyticRecord
	statistics map[uuid.UUID][]ports.StatisticRecord
	now        func() time.Time
}

// NewResultStore creates an empty store
func NewResultStore() *ResultStore {
	return &ResultStore{
		logs:       map[uuid.UUID]string{},
		analytics:  map[uuid.UUID]ports.AnalyticRecord{},
		statistics: map[uuid.UUID][]ports.StatisticRecord{},
		now:        time.Now,
	}
}

func (s *ResultStore) AddLog(ctx context.Context, entry ports.LogEntry) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	s.mu.Lock()
	s.logs[id] = entry.Log
	s.mu.Unlock()
	return id, nil
}

func (s *ResultStore) AddAnalytic(ctx context.Context, logID uuid.UUID, entry ports.AnalyticEntry) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[logID]
	if !ok {
		return uuid.Nil, apperrors.NotFound("log " + logID.String())
	}
	id := uuid.New()
	s.analytics[id] = ports.AnalyticRecord{
		ID:        id,
		LogID:     logID,
		Log:       log,
		Title:     entry.Title,
		Note:      entry.Note,
		CreatedAt: s.now(),
	}
	return id, nil
}

func (s *ResultStore) AddStatistic(ctx context.Context, analyticID uuid.UUID, entry ports.StatisticEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.analytics[analyticID]; !ok {
		return apperrors.NotFound("analytic " + analyticID.String())
	}
	s.statistics[analyticID] = append(s.statistics[analyticID], ports.StatisticRecord{
		ID:          uuid.New(),
		AnalyticID:  analyticID,
		Title:       entry.Title,
		OutputData:  entry.OutputData,
		Components:  entry.Components,
		Description: entry.Description,
		CreatedAt:   s.now(),
	})
	return nil
}

func (s *ResultStore) ListAnalytics(ctx context.Context, limit int) ([]ports.AnalyticRecord, error) {
	s.mu.RLock()
	out := make([]ports.AnalyticRecord, 0, len(s.analytics))
	for _, a := range s.analytics {
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ResultStore) GetAnalytic(ctx context.Context, id uuid.UUID) (*ports.AnalyticRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analytics[id]
	if !ok {
		return nil, apperrors.NotFound("analytic " + id.String())
	}
	return &a, nil
}

// ListStatistics returns statistics in insertion order
func (s *ResultStore) ListStatistics(ctx context.Context, analyticID uuid.UUID) ([]ports.StatisticRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.analytics[analyticID]; !ok {
		return nil, apperrors.NotFound("analytic " + analyticID.String())
	}
	return append([]ports.StatisticRecord(nil), s.statistics[analyticID]...), nil
}
