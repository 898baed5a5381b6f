package postgres

import (
	"context"
	"database/sql"
	"errors"

	apperrors "gostatcore/internal/errors"
	"gostatcore/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ResultRepository implements ports.ResultStore for PostgreSQL
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

var _ ports.ResultStore = (*ResultRepository)(nil)

// AddLog stores the syntax log of a run
func (r *ResultRepository) AddLog(ctx context.Context, entry ports.LogEntry) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analysis_logs (id, log, created_at)
		VALUES ($1, $2, NOW())
	`, id, entry.Log)
	if err != nil {
		return uuid.Nil, apperrors.PersistenceError("insert analysis log", err)
	}
	return id, nil
}

// AddAnalytic stores the parent entry of a run's statistics
func (r *ResultRepository) AddAnalytic(ctx context.Context, logID uuid.UUID, entry ports.AnalyticEntry) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analytics (id, log_id, title, note, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, id, logID, entry.Title, entry.Note)
	if err != nil {
		return uuid.Nil, apperrors.PersistenceError("insert analytic", err)
	}
	return id, nil
}

// AddStatistic stores one table or chart payload
func (r *ResultRepository) AddStatistic(ctx context.Context, analyticID uuid.UUID, entry ports.StatisticEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO statistics (id, analytic_id, title, output_data, components, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, uuid.New(), analyticID, entry.Title, entry.OutputData, entry.Components, entry.Description)
	if err != nil {
		return apperrors.PersistenceError("insert statistic", err)
	}
	return nil
}

// ListAnalytics returns the newest analytics first; limit <= 0 means all
func (r *ResultRepository) ListAnalytics(ctx context.Context, limit int) ([]ports.AnalyticRecord, error) {
	query := `
		SELECT a.id, a.log_id, l.log, a.title, a.note, a.created_at
		FROM analytics a
		JOIN analysis_logs l ON l.id = a.log_id
		ORDER BY a.created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var records []ports.AnalyticRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, apperrors.Wrap(apperrors.WithCode(apperrors.CodeDatabaseError, err), "failed to list analytics")
	}
	return records, nil
}

// GetAnalytic retrieves one analytic with its log
func (r *ResultRepository) GetAnalytic(ctx context.Context, id uuid.UUID) (*ports.AnalyticRecord, error) {
	var record ports.AnalyticRecord
	err := r.db.GetContext(ctx, &record, `
		SELECT a.id, a.log_id, l.log, a.title, a.note, a.created_at
		FROM analytics a
		JOIN analysis_logs l ON l.id = a.log_id
		WHERE a.id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("analytic " + id.String())
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.WithCode(apperrors.CodeDatabaseError, err), "failed to get analytic")
	}
	return &record, nil
}

// ListStatistics returns an analytic's statistics in insertion order
func (r *ResultRepository) ListStatistics(ctx context.Context, analyticID uuid.UUID) ([]ports.StatisticRecord, error) {
	var records []ports.StatisticRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT id, analytic_id, title, output_data, components, description, created_at
		FROM statistics
		WHERE analytic_id = $1
		ORDER BY seq ASC
	`, analyticID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.WithCode(apperrors.CodeDatabaseError, err), "failed to list statistics")
	}
	return records, nil
}
