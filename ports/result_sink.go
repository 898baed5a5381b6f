package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Statistic components
const (
	ComponentTable = "table"
	ComponentChart = "chart"
)

// LogEntry is the syntax record created once per analysis run
type LogEntry struct {
	Log string `json:"log"`
}

// AnalyticEntry groups the statistics of one analysis run
type AnalyticEntry struct {
	Title string `json:"title"`
	Note  string `json:"note,omitempty"`
}

// StatisticEntry is one persisted table or chart. OutputData is the JSON
// serialized {"tables": [...]} or {"charts": [...]} payload.
type StatisticEntry struct {
	Title       string `json:"title"`
	OutputData  string `json:"output_data"`
	Components  string `json:"components"`
	Description string `json:"description"`
}

// ResultSink receives analysis output. Calls within a run are sequential.
type ResultSink interface {
	AddLog(ctx context.Context, entry LogEntry) (uuid.UUID, error)
	AddAnalytic(ctx context.Context, logID uuid.UUID, entry AnalyticEntry) (uuid.UUID, error)
	AddStatistic(ctx context.Context, analyticID uuid.UUID, entry StatisticEntry) error
}

// AnalyticRecord is a stored analytic with its log
type AnalyticRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	LogID     uuid.UUID `json:"log_id" db:"log_id"`
	Log       string    `json:"log" db:"log"`
	Title     string    `json:"title" db:"title"`
	Note      string    `json:"note,omitempty" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StatisticRecord is a stored statistic
type StatisticRecord struct {
	ID          uuid.UUID `json:"id" db:"id"`
	AnalyticID  uuid.UUID `json:"analytic_id" db:"analytic_id"`
	Title       string    `json:"title" db:"title"`
	OutputData  string    `json:"output_data" db:"output_data"`
	Components  string    `json:"components" db:"components"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ResultReader lists persisted analysis output, newest first
type ResultReader interface {
	ListAnalytics(ctx context.Context, limit int) ([]AnalyticRecord, error)
	GetAnalytic(ctx context.Context, id uuid.UUID) (*AnalyticRecord, error)
	ListStatistics(ctx context.Context, analyticID uuid.UUID) ([]StatisticRecord, error)
}

// ResultStore is a sink that can also be read back
type ResultStore interface {
	ResultSink
	ResultReader
}
