package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createReportsTable = `
	CREATE TABLE IF NOT EXISTS batch_reports (
		run_id     UUID PRIMARY KEY,
		status     TEXT NOT NULL,
		seed       BIGINT NOT NULL,
		summary    JSONB NOT NULL,
		raw_data   JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PGReportStore persists completed batch reports to PostgreSQL. The raw
// per-season vectors go in alongside the summary so stored reports can be
// re-analyzed without re-simulating.
type PGReportStore struct {
	db *pgxpool.Pool
}

// NewPGReportStore connects to the given database URL and ensures the
// reports table exists.
func NewPGReportStore(ctx context.Context, databaseURL string) (*PGReportStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createReportsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create batch_reports table: %w", err)
	}

	return &PGReportStore{db: pool}, nil
}

// SaveReport inserts a completed report, replacing any prior row for the
// same run ID.
func (s *PGReportStore) SaveReport(ctx context.Context, runID string, report *BatchReport) error {
	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	rawJSON, err := json.Marshal(report.RawData)
	if err != nil {
		return fmt.Errorf("failed to marshal raw data: %w", err)
	}

	query := `
		INSERT INTO batch_reports (run_id, status, seed, summary, raw_data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO UPDATE
		SET status = EXCLUDED.status,
		    seed = EXCLUDED.seed,
		    summary = EXCLUDED.summary,
		    raw_data = EXCLUDED.raw_data
	`

	if _, err := s.db.Exec(ctx, query, runID, string(report.Status), report.Seed, summaryJSON, rawJSON); err != nil {
		return fmt.Errorf("failed to store report %s: %w", runID, err)
	}
	return nil
}

// GetReport loads a previously stored report by run ID.
func (s *PGReportStore) GetReport(ctx context.Context, runID string) (*BatchReport, error) {
	query := `
		SELECT status, seed, summary, raw_data
		FROM batch_reports
		WHERE run_id = $1
	`

	var (
		status      string
		seed        int64
		summaryJSON []byte
		rawJSON     []byte
	)
	if err := s.db.QueryRow(ctx, query, runID).Scan(&status, &seed, &summaryJSON, &rawJSON); err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", runID, err)
	}

	report := &BatchReport{
		Status: BatchStatus(status),
		Seed:   seed,
	}
	if err := json.Unmarshal(summaryJSON, &report.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary for %s: %w", runID, err)
	}
	if err := json.Unmarshal(rawJSON, &report.RawData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw data for %s: %w", runID, err)
	}
	return report, nil
}

// Close releases the connection pool.
func (s *PGReportStore) Close() {
	s.db.Close()
}
