package database

import (
	"context"
	"fmt"
	"time"

	"github.com/selivandex/stockpulse/internal/universe"
	"github.com/selivandex/stockpulse/pkg/models"
)

// HistoryRepository persists per-run analysis rows for later inspection.
// One signal_runs row per refresh cycle, one signal_results row per symbol.
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates new run history repository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// RecordRun inserts the run header and every symbol result in one transaction
func (r *HistoryRepository) RecordRun(ctx context.Context, results []models.SignalResult, startedAt, finishedAt time.Time) error {
	tx, err := r.db.DB().BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	errorCount := 0
	for i := range results {
		if results[i].Error != "" {
			errorCount++
		}
	}

	var runID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO signal_runs (started_at, finished_at, symbols, errors)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, startedAt, finishedAt, len(results), errorCount).Scan(&runID)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO signal_results (
			run_id, symbol, market, price, signal, confidence,
			technical_score, sentiment_score, risk_score, position_size, error
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for i := range results {
		res := &results[i]
		_, err := stmt.ExecContext(ctx,
			runID,
			res.Symbol,
			string(universe.MarketOf(res.Symbol)),
			res.Price,
			string(res.Signal),
			res.Confidence,
			res.TechnicalScore,
			res.SentimentScore,
			res.RiskScore,
			res.PositionSize,
			res.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", res.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// LastRuns returns headers of the most recent runs, newest first
func (r *HistoryRepository) LastRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := r.db.DB().SelectContext(ctx, &runs, `
		SELECT id, started_at, finished_at, symbols, errors
		FROM signal_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select runs: %w", err)
	}
	return runs, nil
}

// RunRecord is one signal_runs row
type RunRecord struct {
	ID         int64     `db:"id"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	Symbols    int       `db:"symbols"`
	Errors     int       `db:"errors"`
}
