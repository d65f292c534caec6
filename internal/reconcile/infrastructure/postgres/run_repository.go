package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Run is one persisted reconciliation run.
type Run struct {
	ID            string
	MarketID      string
	RanAt         time.Time
	Status        string
	Conserved     bool
	TotalSupply   string
	OutboxPending int
	DLQDepth      int
	JournalLag    int
	Findings      []byte
	CreatedAt     time.Time
}

// RunRepository persists reconciliation runs.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository constructs a repository.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Insert stores a run record.
func (r *RunRepository) Insert(ctx context.Context, run Run) error {
	if r == nil || r.db == nil {
		return errors.New("reconcile repo: nil db")
	}
	if run.ID == "" {
		return errors.New("reconcile repo: empty run id")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO reconcile_runs (
	id, market_id, ran_at, status, conserved, total_supply,
	outbox_pending, dlq_depth, journal_lag, findings, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
ON CONFLICT (id) DO NOTHING`,
		run.ID, run.MarketID, run.RanAt.UTC(), run.Status, run.Conserved, run.TotalSupply,
		run.OutboxPending, run.DLQDepth, run.JournalLag, run.Findings, time.Now().UTC(),
	)
	return err
}

// Latest returns the most recent run for a market, or sql.ErrNoRows.
func (r *RunRepository) Latest(ctx context.Context, marketID string) (Run, error) {
	if r == nil || r.db == nil {
		return Run{}, errors.New("reconcile repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, market_id, ran_at, status, conserved, total_supply,
	outbox_pending, dlq_depth, journal_lag, findings, created_at
FROM reconcile_runs
WHERE market_id = $1
ORDER BY ran_at DESC
LIMIT 1`, marketID)

	var run Run
	if err := row.Scan(
		&run.ID, &run.MarketID, &run.RanAt, &run.Status, &run.Conserved, &run.TotalSupply,
		&run.OutboxPending, &run.DLQDepth, &run.JournalLag, &run.Findings, &run.CreatedAt,
	); err != nil {
		return Run{}, err
	}
	run.RanAt = run.RanAt.UTC()
	run.CreatedAt = run.CreatedAt.UTC()
	return run, nil
}
