package application

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"carbonmarket-cloud/internal/observability/metrics"
	pg "carbonmarket-cloud/internal/reconcile/infrastructure/postgres"
	"carbonmarket-cloud/internal/reconcile/notify"
)

// Run statuses.
const (
	StatusHealthy = "healthy"
	StatusDrift   = "drift"
)

// MarketState exposes the live market invariants the checker verifies.
type MarketState interface {
	Conserved() bool
	TotalSupply() *big.Int
}

// RunRecorder persists reconciliation runs.
type RunRecorder interface {
	Insert(ctx context.Context, run pg.Run) error
}

// Thresholds bound the durable-pipeline backlog before a run counts as drift.
type Thresholds struct {
	MaxOutboxPending int
	MaxDLQDepth      int
	MaxJournalLag    int
}

// Deps carries the checker's collaborators.
type Deps struct {
	Market   MarketState
	DB       *sql.DB
	Runs     RunRecorder
	Notifier notify.Notifier
	Logger   *log.Logger
	MarketID string
	// FulfilledEventType is the envelope type of the order fulfillment
	// event, used to measure trade journal lag against the outbox.
	FulfilledEventType string
	Thresholds         Thresholds
}

// Checker periodically verifies market invariants against the durable side
// of the system: ledger conservation, outbox backlog, dead letters, and the
// trade journal's lag behind dispatched fulfillment events.
type Checker struct {
	deps Deps
}

// NewChecker constructs a checker.
func NewChecker(deps Deps) (*Checker, error) {
	if deps.Market == nil {
		return nil, errors.New("reconcile: nil market state")
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return &Checker{deps: deps}, nil
}

// Result summarizes one reconciliation run.
type Result struct {
	RunID         string
	Status        string
	Conserved     bool
	TotalSupply   string
	OutboxPending int
	DLQDepth      int
	JournalLag    int
	Findings      []string
}

// Run performs one reconciliation pass, persists the outcome and alerts on
// drift. A failing alert or insert never fails the run itself.
func (c *Checker) Run(ctx context.Context) (Result, error) {
	started := time.Now()

	result := Result{
		RunID:       newRunID(),
		Conserved:   c.deps.Market.Conserved(),
		TotalSupply: c.deps.Market.TotalSupply().String(),
	}
	if !result.Conserved {
		result.Findings = append(result.Findings, "credit balances no longer sum to total supply")
	}

	if c.deps.DB != nil {
		if err := c.collectCounts(ctx, &result); err != nil {
			metrics.ObserveReconcileRun(metrics.ResultError, time.Since(started))
			return Result{}, err
		}
	}

	t := c.deps.Thresholds
	if t.MaxOutboxPending > 0 && result.OutboxPending > t.MaxOutboxPending {
		result.Findings = append(result.Findings, fmt.Sprintf("outbox backlog %d exceeds %d", result.OutboxPending, t.MaxOutboxPending))
	}
	if result.DLQDepth > t.MaxDLQDepth {
		result.Findings = append(result.Findings, fmt.Sprintf("dead letter queue depth %d exceeds %d", result.DLQDepth, t.MaxDLQDepth))
	}
	if t.MaxJournalLag > 0 && result.JournalLag > t.MaxJournalLag {
		result.Findings = append(result.Findings, fmt.Sprintf("trade journal lags %d fulfillment events", result.JournalLag))
	}

	result.Status = StatusHealthy
	if len(result.Findings) > 0 {
		result.Status = StatusDrift
	}
	metrics.ObserveReconcileRun(result.Status, time.Since(started))

	c.persist(ctx, result)
	c.alert(ctx, result)
	return result, nil
}

func (c *Checker) collectCounts(ctx context.Context, result *Result) error {
	var err error
	result.OutboxPending, err = c.count(ctx, `SELECT COUNT(*) FROM event_outbox WHERE status = 'pending'`)
	if err != nil {
		return err
	}
	result.DLQDepth, err = c.count(ctx, `SELECT COUNT(*) FROM dead_letter_events`)
	if err != nil {
		return err
	}
	if c.deps.FulfilledEventType == "" {
		return nil
	}
	var sent int
	row := c.deps.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_outbox WHERE event_type = $1 AND status = 'sent'`,
		c.deps.FulfilledEventType)
	if err := row.Scan(&sent); err != nil {
		return err
	}
	journaled, err := c.count(ctx, `SELECT COUNT(*) FROM trade_log`)
	if err != nil {
		return err
	}
	if lag := sent - journaled; lag > 0 {
		result.JournalLag = lag
	}
	return nil
}

func (c *Checker) count(ctx context.Context, query string) (int, error) {
	var value int
	if err := c.deps.DB.QueryRowContext(ctx, query).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}

func (c *Checker) persist(ctx context.Context, result Result) {
	if c.deps.Runs == nil {
		return
	}
	findings, _ := json.Marshal(result.Findings)
	err := c.deps.Runs.Insert(ctx, pg.Run{
		ID:            result.RunID,
		MarketID:      c.deps.MarketID,
		RanAt:         time.Now().UTC(),
		Status:        result.Status,
		Conserved:     result.Conserved,
		TotalSupply:   result.TotalSupply,
		OutboxPending: result.OutboxPending,
		DLQDepth:      result.DLQDepth,
		JournalLag:    result.JournalLag,
		Findings:      findings,
	})
	if err != nil {
		c.deps.Logger.Printf("reconcile: persist run %s: %v", result.RunID, err)
	}
}

func (c *Checker) alert(ctx context.Context, result Result) {
	if c.deps.Notifier == nil || len(result.Findings) == 0 {
		return
	}
	err := c.deps.Notifier.Notify(ctx, notify.AlertMessage{
		MarketID:          c.deps.MarketID,
		RunID:             result.RunID,
		Findings:          result.Findings,
		TotalSupply:       result.TotalSupply,
		RecommendedAction: "inspect the outbox and trade journal before resuming settlement",
	})
	if err != nil {
		c.deps.Logger.Printf("reconcile: alert for run %s: %v", result.RunID, err)
		return
	}
	metrics.IncReconcileAlert()
}

func newRunID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return "run-" + hex.EncodeToString(buf)
}
