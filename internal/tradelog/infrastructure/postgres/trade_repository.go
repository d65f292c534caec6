package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	tradelog "carbonmarket-cloud/internal/tradelog/domain"
)

const defaultTradeTable = "trade_log"

// TradeRepository persists trades in Postgres.
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository constructs a repository.
func NewTradeRepository(db *sql.DB) *TradeRepository {
	if db == nil {
		return nil
	}
	return &TradeRepository{db: db}
}

// Insert writes one trade. Duplicate ids are ignored so redelivered events
// stay harmless.
func (r *TradeRepository) Insert(ctx context.Context, trade tradelog.Trade) error {
	if r == nil || r.db == nil {
		return errors.New("trade repo: nil db")
	}
	if trade.ID == "" {
		return tradelog.ErrEmptyTradeID
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO trade_log (
	id, order_id, buyer, seller, amount, price_per_unit, total_price, closed,
	occurred_at, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
ON CONFLICT (id)
DO NOTHING`,
		trade.ID, trade.OrderID, trade.Buyer, trade.Seller, trade.Amount,
		trade.PricePerUnit, trade.TotalPrice, trade.Closed, trade.OccurredAt, trade.CreatedAt)
	return err
}

// List returns the most recent trades.
func (r *TradeRepository) List(ctx context.Context, limit int) ([]tradelog.Trade, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("trade repo: nil db")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, order_id, buyer, seller, amount, price_per_unit, total_price, closed,
	occurred_at, created_at
FROM trade_log
ORDER BY occurred_at DESC, id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []tradelog.Trade
	for rows.Next() {
		var trade tradelog.Trade
		if err := rows.Scan(
			&trade.ID, &trade.OrderID, &trade.Buyer, &trade.Seller, &trade.Amount,
			&trade.PricePerUnit, &trade.TotalPrice, &trade.Closed, &trade.OccurredAt, &trade.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
