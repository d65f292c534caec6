package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	tradelog "carbonmarket-cloud/internal/tradelog/domain"
)

// TradeRepository is an in-memory repository for demo/testing.
type TradeRepository struct {
	mu     sync.RWMutex
	trades map[string]tradelog.Trade
}

// NewTradeRepository constructs a repository.
func NewTradeRepository() *TradeRepository {
	return &TradeRepository{trades: make(map[string]tradelog.Trade)}
}

// Insert stores one trade. Duplicate ids are ignored.
func (r *TradeRepository) Insert(ctx context.Context, trade tradelog.Trade) error {
	_ = ctx
	if trade.ID == "" {
		return tradelog.ErrEmptyTradeID
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.trades[trade.ID]; exists {
		return nil
	}
	r.trades[trade.ID] = trade
	return nil
}

// List returns the most recent trades.
func (r *TradeRepository) List(ctx context.Context, limit int) ([]tradelog.Trade, error) {
	_ = ctx
	if limit <= 0 {
		limit = 100
	}
	r.mu.RLock()
	result := make([]tradelog.Trade, 0, len(r.trades))
	for _, trade := range r.trades {
		result = append(result, trade)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].OccurredAt.Equal(result[j].OccurredAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].OccurredAt.After(result[j].OccurredAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
