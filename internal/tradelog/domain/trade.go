package tradelog

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyTradeID indicates a trade without an id.
var ErrEmptyTradeID = errors.New("tradelog: empty trade id")

// ErrTradeNotFound indicates the trade does not exist.
var ErrTradeNotFound = errors.New("tradelog: trade not found")

// Trade is one settled fill recorded for reporting. Amounts are decimal
// strings of raw 1e18-scaled units.
type Trade struct {
	ID           string
	OrderID      uint64
	Buyer        string
	Seller       string
	Amount       string
	PricePerUnit string
	TotalPrice   string
	Closed       bool
	OccurredAt   time.Time
	CreatedAt    time.Time
}

// Repository persists trades.
type Repository interface {
	Insert(ctx context.Context, trade Trade) error
	List(ctx context.Context, limit int) ([]Trade, error)
}
