package interfaces

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"carbonmarket-cloud/internal/eventing"
	"carbonmarket-cloud/internal/eventing/eventbus"
	app "carbonmarket-cloud/internal/market/application"
	"carbonmarket-cloud/internal/observability/metrics"
	tradelog "carbonmarket-cloud/internal/tradelog/domain"
)

const consumerName = "tradelog-order-fulfilled"

// OrderFulfilledConsumer records settled fills into the trade log.
type OrderFulfilledConsumer struct {
	repo   tradelog.Repository
	logger *log.Logger
}

// NewOrderFulfilledConsumer constructs a consumer.
func NewOrderFulfilledConsumer(repo tradelog.Repository, logger *log.Logger) (*OrderFulfilledConsumer, error) {
	if repo == nil {
		return nil, errors.New("tradelog consumer: nil repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OrderFulfilledConsumer{repo: repo, logger: logger}, nil
}

// Register subscribes the consumer on the bus with idempotent handling.
func (c *OrderFulfilledConsumer) Register(bus eventbus.EventBus, processed eventing.ProcessedStore) {
	eventing.Subscribe(bus, eventbus.EventTypeOf[app.OrderFulfilled](), consumerName, c.handle, processed)
}

func (c *OrderFulfilledConsumer) handle(ctx context.Context, event any) error {
	fulfilled, ok := event.(app.OrderFulfilled)
	if !ok {
		return fmt.Errorf("tradelog consumer: unexpected event %T", event)
	}

	trade := tradelog.Trade{
		OrderID:      fulfilled.OrderID,
		Buyer:        fulfilled.Buyer,
		Seller:       fulfilled.Seller,
		Amount:       fulfilled.Amount,
		PricePerUnit: fulfilled.PricePerUnit,
		TotalPrice:   fulfilled.TotalPrice,
		Closed:       fulfilled.Closed,
		OccurredAt:   fulfilled.OccurredAt,
	}
	if env, ok := eventing.EnvelopeFromContext(ctx); ok && env.EventID != "" {
		trade.ID = env.EventID
		metrics.ObserveConsumerLag(consumerName, time.Since(env.OccurredAt))
	} else {
		trade.ID = eventing.NewEventID()
	}

	if err := c.repo.Insert(ctx, trade); err != nil {
		c.logger.Printf("tradelog: insert trade %s: %v", trade.ID, err)
		return err
	}
	return nil
}
