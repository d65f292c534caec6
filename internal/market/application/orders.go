package application

import (
	"context"
	"math/big"
	"time"

	ledgerdomain "carbonmarket-cloud/internal/ledger/domain"
	orderbook "carbonmarket-cloud/internal/orderbook/domain"
)

// PlaceSellOrder appends a new sell order for the caller. The design is
// escrow-less: the caller's balance and allowance are spot-checked here but
// never locked, so both must still be sufficient at settlement time.
func (e *Engine) PlaceSellOrder(ctx context.Context, caller string, amount, pricePerUnit *big.Int) (uint64, error) {
	ctx, err := e.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer e.leave()

	if pricePerUnit == nil || pricePerUnit.Sign() < 0 {
		return 0, orderbook.ErrInvalidPrice
	}
	if pricePerUnit.Cmp(e.params.FloorPrice()) < 0 {
		return 0, orderbook.ErrPriceBelowFloor
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, orderbook.ErrInvalidAmount
	}
	if e.ledger.BalanceOf(caller).Cmp(amount) < 0 {
		return 0, ledgerdomain.ErrInsufficientBalance
	}
	if e.ledger.Allowance(caller, e.address).Cmp(amount) < 0 {
		return 0, ledgerdomain.ErrInsufficientAllowance
	}

	id, err := e.orders.Append(caller, amount, pricePerUnit)
	if err != nil {
		return 0, err
	}
	e.publish(ctx, SellOrderPlaced{
		OrderID:      id,
		Seller:       caller,
		Amount:       amount.String(),
		PricePerUnit: pricePerUnit.String(),
		OccurredAt:   time.Now().UTC(),
	})
	return id, nil
}
