package application

import (
	"context"
	"fmt"
	"math/big"
	"time"

	ledgerdomain "carbonmarket-cloud/internal/ledger/domain"
	market "carbonmarket-cloud/internal/market/domain"
	orderbook "carbonmarket-cloud/internal/orderbook/domain"
)

// Fulfill settles part or all of one sell order. paymentSent must equal
// buyAmount*pricePerUnit/Scale exactly. Effects precede interactions: the
// order and ledger mutate first, then payment is forwarded to the seller; a
// forwarding failure rewinds everything.
func (e *Engine) Fulfill(ctx context.Context, buyer string, orderID uint64, buyAmount, paymentSent *big.Int) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	totalPrice, seller, err := e.validateFill(orderID, buyAmount, paymentSent)
	if err != nil {
		return err
	}
	if !e.gate.Allow(ctx, buyer, totalPrice) {
		return market.ErrProofRejected
	}

	ledgerSnap := e.ledger.Snapshot()
	orderSnap := e.orders.Snapshot()
	vaultSnap := e.vault.Snapshot()
	rollback := func() {
		e.ledger.Restore(ledgerSnap)
		e.orders.Restore(orderSnap)
		e.vault.Restore(vaultSnap)
	}

	if totalPrice.Sign() > 0 {
		if err := e.vault.Debit(buyer, totalPrice); err != nil {
			return err
		}
	}

	// Effects.
	if err := e.orders.Reduce(orderID, buyAmount); err != nil {
		rollback()
		return err
	}

	// Interactions.
	if err := e.ledger.TransferFrom(e.address, seller, buyer, buyAmount); err != nil {
		rollback()
		return err
	}
	if totalPrice.Sign() > 0 {
		if err := e.forwarder.Forward(ctx, seller, totalPrice); err != nil {
			rollback()
			return fmt.Errorf("%w: %v", market.ErrPaymentForwardingFailed, err)
		}
	}

	order, _ := e.orders.Get(orderID)
	e.publish(ctx, OrderFulfilled{
		OrderID:      orderID,
		Seller:       seller,
		Buyer:        buyer,
		Amount:       buyAmount.String(),
		PricePerUnit: order.PricePerUnit.String(),
		TotalPrice:   totalPrice.String(),
		Closed:       order.Fulfilled,
		OccurredAt:   time.Now().UTC(),
	})
	return nil
}

// FulfillBatch settles many orders in one all-or-nothing operation.
// Pass 1 validates every entry and locks prices on a consistent snapshot,
// pass 2 applies order mutations, pass 3 moves credits and payments. A
// failure in pass 2 or 3 rewinds the entire batch.
func (e *Engine) FulfillBatch(ctx context.Context, buyer string, orderIDs []uint64, buyAmounts, expectedPrices []*big.Int, paymentSent *big.Int) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	if len(orderIDs) == 0 {
		return market.ErrEmptyBatch
	}
	if len(buyAmounts) != len(orderIDs) || len(expectedPrices) != len(orderIDs) {
		return market.ErrLengthMismatch
	}

	// Pass 1: validate and price-lock. No state is mutated. Projected
	// remaining amounts and seller balances account for earlier batch
	// entries touching the same order or draining the same seller.
	type fill struct {
		orderID uint64
		seller  string
		amount  *big.Int
		price   *big.Int
		total   *big.Int
	}
	fills := make([]fill, 0, len(orderIDs))
	totalCost := new(big.Int)
	projected := make(map[uint64]*big.Int)
	sellerFunds := make(map[string]*big.Int)
	for i, orderID := range orderIDs {
		order, err := e.orders.Get(orderID)
		if err != nil {
			return err
		}
		if order.Fulfilled {
			return orderbook.ErrOrderClosed
		}
		remaining, seen := projected[orderID]
		if !seen {
			remaining = order.Remaining
		}
		if remaining.Sign() == 0 {
			return orderbook.ErrOrderClosed
		}
		buyAmount := buyAmounts[i]
		if buyAmount == nil || buyAmount.Sign() <= 0 || buyAmount.Cmp(remaining) > 0 {
			return orderbook.ErrInvalidAmount
		}
		if expectedPrices[i] == nil || expectedPrices[i].Cmp(order.PricePerUnit) != 0 {
			return market.ErrPriceChanged
		}
		available, seen := sellerFunds[order.Seller]
		if !seen {
			available = e.ledger.BalanceOf(order.Seller)
		}
		if available.Cmp(buyAmount) < 0 {
			return market.ErrSellerUnderfunded
		}
		sellerFunds[order.Seller] = new(big.Int).Sub(available, buyAmount)
		projected[orderID] = new(big.Int).Sub(remaining, buyAmount)

		total := new(big.Int).Mul(buyAmount, order.PricePerUnit)
		total.Quo(total, ledgerdomain.Scale)
		totalCost.Add(totalCost, total)
		fills = append(fills, fill{
			orderID: orderID,
			seller:  order.Seller,
			amount:  new(big.Int).Set(buyAmount),
			price:   order.PricePerUnit,
			total:   total,
		})
	}
	if paymentSent == nil || paymentSent.Cmp(totalCost) != 0 {
		return market.ErrIncorrectPayment
	}
	if !e.gate.Allow(ctx, buyer, totalCost) {
		return market.ErrProofRejected
	}

	ledgerSnap := e.ledger.Snapshot()
	orderSnap := e.orders.Snapshot()
	vaultSnap := e.vault.Snapshot()
	rollback := func() {
		e.ledger.Restore(ledgerSnap)
		e.orders.Restore(orderSnap)
		e.vault.Restore(vaultSnap)
	}

	if totalCost.Sign() > 0 {
		if err := e.vault.Debit(buyer, totalCost); err != nil {
			return err
		}
	}

	// Pass 2: mutate every order.
	for _, f := range fills {
		if err := e.orders.Reduce(f.orderID, f.amount); err != nil {
			rollback()
			return err
		}
	}

	// Pass 3: move credits and forward payments.
	for _, f := range fills {
		if err := e.ledger.TransferFrom(e.address, f.seller, buyer, f.amount); err != nil {
			rollback()
			return err
		}
		if f.total.Sign() > 0 {
			if err := e.forwarder.Forward(ctx, f.seller, f.total); err != nil {
				rollback()
				return fmt.Errorf("%w: %v", market.ErrPaymentForwardingFailed, err)
			}
		}
	}

	now := time.Now().UTC()
	for _, f := range fills {
		order, _ := e.orders.Get(f.orderID)
		e.publish(ctx, OrderFulfilled{
			OrderID:      f.orderID,
			Seller:       f.seller,
			Buyer:        buyer,
			Amount:       f.amount.String(),
			PricePerUnit: f.price.String(),
			TotalPrice:   f.total.String(),
			Closed:       order.Fulfilled,
			OccurredAt:   now,
		})
	}
	e.publish(ctx, BatchSettled{
		Buyer:      buyer,
		OrderIDs:   append([]uint64(nil), orderIDs...),
		TotalCost:  totalCost.String(),
		OccurredAt: now,
	})
	return nil
}

// validateFill runs the single-order validations and returns the exact total
// price and the seller identity.
func (e *Engine) validateFill(orderID uint64, buyAmount, paymentSent *big.Int) (*big.Int, string, error) {
	order, err := e.orders.Get(orderID)
	if err != nil {
		return nil, "", err
	}
	if order.Fulfilled {
		return nil, "", orderbook.ErrOrderClosed
	}
	if buyAmount == nil || buyAmount.Sign() <= 0 || buyAmount.Cmp(order.Remaining) > 0 {
		return nil, "", orderbook.ErrInvalidAmount
	}

	totalPrice := new(big.Int).Mul(buyAmount, order.PricePerUnit)
	totalPrice.Quo(totalPrice, ledgerdomain.Scale)
	if paymentSent == nil || paymentSent.Cmp(totalPrice) != 0 {
		return nil, "", market.ErrIncorrectPayment
	}
	if e.ledger.BalanceOf(order.Seller).Cmp(buyAmount) < 0 {
		return nil, "", market.ErrSellerUnderfunded
	}
	return totalPrice, order.Seller, nil
}
