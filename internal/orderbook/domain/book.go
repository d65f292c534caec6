package orderbook

import "math/big"

// SellOrder is one outstanding sell offer. Seller and price are immutable
// after placement; only Remaining and Fulfilled change, and only through the
// book's Reduce path driven by the settlement engine.
type SellOrder struct {
	ID           uint64
	Seller       string
	Remaining    *big.Int
	PricePerUnit *big.Int
	Fulfilled    bool
}

// Book is the append-only arena of sell orders keyed by dense sequential
// ids. Orders are never deleted, only marked fulfilled.
type Book struct {
	orders []*SellOrder
}

// NewBook constructs an empty order book.
func NewBook() *Book {
	return &Book{}
}

// Append adds a new open order and returns its id.
func (b *Book) Append(seller string, amount, pricePerUnit *big.Int) (uint64, error) {
	if seller == "" {
		return 0, ErrEmptySeller
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if pricePerUnit == nil || pricePerUnit.Sign() < 0 {
		return 0, ErrInvalidPrice
	}
	order := &SellOrder{
		ID:           uint64(len(b.orders)),
		Seller:       seller,
		Remaining:    new(big.Int).Set(amount),
		PricePerUnit: new(big.Int).Set(pricePerUnit),
	}
	b.orders = append(b.orders, order)
	return order.ID, nil
}

// Get returns a detached copy of the order.
func (b *Book) Get(id uint64) (SellOrder, error) {
	if id >= uint64(len(b.orders)) {
		return SellOrder{}, ErrInvalidOrder
	}
	return b.orders[id].clone(), nil
}

// Reduce decrements an order's remaining amount, marking it fulfilled when
// the remaining amount reaches zero.
func (b *Book) Reduce(id uint64, amount *big.Int) error {
	if id >= uint64(len(b.orders)) {
		return ErrInvalidOrder
	}
	order := b.orders[id]
	if order.Fulfilled {
		return ErrOrderClosed
	}
	if amount == nil || amount.Sign() <= 0 || amount.Cmp(order.Remaining) > 0 {
		return ErrInvalidAmount
	}
	order.Remaining.Sub(order.Remaining, amount)
	if order.Remaining.Sign() == 0 {
		order.Fulfilled = true
	}
	return nil
}

// Len returns the number of orders ever placed.
func (b *Book) Len() int { return len(b.orders) }

// List returns detached copies of all orders.
func (b *Book) List() []SellOrder {
	orders := make([]SellOrder, len(b.orders))
	for i, order := range b.orders {
		orders[i] = order.clone()
	}
	return orders
}

func (o *SellOrder) clone() SellOrder {
	return SellOrder{
		ID:           o.ID,
		Seller:       o.Seller,
		Remaining:    new(big.Int).Set(o.Remaining),
		PricePerUnit: new(big.Int).Set(o.PricePerUnit),
		Fulfilled:    o.Fulfilled,
	}
}

// Snapshot captures the mutable portion of every order.
type Snapshot struct {
	count     int
	remaining []*big.Int
	fulfilled []bool
}

// Snapshot returns a copy of the book's mutable state. The arena is
// append-only, so capturing count plus per-order remaining/fulfilled is a
// complete representation.
func (b *Book) Snapshot() *Snapshot {
	snap := &Snapshot{
		count:     len(b.orders),
		remaining: make([]*big.Int, len(b.orders)),
		fulfilled: make([]bool, len(b.orders)),
	}
	for i, order := range b.orders {
		snap.remaining[i] = new(big.Int).Set(order.Remaining)
		snap.fulfilled[i] = order.Fulfilled
	}
	return snap
}

// Restore rewinds the book to a previously captured snapshot.
func (b *Book) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	b.orders = b.orders[:snap.count]
	for i, order := range b.orders {
		order.Remaining.Set(snap.remaining[i])
		order.Fulfilled = snap.fulfilled[i]
	}
}
