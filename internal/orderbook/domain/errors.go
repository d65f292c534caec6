package orderbook

import "errors"

var (
	// ErrEmptySeller is returned when the seller identity is empty.
	ErrEmptySeller = errors.New("orderbook: empty seller")
	// ErrInvalidAmount is returned when an order or fill amount is not positive.
	ErrInvalidAmount = errors.New("orderbook: invalid amount")
	// ErrInvalidPrice is returned when the price per unit is nil or negative.
	ErrInvalidPrice = errors.New("orderbook: invalid price")
	// ErrPriceBelowFloor is returned when an order is placed below the floor price.
	ErrPriceBelowFloor = errors.New("orderbook: price below floor")
	// ErrInvalidOrder is returned when an order id is out of range.
	ErrInvalidOrder = errors.New("orderbook: invalid order")
	// ErrOrderClosed is returned when the order has already been fulfilled.
	ErrOrderClosed = errors.New("orderbook: order closed")
)
