package application

import "time"

// Amounts in events are decimal strings of the underlying integer values so
// payloads survive JSON round-trips without precision loss.

// DeviceAllowListed is emitted when the admin flips a device's allow-list flag.
type DeviceAllowListed struct {
	Device     string    `json:"device"`
	Allowed    bool      `json:"allowed"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ParameterUpdated is emitted when a system parameter changes.
type ParameterUpdated struct {
	Name       string    `json:"name"`
	Value      string    `json:"value"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProductionAttested is emitted when a device records a production reading.
type ProductionAttested struct {
	Producer   string    `json:"producer"`
	Device     string    `json:"device"`
	Bucket     uint64    `json:"bucket"`
	EnergyKWh  string    `json:"energy_kwh"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CreditsMinted is emitted when credits enter circulation.
type CreditsMinted struct {
	Account    string    `json:"account"`
	Credits    string    `json:"credits"`
	Source     string    `json:"source"` // "claim" or "admin"
	Bucket     uint64    `json:"bucket,omitempty"`
	EnergyKWh  string    `json:"energy_kwh,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CreditsBurned is emitted when credits leave circulation.
type CreditsBurned struct {
	Account    string    `json:"account"`
	Amount     string    `json:"amount"`
	Reason     string    `json:"reason,omitempty"`
	Initiator  string    `json:"initiator"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CreditsTransferred is emitted on a direct holder-to-holder transfer.
type CreditsTransferred struct {
	From       string    `json:"from"`
	To         string    `json:"to"`
	Amount     string    `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SellOrderPlaced is emitted when a sell order enters the book.
type SellOrderPlaced struct {
	OrderID      uint64    `json:"order_id"`
	Seller       string    `json:"seller"`
	Amount       string    `json:"amount"`
	PricePerUnit string    `json:"price_per_unit"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// OrderFulfilled is emitted once per settled order.
type OrderFulfilled struct {
	OrderID      uint64    `json:"order_id"`
	Seller       string    `json:"seller"`
	Buyer        string    `json:"buyer"`
	Amount       string    `json:"amount"`
	PricePerUnit string    `json:"price_per_unit"`
	TotalPrice   string    `json:"total_price"`
	Closed       bool      `json:"closed"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// BatchSettled is the aggregate event for one batch fulfillment.
type BatchSettled struct {
	Buyer      string    `json:"buyer"`
	OrderIDs   []uint64  `json:"order_ids"`
	TotalCost  string    `json:"total_cost"`
	OccurredAt time.Time `json:"occurred_at"`
}
