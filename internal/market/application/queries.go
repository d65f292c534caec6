package application

import (
	"math/big"

	orderbook "carbonmarket-cloud/internal/orderbook/domain"
	params "carbonmarket-cloud/internal/params/domain"
)

// BalanceOf returns the credit balance of an account.
func (e *Engine) BalanceOf(account string) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.BalanceOf(account)
}

// Allowance returns how much the engine may move out of owner's balance.
func (e *Engine) Allowance(owner string) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Allowance(owner, e.address)
}

// TotalSupply returns credits in circulation.
func (e *Engine) TotalSupply() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.TotalSupply()
}

// Conserved reports whether credit balances still sum to minted minus burned.
func (e *Engine) Conserved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Conserved()
}

// VaultBalanceOf returns the payment balance of an account.
func (e *Engine) VaultBalanceOf(account string) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vault.BalanceOf(account)
}

// Order returns a copy of one sell order.
func (e *Engine) Order(id uint64) (orderbook.SellOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orders.Get(id)
}

// Orders returns copies of all sell orders ever placed.
func (e *Engine) Orders() []orderbook.SellOrder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orders.List()
}

// Params returns the current system parameters.
func (e *Engine) Params() params.Parameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.View()
}

// DeviceAllowed reports whether a device is on the attestation allow-list.
func (e *Engine) DeviceAllowed(device string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.IsAllowed(device)
}

// MeterRemaining returns the claimable energy left for (producer, bucket).
func (e *Engine) MeterRemaining(producer string, bucket uint64) (*big.Int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meters.Remaining(producer, bucket)
}
