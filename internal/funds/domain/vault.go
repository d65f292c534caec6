package funds

import (
	"errors"
	"math/big"
)

var (
	// ErrEmptyAccount is returned when the account identity is empty.
	ErrEmptyAccount = errors.New("funds: empty account")
	// ErrInvalidAmount is returned when an amount is nil, negative or zero.
	ErrInvalidAmount = errors.New("funds: invalid amount")
	// ErrInsufficientFunds is returned when a debit exceeds the account balance.
	ErrInsufficientFunds = errors.New("funds: insufficient funds")
)

// Vault holds payment-currency balances (smallest unit). It is the payment
// substrate for trades: buyers fund their account, the settlement engine
// debits the buyer and forwards to sellers.
type Vault struct {
	balances map[string]*big.Int
}

// NewVault constructs an empty vault.
func NewVault() *Vault {
	return &Vault{balances: make(map[string]*big.Int)}
}

// BalanceOf returns the payment balance of an account.
func (v *Vault) BalanceOf(account string) *big.Int {
	balance := v.balances[account]
	if balance == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(balance)
}

// Deposit credits an account with payment funds.
func (v *Vault) Deposit(account string, amount *big.Int) error {
	return v.Credit(account, amount)
}

// Credit adds funds to an account.
func (v *Vault) Credit(account string, amount *big.Int) error {
	if account == "" {
		return ErrEmptyAccount
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance := v.balances[account]
	if balance == nil {
		balance = new(big.Int)
		v.balances[account] = balance
	}
	balance.Add(balance, amount)
	return nil
}

// Debit removes funds from an account.
func (v *Vault) Debit(account string, amount *big.Int) error {
	if account == "" {
		return ErrEmptyAccount
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance := v.balances[account]
	if balance == nil || balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	balance.Sub(balance, amount)
	return nil
}

// Snapshot captures a deep copy of all vault balances.
type Snapshot struct {
	balances map[string]*big.Int
}

// Snapshot returns a detached copy of the vault state.
func (v *Vault) Snapshot() *Snapshot {
	snap := &Snapshot{balances: make(map[string]*big.Int, len(v.balances))}
	for account, balance := range v.balances {
		snap.balances[account] = new(big.Int).Set(balance)
	}
	return snap
}

// Restore replaces the vault state with a previously captured snapshot.
func (v *Vault) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	v.balances = make(map[string]*big.Int, len(snap.balances))
	for account, balance := range snap.balances {
		v.balances[account] = new(big.Int).Set(balance)
	}
}
