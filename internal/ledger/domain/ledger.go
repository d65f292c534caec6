package ledger

import "math/big"

// Ledger is the fungible credit balance store. It exclusively owns balance
// and allowance state; callers never mutate returned values in place, every
// accessor hands out a detached copy. The ledger itself carries no lock:
// serialization is the market engine's responsibility.
type Ledger struct {
	balances   map[string]*big.Int
	allowances map[string]map[string]*big.Int
	minted     *big.Int
	burned     *big.Int
}

// New constructs an empty ledger.
func New() *Ledger {
	return &Ledger{
		balances:   make(map[string]*big.Int),
		allowances: make(map[string]map[string]*big.Int),
		minted:     new(big.Int),
		burned:     new(big.Int),
	}
}

// BalanceOf returns the balance of an account.
func (l *Ledger) BalanceOf(account string) *big.Int {
	return cloneAmount(l.balances[account])
}

// TotalSupply returns cumulative minted minus cumulative burned.
func (l *Ledger) TotalSupply() *big.Int {
	return new(big.Int).Sub(l.minted, l.burned)
}

// Minted returns the cumulative minted amount.
func (l *Ledger) Minted() *big.Int { return cloneAmount(l.minted) }

// Burned returns the cumulative burned amount.
func (l *Ledger) Burned() *big.Int { return cloneAmount(l.burned) }

// Allowance returns how much spender may move out of owner's balance.
func (l *Ledger) Allowance(owner, spender string) *big.Int {
	return cloneAmount(l.allowances[owner][spender])
}

// Mint credits an account and increases total supply.
func (l *Ledger) Mint(to string, amount *big.Int) error {
	if to == "" {
		return ErrInvalidRecipient
	}
	if !ValidAmount(amount) {
		return ErrInvalidAmount
	}
	l.credit(to, amount)
	l.minted.Add(l.minted, amount)
	return nil
}

// Burn debits an account and decreases total supply.
func (l *Ledger) Burn(from string, amount *big.Int) error {
	if from == "" {
		return ErrInvalidRecipient
	}
	if !ValidAmount(amount) {
		return ErrInvalidAmount
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.burned.Add(l.burned, amount)
	return nil
}

// Transfer moves amount between two accounts.
func (l *Ledger) Transfer(from, to string, amount *big.Int) error {
	if from == "" || to == "" {
		return ErrInvalidRecipient
	}
	if !ValidAmount(amount) {
		return ErrInvalidAmount
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.credit(to, amount)
	return nil
}

// Approve sets the amount spender may move out of owner's balance.
// A zero amount resets the allowance.
func (l *Ledger) Approve(owner, spender string, amount *big.Int) error {
	if owner == "" || spender == "" {
		return ErrInvalidRecipient
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	byOwner := l.allowances[owner]
	if byOwner == nil {
		byOwner = make(map[string]*big.Int)
		l.allowances[owner] = byOwner
	}
	byOwner[spender] = cloneAmount(amount)
	return nil
}

// TransferFrom moves amount between accounts on behalf of the owner,
// consuming the spender's allowance.
func (l *Ledger) TransferFrom(spender, from, to string, amount *big.Int) error {
	if spender == "" || from == "" || to == "" {
		return ErrInvalidRecipient
	}
	if !ValidAmount(amount) {
		return ErrInvalidAmount
	}
	allowance := l.allowances[from][spender]
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.credit(to, amount)
	allowance.Sub(allowance, amount)
	return nil
}

// Conserved reports whether the sum of all balances equals minted minus burned.
func (l *Ledger) Conserved() bool {
	sum := new(big.Int)
	for _, balance := range l.balances {
		sum.Add(sum, balance)
	}
	return sum.Cmp(l.TotalSupply()) == 0
}

func (l *Ledger) credit(account string, amount *big.Int) {
	balance := l.balances[account]
	if balance == nil {
		balance = new(big.Int)
		l.balances[account] = balance
	}
	balance.Add(balance, amount)
}

func (l *Ledger) debit(account string, amount *big.Int) error {
	balance := l.balances[account]
	if balance == nil || balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	balance.Sub(balance, amount)
	return nil
}

// Snapshot captures a deep copy of all ledger state.
type Snapshot struct {
	balances   map[string]*big.Int
	allowances map[string]map[string]*big.Int
	minted     *big.Int
	burned     *big.Int
}

// Snapshot returns a detached copy of the full ledger state.
func (l *Ledger) Snapshot() *Snapshot {
	snap := &Snapshot{
		balances:   make(map[string]*big.Int, len(l.balances)),
		allowances: make(map[string]map[string]*big.Int, len(l.allowances)),
		minted:     cloneAmount(l.minted),
		burned:     cloneAmount(l.burned),
	}
	for account, balance := range l.balances {
		snap.balances[account] = cloneAmount(balance)
	}
	for owner, byOwner := range l.allowances {
		copied := make(map[string]*big.Int, len(byOwner))
		for spender, allowance := range byOwner {
			copied[spender] = cloneAmount(allowance)
		}
		snap.allowances[owner] = copied
	}
	return snap
}

// Restore replaces the ledger state with a previously captured snapshot.
func (l *Ledger) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	l.balances = make(map[string]*big.Int, len(snap.balances))
	for account, balance := range snap.balances {
		l.balances[account] = cloneAmount(balance)
	}
	l.allowances = make(map[string]map[string]*big.Int, len(snap.allowances))
	for owner, byOwner := range snap.allowances {
		copied := make(map[string]*big.Int, len(byOwner))
		for spender, allowance := range byOwner {
			copied[spender] = cloneAmount(allowance)
		}
		l.allowances[owner] = copied
	}
	l.minted = cloneAmount(snap.minted)
	l.burned = cloneAmount(snap.burned)
}
