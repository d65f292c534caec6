package application

import (
	"context"
	"math/big"
	"time"

	accesscontrol "carbonmarket-cloud/internal/accesscontrol/domain"
	market "carbonmarket-cloud/internal/market/domain"
)

// Approve authorizes the engine to move up to amount from the caller's
// balance at settlement time. Tokens stay in the caller's account.
func (e *Engine) Approve(ctx context.Context, caller string, amount *big.Int) error {
	if _, err := e.enter(ctx); err != nil {
		return err
	}
	defer e.leave()
	return e.ledger.Approve(caller, e.address, amount)
}

// Transfer moves credits directly between holders.
func (e *Engine) Transfer(ctx context.Context, caller, to string, amount *big.Int) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	if err := e.ledger.Transfer(caller, to, amount); err != nil {
		return err
	}
	e.publish(ctx, CreditsTransferred{
		From:       caller,
		To:         to,
		Amount:     amount.String(),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// SelfBurn retires credits from the caller's own balance.
func (e *Engine) SelfBurn(ctx context.Context, caller string, amount *big.Int) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	if err := e.ledger.Burn(caller, amount); err != nil {
		return err
	}
	e.publish(ctx, CreditsBurned{
		Account:    caller,
		Amount:     amount.String(),
		Initiator:  caller,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// AdminBurn destroys credits from any account for compliance reasons.
// Administrator only; the reason is mandatory and carried on the event.
func (e *Engine) AdminBurn(ctx context.Context, caller, account string, amount *big.Int, reason string) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	if !e.registry.IsAdmin(caller) {
		return accesscontrol.ErrUnauthorized
	}
	if reason == "" {
		return market.ErrEmptyReason
	}
	if err := e.ledger.Burn(account, amount); err != nil {
		return err
	}
	e.publish(ctx, CreditsBurned{
		Account:    account,
		Amount:     amount.String(),
		Reason:     reason,
		Initiator:  caller,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// DepositFunds credits the caller's payment vault account. This is the
// on-ramp for the payment leg; it is not part of the trade path.
func (e *Engine) DepositFunds(ctx context.Context, caller string, amount *big.Int) error {
	if _, err := e.enter(ctx); err != nil {
		return err
	}
	defer e.leave()
	return e.vault.Deposit(caller, amount)
}
