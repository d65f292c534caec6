package application

import (
	"context"
	"math/big"
	"time"

	accesscontrol "carbonmarket-cloud/internal/accesscontrol/domain"
)

// SetDevice flips a device's allow-list flag. Administrator only.
func (e *Engine) SetDevice(ctx context.Context, caller, device string, allowed bool) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	if err := e.registry.SetDevice(caller, device, allowed); err != nil {
		return err
	}
	e.publish(ctx, DeviceAllowListed{Device: device, Allowed: allowed, OccurredAt: time.Now().UTC()})
	return nil
}

// IsAllowedDevice reports whether a device may attest production.
func (e *Engine) IsAllowedDevice(device string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.IsAllowed(device)
}

// SetConversionRatio updates the energy-to-credit conversion ratio.
func (e *Engine) SetConversionRatio(ctx context.Context, caller string, ratio *big.Int) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	if err := e.params.SetConversionRatio(caller, ratio); err != nil {
		return err
	}
	e.publish(ctx, ParameterUpdated{Name: "conversion_ratio", Value: ratio.String(), OccurredAt: time.Now().UTC()})
	return nil
}

// SetFloorPrice updates the minimum price per credit.
func (e *Engine) SetFloorPrice(ctx context.Context, caller string, price *big.Int) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	if err := e.params.SetFloorPrice(caller, price); err != nil {
		return err
	}
	e.publish(ctx, ParameterUpdated{Name: "floor_price", Value: price.String(), OccurredAt: time.Now().UTC()})
	return nil
}

// SetBeneficiary updates the protocol beneficiary address.
func (e *Engine) SetBeneficiary(ctx context.Context, caller, beneficiary string) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	if err := e.params.SetBeneficiary(caller, beneficiary); err != nil {
		return err
	}
	e.publish(ctx, ParameterUpdated{Name: "beneficiary", Value: beneficiary, OccurredAt: time.Now().UTC()})
	return nil
}

// AdminMint issues credits outside the attestation path. Administrator only.
func (e *Engine) AdminMint(ctx context.Context, caller, account string, amount *big.Int) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	if !e.registry.IsAdmin(caller) {
		return accesscontrol.ErrUnauthorized
	}
	if err := e.ledger.Mint(account, amount); err != nil {
		return err
	}
	e.publish(ctx, CreditsMinted{
		Account:    account,
		Credits:    amount.String(),
		Source:     "admin",
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
