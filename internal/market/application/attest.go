package application

import (
	"context"
	"math/big"
	"time"

	accesscontrol "carbonmarket-cloud/internal/accesscontrol/domain"
	attestation "carbonmarket-cloud/internal/attestation/domain"
	ledgerdomain "carbonmarket-cloud/internal/ledger/domain"
	market "carbonmarket-cloud/internal/market/domain"
)

// RecordAttestation stores one production reading for (producer, bucket).
// The caller must be an allow-listed device; each bucket accepts a single
// irreversible write.
func (e *Engine) RecordAttestation(ctx context.Context, caller, producer string, bucket uint64, energy *big.Int) error {
	ctx, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer e.leave()

	if !e.registry.IsAllowed(caller) {
		return accesscontrol.ErrUnauthorized
	}
	if err := e.meters.Record(producer, bucket, energy); err != nil {
		return err
	}
	e.publish(ctx, ProductionAttested{
		Producer:   producer,
		Device:     caller,
		Bucket:     bucket,
		EnergyKWh:  energy.String(),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// ClaimCredits converts part of an attested reading into minted credits:
// credits = energy * Scale / conversionRatio, truncating. The meter record is
// decremented only when the truncated result is non-zero, so a dust claim
// cannot burn attested energy for nothing.
func (e *Engine) ClaimCredits(ctx context.Context, caller string, energy *big.Int, bucket uint64) (*big.Int, error) {
	ctx, err := e.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer e.leave()

	if energy == nil || energy.Sign() <= 0 {
		return nil, attestation.ErrInvalidAmount
	}
	remaining, recorded := e.meters.Remaining(caller, bucket)
	if !recorded || remaining.Sign() == 0 {
		return nil, attestation.ErrNoAttestation
	}
	if energy.Cmp(remaining) > 0 {
		return nil, attestation.ErrClaimExceedsAttested
	}

	credits := new(big.Int).Mul(energy, ledgerdomain.Scale)
	credits.Quo(credits, e.params.ConversionRatio())
	if credits.Sign() == 0 {
		return nil, market.ErrBelowMintingThreshold
	}

	if err := e.meters.Consume(caller, bucket, energy); err != nil {
		return nil, err
	}
	if err := e.ledger.Mint(caller, credits); err != nil {
		// Mint cannot fail after the validations above; fail loudly if it does.
		e.logger.Printf("market: mint after consume failed: %v", err)
		return nil, err
	}

	e.publish(ctx, CreditsMinted{
		Account:    caller,
		Credits:    credits.String(),
		Source:     "claim",
		Bucket:     bucket,
		EnergyKWh:  energy.String(),
		OccurredAt: time.Now().UTC(),
	})
	return credits, nil
}
