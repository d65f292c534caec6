package market

import "errors"

var (
	// ErrBelowMintingThreshold guards claims whose truncated credit amount is zero.
	ErrBelowMintingThreshold = errors.New("market: claim below minting threshold")
	// ErrIncorrectPayment is returned when the payment differs from the exact total price.
	ErrIncorrectPayment = errors.New("market: incorrect payment")
	// ErrPriceChanged is returned when a batch entry's expected price differs from the live order price.
	ErrPriceChanged = errors.New("market: order price changed")
	// ErrSellerUnderfunded is returned when the seller's balance dropped below the fill amount.
	ErrSellerUnderfunded = errors.New("market: seller underfunded")
	// ErrPaymentForwardingFailed is returned when forwarding payment to a seller fails.
	ErrPaymentForwardingFailed = errors.New("market: payment forwarding failed")
	// ErrReentrantCall is returned when a call re-enters the engine during settlement.
	ErrReentrantCall = errors.New("market: reentrant call")
	// ErrEmptyBatch is returned when a batch fulfillment has no entries.
	ErrEmptyBatch = errors.New("market: empty batch")
	// ErrLengthMismatch is returned when batch arrays differ in length.
	ErrLengthMismatch = errors.New("market: length mismatch")
	// ErrProofRejected is returned when the balance-proof gate denies a trade.
	ErrProofRejected = errors.New("market: balance proof rejected")
	// ErrEmptyReason is returned when a compliance burn has no reason.
	ErrEmptyReason = errors.New("market: empty burn reason")
)
