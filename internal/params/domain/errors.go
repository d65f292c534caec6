package params

import "errors"

var (
	// ErrUnauthorized is returned when a setter is called by a non-administrator identity.
	ErrUnauthorized = errors.New("params: unauthorized")
	// ErrInvalidRatio is returned when the conversion ratio is not a positive integer.
	ErrInvalidRatio = errors.New("params: invalid conversion ratio")
	// ErrInvalidPrice is returned when the floor price is nil or negative.
	ErrInvalidPrice = errors.New("params: invalid floor price")
	// ErrEmptyBeneficiary is returned when the beneficiary address is empty.
	ErrEmptyBeneficiary = errors.New("params: empty beneficiary")
)
