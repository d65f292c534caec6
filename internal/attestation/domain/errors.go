package attestation

import "errors"

var (
	// ErrEmptyProducer is returned when the producer identity is empty.
	ErrEmptyProducer = errors.New("attestation: empty producer")
	// ErrInvalidAmount is returned when the attested energy amount is not positive.
	ErrInvalidAmount = errors.New("attestation: invalid amount")
	// ErrDuplicateAttestation guards the write-once rule per (producer, bucket).
	ErrDuplicateAttestation = errors.New("attestation: duplicate attestation")
	// ErrNoAttestation is returned when no reading exists for (producer, bucket).
	ErrNoAttestation = errors.New("attestation: no attestation")
	// ErrClaimExceedsAttested is returned when a claim exceeds the remaining reading.
	ErrClaimExceedsAttested = errors.New("attestation: claim exceeds attested energy")
)
