package attestation

import (
	"math/big"
	"time"
)

// Book owns the meter attestation records: one write-once reading per
// (producer, time bucket), decremented as the producer claims credits and
// never increased. A bucket that has been recorded stays recorded even when
// fully drained, so a second reading for the same bucket is always rejected;
// a corrected reading requires a new bucket.
type Book struct {
	records map[string]map[uint64]*big.Int
}

// NewBook constructs an empty attestation book.
func NewBook() *Book {
	return &Book{records: make(map[string]map[uint64]*big.Int)}
}

// Record stores the energy reading for (producer, bucket).
func (b *Book) Record(producer string, bucket uint64, energy *big.Int) error {
	if producer == "" {
		return ErrEmptyProducer
	}
	if energy == nil || energy.Sign() <= 0 {
		return ErrInvalidAmount
	}
	byProducer := b.records[producer]
	if byProducer == nil {
		byProducer = make(map[uint64]*big.Int)
		b.records[producer] = byProducer
	}
	if _, exists := byProducer[bucket]; exists {
		return ErrDuplicateAttestation
	}
	byProducer[bucket] = new(big.Int).Set(energy)
	return nil
}

// Remaining returns the claimable energy left for (producer, bucket) and
// whether the bucket has ever been recorded.
func (b *Book) Remaining(producer string, bucket uint64) (*big.Int, bool) {
	remaining, ok := b.records[producer][bucket]
	if !ok {
		return new(big.Int), false
	}
	return new(big.Int).Set(remaining), true
}

// Consume decrements the remaining reading for (producer, bucket).
func (b *Book) Consume(producer string, bucket uint64, energy *big.Int) error {
	if energy == nil || energy.Sign() <= 0 {
		return ErrInvalidAmount
	}
	remaining, ok := b.records[producer][bucket]
	if !ok || remaining.Sign() == 0 {
		return ErrNoAttestation
	}
	if energy.Cmp(remaining) > 0 {
		return ErrClaimExceedsAttested
	}
	remaining.Sub(remaining, energy)
	return nil
}

// HourBucket maps a timestamp to its hour bucket number.
func HourBucket(at time.Time) uint64 {
	return uint64(at.UTC().Truncate(time.Hour).Unix() / 3600)
}
