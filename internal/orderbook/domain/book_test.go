package orderbook

import (
	"errors"
	"math/big"
	"testing"
)

func TestAppendAssignsDenseIDs(t *testing.T) {
	b := NewBook()
	for i := int64(0); i < 3; i++ {
		id, err := b.Append("seller", big.NewInt(10+i), big.NewInt(1))
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if id != uint64(i) {
			t.Fatalf("id = %d, want %d", id, i)
		}
	}
	if b.Len() != 3 {
		t.Fatalf("len = %d, want 3", b.Len())
	}
}

func TestAppendValidation(t *testing.T) {
	b := NewBook()
	if _, err := b.Append("", big.NewInt(1), big.NewInt(1)); !errors.Is(err, ErrEmptySeller) {
		t.Fatalf("empty seller: %v", err)
	}
	if _, err := b.Append("seller", big.NewInt(0), big.NewInt(1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: %v", err)
	}
	if _, err := b.Append("seller", big.NewInt(1), big.NewInt(-1)); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("negative price: %v", err)
	}
}

func TestReduceToFulfilled(t *testing.T) {
	b := NewBook()
	id, err := b.Append("seller", big.NewInt(100), big.NewInt(2))
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := b.Reduce(id, big.NewInt(40)); err != nil {
		t.Fatalf("reduce: %v", err)
	}
	order, err := b.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if order.Remaining.Int64() != 60 || order.Fulfilled {
		t.Fatalf("order after partial fill: %+v", order)
	}

	if err := b.Reduce(id, big.NewInt(60)); err != nil {
		t.Fatalf("reduce to zero: %v", err)
	}
	order, _ = b.Get(id)
	if !order.Fulfilled || order.Remaining.Sign() != 0 {
		t.Fatalf("order not terminal: %+v", order)
	}

	if err := b.Reduce(id, big.NewInt(1)); !errors.Is(err, ErrOrderClosed) {
		t.Fatalf("expected ErrOrderClosed, got %v", err)
	}
}

func TestReduceValidation(t *testing.T) {
	b := NewBook()
	id, err := b.Append("seller", big.NewInt(10), big.NewInt(2))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := b.Reduce(99, big.NewInt(1)); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("out of range: %v", err)
	}
	if err := b.Reduce(id, big.NewInt(11)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("overfill: %v", err)
	}
	if err := b.Reduce(id, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero fill: %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	b := NewBook()
	id, err := b.Append("seller", big.NewInt(10), big.NewInt(2))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	order, _ := b.Get(id)
	order.Remaining.SetInt64(1)
	again, _ := b.Get(id)
	if again.Remaining.Int64() != 10 {
		t.Fatalf("book state mutated through Get copy: %s", again.Remaining)
	}
}

func TestSnapshotRestore(t *testing.T) {
	b := NewBook()
	first, _ := b.Append("seller", big.NewInt(10), big.NewInt(2))
	snap := b.Snapshot()

	if err := b.Reduce(first, big.NewInt(10)); err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if _, err := b.Append("other", big.NewInt(5), big.NewInt(3)); err != nil {
		t.Fatalf("append: %v", err)
	}

	b.Restore(snap)
	if b.Len() != 1 {
		t.Fatalf("len after restore = %d, want 1", b.Len())
	}
	order, _ := b.Get(first)
	if order.Remaining.Int64() != 10 || order.Fulfilled {
		t.Fatalf("order after restore: %+v", order)
	}
}
