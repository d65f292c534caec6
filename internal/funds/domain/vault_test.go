package funds

import (
	"errors"
	"math/big"
	"testing"
)

func TestDepositDebitCredit(t *testing.T) {
	v := NewVault()
	if err := v.Deposit("buyer", big.NewInt(1000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := v.Debit("buyer", big.NewInt(400)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := v.Credit("seller", big.NewInt(400)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if got := v.BalanceOf("buyer").Int64(); got != 600 {
		t.Fatalf("buyer = %d, want 600", got)
	}
	if got := v.BalanceOf("seller").Int64(); got != 400 {
		t.Fatalf("seller = %d, want 400", got)
	}
}

func TestDebitInsufficient(t *testing.T) {
	v := NewVault()
	if err := v.Debit("buyer", big.NewInt(1)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	v := NewVault()
	if err := v.Deposit("", big.NewInt(1)); !errors.Is(err, ErrEmptyAccount) {
		t.Fatalf("empty account: %v", err)
	}
	if err := v.Deposit("buyer", big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: %v", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	v := NewVault()
	if err := v.Deposit("buyer", big.NewInt(100)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	snap := v.Snapshot()

	if err := v.Debit("buyer", big.NewInt(60)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := v.Credit("seller", big.NewInt(60)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	v.Restore(snap)
	if got := v.BalanceOf("buyer").Int64(); got != 100 {
		t.Fatalf("buyer after restore = %d, want 100", got)
	}
	if got := v.BalanceOf("seller").Sign(); got != 0 {
		t.Fatal("seller balance should be zero after restore")
	}
}
