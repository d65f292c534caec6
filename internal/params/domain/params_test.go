package params

import (
	"errors"
	"math/big"
	"testing"
)

type stubAuth struct{ admin string }

func (s stubAuth) IsAdmin(caller string) bool { return caller == s.admin }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(stubAuth{admin: "admin"}, Parameters{
		ConversionRatio: big.NewInt(100),
		FloorPrice:      big.NewInt(0),
		Beneficiary:     "treasury",
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestSettersAdminOnly(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetConversionRatio("mallory", big.NewInt(50)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("ratio: expected ErrUnauthorized, got %v", err)
	}
	if err := store.SetFloorPrice("mallory", big.NewInt(1)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("floor: expected ErrUnauthorized, got %v", err)
	}
	if err := store.SetBeneficiary("mallory", "attacker"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("beneficiary: expected ErrUnauthorized, got %v", err)
	}

	if err := store.SetConversionRatio("admin", big.NewInt(50)); err != nil {
		t.Fatalf("set ratio: %v", err)
	}
	if err := store.SetFloorPrice("admin", big.NewInt(2)); err != nil {
		t.Fatalf("set floor: %v", err)
	}
	if err := store.SetBeneficiary("admin", "treasury-2"); err != nil {
		t.Fatalf("set beneficiary: %v", err)
	}

	view := store.View()
	if view.ConversionRatio.Int64() != 50 || view.FloorPrice.Int64() != 2 || view.Beneficiary != "treasury-2" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestInvalidValues(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetConversionRatio("admin", big.NewInt(0)); !errors.Is(err, ErrInvalidRatio) {
		t.Fatalf("zero ratio: %v", err)
	}
	if err := store.SetFloorPrice("admin", nil); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("nil floor: %v", err)
	}
	if err := store.SetBeneficiary("admin", ""); !errors.Is(err, ErrEmptyBeneficiary) {
		t.Fatalf("empty beneficiary: %v", err)
	}
}

func TestViewIsDetached(t *testing.T) {
	store := newTestStore(t)
	view := store.View()
	view.ConversionRatio.SetInt64(1)
	if store.ConversionRatio().Int64() != 100 {
		t.Fatal("store mutated through view")
	}
}
