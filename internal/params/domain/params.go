package params

import "math/big"

// Authorizer decides whether a caller is the system administrator.
type Authorizer interface {
	IsAdmin(caller string) bool
}

// Parameters is a read-only view of the current system parameters.
type Parameters struct {
	// ConversionRatio is the number of energy units (kWh) per minted credit.
	ConversionRatio *big.Int
	// FloorPrice is the minimum price per credit in payment-currency smallest
	// units, scaled by 1e18 per credit.
	FloorPrice *big.Int
	// Beneficiary receives protocol funds off the trade path.
	Beneficiary string
}

// Store owns the mutable system parameters. Consumers hold the store and
// read through it; parameters are never package-level globals.
type Store struct {
	auth            Authorizer
	conversionRatio *big.Int
	floorPrice      *big.Int
	beneficiary     string
}

// NewStore constructs a parameter store with initial values.
func NewStore(auth Authorizer, initial Parameters) (*Store, error) {
	if initial.ConversionRatio == nil || initial.ConversionRatio.Sign() <= 0 {
		return nil, ErrInvalidRatio
	}
	if initial.FloorPrice == nil || initial.FloorPrice.Sign() < 0 {
		return nil, ErrInvalidPrice
	}
	if initial.Beneficiary == "" {
		return nil, ErrEmptyBeneficiary
	}
	return &Store{
		auth:            auth,
		conversionRatio: new(big.Int).Set(initial.ConversionRatio),
		floorPrice:      new(big.Int).Set(initial.FloorPrice),
		beneficiary:     initial.Beneficiary,
	}, nil
}

// SetConversionRatio updates the energy-to-credit ratio. Administrator only.
func (s *Store) SetConversionRatio(caller string, ratio *big.Int) error {
	if s.auth == nil || !s.auth.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if ratio == nil || ratio.Sign() <= 0 {
		return ErrInvalidRatio
	}
	s.conversionRatio = new(big.Int).Set(ratio)
	return nil
}

// SetFloorPrice updates the minimum price per credit. Administrator only.
func (s *Store) SetFloorPrice(caller string, price *big.Int) error {
	if s.auth == nil || !s.auth.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if price == nil || price.Sign() < 0 {
		return ErrInvalidPrice
	}
	s.floorPrice = new(big.Int).Set(price)
	return nil
}

// SetBeneficiary updates the protocol beneficiary address. Administrator only.
func (s *Store) SetBeneficiary(caller, beneficiary string) error {
	if s.auth == nil || !s.auth.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if beneficiary == "" {
		return ErrEmptyBeneficiary
	}
	s.beneficiary = beneficiary
	return nil
}

// ConversionRatio returns the current energy units per credit.
func (s *Store) ConversionRatio() *big.Int { return new(big.Int).Set(s.conversionRatio) }

// FloorPrice returns the current floor price per credit.
func (s *Store) FloorPrice() *big.Int { return new(big.Int).Set(s.floorPrice) }

// Beneficiary returns the protocol beneficiary address.
func (s *Store) Beneficiary() string { return s.beneficiary }

// View returns a detached copy of all parameters.
func (s *Store) View() Parameters {
	return Parameters{
		ConversionRatio: s.ConversionRatio(),
		FloorPrice:      s.FloorPrice(),
		Beneficiary:     s.beneficiary,
	}
}
