package application

import (
	"context"
	"errors"
	"log"
	"math/big"
	"sync"

	accesscontrol "carbonmarket-cloud/internal/accesscontrol/domain"
	attestation "carbonmarket-cloud/internal/attestation/domain"
	funds "carbonmarket-cloud/internal/funds/domain"
	ledger "carbonmarket-cloud/internal/ledger/domain"
	market "carbonmarket-cloud/internal/market/domain"
	orderbook "carbonmarket-cloud/internal/orderbook/domain"
	params "carbonmarket-cloud/internal/params/domain"
)

// EventPublisher emits structured events after successful state transitions.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// PaymentForwarder moves payment funds to a seller. The forward is the only
// external interaction on the trade path; a failure aborts and rolls back
// the whole operation.
type PaymentForwarder interface {
	Forward(ctx context.Context, to string, amount *big.Int) error
}

// ProofGate is the yes/no balance-proof check consulted before a trade
// proceeds. Proof generation and verification happen elsewhere.
type ProofGate interface {
	Allow(ctx context.Context, buyer string, total *big.Int) bool
}

// AllowAllGate admits every trade.
type AllowAllGate struct{}

// Allow always returns true.
func (AllowAllGate) Allow(context.Context, string, *big.Int) bool { return true }

// VaultForwarder forwards payments by crediting the seller's vault account.
type VaultForwarder struct {
	Vault *funds.Vault
}

// Forward credits the seller with the payment amount.
func (f VaultForwarder) Forward(_ context.Context, to string, amount *big.Int) error {
	if f.Vault == nil {
		return errors.New("market: nil vault")
	}
	return f.Vault.Credit(to, amount)
}

// Deps carries the engine's collaborators.
type Deps struct {
	Registry  *accesscontrol.Registry
	Params    *params.Store
	Meters    *attestation.Book
	Ledger    *ledger.Ledger
	Orders    *orderbook.Book
	Vault     *funds.Vault
	Forwarder PaymentForwarder
	Gate      ProofGate
	Bus       EventPublisher
	Logger    *log.Logger
	// EngineAddress is the engine's own identity: the spender sellers
	// pre-authorize to move their credits at settlement time.
	EngineAddress string
}

// Engine is the market core. Every public mutating operation runs strictly
// serialized under one mutex and either fully commits or fully reverts; an
// in-flight marker on the context turns nested entry during payment
// forwarding into a hard rejection instead of a deadlock or a balance-check
// bypass.
type Engine struct {
	mu sync.Mutex

	registry  *accesscontrol.Registry
	params    *params.Store
	meters    *attestation.Book
	ledger    *ledger.Ledger
	orders    *orderbook.Book
	vault     *funds.Vault
	forwarder PaymentForwarder
	gate      ProofGate
	bus       EventPublisher
	logger    *log.Logger
	address   string
}

// NewEngine constructs the market engine.
func NewEngine(deps Deps) (*Engine, error) {
	if deps.Registry == nil || deps.Params == nil || deps.Meters == nil ||
		deps.Ledger == nil || deps.Orders == nil || deps.Vault == nil {
		return nil, errors.New("market: missing state component")
	}
	if deps.EngineAddress == "" {
		return nil, errors.New("market: empty engine address")
	}
	if deps.Forwarder == nil {
		deps.Forwarder = VaultForwarder{Vault: deps.Vault}
	}
	if deps.Gate == nil {
		deps.Gate = AllowAllGate{}
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return &Engine{
		registry:  deps.Registry,
		params:    deps.Params,
		meters:    deps.Meters,
		ledger:    deps.Ledger,
		orders:    deps.Orders,
		vault:     deps.Vault,
		forwarder: deps.Forwarder,
		gate:      deps.Gate,
		bus:       deps.Bus,
		logger:    deps.Logger,
		address:   deps.EngineAddress,
	}, nil
}

// Address returns the engine's spender identity.
func (e *Engine) Address() string { return e.address }

// inFlight marks the context of an operation holding the engine mutex. A
// collaborator calling back into the engine carries the marker and would
// deadlock on the mutex if admitted.
type inFlight struct{}

// enter serializes a mutating operation. Calls from other goroutines queue
// on the mutex and run in turn; a nested call made from inside an in-flight
// operation (a forwarder or gate calling back in) is rejected. The returned
// context must be the one handed to collaborators.
func (e *Engine) enter(ctx context.Context) (context.Context, error) {
	if ctx.Value(inFlight{}) != nil {
		return nil, market.ErrReentrantCall
	}
	e.mu.Lock()
	return context.WithValue(ctx, inFlight{}, struct{}{}), nil
}

func (e *Engine) leave() {
	e.mu.Unlock()
}

// publish emits events after a committed transition. Publish failures do not
// unwind committed state; they are logged and left to outbox redelivery.
func (e *Engine) publish(ctx context.Context, events ...any) {
	if e.bus == nil {
		return
	}
	for _, event := range events {
		if err := e.bus.Publish(ctx, event); err != nil {
			e.logger.Printf("market: publish %T error: %v", event, err)
		}
	}
}
