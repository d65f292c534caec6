package application

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	accesscontrol "carbonmarket-cloud/internal/accesscontrol/domain"
	attestation "carbonmarket-cloud/internal/attestation/domain"
	funds "carbonmarket-cloud/internal/funds/domain"
	ledgerdomain "carbonmarket-cloud/internal/ledger/domain"
	market "carbonmarket-cloud/internal/market/domain"
	orderbook "carbonmarket-cloud/internal/orderbook/domain"
	params "carbonmarket-cloud/internal/params/domain"
)

type recordingBus struct {
	events []any
}

func (b *recordingBus) Publish(_ context.Context, event any) error {
	b.events = append(b.events, event)
	return nil
}

type failingForwarder struct {
	vault  *funds.Vault
	reject map[string]bool
}

func (f *failingForwarder) Forward(_ context.Context, to string, amount *big.Int) error {
	if f.reject[to] {
		return errors.New("recipient rejected payment")
	}
	return f.vault.Credit(to, amount)
}

type reentrantForwarder struct {
	engine *Engine
	err    error
}

func (f *reentrantForwarder) Forward(ctx context.Context, _ string, _ *big.Int) error {
	f.err = f.engine.Fulfill(ctx, "buyer", 0, big.NewInt(1), big.NewInt(1))
	return nil
}

// blockingForwarder parks inside Forward until released, holding the engine
// mid-settlement.
type blockingForwarder struct {
	vault   *funds.Vault
	parked  chan struct{}
	release chan struct{}
}

func (f *blockingForwarder) Forward(_ context.Context, to string, amount *big.Int) error {
	close(f.parked)
	<-f.release
	return f.vault.Credit(to, amount)
}

type denyGate struct{}

func (denyGate) Allow(context.Context, string, *big.Int) bool { return false }

func bi(v int64) *big.Int { return big.NewInt(v) }

func scaled(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), ledgerdomain.Scale)
}

type testDeps struct {
	forwarder PaymentForwarder
	gate      ProofGate
	vault     *funds.Vault
}

func newTestEngine(t *testing.T, custom testDeps) (*Engine, *recordingBus) {
	t.Helper()
	if custom.vault == nil {
		custom.vault = funds.NewVault()
	}
	registry, err := accesscontrol.NewRegistry("admin")
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	store, err := params.NewStore(registry, params.Parameters{
		ConversionRatio: bi(100),
		FloorPrice:      bi(0),
		Beneficiary:     "treasury",
	})
	if err != nil {
		t.Fatalf("new params: %v", err)
	}
	bus := &recordingBus{}
	engine, err := NewEngine(Deps{
		Registry:      registry,
		Params:        store,
		Meters:        attestation.NewBook(),
		Ledger:        ledgerdomain.New(),
		Orders:        orderbook.NewBook(),
		Vault:         custom.vault,
		Forwarder:     custom.forwarder,
		Gate:          custom.gate,
		Bus:           bus,
		EngineAddress: "engine",
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine, bus
}

// seedSeller mints credits for the seller and approves the engine.
func seedSeller(t *testing.T, e *Engine, seller string, credits *big.Int) {
	t.Helper()
	ctx := context.Background()
	if err := e.AdminMint(ctx, "admin", seller, credits); err != nil {
		t.Fatalf("admin mint: %v", err)
	}
	if err := e.Approve(ctx, seller, credits); err != nil {
		t.Fatalf("approve: %v", err)
	}
}

func TestRecordAttestationRequiresAllowListedDevice(t *testing.T) {
	e, bus := newTestEngine(t, testDeps{})
	ctx := context.Background()

	err := e.RecordAttestation(ctx, "meter-1", "producer", 7, bi(500))
	if !errors.Is(err, accesscontrol.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(bus.events) != 0 {
		t.Fatalf("events emitted on failure: %d", len(bus.events))
	}

	if err := e.SetDevice(ctx, "admin", "meter-1", true); err != nil {
		t.Fatalf("set device: %v", err)
	}
	if err := e.RecordAttestation(ctx, "meter-1", "producer", 7, bi(500)); err != nil {
		t.Fatalf("record attestation: %v", err)
	}
	err = e.RecordAttestation(ctx, "meter-1", "producer", 7, bi(100))
	if !errors.Is(err, attestation.ErrDuplicateAttestation) {
		t.Fatalf("expected ErrDuplicateAttestation, got %v", err)
	}
}

func TestClaimCreditsScenario(t *testing.T) {
	// Attest 500 kWh at ratio 100, claim 300, remaining 200, reject 250.
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	if err := e.SetDevice(ctx, "admin", "meter-1", true); err != nil {
		t.Fatalf("set device: %v", err)
	}
	if err := e.RecordAttestation(ctx, "meter-1", "producer", 7, bi(500)); err != nil {
		t.Fatalf("record: %v", err)
	}

	credits, err := e.ClaimCredits(ctx, "producer", bi(300), 7)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	want := new(big.Int).Quo(new(big.Int).Mul(bi(300), ledgerdomain.Scale), bi(100))
	if credits.Cmp(want) != 0 {
		t.Fatalf("credits = %s, want %s", credits, want)
	}
	if got := e.BalanceOf("producer"); got.Cmp(want) != 0 {
		t.Fatalf("producer balance = %s, want %s", got, want)
	}
	remaining, _ := e.MeterRemaining("producer", 7)
	if remaining.Int64() != 200 {
		t.Fatalf("remaining = %s, want 200", remaining)
	}

	_, err = e.ClaimCredits(ctx, "producer", bi(250), 7)
	if !errors.Is(err, attestation.ErrClaimExceedsAttested) {
		t.Fatalf("expected ErrClaimExceedsAttested, got %v", err)
	}
}

func TestClaimCreditsNoAttestation(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{})
	_, err := e.ClaimCredits(context.Background(), "producer", bi(10), 1)
	if !errors.Is(err, attestation.ErrNoAttestation) {
		t.Fatalf("expected ErrNoAttestation, got %v", err)
	}
}

func TestClaimCreditsBelowMintingThreshold(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()
	if err := e.SetDevice(ctx, "admin", "meter-1", true); err != nil {
		t.Fatalf("set device: %v", err)
	}
	if err := e.RecordAttestation(ctx, "meter-1", "producer", 7, bi(500)); err != nil {
		t.Fatalf("record: %v", err)
	}

	// With a ratio beyond energy*Scale the truncated result is zero.
	huge := new(big.Int).Mul(bi(501), ledgerdomain.Scale)
	if err := e.SetConversionRatio(ctx, "admin", huge); err != nil {
		t.Fatalf("set ratio: %v", err)
	}
	_, err := e.ClaimCredits(ctx, "producer", bi(500), 7)
	if !errors.Is(err, market.ErrBelowMintingThreshold) {
		t.Fatalf("expected ErrBelowMintingThreshold, got %v", err)
	}
	remaining, _ := e.MeterRemaining("producer", 7)
	if remaining.Int64() != 500 {
		t.Fatalf("meter decremented on failed claim: %s", remaining)
	}
}

func TestPlaceSellOrderValidation(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	if err := e.SetFloorPrice(ctx, "admin", scaled(1)); err != nil {
		t.Fatalf("set floor: %v", err)
	}

	_, err := e.PlaceSellOrder(ctx, "seller", scaled(10), bi(1))
	if !errors.Is(err, orderbook.ErrPriceBelowFloor) {
		t.Fatalf("expected ErrPriceBelowFloor, got %v", err)
	}

	_, err = e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(2))
	if !errors.Is(err, ledgerdomain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if err := e.AdminMint(ctx, "admin", "seller", scaled(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err = e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(2))
	if !errors.Is(err, ledgerdomain.ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}

	if err := e.Approve(ctx, "seller", scaled(10)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	id, err := e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(2))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if id != 0 {
		t.Fatalf("first order id = %d, want 0", id)
	}
}

func TestFulfillScenario(t *testing.T) {
	// Order of 1000 credits at 2e18 per credit, fulfilled in full for
	// exactly 2000e18 payment units.
	e, bus := newTestEngine(t, testDeps{})
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(1000))
	orderID, err := e.PlaceSellOrder(ctx, "seller", scaled(1000), scaled(2))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(2000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if err := e.Fulfill(ctx, "buyer", orderID, scaled(1000), scaled(2000)); err != nil {
		t.Fatalf("fulfill: %v", err)
	}

	if got := e.BalanceOf("seller").Sign(); got != 0 {
		t.Fatalf("seller credits not emptied")
	}
	if got := e.BalanceOf("buyer"); got.Cmp(scaled(1000)) != 0 {
		t.Fatalf("buyer credits = %s", got)
	}
	if got := e.VaultBalanceOf("seller"); got.Cmp(scaled(2000)) != 0 {
		t.Fatalf("seller payment = %s", got)
	}
	if got := e.VaultBalanceOf("buyer").Sign(); got != 0 {
		t.Fatalf("buyer payment not spent")
	}
	order, err := e.Order(orderID)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if !order.Fulfilled || order.Remaining.Sign() != 0 {
		t.Fatalf("order not terminal: %+v", order)
	}

	var fulfilled *OrderFulfilled
	for _, event := range bus.events {
		if typed, ok := event.(OrderFulfilled); ok {
			fulfilled = &typed
		}
	}
	if fulfilled == nil || !fulfilled.Closed {
		t.Fatalf("missing closed OrderFulfilled event: %+v", fulfilled)
	}
}

func TestFulfillExactPayment(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(10))
	orderID, err := e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(2))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(100)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	exact := scaled(20)
	over := new(big.Int).Add(exact, bi(1))
	under := new(big.Int).Sub(exact, bi(1))
	if err := e.Fulfill(ctx, "buyer", orderID, scaled(10), over); !errors.Is(err, market.ErrIncorrectPayment) {
		t.Fatalf("overpayment: %v", err)
	}
	if err := e.Fulfill(ctx, "buyer", orderID, scaled(10), under); !errors.Is(err, market.ErrIncorrectPayment) {
		t.Fatalf("underpayment: %v", err)
	}
	if got := e.BalanceOf("seller"); got.Cmp(scaled(10)) != 0 {
		t.Fatalf("state changed on failed fulfill: %s", got)
	}
	if err := e.Fulfill(ctx, "buyer", orderID, scaled(10), exact); err != nil {
		t.Fatalf("exact fulfill: %v", err)
	}
}

func TestFulfillSellerUnderfunded(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(10))
	orderID, err := e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	// The escrow-less design lets the balance drop after placement.
	if err := e.Transfer(ctx, "seller", "elsewhere", scaled(6)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(10)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	err = e.Fulfill(ctx, "buyer", orderID, scaled(10), scaled(10))
	if !errors.Is(err, market.ErrSellerUnderfunded) {
		t.Fatalf("expected ErrSellerUnderfunded, got %v", err)
	}

	// A fill within the live balance still works.
	if err := e.Fulfill(ctx, "buyer", orderID, scaled(4), scaled(4)); err != nil {
		t.Fatalf("partial fulfill: %v", err)
	}
}

func TestFulfillAllowanceDroppedAfterPlacement(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(10))
	orderID, err := e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := e.Approve(ctx, "seller", bi(0)); err != nil {
		t.Fatalf("revoke approval: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(10)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	err = e.Fulfill(ctx, "buyer", orderID, scaled(10), scaled(10))
	if !errors.Is(err, ledgerdomain.ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
	order, _ := e.Order(orderID)
	if order.Remaining.Cmp(scaled(10)) != 0 || order.Fulfilled {
		t.Fatalf("order mutated on failed settlement: %+v", order)
	}
	if got := e.VaultBalanceOf("buyer"); got.Cmp(scaled(10)) != 0 {
		t.Fatalf("buyer vault not restored: %s", got)
	}
}

func TestFulfillForwardFailureRollsBack(t *testing.T) {
	vault := funds.NewVault()
	forwarder := &failingForwarder{vault: vault, reject: map[string]bool{"seller": true}}
	e, bus := newTestEngine(t, testDeps{forwarder: forwarder, vault: vault})
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(10))
	orderID, err := e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(10)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	eventsBefore := len(bus.events)

	err = e.Fulfill(ctx, "buyer", orderID, scaled(10), scaled(10))
	if !errors.Is(err, market.ErrPaymentForwardingFailed) {
		t.Fatalf("expected ErrPaymentForwardingFailed, got %v", err)
	}

	if got := e.BalanceOf("seller"); got.Cmp(scaled(10)) != 0 {
		t.Fatalf("seller credits = %s after rollback", got)
	}
	if got := e.BalanceOf("buyer").Sign(); got != 0 {
		t.Fatalf("buyer received credits despite rollback")
	}
	if got := e.VaultBalanceOf("buyer"); got.Cmp(scaled(10)) != 0 {
		t.Fatalf("buyer payment = %s after rollback", got)
	}
	order, _ := e.Order(orderID)
	if order.Remaining.Cmp(scaled(10)) != 0 || order.Fulfilled {
		t.Fatalf("order mutated despite rollback: %+v", order)
	}
	if len(bus.events) != eventsBefore {
		t.Fatalf("events emitted on failed settlement")
	}
}

func TestFulfillReentrancyRejected(t *testing.T) {
	forwarder := &reentrantForwarder{}
	e, _ := newTestEngine(t, testDeps{forwarder: forwarder})
	forwarder.engine = e
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(10))
	orderID, err := e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(10)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// The outer call succeeds; the nested call made by the forwarder is
	// rejected instead of re-entering the engine.
	if err := e.Fulfill(ctx, "buyer", orderID, scaled(10), scaled(10)); err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if !errors.Is(forwarder.err, market.ErrReentrantCall) {
		t.Fatalf("nested call error = %v, want ErrReentrantCall", forwarder.err)
	}
}

func TestConcurrentCallsQueueDuringSettlement(t *testing.T) {
	// A call from another goroutine arriving while a settlement is mid-flight
	// must queue on the engine and run to completion, not be rejected as a
	// nested call.
	vault := funds.NewVault()
	forwarder := &blockingForwarder{
		vault:   vault,
		parked:  make(chan struct{}),
		release: make(chan struct{}),
	}
	e, _ := newTestEngine(t, testDeps{forwarder: forwarder, vault: vault})
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(10))
	orderID, err := e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(10)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	fulfillDone := make(chan error, 1)
	go func() {
		fulfillDone <- e.Fulfill(ctx, "buyer", orderID, scaled(10), scaled(10))
	}()
	<-forwarder.parked

	mintDone := make(chan error, 1)
	go func() {
		mintDone <- e.AdminMint(ctx, "admin", "latecomer", scaled(1))
	}()

	select {
	case err := <-mintDone:
		t.Fatalf("concurrent call finished while settlement held the engine: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(forwarder.release)
	if err := <-fulfillDone; err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if err := <-mintDone; err != nil {
		t.Fatalf("queued mint: %v", err)
	}
	if got := e.BalanceOf("latecomer"); got.Cmp(scaled(1)) != 0 {
		t.Fatalf("latecomer balance = %s, want 1 credit", got)
	}
}

func TestFulfillProofGateRejected(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{gate: denyGate{}})
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(10))
	orderID, err := e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	err = e.Fulfill(ctx, "buyer", orderID, scaled(10), scaled(10))
	if !errors.Is(err, market.ErrProofRejected) {
		t.Fatalf("expected ErrProofRejected, got %v", err)
	}
}

func TestFulfillBatchShape(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	err := e.FulfillBatch(ctx, "buyer", nil, nil, nil, bi(0))
	if !errors.Is(err, market.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	err = e.FulfillBatch(ctx, "buyer", []uint64{0}, []*big.Int{bi(1), bi(2)}, []*big.Int{bi(1)}, bi(1))
	if !errors.Is(err, market.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestFulfillBatchPriceChanged(t *testing.T) {
	// Two orders priced 1e18 and 2e18; the caller submits a stale quote
	// for the second and the entire batch must fail untouched.
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	seedSeller(t, e, "seller-a", scaled(10))
	seedSeller(t, e, "seller-b", scaled(5))
	first, err := e.PlaceSellOrder(ctx, "seller-a", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place a: %v", err)
	}
	second, err := e.PlaceSellOrder(ctx, "seller-b", scaled(5), scaled(2))
	if err != nil {
		t.Fatalf("place b: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(100)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	err = e.FulfillBatch(ctx, "buyer",
		[]uint64{first, second},
		[]*big.Int{scaled(10), scaled(5)},
		[]*big.Int{scaled(1), scaled(3)},
		scaled(25),
	)
	if !errors.Is(err, market.ErrPriceChanged) {
		t.Fatalf("expected ErrPriceChanged, got %v", err)
	}
	if got := e.BalanceOf("seller-a"); got.Cmp(scaled(10)) != 0 {
		t.Fatalf("seller-a balance changed: %s", got)
	}
	if got := e.BalanceOf("buyer").Sign(); got != 0 {
		t.Fatalf("buyer balance changed")
	}
}

func TestFulfillBatchSettles(t *testing.T) {
	e, bus := newTestEngine(t, testDeps{})
	ctx := context.Background()

	seedSeller(t, e, "seller-a", scaled(10))
	seedSeller(t, e, "seller-b", scaled(5))
	first, err := e.PlaceSellOrder(ctx, "seller-a", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place a: %v", err)
	}
	second, err := e.PlaceSellOrder(ctx, "seller-b", scaled(5), scaled(2))
	if err != nil {
		t.Fatalf("place b: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(20)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// 10*1 + 5*2 = 20 whole payment units.
	err = e.FulfillBatch(ctx, "buyer",
		[]uint64{first, second},
		[]*big.Int{scaled(10), scaled(5)},
		[]*big.Int{scaled(1), scaled(2)},
		scaled(20),
	)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	if got := e.BalanceOf("buyer"); got.Cmp(scaled(15)) != 0 {
		t.Fatalf("buyer credits = %s, want 15 credits", got)
	}
	if got := e.VaultBalanceOf("seller-a"); got.Cmp(scaled(10)) != 0 {
		t.Fatalf("seller-a payment = %s", got)
	}
	if got := e.VaultBalanceOf("seller-b"); got.Cmp(scaled(10)) != 0 {
		t.Fatalf("seller-b payment = %s", got)
	}
	for _, id := range []uint64{first, second} {
		order, _ := e.Order(id)
		if !order.Fulfilled {
			t.Fatalf("order %d not fulfilled", id)
		}
	}

	var perOrder int
	var batch *BatchSettled
	for _, event := range bus.events {
		switch typed := event.(type) {
		case OrderFulfilled:
			perOrder++
		case BatchSettled:
			batch = &typed
		}
	}
	if perOrder != 2 {
		t.Fatalf("OrderFulfilled events = %d, want 2", perOrder)
	}
	if batch == nil || batch.TotalCost != scaled(20).String() {
		t.Fatalf("BatchSettled event missing or wrong: %+v", batch)
	}
}

func TestFulfillBatchIncorrectTotalPayment(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(10))
	orderID, err := e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	err = e.FulfillBatch(ctx, "buyer",
		[]uint64{orderID},
		[]*big.Int{scaled(10)},
		[]*big.Int{scaled(1)},
		scaled(9),
	)
	if !errors.Is(err, market.ErrIncorrectPayment) {
		t.Fatalf("expected ErrIncorrectPayment, got %v", err)
	}
}

func TestFulfillBatchAllOrNothing(t *testing.T) {
	// The last seller rejects payment; every order in the batch must be
	// left unmodified, not just the failing one.
	vault := funds.NewVault()
	forwarder := &failingForwarder{vault: vault, reject: map[string]bool{"seller-b": true}}
	e, bus := newTestEngine(t, testDeps{forwarder: forwarder, vault: vault})
	ctx := context.Background()

	seedSeller(t, e, "seller-a", scaled(10))
	seedSeller(t, e, "seller-b", scaled(5))
	first, err := e.PlaceSellOrder(ctx, "seller-a", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place a: %v", err)
	}
	second, err := e.PlaceSellOrder(ctx, "seller-b", scaled(5), scaled(2))
	if err != nil {
		t.Fatalf("place b: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(20)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	eventsBefore := len(bus.events)

	err = e.FulfillBatch(ctx, "buyer",
		[]uint64{first, second},
		[]*big.Int{scaled(10), scaled(5)},
		[]*big.Int{scaled(1), scaled(2)},
		scaled(20),
	)
	if !errors.Is(err, market.ErrPaymentForwardingFailed) {
		t.Fatalf("expected ErrPaymentForwardingFailed, got %v", err)
	}

	if got := e.BalanceOf("seller-a"); got.Cmp(scaled(10)) != 0 {
		t.Fatalf("seller-a credits = %s after rollback", got)
	}
	if got := e.BalanceOf("seller-b"); got.Cmp(scaled(5)) != 0 {
		t.Fatalf("seller-b credits = %s after rollback", got)
	}
	if got := e.VaultBalanceOf("seller-a").Sign(); got != 0 {
		t.Fatalf("seller-a payment kept despite rollback")
	}
	if got := e.VaultBalanceOf("buyer"); got.Cmp(scaled(20)) != 0 {
		t.Fatalf("buyer payment = %s after rollback", got)
	}
	for _, id := range []uint64{first, second} {
		order, _ := e.Order(id)
		if order.Fulfilled {
			t.Fatalf("order %d fulfilled despite rollback", id)
		}
	}
	if len(bus.events) != eventsBefore {
		t.Fatalf("events emitted on failed batch")
	}
}

func TestFulfillBatchDuplicateOrderEntries(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(10))
	orderID, err := e.PlaceSellOrder(ctx, "seller", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(20)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// Two entries split one order; combined they drain it exactly.
	err = e.FulfillBatch(ctx, "buyer",
		[]uint64{orderID, orderID},
		[]*big.Int{scaled(6), scaled(4)},
		[]*big.Int{scaled(1), scaled(1)},
		scaled(10),
	)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	order, _ := e.Order(orderID)
	if !order.Fulfilled {
		t.Fatalf("order not fulfilled: %+v", order)
	}

	// A batch overrunning the combined remaining fails in validation.
	seedSeller(t, e, "seller-2", scaled(10))
	secondID, err := e.PlaceSellOrder(ctx, "seller-2", scaled(10), scaled(1))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	err = e.FulfillBatch(ctx, "buyer",
		[]uint64{secondID, secondID},
		[]*big.Int{scaled(6), scaled(6)},
		[]*big.Int{scaled(1), scaled(1)},
		scaled(12),
	)
	if !errors.Is(err, orderbook.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestFulfillBatchSellerDrainedAcrossEntries(t *testing.T) {
	// Two orders share one seller holding 10 credits. Each entry fits the
	// balance on its own, but together they overrun it; the batch must fail
	// in validation, before any state moves.
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	seedSeller(t, e, "seller", scaled(10))
	first, err := e.PlaceSellOrder(ctx, "seller", scaled(8), scaled(1))
	if err != nil {
		t.Fatalf("place first: %v", err)
	}
	second, err := e.PlaceSellOrder(ctx, "seller", scaled(8), scaled(1))
	if err != nil {
		t.Fatalf("place second: %v", err)
	}
	if err := e.DepositFunds(ctx, "buyer", scaled(16)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	err = e.FulfillBatch(ctx, "buyer",
		[]uint64{first, second},
		[]*big.Int{scaled(8), scaled(8)},
		[]*big.Int{scaled(1), scaled(1)},
		scaled(16),
	)
	if !errors.Is(err, market.ErrSellerUnderfunded) {
		t.Fatalf("expected ErrSellerUnderfunded, got %v", err)
	}
	if got := e.BalanceOf("seller"); got.Cmp(scaled(10)) != 0 {
		t.Fatalf("seller balance changed on failed validation: %s", got)
	}
	if got := e.VaultBalanceOf("buyer"); got.Cmp(scaled(16)) != 0 {
		t.Fatalf("buyer payment = %s on failed validation", got)
	}
	for _, id := range []uint64{first, second} {
		order, _ := e.Order(id)
		if order.Remaining.Cmp(scaled(8)) != 0 {
			t.Fatalf("order %d mutated on failed validation: %+v", id, order)
		}
	}

	// Within the shared balance the batch settles.
	err = e.FulfillBatch(ctx, "buyer",
		[]uint64{first, second},
		[]*big.Int{scaled(8), scaled(2)},
		[]*big.Int{scaled(1), scaled(1)},
		scaled(10),
	)
	if err != nil {
		t.Fatalf("batch within balance: %v", err)
	}
	if got := e.BalanceOf("buyer"); got.Cmp(scaled(10)) != 0 {
		t.Fatalf("buyer credits = %s, want 10", got)
	}
}

func TestAdminOps(t *testing.T) {
	e, _ := newTestEngine(t, testDeps{})
	ctx := context.Background()

	if err := e.AdminMint(ctx, "mallory", "account", scaled(1)); !errors.Is(err, accesscontrol.ErrUnauthorized) {
		t.Fatalf("admin mint by non-admin: %v", err)
	}
	if err := e.AdminMint(ctx, "admin", "account", scaled(5)); err != nil {
		t.Fatalf("admin mint: %v", err)
	}

	if err := e.AdminBurn(ctx, "admin", "account", scaled(1), ""); !errors.Is(err, market.ErrEmptyReason) {
		t.Fatalf("admin burn without reason: %v", err)
	}
	if err := e.AdminBurn(ctx, "mallory", "account", scaled(1), "fraud"); !errors.Is(err, accesscontrol.ErrUnauthorized) {
		t.Fatalf("admin burn by non-admin: %v", err)
	}
	if err := e.AdminBurn(ctx, "admin", "account", scaled(2), "compliance"); err != nil {
		t.Fatalf("admin burn: %v", err)
	}

	if err := e.SelfBurn(ctx, "account", scaled(1)); err != nil {
		t.Fatalf("self burn: %v", err)
	}
	if err := e.SelfBurn(ctx, "account", scaled(10)); !errors.Is(err, ledgerdomain.ErrInsufficientBalance) {
		t.Fatalf("self burn over balance: %v", err)
	}
	if got := e.BalanceOf("account"); got.Cmp(scaled(2)) != 0 {
		t.Fatalf("account balance = %s, want 2 credits", got)
	}
	if got := e.TotalSupply(); got.Cmp(scaled(2)) != 0 {
		t.Fatalf("total supply = %s, want 2 credits", got)
	}
}
