package http

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	accesscontrol "carbonmarket-cloud/internal/accesscontrol/domain"
	attestation "carbonmarket-cloud/internal/attestation/domain"
	"carbonmarket-cloud/internal/audit"
	"carbonmarket-cloud/internal/auth"
	funds "carbonmarket-cloud/internal/funds/domain"
	ledger "carbonmarket-cloud/internal/ledger/domain"
	app "carbonmarket-cloud/internal/market/application"
	market "carbonmarket-cloud/internal/market/domain"
	"carbonmarket-cloud/internal/observability/metrics"
	orderbook "carbonmarket-cloud/internal/orderbook/domain"
	params "carbonmarket-cloud/internal/params/domain"
)

// Handler provides the market HTTP endpoints.
type Handler struct {
	engine      *app.Engine
	auditLogger audit.Logger
	marketID    string
}

// NewHandler constructs a handler.
func NewHandler(engine *app.Engine, auditLogger audit.Logger, marketID string) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("market handler: nil engine")
	}
	return &Handler{engine: engine, auditLogger: auditLogger, marketID: marketID}, nil
}

// Register mounts all market routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/devices", h.handleDevices)
	mux.HandleFunc("/api/v1/params", h.handleParams)
	mux.HandleFunc("/api/v1/attestations", h.handleAttestations)
	mux.HandleFunc("/api/v1/claims", h.handleClaims)
	mux.HandleFunc("/api/v1/orders", h.handleOrders)
	mux.HandleFunc("/api/v1/orders/", h.handleOrderSubpath)
	mux.HandleFunc("/api/v1/approve", h.handleApprove)
	mux.HandleFunc("/api/v1/transfer", h.handleTransfer)
	mux.HandleFunc("/api/v1/burn", h.handleBurn)
	mux.HandleFunc("/api/v1/admin/mint", h.handleAdminMint)
	mux.HandleFunc("/api/v1/admin/burn", h.handleAdminBurn)
	mux.HandleFunc("/api/v1/balances/", h.handleBalance)
	mux.HandleFunc("/api/v1/supply", h.handleSupply)
	mux.HandleFunc("/api/v1/vault/deposit", h.handleVaultDeposit)
	mux.HandleFunc("/api/v1/vault/balances/", h.handleVaultBalance)
}

func (h *Handler) handleDevices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		device := r.URL.Query().Get("device")
		if device == "" {
			http.Error(w, "device required", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"device": device, "allowed": h.engine.DeviceAllowed(device)})
		return
	case http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Device  string `json:"device"`
		Allowed bool   `json:"allowed"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.engine.SetDevice(r.Context(), caller, req.Device, req.Allowed); err != nil {
		respondDomainError(w, err)
		return
	}
	h.logAudit(r, audit.ActionSetDevice, "device", req.Device, "", map[string]any{"allowed": req.Allowed})
	writeJSON(w, map[string]any{"device": req.Device, "allowed": req.Allowed})
}

func (h *Handler) handleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		view := h.engine.Params()
		writeJSON(w, map[string]string{
			"conversion_ratio": view.ConversionRatio.String(),
			"floor_price":      view.FloorPrice.String(),
			"beneficiary":      view.Beneficiary,
		})
	case http.MethodPut:
		h.handleParamsUpdate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleParamsUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		ConversionRatio string `json:"conversion_ratio"`
		FloorPrice      string `json:"floor_price"`
		Beneficiary     string `json:"beneficiary"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ConversionRatio != "" {
		ratio, err := ledger.ParseAmount(req.ConversionRatio)
		if err != nil {
			http.Error(w, "invalid conversion_ratio", http.StatusBadRequest)
			return
		}
		if err := h.engine.SetConversionRatio(r.Context(), caller, ratio); err != nil {
			respondDomainError(w, err)
			return
		}
		h.logAudit(r, audit.ActionSetParameter, "parameter", "conversion_ratio", "", map[string]any{"value": req.ConversionRatio})
	}
	if req.FloorPrice != "" {
		price, err := ledger.ParseAmount(req.FloorPrice)
		if err != nil {
			http.Error(w, "invalid floor_price", http.StatusBadRequest)
			return
		}
		if err := h.engine.SetFloorPrice(r.Context(), caller, price); err != nil {
			respondDomainError(w, err)
			return
		}
		h.logAudit(r, audit.ActionSetParameter, "parameter", "floor_price", "", map[string]any{"value": req.FloorPrice})
	}
	if req.Beneficiary != "" {
		if err := h.engine.SetBeneficiary(r.Context(), caller, req.Beneficiary); err != nil {
			respondDomainError(w, err)
			return
		}
		h.logAudit(r, audit.ActionSetParameter, "parameter", "beneficiary", "", map[string]any{"value": req.Beneficiary})
	}

	view := h.engine.Params()
	writeJSON(w, map[string]string{
		"conversion_ratio": view.ConversionRatio.String(),
		"floor_price":      view.FloorPrice.String(),
		"beneficiary":      view.Beneficiary,
	})
}

func (h *Handler) handleAttestations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleAttestationQuery(w, r)
		return
	case http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Producer  string `json:"producer"`
		Bucket    uint64 `json:"bucket"`
		EnergyKWh string `json:"energy_kwh"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	energy, err := ledger.ParseAmount(req.EnergyKWh)
	if err != nil {
		http.Error(w, "invalid energy_kwh", http.StatusBadRequest)
		return
	}

	started := time.Now()
	err = h.engine.RecordAttestation(r.Context(), caller, req.Producer, req.Bucket, energy)
	metrics.ObserveAttestation(resultLabel(err), time.Since(started))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"producer": req.Producer, "bucket": req.Bucket, "energy_kwh": req.EnergyKWh})
}

func (h *Handler) handleAttestationQuery(w http.ResponseWriter, r *http.Request) {
	producer := r.URL.Query().Get("producer")
	bucketValue := r.URL.Query().Get("bucket")
	if producer == "" || bucketValue == "" {
		http.Error(w, "producer/bucket required", http.StatusBadRequest)
		return
	}
	bucket, err := strconv.ParseUint(bucketValue, 10, 64)
	if err != nil {
		http.Error(w, "invalid bucket", http.StatusBadRequest)
		return
	}
	remaining, recorded := h.engine.MeterRemaining(producer, bucket)
	writeJSON(w, map[string]any{
		"producer":  producer,
		"bucket":    bucket,
		"recorded":  recorded,
		"remaining": remaining.String(),
	})
}

func (h *Handler) handleClaims(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Bucket    uint64 `json:"bucket"`
		EnergyKWh string `json:"energy_kwh"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	energy, err := ledger.ParseAmount(req.EnergyKWh)
	if err != nil {
		http.Error(w, "invalid energy_kwh", http.StatusBadRequest)
		return
	}

	started := time.Now()
	credits, err := h.engine.ClaimCredits(r.Context(), caller, energy, req.Bucket)
	metrics.ObserveClaim(resultLabel(err), time.Since(started))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, map[string]string{"credits": credits.String()})
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		orders := h.engine.Orders()
		views := make([]orderView, 0, len(orders))
		for _, order := range orders {
			views = append(views, newOrderView(order))
		}
		writeJSON(w, views)
	case http.MethodPost:
		h.handlePlaceOrder(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount       string `json:"amount"`
		PricePerUnit string `json:"price_per_unit"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	price, err := ledger.ParseAmount(req.PricePerUnit)
	if err != nil {
		http.Error(w, "invalid price_per_unit", http.StatusBadRequest)
		return
	}

	id, err := h.engine.PlaceSellOrder(r.Context(), caller, amount, price)
	metrics.IncOrderPlaced(resultLabel(err))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"order_id": id})
}

// handleOrderSubpath routes /api/v1/orders/{id}, /api/v1/orders/{id}/fulfill
// and /api/v1/orders/batch-fulfill.
func (h *Handler) handleOrderSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/orders/")
	if rest == "batch-fulfill" {
		h.handleBatchFulfill(w, r)
		return
	}
	if id, found := strings.CutSuffix(rest, "/fulfill"); found {
		h.handleFulfill(w, r, id)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	orderID, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}
	order, err := h.engine.Order(orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, newOrderView(order))
}

func (h *Handler) handleFulfill(w http.ResponseWriter, r *http.Request, idValue string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(idValue, 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req struct {
		Amount  string `json:"amount"`
		Payment string `json:"payment"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	payment, err := ledger.ParseAmount(req.Payment)
	if err != nil {
		http.Error(w, "invalid payment", http.StatusBadRequest)
		return
	}

	started := time.Now()
	err = h.engine.Fulfill(r.Context(), caller, orderID, amount, payment)
	metrics.ObserveTrade(metrics.TradeModeSingle, resultLabel(err), time.Since(started))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	order, getErr := h.engine.Order(orderID)
	if getErr != nil {
		respondDomainError(w, getErr)
		return
	}
	writeJSON(w, newOrderView(order))
}

func (h *Handler) handleBatchFulfill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		OrderIDs       []uint64 `json:"order_ids"`
		Amounts        []string `json:"amounts"`
		ExpectedPrices []string `json:"expected_prices"`
		Payment        string   `json:"payment"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	amounts, err := parseAmounts(req.Amounts)
	if err != nil {
		http.Error(w, "invalid amounts", http.StatusBadRequest)
		return
	}
	prices, err := parseAmounts(req.ExpectedPrices)
	if err != nil {
		http.Error(w, "invalid expected_prices", http.StatusBadRequest)
		return
	}
	payment, err := ledger.ParseAmount(req.Payment)
	if err != nil {
		http.Error(w, "invalid payment", http.StatusBadRequest)
		return
	}

	started := time.Now()
	err = h.engine.FulfillBatch(r.Context(), caller, req.OrderIDs, amounts, prices, payment)
	metrics.ObserveTrade(metrics.TradeModeBatch, resultLabel(err), time.Since(started))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"settled": len(req.OrderIDs)})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	// Zero is allowed: approving zero revokes the allowance.
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	if err := h.engine.Approve(r.Context(), caller, amount); err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, map[string]string{"allowance": h.engine.Allowance(caller).String()})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		To     string `json:"to"`
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	if err := h.engine.Transfer(r.Context(), caller, req.To, amount); err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, map[string]string{"balance": h.engine.BalanceOf(caller).String()})
}

func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	if err := h.engine.SelfBurn(r.Context(), caller, amount); err != nil {
		respondDomainError(w, err)
		return
	}
	metrics.IncBurn("self")
	writeJSON(w, map[string]string{"balance": h.engine.BalanceOf(caller).String()})
}

func (h *Handler) handleAdminMint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Account string `json:"account"`
		Amount  string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	if err := h.engine.AdminMint(r.Context(), caller, req.Account, amount); err != nil {
		respondDomainError(w, err)
		return
	}
	h.logAudit(r, audit.ActionAdminMint, "credits", "", req.Account, map[string]any{"amount": req.Amount})
	writeJSON(w, map[string]string{"balance": h.engine.BalanceOf(req.Account).String()})
}

func (h *Handler) handleAdminBurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Account string `json:"account"`
		Amount  string `json:"amount"`
		Reason  string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	if err := h.engine.AdminBurn(r.Context(), caller, req.Account, amount, req.Reason); err != nil {
		respondDomainError(w, err)
		return
	}
	metrics.IncBurn("admin")
	h.logAudit(r, audit.ActionAdminBurn, "credits", "", req.Account, map[string]any{"amount": req.Amount, "reason": req.Reason})
	writeJSON(w, map[string]string{"balance": h.engine.BalanceOf(req.Account).String()})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	account := strings.TrimPrefix(r.URL.Path, "/api/v1/balances/")
	if account == "" {
		http.Error(w, "account required", http.StatusBadRequest)
		return
	}
	if !h.ensureAccountAccess(w, r, account) {
		return
	}
	writeJSON(w, map[string]string{
		"account":   account,
		"balance":   h.engine.BalanceOf(account).String(),
		"allowance": h.engine.Allowance(account).String(),
	})
}

func (h *Handler) handleSupply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"total_supply": h.engine.TotalSupply().String()})
}

func (h *Handler) handleVaultDeposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	if err := h.engine.DepositFunds(r.Context(), caller, amount); err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, map[string]string{"balance": h.engine.VaultBalanceOf(caller).String()})
}

func (h *Handler) handleVaultBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	account := strings.TrimPrefix(r.URL.Path, "/api/v1/vault/balances/")
	if account == "" {
		http.Error(w, "account required", http.StatusBadRequest)
		return
	}
	if !h.ensureAccountAccess(w, r, account) {
		return
	}
	writeJSON(w, map[string]string{
		"account": account,
		"balance": h.engine.VaultBalanceOf(account).String(),
	})
}

// ensureAccountAccess restricts account-scoped reads to the account owner;
// admins may read any account.
func (h *Handler) ensureAccountAccess(w http.ResponseWriter, r *http.Request, account string) bool {
	switch err := auth.EnsureCaller(r.Context(), account); {
	case err == nil:
		return true
	case errors.Is(err, auth.ErrMissingIdentity):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	default:
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := auth.AddressFromContext(r.Context())
	if address == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return address, true
}

func (h *Handler) logAudit(r *http.Request, action, resourceType, resourceID, account string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	metaJSON, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		MarketID:     h.marketID,
		Actor:        auth.AddressFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Account:      account,
		Metadata:     metaJSON,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

type orderView struct {
	OrderID      uint64 `json:"order_id"`
	Seller       string `json:"seller"`
	Remaining    string `json:"remaining"`
	PricePerUnit string `json:"price_per_unit"`
	Fulfilled    bool   `json:"fulfilled"`
}

func newOrderView(order orderbook.SellOrder) orderView {
	return orderView{
		OrderID:      order.ID,
		Seller:       order.Seller,
		Remaining:    order.Remaining.String(),
		PricePerUnit: order.PricePerUnit.String(),
		Fulfilled:    order.Fulfilled,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}

// writeJSONStatus sets the content type before the status line so the header
// is not dropped by WriteHeader.
func writeJSONStatus(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func parseAmounts(values []string) ([]*big.Int, error) {
	result := make([]*big.Int, 0, len(values))
	for _, value := range values {
		amount, err := ledger.ParseAmount(value)
		if err != nil {
			return nil, err
		}
		result = append(result, amount)
	}
	return result, nil
}

func resultLabel(err error) string {
	if err != nil {
		return metrics.ResultError
	}
	return metrics.ResultSuccess
}

func respondDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, accesscontrol.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, orderbook.ErrInvalidOrder):
		status = http.StatusNotFound
	case errors.Is(err, accesscontrol.ErrEmptyIdentity),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidRecipient),
		errors.Is(err, attestation.ErrInvalidAmount),
		errors.Is(err, attestation.ErrEmptyProducer),
		errors.Is(err, orderbook.ErrInvalidAmount),
		errors.Is(err, orderbook.ErrInvalidPrice),
		errors.Is(err, orderbook.ErrEmptySeller),
		errors.Is(err, params.ErrInvalidRatio),
		errors.Is(err, params.ErrInvalidPrice),
		errors.Is(err, params.ErrEmptyBeneficiary),
		errors.Is(err, funds.ErrEmptyAccount),
		errors.Is(err, funds.ErrInvalidAmount),
		errors.Is(err, market.ErrEmptyBatch),
		errors.Is(err, market.ErrLengthMismatch),
		errors.Is(err, market.ErrEmptyReason):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance),
		errors.Is(err, funds.ErrInsufficientFunds),
		errors.Is(err, attestation.ErrDuplicateAttestation),
		errors.Is(err, attestation.ErrNoAttestation),
		errors.Is(err, attestation.ErrClaimExceedsAttested),
		errors.Is(err, orderbook.ErrPriceBelowFloor),
		errors.Is(err, orderbook.ErrOrderClosed),
		errors.Is(err, market.ErrIncorrectPayment),
		errors.Is(err, market.ErrPriceChanged),
		errors.Is(err, market.ErrSellerUnderfunded),
		errors.Is(err, market.ErrBelowMintingThreshold),
		errors.Is(err, market.ErrProofRejected),
		errors.Is(err, market.ErrPaymentForwardingFailed):
		status = http.StatusConflict
	case errors.Is(err, params.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, market.ErrReentrantCall):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
