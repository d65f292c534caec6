package apihttp

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carbonmarket-cloud/internal/observability/metrics"
	tradelog "carbonmarket-cloud/internal/tradelog/domain"
	tradeifaces "carbonmarket-cloud/internal/tradelog/interfaces"
)

// TradesHandler serves trade log queries.
type TradesHandler struct {
	repo tradelog.Repository
}

// NewTradesHandler constructs a TradesHandler.
func NewTradesHandler(repo tradelog.Repository) *TradesHandler {
	return &TradesHandler{repo: repo}
}

// ServeHTTP handles GET /api/v1/trades.
func (h *TradesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.repo == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	limit := 100
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	trades, err := h.repo.List(r.Context(), limit)
	if err != nil {
		http.Error(w, "query trades error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tradeViews(trades))
}

// TradeReportHandler serves trade report exports.
type TradeReportHandler struct {
	repo tradelog.Repository
}

// NewTradeReportHandler constructs a TradeReportHandler.
func NewTradeReportHandler(repo tradelog.Repository) *TradeReportHandler {
	return &TradeReportHandler{repo: repo}
}

// ServeHTTP handles GET /api/v1/reports/trades.{pdf,xlsx}.
func (h *TradeReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.repo == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	var format string
	switch {
	case strings.HasSuffix(r.URL.Path, "/trades.pdf"):
		format = "pdf"
	case strings.HasSuffix(r.URL.Path, "/trades.xlsx"):
		format = "xlsx"
	default:
		http.Error(w, "unknown report", http.StatusNotFound)
		return
	}

	started := time.Now()
	trades, err := h.repo.List(r.Context(), 1000)
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(started))
		http.Error(w, "query trades error", http.StatusInternalServerError)
		return
	}

	generatedAt := time.Now().UTC()
	var payload []byte
	var contentType string
	switch format {
	case "pdf":
		payload, err = tradeifaces.BuildTradesPDF(trades, generatedAt)
		contentType = "application/pdf"
	case "xlsx":
		payload, err = tradeifaces.BuildTradesXLSX(trades, generatedAt)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(started))
		http.Error(w, "render report error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveReportExport(format, metrics.ResultSuccess, time.Since(started))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=trades."+format)
	_, _ = w.Write(payload)
}

type tradeView struct {
	ID           string    `json:"id"`
	OrderID      uint64    `json:"order_id"`
	Buyer        string    `json:"buyer"`
	Seller       string    `json:"seller"`
	Amount       string    `json:"amount"`
	PricePerUnit string    `json:"price_per_unit"`
	TotalPrice   string    `json:"total_price"`
	Closed       bool      `json:"closed"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func tradeViews(trades []tradelog.Trade) []tradeView {
	views := make([]tradeView, 0, len(trades))
	for _, trade := range trades {
		views = append(views, tradeView{
			ID:           trade.ID,
			OrderID:      trade.OrderID,
			Buyer:        trade.Buyer,
			Seller:       trade.Seller,
			Amount:       trade.Amount,
			PricePerUnit: trade.PricePerUnit,
			TotalPrice:   trade.TotalPrice,
			Closed:       trade.Closed,
			OccurredAt:   trade.OccurredAt,
		})
	}
	return views
}
