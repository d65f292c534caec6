package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	accesscontrol "carbonmarket-cloud/internal/accesscontrol/domain"
	apihttp "carbonmarket-cloud/internal/api/http"
	attestation "carbonmarket-cloud/internal/attestation/domain"
	"carbonmarket-cloud/internal/audit"
	"carbonmarket-cloud/internal/auth"
	"carbonmarket-cloud/internal/eventing"
	"carbonmarket-cloud/internal/eventing/eventbus"
	eventingrepo "carbonmarket-cloud/internal/eventing/infrastructure/postgres"
	funds "carbonmarket-cloud/internal/funds/domain"
	ledger "carbonmarket-cloud/internal/ledger/domain"
	marketapp "carbonmarket-cloud/internal/market/application"
	markethttp "carbonmarket-cloud/internal/market/interfaces/http"
	"carbonmarket-cloud/internal/observability/metrics"
	orderbook "carbonmarket-cloud/internal/orderbook/domain"
	paramsapp "carbonmarket-cloud/internal/params/application"
	params "carbonmarket-cloud/internal/params/domain"
	reconcileapp "carbonmarket-cloud/internal/reconcile/application"
	reconcilerepo "carbonmarket-cloud/internal/reconcile/infrastructure/postgres"
	"carbonmarket-cloud/internal/reconcile/notify"
	tradelogrepo "carbonmarket-cloud/internal/tradelog/infrastructure/postgres"
	tradeloginterfaces "carbonmarket-cloud/internal/tradelog/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	marketCfg, err := paramsapp.LoadConfig()
	if err != nil {
		logger.Fatalf("market config error: %v", err)
	}
	initialParams, err := marketCfg.Parameters()
	if err != nil {
		logger.Fatalf("market parameters error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	baseBus := eventbus.NewInMemoryBus()
	registry := eventing.NewRegistry()
	registry.Register(marketapp.DeviceAllowListed{})
	registry.Register(marketapp.ParameterUpdated{})
	registry.Register(marketapp.ProductionAttested{})
	registry.Register(marketapp.CreditsMinted{})
	registry.Register(marketapp.CreditsBurned{})
	registry.Register(marketapp.CreditsTransferred{})
	registry.Register(marketapp.SellOrderPlaced{})
	registry.Register(marketapp.OrderFulfilled{})
	registry.Register(marketapp.BatchSettled{})

	outboxStore := eventingrepo.NewOutboxStore(db)
	processedStore := eventingrepo.NewProcessedStore(db)
	dlqStore := eventingrepo.NewDLQStore(db)
	dispatcher := eventing.NewDispatcher(baseBus, outboxStore, registry, dlqStore)
	publisher := eventing.NewPublisher(outboxStore, dispatcher, cfg.MarketID, baseBus)

	deviceRegistry, err := accesscontrol.NewRegistry(marketCfg.AdminAddress)
	if err != nil {
		logger.Fatalf("device registry error: %v", err)
	}
	paramStore, err := params.NewStore(deviceRegistry, initialParams)
	if err != nil {
		logger.Fatalf("parameter store error: %v", err)
	}

	engine, err := marketapp.NewEngine(marketapp.Deps{
		Registry:      deviceRegistry,
		Params:        paramStore,
		Meters:        attestation.NewBook(),
		Ledger:        ledger.New(),
		Orders:        orderbook.NewBook(),
		Vault:         funds.NewVault(),
		Bus:           publisher,
		Logger:        logger,
		EngineAddress: marketCfg.EngineAddress,
	})
	if err != nil {
		logger.Fatalf("market engine error: %v", err)
	}

	tradeRepo := tradelogrepo.NewTradeRepository(db)
	tradeConsumer, err := tradeloginterfaces.NewOrderFulfilledConsumer(tradeRepo, logger)
	if err != nil {
		logger.Fatalf("trade consumer error: %v", err)
	}
	tradeConsumer.Register(baseBus, processedStore)

	var notifier notify.Notifier
	if cfg.ReconcileWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.ReconcileWebhookURL)
	}
	checker, err := reconcileapp.NewChecker(reconcileapp.Deps{
		Market:             engine,
		DB:                 db,
		Runs:               reconcilerepo.NewRunRepository(db),
		Notifier:           notifier,
		Logger:             logger,
		MarketID:           cfg.MarketID,
		FulfilledEventType: eventbus.EventTypeOf[marketapp.OrderFulfilled](),
		Thresholds: reconcileapp.Thresholds{
			MaxOutboxPending: cfg.MaxOutboxPending,
			MaxDLQDepth:      cfg.MaxDLQDepth,
			MaxJournalLag:    cfg.MaxJournalLag,
		},
	})
	if err != nil {
		logger.Fatalf("reconcile checker error: %v", err)
	}
	go func() {
		ticker := time.NewTicker(cfg.ReconcileInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := checker.Run(context.Background()); err != nil {
				logger.Printf("reconcile run error: %v", err)
			}
		}
	}()

	// Redeliver outbox records that failed the inline dispatch.
	go func() {
		ticker := time.NewTicker(cfg.DispatchInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := dispatcher.Dispatch(context.Background(), 100); err != nil {
				logger.Printf("outbox dispatch error: %v", err)
			}
		}
	}()

	marketHandler, err := markethttp.NewHandler(engine, auditRepo, cfg.MarketID)
	if err != nil {
		logger.Fatalf("market handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	marketHandler.Register(mux)
	mux.Handle("/api/v1/trades", apihttp.NewTradesHandler(tradeRepo))
	mux.Handle("/api/v1/reports/trades.pdf", apihttp.NewTradeReportHandler(tradeRepo))
	mux.Handle("/api/v1/reports/trades.xlsx", apihttp.NewTradeReportHandler(tradeRepo))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL         string
	HTTPAddr            string
	MarketID            string
	JWTSecret           string
	DispatchInterval    time.Duration
	ReconcileInterval   time.Duration
	ReconcileWebhookURL string
	MaxOutboxPending    int
	MaxDLQDepth         int
	MaxJournalLag       int
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:         getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:            getenvDefault("HTTP_ADDR", ":8080"),
		MarketID:            getenvDefault("MARKET_ID", "market-demo"),
		JWTSecret:           getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		DispatchInterval:    getenvDuration("OUTBOX_DISPATCH_INTERVAL", 30*time.Second),
		ReconcileInterval:   getenvDuration("RECONCILE_INTERVAL", 5*time.Minute),
		ReconcileWebhookURL: getenvDefault("RECONCILE_WEBHOOK_URL", ""),
		MaxOutboxPending:    getenvIntDefault("RECONCILE_MAX_OUTBOX_PENDING", 1000),
		MaxDLQDepth:         getenvIntDefault("RECONCILE_MAX_DLQ_DEPTH", 0),
		MaxJournalLag:       getenvIntDefault("RECONCILE_MAX_JOURNAL_LAG", 100),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
