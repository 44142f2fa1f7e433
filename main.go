package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	apihttp "fuelstation-cloud/internal/api/http"
	"fuelstation-cloud/internal/audit"
	"fuelstation-cloud/internal/auth"
	directoryrepo "fuelstation-cloud/internal/directory/infrastructure/postgres"
	ledgerapp "fuelstation-cloud/internal/ledger/application"
	ledgerrepo "fuelstation-cloud/internal/ledger/infrastructure/postgres"
	ledgerinterfaces "fuelstation-cloud/internal/ledger/interfaces"
	ledgernotify "fuelstation-cloud/internal/ledger/notify"
	"fuelstation-cloud/internal/observability/metrics"
	"fuelstation-cloud/internal/plan"
	planrepo "fuelstation-cloud/internal/plan/infrastructure/postgres"
	pricingapp "fuelstation-cloud/internal/pricing/application"
	pricingrepo "fuelstation-cloud/internal/pricing/infrastructure/postgres"
	pricinginterfaces "fuelstation-cloud/internal/pricing/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	stationChecker := auth.NewStationChecker(db)
	auditRepo := audit.NewRepository(db)

	stationRepo := directoryrepo.NewStationRepository(db)
	shiftRepo := directoryrepo.NewShiftRepository(db)
	planProvider := planrepo.NewLimitsRepository(db, plan.Limits{
		BackdatedDays:        cfg.BackdatedDays,
		CreditFeatureEnabled: cfg.CreditFeatureEnabled,
	})

	priceRepo := pricingrepo.NewPriceRepository(db)
	priceService, err := pricingapp.NewPriceService(priceRepo, nil)
	if err != nil {
		logger.Fatalf("price service error: %v", err)
	}
	priceHandler, err := pricinginterfaces.NewPriceHandler(priceService, stationChecker, auditRepo)
	if err != nil {
		logger.Fatalf("price handler error: %v", err)
	}

	store, err := ledgerrepo.NewStore(db)
	if err != nil {
		logger.Fatalf("ledger store error: %v", err)
	}
	reportStore, err := ledgerrepo.NewReportStore(db)
	if err != nil {
		logger.Fatalf("report store error: %v", err)
	}

	creditService, err := ledgerapp.NewCreditService(store, nil, logger)
	if err != nil {
		logger.Fatalf("credit service error: %v", err)
	}
	readingService, err := ledgerapp.NewReadingService(store, priceService, stationRepo, shiftRepo, planProvider, creditService, nil)
	if err != nil {
		logger.Fatalf("reading service error: %v", err)
	}

	settlementCfg, err := ledgerapp.LoadSettlementConfig()
	if err != nil {
		logger.Fatalf("settlement config error: %v", err)
	}
	var notifier ledgernotify.Notifier
	if settlementCfg.WebhookURL != "" {
		notifier = ledgernotify.NewWebhookNotifier(settlementCfg.WebhookURL)
	}
	publisher := ledgerinterfaces.NewLoggingPublisher(logger, notifier)
	settlementService, err := ledgerapp.NewSettlementService(store, settlementCfg.ThresholdsFor, publisher, nil)
	if err != nil {
		logger.Fatalf("settlement service error: %v", err)
	}
	receivablesService, err := ledgerapp.NewReceivablesService(reportStore, nil)
	if err != nil {
		logger.Fatalf("receivables service error: %v", err)
	}

	readingHandler, err := ledgerinterfaces.NewReadingHandler(readingService, stationChecker, auditRepo)
	if err != nil {
		logger.Fatalf("reading handler error: %v", err)
	}
	creditHandler, err := ledgerinterfaces.NewCreditHandler(creditService, receivablesService, stationChecker, auditRepo)
	if err != nil {
		logger.Fatalf("credit handler error: %v", err)
	}
	settlementHandler, err := ledgerinterfaces.NewSettlementHandler(settlementService, stationChecker, auditRepo)
	if err != nil {
		logger.Fatalf("settlement handler error: %v", err)
	}
	reportsHandler, err := ledgerinterfaces.NewReportsHandler(receivablesService, stationChecker, auditRepo)
	if err != nil {
		logger.Fatalf("reports handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/readings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			apihttp.NewReadingsHandler(db, stationChecker).ServeHTTP(w, r)
			return
		}
		readingHandler.ServeHTTP(w, r)
	})
	mux.Handle("/api/v1/prices", priceHandler)
	mux.Handle("/api/v1/prices/resolve", priceHandler)
	mux.Handle("/api/v1/credit/extend", creditHandler)
	mux.Handle("/api/v1/credit/settle", creditHandler)
	mux.Handle("/api/v1/creditors", creditHandler)
	mux.HandleFunc("/api/v1/settlements", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			apihttp.NewSettlementsHandler(db, stationChecker).ServeHTTP(w, r)
			return
		}
		settlementHandler.ServeHTTP(w, r)
	})
	mux.Handle("/api/v1/reports/", reportsHandler)
	mux.Handle("/api/v1/exports/settlements.csv", apihttp.NewExportSettlementsCSVHandler(db, stationChecker))
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
	DatabaseURL          string
	HTTPAddr             string
	JWTSecret            string
	BackdatedDays        int
	CreditFeatureEnabled bool
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:          getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:             getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:            getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		BackdatedDays:        getenvIntDefault("PLAN_BACKDATED_DAYS", 1),
		CreditFeatureEnabled: getenvBoolDefault("PLAN_CREDIT_ENABLED", true),
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

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
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
