package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fuelstation-cloud/internal/audit"
	"fuelstation-cloud/internal/auth"
	"fuelstation-cloud/internal/ledger/application"
	ledger "fuelstation-cloud/internal/ledger/domain"
	"fuelstation-cloud/internal/observability/metrics"
)

const dayLayout = "2006-01-02"

// ReadingHandler handles reading submissions.
type ReadingHandler struct {
	service        *application.ReadingService
	stationChecker auth.StationTenantChecker
	auditLogger    audit.Logger
}

// NewReadingHandler constructs a handler.
func NewReadingHandler(service *application.ReadingService, stationChecker auth.StationTenantChecker, auditLogger audit.Logger) (*ReadingHandler, error) {
	if service == nil {
		return nil, errors.New("reading handler: nil service")
	}
	return &ReadingHandler{service: service, stationChecker: stationChecker, auditLogger: auditLogger}, nil
}

// ServeHTTP handles POST /api/v1/readings.
func (h *ReadingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReadingSubmit(result, time.Since(start))
	}()

	var req struct {
		StationID    string          `json:"station_id"`
		NozzleID     string          `json:"nozzle_id"`
		ReadingDate  string          `json:"reading_date"`
		ReadingValue decimal.Decimal `json:"reading_value"`
		Cash         decimal.Decimal `json:"cash_amount"`
		Online       decimal.Decimal `json:"online_amount"`
		Credit       decimal.Decimal `json:"credit_amount"`
		CreditorID   string          `json:"creditor_id"`
		IsInitial    bool            `json:"is_initial"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "invalid json")
		return
	}
	if req.NozzleID == "" {
		result = metrics.ResultError
		respondBadRequest(w, "nozzle_id is required")
		return
	}
	readingDate, err := time.Parse(dayLayout, req.ReadingDate)
	if err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "reading_date must be YYYY-MM-DD")
		return
	}
	if err := ensureStationTenant(r, h.stationChecker, req.StationID); err != nil {
		result = metrics.ResultError
		respondTenantError(w, err)
		return
	}

	reading, err := h.service.Submit(r.Context(), application.SubmitReadingInput{
		StationID:    req.StationID,
		NozzleID:     req.NozzleID,
		ReadingDate:  readingDate,
		ReadingValue: req.ReadingValue,
		Split: ledger.PaymentSplit{
			Cash:       req.Cash,
			Online:     req.Online,
			Credit:     req.Credit,
			CreditorID: req.CreditorID,
		},
		IsInitial: req.IsInitial,
		EnteredBy: auth.SubjectFromContext(r.Context()),
	})
	if err != nil {
		result = metrics.ResultError
		if mapping, ok := errorCodes[rootSentinel(err)]; ok {
			metrics.IncReadingRejected(mapping.code)
		}
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, readingResponse(reading))
	logAudit(r, h.auditLogger, reading.StationID, "reading", reading.ID, "reading.submit", map[string]any{
		"nozzle_id":    reading.NozzleID,
		"reading_date": reading.ReadingDate.Format(dayLayout),
		"litres_sold":  reading.LitresSold.String(),
		"total_amount": reading.TotalAmount.String(),
		"is_initial":   reading.IsInitial,
	})
}

func readingResponse(r *ledger.Reading) map[string]any {
	resp := map[string]any{
		"id":               r.ID,
		"station_id":       r.StationID,
		"nozzle_id":        r.NozzleID,
		"entered_by":       r.EnteredBy,
		"reading_date":     r.ReadingDate.Format(dayLayout),
		"reading_value":    r.ReadingValue,
		"previous_reading": r.PreviousReading,
		"litres_sold":      r.LitresSold,
		"price_per_litre":  r.PricePerLitre,
		"total_amount":     r.TotalAmount,
		"cash_amount":      r.CashAmount,
		"online_amount":    r.OnlineAmount,
		"credit_amount":    r.CreditAmount,
		"is_initial":       r.IsInitial,
		"created_at":       r.CreatedAt,
	}
	if r.CreditorID != "" {
		resp["creditor_id"] = r.CreditorID
	}
	return resp
}

// rootSentinel finds the mapped sentinel an error wraps, if any.
func rootSentinel(err error) error {
	for sentinel := range errorCodes {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return err
}

func logAudit(r *http.Request, logger audit.Logger, stationID, resourceType, resourceID, action string, meta map[string]any) {
	if logger == nil {
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = logger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		StationID:    stationID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
