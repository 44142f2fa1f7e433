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

// CreditHandler handles credit ledger APIs.
type CreditHandler struct {
	credit         *application.CreditService
	receivables    *application.ReceivablesService
	stationChecker auth.StationTenantChecker
	auditLogger    audit.Logger
}

// NewCreditHandler constructs a handler.
func NewCreditHandler(credit *application.CreditService, receivables *application.ReceivablesService, stationChecker auth.StationTenantChecker, auditLogger audit.Logger) (*CreditHandler, error) {
	if credit == nil || receivables == nil {
		return nil, errors.New("credit handler: nil service")
	}
	return &CreditHandler{credit: credit, receivables: receivables, stationChecker: stationChecker, auditLogger: auditLogger}, nil
}

// ServeHTTP routes credit APIs.
func (h *CreditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/credit/extend" && r.Method == http.MethodPost:
		h.handleExtend(w, r)
	case r.URL.Path == "/api/v1/credit/settle" && r.Method == http.MethodPost:
		h.handleSettle(w, r)
	case r.URL.Path == "/api/v1/creditors" && r.Method == http.MethodPost:
		h.handleCreateCreditor(w, r)
	case r.URL.Path == "/api/v1/creditors" && r.Method == http.MethodGet:
		h.handleListCreditors(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *CreditHandler) handleExtend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveCreditOp("extend", result, time.Since(start))
	}()

	var req struct {
		CreditorID    string          `json:"creditor_id"`
		Amount        decimal.Decimal `json:"amount"`
		FuelType      string          `json:"fuel_type"`
		Litres        decimal.Decimal `json:"litres"`
		PricePerLitre decimal.Decimal `json:"price_per_litre"`
		Date          string          `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "invalid json")
		return
	}
	date, err := time.Parse(dayLayout, req.Date)
	if err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "date must be YYYY-MM-DD")
		return
	}
	if err := h.ensureCreditorTenant(r, req.CreditorID); err != nil {
		result = metrics.ResultError
		respondCreditorScopeError(w, err)
		return
	}

	entry, err := h.credit.Extend(r.Context(), application.ExtendCreditInput{
		CreditorID:    req.CreditorID,
		Amount:        req.Amount,
		FuelType:      req.FuelType,
		Litres:        req.Litres,
		PricePerLitre: req.PricePerLitre,
		Date:          date,
	})
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transactionResponse(entry))
	logAudit(r, h.auditLogger, entry.StationID, "credit_transaction", entry.ID, "credit.extend", map[string]any{
		"creditor_id": entry.CreditorID,
		"amount":      entry.Amount.String(),
	})
}

func (h *CreditHandler) handleSettle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveCreditOp("settle", result, time.Since(start))
	}()

	var req struct {
		CreditorID string          `json:"creditor_id"`
		Amount     decimal.Decimal `json:"amount"`
		Date       string          `json:"date"`
		Reference  string          `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "invalid json")
		return
	}
	date, err := time.Parse(dayLayout, req.Date)
	if err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "date must be YYYY-MM-DD")
		return
	}
	if err := h.ensureCreditorTenant(r, req.CreditorID); err != nil {
		result = metrics.ResultError
		respondCreditorScopeError(w, err)
		return
	}

	entry, err := h.credit.Settle(r.Context(), application.SettleCreditInput{
		CreditorID: req.CreditorID,
		Amount:     req.Amount,
		Date:       date,
		Reference:  req.Reference,
	})
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transactionResponse(entry))
	logAudit(r, h.auditLogger, entry.StationID, "credit_transaction", entry.ID, "credit.settle", map[string]any{
		"creditor_id": entry.CreditorID,
		"amount":      entry.Amount.String(),
		"reference":   entry.Reference,
	})
}

func (h *CreditHandler) handleCreateCreditor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StationID        string          `json:"station_id"`
		Name             string          `json:"name"`
		CreditLimit      decimal.Decimal `json:"credit_limit"`
		CreditPeriodDays int             `json:"credit_period_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid json")
		return
	}
	if err := ensureStationTenant(r, h.stationChecker, req.StationID); err != nil {
		respondTenantError(w, err)
		return
	}
	creditor, err := h.credit.CreateCreditor(r.Context(), application.CreateCreditorInput{
		StationID:        req.StationID,
		Name:             req.Name,
		CreditLimit:      req.CreditLimit,
		CreditPeriodDays: req.CreditPeriodDays,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, creditorResponse(creditor))
	logAudit(r, h.auditLogger, creditor.StationID, "creditor", creditor.ID, "creditor.create", map[string]any{
		"name":         creditor.Name,
		"credit_limit": creditor.CreditLimit.String(),
	})
}

func (h *CreditHandler) handleListCreditors(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		respondBadRequest(w, "station_id is required")
		return
	}
	if err := ensureStationTenant(r, h.stationChecker, stationID); err != nil {
		respondTenantError(w, err)
		return
	}
	creditors, err := h.receivables.Creditors(r.Context(), stationID)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(creditors))
	for i := range creditors {
		resp = append(resp, creditorResponse(&creditors[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

// ensureCreditorTenant resolves the creditor's owning station and verifies
// the caller's tenant scope before any balance mutation. The creditor id
// comes straight from the client and must not cross tenants.
func (h *CreditHandler) ensureCreditorTenant(r *http.Request, creditorID string) error {
	if creditorID == "" {
		return nil
	}
	creditor, err := h.receivables.Creditor(r.Context(), creditorID)
	if err != nil {
		return err
	}
	return ensureStationTenant(r, h.stationChecker, creditor.StationID)
}

func respondCreditorScopeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ledger.ErrCreditorNotFound) {
		respondError(w, err)
		return
	}
	respondTenantError(w, err)
}

func transactionResponse(t *ledger.CreditTransaction) map[string]any {
	resp := map[string]any{
		"id":               t.ID,
		"station_id":       t.StationID,
		"creditor_id":      t.CreditorID,
		"type":             t.Type,
		"amount":           t.Amount,
		"transaction_date": t.TransactionDate.Format(dayLayout),
		"created_at":       t.CreatedAt,
	}
	if t.FuelType != "" {
		resp["fuel_type"] = t.FuelType
		resp["litres"] = t.Litres
		resp["price_per_litre"] = t.PricePerLitre
	}
	if t.ReadingID != "" {
		resp["reading_id"] = t.ReadingID
	}
	if t.Reference != "" {
		resp["reference"] = t.Reference
	}
	return resp
}

func creditorResponse(c *ledger.Creditor) map[string]any {
	return map[string]any{
		"id":                 c.ID,
		"station_id":         c.StationID,
		"name":               c.Name,
		"credit_limit":       c.CreditLimit,
		"credit_period_days": c.CreditPeriodDays,
		"balance":            c.Balance,
		"active":             c.Active,
		"updated_at":         c.UpdatedAt,
	}
}
