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

// SettlementHandler handles day-end settlement submissions.
type SettlementHandler struct {
	service        *application.SettlementService
	stationChecker auth.StationTenantChecker
	auditLogger    audit.Logger
}

// NewSettlementHandler constructs a handler.
func NewSettlementHandler(service *application.SettlementService, stationChecker auth.StationTenantChecker, auditLogger audit.Logger) (*SettlementHandler, error) {
	if service == nil {
		return nil, errors.New("settlement handler: nil service")
	}
	return &SettlementHandler{service: service, stationChecker: stationChecker, auditLogger: auditLogger}, nil
}

// ServeHTTP handles POST /api/v1/settlements.
func (h *SettlementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSettlementRecord(result, time.Since(start))
	}()

	var req struct {
		StationID  string          `json:"station_id"`
		Day        string          `json:"day"`
		ActualCash decimal.Decimal `json:"actual_cash"`
		Notes      string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "invalid json")
		return
	}
	if req.StationID == "" {
		result = metrics.ResultError
		respondBadRequest(w, "station_id is required")
		return
	}
	day, err := time.Parse(dayLayout, req.Day)
	if err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "day must be YYYY-MM-DD")
		return
	}
	if err := ensureStationTenant(r, h.stationChecker, req.StationID); err != nil {
		result = metrics.ResultError
		respondTenantError(w, err)
		return
	}

	settlement, err := h.service.Record(r.Context(), application.RecordSettlementInput{
		StationID:  req.StationID,
		Day:        day,
		ActualCash: req.ActualCash,
		Notes:      req.Notes,
		RecordedBy: auth.SubjectFromContext(r.Context()),
	})
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}

	metrics.IncSettlementStatus(settlement.Status)
	respondJSON(w, http.StatusCreated, settlementResponse(settlement))
	logAudit(r, h.auditLogger, settlement.StationID, "settlement", settlement.ID, "settlement.record", map[string]any{
		"day":      settlement.Day.Format(dayLayout),
		"status":   settlement.Status,
		"variance": settlement.Variance.String(),
		"version":  settlement.Version,
	})
}

func settlementResponse(s *ledger.Settlement) map[string]any {
	return map[string]any{
		"id":               s.ID,
		"station_id":       s.StationID,
		"day":              s.Day.Format(dayLayout),
		"expected_cash":    s.ExpectedCash,
		"actual_cash":      s.ActualCash,
		"variance":         s.Variance,
		"variance_percent": s.VariancePercent,
		"status":           s.Status,
		"row_status":       s.RowStatus,
		"version":          s.Version,
		"notes":            s.Notes,
		"recorded_by":      s.RecordedBy,
		"created_at":       s.CreatedAt,
	}
}
