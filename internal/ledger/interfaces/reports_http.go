package interfaces

import (
	"errors"
	"net/http"
	"time"

	"fuelstation-cloud/internal/audit"
	"fuelstation-cloud/internal/auth"
	"fuelstation-cloud/internal/ledger/application"
	"fuelstation-cloud/internal/observability/metrics"
)

// ReportsHandler serves receivables and income reports plus day exports.
type ReportsHandler struct {
	service        *application.ReceivablesService
	stationChecker auth.StationTenantChecker
	auditLogger    audit.Logger
}

// NewReportsHandler constructs a handler.
func NewReportsHandler(service *application.ReceivablesService, stationChecker auth.StationTenantChecker, auditLogger audit.Logger) (*ReportsHandler, error) {
	if service == nil {
		return nil, errors.New("reports handler: nil service")
	}
	return &ReportsHandler{service: service, stationChecker: stationChecker, auditLogger: auditLogger}, nil
}

// ServeHTTP routes report APIs under /api/v1/reports.
func (h *ReportsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/reports/aging":
		h.handleAging(w, r)
	case "/api/v1/reports/income":
		h.handleIncome(w, r)
	case "/api/v1/reports/day/export.pdf":
		h.handleDayExport(w, r, "pdf")
	case "/api/v1/reports/day/export.xlsx":
		h.handleDayExport(w, r, "xlsx")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ReportsHandler) handleAging(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReport("aging", result, time.Since(start))
	}()

	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		result = metrics.ResultError
		respondBadRequest(w, "station_id is required")
		return
	}
	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(dayLayout, raw)
		if err != nil {
			result = metrics.ResultError
			respondBadRequest(w, "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	if err := ensureStationTenant(r, h.stationChecker, stationID); err != nil {
		result = metrics.ResultError
		respondTenantError(w, err)
		return
	}

	report, err := h.service.Aging(r.Context(), stationID, asOf)
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *ReportsHandler) handleIncome(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReport("income", result, time.Since(start))
	}()

	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		result = metrics.ResultError
		respondBadRequest(w, "station_id is required")
		return
	}
	from, err := time.Parse(dayLayout, r.URL.Query().Get("from"))
	if err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse(dayLayout, r.URL.Query().Get("to"))
	if err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "to must be YYYY-MM-DD")
		return
	}
	if err := ensureStationTenant(r, h.stationChecker, stationID); err != nil {
		result = metrics.ResultError
		respondTenantError(w, err)
		return
	}

	// The period is inclusive of both days.
	statement, err := h.service.Income(r.Context(), stationID, from, to.AddDate(0, 0, 1))
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statement)
}

func (h *ReportsHandler) handleDayExport(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(format, result, time.Since(start))
	}()

	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		result = metrics.ResultError
		respondBadRequest(w, "station_id is required")
		return
	}
	day, err := time.Parse(dayLayout, r.URL.Query().Get("day"))
	if err != nil {
		result = metrics.ResultError
		respondBadRequest(w, "day must be YYYY-MM-DD")
		return
	}
	if err := ensureStationTenant(r, h.stationChecker, stationID); err != nil {
		result = metrics.ResultError
		respondTenantError(w, err)
		return
	}

	report, err := h.service.DayReport(r.Context(), stationID, day)
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = BuildDayReportPDF(report)
		contentType = "application/pdf"
	default:
		data, err = BuildDayReportXLSX(report)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		result = metrics.ResultError
		respondJSON(w, http.StatusInternalServerError, map[string]errorBody{
			"error": {Code: "EXPORT_FAILED", Message: "export " + format + " error"},
		})
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	logAudit(r, h.auditLogger, stationID, "day_report", report.Day.Format(dayLayout), "report.export", map[string]any{
		"format": format,
		"day":    report.Day.Format(dayLayout),
	})
}
