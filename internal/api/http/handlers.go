package apihttp

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"fuelstation-cloud/internal/auth"
)

const dayLayout = "2006-01-02"

// ReadingsHandler serves reading history queries.
type ReadingsHandler struct {
	db             *sql.DB
	stationChecker auth.StationTenantChecker
}

// NewReadingsHandler constructs a ReadingsHandler.
func NewReadingsHandler(db *sql.DB, stationChecker auth.StationTenantChecker) *ReadingsHandler {
	return &ReadingsHandler{db: db, stationChecker: stationChecker}
}

// ServeHTTP handles GET /api/v1/readings.
func (h *ReadingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		http.Error(w, "station_id is required", http.StatusBadRequest)
		return
	}
	if err := ensureStationTenant(r, h.stationChecker, stationID); err != nil {
		respondTenantError(w, err)
		return
	}

	from, to, err := parseDayRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	nozzleID := r.URL.Query().Get("nozzle_id")

	rows, err := queryReadings(r.Context(), h.db, stationID, nozzleID, from, to)
	if err != nil {
		http.Error(w, "query readings error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// SettlementsHandler serves settlement history queries.
type SettlementsHandler struct {
	db             *sql.DB
	stationChecker auth.StationTenantChecker
}

// NewSettlementsHandler constructs a SettlementsHandler.
func NewSettlementsHandler(db *sql.DB, stationChecker auth.StationTenantChecker) *SettlementsHandler {
	return &SettlementsHandler{db: db, stationChecker: stationChecker}
}

// ServeHTTP handles GET /api/v1/settlements.
func (h *SettlementsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		http.Error(w, "station_id is required", http.StatusBadRequest)
		return
	}
	if err := ensureStationTenant(r, h.stationChecker, stationID); err != nil {
		respondTenantError(w, err)
		return
	}

	from, to, err := parseDayRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	includeSuperseded := r.URL.Query().Get("include_superseded") == "true"

	rows, err := querySettlements(r.Context(), h.db, stationID, from, to, includeSuperseded)
	if err != nil {
		http.Error(w, "query settlements error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// ExportSettlementsCSVHandler serves settlement CSV exports.
type ExportSettlementsCSVHandler struct {
	db             *sql.DB
	stationChecker auth.StationTenantChecker
}

// NewExportSettlementsCSVHandler constructs a ExportSettlementsCSVHandler.
func NewExportSettlementsCSVHandler(db *sql.DB, stationChecker auth.StationTenantChecker) *ExportSettlementsCSVHandler {
	return &ExportSettlementsCSVHandler{db: db, stationChecker: stationChecker}
}

// ServeHTTP handles GET /api/v1/exports/settlements.csv.
func (h *ExportSettlementsCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		http.Error(w, "station_id is required", http.StatusBadRequest)
		return
	}
	if err := ensureStationTenant(r, h.stationChecker, stationID); err != nil {
		respondTenantError(w, err)
		return
	}

	from, to, err := parseDayRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := querySettlements(r.Context(), h.db, stationID, from, to, true)
	if err != nil {
		http.Error(w, "query settlements error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"station_id",
		"day",
		"expected_cash",
		"actual_cash",
		"variance",
		"variance_percent",
		"status",
		"row_status",
		"version",
		"recorded_by",
		"created_at",
	})
	for _, row := range rows {
		_ = writer.Write([]string{
			row.StationID,
			row.Day.Format(dayLayout),
			row.ExpectedCash.StringFixed(2),
			row.ActualCash.StringFixed(2),
			row.Variance.StringFixed(2),
			row.VariancePercent.StringFixed(2),
			row.Status,
			row.RowStatus,
			strconv.Itoa(row.Version),
			row.RecordedBy,
			row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writer.Flush()
}

type readingRow struct {
	ID              string          `json:"id"`
	StationID       string          `json:"station_id"`
	NozzleID        string          `json:"nozzle_id"`
	EnteredBy       string          `json:"entered_by"`
	ReadingDate     string          `json:"reading_date"`
	ReadingValue    decimal.Decimal `json:"reading_value"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	LitresSold      decimal.Decimal `json:"litres_sold"`
	PricePerLitre   decimal.Decimal `json:"price_per_litre"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CashAmount      decimal.Decimal `json:"cash_amount"`
	OnlineAmount    decimal.Decimal `json:"online_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	CreditorID      string          `json:"creditor_id,omitempty"`
	IsInitial       bool            `json:"is_initial"`
	CreatedAt       time.Time       `json:"created_at"`
}

type settlementRow struct {
	ID              string          `json:"id"`
	StationID       string          `json:"station_id"`
	Day             time.Time       `json:"day"`
	ExpectedCash    decimal.Decimal `json:"expected_cash"`
	ActualCash      decimal.Decimal `json:"actual_cash"`
	Variance        decimal.Decimal `json:"variance"`
	VariancePercent decimal.Decimal `json:"variance_percent"`
	Status          string          `json:"status"`
	RowStatus       string          `json:"row_status"`
	Version         int             `json:"version"`
	Notes           string          `json:"notes,omitempty"`
	RecordedBy      string          `json:"recorded_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

func queryReadings(ctx context.Context, db *sql.DB, stationID, nozzleID string, from, to time.Time) ([]readingRow, error) {
	query := `
SELECT
	id, station_id, nozzle_id, entered_by, reading_date, reading_value, previous_reading,
	litres_sold, price_per_litre, total_amount, cash_amount, online_amount, credit_amount,
	creditor_id, is_initial, created_at
FROM readings
WHERE station_id = $1
	AND reading_date >= $2
	AND reading_date < $3`
	args := []any{stationID, from.UTC(), to.UTC()}
	if nozzleID != "" {
		query += ` AND nozzle_id = $4`
		args = append(args, nozzleID)
	}
	query += ` ORDER BY reading_date ASC, created_at ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []readingRow
	for rows.Next() {
		var row readingRow
		var readingDate time.Time
		var creditorID sql.NullString
		if err := rows.Scan(
			&row.ID,
			&row.StationID,
			&row.NozzleID,
			&row.EnteredBy,
			&readingDate,
			&row.ReadingValue,
			&row.PreviousReading,
			&row.LitresSold,
			&row.PricePerLitre,
			&row.TotalAmount,
			&row.CashAmount,
			&row.OnlineAmount,
			&row.CreditAmount,
			&creditorID,
			&row.IsInitial,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		row.ReadingDate = readingDate.UTC().Format(dayLayout)
		row.CreditorID = creditorID.String
		row.CreatedAt = row.CreatedAt.UTC()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func querySettlements(ctx context.Context, db *sql.DB, stationID string, from, to time.Time, includeSuperseded bool) ([]settlementRow, error) {
	query := `
SELECT
	id, station_id, day, expected_cash, actual_cash, variance, variance_percent,
	status, row_status, version, notes, recorded_by, created_at
FROM settlements
WHERE station_id = $1
	AND day >= $2
	AND day < $3`
	if !includeSuperseded {
		query += ` AND row_status = 'active'`
	}
	query += ` ORDER BY day ASC, version ASC`

	rows, err := db.QueryContext(ctx, query, stationID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []settlementRow
	for rows.Next() {
		var row settlementRow
		if err := rows.Scan(
			&row.ID,
			&row.StationID,
			&row.Day,
			&row.ExpectedCash,
			&row.ActualCash,
			&row.Variance,
			&row.VariancePercent,
			&row.Status,
			&row.RowStatus,
			&row.Version,
			&row.Notes,
			&row.RecordedBy,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		row.Day = row.Day.UTC()
		row.CreatedAt = row.CreatedAt.UTC()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func parseDayRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseDayQuery(r, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDayQuery(r, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to = to.AddDate(0, 0, 1)
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("to must not precede from")
	}
	return from, to, nil
}

func parseDayQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.Parse(dayLayout, value)
	if err != nil {
		return time.Time{}, errors.New(key + " must be YYYY-MM-DD")
	}
	return parsed.UTC(), nil
}

func ensureStationTenant(r *http.Request, checker auth.StationTenantChecker, stationID string) error {
	if !auth.StationInScope(r.Context(), stationID) {
		return auth.ErrStationNotAllowed
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if checker == nil || tenantID == "" {
		return nil
	}
	return checker.EnsureStationTenant(r.Context(), tenantID, stationID)
}

func respondTenantError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrTenantMismatch) || errors.Is(err, auth.ErrStationNotAllowed) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if errors.Is(err, auth.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, "tenant check failed", http.StatusInternalServerError)
}
