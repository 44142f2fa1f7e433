package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fuelstation-cloud/internal/auth"
	directory "fuelstation-cloud/internal/directory/domain"
	"fuelstation-cloud/internal/ledger/application"
	ledger "fuelstation-cloud/internal/ledger/domain"
	"fuelstation-cloud/internal/ledger/infrastructure/memory"
	"fuelstation-cloud/internal/ledger/interfaces"
	"fuelstation-cloud/internal/plan"
)

type staticPrices struct{}

func (staticPrices) Resolve(ctx context.Context, stationID, fuelType string, date time.Time) (decimal.Decimal, bool, error) {
	_ = ctx
	_ = date
	if stationID == "st-1" && fuelType == "petrol" {
		return d("100.00"), true, nil
	}
	return d("0"), false, nil
}

func newAPIFixture(t *testing.T) (*memory.Store, *interfaces.ReadingHandler, *interfaces.SettlementHandler, fixedClock) {
	t.Helper()
	clock := fixedClock{now: time.Date(2026, time.January, 20, 18, 0, 0, 0, time.UTC)}
	store := memory.NewStore()
	dir := memory.NewDirectory()
	dir.AddStation(directory.Station{ID: "st-1", TenantID: "t-1", Active: true})
	store.AddNozzle(directory.Nozzle{
		ID: "nz-1", StationID: "st-1", FuelType: "petrol",
		Status: directory.NozzleActive, InitialReading: d("1000.000"),
	})
	store.AddNozzle(directory.Nozzle{
		ID: "nz-2", StationID: "st-1", FuelType: "kerosene",
		Status: directory.NozzleActive, InitialReading: d("500.000"),
	})

	credit, err := application.NewCreditService(store, clock, nil)
	if err != nil {
		t.Fatalf("credit service: %v", err)
	}
	readings, err := application.NewReadingService(store, staticPrices{}, dir, nil,
		plan.Static{Limits: plan.Limits{BackdatedDays: 3, CreditFeatureEnabled: true}}, credit, clock)
	if err != nil {
		t.Fatalf("reading service: %v", err)
	}
	settlements, err := application.NewSettlementService(store, nil, nil, clock)
	if err != nil {
		t.Fatalf("settlement service: %v", err)
	}
	readingHandler, err := interfaces.NewReadingHandler(readings, nil, nil)
	if err != nil {
		t.Fatalf("reading handler: %v", err)
	}
	settlementHandler, err := interfaces.NewSettlementHandler(settlements, nil, nil)
	if err != nil {
		t.Fatalf("settlement handler: %v", err)
	}
	return store, readingHandler, settlementHandler, clock
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, resp.Body.String())
	}
	return body.Error.Code
}

// tenantTable maps stations to owning tenants for handler tests.
type tenantTable map[string]string

func (c tenantTable) EnsureStationTenant(ctx context.Context, tenantID, stationID string) error {
	_ = ctx
	owner, ok := c[stationID]
	if !ok {
		return auth.ErrNotFound
	}
	if owner != tenantID {
		return auth.ErrTenantMismatch
	}
	return nil
}

func postJSONAs(t *testing.T, handler http.Handler, path, body, tenantID string, stations []string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := auth.WithIdentity(req.Context(), tenantID, auth.RoleStaff, "user-1")
	ctx = auth.WithStations(ctx, stations)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))
	return resp
}

func TestCreditAPI_CreditorTenantScope(t *testing.T) {
	clock := fixedClock{now: time.Date(2026, time.January, 20, 18, 0, 0, 0, time.UTC)}
	store := memory.NewStore()
	store.AddCreditor(ledger.Creditor{
		ID: "crd-1", StationID: "st-1", Name: "Alpha Transport",
		CreditLimit: d("5000.00"), CreditPeriodDays: 15, Active: true,
		UpdatedAt: clock.now,
	})

	credit, err := application.NewCreditService(store, clock, nil)
	if err != nil {
		t.Fatalf("credit service: %v", err)
	}
	receivables, err := application.NewReceivablesService(store, clock)
	if err != nil {
		t.Fatalf("receivables service: %v", err)
	}
	handler, err := interfaces.NewCreditHandler(credit, receivables, tenantTable{"st-1": "t-1"}, nil)
	if err != nil {
		t.Fatalf("credit handler: %v", err)
	}
	extendBody := `{"creditor_id":"crd-1","amount":"300.00","fuel_type":"petrol","date":"2026-01-20"}`

	// A creditor of another tenant's station must be rejected before any
	// balance change.
	resp := postJSONAs(t, handler, "/api/v1/credit/extend", extendBody, "t-2", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("status mismatch: got=%d body=%s", resp.Code, resp.Body.String())
	}
	if balance := store.Creditor("crd-1").Balance; !balance.IsZero() {
		t.Fatalf("balance must stay untouched: got=%s", balance)
	}

	// Same for a token scoped to other stations of the owning tenant.
	resp = postJSONAs(t, handler, "/api/v1/credit/extend", extendBody, "t-1", []string{"st-9"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("status mismatch: got=%d body=%s", resp.Code, resp.Body.String())
	}

	// Unknown creditor ids surface as not found.
	resp = postJSONAs(t, handler, "/api/v1/credit/settle",
		`{"creditor_id":"crd-missing","amount":"100.00","date":"2026-01-20"}`, "t-1", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status mismatch: got=%d body=%s", resp.Code, resp.Body.String())
	}
	if code := errorCode(t, resp); code != "CREDITOR_NOT_FOUND" {
		t.Fatalf("code mismatch: got=%s", code)
	}

	// The owning tenant extends and settles as usual.
	resp = postJSONAs(t, handler, "/api/v1/credit/extend", extendBody, "t-1", []string{"st-1"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status mismatch: got=%d body=%s", resp.Code, resp.Body.String())
	}
	if balance := store.Creditor("crd-1").Balance; !balance.Equal(d("300.00")) {
		t.Fatalf("balance mismatch: got=%s want=300.00", balance)
	}
	resp = postJSONAs(t, handler, "/api/v1/credit/settle",
		`{"creditor_id":"crd-1","amount":"300.00","date":"2026-01-20","reference":"UPI-771"}`, "t-1", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("status mismatch: got=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestReadingAPI_SubmitAndReject(t *testing.T) {
	_, readingHandler, _, _ := newAPIFixture(t)

	resp := postJSON(t, readingHandler, "/api/v1/readings",
		`{"station_id":"st-1","nozzle_id":"nz-1","reading_date":"2026-01-20","reading_value":"1050.000","cash_amount":"5000.00"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("status mismatch: got=%d body=%s", resp.Code, resp.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created["litres_sold"] != "50.000" {
		t.Fatalf("litres mismatch: got=%v", created["litres_sold"])
	}

	// No price configured for kerosene.
	resp = postJSON(t, readingHandler, "/api/v1/readings",
		`{"station_id":"st-1","nozzle_id":"nz-2","reading_date":"2026-01-20","reading_value":"510.000","cash_amount":"100.00"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status mismatch: got=%d body=%s", resp.Code, resp.Body.String())
	}
	if code := errorCode(t, resp); code != "PRICE_NOT_SET" {
		t.Fatalf("code mismatch: got=%s", code)
	}

	// Unknown nozzle.
	resp = postJSON(t, readingHandler, "/api/v1/readings",
		`{"station_id":"st-1","nozzle_id":"nz-missing","reading_date":"2026-01-20","reading_value":"1.000"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status mismatch: got=%d", resp.Code)
	}
	if code := errorCode(t, resp); code != "NOZZLE_NOT_FOUND" {
		t.Fatalf("code mismatch: got=%s", code)
	}

	// Malformed date.
	resp = postJSON(t, readingHandler, "/api/v1/readings",
		`{"station_id":"st-1","nozzle_id":"nz-1","reading_date":"20-01-2026","reading_value":"1.000"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status mismatch: got=%d", resp.Code)
	}
}

func TestSettlementAPI_RecordAndReject(t *testing.T) {
	store, readingHandler, settlementHandler, _ := newAPIFixture(t)

	resp := postJSON(t, readingHandler, "/api/v1/readings",
		`{"station_id":"st-1","nozzle_id":"nz-1","reading_date":"2026-01-20","reading_value":"1050.000","cash_amount":"5000.00"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("seed reading: %d %s", resp.Code, resp.Body.String())
	}

	resp = postJSON(t, settlementHandler, "/api/v1/settlements",
		`{"station_id":"st-1","day":"2026-01-20","actual_cash":"4900.00","notes":"drawer"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("status mismatch: got=%d body=%s", resp.Code, resp.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created["status"] != ledger.VarianceReview {
		t.Fatalf("status mismatch: got=%v", created["status"])
	}
	if len(store.Settlements()) != 1 {
		t.Fatalf("settlement not persisted")
	}

	// A future day cannot be settled.
	resp = postJSON(t, settlementHandler, "/api/v1/settlements",
		`{"station_id":"st-1","day":"2026-01-21","actual_cash":"0"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status mismatch: got=%d body=%s", resp.Code, resp.Body.String())
	}
	if code := errorCode(t, resp); code != "FUTURE_READING" {
		t.Fatalf("code mismatch: got=%s", code)
	}
}
