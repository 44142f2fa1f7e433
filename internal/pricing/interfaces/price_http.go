package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fuelstation-cloud/internal/audit"
	"fuelstation-cloud/internal/auth"
	"fuelstation-cloud/internal/pricing/application"
	pricing "fuelstation-cloud/internal/pricing/domain"
)

const dayLayout = "2006-01-02"

// PriceHandler handles fuel price APIs.
type PriceHandler struct {
	service        *application.PriceService
	stationChecker auth.StationTenantChecker
	auditLogger    audit.Logger
}

// NewPriceHandler constructs a handler.
func NewPriceHandler(service *application.PriceService, stationChecker auth.StationTenantChecker, auditLogger audit.Logger) (*PriceHandler, error) {
	if service == nil {
		return nil, errors.New("price handler: nil service")
	}
	return &PriceHandler{service: service, stationChecker: stationChecker, auditLogger: auditLogger}, nil
}

// ServeHTTP routes price APIs.
func (h *PriceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/prices" && r.Method == http.MethodPost:
		h.handleSet(w, r)
	case r.URL.Path == "/api/v1/prices" && r.Method == http.MethodGet:
		h.handleHistory(w, r)
	case r.URL.Path == "/api/v1/prices/resolve" && r.Method == http.MethodGet:
		h.handleResolve(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *PriceHandler) handleSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StationID     string          `json:"station_id"`
		FuelType      string          `json:"fuel_type"`
		PricePerLitre decimal.Decimal `json:"price_per_litre"`
		EffectiveFrom string          `json:"effective_from"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	effectiveFrom, err := time.Parse(dayLayout, req.EffectiveFrom)
	if err != nil {
		http.Error(w, "effective_from must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if err := h.ensureStationTenant(r, req.StationID); err != nil {
		respondTenantError(w, err)
		return
	}

	price, err := h.service.SetPrice(r.Context(), req.StationID, req.FuelType, req.PricePerLitre, effectiveFrom, auth.SubjectFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(priceResponse(*price))
	h.logAudit(r, price.StationID, price.ID, "price.set", map[string]any{
		"fuel_type":       price.FuelType,
		"price_per_litre": price.PricePerLitre.String(),
		"effective_from":  price.EffectiveFrom.Format(dayLayout),
	})
}

func (h *PriceHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station_id")
	fuelType := r.URL.Query().Get("fuel_type")
	if stationID == "" || fuelType == "" {
		http.Error(w, "station_id and fuel_type are required", http.StatusBadRequest)
		return
	}
	date, err := time.Parse(dayLayout, r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if err := h.ensureStationTenant(r, stationID); err != nil {
		respondTenantError(w, err)
		return
	}

	price, found, err := h.service.Resolve(r.Context(), stationID, fuelType, date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "PRICE_NOT_SET", "message": "no price effective on date"},
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"station_id":      stationID,
		"fuel_type":       fuelType,
		"date":            date.Format(dayLayout),
		"price_per_litre": price,
	})
}

func (h *PriceHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station_id")
	if stationID == "" {
		http.Error(w, "station_id is required", http.StatusBadRequest)
		return
	}
	if err := h.ensureStationTenant(r, stationID); err != nil {
		respondTenantError(w, err)
		return
	}
	prices, err := h.service.History(r.Context(), stationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(prices))
	for _, price := range prices {
		resp = append(resp, priceResponse(price))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *PriceHandler) ensureStationTenant(r *http.Request, stationID string) error {
	if stationID == "" {
		return nil
	}
	if !auth.StationInScope(r.Context(), stationID) {
		return auth.ErrStationNotAllowed
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if h.stationChecker == nil || tenantID == "" {
		return nil
	}
	return h.stationChecker.EnsureStationTenant(r.Context(), tenantID, stationID)
}

func (h *PriceHandler) logAudit(r *http.Request, stationID, priceID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "fuel_price",
		ResourceID:   priceID,
		StationID:    stationID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func priceResponse(price pricing.FuelPrice) map[string]any {
	return map[string]any{
		"id":              price.ID,
		"station_id":      price.StationID,
		"fuel_type":       price.FuelType,
		"price_per_litre": price.PricePerLitre,
		"effective_from":  price.EffectiveFrom.Format(dayLayout),
		"created_by":      price.CreatedBy,
		"created_at":      price.CreatedAt,
	}
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

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidPrice):
		http.Error(w, "price must be positive", http.StatusUnprocessableEntity)
	case errors.Is(err, pricing.ErrDuplicateEffectiveDate):
		http.Error(w, "price already set for effective date", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
