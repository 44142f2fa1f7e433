package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"fuelstation-cloud/internal/auth"
	directory "fuelstation-cloud/internal/directory/domain"
	ledger "fuelstation-cloud/internal/ledger/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorMapping struct {
	status int
	code   string
}

// errorCodes maps domain sentinels to stable machine-readable codes. The
// code set is part of the API contract; clients branch on it.
var errorCodes = map[error]errorMapping{
	ledger.ErrNozzleNotFound:       {http.StatusNotFound, "NOZZLE_NOT_FOUND"},
	ledger.ErrNozzleInactive:       {http.StatusConflict, "NOZZLE_INACTIVE"},
	ledger.ErrPriceNotSet:          {http.StatusUnprocessableEntity, "PRICE_NOT_SET"},
	ledger.ErrReadingMustIncrease:  {http.StatusUnprocessableEntity, "READING_MUST_INCREASE"},
	ledger.ErrPaymentSplitMismatch: {http.StatusUnprocessableEntity, "PAYMENT_SPLIT_MISMATCH"},
	ledger.ErrNegativeAmount:       {http.StatusUnprocessableEntity, "NEGATIVE_AMOUNT"},
	ledger.ErrBackdateLimitExceeded: {
		http.StatusUnprocessableEntity, "BACKDATE_LIMIT_EXCEEDED",
	},
	ledger.ErrFutureReading:        {http.StatusUnprocessableEntity, "FUTURE_READING"},
	ledger.ErrShiftRequired:        {http.StatusConflict, "SHIFT_REQUIRED"},
	ledger.ErrCreditorRequired:     {http.StatusUnprocessableEntity, "CREDITOR_REQUIRED"},
	ledger.ErrCreditorNotFound:     {http.StatusNotFound, "CREDITOR_NOT_FOUND"},
	ledger.ErrCreditorInactive:     {http.StatusConflict, "CREDITOR_INACTIVE"},
	ledger.ErrCreditLimitExceeded:  {http.StatusUnprocessableEntity, "CREDIT_LIMIT_EXCEEDED"},
	ledger.ErrCreditDisabled:       {http.StatusForbidden, "CREDIT_DISABLED"},
	ledger.ErrInvalidAmount:        {http.StatusUnprocessableEntity, "INVALID_AMOUNT"},
	ledger.ErrInitialNotFirst:      {http.StatusConflict, "INITIAL_NOT_FIRST"},
	ledger.ErrSettlementNotFound:   {http.StatusNotFound, "SETTLEMENT_NOT_FOUND"},
	ledger.ErrReadingNotFound:      {http.StatusNotFound, "READING_NOT_FOUND"},
	directory.ErrStationNotFound:   {http.StatusNotFound, "STATION_NOT_FOUND"},
	directory.ErrNozzleNotFound:    {http.StatusNotFound, "NOZZLE_NOT_FOUND"},
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	for sentinel, mapping := range errorCodes {
		if errors.Is(err, sentinel) {
			respondJSON(w, mapping.status, map[string]errorBody{
				"error": {Code: mapping.code, Message: sentinel.Error()},
			})
			return
		}
	}
	respondJSON(w, http.StatusInternalServerError, map[string]errorBody{
		"error": {Code: "INTERNAL", Message: "internal error"},
	})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, map[string]errorBody{
		"error": {Code: "BAD_REQUEST", Message: message},
	})
}

func respondTenantError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, auth.ErrTenantMismatch) {
		respondJSON(w, http.StatusForbidden, map[string]errorBody{
			"error": {Code: "FORBIDDEN", Message: "station belongs to a different tenant"},
		})
		return
	}
	if errors.Is(err, auth.ErrStationNotAllowed) {
		respondJSON(w, http.StatusForbidden, map[string]errorBody{
			"error": {Code: "FORBIDDEN", Message: "station not in token scope"},
		})
		return
	}
	if errors.Is(err, auth.ErrNotFound) {
		respondJSON(w, http.StatusNotFound, map[string]errorBody{
			"error": {Code: "STATION_NOT_FOUND", Message: "station not found"},
		})
		return
	}
	respondJSON(w, http.StatusInternalServerError, map[string]errorBody{
		"error": {Code: "INTERNAL", Message: "tenant check failed"},
	})
}

func ensureStationTenant(r *http.Request, checker auth.StationTenantChecker, stationID string) error {
	if stationID == "" {
		return nil
	}
	if !auth.StationInScope(r.Context(), stationID) {
		return auth.ErrStationNotAllowed
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if checker == nil || tenantID == "" {
		return nil
	}
	return checker.EnsureStationTenant(r.Context(), tenantID, stationID)
}
