package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fuelstation-cloud/internal/plan"
)

// LimitsRepository reads tenant plan limits.
type LimitsRepository struct {
	db       *sql.DB
	fallback plan.Limits
}

// NewLimitsRepository constructs a repository. The fallback applies to
// tenants without a plan row.
func NewLimitsRepository(db *sql.DB, fallback plan.Limits) *LimitsRepository {
	return &LimitsRepository{db: db, fallback: fallback}
}

// LimitsFor resolves the tenant's plan limits.
func (r *LimitsRepository) LimitsFor(ctx context.Context, tenantID string) (plan.Limits, error) {
	if r == nil || r.db == nil {
		return plan.Limits{}, errors.New("plan repo: nil db")
	}
	var limits plan.Limits
	err := r.db.QueryRowContext(ctx, `
SELECT backdated_days, credit_feature_enabled
FROM tenant_plans
WHERE tenant_id = $1
LIMIT 1`, tenantID).Scan(&limits.BackdatedDays, &limits.CreditFeatureEnabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.fallback, nil
		}
		return plan.Limits{}, err
	}
	return limits, nil
}
