package plan

import "context"

// Limits are the per-tenant plan limits consumed by the ledger. They are
// passed into core operations as values so the core stays testable without
// the subscription stack.
type Limits struct {
	BackdatedDays        int
	CreditFeatureEnabled bool
}

// Provider resolves plan limits for a tenant.
type Provider interface {
	LimitsFor(ctx context.Context, tenantID string) (Limits, error)
}

// Static always returns the same limits. Used in tests and as a fallback
// when no plan table is configured.
type Static struct {
	Limits Limits
}

// LimitsFor returns the fixed limits.
func (s Static) LimitsFor(ctx context.Context, tenantID string) (Limits, error) {
	_ = ctx
	_ = tenantID
	return s.Limits, nil
}
