package auth

import "context"

type contextKey string

const (
	contextKeyTenant   contextKey = "auth.tenant_id"
	contextKeyRole     contextKey = "auth.role"
	contextKeySubject  contextKey = "auth.subject"
	contextKeyStations contextKey = "auth.stations"
)

// WithIdentity stores auth identity details in context.
func WithIdentity(ctx context.Context, tenantID string, role Role, subject string) context.Context {
	ctx = context.WithValue(ctx, contextKeyTenant, tenantID)
	ctx = context.WithValue(ctx, contextKeyRole, role)
	ctx = context.WithValue(ctx, contextKeySubject, subject)
	return ctx
}

// TenantIDFromContext extracts tenant id from context.
func TenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyTenant)
	if tenantID, ok := value.(string); ok {
		return tenantID
	}
	return ""
}

// RoleFromContext extracts role from context.
func RoleFromContext(ctx context.Context) Role {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyRole)
	if role, ok := value.(Role); ok {
		return role
	}
	if role, ok := value.(string); ok {
		if normalized, valid := NormalizeRole(role); valid {
			return normalized
		}
	}
	return ""
}

// SubjectFromContext extracts subject from context.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeySubject)
	if subject, ok := value.(string); ok {
		return subject
	}
	return ""
}

// WithStations stores the token's station scope in context. An empty or nil
// list means the whole tenant.
func WithStations(ctx context.Context, stations []string) context.Context {
	if len(stations) == 0 {
		return ctx
	}
	return context.WithValue(ctx, contextKeyStations, stations)
}

// StationsFromContext extracts the station scope from context.
func StationsFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if stations, ok := ctx.Value(contextKeyStations).([]string); ok {
		return stations
	}
	return nil
}

// StationInScope reports whether the context's station scope admits the
// station. A context without a scope admits every station of the tenant.
func StationInScope(ctx context.Context, stationID string) bool {
	stations := StationsFromContext(ctx)
	if len(stations) == 0 {
		return true
	}
	for _, id := range stations {
		if id == stationID {
			return true
		}
	}
	return false
}
