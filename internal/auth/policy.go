package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves the required role for the request. Staff record
// readings and credit sales; managers set prices, settle days and read
// financial reports; owners manage creditors.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/readings":
		return RoleStaff, true
	case path == "/api/v1/prices":
		if method == http.MethodPost {
			return RoleManager, true
		}
		return RoleStaff, true
	case path == "/api/v1/prices/resolve":
		return RoleStaff, true
	case path == "/api/v1/credit/extend":
		return RoleStaff, true
	case path == "/api/v1/credit/settle":
		return RoleStaff, true
	case path == "/api/v1/creditors":
		if method == http.MethodPost {
			return RoleOwner, true
		}
		return RoleStaff, true
	case path == "/api/v1/settlements":
		if method == http.MethodPost {
			return RoleManager, true
		}
		return RoleStaff, true
	case path == "/api/v1/reports/aging":
		return RoleStaff, true
	case strings.HasPrefix(path, "/api/v1/reports/"):
		return RoleManager, true
	case path == "/api/v1/exports/settlements.csv":
		return RoleManager, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return RoleStaff, true
		}
		return RoleManager, true
	}
	return "", false
}
