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

// RequiredRole resolves the required role for the request.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/devices":
		if method == http.MethodGet {
			return RoleViewer, true
		}
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/params"):
		if method == http.MethodGet {
			return RoleViewer, true
		}
		return RoleAdmin, true
	case path == "/api/v1/attestations":
		if method == http.MethodGet {
			return RoleViewer, true
		}
		return RoleDevice, true
	case path == "/api/v1/claims":
		return RoleTrader, true
	case path == "/api/v1/orders/batch-fulfill":
		return RoleTrader, true
	case strings.HasPrefix(path, "/api/v1/orders"):
		if method == http.MethodGet {
			return RoleViewer, true
		}
		return RoleTrader, true
	case path == "/api/v1/approve" || path == "/api/v1/transfer" || path == "/api/v1/burn":
		return RoleTrader, true
	case path == "/api/v1/vault/deposit":
		return RoleTrader, true
	case strings.HasPrefix(path, "/api/v1/admin/"):
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/reports/"):
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/balances") || strings.HasPrefix(path, "/api/v1/vault/balances"):
		return RoleViewer, true
	case path == "/api/v1/supply":
		return RoleViewer, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return RoleViewer, true
		}
		return RoleTrader, true
	}
	return "", false
}
