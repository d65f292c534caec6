package auth

// Role represents a caller role.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleTrader Role = "trader"
	RoleDevice Role = "device"
	RoleAdmin  Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleViewer, RoleTrader, RoleDevice, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleSatisfies reports whether role meets the required role. Device is a
// lateral role for attestation endpoints: only devices (and the admin)
// satisfy it, and devices satisfy nothing else.
func RoleSatisfies(role, required Role) bool {
	if role == RoleAdmin {
		return true
	}
	if required == RoleDevice || role == RoleDevice {
		return role == required
	}
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleViewer:
		return 1
	case RoleTrader:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}
