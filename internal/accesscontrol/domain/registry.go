package accesscontrol

// Registry holds the administrative identity and the allow-list of attested
// data sources. Only the administrator may mutate the allow-list.
type Registry struct {
	admin   string
	allowed map[string]bool
}

// NewRegistry constructs a registry owned by the given administrator.
func NewRegistry(admin string) (*Registry, error) {
	if admin == "" {
		return nil, ErrEmptyIdentity
	}
	return &Registry{admin: admin, allowed: make(map[string]bool)}, nil
}

// Admin returns the administrative identity.
func (r *Registry) Admin() string { return r.admin }

// IsAdmin reports whether caller is the administrator.
func (r *Registry) IsAdmin(caller string) bool {
	return caller != "" && caller == r.admin
}

// SetDevice flags a device identity as allowed or disallowed. Idempotent.
func (r *Registry) SetDevice(caller, device string, allowed bool) error {
	if !r.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if device == "" {
		return ErrEmptyIdentity
	}
	if allowed {
		r.allowed[device] = true
	} else {
		delete(r.allowed, device)
	}
	return nil
}

// IsAllowed reports whether a device identity may attest production.
func (r *Registry) IsAllowed(device string) bool {
	return r.allowed[device]
}
