package accesscontrol

import "errors"

var (
	// ErrUnauthorized is returned when a mutating call comes from a non-administrator identity.
	ErrUnauthorized = errors.New("accesscontrol: unauthorized")
	// ErrEmptyIdentity is returned when a device or admin identity is empty.
	ErrEmptyIdentity = errors.New("accesscontrol: empty identity")
)
