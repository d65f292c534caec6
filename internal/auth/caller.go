package auth

import (
	"context"
	"errors"
)

var (
	// ErrCallerMismatch indicates the payload names a different identity
	// than the authenticated one.
	ErrCallerMismatch = errors.New("caller mismatch")
	// ErrMissingIdentity indicates the request carries no identity.
	ErrMissingIdentity = errors.New("missing identity")
)

// EnsureCaller verifies the authenticated address may act as the given
// identity. Admins may act for any account; everyone else only for their own.
func EnsureCaller(ctx context.Context, caller string) error {
	address := AddressFromContext(ctx)
	if address == "" {
		return ErrMissingIdentity
	}
	if caller == "" || caller == address {
		return nil
	}
	if RoleFromContext(ctx) == RoleAdmin {
		return nil
	}
	return ErrCallerMismatch
}
