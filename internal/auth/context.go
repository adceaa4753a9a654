// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package auth

import "context"

type identityKey struct{}

// WithIdentity returns a context carrying the authenticated identity
// for the duration of one request.
func WithIdentity(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// IdentityFromContext returns the authenticated identity attached via
// WithIdentity, or nil when the request is unauthenticated.
func IdentityFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(identityKey{}).(*User)
	return user
}
