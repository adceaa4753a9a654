// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package auth

import "errors"

// Sentinel errors forming the authentication/authorization taxonomy.
// Services wrap these with oops codes; the HTTP boundary matches them
// with errors.Is to pick a status and a fixed response body.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned on login when the username is
	// unknown or the password does not match. The two causes are
	// deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated is returned when a bearer token is missing,
	// malformed, tampered, expired, or names a nonexistent subject.
	ErrUnauthenticated = errors.New("could not validate credentials")

	// ErrForbidden is returned when an authenticated identity acts on
	// another identity's own-account resource.
	ErrForbidden = errors.New("not enough permissions")

	// ErrUsernameTaken and ErrEmailTaken signal uniqueness conflicts on
	// registration or account update.
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")

	// ErrValidation is wrapped by field validation failures so the
	// boundary can classify them without enumerating every rule.
	ErrValidation = errors.New("invalid input")
)
