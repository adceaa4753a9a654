// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

// Package auth provides the credential and session-authorization core
// for Taskloom.
//
// # Domain Types
//
// User is the identity record backing every account. Create one through
// NewUser, which validates the username and email; direct struct
// initialization bypasses validation and may create invalid state.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - login, token issuance, bearer-token resolution
//   - UserService - registration and account self-service
//
// Both are created with New*Service constructors that validate their
// dependencies. The TokenCodec and Argon2idHasher are stateless and safe
// for concurrent use; configuration (secret, algorithm, ttl) is injected
// once at construction and never read from ambient state.
package auth
