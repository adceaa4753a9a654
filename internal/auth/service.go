// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Service provides credential verification, token issuance, and
// bearer-token resolution.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	codec  *TokenCodec
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(users UserRepository, hasher PasswordHasher, codec *TokenCodec) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	if codec == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("token codec is required")
	}
	return &Service{
		users:  users,
		hasher: hasher,
		codec:  codec,
		logger: slog.Default(),
	}, nil
}

// NewServiceWithLogger creates a new Service with a custom logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, codec *TokenCodec, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("logger is required")
	}
	svc, err := NewService(users, hasher, codec)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Authenticate confirms a username/password pair against stored state.
// Unknown usernames and wrong passwords both return ErrInvalidCredentials;
// a dummy verification keeps the two paths close in timing.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, lookupErr := s.users.GetByUsername(ctx, username)

	targetHash := dummyPasswordHash
	userExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	// Always verify, even against the dummy hash
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		s.logger.InfoContext(ctx, "login rejected", "username", username)
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	return user, nil
}

// Login authenticates the credentials and issues an access token whose
// subject is the username.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.codec.Issue(user.Username)
	if err != nil {
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID.String(), "username", user.Username)
	return token, nil
}

// Resolve recovers the authenticated identity from a bearer token.
// Every failure - decode, expiry, empty subject, unknown subject -
// collapses to ErrUnauthenticated. Each call re-verifies the token;
// nothing is cached across requests.
func (s *Service) Resolve(ctx context.Context, token string) (*User, error) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil, oops.Code("AUTH_UNAUTHENTICATED").
			With("cause", err.Error()).
			Wrap(ErrUnauthenticated)
	}

	if claims.Subject == "" {
		return nil, oops.Code("AUTH_UNAUTHENTICATED").
			With("cause", "empty subject claim").
			Wrap(ErrUnauthenticated)
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_UNAUTHENTICATED").
				With("cause", "subject does not exist").
				Wrap(ErrUnauthenticated)
		}
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "get user by subject").
			Wrap(err)
	}

	return user, nil
}
