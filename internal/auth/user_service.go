// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Pagination defaults for user listing.
const (
	DefaultUserListLimit = 10
	MaxUserListLimit     = 100
)

// UserService handles registration and account self-service.
type UserService struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserRepository, hasher PasswordHasher) (*UserService, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		logger: slog.Default(),
	}, nil
}

// NewUserServiceWithLogger creates a new UserService with a custom logger.
func NewUserServiceWithLogger(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*UserService, error) {
	if logger == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("logger is required")
	}
	svc, err := NewUserService(users, hasher)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// AuthorizeOwner is the entity-level ownership gate: an identity may
// only act on its own account. Acting on any other account returns
// ErrForbidden, never a silent NotFound.
func AuthorizeOwner(identity *User, ownerID ulid.ULID) error {
	if identity == nil {
		return oops.Code("AUTH_UNAUTHENTICATED").Wrap(ErrUnauthenticated)
	}
	if identity.ID.Compare(ownerID) != 0 {
		return oops.Code("AUTH_FORBIDDEN").
			With("identity_id", identity.ID.String()).
			With("owner_id", ownerID.String()).
			Wrap(ErrForbidden)
	}
	return nil
}

// Register creates a new account. Uniqueness conflicts from the
// repository (username or email) pass through for the boundary to
// translate into a conflict response.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*User, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(username, email, hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String(), "username", user.Username)
	return user, nil
}

// Get retrieves a user by ID. Any authenticated identity may read any
// account's public fields.
func (s *UserService) Get(ctx context.Context, id ulid.ULID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns users with limit/offset pagination.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*User, error) {
	if limit <= 0 {
		limit = DefaultUserListLimit
	}
	if limit > MaxUserListLimit {
		limit = MaxUserListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

// Update applies a partial update to an account. Only the owner may
// update it; others get ErrForbidden. Fields absent from the patch are
// left untouched.
func (s *UserService) Update(ctx context.Context, identity *User, id ulid.ULID, patch UserPatch) (*User, error) {
	if err := AuthorizeOwner(identity, id); err != nil {
		return nil, err
	}

	updated := *identity

	if patch.Username != nil {
		if err := ValidateUsername(*patch.Username); err != nil {
			return nil, err
		}
		updated.Username = *patch.Username
	}
	if patch.Email != nil {
		if err := ValidateEmail(*patch.Email); err != nil {
			return nil, err
		}
		updated.Email = *patch.Email
	}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, oops.Code("AUTH_UPDATE_FAILED").
				With("operation", "hash password").
				Wrap(err)
		}
		updated.PasswordHash = hash
	}

	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", updated.ID.String())
	return &updated, nil
}

// Delete removes an account. Only the owner may delete it.
func (s *UserService) Delete(ctx context.Context, identity *User, id ulid.ULID) error {
	if err := AuthorizeOwner(identity, id); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", id.String())
	return nil
}
