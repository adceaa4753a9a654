// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskloom/taskloom/internal/auth"
	"github.com/taskloom/taskloom/internal/auth/mocks"
	"github.com/taskloom/taskloom/pkg/errutil"
)

func TestNewService_NilDependencies(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name        string
		users       auth.UserRepository
		hasher      auth.PasswordHasher
		codec       *auth.TokenCodec
		expectError string
	}{
		{
			name:        "nil users repository",
			users:       nil,
			hasher:      mocks.NewMockPasswordHasher(t),
			codec:       codec,
			expectError: "users repository is required",
		},
		{
			name:        "nil password hasher",
			users:       mocks.NewMockUserRepository(t),
			hasher:      nil,
			codec:       codec,
			expectError: "password hasher is required",
		},
		{
			name:        "nil token codec",
			users:       mocks.NewMockUserRepository(t),
			hasher:      mocks.NewMockPasswordHasher(t),
			codec:       nil,
			expectError: "token codec is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewService(tt.users, tt.hasher, tt.codec)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestNewServiceWithLogger_NilLogger(t *testing.T) {
	svc, err := auth.NewServiceWithLogger(
		mocks.NewMockUserRepository(t),
		mocks.NewMockPasswordHasher(t),
		newTestCodec(t),
		nil,
	)
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "logger")
}

func testUser(username string) *auth.User {
	return &auth.User{
		ID:           ulid.Make(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, newTestCodec(t))
		require.NoError(t, err)

		user := testUser("alice")
		users.On("GetByUsername", ctx, "alice").Return(user, nil)
		hasher.On("Verify", "password123", user.PasswordHash).Return(true, nil)

		got, err := svc.Authenticate(ctx, "alice", "password123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("unknown username still verifies against dummy hash", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, newTestCodec(t))
		require.NoError(t, err)

		users.On("GetByUsername", ctx, "ghost").Return(nil, auth.ErrNotFound)
		hasher.On("Verify", "password123", mock.AnythingOfType("string")).Return(false, nil)

		_, err = svc.Authenticate(ctx, "ghost", "password123")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		hasher.AssertCalled(t, "Verify", "password123", mock.AnythingOfType("string"))
	})

	t.Run("wrong password", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, newTestCodec(t))
		require.NoError(t, err)

		user := testUser("alice")
		users.On("GetByUsername", ctx, "alice").Return(user, nil)
		hasher.On("Verify", "wrong", user.PasswordHash).Return(false, nil)

		_, err = svc.Authenticate(ctx, "alice", "wrong")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, newTestCodec(t))
		require.NoError(t, err)

		user := testUser("alice")
		users.On("GetByUsername", ctx, "alice").Return(user, nil)
		users.On("GetByUsername", ctx, "ghost").Return(nil, auth.ErrNotFound)
		hasher.On("Verify", mock.Anything, mock.Anything).Return(false, nil)

		_, wrongPassErr := svc.Authenticate(ctx, "alice", "wrong")
		_, unknownUserErr := svc.Authenticate(ctx, "ghost", "wrong")

		require.Error(t, wrongPassErr)
		require.Error(t, unknownUserErr)
		assert.ErrorIs(t, wrongPassErr, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownUserErr, auth.ErrInvalidCredentials)
		assert.Equal(t, wrongPassErr.Error(), unknownUserErr.Error())
	})

	t.Run("repository failure is not a credential failure", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, newTestCodec(t))
		require.NoError(t, err)

		users.On("GetByUsername", ctx, "alice").Return(nil, errors.New("connection refused"))

		_, err = svc.Authenticate(ctx, "alice", "password123")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
		errutil.AssertErrorCode(t, err, "AUTH_LOGIN_FAILED")
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a resolvable token", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		codec := newTestCodec(t)
		svc, err := auth.NewService(users, hasher, codec)
		require.NoError(t, err)

		user := testUser("alice")
		users.On("GetByUsername", ctx, "alice").Return(user, nil)
		hasher.On("Verify", "password123", user.PasswordHash).Return(true, nil)

		token, err := svc.Login(ctx, "alice", "password123")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := codec.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
	})

	t.Run("bad credentials issue nothing", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, newTestCodec(t))
		require.NoError(t, err)

		users.On("GetByUsername", ctx, "alice").Return(nil, auth.ErrNotFound)
		hasher.On("Verify", mock.Anything, mock.Anything).Return(false, nil)

		token, err := svc.Login(ctx, "alice", "wrong")
		require.Error(t, err)
		assert.Empty(t, token)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_Resolve(t *testing.T) {
	ctx := context.Background()

	newSvc := func(t *testing.T, codec *auth.TokenCodec) (*auth.Service, *mocks.MockUserRepository) {
		t.Helper()
		users := mocks.NewMockUserRepository(t)
		svc, err := auth.NewService(users, mocks.NewMockPasswordHasher(t), codec)
		require.NoError(t, err)
		return svc, users
	}

	t.Run("valid token resolves identity", func(t *testing.T) {
		codec := newTestCodec(t)
		svc, users := newSvc(t, codec)

		user := testUser("alice")
		users.On("GetByUsername", ctx, "alice").Return(user, nil)

		token, err := codec.Issue("alice")
		require.NoError(t, err)

		got, err := svc.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _ := newSvc(t, newTestCodec(t))

		_, err := svc.Resolve(ctx, "garbage")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("expired token", func(t *testing.T) {
		issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		issuer := newTestCodec(t).WithClock(func() time.Time { return issuedAt })
		verifier := newTestCodec(t).WithClock(func() time.Time {
			return issuedAt.Add(time.Hour)
		})

		token, err := issuer.Issue("alice")
		require.NoError(t, err)

		svc, _ := newSvc(t, verifier)
		_, err = svc.Resolve(ctx, token)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("empty subject", func(t *testing.T) {
		codec := newTestCodec(t)
		svc, _ := newSvc(t, codec)

		token, err := codec.Issue("")
		require.NoError(t, err)

		_, err = svc.Resolve(ctx, token)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("subject no longer exists", func(t *testing.T) {
		codec := newTestCodec(t)
		svc, users := newSvc(t, codec)

		users.On("GetByUsername", ctx, "deleted").Return(nil, auth.ErrNotFound)

		token, err := codec.Issue("deleted")
		require.NoError(t, err)

		_, err = svc.Resolve(ctx, token)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}
