// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package httpapi_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskloom/taskloom/internal/auth"
	authmocks "github.com/taskloom/taskloom/internal/auth/mocks"
	"github.com/taskloom/taskloom/internal/httpapi"
	"github.com/taskloom/taskloom/internal/task"
	taskmocks "github.com/taskloom/taskloom/internal/task/mocks"
)

// testEnv wires a Server to mocked repositories with a real hasher and
// token codec, so requests exercise the full middleware chain.
type testEnv struct {
	handler http.Handler
	users   *authmocks.MockUserRepository
	tasks   *taskmocks.MockRepository
	hasher  *auth.Argon2idHasher
	codec   *auth.TokenCodec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := authmocks.NewMockUserRepository(t)
	tasks := taskmocks.NewMockRepository(t)
	hasher := auth.NewArgon2idHasher()
	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret:    "test-secret-key",
		Algorithm: "HS256",
		TTL:       30 * time.Minute,
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authSvc, err := auth.NewService(users, hasher, codec)
	require.NoError(t, err)
	userSvc, err := auth.NewUserService(users, hasher)
	require.NoError(t, err)
	taskSvc, err := task.NewService(tasks)
	require.NoError(t, err)

	srv, err := httpapi.NewServer("127.0.0.1:0", authSvc, userSvc, taskSvc, logger, nil)
	require.NoError(t, err)

	return &testEnv{
		handler: srv.Handler(),
		users:   users,
		tasks:   tasks,
		hasher:  hasher,
		codec:   codec,
	}
}

// signedIn registers a resolvable identity and returns it with a valid
// bearer token.
func (e *testEnv) signedIn(t *testing.T, username string) (*auth.User, string) {
	t.Helper()

	user := &auth.User{
		ID:        ulid.Make(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	token, err := e.codec.Issue(username)
	require.NoError(t, err)

	e.users.On("GetByUsername", mock.Anything, username).Return(user, nil)
	return user, token
}

func (e *testEnv) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials get a bearer token", func(t *testing.T) {
		env := newTestEnv(t)

		hash, err := env.hasher.Hash("password123")
		require.NoError(t, err)
		user := &auth.User{ID: ulid.Make(), Username: "alice", Email: "alice@example.com", PasswordHash: hash}
		env.users.On("GetByUsername", mock.Anything, "alice").Return(user, nil)

		form := url.Values{"username": {"alice"}, "password": {"password123"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		}
		require.NoError(t, jsonDecode(rec, &resp))
		assert.Equal(t, "Bearer", resp.TokenType)

		claims, err := env.codec.Parse(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
	})

	t.Run("wrong password and unknown user look identical", func(t *testing.T) {
		env := newTestEnv(t)

		hash, err := env.hasher.Hash("password123")
		require.NoError(t, err)
		user := &auth.User{ID: ulid.Make(), Username: "alice", Email: "alice@example.com", PasswordHash: hash}
		env.users.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
		env.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, auth.ErrNotFound)

		wrongPassword := postForm(t, env, "alice", "nope")
		unknownUser := postForm(t, env, "ghost", "nope")

		for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownUser} {
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"detail":"incorrect username or password"}`, rec.Body.String())
		}
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		env := newTestEnv(t)

		rec := postForm(t, env, "alice", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func postForm(t *testing.T, env *testEnv, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	if username != "" {
		form.Set("username", username)
	}
	if password != "" {
		form.Set("password", password)
	}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func jsonDecode(rec *httptest.ResponseRecorder, v any) error {
	return json.NewDecoder(rec.Body).Decode(v)
}

func TestRequireAuth(t *testing.T) {
	const unauthorizedBody = `{"detail":"Could not validate credentials"}`

	tests := []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"garbage token", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodGet, "/tasks", tt.token, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, unauthorizedBody, rec.Body.String())
		})
	}

	t.Run("non-bearer scheme rejected", func(t *testing.T) {
		env := newTestEnv(t)

		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		req.Header.Set("Authorization", "Basic YWxpY2U6cGFzcw==")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, unauthorizedBody, rec.Body.String())
	})

	t.Run("expired token rejected", func(t *testing.T) {
		env := newTestEnv(t)

		past := env.codec.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
		token, err := past.Issue("alice")
		require.NoError(t, err)

		rec := env.do(t, http.MethodGet, "/tasks", token, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, unauthorizedBody, rec.Body.String())
	})
}

func TestRegister(t *testing.T) {
	t.Run("creates an account", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)

		rec := env.do(t, http.MethodPost, "/users", "",
			`{"username":"alice","email":"alice@example.com","password":"password123"}`)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := rec.Body.String()
		assert.Contains(t, body, `"username":"alice"`)
		assert.Contains(t, body, `"email":"alice@example.com"`)
		assert.NotContains(t, body, "password", "credentials must not leak into the response")
	})

	t.Run("duplicate username", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).Return(auth.ErrUsernameTaken)

		rec := env.do(t, http.MethodPost, "/users", "",
			`{"username":"alice","email":"alice@example.com","password":"password123"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"detail":"username already exists"}`, rec.Body.String())
	})

	t.Run("duplicate email", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).Return(auth.ErrEmailTaken)

		rec := env.do(t, http.MethodPost, "/users", "",
			`{"username":"alice","email":"alice@example.com","password":"password123"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"detail":"email already exists"}`, rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/users", "", `{"username":`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("invalid username", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/users", "",
			`{"username":"1bad","email":"alice@example.com","password":"password123"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestGetUser(t *testing.T) {
	t.Run("any authenticated caller can view public fields", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signedIn(t, "alice")

		other := &auth.User{ID: ulid.Make(), Username: "bob", Email: "bob@example.com"}
		env.users.On("GetByID", mock.Anything, other.ID).Return(other, nil)

		rec := env.do(t, http.MethodGet, "/users/"+other.ID.String(), token, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"username":"bob"`)
	})

	t.Run("malformed id reads as missing", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signedIn(t, "alice")

		rec := env.do(t, http.MethodGet, "/users/not-a-ulid", token, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail":"user not found"}`, rec.Body.String())
	})

	t.Run("unknown id", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signedIn(t, "alice")

		id := ulid.Make()
		env.users.On("GetByID", mock.Anything, id).Return(nil, auth.ErrNotFound)

		rec := env.do(t, http.MethodGet, "/users/"+id.String(), token, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail":"user not found"}`, rec.Body.String())
	})
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	caller, token := env.signedIn(t, "alice")

	env.users.On("List", mock.Anything, 5, 10).Return([]*auth.User{caller}, nil)

	rec := env.do(t, http.MethodGet, "/users?limit=5&offset=10", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestUpdateUser(t *testing.T) {
	t.Run("owner updates own account", func(t *testing.T) {
		env := newTestEnv(t)
		caller, token := env.signedIn(t, "alice")

		env.users.On("Update", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)

		rec := env.do(t, http.MethodPut, "/users/"+caller.ID.String(), token,
			`{"username":"alice_two"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"username":"alice_two"`)
	})

	t.Run("another account is forbidden, not hidden", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signedIn(t, "alice")

		rec := env.do(t, http.MethodPut, "/users/"+ulid.Make().String(), token,
			`{"username":"mallory"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"detail":"not enough permissions"}`, rec.Body.String())
	})

	t.Run("conflicts collapse into one message", func(t *testing.T) {
		env := newTestEnv(t)
		caller, token := env.signedIn(t, "alice")

		env.users.On("Update", mock.Anything, mock.AnythingOfType("*auth.User")).Return(auth.ErrEmailTaken)

		rec := env.do(t, http.MethodPut, "/users/"+caller.ID.String(), token,
			`{"email":"taken@example.com"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"detail":"username or email already exists"}`, rec.Body.String())
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("owner deletes own account", func(t *testing.T) {
		env := newTestEnv(t)
		caller, token := env.signedIn(t, "alice")

		env.users.On("Delete", mock.Anything, caller.ID).Return(nil)

		rec := env.do(t, http.MethodDelete, "/users/"+caller.ID.String(), token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"user deleted"}`, rec.Body.String())
	})

	t.Run("another account is forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signedIn(t, "alice")

		rec := env.do(t, http.MethodDelete, "/users/"+ulid.Make().String(), token, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"detail":"not enough permissions"}`, rec.Body.String())
	})
}

func TestCreateTask(t *testing.T) {
	t.Run("creates within caller scope", func(t *testing.T) {
		env := newTestEnv(t)
		caller, token := env.signedIn(t, "alice")

		env.tasks.On("Create", mock.Anything, mock.AnythingOfType("*task.Task")).Return(nil)

		rec := env.do(t, http.MethodPost, "/tasks", token,
			`{"title":"write tests","description":"all of them"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"owner_id":"`+caller.ID.String()+`"`)
		assert.Contains(t, rec.Body.String(), `"state":"todo"`)
	})

	t.Run("unknown state rejected", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signedIn(t, "alice")

		rec := env.do(t, http.MethodPost, "/tasks", token,
			`{"title":"write tests","state":"cancelled"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signedIn(t, "alice")

		rec := env.do(t, http.MethodPost, "/tasks", token, `{"title":`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestListTasks(t *testing.T) {
	t.Run("query parameters map to the filter", func(t *testing.T) {
		env := newTestEnv(t)
		caller, token := env.signedIn(t, "alice")

		want := task.Filter{Title: "tests", State: task.StateDoing, Limit: 5, Offset: 10}
		env.tasks.On("List", mock.Anything, caller.ID, want).Return([]*task.Task{}, nil)

		rec := env.do(t, http.MethodGet, "/tasks?title=tests&state=doing&limit=5&offset=10", token, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("empty list marshals as an array", func(t *testing.T) {
		env := newTestEnv(t)
		caller, token := env.signedIn(t, "alice")

		env.tasks.On("List", mock.Anything, caller.ID, task.Filter{Limit: task.DefaultListLimit}).
			Return([]*task.Task{}, nil)

		rec := env.do(t, http.MethodGet, "/tasks", token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())
	})
}

func TestUpdateTask(t *testing.T) {
	t.Run("owner updates own task", func(t *testing.T) {
		env := newTestEnv(t)
		caller, token := env.signedIn(t, "alice")

		existing := &task.Task{
			ID:      ulid.Make(),
			OwnerID: caller.ID,
			Title:   "write tests",
			State:   task.StateTodo,
		}
		env.tasks.On("Get", mock.Anything, caller.ID, existing.ID).Return(existing, nil)
		env.tasks.On("Update", mock.Anything, mock.AnythingOfType("*task.Task")).Return(nil)

		rec := env.do(t, http.MethodPatch, "/tasks/"+existing.ID.String(), token,
			`{"state":"done"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"state":"done"`)
	})

	t.Run("another owner's task reads as missing", func(t *testing.T) {
		env := newTestEnv(t)
		caller, token := env.signedIn(t, "alice")

		id := ulid.Make()
		env.tasks.On("Get", mock.Anything, caller.ID, id).Return(nil, task.ErrNotFound)

		rec := env.do(t, http.MethodPatch, "/tasks/"+id.String(), token, `{"state":"done"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail":"task not found"}`, rec.Body.String())
	})

	t.Run("malformed id reads as missing", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.signedIn(t, "alice")

		rec := env.do(t, http.MethodPatch, "/tasks/not-a-ulid", token, `{"state":"done"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail":"task not found"}`, rec.Body.String())
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("owner deletes own task", func(t *testing.T) {
		env := newTestEnv(t)
		caller, token := env.signedIn(t, "alice")

		id := ulid.Make()
		env.tasks.On("Delete", mock.Anything, caller.ID, id).Return(nil)

		rec := env.do(t, http.MethodDelete, "/tasks/"+id.String(), token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"task deleted"}`, rec.Body.String())
	})

	t.Run("another owner's task reads as missing", func(t *testing.T) {
		env := newTestEnv(t)
		caller, token := env.signedIn(t, "alice")

		id := ulid.Make()
		env.tasks.On("Delete", mock.Anything, caller.ID, id).Return(task.ErrNotFound)

		rec := env.do(t, http.MethodDelete, "/tasks/"+id.String(), token, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail":"task not found"}`, rec.Body.String())
	})
}
