// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskloom/taskloom/internal/auth"
)

// publicUser is the wire shape for an account. The password hash never
// leaves the auth package boundary.
type publicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPublicUser(u *auth.User) publicUser {
	return publicUser{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPatchRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type userListResponse struct {
	Users []publicUser `json:"users"`
}

// handleRegister creates a new account.
// POST /users
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPublicUser(user))
}

// handleListUsers returns a paginated account listing.
// GET /users
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	users, err := s.users.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	resp := userListResponse{Users: make([]publicUser, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toPublicUser(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetUser returns any account's public fields.
// GET /users/{id}
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "user not found")
		return
	}

	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toPublicUser(user))
}

// handleUpdateUser applies a partial update to the caller's own account.
// PUT /users/{id}
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "user not found")
		return
	}

	var req userPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}

	user, err := s.users.Update(r.Context(), identity, id, auth.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		// Account updates collapse both uniqueness conflicts into one
		// message: the caller sent both fields in one document.
		if errors.Is(err, auth.ErrUsernameTaken) || errors.Is(err, auth.ErrEmailTaken) {
			writeDetail(w, http.StatusConflict, "username or email already exists")
			return
		}
		writeServiceError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toPublicUser(user))
}

// handleDeleteUser removes the caller's own account.
// DELETE /users/{id}
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "user not found")
		return
	}

	if err := s.users.Delete(r.Context(), identity, id); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "user deleted"})
}

// paginationParams reads limit/offset query parameters. Absent or
// malformed values fall back to the service defaults.
func paginationParams(r *http.Request) (limit, offset int) {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}
