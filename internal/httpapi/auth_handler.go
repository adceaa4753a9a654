// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package httpapi

import (
	"errors"
	"net/http"

	"github.com/taskloom/taskloom/internal/auth"
)

// tokenResponse is the login success body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleLogin exchanges form-encoded credentials for a bearer token.
// POST /auth/token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed form body")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	token, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.recordAuthFailure("bad_credentials")
		}
		writeServiceError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}
