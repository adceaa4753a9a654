// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskloom/taskloom/internal/auth"
	"github.com/taskloom/taskloom/internal/task"
	"github.com/taskloom/taskloom/pkg/errutil"
)

// detailResponse is the error body shape for every failure response.
type detailResponse struct {
	Detail string `json:"detail"`
}

// messageResponse is the body shape for delete confirmations.
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write failure means the client went away
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// writeUnauthorized emits the fixed resolver-failure response. The body
// never varies with the failure cause.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}

// writeServiceError translates a domain error into a response using the
// sentinel taxonomy. Unrecognized errors become opaque 500s.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "incorrect username or password")
	case errors.Is(err, auth.ErrUnauthenticated):
		writeUnauthorized(w)
	case errors.Is(err, auth.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "not enough permissions")
	case errors.Is(err, auth.ErrUsernameTaken):
		writeDetail(w, http.StatusConflict, "username already exists")
	case errors.Is(err, auth.ErrEmailTaken):
		writeDetail(w, http.StatusConflict, "email already exists")
	case errors.Is(err, auth.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "user not found")
	case errors.Is(err, task.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "task not found")
	case errors.Is(err, auth.ErrValidation),
		errors.Is(err, task.ErrValidation),
		errors.Is(err, auth.ErrEmptyPassword):
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		errutil.LogError(logger, "request failed", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a request body into v. A malformed or non-JSON body
// is a validation failure, not a server error.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err //nolint:wrapcheck // caller maps to a 422 response
	}
	return nil
}
