// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/taskloom/taskloom/internal/auth"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	//nolint:wrapcheck // ResponseWriter interface passthrough
	return r.ResponseWriter.Write(b)
}

// logging records one line per completed request and feeds the request
// metrics when a metrics sink is attached.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		elapsed := time.Since(start)

		s.logger.InfoContext(r.Context(), "request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
			"remote", r.RemoteAddr,
		)

		if s.metrics != nil {
			s.metrics.RecordRequest(routePattern(r), rec.status, elapsed)
		}
	})
}

// routePattern returns the matched mux pattern without the method, so
// metrics are labeled per route rather than per concrete URL.
func routePattern(r *http.Request) string {
	pattern := r.Pattern
	if pattern == "" {
		return r.URL.Path
	}
	if _, path, found := strings.Cut(pattern, " "); found {
		return path
	}
	return pattern
}

// recoverPanics converts handler panics into opaque 500 responses.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.ErrorContext(r.Context(), "handler panic",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
				)
				writeDetail(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAuth resolves the bearer token and attaches the identity to the
// request context. Every failure mode produces the same fixed 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.recordAuthFailure("missing_token")
			writeUnauthorized(w)
			return
		}

		identity, err := s.auth.Resolve(r.Context(), token)
		if err != nil {
			s.recordAuthFailure("invalid_token")
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *Server) recordAuthFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordAuthFailure(reason)
	}
}
