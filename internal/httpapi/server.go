// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

// Package httpapi exposes the task-list service over HTTP/JSON.
//
// The boundary owns wire shapes and status mapping; all domain rules
// live in the auth and task services it delegates to.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/taskloom/taskloom/internal/auth"
	"github.com/taskloom/taskloom/internal/observability"
	"github.com/taskloom/taskloom/internal/task"
)

// Server is the HTTP API server.
type Server struct {
	addr    string
	auth    *auth.Service
	users   *auth.UserService
	tasks   *task.Service
	logger  *slog.Logger
	metrics *observability.Metrics

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a new API server. The metrics sink is optional;
// everything else is required.
func NewServer(addr string, authSvc *auth.Service, users *auth.UserService, tasks *task.Service, logger *slog.Logger, metrics *observability.Metrics) (*Server, error) {
	if authSvc == nil {
		return nil, oops.Code("HTTPAPI_NIL_DEPENDENCY").Errorf("auth service is required")
	}
	if users == nil {
		return nil, oops.Code("HTTPAPI_NIL_DEPENDENCY").Errorf("user service is required")
	}
	if tasks == nil {
		return nil, oops.Code("HTTPAPI_NIL_DEPENDENCY").Errorf("task service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		auth:    authSvc,
		users:   users,
		tasks:   tasks,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/token", s.handleLogin)
	mux.HandleFunc("POST /users", s.handleRegister)

	mux.Handle("GET /users", s.requireAuth(http.HandlerFunc(s.handleListUsers)))
	mux.Handle("GET /users/{id}", s.requireAuth(http.HandlerFunc(s.handleGetUser)))
	mux.Handle("PUT /users/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdateUser)))
	mux.Handle("DELETE /users/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteUser)))

	mux.Handle("POST /tasks", s.requireAuth(http.HandlerFunc(s.handleCreateTask)))
	mux.Handle("GET /tasks", s.requireAuth(http.HandlerFunc(s.handleListTasks)))
	mux.Handle("PATCH /tasks/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdateTask)))
	mux.Handle("DELETE /tasks/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteTask)))

	var h http.Handler = mux
	h = s.recoverPanics(h)
	h = s.logging(h)
	return h
}

// Start begins serving API requests.
// It returns an error channel that receives any error from the HTTP
// server after startup; the channel is closed on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
