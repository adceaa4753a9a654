// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskloom/taskloom/internal/auth"
	"github.com/taskloom/taskloom/internal/task"
)

// publicTask is the wire shape for a task.
type publicTask struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPublicTask(t *task.Task) publicTask {
	return publicTask{
		ID:          t.ID.String(),
		OwnerID:     t.OwnerID.String(),
		Title:       t.Title,
		Description: t.Description,
		State:       string(t.State),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"`
}

type taskPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	State       *string `json:"state"`
}

type taskListResponse struct {
	Tasks []publicTask `json:"tasks"`
}

// handleCreateTask adds a task to the caller's list.
// POST /tasks
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}

	t, err := s.tasks.Create(r.Context(), identity.ID, req.Title, req.Description, task.State(req.State))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPublicTask(t))
}

// handleListTasks returns the caller's tasks matching the query filters.
// GET /tasks
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	limit, offset := paginationParams(r)
	query := r.URL.Query()
	filter := task.Filter{
		Title:       query.Get("title"),
		Description: query.Get("description"),
		State:       task.State(query.Get("state")),
		Limit:       limit,
		Offset:      offset,
	}

	tasks, err := s.tasks.List(r.Context(), identity.ID, filter)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	resp := taskListResponse{Tasks: make([]publicTask, 0, len(tasks))}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, toPublicTask(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUpdateTask applies a partial update to one of the caller's
// tasks. A task outside the caller's scope reads as missing.
// PATCH /tasks/{id}
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}

	patch := task.Patch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.State != nil {
		state := task.State(*req.State)
		patch.State = &state
	}

	t, err := s.tasks.Update(r.Context(), identity.ID, id, patch)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toPublicTask(t))
}

// handleDeleteTask removes one of the caller's tasks.
// DELETE /tasks/{id}
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "task not found")
		return
	}

	if err := s.tasks.Delete(r.Context(), identity.ID, id); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "task deleted"})
}
