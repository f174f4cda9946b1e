package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
)

type taskRequest struct {
	Username    string `json:"username"`
	TaskID      string `json:"taskId,omitempty"`
	Description string `json:"description,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
	NewUrgency  string `json:"newUrgency,omitempty"`
}

// decodeTaskRequest reads the body and authorizes its username. On failure
// the response is already written.
func (s *Server) decodeTaskRequest(w http.ResponseWriter, r *http.Request) (*taskRequest, *accounts.Account, bool) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	if err := required("username", req.Username); err != nil {
		writeCoreError(w, err)
		return nil, nil, false
	}
	acc, _, ok := s.authorize(w, r, req.Username)
	if !ok {
		return nil, nil, false
	}
	return &req, acc, true
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("Username")
	if err := required("Username", username); err != nil {
		writeCoreError(w, err)
		return
	}
	acc, _, ok := s.authorize(w, r, username)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, acc.GetProfileTasks())
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	req, acc, ok := s.decodeTaskRequest(w, r)
	if !ok {
		return
	}
	if err := required("description", req.Description); err != nil {
		writeCoreError(w, err)
		return
	}
	urgency, err := tasks.ParseUrgency(req.Urgency)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	task, err := acc.AddTask(r.Context(), req.Description, urgency)
	if err != nil {
		s.logger.Error(r.Context(), "add task failed", "error", err)
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	req, acc, ok := s.decodeTaskRequest(w, r)
	if !ok {
		return
	}
	s.writeTaskChange(w, r, func() (bool, error) {
		return acc.ToggleTaskCompletion(r.Context(), req.TaskID)
	})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	req, acc, ok := s.decodeTaskRequest(w, r)
	if !ok {
		return
	}
	s.writeTaskChange(w, r, func() (bool, error) {
		return acc.DeleteTask(r.Context(), req.TaskID)
	})
}

func (s *Server) handleUpdateUrgency(w http.ResponseWriter, r *http.Request) {
	req, acc, ok := s.decodeTaskRequest(w, r)
	if !ok {
		return
	}
	urgency, err := tasks.ParseUrgency(req.NewUrgency)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	s.writeTaskChange(w, r, func() (bool, error) {
		return acc.UpdateTaskUrgency(r.Context(), req.TaskID, urgency)
	})
}

// writeTaskChange runs a by-id task mutation. An unknown id is a 404; the
// account is left untouched in that case.
func (s *Server) writeTaskChange(w http.ResponseWriter, r *http.Request, change func() (bool, error)) {
	changed, err := change()
	if err != nil {
		s.logger.Error(r.Context(), "task update failed", "error", err)
		writeCoreError(w, err)
		return
	}
	if !changed {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleResetTasks(w http.ResponseWriter, r *http.Request) {
	_, acc, ok := s.decodeTaskRequest(w, r)
	if !ok {
		return
	}
	if err := acc.ResetTasks(r.Context()); err != nil {
		s.logger.Error(r.Context(), "reset tasks failed", "error", err)
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type completionResponse struct {
	Urgency    string  `json:"urgency,omitempty"`
	Percentage float64 `json:"percentage"`
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	username := q.Get("Username")
	if err := required("Username", username); err != nil {
		writeCoreError(w, err)
		return
	}

	var filter *tasks.Urgency
	if raw := q.Get("urgency"); raw != "" {
		u, err := tasks.ParseUrgency(raw)
		if err != nil {
			writeCoreError(w, err)
			return
		}
		filter = &u
	}

	acc, _, ok := s.authorize(w, r, username)
	if !ok {
		return
	}

	resp := completionResponse{Percentage: acc.CompletionPercentage(filter)}
	if filter != nil {
		resp.Urgency = filter.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	_, acc, ok := s.decodeTaskRequest(w, r)
	if !ok {
		return
	}
	if s.archiver == nil {
		writeError(w, http.StatusServiceUnavailable, "archive disabled")
		return
	}

	res, err := s.archiver.Snapshot(r.Context(), acc.Username(), acc.GetProfileTasks())
	if err != nil {
		s.logger.Error(r.Context(), "snapshot failed", "error", err)
		writeCoreError(w, common.ErrorInternal)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
