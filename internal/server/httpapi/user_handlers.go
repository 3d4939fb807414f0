package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rosterkeeper/internal/common"
	"rosterkeeper/internal/server/models"
)

type userPayload struct {
	ID             string    `json:"user_id,omitempty"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	GroupID        string    `json:"user_group_id,omitempty"`
	LastModifiedAt time.Time `json:"last_modified_at,omitzero"`
}

func toUserPayload(u models.User) userPayload {
	return userPayload{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		GroupID:        u.GroupID,
		LastModifiedAt: u.LastModifiedAt,
	}
}

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	users, err := s.repos.Users().GetAll(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := make([]userPayload, 0, len(users))
	for _, u := range users {
		payload = append(payload, toUserPayload(u))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	created, err := s.repos.Users().Create(r.Context(), models.User{
		Username: req.Username,
		Name:     req.Name,
		GroupID:  req.GroupID,
	})
	if errors.Is(err, common.ErrDuplicate) {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	// not-found on insert means the referenced group does not exist
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "unknown group")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toUserPayload(created))
}

func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	updated, err := s.repos.Users().Update(r.Context(), models.User{
		ID:       chi.URLParam(r, "id"),
		Username: req.Username,
		Name:     req.Name,
		GroupID:  req.GroupID,
	})
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if errors.Is(err, common.ErrDuplicate) {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "failed to update user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toUserPayload(updated))
}

func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	err := s.repos.Users().Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "failed to delete user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
