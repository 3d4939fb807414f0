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

type groupPayload struct {
	ID             string    `json:"user_group_id,omitempty"`
	Name           string    `json:"group_name"`
	Description    string    `json:"description"`
	LastModifiedAt time.Time `json:"last_modified_at,omitzero"`
}

func toGroupPayload(g models.Group) groupPayload {
	return groupPayload{
		ID:             g.ID,
		Name:           g.Name,
		Description:    g.Description,
		LastModifiedAt: g.LastModifiedAt,
	}
}

func (s *Server) handleGroupList(w http.ResponseWriter, r *http.Request) {
	groups, err := s.repos.Groups().GetAll(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "failed to list groups", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := make([]groupPayload, 0, len(groups))
	for _, g := range groups {
		payload = append(payload, toGroupPayload(g))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGroupCreate(w http.ResponseWriter, r *http.Request) {
	var req groupPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "group_name is required")
		return
	}

	created, err := s.repos.Groups().Create(r.Context(),
		models.Group{Name: req.Name, Description: req.Description})
	if errors.Is(err, common.ErrDuplicate) {
		writeError(w, http.StatusConflict, "group name already taken")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "failed to create group", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toGroupPayload(created))
}

func (s *Server) handleGroupUpdate(w http.ResponseWriter, r *http.Request) {
	var req groupPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "group_name is required")
		return
	}

	updated, err := s.repos.Groups().Update(r.Context(), models.Group{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
	})
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	if errors.Is(err, common.ErrDuplicate) {
		writeError(w, http.StatusConflict, "group name already taken")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "failed to update group", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toGroupPayload(updated))
}

func (s *Server) handleGroupDelete(w http.ResponseWriter, r *http.Request) {
	err := s.repos.Groups().Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "failed to delete group", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "group deleted"})
}
