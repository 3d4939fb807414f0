package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"rosterkeeper/internal/common"
	"rosterkeeper/internal/server/auth"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error(r.Context(), "failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	account, err := s.repos.Accounts().Create(r.Context(), req.Username, hash)
	if errors.Is(err, common.ErrDuplicate) {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "failed to create account", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeSession(w, r, account.ID, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.repos.Accounts().GetByUsername(r.Context(), req.Username)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "failed to load account", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := auth.VerifyPassword(account.PasswordHash, req.Password); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.logger.Error(r.Context(), "failed to verify password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeSession(w, r, account.ID, http.StatusOK)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, accountID string, status int) {
	expiresAt := time.Now().Add(s.cfg.TokenValidityDuration)
	token, err := auth.GenerateToken(accountID, []byte(s.cfg.SecretKey), s.cfg.TokenValidityDuration)
	if err != nil {
		s.logger.Error(r.Context(), "failed to sign token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, status, sessionResponse{Token: token, ExpiresAt: expiresAt})
}
