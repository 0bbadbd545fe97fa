package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"eventsales/backend/internal/auth"
	"eventsales/backend/internal/repository"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges email and password for an access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	user, err := h.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		logger.Warn("login", "status", "unknown_user")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.handleError(logger, w, "login", err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		logger.Warn("login", "status", "bad_password", "user_id", user.ID)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.SignAccessToken(h.cfg.JWTSecret, user.ID, user.IsAdmin || user.IsSuperAdmin)
	if err != nil {
		h.handleError(logger, w, "login", err)
		return
	}
	logger.Info("login", "status", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken": token,
		"user":        user,
	})
}
