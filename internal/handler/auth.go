package handler

import (
	"errors"
	"net/http"

	"github.com/Dan9191/property-insights/internal/middleware"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/Dan9191/property-insights/internal/service"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeFieldErrors(w, invalidBody)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, mortgage.ErrInvalidInput):
		writeFieldErrors(w, mortgage.FieldErrors(err))
		return
	case errors.Is(err, service.ErrConflict):
		writeMessage(w, http.StatusConflict, "User already exists")
		return
	case err != nil:
		h.serverError(w, r, "Server error", err)
		return
	}

	token, err := h.svc.IssueToken(user.ID)
	if err != nil {
		h.serverError(w, r, "Server error", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeFieldErrors(w, invalidBody)
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.serverError(w, r, "Server error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Me returns the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), userID)
	if errors.Is(err, service.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Server error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
