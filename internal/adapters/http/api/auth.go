// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// sessionCookieMaxAge keeps the cookie alive as long as a busy session can
// be; the store's idle TTL is the real authority.
const sessionCookieMaxAge = 24 * 60 * 60

// AuthHandler handles login, registration and logout.
type AuthHandler struct {
	deps Dependencies
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps Dependencies) *AuthHandler {
	return &AuthHandler{deps: deps}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	SessionID    string `json:"session_id"`
	Role         string `json:"role"`
	NeedsProfile bool   `json:"needs_profile"`
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleLogin handles POST /api/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest.Error())
		return
	}
	view, err := h.deps.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	setSessionCookie(w, view.SessionID, sessionCookieMaxAge)
	writeJSON(w, http.StatusOK, loginResponse{
		SessionID:    view.SessionID,
		Role:         view.Role,
		NeedsProfile: view.NeedsProfile,
	})
}

// HandleRegister handles POST /api/auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest.Error())
		return
	}
	if err := h.deps.Register(r.Context(), req.FullName, req.Email, req.Password); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "Registration successful. Please log in."})
}

// HandleLogout handles POST /api/auth/logout requests. Logout always
// succeeds; revoking an unknown session is a no-op.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if id := sessionID(r); id != "" {
		h.deps.Logout(r.Context(), id)
	}
	setSessionCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}
