// Package handlers provides HTTP handlers for the operator session.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/modules/session"
)

// Handler handles session HTTP requests
type Handler struct {
	service *session.Service
	log     zerolog.Logger
}

// NewHandler creates a new session handler
func NewHandler(service *session.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "session").Logger(),
	}
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRoutes registers all session routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/session", h.HandleGetSession)
		r.Post("/login", h.HandleLogin)
		r.Post("/logout", h.HandleLogout)
		r.Post("/register", h.HandleRegister)
		r.Put("/profile", h.HandleUpdateProfile)
		r.Post("/refresh", h.HandleRefresh)
	})
}

// HandleGetSession handles GET /api/auth/session
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Current())
}

// HandleLogin handles POST /api/auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	st, err := h.service.Login(req.Email, req.Password)
	h.respond(w, st, err)
}

// HandleLogout handles POST /api/auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Logout()
	h.respond(w, st, err)
}

// HandleRegister handles POST /api/auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	st, err := h.service.Register(req.Username, req.Email, req.Password)
	h.respond(w, st, err)
}

// HandleUpdateProfile handles PUT /api/auth/profile
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch session.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	st, err := h.service.UpdateProfile(patch)
	h.respond(w, st, err)
}

// HandleRefresh handles POST /api/auth/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.RefreshToken()
	h.respond(w, st, err)
}

func (h *Handler) respond(w http.ResponseWriter, st session.State, err error) {
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, st)
	case errors.Is(err, session.ErrUnauthenticated):
		h.writeError(w, http.StatusUnauthorized, err.Error())
	case domain.IsValidation(err):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Session operation failed")
		h.writeError(w, http.StatusInternalServerError, "Session operation failed")
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
