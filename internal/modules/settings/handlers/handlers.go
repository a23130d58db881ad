// Package handlers provides HTTP handlers for UI and application settings.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/modules/settings"
)

// Handler provides HTTP handlers for settings endpoints
type Handler struct {
	service *settings.Service
	log     zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "settings").Logger(),
	}
}

// ThemeRequest is the body of PUT /api/settings/ui/theme
type ThemeRequest struct {
	Theme settings.Theme `json:"theme"`
}

// SidebarRequest is the body of PUT /api/settings/ui/sidebar
type SidebarRequest struct {
	Collapsed bool `json:"collapsed"`
}

// HandleGetUI handles GET /api/settings/ui
func (h *Handler) HandleGetUI(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.UI())
}

// HandleSetTheme handles PUT /api/settings/ui/theme
func (h *Handler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.SetTheme(req.Theme)
	h.respond(w, result, err)
}

// HandleToggleTheme handles POST /api/settings/ui/theme/toggle
func (h *Handler) HandleToggleTheme(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ToggleTheme()
	h.respond(w, result, err)
}

// HandleToggleSidebar handles POST /api/settings/ui/sidebar/toggle
func (h *Handler) HandleToggleSidebar(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ToggleSidebar()
	h.respond(w, result, err)
}

// HandleSetSidebar handles PUT /api/settings/ui/sidebar
func (h *Handler) HandleSetSidebar(w http.ResponseWriter, r *http.Request) {
	var req SidebarRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.SetSidebarCollapsed(req.Collapsed)
	h.respond(w, result, err)
}

// HandleUpdateNotifications handles PUT /api/settings/ui/notifications
func (h *Handler) HandleUpdateNotifications(w http.ResponseWriter, r *http.Request) {
	var patch settings.NotificationPatch
	if !h.decode(w, r, &patch) {
		return
	}
	result, err := h.service.UpdateNotifications(patch)
	h.respond(w, result, err)
}

// HandleUpdateLayout handles PUT /api/settings/ui/layout
func (h *Handler) HandleUpdateLayout(w http.ResponseWriter, r *http.Request) {
	var patch settings.LayoutPatch
	if !h.decode(w, r, &patch) {
		return
	}
	result, err := h.service.UpdateLayout(patch)
	h.respond(w, result, err)
}

// HandleGetApp handles GET /api/settings/app
func (h *Handler) HandleGetApp(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"appInfo":      h.service.Info(),
		"preferences":  h.service.App().Preferences,
		"featureFlags": h.service.App().FeatureFlags,
	})
}

// HandleUpdatePreferences handles PUT /api/settings/app/preferences
func (h *Handler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch settings.PreferencesPatch
	if !h.decode(w, r, &patch) {
		return
	}
	result, err := h.service.UpdatePreferences(patch)
	h.respond(w, result, err)
}

// HandleResetPreferences handles POST /api/settings/app/preferences/reset
func (h *Handler) HandleResetPreferences(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ResetPreferences()
	h.respond(w, result, err)
}

// HandleToggleFeature handles POST /api/settings/app/features/{flag}/toggle
func (h *Handler) HandleToggleFeature(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ToggleFeatureFlag(chi.URLParam(r, "flag"))
	h.respond(w, result, err)
}

// HandleSetFeatures handles PUT /api/settings/app/features
func (h *Handler) HandleSetFeatures(w http.ResponseWriter, r *http.Request) {
	var flags map[string]bool
	if !h.decode(w, r, &flags) {
		return
	}
	result, err := h.service.SetFeatureFlags(flags)
	h.respond(w, result, err)
}

// HandleGetStatus handles GET /api/settings/app/status
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Status())
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respond writes the result of a service mutation
func (h *Handler) respond(w http.ResponseWriter, result interface{}, err error) {
	if err != nil {
		switch {
		case domain.IsValidation(err):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case domain.IsNotFound(err):
			h.writeError(w, http.StatusNotFound, err.Error())
		default:
			h.log.Error().Err(err).Msg("Failed to update settings")
			h.writeError(w, http.StatusInternalServerError, "Failed to update settings")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, result)
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
