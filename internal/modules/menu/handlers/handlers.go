// Package handlers provides HTTP handlers for navigation lookups.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/modules/menu"
)

// Handler serves the navigation tree
type Handler struct {
	tree *menu.Tree
	log  zerolog.Logger
}

// NewHandler creates a new menu handler
func NewHandler(tree *menu.Tree, log zerolog.Logger) *Handler {
	return &Handler{
		tree: tree,
		log:  log.With().Str("handler", "menu").Logger(),
	}
}

// HandleGetMenu handles GET /api/menu
func (h *Handler) HandleGetMenu(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.tree.Roots())
}

// HandleGetRoutes handles GET /api/menu/routes
func (h *Handler) HandleGetRoutes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.tree.Routes())
}

// HandleGetPaths handles GET /api/menu/paths
func (h *Handler) HandleGetPaths(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.tree.AllPaths())
}

// HandleResolve handles GET /api/menu/resolve?path=
// Unknown paths answer 404 with the fallback resolution as body.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	res := h.tree.Resolve(r.URL.Query().Get("path"))
	status := http.StatusOK
	if !res.Found {
		status = http.StatusNotFound
	}
	h.writeJSON(w, status, res)
}

// HandleGetParent handles GET /api/menu/parent?path=
func (h *Handler) HandleGetParent(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	parent, ok := h.tree.FindParentByPath(path)
	if !ok {
		h.writeError(w, http.StatusNotFound, "no parent for path: "+path)
		return
	}
	h.writeJSON(w, http.StatusOK, parent)
}

// HandleGetSection handles GET /api/menu/section?path=
func (h *Handler) HandleGetSection(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	key, ok := h.tree.ActiveSection(path)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":   path,
		"key":    key,
		"active": ok,
	})
}

// HandleGetSubMenu handles GET /api/menu/submenu?key=
func (h *Handler) HandleGetSubMenu(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		h.writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	children := h.tree.SubMenu(key)
	if children == nil {
		children = []menu.Node{}
	}
	h.writeJSON(w, http.StatusOK, children)
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
