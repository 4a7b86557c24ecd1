package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ayusman/depthpose/internal/app"
)

// Controls gives access to the running viewer's display toggles.
type Controls interface {
	Options() app.Options
	SetOptions(o app.Options)
}

// SettingsHandler serves GET and PUT /api/settings.
type SettingsHandler struct {
	controls Controls
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(c Controls) *SettingsHandler {
	return &SettingsHandler{controls: c}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.controls.Options())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update applies a partial update such as {"mirror": true}.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req map[string]bool
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o := h.controls.Options()
	for name, value := range req {
		if !o.Set(name, value) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown setting %q", name))
			return
		}
	}
	h.controls.SetOptions(o)

	writeJSON(w, http.StatusOK, h.controls.Options())
}
