package api

import (
	"net/http"
	"strings"
)

// MedalHandler handles per-entity medal lookups.
type MedalHandler struct {
	deps Dependencies
}

// NewMedalHandler creates a new medal handler.
func NewMedalHandler(deps Dependencies) *MedalHandler {
	return &MedalHandler{deps: deps}
}

// HandleGetMedal handles GET /medal/{entity_id} requests.
func (h *MedalHandler) HandleGetMedal(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_medal"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	entityID := strings.TrimPrefix(r.URL.Path, "/medal/")
	if entityID == "" || strings.Contains(entityID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	medal, err := h.deps.MedalForEntity(r.Context(), entityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, medal)
}
