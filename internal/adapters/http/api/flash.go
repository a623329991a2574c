package api

import (
	"net/http"
	"strconv"
)

// Default flash query parameters.
const (
	defaultFlashWindowHours = 24
	defaultFlashLimit       = 10
)

// FlashHandler handles flash-window winner requests.
type FlashHandler struct {
	deps Dependencies
}

// NewFlashHandler creates a new flash handler.
func NewFlashHandler(deps Dependencies) *FlashHandler {
	return &FlashHandler{deps: deps}
}

// HandleGetFlash handles GET /flash?window_hours=N&limit=M requests.
func (h *FlashHandler) HandleGetFlash(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_flash"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	windowHours := defaultFlashWindowHours
	if s := r.URL.Query().Get("window_hours"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		windowHours = parsed
	}

	limit := defaultFlashLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = parsed
	}

	winners, err := h.deps.FlashWinners(r.Context(), windowHours, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, winners)
}
