package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	service "github.com/veloce/artrank/internal/app"
	"github.com/veloce/artrank/internal/domain/model"
)

// EventsHandler handles event submissions.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

type ackResponse struct {
	Accepted   bool   `json:"accepted"`
	EventID    string `json:"event_id"`
	Durability string `json:"durability"`
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var sub model.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ack, err := h.deps.RecordEvent(r.Context(), sub, clientIdentity(r))
	if err != nil {
		var rle *service.RateLimitedError
		switch {
		case errors.As(err, &rle):
			secs := int64(rle.RetryAfter.Seconds())
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Code:       "rate_limited",
				Message:    err.Error(),
				RetryAfter: secs,
			})
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, "validation_error", Wrap(op, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}

	writeJSON(w, http.StatusAccepted, ackResponse{
		Accepted:   true,
		EventID:    ack.EventID,
		Durability: string(ack.Durability),
	})
}
