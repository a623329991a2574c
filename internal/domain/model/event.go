// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// EventType enumerates the closed set of interaction kinds the engine
// accepts. Anything outside this set is a validation error at the
// ingestion boundary, never silently counted.
type EventType string

// Interaction kinds, roughly ordered by engagement strength.
const (
	EventView    EventType = "view"
	EventSkip    EventType = "skip"
	EventReplay  EventType = "replay"
	EventLike    EventType = "like"
	EventSave    EventType = "save"
	EventShare   EventType = "share"
	EventFollow  EventType = "follow"
	EventComment EventType = "comment"
	EventVote    EventType = "vote"
)

// EventTypes returns all accepted interaction kinds in a stable order.
func EventTypes() []EventType {
	return []EventType{
		EventView, EventSkip, EventReplay, EventLike, EventSave,
		EventShare, EventFollow, EventComment, EventVote,
	}
}

// Valid reports whether t is one of the accepted interaction kinds.
func (t EventType) Valid() bool {
	switch t {
	case EventView, EventSkip, EventReplay, EventLike, EventSave,
		EventShare, EventFollow, EventComment, EventVote:
		return true
	}
	return false
}

// Field clamps applied at the ingestion boundary.
const (
	MaxIDLength       = 64
	MaxWatchMs        = int64(time.Hour / time.Millisecond)
	MaxMetadataKeys   = 16
	MaxMetadataString = 256
)

// Event is an immutable interaction fact. Created once by the ingestion
// boundary, appended to the event log in arrival order, never mutated.
// OccurredAt is authoritative for all windowing and decay math.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	EntityID   string         `json:"entity_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	WatchMs    int64          `json:"watch_ms,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Submission is the raw wire shape accepted by POST /events before
// identity and timestamp assignment.
type Submission struct {
	Type     string         `json:"type"`
	EntityID string         `json:"entity_id"`
	ActorID  string         `json:"actor_id,omitempty"`
	WatchMs  int64          `json:"watch_duration_ms,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Normalize validates and clamps the submission and mints an Event with
// the given identity and timestamp. Internal code downstream of this
// boundary never re-checks optionality.
func (s Submission) Normalize(id string, occurredAt time.Time) (Event, error) {
	t := EventType(strings.ToLower(strings.TrimSpace(s.Type)))
	if !t.Valid() {
		return Event{}, ErrUnknownEventType
	}

	entityID := strings.TrimSpace(s.EntityID)
	if entityID == "" {
		return Event{}, ErrMissingEntityID
	}
	if !validID(entityID) {
		return Event{}, ErrInvalidEntityID
	}

	actorID := strings.TrimSpace(s.ActorID)
	if actorID != "" && !validID(actorID) {
		return Event{}, ErrInvalidActorID
	}

	watchMs := s.WatchMs
	if watchMs < 0 {
		return Event{}, ErrNegativeWatchMs
	}
	if watchMs > MaxWatchMs {
		watchMs = MaxWatchMs
	}

	meta, err := clampMetadata(s.Metadata)
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:         id,
		Type:       t,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: occurredAt.UTC(),
		WatchMs:    watchMs,
		Metadata:   meta,
	}, nil
}

// validID restricts identifiers to a URL-safe charset with a fixed
// length cap.
func validID(id string) bool {
	if len(id) > MaxIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

// clampMetadata keeps metadata small and flat: string/number/boolean
// values only, strings truncated, key count bounded.
func clampMetadata(in map[string]any) (map[string]any, error) {
	if len(in) == 0 {
		return nil, nil
	}
	if len(in) > MaxMetadataKeys {
		return nil, ErrMetadataTooLarge
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		k = truncate(k, MaxMetadataString)
		switch val := v.(type) {
		case string:
			out[k] = truncate(val, MaxMetadataString)
		case bool:
			out[k] = val
		case float64:
			out[k] = val
		case float32:
			out[k] = float64(val)
		case int:
			out[k] = float64(val)
		case int64:
			out[k] = float64(val)
		default:
			return nil, ErrMetadataValueKind
		}
	}
	return out, nil
}

// truncate cuts s to at most max bytes, backing up to a rune boundary
// so the result stays valid UTF-8 for the event log encoder.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
