package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/coworking/internal/domain"
)

// EventType enumerates account lifecycle events.
type EventType string

const (
	EventAccountRegistered EventType = "account_registered"
	EventPasswordChanged   EventType = "password_changed"
	EventLoginThrottled    EventType = "login_throttled"
	EventAccountDeleted    EventType = "account_deleted"
)

// Event is emitted by an identity service after a state change.
type Event struct {
	ID        uuid.UUID    `json:"id"`
	Type      EventType    `json:"type"`
	Domain    domain.Label `json:"domain"`
	SubjectID uuid.UUID    `json:"subject_id,omitempty"`
	// Email is set for events about an e-mail rather than a stored account.
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, label domain.Label, subject uuid.UUID, at time.Time) Event {
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Domain:    label,
		SubjectID: subject,
		Timestamp: at.UTC(),
	}
}
