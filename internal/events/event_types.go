package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLancamentoSaved   EventType = "lancamento_saved"
	EventLancamentoDeleted EventType = "lancamento_deleted"
	EventReferenceChanged  EventType = "reference_changed"
	EventUserChanged       EventType = "user_changed"
	EventFeedbackCreated   EventType = "feedback_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New builds an event with a fresh id.
func New(t EventType, subjectID, actorID string, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: at,
		Payload:   payload,
	}
}

// LancamentoPayload describes a created, updated or deleted submission.
type LancamentoPayload struct {
	Op             string            `json:"op"`
	SchemaType     domain.SchemaType `json:"schema_type"`
	BaseID         string            `json:"base_id"`
	EquipeID       string            `json:"equipe_id"`
	DataReferencia string            `json:"data_referencia"`
}

// ReferencePayload names the reference table that changed.
type ReferencePayload struct {
	Table string `json:"table"`
	Op    string `json:"op"`
}

// UserPayload describes an admin change to a user.
type UserPayload struct {
	Op   string      `json:"op"`
	Role domain.Role `json:"role,omitempty"`
}

// FeedbackPayload summarises a new support message.
type FeedbackPayload struct {
	Tipo    domain.FeedbackTipo `json:"tipo"`
	Preview string              `json:"preview"`
}
