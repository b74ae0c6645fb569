package entity

import "time"

// Estados del outbox.
const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// Eventos publicados.
const (
	EventDocumentStatusChanged = "document.status_changed"
	AggregateDocument          = "document"
)

// OutboxEvent evento escrito en la misma transacción que el cambio que lo origina.
type OutboxEvent struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   time.Time
	CreatedAt     time.Time
}
