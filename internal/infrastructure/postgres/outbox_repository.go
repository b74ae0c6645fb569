package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo eventos pendientes de publicar en Kafka.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Dentro de RunDocument recibe la tx.
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Create inserta el evento en estado pending.
func (r *OutboxRepo) Create(ctx context.Context, e *entity.OutboxEvent) error {
	status := e.Status
	if status == "" {
		status = entity.OutboxStatusPending
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, topic, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.AggregateType, e.AggregateID, e.EventType, e.Topic, e.Payload, status, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// ListPending eventos pending o failed cuyo reintento ya venció, por antigüedad.
func (r *OutboxRepo) ListPending(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, topic, payload, status, retry_count,
			COALESCE(next_retry_at, created_at), created_at
		FROM outbox_events
		WHERE status IN ($1, $2)
			AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at ASC
		LIMIT $3`,
		entity.OutboxStatusPending, entity.OutboxStatusFailed, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list outbox events: %w", err)
	}
	defer rows.Close()

	events := make([]*entity.OutboxEvent, 0, limit)
	for rows.Next() {
		var e entity.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Topic,
			&e.Payload, &e.Status, &e.RetryCount, &e.NextRetryAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// MarkSent marca el evento como publicado.
func (r *OutboxRepo) MarkSent(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE outbox_events
		SET status = $2, processed_at = NOW(), error_message = NULL
		WHERE id = $1`,
		id, entity.OutboxStatusSent,
	)
	if err != nil {
		return fmt.Errorf("mark outbox sent: %w", err)
	}
	return nil
}

// MarkFailed registra el fallo y programa el reintento con espera lineal (máx. 150 s).
func (r *OutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE outbox_events
		SET status = $2,
			retry_count = retry_count + 1,
			error_message = LEFT($3, 500),
			next_retry_at = NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds')
		WHERE id = $1`,
		id, entity.OutboxStatusFailed, reason,
	)
	if err != nil {
		return fmt.Errorf("mark outbox failed: %w", err)
	}
	return nil
}
