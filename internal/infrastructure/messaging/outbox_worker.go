package messaging

import (
	"context"
	"time"

	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

// OutboxWorker publica periódicamente los eventos pendientes del outbox.
type OutboxWorker struct {
	repo         repository.OutboxRepository
	writer       MessageWriter
	log          *logger.Logger
	pollInterval time.Duration
	batchSize    int
}

// NewOutboxWorker construye el worker. Valores no positivos toman 3 s y 50 eventos.
func NewOutboxWorker(repo repository.OutboxRepository, writer MessageWriter, log *logger.Logger, pollInterval time.Duration, batchSize int) *OutboxWorker {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OutboxWorker{
		repo:         repo,
		writer:       writer,
		log:          log.Named("outbox.worker"),
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

// Run procesa lotes en cada tick hasta que ctx se cancela.
func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.log.Info().Dur("poll_interval", w.pollInterval).Msg("worker de outbox iniciado")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker de outbox detenido")
			return
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.log.Error().Err(err).Msg("procesar eventos del outbox")
			}
		}
	}
}

// ProcessPending publica un lote. Devuelve cuántos eventos quedaron enviados.
// Un fallo de publicación marca el evento como failed (con reintento programado) y sigue.
func (w *OutboxWorker) ProcessPending(ctx context.Context) (int, error) {
	events, err := w.repo.ListPending(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	w.log.Debug().Int("count", len(events)).Msg("procesando eventos pendientes")

	sent := 0
	for _, event := range events {
		if err := publishEvent(ctx, w.writer, event); err != nil {
			w.log.Error().Err(err).
				Str("outbox_id", event.ID).
				Str("event_type", event.EventType).
				Str("topic", event.Topic).
				Int("retry_count", event.RetryCount).
				Msg("publicación fallida")
			if mErr := w.repo.MarkFailed(ctx, event.ID, err.Error()); mErr != nil {
				w.log.Error().Err(mErr).Str("outbox_id", event.ID).Msg("marcar evento como fallido")
			}
			continue
		}
		if err := w.repo.MarkSent(ctx, event.ID); err != nil {
			w.log.Error().Err(err).Str("outbox_id", event.ID).Msg("marcar evento como enviado")
			continue
		}
		sent++
		w.log.Info().
			Str("outbox_id", event.ID).
			Str("event_type", event.EventType).
			Str("topic", event.Topic).
			Msg("evento publicado")
	}
	return sent, nil
}
