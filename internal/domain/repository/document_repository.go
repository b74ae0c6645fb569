package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

// DocumentQuery filtro de lectura aplicado en la base de datos.
// VisibleTo vacío = todos los documentos; si no, solo los creados por ese usuario
// o asignados a él como aprobador.
type DocumentQuery struct {
	VisibleTo string
	Limit     int
}

// DocumentRepository define el puerto de persistencia para Document (DIP).
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// GetForUpdate obtiene el documento y bloquea la fila (SELECT FOR UPDATE). Solo dentro de tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Document, error)
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id string) error
	// List devuelve los documentos ordenados por created_at DESC.
	List(ctx context.Context, q DocumentQuery) ([]*entity.Document, error)
}

// DocumentHistoryRepository historial de solo inserción.
type DocumentHistoryRepository interface {
	Append(ctx context.Context, entry *entity.DocumentHistory) error
	// ListByDocument devuelve las entradas ordenadas por created_at DESC.
	ListByDocument(ctx context.Context, documentID string) ([]*entity.DocumentHistory, error)
	// ListByActions devuelve entradas de las acciones indicadas desde since (cero = sin límite),
	// ordenadas por created_at ASC.
	ListByActions(ctx context.Context, actions []string, since time.Time) ([]*entity.DocumentHistory, error)
}

// DocumentFileRepository metadatos de adjuntos.
type DocumentFileRepository interface {
	Create(ctx context.Context, file *entity.DocumentFile) error
	GetByID(ctx context.Context, id string) (*entity.DocumentFile, error)
	ListByDocument(ctx context.Context, documentID string) ([]*entity.DocumentFile, error)
	Delete(ctx context.Context, id string) error
}

// OutboxRepository eventos pendientes de publicar.
type OutboxRepository interface {
	Create(ctx context.Context, event *entity.OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]*entity.OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}
