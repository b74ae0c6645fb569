package document

import (
	"context"
	"io"

	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

// DocumentTx repositorios atados a la misma transacción de BD.
type DocumentTx struct {
	Documents repository.DocumentRepository
	History   repository.DocumentHistoryRepository
	Files     repository.DocumentFileRepository
	Outbox    repository.OutboxRepository
}

// TxRunner ejecuta fn dentro de una transacción: el cambio de estado, su entrada de
// historial y el evento del outbox se confirman juntos o no se escriben.
type TxRunner interface {
	RunDocument(ctx context.Context, fn func(tx DocumentTx) error) error
}

// BlobStore almacenamiento de binarios de los adjuntos.
// Put devuelve la ruta efectiva con la que luego se llama a Open/Delete.
type BlobStore interface {
	Put(ctx context.Context, path string, content io.Reader, contentType string) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
