package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/application/inventory"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and document.TxRunner.
var (
	_ inventory.TxRunner = (*TxRunner)(nil)
	_ document.TxRunner  = (*TxRunner)(nil)
)

// Beginner abre transacciones; lo cumplen *pgxpool.Pool y los mocks de pgx.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool Beginner
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool Beginner) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInventory inicia una transacción, ejecuta fn con repos de inventario atados a la tx
// y hace Commit o Rollback.
func (r *TxRunner) RunInventory(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewStockMovementRepository(tx), NewStockBalanceRepository(tx), NewProductRepository(tx))
	})
}

// RunDocument inicia una transacción con los repos de documento, historial, adjuntos y outbox.
// Cambio de estado, historial y evento se confirman juntos o no se confirman.
func (r *TxRunner) RunDocument(ctx context.Context, fn func(tx document.DocumentTx) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(document.DocumentTx{
			Documents: NewDocumentRepository(tx),
			History:   NewDocumentHistoryRepository(tx),
			Files:     NewDocumentFileRepository(tx),
			Outbox:    NewOutboxRepository(tx),
		})
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
