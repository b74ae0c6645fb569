package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

// BalanceQuery filtro para listar saldos. Campos vacíos = sin filtro.
type BalanceQuery struct {
	ProductID   string
	WarehouseID string
}

// StockBalanceRepository define el puerto para consultar/actualizar saldos por producto+bodega.
// Usado dentro de transacciones junto con StockMovementRepository.
type StockBalanceRepository interface {
	// Get devuelve el saldo; si no existe fila devuelve un saldo en cero.
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error)
	Upsert(ctx context.Context, balance *entity.StockBalance) error
	List(ctx context.Context, q BalanceQuery) ([]*entity.StockBalanceView, error)
}

// MovementQuery filtro para listar movimientos. Campos vacíos = sin filtro.
type MovementQuery struct {
	ProductID        string
	WarehouseID      string
	SourceDocumentID string
	MovementType     string
	From             *time.Time // movement_date >= From
	To               *time.Time // movement_date < To
	Limit            int
	Offset           int
}

// LedgerTotal suma de movimientos de un par producto+bodega.
type LedgerTotal struct {
	ProductID      string
	WarehouseID    string
	Quantity       decimal.Decimal
	LastMovementAt time.Time
}

// StockMovementRepository libro inmutable de movimientos.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovementView, error)
	// List devuelve movimientos con producto/bodega resueltos, ordenados por movement_date DESC.
	List(ctx context.Context, q MovementQuery) ([]*entity.StockMovementView, error)
	// Totals agrupa el libro por producto+bodega.
	Totals(ctx context.Context) ([]LedgerTotal, error)
	// Total suma el libro de un solo par; Quantity cero si no hay movimientos.
	Total(ctx context.Context, productID, warehouseID string) (LedgerTotal, error)
}
