package inventory

import (
	"context"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad entre saldo y libro de movimientos.
type TxRunner interface {
	RunInventory(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// BalanceSheetWriter escribe los saldos como hoja de cálculo.
type BalanceSheetWriter interface {
	WriteBalances(rows []*entity.StockBalanceView) ([]byte, error)
}
