package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain/inventory"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

// ReconcileUseCase compara saldos materializados contra la suma del libro de movimientos.
// Cada descuadre se registra en nivel error (alarma de drift).
type ReconcileUseCase struct {
	txRunner    TxRunner
	balanceRepo repository.StockBalanceRepository
	movRepo     repository.StockMovementRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(
	txRunner TxRunner,
	balanceRepo repository.StockBalanceRepository,
	movRepo repository.StockMovementRepository,
	log *logger.Logger,
) *ReconcileUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileUseCase{
		txRunner:    txRunner,
		balanceRepo: balanceRepo,
		movRepo:     movRepo,
		log:         log.Named("inventory.reconcile"),
		now:         time.Now,
	}
}

// Run detecta descuadres. Con repair=true reescribe cada saldo descuadrado desde el libro;
// la suma se recalcula bajo el bloqueo de la fila para no pisar movimientos concurrentes.
func (uc *ReconcileUseCase) Run(ctx context.Context, repair bool) (*dto.ReconcileResponse, error) {
	rows, err := uc.balanceRepo.List(ctx, repository.BalanceQuery{})
	if err != nil {
		return nil, fmt.Errorf("listar saldos: %w", err)
	}
	totals, err := uc.movRepo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("sumar libro: %w", err)
	}
	balances := balancesOf(rows)
	drifts := inventory.FindDrift(balances, totals)

	out := &dto.ReconcileResponse{
		Checked: inventory.Pairs(balances, totals),
		Drifts:  make([]dto.DriftDTO, 0, len(drifts)),
		RanAt:   uc.now(),
	}
	for _, d := range drifts {
		uc.log.Error().
			Str("product_id", d.ProductID).
			Str("warehouse_id", d.WarehouseID).
			Str("stored", d.Stored.String()).
			Str("ledger", d.Ledger.String()).
			Msg("descuadre de inventario: saldo distinto a la suma de movimientos")
		out.Drifts = append(out.Drifts, dto.DriftDTO{
			ProductID:   d.ProductID,
			WarehouseID: d.WarehouseID,
			Stored:      d.Stored,
			Ledger:      d.Ledger,
			Difference:  d.Difference(),
		})
	}

	if repair && len(drifts) > 0 {
		if err := uc.repair(ctx, drifts); err != nil {
			return nil, err
		}
		out.Repaired = true
		uc.log.Warn().Int("drifts", len(drifts)).Msg("saldos reescritos desde el libro")
	} else {
		uc.log.Info().Int("checked", out.Checked).Int("drifts", len(drifts)).Msg("conciliación de inventario")
	}
	return out, nil
}

func (uc *ReconcileUseCase) repair(ctx context.Context, drifts []inventory.Drift) error {
	return uc.txRunner.RunInventory(ctx, func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		_ repository.ProductRepository,
	) error {
		for _, d := range drifts {
			bal, err := balanceRepo.GetForUpdate(ctx, d.ProductID, d.WarehouseID)
			if err != nil {
				return err
			}
			total, err := movRepo.Total(ctx, d.ProductID, d.WarehouseID)
			if err != nil {
				return err
			}
			bal.QuantityOnHand = total.Quantity
			if !total.LastMovementAt.IsZero() {
				last := total.LastMovementAt
				bal.LastMovementAt = &last
			}
			if err := balanceRepo.Upsert(ctx, bal); err != nil {
				return err
			}
		}
		return nil
	})
}
