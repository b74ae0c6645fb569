package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/inventory"
	"github.com/jhoicas/Importaciones-api/internal/domain/policy"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

// RecordMovementUseCase registra movimientos de inventario (IN, OUT, ADJUST) de forma transaccional:
// bloqueo de la fila de saldo (SELECT FOR UPDATE), upsert del saldo e inserción del movimiento.
type RecordMovementUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	docRepo       repository.DocumentRepository
	policy        *policy.Policy
	log           *logger.Logger
	now           func() time.Time
}

// NewRecordMovementUseCase construye el caso de uso.
func NewRecordMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	docRepo repository.DocumentRepository,
	pol *policy.Policy,
	log *logger.Logger,
) *RecordMovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RecordMovementUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		docRepo:       docRepo,
		policy:        pol,
		log:           log.Named("inventory"),
		now:           time.Now,
	}
}

// Record valida la entrada y aplica el movimiento. Una entrada con costo unitario recalcula el
// costo promedio ponderado del producto dentro de la misma transacción.
func (uc *RecordMovementUseCase) Record(ctx context.Context, actor entity.Actor, in dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	if !uc.policy.Can(actor, policy.ResourceInventory, policy.ActCreate) {
		return nil, domain.ErrForbidden
	}
	delta, err := inventory.SignedQuantity(in.MovementType, in.Quantity)
	if err != nil {
		return nil, err
	}
	if in.UnitCost != nil && (in.UnitCost.IsNegative() || !entity.FitsScale(*in.UnitCost, entity.CostScale)) {
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if !product.IsActive {
		return nil, domain.ErrInactive
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("obtener bodega: %w", err)
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if !wh.IsActive {
		return nil, domain.ErrInactive
	}
	var docNumber string
	if in.SourceDocumentID != "" {
		doc, err := uc.docRepo.GetByID(ctx, in.SourceDocumentID)
		if err != nil {
			return nil, fmt.Errorf("obtener documento origen: %w", err)
		}
		if doc == nil {
			return nil, domain.ErrInvalidInput
		}
		docNumber = doc.DocumentNumber
	}

	now := uc.now()
	movDate := now
	if in.MovementDate != nil && !in.MovementDate.IsZero() {
		movDate = *in.MovementDate
	}
	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductID:        product.ID,
		WarehouseID:      wh.ID,
		MovementType:     in.MovementType,
		Quantity:         delta,
		UnitCost:         in.UnitCost,
		SourceDocumentID: in.SourceDocumentID,
		ReferenceNumber:  in.ReferenceNumber,
		Remarks:          in.Remarks,
		PerformedBy:      actor.UserID,
		MovementDate:     movDate,
		CreatedAt:        now,
	}

	err = uc.txRunner.RunInventory(ctx, func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquea la fila de saldo para serializar movimientos concurrentes del mismo par
		bal, err := balanceRepo.GetForUpdate(ctx, product.ID, wh.ID)
		if err != nil {
			return err
		}
		next, err := inventory.Apply(bal.QuantityOnHand, delta)
		if err != nil {
			return err
		}
		if in.MovementType == entity.MovementTypeIN && in.UnitCost != nil {
			current, err := productRepo.GetByID(ctx, product.ID)
			if err != nil {
				return err
			}
			cost := inventory.WeightedAverageCost(bal.QuantityOnHand, current.CostPrice, delta, *in.UnitCost)
			if err := productRepo.UpdateCost(ctx, product.ID, cost); err != nil {
				return err
			}
		}
		bal.QuantityOnHand = next
		bal.LastMovementAt = &movDate
		if err := balanceRepo.Upsert(ctx, bal); err != nil {
			return err
		}
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.log.Warn().Str("product_id", product.ID).Str("warehouse_id", wh.ID).
				Str("quantity", delta.String()).Msg("movimiento rechazado: stock insuficiente")
		}
		return nil, err
	}

	uc.log.Info().Str("movement_id", mov.ID).Str("type", mov.MovementType).
		Str("product_id", product.ID).Str("warehouse_id", wh.ID).Str("quantity", delta.String()).
		Msg("movimiento registrado")

	out := toMovementResponse(&entity.StockMovementView{
		StockMovement:  *mov,
		ProductSKU:     product.SKU,
		ProductName:    product.Name,
		WarehouseCode:  wh.Code,
		WarehouseName:  wh.Name,
		DocumentNumber: docNumber,
	})
	return &out, nil
}

func toMovementResponse(m *entity.StockMovementView) dto.MovementResponse {
	var cost *decimal.Decimal
	if m.UnitCost != nil {
		c := *m.UnitCost
		cost = &c
	}
	return dto.MovementResponse{
		ID:               m.ID,
		ProductID:        m.ProductID,
		ProductSKU:       m.ProductSKU,
		ProductName:      m.ProductName,
		WarehouseID:      m.WarehouseID,
		WarehouseCode:    m.WarehouseCode,
		WarehouseName:    m.WarehouseName,
		MovementType:     m.MovementType,
		Quantity:         m.Quantity,
		UnitCost:         cost,
		SourceDocumentID: m.SourceDocumentID,
		DocumentNumber:   m.DocumentNumber,
		ReferenceNumber:  m.ReferenceNumber,
		Remarks:          m.Remarks,
		PerformedBy:      m.PerformedBy,
		MovementDate:     m.MovementDate,
		CreatedAt:        m.CreatedAt,
	}
}
