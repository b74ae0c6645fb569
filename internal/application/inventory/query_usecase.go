package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/dashboard"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

var idealStockFactor = decimal.NewFromFloat(1.5)

// QueryUseCase consultas de inventario: movimientos, saldos, bajo stock y exportación.
type QueryUseCase struct {
	movRepo     repository.StockMovementRepository
	balanceRepo repository.StockBalanceRepository
	productRepo repository.ProductRepository
	sheet       BalanceSheetWriter
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	movRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	productRepo repository.ProductRepository,
	sheet BalanceSheetWriter,
) *QueryUseCase {
	return &QueryUseCase{
		movRepo:     movRepo,
		balanceRepo: balanceRepo,
		productRepo: productRepo,
		sheet:       sheet,
	}
}

// ListMovements lista movimientos filtrados, más reciente primero.
func (uc *QueryUseCase) ListMovements(ctx context.Context, q dto.MovementListQuery) (*dto.MovementListResponse, error) {
	rq := repository.MovementQuery{
		ProductID:        q.ProductID,
		WarehouseID:      q.WarehouseID,
		SourceDocumentID: q.SourceDocumentID,
		MovementType:     q.MovementType,
		Limit:            q.Limit,
		Offset:           q.Offset,
	}
	if rq.MovementType != "" && !entity.ValidMovementType(rq.MovementType) {
		return nil, domain.ErrInvalidInput
	}
	if rq.Limit <= 0 {
		rq.Limit = defaultMovementLimit
	}
	if rq.Limit > maxMovementLimit {
		rq.Limit = maxMovementLimit
	}
	if rq.Offset < 0 {
		rq.Offset = 0
	}
	if q.From != "" {
		from, err := time.Parse(dto.DateLayout, q.From)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		rq.From = &from
	}
	if q.To != "" {
		to, err := time.Parse(dto.DateLayout, q.To)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		// fecha final inclusiva
		to = to.AddDate(0, 0, 1)
		rq.To = &to
	}
	if rq.From != nil && rq.To != nil && !rq.From.Before(*rq.To) {
		return nil, domain.ErrInvalidInput
	}

	list, err := uc.movRepo.List(ctx, rq)
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: rq.Limit, Offset: rq.Offset, Total: len(items)},
	}, nil
}

// GetMovement devuelve un movimiento por ID.
func (uc *QueryUseCase) GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	out := toMovementResponse(m)
	return &out, nil
}

// ListBalances saldos por producto y bodega; filtros vacíos = todos.
func (uc *QueryUseCase) ListBalances(ctx context.Context, productID, warehouseID string) ([]dto.BalanceResponse, error) {
	rows, err := uc.balanceRepo.List(ctx, repository.BalanceQuery{ProductID: productID, WarehouseID: warehouseID})
	if err != nil {
		return nil, fmt.Errorf("listar saldos: %w", err)
	}
	out := make([]dto.BalanceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.BalanceResponse{
			ProductID:        r.ProductID,
			ProductSKU:       r.ProductSKU,
			ProductName:      r.ProductName,
			WarehouseID:      r.WarehouseID,
			WarehouseCode:    r.WarehouseCode,
			WarehouseName:    r.WarehouseName,
			QuantityOnHand:   r.QuantityOnHand,
			ReservedQuantity: r.ReservedQuantity,
			ReorderPoint:     r.ReorderPoint,
			StockValue:       r.QuantityOnHand.Mul(r.CostPrice).Round(2),
			LastMovementAt:   r.LastMovementAt,
		})
	}
	return out, nil
}

// LowStock productos activos con stock total <= punto de reorden y la cantidad sugerida
// para llevarlos al stock ideal (1.5 × punto de reorden).
func (uc *QueryUseCase) LowStock(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	products, err := uc.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	rows, err := uc.balanceRepo.List(ctx, repository.BalanceQuery{})
	if err != nil {
		return nil, fmt.Errorf("listar saldos: %w", err)
	}
	summary := dashboard.SummarizeInventory(products, balancesOf(rows))
	return LowStockItems(summary.LowStock), nil
}

// LowStockItems enriquece la lista de bajo stock con la sugerencia de pedido.
func LowStockItems(items []dashboard.LowStockItem) []dto.LowStockItemDTO {
	out := make([]dto.LowStockItemDTO, 0, len(items))
	for _, it := range items {
		ideal := it.Product.ReorderPoint.Mul(idealStockFactor)
		suggested := ideal.Sub(it.QuantityOnHand)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		out = append(out, dto.LowStockItemDTO{
			ProductID:         it.Product.ID,
			SKU:               it.Product.SKU,
			ProductName:       it.Product.Name,
			CurrentStock:      it.QuantityOnHand,
			ReorderPoint:      it.Product.ReorderPoint,
			IdealStock:        ideal,
			SuggestedOrderQty: suggested,
			UnitCost:          it.Product.CostPrice,
			EstimatedCost:     suggested.Mul(it.Product.CostPrice).Round(2),
		})
	}
	return out
}

// ExportBalances genera el XLSX de saldos.
func (uc *QueryUseCase) ExportBalances(ctx context.Context, warehouseID string) ([]byte, string, error) {
	rows, err := uc.balanceRepo.List(ctx, repository.BalanceQuery{WarehouseID: warehouseID})
	if err != nil {
		return nil, "", fmt.Errorf("listar saldos: %w", err)
	}
	b, err := uc.sheet.WriteBalances(rows)
	if err != nil {
		return nil, "", fmt.Errorf("xlsx: %w", err)
	}
	return b, "saldos_" + time.Now().Format("20060102") + ".xlsx", nil
}

func balancesOf(rows []*entity.StockBalanceView) []*entity.StockBalance {
	out := make([]*entity.StockBalance, len(rows))
	for i, r := range rows {
		out[i] = &r.StockBalance
	}
	return out
}
