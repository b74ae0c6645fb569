package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/inventory/movements.
// Quantity es positiva para IN/OUT; para ADJUST lleva el signo del ajuste.
type RecordMovementRequest struct {
	ProductID        string           `json:"product_id" validate:"required,uuid"`
	WarehouseID      string           `json:"warehouse_id" validate:"required,uuid"`
	MovementType     string           `json:"movement_type" validate:"required,oneof=IN OUT ADJUST"`
	Quantity         decimal.Decimal  `json:"quantity"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	SourceDocumentID string           `json:"source_document_id" validate:"omitempty,uuid"`
	ReferenceNumber  string           `json:"reference_number" validate:"max=100"`
	Remarks          string           `json:"remarks" validate:"max=2000"`
	MovementDate     *time.Time       `json:"movement_date,omitempty"`
}

// MovementListQuery query params de GET /api/inventory/movements.
type MovementListQuery struct {
	ProductID        string `query:"product_id"`
	WarehouseID      string `query:"warehouse_id"`
	SourceDocumentID string `query:"source_document_id"`
	MovementType     string `query:"movement_type"`
	From             string `query:"from"` // YYYY-MM-DD
	To               string `query:"to"`   // YYYY-MM-DD, inclusivo
	Limit            int    `query:"limit"`
	Offset           int    `query:"offset"`
}

// MovementResponse movimiento con producto y bodega resueltos.
type MovementResponse struct {
	ID               string           `json:"id"`
	ProductID        string           `json:"product_id"`
	ProductSKU       string           `json:"product_sku"`
	ProductName      string           `json:"product_name"`
	WarehouseID      string           `json:"warehouse_id"`
	WarehouseCode    string           `json:"warehouse_code"`
	WarehouseName    string           `json:"warehouse_name"`
	MovementType     string           `json:"movement_type"`
	Quantity         decimal.Decimal  `json:"quantity"` // con signo
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	SourceDocumentID string           `json:"source_document_id,omitempty"`
	DocumentNumber   string           `json:"document_number,omitempty"`
	ReferenceNumber  string           `json:"reference_number,omitempty"`
	Remarks          string           `json:"remarks,omitempty"`
	PerformedBy      string           `json:"performed_by"`
	MovementDate     time.Time        `json:"movement_date"`
	CreatedAt        time.Time        `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BalanceResponse saldo de un producto en una bodega.
type BalanceResponse struct {
	ProductID        string          `json:"product_id"`
	ProductSKU       string          `json:"product_sku"`
	ProductName      string          `json:"product_name"`
	WarehouseID      string          `json:"warehouse_id"`
	WarehouseCode    string          `json:"warehouse_code"`
	WarehouseName    string          `json:"warehouse_name"`
	QuantityOnHand   decimal.Decimal `json:"quantity_on_hand"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	ReorderPoint     decimal.Decimal `json:"reorder_point"`
	StockValue       decimal.Decimal `json:"stock_value"` // cantidad × costo
	LastMovementAt   *time.Time      `json:"last_movement_at,omitempty"`
}

// LowStockItemDTO producto en o por debajo del punto de reorden, con sugerencia de pedido.
type LowStockItemDTO struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	ReorderPoint      decimal.Decimal `json:"reorder_point"`
	IdealStock        decimal.Decimal `json:"ideal_stock"`         // ReorderPoint * 1.5
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"` // IdealStock - CurrentStock
	UnitCost          decimal.Decimal `json:"unit_cost"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"` // SuggestedOrderQty * UnitCost
}

// DriftDTO diferencia entre el saldo guardado y la suma de movimientos.
type DriftDTO struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Stored      decimal.Decimal `json:"stored"`
	Ledger      decimal.Decimal `json:"ledger"`
	Difference  decimal.Decimal `json:"difference"` // Stored - Ledger
}

// ReconcileRequest body opcional de POST /api/inventory/reconcile.
type ReconcileRequest struct {
	Repair bool `json:"repair"`
}

// ReconcileResponse resultado de la conciliación.
type ReconcileResponse struct {
	Checked  int        `json:"checked"`
	Drifts   []DriftDTO `json:"drifts"`
	Repaired bool       `json:"repaired"`
	RanAt    time.Time  `json:"ran_at"`
}
