package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance es el saldo materializado de un producto en una bodega.
// QuantityOnHand debe ser igual a la suma de StockMovement.Quantity del mismo par.
type StockBalance struct {
	ProductID        string
	WarehouseID      string
	QuantityOnHand   decimal.Decimal
	ReservedQuantity decimal.Decimal
	LastMovementAt   *time.Time
}

// StockBalanceView saldo con los nombres de producto y bodega resueltos por join.
type StockBalanceView struct {
	StockBalance
	ProductSKU    string
	ProductName   string
	ReorderPoint  decimal.Decimal
	CostPrice     decimal.Decimal
	WarehouseCode string
	WarehouseName string
}
