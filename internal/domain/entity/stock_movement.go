package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN     = "IN"     // entrada
	MovementTypeOUT    = "OUT"    // salida
	MovementTypeADJUST = "ADJUST" // ajuste con signo
)

// StockMovement es una fila inmutable del libro de movimientos.
// Quantity se guarda con signo: positivo en IN, negativo en OUT, cualquiera distinto de cero en ADJUST.
type StockMovement struct {
	ID               string
	ProductID        string
	WarehouseID      string
	MovementType     string
	Quantity         decimal.Decimal
	UnitCost         *decimal.Decimal
	SourceDocumentID string
	ReferenceNumber  string
	Remarks          string
	PerformedBy      string
	MovementDate     time.Time
	CreatedAt        time.Time
}

// StockMovementView movimiento con producto y bodega resueltos (una sola consulta con join).
type StockMovementView struct {
	StockMovement
	ProductSKU     string
	ProductName    string
	WarehouseCode  string
	WarehouseName  string
	DocumentNumber string
}

// ValidMovementType indica si t es un tipo de movimiento conocido.
func ValidMovementType(t string) bool {
	return t == MovementTypeIN || t == MovementTypeOUT || t == MovementTypeADJUST
}
