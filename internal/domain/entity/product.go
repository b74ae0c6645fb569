package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// La baja es lógica (IsActive = false); el stock se maneja por bodega en StockBalance.
type Product struct {
	ID            string
	SKU           string // único
	Name          string
	Description   string
	CategoryID    string // vacío si no tiene categoría
	UnitOfMeasure string
	CostPrice     decimal.Decimal
	ReorderPoint  decimal.Decimal
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
