package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Los documentos se limitan a los visibles para el usuario.
type DashboardSummaryDTO struct {
	Documents DocumentStatsDTO  `json:"documents"`
	Inventory InventoryStatsDTO `json:"inventory"`

	// Promedio Submitted → Approved sobre el historial completo
	AverageApprovalHours decimal.Decimal `json:"average_approval_hours"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

// DocumentStatsDTO indicadores de documentos.
type DocumentStatsDTO struct {
	Total           int                        `json:"total"`
	ByStatus        map[string]int             `json:"by_status"`
	ValueByCurrency map[string]decimal.Decimal `json:"value_by_currency"`
	Recent          []DocumentResponse         `json:"recent"`
}

// InventoryStatsDTO indicadores de inventario.
type InventoryStatsDTO struct {
	TotalProducts  int               `json:"total_products"`
	ActiveProducts int               `json:"active_products"`
	TotalQuantity  decimal.Decimal   `json:"total_quantity"`
	TotalValue     decimal.Decimal   `json:"total_value"`
	LowStockCount  int               `json:"low_stock_count"`
	LowStock       []LowStockItemDTO `json:"low_stock"`
}
