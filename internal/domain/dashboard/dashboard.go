// Package dashboard reduce colecciones ya cargadas a los indicadores del tablero.
// Funciones puras, sin acceso a la base de datos.
package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

// DocumentSummary indicadores de documentos.
type DocumentSummary struct {
	Total           int
	ByStatus        map[string]int
	ValueByCurrency map[string]decimal.Decimal
	Recent          []*entity.Document
}

// SummarizeDocuments cuenta por estado, suma el valor por moneda y devuelve los recentN
// documentos más recientes (created_at DESC).
func SummarizeDocuments(docs []*entity.Document, recentN int) DocumentSummary {
	s := DocumentSummary{
		Total: len(docs),
		ByStatus: map[string]int{
			entity.DocumentStatusDraft:    0,
			entity.DocumentStatusPending:  0,
			entity.DocumentStatusApproved: 0,
			entity.DocumentStatusRejected: 0,
		},
		ValueByCurrency: make(map[string]decimal.Decimal),
	}
	for _, d := range docs {
		s.ByStatus[d.Status]++
		s.ValueByCurrency[d.Currency] = s.ValueByCurrency[d.Currency].Add(d.DocumentValue)
	}

	sorted := make([]*entity.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if recentN >= 0 && len(sorted) > recentN {
		sorted = sorted[:recentN]
	}
	s.Recent = sorted
	return s
}

// LowStockItem producto activo cuyo saldo total no supera el punto de reorden.
type LowStockItem struct {
	Product        *entity.Product
	QuantityOnHand decimal.Decimal
}

// InventorySummary indicadores de inventario.
type InventorySummary struct {
	TotalProducts  int
	ActiveProducts int
	TotalQuantity  decimal.Decimal
	TotalValue     decimal.Decimal // Σ cantidad × costo
	LowStock       []LowStockItem
}

// SummarizeInventory agrega los saldos por producto (todas las bodegas). Un producto activo
// está en stock bajo cuando su cantidad total es <= punto de reorden; productos sin saldo
// cuentan con cantidad cero.
func SummarizeInventory(products []*entity.Product, balances []*entity.StockBalance) InventorySummary {
	qty := make(map[string]decimal.Decimal, len(products))
	for _, b := range balances {
		qty[b.ProductID] = qty[b.ProductID].Add(b.QuantityOnHand)
	}

	s := InventorySummary{
		TotalProducts: len(products),
		TotalQuantity: decimal.Zero,
		TotalValue:    decimal.Zero,
		LowStock:      []LowStockItem{},
	}
	for _, p := range products {
		q := qty[p.ID]
		s.TotalQuantity = s.TotalQuantity.Add(q)
		s.TotalValue = s.TotalValue.Add(q.Mul(p.CostPrice))
		if !p.IsActive {
			continue
		}
		s.ActiveProducts++
		if q.LessThanOrEqual(p.ReorderPoint) {
			s.LowStock = append(s.LowStock, LowStockItem{Product: p, QuantityOnHand: q})
		}
	}
	sort.SliceStable(s.LowStock, func(i, j int) bool {
		a, b := s.LowStock[i], s.LowStock[j]
		if !a.QuantityOnHand.Equal(b.QuantityOnHand) {
			return a.QuantityOnHand.LessThan(b.QuantityOnHand)
		}
		return a.Product.SKU < b.Product.SKU
	})
	return s
}

// AverageApprovalTime promedio entre el último Submitted y el Approved siguiente de cada
// documento. Cero si no hay aprobaciones.
func AverageApprovalTime(history []*entity.DocumentHistory) time.Duration {
	byDoc := make(map[string][]*entity.DocumentHistory)
	for _, h := range history {
		byDoc[h.DocumentID] = append(byDoc[h.DocumentID], h)
	}

	var total time.Duration
	var n int64
	for _, entries := range byDoc {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		})
		var submitted time.Time
		for _, h := range entries {
			switch h.ActionType {
			case entity.HistoryActionSubmitted:
				submitted = h.CreatedAt
			case entity.HistoryActionApproved:
				if !submitted.IsZero() {
					total += h.CreatedAt.Sub(submitted)
					n++
					submitted = time.Time{}
				}
			}
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}
