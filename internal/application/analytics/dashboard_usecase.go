// Package analytics contiene el caso de uso del tablero: indicadores de documentos
// visibles para el usuario y del inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/application/inventory"
	"github.com/jhoicas/Importaciones-api/internal/domain/dashboard"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

const dashboardRecentDocs = 5 // documentos recientes en el widget del dashboard

// DashboardUseCase genera el resumen del tablero.
//
// Fuente de datos: repositorios de documentos, historial, productos y saldos (solo lectura).
// Las reducciones viven en domain/dashboard.
type DashboardUseCase struct {
	docRepo     repository.DocumentRepository
	historyRepo repository.DocumentHistoryRepository
	productRepo repository.ProductRepository
	balanceRepo repository.StockBalanceRepository
	now         func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	docRepo repository.DocumentRepository,
	historyRepo repository.DocumentHistoryRepository,
	productRepo repository.ProductRepository,
	balanceRepo repository.StockBalanceRepository,
) *DashboardUseCase {
	return &DashboardUseCase{
		docRepo:     docRepo,
		historyRepo: historyRepo,
		productRepo: productRepo,
		balanceRepo: balanceRepo,
		now:         time.Now,
	}
}

// Summary construye el DashboardSummaryDTO para el actor.
//
// Cuatro lecturas en paralelo:
//  1. documentos visibles para el actor
//  2. historial Submitted/Approved  → tiempo promedio de aprobación
//  3. productos
//  4. saldos                        → stock bajo y valor del inventario
func (uc *DashboardUseCase) Summary(ctx context.Context, actor entity.Actor) (*dto.DashboardSummaryDTO, error) {
	type docsResult struct {
		docs []*entity.Document
		err  error
	}
	type historyResult struct {
		rows []*entity.DocumentHistory
		err  error
	}
	type productsResult struct {
		products []*entity.Product
		err      error
	}
	type balancesResult struct {
		rows []*entity.StockBalanceView
		err  error
	}

	docsCh := make(chan docsResult, 1)
	historyCh := make(chan historyResult, 1)
	productsCh := make(chan productsResult, 1)
	balancesCh := make(chan balancesResult, 1)

	go func() {
		q := repository.DocumentQuery{}
		if !actor.SeesAllDocuments() {
			q.VisibleTo = actor.UserID
		}
		docs, err := uc.docRepo.List(ctx, q)
		docsCh <- docsResult{docs, err}
	}()
	go func() {
		rows, err := uc.historyRepo.ListByActions(ctx,
			[]string{entity.HistoryActionSubmitted, entity.HistoryActionApproved}, time.Time{})
		historyCh <- historyResult{rows, err}
	}()
	go func() {
		products, err := uc.productRepo.List(ctx)
		productsCh <- productsResult{products, err}
	}()
	go func() {
		rows, err := uc.balanceRepo.List(ctx, repository.BalanceQuery{})
		balancesCh <- balancesResult{rows, err}
	}()

	docs := <-docsCh
	history := <-historyCh
	products := <-productsCh
	balances := <-balancesCh

	if docs.err != nil {
		return nil, fmt.Errorf("dashboard: documentos: %w", docs.err)
	}
	if history.err != nil {
		return nil, fmt.Errorf("dashboard: historial: %w", history.err)
	}
	if products.err != nil {
		return nil, fmt.Errorf("dashboard: productos: %w", products.err)
	}
	if balances.err != nil {
		return nil, fmt.Errorf("dashboard: saldos: %w", balances.err)
	}

	// ── Reducciones ────────────────────────────────────────────────────────────
	docSummary := dashboard.SummarizeDocuments(docs.docs, dashboardRecentDocs)

	visible := make(map[string]struct{}, len(docs.docs))
	for _, d := range docs.docs {
		visible[d.ID] = struct{}{}
	}
	scoped := make([]*entity.DocumentHistory, 0, len(history.rows))
	for _, h := range history.rows {
		if _, ok := visible[h.DocumentID]; ok {
			scoped = append(scoped, h)
		}
	}
	avg := dashboard.AverageApprovalTime(scoped)

	stock := make([]*entity.StockBalance, len(balances.rows))
	for i, b := range balances.rows {
		stock[i] = &b.StockBalance
	}
	invSummary := dashboard.SummarizeInventory(products.products, stock)
	lowStock := inventory.LowStockItems(invSummary.LowStock)

	// ── Construir DTO ──────────────────────────────────────────────────────────
	return &dto.DashboardSummaryDTO{
		Documents: dto.DocumentStatsDTO{
			Total:           docSummary.Total,
			ByStatus:        docSummary.ByStatus,
			ValueByCurrency: docSummary.ValueByCurrency,
			Recent:          dto.DocumentsFromEntities(docSummary.Recent),
		},
		Inventory: dto.InventoryStatsDTO{
			TotalProducts:  invSummary.TotalProducts,
			ActiveProducts: invSummary.ActiveProducts,
			TotalQuantity:  invSummary.TotalQuantity,
			TotalValue:     invSummary.TotalValue.Round(2),
			LowStockCount:  len(lowStock),
			LowStock:       lowStock,
		},
		AverageApprovalHours: decimal.NewFromFloat(avg.Hours()).Round(2),
		DateLabel:            monthLabel(uc.now()),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
