package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

// ── stubs de solo lectura ────────────────────────────────────────────────────

// Los stubs embeben la interfaz; un método no usado por el dashboard entra en pánico.
type docsStub struct {
	repository.DocumentRepository
	docs []*entity.Document
	err  error
}

func (s docsStub) List(_ context.Context, q repository.DocumentQuery) ([]*entity.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*entity.Document
	for _, d := range s.docs {
		if q.VisibleTo == "" || d.CreatedBy == q.VisibleTo || d.ApproverID == q.VisibleTo {
			out = append(out, d)
		}
	}
	return out, nil
}

type historyStub struct {
	repository.DocumentHistoryRepository
	rows []*entity.DocumentHistory
}

func (s historyStub) ListByActions(context.Context, []string, time.Time) ([]*entity.DocumentHistory, error) {
	return s.rows, nil
}

type productsStub struct {
	repository.ProductRepository
	rows []*entity.Product
}

func (s productsStub) List(context.Context) ([]*entity.Product, error) { return s.rows, nil }

type balancesStub struct {
	repository.StockBalanceRepository
	rows []*entity.StockBalanceView
}

func (s balancesStub) List(context.Context, repository.BalanceQuery) ([]*entity.StockBalanceView, error) {
	return s.rows, nil
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Febrero 2026", monthLabel(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Diciembre 2024", monthLabel(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))
}

func TestSummary(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	docs := []*entity.Document{
		{ID: "d1", CreatedBy: "u-req", Status: entity.DocumentStatusApproved, Currency: "USD", DocumentValue: decimal.NewFromInt(1000), CreatedAt: base},
		{ID: "d2", CreatedBy: "u-req", Status: entity.DocumentStatusDraft, Currency: "USD", DocumentValue: decimal.NewFromInt(500), CreatedAt: base.Add(time.Hour)},
		{ID: "d3", CreatedBy: "u-otro", Status: entity.DocumentStatusApproved, Currency: "EUR", DocumentValue: decimal.NewFromInt(200), CreatedAt: base.Add(2 * time.Hour)},
	}
	history := historyStub{rows: []*entity.DocumentHistory{
		{DocumentID: "d1", ActionType: entity.HistoryActionSubmitted, CreatedAt: base},
		{DocumentID: "d1", ActionType: entity.HistoryActionApproved, CreatedAt: base.Add(2 * time.Hour)},
		{DocumentID: "d3", ActionType: entity.HistoryActionSubmitted, CreatedAt: base},
		{DocumentID: "d3", ActionType: entity.HistoryActionApproved, CreatedAt: base.Add(10 * time.Hour)},
	}}
	products := productsStub{rows: []*entity.Product{
		{ID: "p1", SKU: "A", Name: "A", CostPrice: decimal.NewFromInt(2), ReorderPoint: decimal.NewFromInt(10), IsActive: true},
		{ID: "p2", SKU: "B", Name: "B", CostPrice: decimal.NewFromInt(1), ReorderPoint: decimal.NewFromInt(1), IsActive: true},
	}}
	balances := balancesStub{rows: []*entity.StockBalanceView{
		{StockBalance: entity.StockBalance{ProductID: "p1", WarehouseID: "w1", QuantityOnHand: decimal.NewFromInt(4)}},
		{StockBalance: entity.StockBalance{ProductID: "p2", WarehouseID: "w1", QuantityOnHand: decimal.NewFromInt(50)}},
	}}

	uc := NewDashboardUseCase(docsStub{docs: docs}, history, products, balances)
	uc.now = func() time.Time { return base }

	t.Run("solicitante ve solo sus documentos", func(t *testing.T) {
		out, err := uc.Summary(context.Background(), entity.Actor{UserID: "u-req", Role: entity.RoleRequester})
		require.NoError(t, err)
		assert.Equal(t, 2, out.Documents.Total)
		assert.Equal(t, 1, out.Documents.ByStatus[entity.DocumentStatusApproved])
		assert.Equal(t, 0, out.Documents.ByStatus[entity.DocumentStatusPending])
		assert.True(t, decimal.NewFromInt(1500).Equal(out.Documents.ValueByCurrency["USD"]))
		assert.Equal(t, "d2", out.Documents.Recent[0].ID)
		assert.True(t, decimal.NewFromInt(2).Equal(out.AverageApprovalHours))
		assert.Equal(t, "Marzo 2024", out.DateLabel)
	})

	t.Run("aprobador ve todo", func(t *testing.T) {
		out, err := uc.Summary(context.Background(), entity.Actor{UserID: "u-apr", Role: entity.RoleApprover})
		require.NoError(t, err)
		assert.Equal(t, 3, out.Documents.Total)
		assert.True(t, decimal.NewFromInt(6).Equal(out.AverageApprovalHours))

		assert.Equal(t, 2, out.Inventory.ActiveProducts)
		assert.True(t, decimal.NewFromInt(58).Equal(out.Inventory.TotalValue))
		require.Equal(t, 1, out.Inventory.LowStockCount)
		assert.Equal(t, "A", out.Inventory.LowStock[0].SKU)
		assert.True(t, decimal.NewFromInt(11).Equal(out.Inventory.LowStock[0].SuggestedOrderQty))
	})

	t.Run("error de repositorio", func(t *testing.T) {
		failing := NewDashboardUseCase(docsStub{err: errors.New("db caída")}, history, products, balances)
		_, err := failing.Summary(context.Background(), entity.Actor{UserID: "u-apr", Role: entity.RoleApprover})
		assert.ErrorContains(t, err, "dashboard: documentos")
	})
}
