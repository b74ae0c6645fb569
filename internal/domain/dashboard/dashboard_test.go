package dashboard_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Importaciones-api/internal/domain/dashboard"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSummarizeDocuments(t *testing.T) {
	docs := []*entity.Document{
		{ID: "a", Status: entity.DocumentStatusDraft, Currency: "USD", DocumentValue: decimal.NewFromInt(1000), CreatedAt: t0},
		{ID: "b", Status: entity.DocumentStatusPending, Currency: "USD", DocumentValue: decimal.RequireFromString("250.50"), CreatedAt: t0.Add(2 * time.Hour)},
		{ID: "c", Status: entity.DocumentStatusApproved, Currency: "EUR", DocumentValue: decimal.NewFromInt(80), CreatedAt: t0.Add(time.Hour)},
	}

	s := dashboard.SummarizeDocuments(docs, 2)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.ByStatus[entity.DocumentStatusDraft])
	assert.Equal(t, 1, s.ByStatus[entity.DocumentStatusPending])
	assert.Equal(t, 1, s.ByStatus[entity.DocumentStatusApproved])
	assert.Equal(t, 0, s.ByStatus[entity.DocumentStatusRejected])
	assert.True(t, decimal.RequireFromString("1250.50").Equal(s.ValueByCurrency["USD"]))
	assert.True(t, decimal.NewFromInt(80).Equal(s.ValueByCurrency["EUR"]))
	require.Len(t, s.Recent, 2)
	assert.Equal(t, "b", s.Recent[0].ID)
	assert.Equal(t, "c", s.Recent[1].ID)
	assert.Equal(t, "a", docs[0].ID, "la entrada no se reordena")
}

// El límite es inclusivo: cantidad == punto de reorden cuenta como stock bajo.
func TestSummarizeInventory_LimiteInclusivo(t *testing.T) {
	products := []*entity.Product{
		{ID: "p1", SKU: "A", CostPrice: decimal.NewFromInt(2), ReorderPoint: decimal.NewFromInt(10), IsActive: true},
		{ID: "p2", SKU: "B", CostPrice: decimal.NewFromInt(5), ReorderPoint: decimal.NewFromInt(10), IsActive: true},
		{ID: "p3", SKU: "C", CostPrice: decimal.NewFromInt(1), ReorderPoint: decimal.NewFromInt(10), IsActive: false},
	}
	balances := []*entity.StockBalance{
		{ProductID: "p1", WarehouseID: "w1", QuantityOnHand: decimal.NewFromInt(6)},
		{ProductID: "p1", WarehouseID: "w2", QuantityOnHand: decimal.NewFromInt(4)},
		{ProductID: "p2", WarehouseID: "w1", QuantityOnHand: decimal.NewFromInt(11)},
		{ProductID: "p3", WarehouseID: "w1", QuantityOnHand: decimal.NewFromInt(1)},
	}

	s := dashboard.SummarizeInventory(products, balances)

	assert.Equal(t, 3, s.TotalProducts)
	assert.Equal(t, 2, s.ActiveProducts)
	assert.True(t, decimal.NewFromInt(22).Equal(s.TotalQuantity))
	// 10*2 + 11*5 + 1*1
	assert.True(t, decimal.NewFromInt(76).Equal(s.TotalValue))
	require.Len(t, s.LowStock, 1)
	assert.Equal(t, "p1", s.LowStock[0].Product.ID)
	assert.True(t, decimal.NewFromInt(10).Equal(s.LowStock[0].QuantityOnHand))
}

func TestSummarizeInventory_SinSaldoEsBajo(t *testing.T) {
	products := []*entity.Product{
		{ID: "p1", SKU: "A", ReorderPoint: decimal.NewFromInt(1), IsActive: true},
	}
	s := dashboard.SummarizeInventory(products, nil)
	require.Len(t, s.LowStock, 1)
	assert.True(t, s.LowStock[0].QuantityOnHand.IsZero())
}

func TestAverageApprovalTime(t *testing.T) {
	h := func(doc, action string, at time.Time) *entity.DocumentHistory {
		return &entity.DocumentHistory{DocumentID: doc, ActionType: action, CreatedAt: at}
	}
	history := []*entity.DocumentHistory{
		h("d1", entity.HistoryActionApproved, t0.Add(3*time.Hour)),
		h("d1", entity.HistoryActionSubmitted, t0.Add(time.Hour)),
		h("d2", entity.HistoryActionSubmitted, t0),
		h("d2", entity.HistoryActionApproved, t0.Add(4*time.Hour)),
		h("d3", entity.HistoryActionSubmitted, t0),
		h("d3", entity.HistoryActionRejected, t0.Add(time.Hour)),
	}
	// d1: 2h, d2: 4h
	assert.Equal(t, 3*time.Hour, dashboard.AverageApprovalTime(history))
	assert.Equal(t, time.Duration(0), dashboard.AverageApprovalTime(nil))
}
