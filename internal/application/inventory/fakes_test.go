package inventory_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria: saldos, libro y productos con transacciones serializadas
// ──────────────────────────────────────────────────────────────────────────────

var errBoom = errors.New("fallo simulado")

type key struct{ product, warehouse string }

type memInventory struct {
	txMu sync.Mutex
	mu   sync.Mutex

	balances   map[key]entity.StockBalance
	movements  []entity.StockMovement
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	docs       map[string]entity.Document

	failMovement bool
}

func newMemInventory() *memInventory {
	return &memInventory{
		balances:   make(map[key]entity.StockBalance),
		products:   make(map[string]entity.Product),
		warehouses: make(map[string]entity.Warehouse),
		docs:       make(map[string]entity.Document),
	}
}

func (s *memInventory) RunInventory(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	balances := make(map[key]entity.StockBalance, len(s.balances))
	for k, v := range s.balances {
		balances[k] = v
	}
	products := make(map[string]entity.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	movements := append([]entity.StockMovement(nil), s.movements...)
	s.mu.Unlock()

	if err := fn(memMovements{s}, memBalances{s}, memProducts{s}); err != nil {
		s.mu.Lock()
		s.balances, s.products, s.movements = balances, products, movements
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memInventory) balance(productID, warehouseID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[key{productID, warehouseID}].QuantityOnHand
}

func (s *memInventory) ledger(productID, warehouseID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, m := range s.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum
}

func (s *memInventory) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

// setBalance escribe un saldo sin movimiento (simula un descuadre).
func (s *memInventory) setBalance(productID, warehouseID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[key{productID, warehouseID}] = entity.StockBalance{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		QuantityOnHand: qty,
	}
}

// ── Balances ─────────────────────────────────────────────────────────────────

type memBalances struct{ s *memInventory }

var _ repository.StockBalanceRepository = memBalances{}

func (r memBalances) Get(_ context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[key{productID, warehouseID}]
	if !ok {
		b = entity.StockBalance{ProductID: productID, WarehouseID: warehouseID}
	}
	return &b, nil
}

func (r memBalances) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r memBalances) Upsert(_ context.Context, b *entity.StockBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.balances[key{b.ProductID, b.WarehouseID}] = *b
	return nil
}

func (r memBalances) List(_ context.Context, q repository.BalanceQuery) ([]*entity.StockBalanceView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockBalanceView
	for k, b := range r.s.balances {
		if q.ProductID != "" && k.product != q.ProductID {
			continue
		}
		if q.WarehouseID != "" && k.warehouse != q.WarehouseID {
			continue
		}
		p := r.s.products[k.product]
		w := r.s.warehouses[k.warehouse]
		out = append(out, &entity.StockBalanceView{
			StockBalance:  b,
			ProductSKU:    p.SKU,
			ProductName:   p.Name,
			ReorderPoint:  p.ReorderPoint,
			CostPrice:     p.CostPrice,
			WarehouseCode: w.Code,
			WarehouseName: w.Name,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductSKU != out[j].ProductSKU {
			return out[i].ProductSKU < out[j].ProductSKU
		}
		return out[i].WarehouseCode < out[j].WarehouseCode
	})
	return out, nil
}

// ── Movements ────────────────────────────────────────────────────────────────

type memMovements struct{ s *memInventory }

var _ repository.StockMovementRepository = memMovements{}

func (r memMovements) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failMovement {
		return errBoom
	}
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r memMovements) view(m entity.StockMovement) *entity.StockMovementView {
	p := r.s.products[m.ProductID]
	w := r.s.warehouses[m.WarehouseID]
	return &entity.StockMovementView{
		StockMovement:  m,
		ProductSKU:     p.SKU,
		ProductName:    p.Name,
		WarehouseCode:  w.Code,
		WarehouseName:  w.Name,
		DocumentNumber: r.s.docs[m.SourceDocumentID].DocumentNumber,
	}
}

func (r memMovements) GetByID(_ context.Context, id string) (*entity.StockMovementView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			return r.view(m), nil
		}
	}
	return nil, nil
}

func (r memMovements) List(_ context.Context, q repository.MovementQuery) ([]*entity.StockMovementView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovementView
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if q.ProductID != "" && m.ProductID != q.ProductID {
			continue
		}
		if q.WarehouseID != "" && m.WarehouseID != q.WarehouseID {
			continue
		}
		if q.MovementType != "" && m.MovementType != q.MovementType {
			continue
		}
		if q.From != nil && m.MovementDate.Before(*q.From) {
			continue
		}
		if q.To != nil && !m.MovementDate.Before(*q.To) {
			continue
		}
		out = append(out, r.view(m))
	}
	if q.Offset < len(out) {
		out = out[q.Offset:]
	} else {
		out = nil
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r memMovements) Totals(_ context.Context) ([]repository.LedgerTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sums := make(map[key]*repository.LedgerTotal)
	var order []key
	for _, m := range r.s.movements {
		k := key{m.ProductID, m.WarehouseID}
		t, ok := sums[k]
		if !ok {
			t = &repository.LedgerTotal{ProductID: m.ProductID, WarehouseID: m.WarehouseID}
			sums[k] = t
			order = append(order, k)
		}
		t.Quantity = t.Quantity.Add(m.Quantity)
		if m.MovementDate.After(t.LastMovementAt) {
			t.LastMovementAt = m.MovementDate
		}
	}
	out := make([]repository.LedgerTotal, 0, len(order))
	for _, k := range order {
		out = append(out, *sums[k])
	}
	return out, nil
}

func (r memMovements) Total(ctx context.Context, productID, warehouseID string) (repository.LedgerTotal, error) {
	totals, _ := r.Totals(ctx)
	for _, t := range totals {
		if t.ProductID == productID && t.WarehouseID == warehouseID {
			return t, nil
		}
	}
	return repository.LedgerTotal{ProductID: productID, WarehouseID: warehouseID}, nil
}

// ── Products / Warehouses / Documents ────────────────────────────────────────

type memProducts struct{ s *memInventory }

var _ repository.ProductRepository = memProducts{}

func (r memProducts) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = *p
	return nil
}

func (r memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProducts) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU == sku {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r memProducts) Update(ctx context.Context, p *entity.Product) error {
	return r.Create(ctx, p)
}

func (r memProducts) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.products[id]
	p.CostPrice = cost
	r.s.products[id] = p
	return nil
}

func (r memProducts) List(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memWarehouses struct{ s *memInventory }

var _ repository.WarehouseRepository = memWarehouses{}

func (r memWarehouses) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.warehouses[w.ID] = *w
	return nil
}

func (r memWarehouses) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r memWarehouses) GetByCode(_ context.Context, code string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.warehouses {
		if w.Code == code {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

func (r memWarehouses) Update(ctx context.Context, w *entity.Warehouse) error {
	return r.Create(ctx, w)
}

func (r memWarehouses) List(_ context.Context) ([]*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Warehouse, 0, len(r.s.warehouses))
	for _, w := range r.s.warehouses {
		w := w
		out = append(out, &w)
	}
	return out, nil
}

// memDocs solo resuelve documentos origen por ID.
type memDocs struct{ s *memInventory }

var _ repository.DocumentRepository = memDocs{}

func (r memDocs) Create(_ context.Context, d *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.docs[d.ID] = *d
	return nil
}

func (r memDocs) GetByID(_ context.Context, id string) (*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r memDocs) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

func (r memDocs) Update(ctx context.Context, d *entity.Document) error { return r.Create(ctx, d) }

func (r memDocs) Delete(context.Context, string) error { return nil }

func (r memDocs) List(context.Context, repository.DocumentQuery) ([]*entity.Document, error) {
	return nil, nil
}

// sheetStub registra las filas recibidas.
type sheetStub struct{ rows int }

func (s *sheetStub) WriteBalances(rows []*entity.StockBalanceView) ([]byte, error) {
	s.rows = len(rows)
	return []byte("xlsx"), nil
}
