package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo saldos por producto y bodega sobre PostgreSQL (usable con pool o tx).
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

// Get obtiene el saldo actual de un producto en una bodega; sin fila devuelve saldo cero.
func (r *StockBalanceRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, warehouse_id, quantity_on_hand, reserved_quantity, last_movement_at
		FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2`,
		productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get stock balance: %w", err)
		}
		return zeroBalance(productID, warehouseID), nil
	}
	b, err := scanBalance(rows)
	if err != nil {
		return nil, fmt.Errorf("scan stock balance: %w", err)
	}
	return b, nil
}

// GetForUpdate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE), de modo que
// dos transacciones sobre un par nuevo también se serializan.
func (r *StockBalanceRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (product_id, warehouse_id, quantity_on_hand, reserved_quantity)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`,
		productID, warehouseID); err != nil {
		return nil, fmt.Errorf("ensure stock balance: %w", err)
	}
	b, err := scanBalance(r.q.QueryRow(ctx, `
		SELECT product_id, warehouse_id, quantity_on_hand, reserved_quantity, last_movement_at
		FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`,
		productID, warehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock balance for update: %w", err)
	}
	return b, nil
}

// Upsert inserta o actualiza el saldo (por producto y bodega).
func (r *StockBalanceRepo) Upsert(ctx context.Context, b *entity.StockBalance) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (product_id, warehouse_id, quantity_on_hand, reserved_quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity_on_hand = EXCLUDED.quantity_on_hand,
			reserved_quantity = EXCLUDED.reserved_quantity,
			last_movement_at = EXCLUDED.last_movement_at,
			updated_at = now()`,
		b.ProductID, b.WarehouseID, b.QuantityOnHand, b.ReservedQuantity, b.LastMovementAt)
	if err != nil {
		return fmt.Errorf("upsert stock balance: %w", err)
	}
	return nil
}

// List saldos con producto y bodega resueltos, ordenados por SKU y código de bodega.
func (r *StockBalanceRepo) List(ctx context.Context, q repository.BalanceQuery) ([]*entity.StockBalanceView, error) {
	var (
		where []string
		args  []any
	)
	if q.ProductID != "" {
		args = append(args, q.ProductID)
		where = append(where, "b.product_id = $"+strconv.Itoa(len(args)))
	}
	if q.WarehouseID != "" {
		args = append(args, q.WarehouseID)
		where = append(where, "b.warehouse_id = $"+strconv.Itoa(len(args)))
	}
	query := `
		SELECT b.product_id, b.warehouse_id, b.quantity_on_hand, b.reserved_quantity, b.last_movement_at,
			p.sku, p.name, p.reorder_point, p.cost_price, w.code, w.name
		FROM stock_balances b
		JOIN products p ON p.id = b.product_id
		JOIN warehouses w ON w.id = b.warehouse_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY p.sku, w.code`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock balances: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockBalanceView
	for rows.Next() {
		var v entity.StockBalanceView
		if err := rows.Scan(&v.ProductID, &v.WarehouseID, &v.QuantityOnHand, &v.ReservedQuantity, &v.LastMovementAt,
			&v.ProductSKU, &v.ProductName, &v.ReorderPoint, &v.CostPrice, &v.WarehouseCode, &v.WarehouseName); err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	if err := row.Scan(&b.ProductID, &b.WarehouseID, &b.QuantityOnHand, &b.ReservedQuantity, &b.LastMovementAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func zeroBalance(productID, warehouseID string) *entity.StockBalance {
	return &entity.StockBalance{
		ProductID:        productID,
		WarehouseID:      warehouseID,
		QuantityOnHand:   decimal.Zero,
		ReservedQuantity: decimal.Zero,
	}
}
