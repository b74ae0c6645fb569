package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos (solo inserción).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementSelect = `
	SELECT m.id, m.product_id, m.warehouse_id, m.movement_type, m.quantity, m.unit_cost,
		m.source_document_id, m.reference_number, m.remarks, m.performed_by, m.movement_date, m.created_at,
		p.sku, p.name, w.code, w.name, COALESCE(d.document_number, '')
	FROM stock_movements m
	JOIN products p ON p.id = m.product_id
	JOIN warehouses w ON w.id = m.warehouse_id
	LEFT JOIN documents d ON d.id = m.source_document_id`

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, warehouse_id, movement_type, quantity, unit_cost,
			source_document_id, reference_number, remarks, performed_by, movement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.ProductID, m.WarehouseID, m.MovementType, m.Quantity, m.UnitCost,
		nullIfEmpty(m.SourceDocumentID), m.ReferenceNumber, m.Remarks, m.PerformedBy, m.MovementDate, m.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento con sus nombres resueltos.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovementView, error) {
	v, err := scanMovement(r.q.QueryRow(ctx, movementSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return v, nil
}

// List movimientos filtrados, ordenados por movement_date DESC.
func (r *StockMovementRepo) List(ctx context.Context, q repository.MovementQuery) ([]*entity.StockMovementView, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, cond+" $"+strconv.Itoa(len(args)))
	}
	if q.ProductID != "" {
		add("m.product_id =", q.ProductID)
	}
	if q.WarehouseID != "" {
		add("m.warehouse_id =", q.WarehouseID)
	}
	if q.SourceDocumentID != "" {
		add("m.source_document_id =", q.SourceDocumentID)
	}
	if q.MovementType != "" {
		add("m.movement_type =", q.MovementType)
	}
	if q.From != nil {
		add("m.movement_date >=", *q.From)
	}
	if q.To != nil {
		add("m.movement_date <", *q.To)
	}

	query := movementSelect
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY m.movement_date DESC, m.created_at DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockMovementView
	for rows.Next() {
		v, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Totals suma del libro agrupada por producto y bodega.
func (r *StockMovementRepo) Totals(ctx context.Context) ([]repository.LedgerTotal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, warehouse_id, SUM(quantity), MAX(movement_date)
		FROM stock_movements
		GROUP BY product_id, warehouse_id`)
	if err != nil {
		return nil, fmt.Errorf("ledger totals: %w", err)
	}
	defer rows.Close()
	var out []repository.LedgerTotal
	for rows.Next() {
		var t repository.LedgerTotal
		if err := rows.Scan(&t.ProductID, &t.WarehouseID, &t.Quantity, &t.LastMovementAt); err != nil {
			return nil, fmt.Errorf("scan ledger total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Total suma del libro para un par; cero si no hay movimientos.
func (r *StockMovementRepo) Total(ctx context.Context, productID, warehouseID string) (repository.LedgerTotal, error) {
	t := repository.LedgerTotal{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}
	var last *time.Time
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0), MAX(movement_date)
		FROM stock_movements WHERE product_id = $1 AND warehouse_id = $2`,
		productID, warehouseID,
	).Scan(&t.Quantity, &last)
	if err != nil {
		return t, fmt.Errorf("ledger total: %w", err)
	}
	if last != nil {
		t.LastMovementAt = *last
	}
	return t, nil
}

func scanMovement(row pgx.Row) (*entity.StockMovementView, error) {
	var v entity.StockMovementView
	var sourceDoc *string
	if err := row.Scan(&v.ID, &v.ProductID, &v.WarehouseID, &v.MovementType, &v.Quantity, &v.UnitCost,
		&sourceDoc, &v.ReferenceNumber, &v.Remarks, &v.PerformedBy, &v.MovementDate, &v.CreatedAt,
		&v.ProductSKU, &v.ProductName, &v.WarehouseCode, &v.WarehouseName, &v.DocumentNumber); err != nil {
		return nil, err
	}
	v.SourceDocumentID = deref(sourceDoc)
	return &v, nil
}
