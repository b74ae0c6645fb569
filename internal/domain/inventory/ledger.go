// Package inventory contiene las reglas puras del libro de movimientos: signo de cada
// movimiento, costo promedio y detección de descuadres entre saldos y libro.
package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
)

// SignedQuantity convierte la cantidad pedida en el delta que se guarda en el libro.
// IN y OUT exigen cantidad > 0; ADJUST acepta cualquier valor distinto de cero.
// Más de entity.QuantityScale decimales es ErrInvalidInput.
func SignedQuantity(movementType string, qty decimal.Decimal) (decimal.Decimal, error) {
	if !entity.FitsScale(qty, entity.QuantityScale) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	switch movementType {
	case entity.MovementTypeIN:
		if !qty.IsPositive() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return qty, nil
	case entity.MovementTypeOUT:
		if !qty.IsPositive() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return qty.Neg(), nil
	case entity.MovementTypeADJUST:
		if qty.IsZero() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return qty, nil
	}
	return decimal.Zero, domain.ErrInvalidInput
}

// Apply suma delta al saldo. ErrInsufficientStock si el resultado queda negativo.
func Apply(onHand, delta decimal.Decimal) (decimal.Decimal, error) {
	next := onHand.Add(delta)
	if next.IsNegative() {
		return onHand, domain.ErrInsufficientStock
	}
	return next, nil
}

// Drift descuadre de un par producto+bodega.
type Drift struct {
	ProductID   string
	WarehouseID string
	Stored      decimal.Decimal // saldo materializado
	Ledger      decimal.Decimal // suma de movimientos
}

// Difference Stored - Ledger.
func (d Drift) Difference() decimal.Decimal {
	return d.Stored.Sub(d.Ledger)
}

type pair struct{ product, warehouse string }

// FindDrift compara saldos contra la suma del libro. Un par presente en un solo lado cuenta
// como cero en el otro. El resultado se ordena por producto y bodega.
func FindDrift(balances []*entity.StockBalance, totals []repository.LedgerTotal) []Drift {
	stored := make(map[pair]decimal.Decimal, len(balances))
	for _, b := range balances {
		stored[pair{b.ProductID, b.WarehouseID}] = b.QuantityOnHand
	}
	ledger := make(map[pair]decimal.Decimal, len(totals))
	for _, t := range totals {
		ledger[pair{t.ProductID, t.WarehouseID}] = t.Quantity
	}

	keys := make(map[pair]struct{}, len(stored)+len(ledger))
	for k := range stored {
		keys[k] = struct{}{}
	}
	for k := range ledger {
		keys[k] = struct{}{}
	}

	var out []Drift
	for k := range keys {
		s, l := stored[k], ledger[k]
		if s.Equal(l) {
			continue
		}
		out = append(out, Drift{ProductID: k.product, WarehouseID: k.warehouse, Stored: s, Ledger: l})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out
}

// Pairs número de pares distintos revisados.
func Pairs(balances []*entity.StockBalance, totals []repository.LedgerTotal) int {
	seen := make(map[pair]struct{}, len(balances)+len(totals))
	for _, b := range balances {
		seen[pair{b.ProductID, b.WarehouseID}] = struct{}{}
	}
	for _, t := range totals {
		seen[pair{t.ProductID, t.WarehouseID}] = struct{}{}
	}
	return len(seen)
}
