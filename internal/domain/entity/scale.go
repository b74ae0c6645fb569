package entity

import "github.com/shopspring/decimal"

// Decimales que admiten las columnas NUMERIC. Un valor con más decimales se redondearía al
// guardarse, así que se rechaza antes.
const (
	QuantityScale      int32 = 4 // cantidades de stock y punto de reorden
	CostScale          int32 = 4 // costo unitario y costo promedio
	DocumentValueScale int32 = 2 // valor del documento
)

// FitsScale indica si v se puede guardar con scale decimales sin redondeo.
// Los ceros a la derecha no cuentan: 5.00000 cabe en escala 4.
func FitsScale(v decimal.Decimal, scale int32) bool {
	return v.Equal(v.Truncate(scale))
}
