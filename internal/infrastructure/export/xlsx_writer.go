// Package export serializa documentos y saldos a XLSX (excelize) y XML (etree).
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/application/inventory"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

var (
	_ document.DocumentSheetWriter = (*ExcelWriter)(nil)
	_ inventory.BalanceSheetWriter = (*ExcelWriter)(nil)
)

const (
	SheetDocuments = "Documentos"
	SheetBalances  = "Saldos"
)

// ExcelWriter escribe listados como libro XLSX de una hoja.
type ExcelWriter struct{}

// NewExcelWriter construye el writer.
func NewExcelWriter() *ExcelWriter { return &ExcelWriter{} }

// WriteDocuments una fila por documento, en el orden recibido.
func (w *ExcelWriter) WriteDocuments(docs []*entity.Document) ([]byte, error) {
	headers := []string{
		"Número", "Tipo", "Proveedor", "Fecha", "Valor", "Moneda",
		"Estado", "Prioridad", "Aprobador", "Creado", "Motivo de rechazo",
	}
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []any{
			d.DocumentNumber,
			d.DocumentType,
			d.SupplierName,
			d.DocumentDate.Format("2006-01-02"),
			d.DocumentValue.InexactFloat64(),
			d.Currency,
			d.Status,
			d.Priority,
			d.ApproverID,
			d.CreatedAt.Format("2006-01-02 15:04"),
			d.RejectionReason,
		})
	}
	return writeSheet(SheetDocuments, headers, rows)
}

// WriteBalances una fila por saldo con el valor (cantidad × costo).
func (w *ExcelWriter) WriteBalances(balances []*entity.StockBalanceView) ([]byte, error) {
	headers := []string{
		"SKU", "Producto", "Bodega", "Cantidad", "Reservado", "Punto de reorden", "Costo unitario", "Valor",
	}
	rows := make([][]any, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, []any{
			b.ProductSKU,
			b.ProductName,
			b.WarehouseCode + " - " + b.WarehouseName,
			b.QuantityOnHand.InexactFloat64(),
			b.ReservedQuantity.InexactFloat64(),
			b.ReorderPoint.InexactFloat64(),
			b.CostPrice.InexactFloat64(),
			b.QuantityOnHand.Mul(b.CostPrice).Round(2).InexactFloat64(),
		})
	}
	return writeSheet(SheetBalances, headers, rows)
}

func writeSheet(sheet string, headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx: hoja: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx: encabezado: %w", err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("xlsx: estilo encabezado: %w", err)
	}

	for r, values := range rows {
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx: celda %s: %w", cell, err)
			}
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(sheet, "A", last, 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
