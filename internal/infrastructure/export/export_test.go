package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/infrastructure/export"
)

var ts = time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

func sampleDoc() *entity.Document {
	return &entity.Document{
		ID:              "d-1",
		DocumentType:    entity.DocumentTypeCommercialInvoice,
		DocumentNumber:  "CI-77",
		SupplierName:    "Shenzhen Parts & Co",
		DocumentDate:    ts,
		DocumentValue:   decimal.RequireFromString("2500.5"),
		Currency:        "USD",
		Status:          entity.DocumentStatusRejected,
		Priority:        entity.PriorityHigh,
		ApproverID:      "u-2",
		CreatedBy:       "u-1",
		RejectionReason: "Falta factura <original>",
		CreatedAt:       ts,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// XLSX
// ──────────────────────────────────────────────────────────────────────────────

func TestWriteDocuments(t *testing.T) {
	out, err := export.NewExcelWriter().WriteDocuments([]*entity.Document{sampleDoc()})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetDocuments)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Número", rows[0][0])
	assert.Equal(t, "CI-77", rows[1][0])
	assert.Equal(t, "2500.5", rows[1][4])
	assert.Equal(t, entity.DocumentStatusRejected, rows[1][6])
}

func TestWriteBalances(t *testing.T) {
	rows := []*entity.StockBalanceView{{
		StockBalance: entity.StockBalance{
			ProductID:        "p1",
			WarehouseID:      "w1",
			QuantityOnHand:   decimal.NewFromInt(4),
			ReservedQuantity: decimal.Zero,
		},
		ProductSKU:    "SKU-1",
		ProductName:   "Tornillo",
		ReorderPoint:  decimal.NewFromInt(5),
		CostPrice:     decimal.RequireFromString("2.5"),
		WarehouseCode: "BOG",
		WarehouseName: "Bogotá",
	}}
	out, err := export.NewExcelWriter().WriteBalances(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(export.SheetBalances, "C2")
	require.NoError(t, err)
	assert.Equal(t, "BOG - Bogotá", v)
	v, err = f.GetCellValue(export.SheetBalances, "H2")
	require.NoError(t, err)
	assert.Equal(t, "10", v)
}

// ──────────────────────────────────────────────────────────────────────────────
// XML
// ──────────────────────────────────────────────────────────────────────────────

func TestEncodeDocument_DigestVerificable(t *testing.T) {
	sheet := document.DocumentSheet{
		Document: sampleDoc(),
		History: []*entity.DocumentHistory{{
			ActionType:  entity.HistoryActionRejected,
			OldStatus:   entity.DocumentStatusPending,
			NewStatus:   entity.DocumentStatusRejected,
			PerformedBy: "u-2",
			Remarks:     "Falta factura",
			CreatedAt:   ts,
		}},
		Files:         []*entity.DocumentFile{{FileName: "bl.pdf", FileType: "application/pdf", FileSize: 2048}},
		CreatedByName: "Ana",
		ApproverName:  "Luis",
		GeneratedAt:   ts,
	}
	out, err := export.NewXMLEncoder().EncodeDocument(sheet)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "ImportDocument", root.Tag)

	data := root.SelectElement("Data")
	require.NotNil(t, data)
	assert.Equal(t, "CI-77", data.FindElement("Header/DocumentNumber").Text())
	assert.Equal(t, "2500.50", data.SelectElement("Value").Text())
	assert.Equal(t, "Falta factura <original>", data.SelectElement("RejectionReason").Text())
	entry := data.FindElement("History/Entry")
	require.NotNil(t, entry)
	assert.Equal(t, entity.DocumentStatusPending, entry.SelectAttrValue("from", ""))

	want, err := export.DigestData(data)
	require.NoError(t, err)
	assert.Equal(t, want, root.SelectElement("Digest").Text())

	// alterar el contenido invalida el digest
	data.FindElement("Header/Status").SetText(entity.DocumentStatusApproved)
	tampered, err := export.DigestData(data)
	require.NoError(t, err)
	assert.NotEqual(t, want, tampered)
}

func TestEncodeDocument_SinDocumento(t *testing.T) {
	_, err := export.NewXMLEncoder().EncodeDocument(document.DocumentSheet{})
	assert.Error(t, err)
}
