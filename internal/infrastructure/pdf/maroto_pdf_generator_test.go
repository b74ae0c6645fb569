package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":         "0,00",
		"25000":     "25.000,00",
		"1234567.5": "1.234.567,50",
		"-1000.126": "-1.000,13",
		"999.999":   "1.000,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatAmount(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateDocumentPDF(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	sheet := document.DocumentSheet{
		Document: &entity.Document{
			ID:              "6f1c",
			DocumentType:    entity.DocumentTypePurchaseOrder,
			DocumentNumber:  "PO-2024-001",
			SupplierName:    "ACME Ltd",
			DocumentDate:    now,
			DocumentValue:   decimal.NewFromInt(1000),
			Currency:        "USD",
			Status:          entity.DocumentStatusRejected,
			Priority:        entity.PriorityMedium,
			RejectionReason: "Missing invoice",
			CreatedAt:       now,
		},
		History: []*entity.DocumentHistory{
			{ActionType: entity.HistoryActionRejected, OldStatus: entity.DocumentStatusPending, NewStatus: entity.DocumentStatusRejected, CreatedAt: now},
			{ActionType: entity.HistoryActionCreated, NewStatus: entity.DocumentStatusDraft, CreatedAt: now},
		},
		CreatedByName: "Ana Pérez",
		GeneratedAt:   now,
	}

	out, err := NewMarotoPDFGenerator("Importaciones SAS").GenerateDocumentPDF(context.Background(), sheet)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateDocumentPDF_SinDocumento(t *testing.T) {
	_, err := NewMarotoPDFGenerator("").GenerateDocumentPDF(context.Background(), document.DocumentSheet{})
	assert.Error(t, err)
}
