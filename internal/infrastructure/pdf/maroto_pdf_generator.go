// Package pdf genera la ficha imprimible de un documento de importación.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo + N° documento  │  Estado + Prioridad          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROVEEDOR: nombre / fecha / valor + moneda                  │
//	│  RESPONSABLES: creado por / aprobador                        │
//	│  OBSERVACIONES y motivo de rechazo                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  HISTORIAL: Fecha | Acción | De → A | Usuario | Obs.         │
//	│  ADJUNTOS: Archivo | Tipo | Tamaño | Fecha                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + fecha de generación            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ document.PDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa document.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
}

// NewMarotoPDFGenerator construye el generador; company va como autor del PDF.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// GenerateDocumentPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDocumentPDF(_ context.Context, sheet document.DocumentSheet) ([]byte, error) {
	if sheet.Document == nil {
		return nil, fmt.Errorf("pdf: documento requerido")
	}
	doc := sheet.Document

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Documento de importación "+doc.DocumentNumber, true).
		WithAuthor(nonEmpty(g.company, "Importaciones"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(doc))
	m.AddRows(peopleRow(sheet))
	m.AddRows(remarksRows(doc)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("HISTORIAL"))
	m.AddRows(historyHeaderRow())
	m.AddRows(historyRows(sheet.History)...)

	m.AddRows(row.New(3))
	m.AddRows(sectionTitle("ADJUNTOS"))
	m.AddRows(filesRows(sheet.Files)...)

	m.AddRows(row.New(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(sheet))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tipo y número (izq), estado y prioridad (der).
func headerRow(doc *entity.Document) core.Row {
	statusColor := colorPrimary
	if doc.Status == entity.DocumentStatusRejected {
		statusColor = colorRed
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(strings.ToUpper(doc.DocumentType), props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.DocumentNumber, props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 6,
			}),
		),
		col.New(5).Add(
			text.New("Estado: "+statusLabel(doc.Status), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: statusColor, Top: 1,
			}),
			text.New("Prioridad: "+doc.Priority, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Creado: "+doc.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func supplierRow(doc *entity.Document) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("PROVEEDOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.SupplierName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		),
		col.New(4).Add(
			text.New("Fecha: "+doc.DocumentDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
			text.New(formatAmount(doc.DocumentValue)+" "+doc.Currency, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 6, Color: colorPrimary,
			}),
		),
	)
}

func peopleRow(sheet document.DocumentSheet) core.Row {
	return row.New(10).Add(
		col.New(6).Add(text.New("Creado por: "+nonEmpty(sheet.CreatedByName, "—"), props.Text{
			Size: 8, Top: 2, Color: colorGray,
		})),
		col.New(6).Add(text.New("Aprobador: "+nonEmpty(sheet.ApproverName, "Sin asignar"), props.Text{
			Size: 8, Top: 2, Align: align.Right, Color: colorGray,
		})),
	)
}

func remarksRows(doc *entity.Document) []core.Row {
	var rows []core.Row
	if doc.Remarks != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Observaciones: "+doc.Remarks, props.Text{Size: 8, Top: 1}),
		)))
	}
	if doc.RejectionReason != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Motivo de rechazo: "+doc.RejectionReason, props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 1, Color: colorRed,
			}),
		)))
	}
	return rows
}

func sectionTitle(label string) core.Row {
	return row.New(7).Add(col.New(12).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
	})))
}

func historyHeaderRow() core.Row {
	h := func(label string, size int) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Top: 1, Left: 1,
		}))
	}
	return row.New(6).Add(
		h("Fecha", 2),
		h("Acción", 2),
		h("Estado", 3),
		h("Usuario", 2),
		h("Observaciones", 3),
	)
}

func historyRows(history []*entity.DocumentHistory) []core.Row {
	if len(history) == 0 {
		return []core.Row{emptyRow("Sin movimientos en el historial")}
	}
	cell := func(s string, size int) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 7.5, Top: 1, Left: 1}))
	}
	rows := make([]core.Row, 0, len(history))
	for _, h := range history {
		transition := statusLabel(h.NewStatus)
		if h.OldStatus != "" && h.OldStatus != h.NewStatus {
			transition = statusLabel(h.OldStatus) + " -> " + statusLabel(h.NewStatus)
		}
		rows = append(rows, row.New(6).Add(
			cell(h.CreatedAt.Format("02/01/2006 15:04"), 2),
			cell(h.ActionType, 2),
			cell(transition, 3),
			cell(h.PerformedBy, 2),
			cell(h.Remarks, 3),
		))
	}
	return rows
}

func filesRows(files []*entity.DocumentFile) []core.Row {
	if len(files) == 0 {
		return []core.Row{emptyRow("Sin adjuntos")}
	}
	rows := make([]core.Row, 0, len(files))
	for _, f := range files {
		rows = append(rows, row.New(6).Add(
			col.New(6).Add(text.New(f.FileName, props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(f.FileType, props.Text{Size: 7.5, Top: 1})),
			col.New(2).Add(text.New(formatSize(f.FileSize), props.Text{Size: 7.5, Top: 1, Align: align.Right})),
			col.New(2).Add(text.New(f.UploadedAt.Format("02/01/2006"), props.Text{Size: 7.5, Top: 1, Align: align.Right})),
		))
	}
	return rows
}

// footerRow: QR con la referencia del documento + fecha de generación.
func footerRow(sheet document.DocumentSheet) core.Row {
	doc := sheet.Document
	return row.New(36).Add(
		col.New(3).Add(code.NewQr(qrPayload(doc), props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Referencia: "+doc.ID, props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
			text.New("Generado: "+sheet.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Top: 10, Left: 3, Color: colorGray,
			}),
			text.New("Documento de soporte del proceso de importación.", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 20, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(text.New(msg, props.Text{
		Size: 7.5, Top: 1, Left: 1, Color: colorGray,
	})))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func qrPayload(doc *entity.Document) string {
	return strings.Join([]string{"IMP", doc.DocumentNumber, doc.ID, doc.Status}, "|")
}

func statusLabel(s string) string {
	switch s {
	case entity.DocumentStatusDraft:
		return "Borrador"
	case entity.DocumentStatusPending:
		return "Pendiente"
	case entity.DocumentStatusApproved:
		return "Aprobado"
	case entity.DocumentStatusRejected:
		return "Rechazado"
	case entity.DocumentStatusClosed:
		return "Cerrado"
	}
	return s
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount formato es-CO con dos decimales. Ej: 1234567.5 → "1.234.567,50".
func formatAmount(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	out := formatMoney(intPart) + "," + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
