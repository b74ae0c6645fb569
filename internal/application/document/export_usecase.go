package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/internal/domain/listing"
	"github.com/jhoicas/Importaciones-api/internal/domain/policy"
	"github.com/jhoicas/Importaciones-api/internal/domain/repository"
	"github.com/jhoicas/Importaciones-api/internal/domain/workflow"
)

// DocumentSheet datos completos de un documento para su representación impresa o XML.
type DocumentSheet struct {
	Document      *entity.Document
	History       []*entity.DocumentHistory // más reciente primero
	Files         []*entity.DocumentFile
	CreatedByName string
	ApproverName  string
	GeneratedAt   time.Time
}

// PDFGenerator genera la ficha PDF de un documento.
type PDFGenerator interface {
	GenerateDocumentPDF(ctx context.Context, sheet DocumentSheet) ([]byte, error)
}

// XMLEncoder serializa la ficha de un documento a XML.
type XMLEncoder interface {
	EncodeDocument(sheet DocumentSheet) ([]byte, error)
}

// DocumentSheetWriter escribe una lista de documentos como hoja de cálculo.
type DocumentSheetWriter interface {
	WriteDocuments(docs []*entity.Document) ([]byte, error)
}

// ExportUseCase exportaciones de documentos (PDF, XML, XLSX) respetando la visibilidad.
type ExportUseCase struct {
	docRepo     repository.DocumentRepository
	historyRepo repository.DocumentHistoryRepository
	fileRepo    repository.DocumentFileRepository
	userRepo    repository.UserRepository
	policy      *policy.Policy
	pdf         PDFGenerator
	xml         XMLEncoder
	sheet       DocumentSheetWriter
}

// NewExportUseCase construye el caso de uso inyectando los generadores.
func NewExportUseCase(
	docRepo repository.DocumentRepository,
	historyRepo repository.DocumentHistoryRepository,
	fileRepo repository.DocumentFileRepository,
	userRepo repository.UserRepository,
	pol *policy.Policy,
	pdf PDFGenerator,
	xml XMLEncoder,
	sheet DocumentSheetWriter,
) *ExportUseCase {
	return &ExportUseCase{
		docRepo:     docRepo,
		historyRepo: historyRepo,
		fileRepo:    fileRepo,
		userRepo:    userRepo,
		policy:      pol,
		pdf:         pdf,
		xml:         xml,
		sheet:       sheet,
	}
}

// DownloadPDF genera la ficha PDF. Retorna (bytes, nombre de archivo, error).
func (uc *ExportUseCase) DownloadPDF(ctx context.Context, actor entity.Actor, id string) ([]byte, string, error) {
	sheet, err := uc.buildSheet(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.pdf.GenerateDocumentPDF(ctx, *sheet)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return b, fileBase(sheet.Document) + ".pdf", nil
}

// DownloadXML serializa la ficha a XML.
func (uc *ExportUseCase) DownloadXML(ctx context.Context, actor entity.Actor, id string) ([]byte, string, error) {
	sheet, err := uc.buildSheet(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.xml.EncodeDocument(*sheet)
	if err != nil {
		return nil, "", fmt.Errorf("xml: serialización fallida: %w", err)
	}
	return b, fileBase(sheet.Document) + ".xml", nil
}

// ExportXLSX exporta la lista visible y filtrada como hoja de cálculo.
func (uc *ExportUseCase) ExportXLSX(ctx context.Context, actor entity.Actor, q dto.DocumentFilterQuery) ([]byte, string, error) {
	rq := repository.DocumentQuery{}
	if !actor.SeesAllDocuments() {
		rq.VisibleTo = actor.UserID
	}
	docs, err := uc.docRepo.List(ctx, rq)
	if err != nil {
		return nil, "", err
	}
	docs = listing.FilterDocuments(docs, listing.DocumentFilter{
		Search:       q.Search,
		Status:       q.Status,
		DocumentType: q.Type,
		Priority:     q.Priority,
	})
	b, err := uc.sheet.WriteDocuments(docs)
	if err != nil {
		return nil, "", fmt.Errorf("xlsx: %w", err)
	}
	return b, "documentos_" + time.Now().Format("20060102") + ".xlsx", nil
}

func (uc *ExportUseCase) buildSheet(ctx context.Context, actor entity.Actor, id string) (*DocumentSheet, error) {
	doc, err := uc.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener documento: %w", err)
	}
	if doc == nil || !uc.policy.CanOnDocument(actor, doc, workflow.ActionView) {
		return nil, domain.ErrNotFound
	}
	history, err := uc.historyRepo.ListByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener historial: %w", err)
	}
	files, err := uc.fileRepo.ListByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener adjuntos: %w", err)
	}
	return &DocumentSheet{
		Document:      doc,
		History:       history,
		Files:         files,
		CreatedByName: uc.userName(ctx, doc.CreatedBy),
		ApproverName:  uc.userName(ctx, doc.ApproverID),
		GeneratedAt:   time.Now(),
	}, nil
}

// userName devuelve el nombre del usuario o el ID como respaldo.
func (uc *ExportUseCase) userName(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	if u, err := uc.userRepo.GetByID(ctx, id); err == nil && u != nil {
		return u.FullName
	}
	return id
}

func fileBase(d *entity.Document) string {
	r := strings.NewReplacer("/", "-", "\\", "-", " ", "_")
	return "documento_" + r.Replace(d.DocumentNumber)
}
