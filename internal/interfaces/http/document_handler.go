package http

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXML  = "application/xml"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// workflowService lo implementa *document.WorkflowUseCase.
type workflowService interface {
	Create(ctx context.Context, actor entity.Actor, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	Get(ctx context.Context, actor entity.Actor, id string) (*dto.DocumentResponse, error)
	List(ctx context.Context, actor entity.Actor, q dto.DocumentFilterQuery) (*dto.DocumentListResponse, error)
	UpdateDraft(ctx context.Context, actor entity.Actor, id string, in dto.UpdateDocumentRequest) (*dto.DocumentResponse, error)
	DeleteDraft(ctx context.Context, actor entity.Actor, id string) error
	SubmitForApproval(ctx context.Context, actor entity.Actor, id string) (*dto.DocumentResponse, error)
	Approve(ctx context.Context, actor entity.Actor, id, remarks string) (*dto.DocumentResponse, error)
	Reject(ctx context.Context, actor entity.Actor, id, reason string) (*dto.DocumentResponse, error)
	History(ctx context.Context, actor entity.Actor, id string) ([]dto.HistoryEntryResponse, error)
	AllowedActions(ctx context.Context, actor entity.Actor, id string) (*dto.DocumentActionsResponse, error)
}

// exportService lo implementa *document.ExportUseCase.
type exportService interface {
	DownloadPDF(ctx context.Context, actor entity.Actor, id string) ([]byte, string, error)
	DownloadXML(ctx context.Context, actor entity.Actor, id string) ([]byte, string, error)
	ExportXLSX(ctx context.Context, actor entity.Actor, q dto.DocumentFilterQuery) ([]byte, string, error)
}

// fileService lo implementa *document.FileUseCase.
type fileService interface {
	Upload(ctx context.Context, actor entity.Actor, documentID string, in document.UploadInput) (*dto.DocumentFileResponse, error)
	List(ctx context.Context, actor entity.Actor, documentID string) ([]dto.DocumentFileResponse, error)
	Open(ctx context.Context, actor entity.Actor, documentID, fileID string) (*dto.DocumentFileResponse, io.ReadCloser, error)
	Delete(ctx context.Context, actor entity.Actor, documentID, fileID string) error
}

// DocumentHandler documentos de importación: CRUD de borradores, flujo de aprobación,
// historial, adjuntos y exportaciones.
type DocumentHandler struct {
	workflow workflowService
	export   exportService
	files    fileService
	log      *logger.Logger
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(workflow workflowService, export exportService, files fileService, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{workflow: workflow, export: export, files: files, log: log}
}

// Create godoc
// @Summary      Crear documento (queda en Draft)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDocumentRequest  true  "Datos del documento"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.workflow.Create(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar documentos visibles
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        search    query  string  false  "Número de documento o proveedor"
// @Param        status    query  string  false  "Draft | Pending | Approved | Rejected | all"
// @Param        type      query  string  false  "Tipo de documento"
// @Param        priority  query  string  false  "Low | Medium | High | Urgent"
// @Success      200  {object}  dto.DocumentListResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var q dto.DocumentFilterQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.workflow.List(c.UserContext(), ActorFrom(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.workflow.Get(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar borrador
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento"
// @Param        body  body  dto.UpdateDocumentRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDocumentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.workflow.UpdateDraft(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar borrador (Admin: cualquier estado)
// @Tags         documents
// @Security     Bearer
// @Param        id  path  string  true  "ID del documento"
// @Success      204
// @Router       /api/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if err := h.workflow.DeleteDraft(c.UserContext(), ActorFrom(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Submit godoc
// @Summary      Enviar a aprobación (Draft → Pending)
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/submit [post]
func (h *DocumentHandler) Submit(c *fiber.Ctx) error {
	out, err := h.workflow.SubmitForApproval(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar (Pending → Approved)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento"
// @Param        body  body  dto.ApproveRequest  false  "Observaciones"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/approve [post]
func (h *DocumentHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	out, err := h.workflow.Approve(c.UserContext(), ActorFrom(c), c.Params("id"), in.Remarks)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar (Pending → Rejected), motivo obligatorio
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento"
// @Param        body  body  dto.RejectRequest  true  "Motivo"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/reject [post]
func (h *DocumentHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.workflow.Reject(c.UserContext(), ActorFrom(c), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial del documento (más reciente primero)
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {array}  dto.HistoryEntryResponse
// @Router       /api/documents/{id}/history [get]
func (h *DocumentHandler) History(c *fiber.Ctx) error {
	out, err := h.workflow.History(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Actions godoc
// @Summary      Acciones disponibles para el usuario actual
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentActionsResponse
// @Router       /api/documents/{id}/actions [get]
func (h *DocumentHandler) Actions(c *fiber.Ctx) error {
	out, err := h.workflow.AllowedActions(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Ficha PDF del documento
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}  binary
// @Router       /api/documents/{id}/pdf [get]
func (h *DocumentHandler) DownloadPDF(c *fiber.Ctx) error {
	body, name, err := h.export.DownloadPDF(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, contentTypePDF, name, body)
}

// DownloadXML godoc
// @Summary      Documento en XML con digest canónico
// @Tags         documents
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}  binary
// @Router       /api/documents/{id}/xml [get]
func (h *DocumentHandler) DownloadXML(c *fiber.Ctx) error {
	body, name, err := h.export.DownloadXML(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, contentTypeXML, name, body)
}

// ExportXLSX godoc
// @Summary      Exportar la lista filtrada a Excel
// @Tags         documents
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/documents/export.xlsx [get]
func (h *DocumentHandler) ExportXLSX(c *fiber.Ctx) error {
	var q dto.DocumentFilterQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	body, name, err := h.export.ExportXLSX(c.UserContext(), ActorFrom(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, contentTypeXLSX, name, body)
}

// UploadFile godoc
// @Summary      Adjuntar archivo (multipart, campo "file")
// @Tags         files
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "ID del documento"
// @Param        file  formData  file    true  "Archivo"
// @Success      201   {object}  dto.DocumentFileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/files [post]
func (h *DocumentHandler) UploadFile(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "MISSING_FILE", "el campo 'file' es requerido")
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer f.Close()

	out, err := h.files.Upload(c.UserContext(), ActorFrom(c), c.Params("id"), document.UploadInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Content:     f,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListFiles godoc
// @Summary      Adjuntos del documento
// @Tags         files
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {array}  dto.DocumentFileResponse
// @Router       /api/documents/{id}/files [get]
func (h *DocumentHandler) ListFiles(c *fiber.Ctx) error {
	out, err := h.files.List(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// DownloadFile godoc
// @Summary      Descargar adjunto
// @Tags         files
// @Security     Bearer
// @Param        id      path  string  true  "ID del documento"
// @Param        fileId  path  string  true  "ID del adjunto"
// @Success      200  {file}  binary
// @Router       /api/documents/{id}/files/{fileId}/content [get]
func (h *DocumentHandler) DownloadFile(c *fiber.Ctx) error {
	meta, rc, err := h.files.Open(c.UserContext(), ActorFrom(c), c.Params("id"), c.Params("fileId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	contentType := meta.FileType
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+meta.FileName+`"`)
	// fasthttp cierra rc al terminar de escribir la respuesta.
	return c.SendStream(rc, int(meta.FileSize))
}

// DeleteFile godoc
// @Summary      Eliminar adjunto
// @Tags         files
// @Security     Bearer
// @Param        id      path  string  true  "ID del documento"
// @Param        fileId  path  string  true  "ID del adjunto"
// @Success      204
// @Router       /api/documents/{id}/files/{fileId} [delete]
func (h *DocumentHandler) DeleteFile(c *fiber.Ctx) error {
	if err := h.files.Delete(c.UserContext(), ActorFrom(c), c.Params("id"), c.Params("fileId")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
