package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Importaciones-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Stubs de los casos de uso
// ──────────────────────────────────────────────────────────────────────────────

type stubWorkflow struct {
	lastActor  entity.Actor
	lastCreate dto.CreateDocumentRequest
	lastReason string
	err        error
}

func (s *stubWorkflow) doc(id, status string) *dto.DocumentResponse {
	return &dto.DocumentResponse{ID: id, Status: status, DocumentNumber: "PO-2024-001"}
}

func (s *stubWorkflow) Create(_ context.Context, a entity.Actor, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	s.lastActor, s.lastCreate = a, in
	if s.err != nil {
		return nil, s.err
	}
	return s.doc("d1", entity.DocumentStatusDraft), nil
}

func (s *stubWorkflow) Get(_ context.Context, a entity.Actor, id string) (*dto.DocumentResponse, error) {
	s.lastActor = a
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(id, entity.DocumentStatusDraft), nil
}

func (s *stubWorkflow) List(context.Context, entity.Actor, dto.DocumentFilterQuery) (*dto.DocumentListResponse, error) {
	return &dto.DocumentListResponse{}, s.err
}

func (s *stubWorkflow) UpdateDraft(_ context.Context, _ entity.Actor, id string, _ dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	return s.doc(id, entity.DocumentStatusDraft), s.err
}

func (s *stubWorkflow) DeleteDraft(context.Context, entity.Actor, string) error { return s.err }

func (s *stubWorkflow) SubmitForApproval(_ context.Context, _ entity.Actor, id string) (*dto.DocumentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(id, entity.DocumentStatusPending), nil
}

func (s *stubWorkflow) Approve(_ context.Context, _ entity.Actor, id, _ string) (*dto.DocumentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(id, entity.DocumentStatusApproved), nil
}

func (s *stubWorkflow) Reject(_ context.Context, _ entity.Actor, id, reason string) (*dto.DocumentResponse, error) {
	s.lastReason = reason
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(id, entity.DocumentStatusRejected), nil
}

func (s *stubWorkflow) History(context.Context, entity.Actor, string) ([]dto.HistoryEntryResponse, error) {
	return nil, s.err
}

func (s *stubWorkflow) AllowedActions(_ context.Context, _ entity.Actor, id string) (*dto.DocumentActionsResponse, error) {
	return &dto.DocumentActionsResponse{DocumentID: id, Actions: []string{"submit"}}, s.err
}

type stubExport struct{}

func (stubExport) DownloadPDF(_ context.Context, _ entity.Actor, id string) ([]byte, string, error) {
	if id == "missing" {
		return nil, "", domain.ErrNotFound
	}
	return []byte("%PDF-1.4"), "documento_PO-1.pdf", nil
}

func (stubExport) DownloadXML(context.Context, entity.Actor, string) ([]byte, string, error) {
	return []byte("<ImportDocument/>"), "documento_PO-1.xml", nil
}

func (stubExport) ExportXLSX(context.Context, entity.Actor, dto.DocumentFilterQuery) ([]byte, string, error) {
	return []byte("PK"), "documentos.xlsx", nil
}

type stubFiles struct {
	uploaded document.UploadInput
	content  string
}

func (s *stubFiles) Upload(_ context.Context, a entity.Actor, docID string, in document.UploadInput) (*dto.DocumentFileResponse, error) {
	raw, _ := io.ReadAll(in.Content)
	s.uploaded, s.content = in, string(raw)
	return &dto.DocumentFileResponse{ID: "f1", DocumentID: docID, FileName: in.FileName, FileSize: in.Size, UploadedBy: a.UserID}, nil
}

func (s *stubFiles) List(context.Context, entity.Actor, string) ([]dto.DocumentFileResponse, error) {
	return nil, nil
}

func (s *stubFiles) Open(_ context.Context, _ entity.Actor, docID, fileID string) (*dto.DocumentFileResponse, io.ReadCloser, error) {
	meta := &dto.DocumentFileResponse{ID: fileID, DocumentID: docID, FileName: "factura.pdf", FileType: "application/pdf", FileSize: 4}
	return meta, io.NopCloser(strings.NewReader("%PDF")), nil
}

func (s *stubFiles) Delete(context.Context, entity.Actor, string, string) error { return nil }

func newDocumentApp(wf *stubWorkflow, files *stubFiles) *fiber.App {
	h := apphttp.NewDocumentHandler(wf, stubExport{}, files, nil)
	app := fiber.New()
	docs := app.Group("/api/documents", apphttp.AuthMiddleware(testJWTSecret, nil))
	docs.Post("/", h.Create)
	docs.Get("/:id", h.GetByID)
	docs.Post("/:id/submit", h.Submit)
	docs.Post("/:id/approve", h.Approve)
	docs.Post("/:id/reject", h.Reject)
	docs.Get("/:id/pdf", h.DownloadPDF)
	docs.Post("/:id/files", h.UploadFile)
	docs.Get("/:id/files/:fileId/content", h.DownloadFile)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, role string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func sendJSON(t *testing.T, app *fiber.App, method, path, role string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return send(t, app, method, path, role, body, fiber.MIMEApplicationJSON)
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Documentos
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateDocument_PasaActorDelToken(t *testing.T) {
	wf := &stubWorkflow{}
	app := newDocumentApp(wf, &stubFiles{})

	resp := sendJSON(t, app, http.MethodPost, "/api/documents", entity.RoleRequester, map[string]interface{}{
		"document_type":   "Purchase Order",
		"document_number": "PO-2024-001",
		"supplier_name":   "ACME",
		"document_date":   "2024-03-01",
		"document_value":  "1000",
		"currency":        "USD",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.Actor{UserID: testUserID, Role: entity.RoleRequester}, wf.lastActor)
	assert.Equal(t, "PO-2024-001", wf.lastCreate.DocumentNumber)
	assert.True(t, decimal.NewFromInt(1000).Equal(wf.lastCreate.DocumentValue))
}

func TestCreateDocument_Validacion(t *testing.T) {
	app := newDocumentApp(&stubWorkflow{}, &stubFiles{})

	resp := send(t, app, http.MethodPost, "/api/documents", entity.RoleRequester, strings.NewReader("{no es json"), fiber.MIMEApplicationJSON)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Code)

	resp = sendJSON(t, app, http.MethodPost, "/api/documents", entity.RoleRequester, map[string]string{
		"document_type": "Invoice",
		"supplier_name": "ACME",
		"document_date": "2024-03-01",
		"currency":      "USD",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decodeError(t, resp)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "document_number")
}

func TestWorkflow_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"transición inválida", domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{"sin permiso", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"no visible", fmt.Errorf("obtener documento: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"entrada inválida", domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION"},
		{"fallo interno", errors.New("pq: connection reset"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newDocumentApp(&stubWorkflow{err: tc.err}, &stubFiles{})
			resp := sendJSON(t, app, http.MethodPost, "/api/documents/d1/submit", entity.RoleRequester, nil)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
			e := decodeError(t, resp)
			assert.Equal(t, tc.code, e.Code)
			assert.NotContains(t, e.Message, "pq:", "el detalle interno no se expone")
		})
	}
}

func TestApprove_CuerpoOpcional(t *testing.T) {
	app := newDocumentApp(&stubWorkflow{}, &stubFiles{})
	resp := send(t, app, http.MethodPost, "/api/documents/d1/approve", entity.RoleApprover, nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.DocumentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, entity.DocumentStatusApproved, out.Status)
}

func TestReject_PasaMotivo(t *testing.T) {
	wf := &stubWorkflow{}
	app := newDocumentApp(wf, &stubFiles{})
	resp := sendJSON(t, app, http.MethodPost, "/api/documents/d1/reject", entity.RoleApprover, dto.RejectRequest{Reason: "Missing invoice"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Missing invoice", wf.lastReason)
}

func TestDownloadPDF_Cabeceras(t *testing.T) {
	app := newDocumentApp(&stubWorkflow{}, &stubFiles{})

	resp := send(t, app, http.MethodGet, "/api/documents/d1/pdf", entity.RoleRequester, nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "documento_PO-1.pdf")

	resp = send(t, app, http.MethodGet, "/api/documents/missing/pdf", entity.RoleRequester, nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjuntos
// ──────────────────────────────────────────────────────────────────────────────

func TestUploadFile_Multipart(t *testing.T) {
	files := &stubFiles{}
	app := newDocumentApp(&stubWorkflow{}, files)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "factura.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4 contenido"))
	require.NoError(t, mw.Close())

	resp := send(t, app, http.MethodPost, "/api/documents/d1/files", entity.RoleRequester, &buf, mw.FormDataContentType())
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "factura.pdf", files.uploaded.FileName)
	assert.Equal(t, int64(len("%PDF-1.4 contenido")), files.uploaded.Size)
	assert.Equal(t, "%PDF-1.4 contenido", files.content)
}

func TestUploadFile_SinCampoFile(t *testing.T) {
	app := newDocumentApp(&stubWorkflow{}, &stubFiles{})
	resp := sendJSON(t, app, http.MethodPost, "/api/documents/d1/files", entity.RoleRequester, map[string]string{})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_FILE", decodeError(t, resp).Code)
}

func TestDownloadFile_Stream(t *testing.T) {
	app := newDocumentApp(&stubWorkflow{}, &stubFiles{})
	resp := send(t, app, http.MethodGet, "/api/documents/d1/files/f1/content", entity.RoleFinance, nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF", string(body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

type stubInventory struct {
	lowStock []dto.LowStockItemDTO
	repair   bool
}

func (s *stubInventory) Record(_ context.Context, _ entity.Actor, in dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	if in.MovementType == entity.MovementTypeOUT && in.Quantity.GreaterThan(decimal.NewFromInt(10)) {
		return nil, domain.ErrInsufficientStock
	}
	return &dto.MovementResponse{ID: "m1", MovementType: in.MovementType, Quantity: in.Quantity}, nil
}

func (s *stubInventory) ListMovements(context.Context, dto.MovementListQuery) (*dto.MovementListResponse, error) {
	return &dto.MovementListResponse{}, nil
}

func (s *stubInventory) GetMovement(context.Context, string) (*dto.MovementResponse, error) {
	return nil, domain.ErrNotFound
}

func (s *stubInventory) ListBalances(context.Context, string, string) ([]dto.BalanceResponse, error) {
	return nil, nil
}

func (s *stubInventory) LowStock(context.Context) ([]dto.LowStockItemDTO, error) {
	return s.lowStock, nil
}

func (s *stubInventory) ExportBalances(context.Context, string) ([]byte, string, error) {
	return []byte("PK"), "saldos.xlsx", nil
}

func (s *stubInventory) Run(_ context.Context, repair bool) (*dto.ReconcileResponse, error) {
	s.repair = repair
	return &dto.ReconcileResponse{Checked: 3, Repaired: repair}, nil
}

func newInventoryApp(inv *stubInventory, lowStockLimit int) *fiber.App {
	h := apphttp.NewInventoryHandler(inv, inv, inv, lowStockLimit, nil)
	app := fiber.New()
	g := app.Group("/api/inventory", apphttp.AuthMiddleware(testJWTSecret, nil))
	g.Post("/movements", h.RecordMovement)
	g.Get("/movements/:id", h.GetMovement)
	g.Get("/low-stock", h.LowStock)
	g.Post("/reconcile", h.Reconcile)
	return app
}

func TestRecordMovement_ValidacionYStockInsuficiente(t *testing.T) {
	app := newInventoryApp(&stubInventory{}, 0)
	base := map[string]interface{}{
		"product_id":    "3f1c2a8e-6a3b-4b8a-9e0a-0c1d2e3f4a5b",
		"warehouse_id":  "7a1c2a8e-6a3b-4b8a-9e0a-0c1d2e3f4a5b",
		"movement_type": "OUT",
		"quantity":      "50",
	}

	resp := sendJSON(t, app, http.MethodPost, "/api/inventory/movements", entity.RoleFinance, base)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, resp).Code)

	base["movement_type"] = "TRANSFER"
	resp = sendJSON(t, app, http.MethodPost, "/api/inventory/movements", entity.RoleFinance, base)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Message, "movement_type")

	base["movement_type"] = "IN"
	resp = sendJSON(t, app, http.MethodPost, "/api/inventory/movements", entity.RoleFinance, base)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestLowStock_LimitePorDefecto(t *testing.T) {
	inv := &stubInventory{lowStock: make([]dto.LowStockItemDTO, 5)}
	app := newInventoryApp(inv, 2)

	resp := send(t, app, http.MethodGet, "/api/inventory/low-stock", entity.RoleRequester, nil, "")
	defer resp.Body.Close()
	var out struct {
		Total int                   `json:"total"`
		Items []dto.LowStockItemDTO `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 5, out.Total)
	assert.Len(t, out.Items, 2)

	resp = send(t, app, http.MethodGet, "/api/inventory/low-stock?limit=4", entity.RoleRequester, nil, "")
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Items, 4)
}

func TestReconcile_Repair(t *testing.T) {
	inv := &stubInventory{}
	app := newInventoryApp(inv, 0)

	resp := send(t, app, http.MethodPost, "/api/inventory/reconcile", entity.RoleAdmin, nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, inv.repair)

	resp = sendJSON(t, app, http.MethodPost, "/api/inventory/reconcile", entity.RoleAdmin, dto.ReconcileRequest{Repair: true})
	defer resp.Body.Close()
	assert.True(t, inv.repair)
}

func TestGetMovement_NoExiste(t *testing.T) {
	app := newInventoryApp(&stubInventory{}, 0)
	resp := send(t, app, http.MethodGet, "/api/inventory/movements/x", entity.RoleRequester, nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Límite de intentos de inicio de sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestRateLimitByIP(t *testing.T) {
	app := fiber.New()
	app.Post("/sign-in", apphttp.RateLimitByIP(1, 2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/sign-in", nil), -1)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
		resp.Body.Close()
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitByIP_Desactivado(t *testing.T) {
	app := fiber.New()
	app.Post("/sign-in", apphttp.RateLimitByIP(0, 0), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/sign-in", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
}
