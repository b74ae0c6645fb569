package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

type movementRecorder interface {
	Record(ctx context.Context, actor entity.Actor, in dto.RecordMovementRequest) (*dto.MovementResponse, error)
}

type inventoryQueries interface {
	ListMovements(ctx context.Context, q dto.MovementListQuery) (*dto.MovementListResponse, error)
	GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error)
	ListBalances(ctx context.Context, productID, warehouseID string) ([]dto.BalanceResponse, error)
	LowStock(ctx context.Context) ([]dto.LowStockItemDTO, error)
	ExportBalances(ctx context.Context, warehouseID string) ([]byte, string, error)
}

type reconciler interface {
	Run(ctx context.Context, repair bool) (*dto.ReconcileResponse, error)
}

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	recorder      movementRecorder
	queries       inventoryQueries
	reconcile     reconciler
	lowStockLimit int
	log           *logger.Logger
}

// NewInventoryHandler construye el handler. lowStockLimit es el tamaño por defecto de
// GET /inventory/low-stock (0 = sin límite).
func NewInventoryHandler(recorder movementRecorder, queries inventoryQueries, reconcile reconciler, lowStockLimit int, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		recorder:      recorder,
		queries:       queries,
		reconcile:     reconcile,
		lowStockLimit: lowStockLimit,
		log:           log,
	}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, warehouse_id, movement_type (IN|OUT|ADJUST), quantity, unit_cost (entradas)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.recorder.Record(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Libro de movimientos (más reciente primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id          query  string  false  "Producto"
// @Param        warehouse_id        query  string  false  "Bodega"
// @Param        source_document_id  query  string  false  "Documento origen"
// @Param        movement_type       query  string  false  "IN | OUT | ADJUST"
// @Param        from                query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to                  query  string  false  "Hasta, inclusivo (YYYY-MM-DD)"
// @Param        limit               query  int     false  "Límite"  default(50)
// @Param        offset              query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.queries.ListMovements(c.UserContext(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetMovement GET /api/inventory/movements/:id
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	out, err := h.queries.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListBalances godoc
// @Summary      Saldos por producto y bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	out, err := h.queries.ListBalances(c.UserContext(), c.Query("product_id"), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos en o bajo el punto de reorden, con sugerencia de pedido
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de filas"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.queries.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	total := len(list)
	if limit := c.QueryInt("limit", h.lowStockLimit); limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return c.JSON(fiber.Map{
		"total": total,
		"items": list,
	})
}

// ExportBalances godoc
// @Summary      Exportar saldos a Excel
// @Tags         inventory
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {file}  binary
// @Router       /api/inventory/balances/export.xlsx [get]
func (h *InventoryHandler) ExportBalances(c *fiber.Ctx) error {
	body, name, err := h.queries.ExportBalances(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, contentTypeXLSX, name, body)
}

// Reconcile godoc
// @Summary      Conciliar saldos contra el libro de movimientos
// @Description  Con repair=true reescribe los saldos descuadrados desde el libro.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconcileRequest  false  "repair"
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	out, err := h.reconcile.Run(c.UserContext(), in.Repair)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
