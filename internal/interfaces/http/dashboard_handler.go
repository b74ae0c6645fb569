package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

type dashboardService interface {
	Summary(ctx context.Context, actor entity.Actor) (*dto.DashboardSummaryDTO, error)
}

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc  dashboardService
	log *logger.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc dashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// GetSummary devuelve los indicadores del tablero.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (documentos visibles por estado y moneda, recientes,
// tiempo promedio de aprobación, inventario y bajo stock). Los documentos respetan la
// visibilidad del usuario del token.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.Summary(c.UserContext(), ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(summary)
}
