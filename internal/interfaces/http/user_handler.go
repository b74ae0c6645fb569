package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Importaciones-api/internal/application/dto"
	"github.com/jhoicas/Importaciones-api/internal/domain/entity"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

type userService interface {
	GetProfile(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor entity.Actor, in dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ListApprovers(ctx context.Context) ([]dto.ApproverResponse, error)
}

// UserHandler perfil propio y lista de aprobadores.
type UserHandler struct {
	uc  userService
	log *logger.Logger
}

// NewUserHandler construye el handler.
func NewUserHandler(uc userService, log *logger.Logger) *UserHandler {
	return &UserHandler{uc: uc, log: log}
}

// GetProfile godoc
// @Summary      Perfil del usuario actual
// @Tags         profile
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Router       /api/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	out, err := h.uc.GetProfile(c.UserContext(), ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateProfile godoc
// @Summary      Actualizar nombre o departamento
// @Tags         profile
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateProfileRequest  true  "full_name, department"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var in dto.UpdateProfileRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateProfile(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListApprovers godoc
// @Summary      Usuarios que pueden ser asignados como aprobadores
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ApproverResponse
// @Router       /api/users/approvers [get]
func (h *UserHandler) ListApprovers(c *fiber.Ctx) error {
	out, err := h.uc.ListApprovers(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
