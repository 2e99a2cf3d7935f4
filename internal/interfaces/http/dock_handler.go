package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-portal/internal/application/dock"
	"github.com/jhoicas/hub-portal/internal/application/dto"
)

// DockHandler control de doca (conferencia y estorno).
type DockHandler struct {
	uc *dock.UseCase
}

func NewDockHandler(uc *dock.UseCase) *DockHandler {
	return &DockHandler{uc: uc}
}

// List godoc
// @Summary      Listar movimientos de doca
// @Tags         dock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DockListResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/dock [get]
func (h *DockHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de un movimiento de doca
// @Tags         dock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.DockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dock/{id} [get]
func (h *DockHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Confirm godoc
// @Summary      Conferencia de un movimiento abierto
// @Tags         dock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.DockMovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/dock/{id}/confirm [post]
func (h *DockHandler) Confirm(c *fiber.Ctx) error {
	out, err := h.uc.Confirm(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reverse godoc
// @Summary      Estorno de un movimiento conferido
// @Tags         dock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del movimiento"
// @Param        body  body  dto.ReverseRequest  true  "Motivo"
// @Success      200  {object}  dto.DockMovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/dock/{id}/reverse [post]
func (h *DockHandler) Reverse(c *fiber.Ctx) error {
	var in dto.ReverseRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Reverse(c.UserContext(), GetActor(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
