package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-portal/internal/application/audit"
	"github.com/jhoicas/hub-portal/internal/application/dto"
)

// AuditHandler historial de acciones.
type AuditHandler struct {
	uc *audit.UseCase
}

func NewAuditHandler(uc *audit.UseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// Timeline godoc
// @Summary      Historial de una entidad, más reciente primero
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entity  path   string  true   "draft | prenote | dock"
// @Param        id      path   string  true   "ID de la entidad"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AuditTimelineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit/{entity}/{id} [get]
func (h *AuditHandler) Timeline(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de página inválidos"})
	}
	if err := validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "limit debe estar entre 0 y 100 y offset no puede ser negativo"})
	}
	out, err := h.uc.Timeline(c.UserContext(), c.Params("entity"), c.Params("id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
