package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/application/prenote"
	appvs "github.com/jhoicas/hub-portal/internal/application/viewstate"
)

// PreNoteHandler pré-notas del ERP: listados por pantalla, clasificación y revisión.
type PreNoteHandler struct {
	uc *prenote.UseCase
}

// NewPreNoteHandler construye el handler.
func NewPreNoteHandler(uc *prenote.UseCase) *PreNoteHandler {
	return &PreNoteHandler{uc: uc}
}

// List godoc
// @Summary      Listar pré-notas según el estado de tabla de la pantalla
// @Description  classificacao fija el estado Pendente y aprovacao el estado Classificada.
// @Tags         prenotes
// @Security     Bearer
// @Produce      json
// @Param        screen  query  string  false  "Pantalla"  default(prenotas)
// @Success      200  {object}  dto.PreNoteListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/prenotes [get]
func (h *PreNoteHandler) List(c *fiber.Ctx) error {
	screen := c.Query("screen", appvs.ScreenPreNotes)
	out, err := h.uc.List(c.UserContext(), GetActor(c), screen)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de una pré-nota
// @Tags         prenotes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Clave filial|documento|serie|proveedor|tienda"
// @Success      200  {object}  dto.PreNoteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/prenotes/{id} [get]
func (h *PreNoteHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Classify godoc
// @Summary      Clasificar una pré-nota
// @Tags         prenotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la pré-nota"
// @Param        body  body  dto.ClassificationDTO  true  "Clasificación fiscal/contable"
// @Success      200  {object}  dto.PreNoteResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/prenotes/{id}/classify [post]
func (h *PreNoteHandler) Classify(c *fiber.Ctx) error {
	var in dto.ClassificationDTO
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Classify(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar una pré-nota clasificada
// @Tags         prenotes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la pré-nota"
// @Success      200  {object}  dto.PreNoteResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/prenotes/{id}/approve [post]
func (h *PreNoteHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar una pré-nota clasificada
// @Tags         prenotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la pré-nota"
// @Param        body  body  dto.RejectRequest  true  "Motivo"
// @Success      200  {object}  dto.PreNoteResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/prenotes/{id}/reject [post]
func (h *PreNoteHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Reject(c.UserContext(), GetActor(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
