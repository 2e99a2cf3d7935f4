package http

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-portal/internal/application/draft"
	"github.com/jhoicas/hub-portal/internal/application/dto"
)

// HeaderIdempotencyKey clave con la que el cliente repite un envío ya hecho.
const HeaderIdempotencyKey = "Idempotency-Key"

// DraftHandler borradores de pré-nota del usuario (protegido).
type DraftHandler struct {
	uc *draft.UseCase
}

// NewDraftHandler construye el handler.
func NewDraftHandler(uc *draft.UseCase) *DraftHandler {
	return &DraftHandler{uc: uc}
}

func (h *DraftHandler) respond(c *fiber.Ctx, out interface{}, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func badIndex(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INDEX", Message: "índice inválido"})
}

// Create godoc
// @Summary      Crear borrador
// @Tags         drafts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDraftRequest  false  "Cabecera inicial opcional"
// @Success      201   {object}  dto.DraftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/drafts [post]
func (h *DraftHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDraftRequest
	// la cabecera se valida por sección más adelante, no al crear
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Borradores en curso del usuario
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.DraftResponse
// @Router       /api/drafts [get]
func (h *DraftHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetUserID(c))
	return h.respond(c, out, err)
}

// GetByID godoc
// @Summary      Obtener borrador
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del borrador"
// @Success      200  {object}  dto.DraftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id} [get]
func (h *DraftHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetUserID(c), c.Params("id"))
	return h.respond(c, out, err)
}

// Cancel godoc
// @Summary      Descartar borrador
// @Tags         drafts
// @Security     Bearer
// @Param        id   path  string  true  "ID del borrador"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id} [delete]
func (h *DraftHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.Cancel(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Reset godoc
// @Summary      Volver el borrador a los valores por defecto
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del borrador"
// @Success      200  {object}  dto.DraftResponse
// @Router       /api/drafts/{id}/reset [post]
func (h *DraftHandler) Reset(c *fiber.Ctx) error {
	out, err := h.uc.Reset(c.UserContext(), GetUserID(c), c.Params("id"))
	return h.respond(c, out, err)
}

// SetHeader godoc
// @Summary      Cambios parciales de cabecera
// @Tags         drafts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID del borrador"
// @Param        body  body  dto.HeaderPatch  true  "Campos a cambiar"
// @Success      200  {object}  dto.DraftResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id}/header [patch]
func (h *DraftHandler) SetHeader(c *fiber.Ctx) error {
	var in dto.HeaderPatch
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.SetHeader(c.UserContext(), GetUserID(c), c.Params("id"), in)
	return h.respond(c, out, err)
}

// ── Ítems ─────────────────────────────────────────────────────────────────────

// AddItem godoc
// @Summary      Agregar ítem
// @Tags         drafts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID del borrador"
// @Param        body  body  dto.ItemRequest  true  "Ítem"
// @Success      200  {object}  dto.DraftResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id}/items [post]
func (h *DraftHandler) AddItem(c *fiber.Ctx) error {
	var in dto.ItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddItem(c.UserContext(), GetUserID(c), c.Params("id"), in)
	return h.respond(c, out, err)
}

// UpdateItem godoc
// @Summary      Cambios parciales de un ítem
// @Tags         drafts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path  string         true  "ID del borrador"
// @Param        index  path  int            true  "Posición del ítem"
// @Param        body   body  dto.ItemPatch  true  "Campos a cambiar"
// @Success      200  {object}  dto.DraftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id}/items/{index} [patch]
func (h *DraftHandler) UpdateItem(c *fiber.Ctx) error {
	index, ok := pathIndex(c)
	if !ok {
		return badIndex(c)
	}
	var in dto.ItemPatch
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateItem(c.UserContext(), GetUserID(c), c.Params("id"), index, in)
	return h.respond(c, out, err)
}

// RemoveItem godoc
// @Summary      Quitar un ítem
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        id     path  string  true  "ID del borrador"
// @Param        index  path  int     true  "Posición del ítem"
// @Success      200  {object}  dto.DraftResponse
// @Router       /api/drafts/{id}/items/{index} [delete]
func (h *DraftHandler) RemoveItem(c *fiber.Ctx) error {
	index, ok := pathIndex(c)
	if !ok {
		return badIndex(c)
	}
	out, err := h.uc.RemoveItem(c.UserContext(), GetUserID(c), c.Params("id"), index)
	return h.respond(c, out, err)
}

// NextItemCode godoc
// @Summary      Siguiente código de ítem
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del borrador"
// @Success      200  {object}  dto.NextItemCodeResponse
// @Router       /api/drafts/{id}/next-item-code [get]
func (h *DraftHandler) NextItemCode(c *fiber.Ctx) error {
	out, err := h.uc.NextItemCode(c.UserContext(), GetUserID(c), c.Params("id"))
	return h.respond(c, out, err)
}

// ── Rateio ────────────────────────────────────────────────────────────────────

// AddInstallment godoc
// @Summary      Agregar rateio
// @Description  Un valor mayor al saldo se rechaza con 422 REMAINING_EXCEEDED y el borrador no cambia.
// @Tags         drafts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del borrador"
// @Param        body  body  dto.InstallmentRequest  true  "Rateio por valor o porcentaje"
// @Success      200  {object}  dto.DraftResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id}/installments [post]
func (h *DraftHandler) AddInstallment(c *fiber.Ctx) error {
	var in dto.InstallmentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddInstallment(c.UserContext(), GetUserID(c), c.Params("id"), in)
	return h.respond(c, out, err)
}

// UpdateInstallment godoc
// @Summary      Cambios parciales de un rateio
// @Tags         drafts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path  string                true  "ID del borrador"
// @Param        index  path  int                   true  "Posición del rateio"
// @Param        body   body  dto.InstallmentPatch  true  "Campos a cambiar"
// @Success      200  {object}  dto.DraftResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id}/installments/{index} [patch]
func (h *DraftHandler) UpdateInstallment(c *fiber.Ctx) error {
	index, ok := pathIndex(c)
	if !ok {
		return badIndex(c)
	}
	var in dto.InstallmentPatch
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateInstallment(c.UserContext(), GetUserID(c), c.Params("id"), index, in)
	return h.respond(c, out, err)
}

// RemoveInstallment godoc
// @Summary      Quitar un rateio
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        id     path  string  true  "ID del borrador"
// @Param        index  path  int     true  "Posición del rateio"
// @Success      200  {object}  dto.DraftResponse
// @Router       /api/drafts/{id}/installments/{index} [delete]
func (h *DraftHandler) RemoveInstallment(c *fiber.Ctx) error {
	index, ok := pathIndex(c)
	if !ok {
		return badIndex(c)
	}
	out, err := h.uc.RemoveInstallment(c.UserContext(), GetUserID(c), c.Params("id"), index)
	return h.respond(c, out, err)
}

// Remaining godoc
// @Summary      Saldo disponible para rateio
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del borrador"
// @Success      200  {object}  dto.RemainingResponse
// @Router       /api/drafts/{id}/remaining [get]
func (h *DraftHandler) Remaining(c *fiber.Ctx) error {
	out, err := h.uc.Remaining(c.UserContext(), GetUserID(c), c.Params("id"))
	return h.respond(c, out, err)
}

// ── Anexos ────────────────────────────────────────────────────────────────────

// AddAttachment godoc
// @Summary      Agregar anexo
// @Tags         drafts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del borrador"
// @Param        body  body  dto.AttachmentRequest  true  "Ruta y descripción"
// @Success      200  {object}  dto.DraftResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id}/attachments [post]
func (h *DraftHandler) AddAttachment(c *fiber.Ctx) error {
	var in dto.AttachmentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddAttachment(c.UserContext(), GetUserID(c), c.Params("id"), in)
	return h.respond(c, out, err)
}

// RemoveAttachment godoc
// @Summary      Quitar un anexo
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        id     path  string  true  "ID del borrador"
// @Param        index  path  int     true  "Posición del anexo"
// @Success      200  {object}  dto.DraftResponse
// @Router       /api/drafts/{id}/attachments/{index} [delete]
func (h *DraftHandler) RemoveAttachment(c *fiber.Ctx) error {
	index, ok := pathIndex(c)
	if !ok {
		return badIndex(c)
	}
	out, err := h.uc.RemoveAttachment(c.UserContext(), GetUserID(c), c.Params("id"), index)
	return h.respond(c, out, err)
}

// ── Validación y envío ────────────────────────────────────────────────────────

// Validate godoc
// @Summary      Validar todas las secciones
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del borrador"
// @Success      200  {object}  dto.ValidationResponse
// @Router       /api/drafts/{id}/validate [post]
func (h *DraftHandler) Validate(c *fiber.Ctx) error {
	out, err := h.uc.Validate(c.UserContext(), GetUserID(c), c.Params("id"))
	return h.respond(c, out, err)
}

// ValidateSection godoc
// @Summary      Validar una sección
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        id       path  string  true  "ID del borrador"
// @Param        section  path  string  true  "header | items | installments | attachments"
// @Success      200  {object}  dto.ValidationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id}/validate/{section} [post]
func (h *DraftHandler) ValidateSection(c *fiber.Ctx) error {
	out, err := h.uc.ValidateSection(c.UserContext(), GetUserID(c), c.Params("id"), c.Params("section"))
	return h.respond(c, out, err)
}

// Submit godoc
// @Summary      Enviar el borrador al ERP
// @Description  Un único intento por llamada. Con Idempotency-Key igual al token del borrador,
// @Description  un envío ya registrado devuelve el resultado original (replayed=true).
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Param        id               path    string  true   "ID del borrador"
// @Param        Idempotency-Key  header  string  false  "Token de idempotencia del borrador"
// @Success      200  {object}  dto.SubmitResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id}/submit [post]
func (h *DraftHandler) Submit(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
	out, err := h.uc.Submit(c.UserContext(), GetUserID(c), c.Params("id"), key)
	return h.respond(c, out, err)
}

// ── NF-e y PDF ────────────────────────────────────────────────────────────────

// ImportNFe godoc
// @Summary      Precargar el borrador con una NF-e
// @Description  Acepta el XML como cuerpo o como archivo multipart en el campo "file".
// @Tags         drafts
// @Security     Bearer
// @Accept       xml
// @Accept       mpfd
// @Produce      json
// @Param        id    path      string  true   "ID del borrador"
// @Param        file  formData  file    false  "XML de la NF-e"
// @Success      200  {object}  dto.DraftResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id}/import-nfe [post]
func (h *DraftHandler) ImportNFe(c *fiber.Ctx) error {
	xml, err := nfeBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	out, err := h.uc.ImportNFe(c.UserContext(), GetUserID(c), c.Params("id"), xml)
	return h.respond(c, out, err)
}

func nfeBody(c *fiber.Ctx) ([]byte, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	if len(c.Body()) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "XML vacío")
	}
	// el buffer de fasthttp se recicla al terminar la petición
	return append([]byte(nil), c.Body()...), nil
}

// PDF godoc
// @Summary      Resumen imprimible del borrador
// @Tags         drafts
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del borrador"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id}/pdf [get]
func (h *DraftHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.uc.PDF(c.UserContext(), GetUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="prenota-`+id+`.pdf"`)
	return c.Send(out)
}
