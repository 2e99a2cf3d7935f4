package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-portal/internal/application/dto"
	appvs "github.com/jhoicas/hub-portal/internal/application/viewstate"
	vs "github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

// ViewStateHandler estado de tabla por usuario y pantalla (protegido).
type ViewStateHandler struct {
	views *appvs.Controller
}

// NewViewStateHandler construye el handler.
func NewViewStateHandler(views *appvs.Controller) *ViewStateHandler {
	return &ViewStateHandler{views: views}
}

func (h *ViewStateHandler) respond(c *fiber.Ctx, st vs.State, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.views.ToResponse(c.Params("screen"), st))
}

// Get godoc
// @Summary      Estado de tabla de una pantalla
// @Tags         view-state
// @Security     Bearer
// @Produce      json
// @Param        screen  path  string  true  "Pantalla (prenotas, classificacao, aprovacao, doca)"
// @Success      200  {object}  dto.ViewStateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/view-state/{screen} [get]
func (h *ViewStateHandler) Get(c *fiber.Ctx) error {
	st, err := h.views.Get(c.UserContext(), GetUserID(c), c.Params("screen"))
	return h.respond(c, st, err)
}

// Reset godoc
// @Summary      Borrar el estado persistido (vuelve al por defecto)
// @Tags         view-state
// @Security     Bearer
// @Produce      json
// @Param        screen  path  string  true  "Pantalla"
// @Success      200  {object}  dto.ViewStateResponse
// @Router       /api/view-state/{screen} [delete]
func (h *ViewStateHandler) Reset(c *fiber.Ctx) error {
	st, err := h.views.Reset(c.UserContext(), GetUserID(c), c.Params("screen"))
	return h.respond(c, st, err)
}

// SetPageIndex godoc
// @Summary      Cambiar de página
// @Tags         view-state
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        screen  path  string                   true  "Pantalla"
// @Param        body    body  dto.SetPageIndexRequest  true  "pageIndex"
// @Success      200  {object}  dto.ViewStateResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/view-state/{screen}/page-index [put]
func (h *ViewStateHandler) SetPageIndex(c *fiber.Ctx) error {
	var in dto.SetPageIndexRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	st, err := h.views.SetPageIndex(c.UserContext(), GetUserID(c), c.Params("screen"), *in.PageIndex)
	return h.respond(c, st, err)
}

// SetPageSize godoc
// @Summary      Cambiar el tamaño de página (vuelve a la primera)
// @Tags         view-state
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        screen  path  string                  true  "Pantalla"
// @Param        body    body  dto.SetPageSizeRequest  true  "pageSize"
// @Success      200  {object}  dto.ViewStateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/view-state/{screen}/page-size [put]
func (h *ViewStateHandler) SetPageSize(c *fiber.Ctx) error {
	var in dto.SetPageSizeRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	st, err := h.views.SetPageSize(c.UserContext(), GetUserID(c), c.Params("screen"), in.PageSize)
	return h.respond(c, st, err)
}

// SetSorting godoc
// @Summary      Reemplazar el orden
// @Tags         view-state
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        screen  path  string                 true  "Pantalla"
// @Param        body    body  dto.SetSortingRequest  true  "sorting"
// @Success      200  {object}  dto.ViewStateResponse
// @Router       /api/view-state/{screen}/sorting [put]
func (h *ViewStateHandler) SetSorting(c *fiber.Ctx) error {
	var in dto.SetSortingRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	st, err := h.views.SetSorting(c.UserContext(), GetUserID(c), c.Params("screen"), in.Sorting)
	return h.respond(c, st, err)
}

// ToggleSort godoc
// @Summary      Ordenar por una columna (pasa a ser la primera)
// @Tags         view-state
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        screen  path  string                 true  "Pantalla"
// @Param        body    body  dto.ToggleSortRequest  true  "columna y sentido"
// @Success      200  {object}  dto.ViewStateResponse
// @Router       /api/view-state/{screen}/sort-toggle [post]
func (h *ViewStateHandler) ToggleSort(c *fiber.Ctx) error {
	var in dto.ToggleSortRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	st, err := h.views.ToggleSort(c.UserContext(), GetUserID(c), c.Params("screen"), in.ColumnID, in.Desc)
	return h.respond(c, st, err)
}

// SetFilters godoc
// @Summary      Reemplazar los filtros
// @Tags         view-state
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        screen  path  string                 true  "Pantalla"
// @Param        body    body  dto.SetFiltersRequest  true  "filters"
// @Success      200  {object}  dto.ViewStateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/view-state/{screen}/filters [put]
func (h *ViewStateHandler) SetFilters(c *fiber.Ctx) error {
	var in dto.SetFiltersRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	st, err := h.views.SetFilters(c.UserContext(), GetUserID(c), c.Params("screen"), in.Filters)
	return h.respond(c, st, err)
}

// SetSearch godoc
// @Summary      Cambiar el término de búsqueda
// @Tags         view-state
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        screen  path  string                true  "Pantalla"
// @Param        body    body  dto.SetSearchRequest  true  "searchTerm"
// @Success      200  {object}  dto.ViewStateResponse
// @Router       /api/view-state/{screen}/search [put]
func (h *ViewStateHandler) SetSearch(c *fiber.Ctx) error {
	var in dto.SetSearchRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	st, err := h.views.SetSearchTerm(c.UserContext(), GetUserID(c), c.Params("screen"), in.SearchTerm)
	return h.respond(c, st, err)
}

// SetBranches godoc
// @Summary      Cambiar la selección de filiales
// @Tags         view-state
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        screen  path  string                  true  "Pantalla"
// @Param        body    body  dto.SetBranchesRequest  true  "filials"
// @Success      200  {object}  dto.ViewStateResponse
// @Router       /api/view-state/{screen}/branches [put]
func (h *ViewStateHandler) SetBranches(c *fiber.Ctx) error {
	var in dto.SetBranchesRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	st, err := h.views.SetBranches(c.UserContext(), GetUserID(c), c.Params("screen"), in.Branches)
	return h.respond(c, st, err)
}

// SetPagination godoc
// @Summary      Eco de paginación del servidor
// @Description  Se descarta con 409 STALE_RESPONSE si queryVersion no es la vigente.
// @Tags         view-state
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        screen  path  string                    true  "Pantalla"
// @Param        body    body  dto.SetPaginationRequest  true  "pagination y queryVersion"
// @Success      200  {object}  dto.ViewStateResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/view-state/{screen}/pagination [put]
func (h *ViewStateHandler) SetPagination(c *fiber.Ctx) error {
	var in dto.SetPaginationRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	st, err := h.views.SetPagination(c.UserContext(), GetUserID(c), c.Params("screen"), in.Pagination, in.QueryVersion)
	return h.respond(c, st, err)
}

// ClearFilters godoc
// @Summary      Limpiar filtros, búsqueda, filiales y página
// @Tags         view-state
// @Security     Bearer
// @Produce      json
// @Param        screen  path  string  true  "Pantalla"
// @Success      200  {object}  dto.ViewStateResponse
// @Router       /api/view-state/{screen}/clear-filters [post]
func (h *ViewStateHandler) ClearFilters(c *fiber.Ctx) error {
	st, err := h.views.ClearFilters(c.UserContext(), GetUserID(c), c.Params("screen"))
	return h.respond(c, st, err)
}
