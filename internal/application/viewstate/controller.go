// Package viewstate expone el estado de tabla de cada pantalla por usuario: la única fuente
// de verdad de qué filas quiere ver, separada del fetch que las produce.
package viewstate

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/repository"
	vs "github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

// Pantallas con tabla persistida.
const (
	ScreenPreNotes       = "prenotas"
	ScreenClassification = "classificacao"
	ScreenApproval       = "aprovacao"
	ScreenDock           = "doca"
)

var screenRe = regexp.MustCompile(`^[a-z0-9_-]{1,40}$`)

// OptionsProvider opciones de tabla de cada pantalla.
type OptionsProvider func(screen string) vs.Options

// StaticOptions mismas opciones para todas las pantallas.
func StaticOptions(o vs.Options) OptionsProvider {
	return func(string) vs.Options { return o }
}

// Controller operaciones sobre el estado de tabla de (usuario, pantalla).
type Controller struct {
	repo repository.ViewStateRepository
	opts OptionsProvider
	log  zerolog.Logger
}

// NewController construye el controlador.
func NewController(repo repository.ViewStateRepository, opts OptionsProvider, log zerolog.Logger) *Controller {
	return &Controller{repo: repo, opts: opts, log: log}
}

// Options opciones efectivas de una pantalla.
func (c *Controller) Options(screen string) vs.Options {
	return c.opts(screen)
}

func checkKey(userID, screen string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if !screenRe.MatchString(screen) {
		return fmt.Errorf("%w: pantalla %q", domain.ErrInvalidInput, screen)
	}
	return nil
}

// Get estado actual (o el por defecto).
func (c *Controller) Get(ctx context.Context, userID, screen string) (vs.State, error) {
	if err := checkKey(userID, screen); err != nil {
		return vs.State{}, err
	}
	st, _, err := c.repo.Load(ctx, userID, screen)
	return st, err
}

func (c *Controller) update(ctx context.Context, userID, screen string, fn func(*vs.State) error) (vs.State, error) {
	if err := checkKey(userID, screen); err != nil {
		return vs.State{}, err
	}
	return c.repo.Update(ctx, userID, screen, fn)
}

// SetPageIndex fija la página (sin acotar contra el total).
func (c *Controller) SetPageIndex(ctx context.Context, userID, screen string, n int) (vs.State, error) {
	return c.update(ctx, userID, screen, func(s *vs.State) error { return s.SetPageIndex(n) })
}

// SetPageSize cambia el tamaño de página y vuelve a la primera.
func (c *Controller) SetPageSize(ctx context.Context, userID, screen string, size int) (vs.State, error) {
	opts := c.opts(screen)
	return c.update(ctx, userID, screen, func(s *vs.State) error { return s.SetPageSize(size, opts) })
}

// SetSorting reemplaza la lista de orden.
func (c *Controller) SetSorting(ctx context.Context, userID, screen string, rules []vs.SortRule) (vs.State, error) {
	opts := c.opts(screen)
	return c.update(ctx, userID, screen, func(s *vs.State) error {
		s.SetSorting(rules, opts)
		return nil
	})
}

// ToggleSort antepone el orden por column quitando la entrada previa de esa columna.
func (c *Controller) ToggleSort(ctx context.Context, userID, screen, column string, desc bool) (vs.State, error) {
	opts := c.opts(screen)
	return c.update(ctx, userID, screen, func(s *vs.State) error { return s.ToggleSort(column, desc, opts) })
}

// SetFilters reemplaza el mapa de filtros completo.
func (c *Controller) SetFilters(ctx context.Context, userID, screen string, filters map[string]vs.FilterValue) (vs.State, error) {
	return c.update(ctx, userID, screen, func(s *vs.State) error { return s.SetFilters(filters) })
}

// SetSearchTerm reemplaza el término de búsqueda.
func (c *Controller) SetSearchTerm(ctx context.Context, userID, screen, term string) (vs.State, error) {
	return c.update(ctx, userID, screen, func(s *vs.State) error {
		s.SetSearchTerm(term)
		return nil
	})
}

// SetBranches reemplaza la selección de filiales.
func (c *Controller) SetBranches(ctx context.Context, userID, screen string, branches []string) (vs.State, error) {
	return c.update(ctx, userID, screen, func(s *vs.State) error {
		s.SetBranches(branches)
		return nil
	})
}

// SetPagination aplica el eco del servidor si corresponde a la versión vigente de la consulta.
// Un eco obsoleto devuelve domain.ErrStaleResponse y deja el estado intacto.
func (c *Controller) SetPagination(ctx context.Context, userID, screen string, p vs.Pagination, version uint64) (vs.State, error) {
	st, err := c.update(ctx, userID, screen, func(s *vs.State) error { return s.SetPagination(p, version) })
	if errors.Is(err, domain.ErrStaleResponse) {
		c.log.Debug().Str("user_id", userID).Str("screen", screen).Uint64("version", version).Msg("eco de paginación obsoleto descartado")
	}
	return st, err
}

// ClearFilters limpia filtros, búsqueda, filiales y página de una sola vez.
func (c *Controller) ClearFilters(ctx context.Context, userID, screen string) (vs.State, error) {
	return c.update(ctx, userID, screen, func(s *vs.State) error {
		s.ClearFilters()
		return nil
	})
}

// Reconcile vuelve a la página 0 si el total informado dejó la página actual fuera de rango.
func (c *Controller) Reconcile(ctx context.Context, userID, screen string, totalCount int) (vs.State, bool, error) {
	changed := false
	st, err := c.update(ctx, userID, screen, func(s *vs.State) error {
		changed = s.Reconcile(totalCount)
		return nil
	})
	return st, changed, err
}

// Reset borra el estado persistido y devuelve el por defecto.
func (c *Controller) Reset(ctx context.Context, userID, screen string) (vs.State, error) {
	if err := checkKey(userID, screen); err != nil {
		return vs.State{}, err
	}
	if err := c.repo.Delete(ctx, userID, screen); err != nil {
		return vs.State{}, err
	}
	return vs.New(c.opts(screen)), nil
}

// ToResponse DTO del estado con su clave de consulta.
func (c *Controller) ToResponse(screen string, s vs.State) dto.ViewStateResponse {
	return dto.ViewStateResponse{
		Screen:          screen,
		PageIndex:       s.PageIndex,
		PageSize:        s.PageSize,
		PageSizeOptions: c.opts(screen).PageSizeOptions,
		Sorting:         s.Sorting,
		Filters:         s.Filters,
		SearchTerm:      s.SearchTerm,
		Branches:        s.Branches,
		Pagination:      s.Pagination,
		QueryVersion:    s.QueryVersion,
		QueryKey:        s.QueryKey(),
	}
}
