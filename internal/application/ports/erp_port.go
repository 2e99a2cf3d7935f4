package ports

import (
	"context"

	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

// ListQuery consulta paginada al ERP derivada del estado de tabla de una pantalla.
type ListQuery struct {
	Page     int // 1-based
	PageSize int
	Sort     []viewstate.SortRule
	Filters  map[string]viewstate.FilterValue
	Search   string
	Branches []string
}

// QueryFromState traduce el estado de tabla a la consulta del ERP.
func QueryFromState(s viewstate.State) ListQuery {
	return ListQuery{
		Page:     s.PageIndex + 1,
		PageSize: s.PageSize,
		Sort:     s.Sorting,
		Filters:  s.Filters,
		Search:   s.SearchTerm,
		Branches: s.Branches,
	}
}

// Offset filas a saltar para la página pedida.
func (q ListQuery) Offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// PreNotePage página de pré-notas con el total informado por el ERP.
type PreNotePage struct {
	Items      []entity.PreNote
	TotalCount int
}

// DockPage página de movimientos de andén.
type DockPage struct {
	Items      []entity.DockMovement
	TotalCount int
}

// SubmitResult respuesta del ERP a la inclusión de una pré-nota.
type SubmitResult struct {
	PreNoteID string
	Message   string
}

// PreNoteGateway puerto de salida hacia los endpoints de pré-nota del ERP.
// Los errores de red o de negocio del ERP llegan envueltos en domain.ErrUpstream;
// las respuestas ilegibles en domain.ErrMalformedResponse.
type PreNoteGateway interface {
	ListPreNotes(ctx context.Context, q ListQuery) (*PreNotePage, error)
	// GetPreNote devuelve domain.ErrNotFound si el ERP no la encuentra.
	GetPreNote(ctx context.Context, id string) (*entity.PreNote, error)
	// SubmitPreNote un único intento; idempotencyKey viaja como cabecera Idempotency-Key.
	SubmitPreNote(ctx context.Context, d *entity.Draft, idempotencyKey string) (*SubmitResult, error)
	ClassifyPreNote(ctx context.Context, id string, c entity.PreNoteClassification, userID string) error
	ReviewPreNote(ctx context.Context, id string, approve bool, reason, userID string) error
}

// DockGateway puerto de salida hacia el control de carga de neumáticos.
type DockGateway interface {
	ListDockMovements(ctx context.Context, q ListQuery) (*DockPage, error)
	GetDockMovement(ctx context.Context, id string) (*entity.DockMovement, error)
	ConfirmDockMovement(ctx context.Context, id, userID string) error
	ReverseDockMovement(ctx context.Context, id, userID, reason string) error
}

// AuthGateway autenticación delegada al ERP.
type AuthGateway interface {
	// Authenticate devuelve domain.ErrUnauthorized si las credenciales son rechazadas.
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
}

// Actor usuario autenticado que ejecuta una acción contra el ERP.
type Actor struct {
	UserID string
	Branch string
	Role   string
}

// DefaultBranches filiales a consultar cuando el usuario no eligió ninguna: la suya,
// salvo para administradores, que ven todas.
func (a Actor) DefaultBranches(chosen []string) []string {
	if len(chosen) > 0 || a.Role == entity.RoleAdmin || a.Branch == "" {
		return chosen
	}
	return []string{a.Branch}
}
