package repository

import (
	"context"

	"github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

// ViewStateRepository persistencia del estado de tablas por (usuario, pantalla).
type ViewStateRepository interface {
	// Load devuelve el estado guardado o el estado por defecto si no existe (found=false).
	Load(ctx context.Context, userID, screen string) (state viewstate.State, found bool, err error)
	// Update aplica fn sobre el estado actual y lo guarda de forma atómica (lectura-modificación-escritura).
	// Si fn devuelve error no se guarda nada.
	Update(ctx context.Context, userID, screen string, fn func(*viewstate.State) error) (viewstate.State, error)
	// Delete elimina el estado guardado; no es error si no existía.
	Delete(ctx context.Context, userID, screen string) error
}
