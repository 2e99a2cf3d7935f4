package repository

import (
	"context"

	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

// DraftRepository define el puerto de persistencia para borradores de pré-nota.
type DraftRepository interface {
	Create(ctx context.Context, d *entity.Draft) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Draft, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Draft, error)
	// Update guarda si la revisión persistida coincide con d.Revision e incrementa d.Revision.
	// Si otra escritura ganó devuelve domain.ErrConflict.
	Update(ctx context.Context, d *entity.Draft) error
	Delete(ctx context.Context, id string) error
}
