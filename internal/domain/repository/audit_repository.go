package repository

import (
	"context"

	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

// AuditRepository historial de acciones sobre borradores, pré-notas y movimientos de andén.
type AuditRepository interface {
	Create(ctx context.Context, e *entity.AuditEntry) error
	// ListByEntity devuelve las entradas más recientes primero y el total.
	ListByEntity(ctx context.Context, entityName, entityID string, limit, offset int) ([]*entity.AuditEntry, int, error)
}
