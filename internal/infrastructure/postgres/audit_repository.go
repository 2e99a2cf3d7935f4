package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo historial de auditoría sobre PostgreSQL.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create persiste una entrada; asigna ID si viene vacío.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO audit_entries (id, entity, entity_id, action, user_id, before, after, diff, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Entity, e.EntityID, e.Action, e.UserID, jsonOrNull(e.Before), jsonOrNull(e.After), e.Diff, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByEntity entradas de una entidad, más recientes primero, con el total.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityName, entityID string, limit, offset int) ([]*entity.AuditEntry, int, error) {
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_entries WHERE entity = $1 AND entity_id = $2`,
		entityName, entityID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	query := `
		SELECT id, entity, entity_id, action, user_id, before, after, diff, created_at
		FROM audit_entries
		WHERE entity = $1 AND entity_id = $2
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, entityName, entityID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.Action, &e.UserID, &e.Before, &e.After, &e.Diff, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, total, rows.Err()
}

func jsonOrNull(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
