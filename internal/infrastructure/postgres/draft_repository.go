package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/repository"
)

var _ repository.DraftRepository = (*DraftRepo)(nil)

// DraftRepo borradores sobre PostgreSQL; cada sección se guarda como JSONB.
type DraftRepo struct {
	q Querier
}

// NewDraftRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDraftRepository(q Querier) *DraftRepo {
	return &DraftRepo{q: q}
}

const draftColumns = `id, user_id, header, items, installments, attachments, idempotency_token,
	status, status_reason, revision, created_at, updated_at`

type draftSections struct {
	header, items, installments, attachments []byte
}

func marshalSections(d *entity.Draft) (draftSections, error) {
	var s draftSections
	var err error
	if s.header, err = json.Marshal(d.Header); err != nil {
		return s, fmt.Errorf("serializar cabecera: %w", err)
	}
	if s.items, err = json.Marshal(nonNil(d.Items)); err != nil {
		return s, fmt.Errorf("serializar ítems: %w", err)
	}
	if s.installments, err = json.Marshal(nonNil(d.Installments)); err != nil {
		return s, fmt.Errorf("serializar rateios: %w", err)
	}
	if s.attachments, err = json.Marshal(nonNil(d.Attachments)); err != nil {
		return s, fmt.Errorf("serializar anexos: %w", err)
	}
	return s, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// Create persiste un borrador nuevo.
func (r *DraftRepo) Create(ctx context.Context, d *entity.Draft) error {
	s, err := marshalSections(d)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO drafts (` + draftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.q.Exec(ctx, query,
		d.ID, d.UserID, s.header, s.items, s.installments, s.attachments, d.IdempotencyToken,
		string(d.Status.State), nullIfEmpty(d.Status.Reason), d.Revision, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: borrador %s ya existe", domain.ErrConflict, d.ID)
		}
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *DraftRepo) GetByID(ctx context.Context, id string) (*entity.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE id = $1`
	d, err := scanDraft(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft by id: %w", err)
	}
	return d, nil
}

// ListByUser borradores del usuario, el más reciente primero.
func (r *DraftRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE user_id = $1 ORDER BY updated_at DESC`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var list []*entity.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Update escritura condicionada a la revisión leída; si otra escritura ganó devuelve ErrConflict.
func (r *DraftRepo) Update(ctx context.Context, d *entity.Draft) error {
	s, err := marshalSections(d)
	if err != nil {
		return err
	}
	query := `
		UPDATE drafts
		SET header = $1, items = $2, installments = $3, attachments = $4,
		    status = $5, status_reason = $6, revision = revision + 1, updated_at = $7
		WHERE id = $8 AND revision = $9`
	tag, err := r.q.Exec(ctx, query,
		s.header, s.items, s.installments, s.attachments,
		string(d.Status.State), nullIfEmpty(d.Status.Reason), d.UpdatedAt,
		d.ID, d.Revision,
	)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: borrador %s modificado por otra sesión (revisión %d)", domain.ErrConflict, d.ID, d.Revision)
	}
	d.Revision++
	return nil
}

// Delete elimina el borrador.
func (r *DraftRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM drafts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func scanDraft(row pgx.Row) (*entity.Draft, error) {
	var d entity.Draft
	var s draftSections
	var state string
	var reason *string
	err := row.Scan(
		&d.ID, &d.UserID, &s.header, &s.items, &s.installments, &s.attachments, &d.IdempotencyToken,
		&state, &reason, &d.Revision, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = entity.DraftStatus{State: entity.DraftState(state), Reason: derefString(reason)}
	if err := json.Unmarshal(s.header, &d.Header); err != nil {
		return nil, fmt.Errorf("cabecera de borrador %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(s.items, &d.Items); err != nil {
		return nil, fmt.Errorf("ítems de borrador %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(s.installments, &d.Installments); err != nil {
		return nil, fmt.Errorf("rateios de borrador %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(s.attachments, &d.Attachments); err != nil {
		return nil, fmt.Errorf("anexos de borrador %s: %w", d.ID, err)
	}
	return &d, nil
}
