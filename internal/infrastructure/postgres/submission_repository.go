package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/repository"
)

var _ repository.SubmissionRepository = (*SubmissionRepo)(nil)

// SubmissionRepo libro de envíos (idempotency_key es PRIMARY KEY).
type SubmissionRepo struct {
	q Querier
}

// NewSubmissionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubmissionRepository(q Querier) *SubmissionRepo {
	return &SubmissionRepo{q: q}
}

// Create registra el envío; una clave repetida es ErrConflict.
func (r *SubmissionRepo) Create(ctx context.Context, s *entity.Submission) error {
	query := `
		INSERT INTO draft_submissions (idempotency_key, draft_id, user_id, prenote_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, s.IdempotencyKey, s.DraftID, s.UserID, nullIfEmpty(s.PreNoteID), s.Payload, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: envío %s ya registrado", domain.ErrConflict, s.IdempotencyKey)
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetByKey devuelve nil, nil si no existe.
func (r *SubmissionRepo) GetByKey(ctx context.Context, key string) (*entity.Submission, error) {
	query := `
		SELECT idempotency_key, draft_id, user_id, prenote_id, payload, created_at
		FROM draft_submissions WHERE idempotency_key = $1`
	var s entity.Submission
	var prenoteID *string
	err := r.q.QueryRow(ctx, query, key).Scan(&s.IdempotencyKey, &s.DraftID, &s.UserID, &prenoteID, &s.Payload, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	s.PreNoteID = derefString(prenoteID)
	return &s, nil
}
