package repository

import (
	"context"

	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

// SubmissionRepository libro de envíos al ERP, uno por clave de idempotencia.
type SubmissionRepository interface {
	// Create devuelve domain.ErrConflict si la clave ya fue registrada.
	Create(ctx context.Context, s *entity.Submission) error
	GetByKey(ctx context.Context, key string) (*entity.Submission, error)
}
