// Package audit registra el historial de acciones del portal con la foto antes/después.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/repository"
)

// Event una acción a auditar. Before/After se serializan a JSON (nil = sin foto).
type Event struct {
	Entity   string
	EntityID string
	Action   string
	UserID   string
	Before   any
	After    any
}

// UseCase casos de uso de auditoría.
type UseCase struct {
	repo repository.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.AuditRepository, log zerolog.Logger) *UseCase {
	return &UseCase{repo: repo, log: log, now: time.Now}
}

// NewEntry arma la entrada con las fotos y el patch entre ellas. Es pura: permite
// guardarla con el repositorio de una transacción ajena.
func NewEntry(ev Event, at time.Time) (*entity.AuditEntry, error) {
	before, err := snapshot(ev.Before)
	if err != nil {
		return nil, fmt.Errorf("audit: foto anterior: %w", err)
	}
	after, err := snapshot(ev.After)
	if err != nil {
		return nil, fmt.Errorf("audit: foto posterior: %w", err)
	}
	return &entity.AuditEntry{
		ID:        uuid.New().String(),
		Entity:    ev.Entity,
		EntityID:  ev.EntityID,
		Action:    ev.Action,
		UserID:    ev.UserID,
		Before:    before,
		After:     after,
		Diff:      Diff(before, after),
		CreatedAt: at.UTC(),
	}, nil
}

// Record guarda la entrada. Un fallo de auditoría se registra en el log y se devuelve;
// el llamador decide si bloquea la operación.
func (uc *UseCase) Record(ctx context.Context, ev Event) (*entity.AuditEntry, error) {
	e, err := NewEntry(ev, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		uc.log.Error().Err(err).
			Str("entity", ev.Entity).Str("entity_id", ev.EntityID).Str("action", ev.Action).
			Msg("no se pudo registrar auditoría")
		return nil, err
	}
	return e, nil
}

// Timeline historial de una entidad, más reciente primero.
func (uc *UseCase) Timeline(ctx context.Context, entityName, entityID string, page dto.PageRequest) (*dto.AuditTimelineResponse, error) {
	if entityName == "" || entityID == "" {
		return nil, fmt.Errorf("%w: entidad e id son obligatorios", domain.ErrInvalidInput)
	}
	page.DefaultPage()
	list, total, err := uc.repo.ListByEntity(ctx, entityName, entityID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.AuditTimelineResponse{
		Items: make([]dto.AuditEntryResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, e := range list {
		out.Items = append(out.Items, dto.AuditEntryResponse{
			ID:        e.ID,
			Entity:    e.Entity,
			EntityID:  e.EntityID,
			Action:    e.Action,
			UserID:    e.UserID,
			Before:    e.Before,
			After:     e.After,
			Diff:      e.Diff,
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}

// Diff patch de texto (formato diff-match-patch) entre dos fotos JSON indentadas.
// Vacío si no hay cambios.
func Diff(before, after []byte) string {
	a, b := string(before), string(after)
	if a == b {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.PatchToText(dmp.PatchMake(a, diffs))
}

func snapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.([]byte); ok {
		return raw, nil
	}
	return json.MarshalIndent(v, "", "  ")
}
