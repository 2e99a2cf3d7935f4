// Package dock control de carga de neumáticos en el andén: listado, conferencia y estorno.
package dock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/hub-portal/internal/application/audit"
	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/application/fetch"
	"github.com/jhoicas/hub-portal/internal/application/ports"
	appvs "github.com/jhoicas/hub-portal/internal/application/viewstate"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	vs "github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

// AuditRecorder registra acciones en el historial.
type AuditRecorder interface {
	Record(ctx context.Context, ev audit.Event) (*entity.AuditEntry, error)
}

// UseCase movimientos del andén.
type UseCase struct {
	gateway ports.DockGateway
	views   *appvs.Controller
	audit   AuditRecorder
	fetches fetch.Deduper
	log     zerolog.Logger
}

func NewUseCase(gateway ports.DockGateway, views *appvs.Controller, recorder AuditRecorder, log zerolog.Logger) *UseCase {
	return &UseCase{gateway: gateway, views: views, audit: recorder, log: log}
}

// List página actual de la pantalla doca. Misma política que las pré-notas: eco versionado
// y, si la página quedó fuera de rango, una única consulta extra desde la página 0.
func (uc *UseCase) List(ctx context.Context, actor ports.Actor) (*dto.DockListResponse, error) {
	st, err := uc.views.Get(ctx, actor.UserID, appvs.ScreenDock)
	if err != nil {
		return nil, err
	}
	page, st, applied, err := uc.fetchAndEcho(ctx, actor, st)
	if err != nil {
		return nil, err
	}
	if applied && st.OutOfRange(page.TotalCount) {
		reconciled, changed, err := uc.views.Reconcile(ctx, actor.UserID, appvs.ScreenDock, page.TotalCount)
		if err != nil {
			return nil, err
		}
		if changed {
			if page, st, _, err = uc.fetchAndEcho(ctx, actor, reconciled); err != nil {
				return nil, err
			}
		}
	}

	out := &dto.DockListResponse{
		Items:      make([]dto.DockMovementResponse, 0, len(page.Items)),
		Pagination: st.Pagination,
		ViewState:  uc.views.ToResponse(appvs.ScreenDock, st),
	}
	for i := range page.Items {
		out.Items = append(out.Items, ToResponse(&page.Items[i]))
	}
	return out, nil
}

func (uc *UseCase) fetchAndEcho(ctx context.Context, actor ports.Actor, st vs.State) (*ports.DockPage, vs.State, bool, error) {
	q := ports.QueryFromState(st)
	q.Branches = actor.DefaultBranches(q.Branches)

	key := strconv.Quote(actor.UserID) + "|" + appvs.ScreenDock + "|" + st.QueryKey()
	v, _, err := uc.fetches.Do(ctx, key, func(ctx context.Context) (any, error) {
		return uc.gateway.ListDockMovements(ctx, q)
	})
	if err != nil {
		return nil, st, false, err
	}
	page := v.(*ports.DockPage)

	echo := vs.Pagination{Page: q.Page, PageSize: q.PageSize, TotalCount: page.TotalCount}
	updated, err := uc.views.SetPagination(ctx, actor.UserID, appvs.ScreenDock, echo, st.QueryVersion)
	switch {
	case errors.Is(err, domain.ErrStaleResponse):
		cur, gerr := uc.views.Get(ctx, actor.UserID, appvs.ScreenDock)
		if gerr != nil {
			return nil, st, false, gerr
		}
		return page, cur, false, nil
	case err != nil:
		return nil, st, false, err
	}
	return page, updated, true, nil
}

// Get detalle de un movimiento.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.DockMovementResponse, error) {
	m, err := uc.gateway.GetDockMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(m)
	return &resp, nil
}

// Confirm conferencia de un movimiento abierto.
func (uc *UseCase) Confirm(ctx context.Context, actor ports.Actor, id string) (*dto.DockMovementResponse, error) {
	m, err := uc.gateway.GetDockMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.CanConfirm() {
		return nil, fmt.Errorf("%w: movimiento %s está %s", domain.ErrInvalidTransition, id, m.Status)
	}
	if err := uc.gateway.ConfirmDockMovement(ctx, id, actor.UserID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	after := *m
	after.Status = entity.DockStatusConfirmed
	after.ConfirmedBy = actor.UserID
	after.ConfirmedAt = &now
	uc.record(ctx, actor, entity.AuditActionConfirm, m, &after)
	resp := ToResponse(&after)
	return &resp, nil
}

// Reverse estorno de un movimiento conferido; el motivo es obligatorio.
func (uc *UseCase) Reverse(ctx context.Context, actor ports.Actor, id, reason string) (*dto.DockMovementResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"reason": "obligatorio"}}
	}
	m, err := uc.gateway.GetDockMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.CanReverse() {
		return nil, fmt.Errorf("%w: movimiento %s está %s", domain.ErrInvalidTransition, id, m.Status)
	}
	if err := uc.gateway.ReverseDockMovement(ctx, id, actor.UserID, reason); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	after := *m
	after.Status = entity.DockStatusReversed
	after.ReversedBy = actor.UserID
	after.ReversedAt = &now
	after.ReverseNotes = reason
	uc.record(ctx, actor, entity.AuditActionReverse, m, &after)
	resp := ToResponse(&after)
	return &resp, nil
}

func (uc *UseCase) record(ctx context.Context, actor ports.Actor, action string, before, after *entity.DockMovement) {
	if uc.audit == nil {
		return
	}
	if _, err := uc.audit.Record(ctx, audit.Event{
		Entity:   entity.AuditEntityDock,
		EntityID: before.ID,
		Action:   action,
		UserID:   actor.UserID,
		Before:   ToResponse(before),
		After:    ToResponse(after),
	}); err != nil {
		uc.log.Warn().Err(err).Str("movement_id", before.ID).Str("action", action).Msg("auditoría pendiente")
	}
}

func ToResponse(m *entity.DockMovement) dto.DockMovementResponse {
	r := dto.DockMovementResponse{
		ID:           m.ID,
		Branch:       m.Branch,
		Plate:        m.Plate,
		Driver:       m.Driver,
		Carrier:      m.Carrier,
		Document:     m.Document,
		TireCount:    m.TireCount,
		Status:       m.Status,
		ConfirmedBy:  m.ConfirmedBy,
		ConfirmedAt:  m.ConfirmedAt,
		ReversedBy:   m.ReversedBy,
		ReversedAt:   m.ReversedAt,
		ReverseNotes: m.ReverseNotes,
	}
	if !m.OpenedAt.IsZero() {
		opened := m.OpenedAt
		r.OpenedAt = &opened
	}
	return r
}
