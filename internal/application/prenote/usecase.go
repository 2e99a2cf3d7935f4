// Package prenote casos de uso de listado, clasificación y revisión de pré-notas del ERP.
package prenote

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

// screenStatus filtro de estado fijo de las pantallas de trabajo (no se guarda en el estado de tabla).
var screenStatus = map[string]string{
	appvs.ScreenClassification: entity.PreNoteStatusPending,
	appvs.ScreenApproval:       entity.PreNoteStatusClassified,
}

// UseCase pré-notas del ERP.
type UseCase struct {
	gateway ports.PreNoteGateway
	views   *appvs.Controller
	audit   AuditRecorder
	fetches fetch.Deduper
	log     zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(gateway ports.PreNoteGateway, views *appvs.Controller, recorder AuditRecorder, log zerolog.Logger) *UseCase {
	return &UseCase{gateway: gateway, views: views, audit: recorder, log: log}
}

// List consulta la página actual según el estado de tabla de la pantalla. Si el total dejó la
// página fuera de rango vuelve a la página 0 y consulta una sola vez más.
func (uc *UseCase) List(ctx context.Context, actor ports.Actor, screen string) (*dto.PreNoteListResponse, error) {
	st, err := uc.views.Get(ctx, actor.UserID, screen)
	if err != nil {
		return nil, err
	}
	page, st, applied, err := uc.fetchAndEcho(ctx, actor, screen, st)
	if err != nil {
		return nil, err
	}
	if applied && st.OutOfRange(page.TotalCount) {
		reconciled, changed, err := uc.views.Reconcile(ctx, actor.UserID, screen, page.TotalCount)
		if err != nil {
			return nil, err
		}
		if changed {
			if page, st, _, err = uc.fetchAndEcho(ctx, actor, screen, reconciled); err != nil {
				return nil, err
			}
		}
	}

	out := &dto.PreNoteListResponse{
		Items:      make([]dto.PreNoteResponse, 0, len(page.Items)),
		Pagination: st.Pagination,
		ViewState:  uc.views.ToResponse(screen, st),
	}
	for i := range page.Items {
		out.Items = append(out.Items, ToResponse(&page.Items[i]))
	}
	return out, nil
}

// fetchAndEcho consulta con la versión vigente y aplica el eco de paginación. Si el estado cambió
// mientras tanto se devuelven las filas con el estado más nuevo sin tocar su paginación (applied=false).
func (uc *UseCase) fetchAndEcho(ctx context.Context, actor ports.Actor, screen string, st vs.State) (*ports.PreNotePage, vs.State, bool, error) {
	q := ports.QueryFromState(st)
	if status, ok := screenStatus[screen]; ok {
		q.Filters = withFilter(q.Filters, "status", vs.Single(status))
	}
	q.Branches = actor.DefaultBranches(q.Branches)

	key := strconv.Quote(actor.UserID) + "|" + strconv.Quote(screen) + "|" + st.QueryKey()
	v, shared, err := uc.fetches.Do(ctx, key, func(ctx context.Context) (any, error) {
		return uc.gateway.ListPreNotes(ctx, q)
	})
	if err != nil {
		return nil, st, false, err
	}
	if shared {
		uc.log.Debug().Str("key", key).Msg("consulta de pré-notas compartida")
	}
	page := v.(*ports.PreNotePage)

	echo := vs.Pagination{Page: q.Page, PageSize: q.PageSize, TotalCount: page.TotalCount}
	updated, err := uc.views.SetPagination(ctx, actor.UserID, screen, echo, st.QueryVersion)
	if errors.Is(err, domain.ErrStaleResponse) {
		cur, gerr := uc.views.Get(ctx, actor.UserID, screen)
		if gerr != nil {
			return nil, st, false, gerr
		}
		return page, cur, false, nil
	}
	if err != nil {
		return nil, st, false, err
	}
	return page, updated, true, nil
}

func withFilter(in map[string]vs.FilterValue, key string, f vs.FilterValue) map[string]vs.FilterValue {
	out := make(map[string]vs.FilterValue, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	out[key] = f
	return out
}

// Get detalle de una pré-nota.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.PreNoteResponse, error) {
	p, err := uc.gateway.GetPreNote(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(p)
	return &resp, nil
}

// Classify asigna la clasificación fiscal/contable. Solo pré-notas Pendente o Classificada.
func (uc *UseCase) Classify(ctx context.Context, actor ports.Actor, id string, in dto.ClassificationDTO) (*dto.PreNoteResponse, error) {
	p, err := uc.gateway.GetPreNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanClassify() {
		return nil, fmt.Errorf("%w: pré-nota %s está %s", domain.ErrInvalidTransition, id, p.Status)
	}
	c := entity.PreNoteClassification{
		OperationType: strings.TrimSpace(in.OperationType),
		CostCenter:    strings.TrimSpace(in.CostCenter),
		AccountCode:   strings.TrimSpace(in.AccountCode),
		Category:      strings.TrimSpace(in.Category),
		Notes:         strings.TrimSpace(in.Notes),
	}
	if err := uc.gateway.ClassifyPreNote(ctx, id, c, actor.UserID); err != nil {
		return nil, err
	}

	after := *p
	after.Classification = &c
	after.Status = entity.PreNoteStatusClassified
	uc.record(ctx, actor, entity.AuditActionClassify, p, &after)
	resp := ToResponse(&after)
	return &resp, nil
}

// Approve aprueba una pré-nota clasificada.
func (uc *UseCase) Approve(ctx context.Context, actor ports.Actor, id string) (*dto.PreNoteResponse, error) {
	return uc.review(ctx, actor, id, true, "")
}

// Reject rechaza una pré-nota clasificada con motivo.
func (uc *UseCase) Reject(ctx context.Context, actor ports.Actor, id, reason string) (*dto.PreNoteResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"reason": "obligatorio"}}
	}
	return uc.review(ctx, actor, id, false, reason)
}

func (uc *UseCase) review(ctx context.Context, actor ports.Actor, id string, approve bool, reason string) (*dto.PreNoteResponse, error) {
	p, err := uc.gateway.GetPreNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanReview() {
		return nil, fmt.Errorf("%w: pré-nota %s está %s", domain.ErrInvalidTransition, id, p.Status)
	}
	if err := uc.gateway.ReviewPreNote(ctx, id, approve, reason, actor.UserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	after := *p
	after.ReviewedBy = actor.UserID
	after.ReviewedAt = &now
	action := entity.AuditActionApprove
	after.Status = entity.PreNoteStatusApproved
	if !approve {
		action = entity.AuditActionReject
		after.Status = entity.PreNoteStatusRejected
		after.RejectReason = reason
	}
	uc.record(ctx, actor, action, p, &after)
	resp := ToResponse(&after)
	return &resp, nil
}

// record la acción ya se aplicó en el ERP: un fallo de auditoría solo se registra en el log.
func (uc *UseCase) record(ctx context.Context, actor ports.Actor, action string, before, after *entity.PreNote) {
	if uc.audit == nil {
		return
	}
	_, err := uc.audit.Record(ctx, audit.Event{
		Entity:   entity.AuditEntityPreNote,
		EntityID: before.ID,
		Action:   action,
		UserID:   actor.UserID,
		Before:   ToResponse(before),
		After:    ToResponse(after),
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("prenote_id", before.ID).Str("action", action).Msg("auditoría pendiente")
	}
}

// ToResponse DTO de una pré-nota.
func ToResponse(p *entity.PreNote) dto.PreNoteResponse {
	r := dto.PreNoteResponse{
		ID:             p.ID,
		Branch:         p.Branch,
		DocumentNumber: p.DocumentNumber,
		Series:         p.Series,
		Supplier:       p.Supplier,
		SupplierStore:  p.SupplierStore,
		SupplierName:   p.SupplierName,
		Status:         p.Status,
		Total:          p.Total,
		InclusionDate:  timePtr(p.InclusionDate),
		IssueDate:      timePtr(p.IssueDate),
		ReviewedBy:     p.ReviewedBy,
		ReviewedAt:     p.ReviewedAt,
		RejectReason:   p.RejectReason,
	}
	if c := p.Classification; c != nil {
		r.Classification = &dto.ClassificationDTO{
			OperationType: c.OperationType,
			CostCenter:    c.CostCenter,
			AccountCode:   c.AccountCode,
			Category:      c.Category,
			Notes:         c.Notes,
		}
	}
	for _, it := range p.Items {
		r.Items = append(r.Items, dto.PreNoteItemResponse{
			ItemCode:      it.ItemCode,
			ProductCode:   it.ProductCode,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitValue:     it.UnitValue,
			TotalValue:    it.TotalValue,
			UnitOfMeasure: it.UnitOfMeasure,
		})
	}
	return r
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
