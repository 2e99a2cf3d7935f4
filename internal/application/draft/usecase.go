// Package draft flujo de borradores de pré-nota: edición por secciones, validación
// por esquema y envío único al ERP.
package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/application/ports"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/prenote"
	"github.com/jhoicas/hub-portal/internal/domain/repository"
)

// maxWriteAttempts reintentos de una edición cuando otra escritura ganó la revisión.
const maxWriteAttempts = 3

// UseCase casos de uso del borrador.
type UseCase struct {
	drafts      repository.DraftRepository
	submissions repository.SubmissionRepository
	tx          TxRunner
	gateway     ports.PreNoteGateway
	schema      *prenote.Schema
	nfe         NFeParser
	pdf         PDFGenerator
	audit       AuditRecorder
	locks       *submitLocks
	staleAfter  time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

// Deps colaboradores del caso de uso.
type Deps struct {
	Drafts      repository.DraftRepository
	Submissions repository.SubmissionRepository
	Tx          TxRunner
	Gateway     ports.PreNoteGateway
	NFe         NFeParser
	PDF         PDFGenerator
	Audit       AuditRecorder
	// StaleSubmitAfter tiempo tras el cual un estado Submitting persistido se considera abandonado.
	StaleSubmitAfter time.Duration
}

// NewUseCase construye el caso de uso.
func NewUseCase(deps Deps, log zerolog.Logger) *UseCase {
	stale := deps.StaleSubmitAfter
	if stale <= 0 {
		stale = 2 * time.Minute
	}
	return &UseCase{
		drafts:      deps.Drafts,
		submissions: deps.Submissions,
		tx:          deps.Tx,
		gateway:     deps.Gateway,
		schema:      prenote.NewSchema(),
		nfe:         deps.NFe,
		pdf:         deps.PDF,
		audit:       deps.Audit,
		locks:       newSubmitLocks(),
		staleAfter:  stale,
		log:         log,
		now:         time.Now,
	}
}

// ── Ciclo de vida ─────────────────────────────────────────────────────────────

// Create crea un borrador vacío (o con cabecera inicial) con su token de idempotencia.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateDraftRequest) (*dto.DraftResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	now := uc.now().UTC()
	d := &entity.Draft{
		ID:               uuid.New().String(),
		UserID:           userID,
		Items:            []entity.DraftItem{},
		Installments:     []entity.Installment{},
		Attachments:      []entity.Attachment{},
		IdempotencyToken: uuid.New().String(),
		Status:           entity.StatusIdle(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.Header != nil {
		d.Header = normalizeHeader(*in.Header)
	}
	if d.Header.InclusionDate == "" {
		d.Header.InclusionDate = now.Format("2006-01-02")
	}
	if err := uc.drafts.Create(ctx, d); err != nil {
		return nil, err
	}
	uc.log.Info().Str("draft_id", d.ID).Str("user_id", userID).Msg("borrador creado")
	return uc.ToResponse(d), nil
}

// Get borrador del usuario.
func (uc *UseCase) Get(ctx context.Context, userID, id string) (*dto.DraftResponse, error) {
	d, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return uc.ToResponse(d), nil
}

// List borradores en curso del usuario.
func (uc *UseCase) List(ctx context.Context, userID string) ([]dto.DraftResponse, error) {
	drafts, err := uc.drafts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DraftResponse, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, *uc.ToResponse(d))
	}
	return out, nil
}

// Reset vuelve el borrador a los valores por defecto y renueva el token de idempotencia.
func (uc *UseCase) Reset(ctx context.Context, userID, id string) (*dto.DraftResponse, error) {
	return uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		d.Header = entity.DraftHeader{InclusionDate: uc.now().UTC().Format("2006-01-02")}
		d.Items = []entity.DraftItem{}
		d.Installments = []entity.Installment{}
		d.Attachments = []entity.Attachment{}
		d.IdempotencyToken = uuid.New().String()
		return nil
	})
}

// Cancel descarta el borrador.
func (uc *UseCase) Cancel(ctx context.Context, userID, id string) error {
	d, err := uc.load(ctx, userID, id)
	if err != nil {
		return err
	}
	if d.Status.State == entity.DraftSubmitting {
		return fmt.Errorf("%w: %s", domain.ErrSubmitInFlight, id)
	}
	if err := uc.drafts.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("draft_id", id).Str("user_id", userID).Msg("borrador descartado")
	return nil
}

// ── Cabecera ──────────────────────────────────────────────────────────────────

// SetHeader aplica cambios parciales a la cabecera.
func (uc *UseCase) SetHeader(ctx context.Context, userID, id string, p dto.HeaderPatch) (*dto.DraftResponse, error) {
	return uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		h := d.Header
		setString(&h.Branch, p.Branch)
		setString(&h.Supplier, p.Supplier)
		setString(&h.SupplierStore, p.SupplierStore)
		setString(&h.DocumentNumber, p.DocumentNumber)
		setString(&h.Series, p.Series)
		setString(&h.PaymentCondition, p.PaymentCondition)
		setString(&h.InclusionDate, p.InclusionDate)
		setString(&h.IssueDate, p.IssueDate)
		setString(&h.FreightType, p.FreightType)
		setString(&h.Priority, p.Priority)
		setString(&h.Observation, p.Observation)
		if p.TotalValue != nil {
			h.TotalValue = *p.TotalValue
		}
		d.Header = normalizeHeader(h)
		return nil
	})
}

func normalizeHeader(h entity.DraftHeader) entity.DraftHeader {
	h.Branch = strings.TrimSpace(h.Branch)
	h.Supplier = strings.TrimSpace(h.Supplier)
	h.SupplierStore = strings.TrimSpace(h.SupplierStore)
	h.DocumentNumber = strings.TrimSpace(h.DocumentNumber)
	h.Series = strings.TrimSpace(h.Series)
	h.FreightType = strings.ToUpper(strings.TrimSpace(h.FreightType))
	return h
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// ── Ítems ─────────────────────────────────────────────────────────────────────

// AddItem agrega una línea. Sin código se asigna el siguiente; sin total se calcula.
func (uc *UseCase) AddItem(ctx context.Context, userID, id string, in dto.ItemRequest) (*dto.DraftResponse, error) {
	return uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		code := strings.TrimSpace(in.ItemCode)
		if code == "" {
			next, err := prenote.NextItemCode(prenote.ItemCodes(d.Items))
			if err != nil {
				return err
			}
			code = next
		}
		for _, it := range d.Items {
			if it.ItemCode == code {
				return fmt.Errorf("%w: el ítem %s ya existe", domain.ErrConflict, code)
			}
		}
		item := entity.DraftItem{
			ItemCode:      code,
			SourceItem:    in.SourceItem,
			ProductCode:   strings.TrimSpace(in.ProductCode),
			Description:   strings.TrimSpace(in.Description),
			Quantity:      in.Quantity,
			UnitValue:     in.UnitValue,
			UnitOfMeasure: strings.ToUpper(strings.TrimSpace(in.UnitOfMeasure)),
		}
		if in.TotalValue != nil {
			item.TotalValue = *in.TotalValue
		} else {
			item.TotalValue = lineTotal(item)
		}
		d.Items = append(d.Items, item)
		return nil
	})
}

// UpdateItem aplica cambios parciales a la línea index. Si cambia cantidad o valor
// unitario sin total explícito, el total se recalcula.
func (uc *UseCase) UpdateItem(ctx context.Context, userID, id string, index int, p dto.ItemPatch) (*dto.DraftResponse, error) {
	return uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		if index < 0 || index >= len(d.Items) {
			return fmt.Errorf("%w: ítem %d", domain.ErrNotFound, index)
		}
		it := d.Items[index]
		setString(&it.SourceItem, p.SourceItem)
		setString(&it.ProductCode, p.ProductCode)
		setString(&it.Description, p.Description)
		setString(&it.UnitOfMeasure, p.UnitOfMeasure)
		it.UnitOfMeasure = strings.ToUpper(strings.TrimSpace(it.UnitOfMeasure))
		recompute := false
		if p.Quantity != nil {
			it.Quantity = *p.Quantity
			recompute = true
		}
		if p.UnitValue != nil {
			it.UnitValue = *p.UnitValue
			recompute = true
		}
		switch {
		case p.TotalValue != nil:
			it.TotalValue = *p.TotalValue
		case recompute:
			it.TotalValue = lineTotal(it)
		}
		d.Items[index] = it
		return nil
	})
}

// RemoveItem quita la línea index. Los códigos de las demás no se renumeran.
func (uc *UseCase) RemoveItem(ctx context.Context, userID, id string, index int) (*dto.DraftResponse, error) {
	return uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		if index < 0 || index >= len(d.Items) {
			return fmt.Errorf("%w: ítem %d", domain.ErrNotFound, index)
		}
		d.Items = append(d.Items[:index], d.Items[index+1:]...)
		return nil
	})
}

func lineTotal(it entity.DraftItem) decimal.Decimal {
	return it.Quantity.Mul(it.UnitValue).Round(2)
}

// NextItemCode siguiente código de ítem disponible.
func (uc *UseCase) NextItemCode(ctx context.Context, userID, id string) (*dto.NextItemCodeResponse, error) {
	d, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	code, err := prenote.NextItemCode(prenote.ItemCodes(d.Items))
	if err != nil {
		return nil, err
	}
	return &dto.NextItemCodeResponse{ItemCode: code}, nil
}

// ── Rateios ───────────────────────────────────────────────────────────────────

// AddInstallment agrega un rateio. El valor (informado o derivado del porcentaje) no puede
// superar el saldo; si lo supera el borrador no cambia.
func (uc *UseCase) AddInstallment(ctx context.Context, userID, id string, in dto.InstallmentRequest) (*dto.DraftResponse, error) {
	return uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		total := d.Total()
		inst, err := prenote.ResolveAmount(total, entity.Installment{
			Branch:     strings.TrimSpace(in.Branch),
			CostCenter: strings.TrimSpace(in.CostCenter),
			Percentage: in.Percentage,
			Amount:     in.Amount,
		})
		if err != nil {
			return err
		}
		if err := prenote.CheckInstallment(total, d.Installments, -1, inst.Amount); err != nil {
			return err
		}
		d.Installments = append(d.Installments, inst)
		return nil
	})
}

// UpdateInstallment edita el rateio index; su valor anterior no cuenta para el saldo.
// Informar solo el porcentaje recalcula el valor.
func (uc *UseCase) UpdateInstallment(ctx context.Context, userID, id string, index int, p dto.InstallmentPatch) (*dto.DraftResponse, error) {
	return uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		if index < 0 || index >= len(d.Installments) {
			return fmt.Errorf("%w: rateio %d", domain.ErrNotFound, index)
		}
		inst := d.Installments[index]
		setString(&inst.Branch, p.Branch)
		setString(&inst.CostCenter, p.CostCenter)
		switch {
		case p.Amount != nil:
			inst.Amount = *p.Amount
		case p.Percentage != nil:
			inst.Percentage = *p.Percentage
			inst.Amount = decimal.Zero
		}
		total := d.Total()
		resolved, err := prenote.ResolveAmount(total, inst)
		if err != nil {
			return err
		}
		if err := prenote.CheckInstallment(total, d.Installments, index, resolved.Amount); err != nil {
			return err
		}
		d.Installments[index] = resolved
		return nil
	})
}

func (uc *UseCase) RemoveInstallment(ctx context.Context, userID, id string, index int) (*dto.DraftResponse, error) {
	return uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		if index < 0 || index >= len(d.Installments) {
			return fmt.Errorf("%w: rateio %d", domain.ErrNotFound, index)
		}
		d.Installments = append(d.Installments[:index], d.Installments[index+1:]...)
		return nil
	})
}

// Remaining saldo de rateio del borrador.
func (uc *UseCase) Remaining(ctx context.Context, userID, id string) (*dto.RemainingResponse, error) {
	d, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	total := d.Total()
	rem := prenote.ComputeRemaining(total, d.Installments)
	return &dto.RemainingResponse{Total: total, Allocated: total.Sub(rem), Remaining: rem}, nil
}

// ── Anexos ────────────────────────────────────────────────────────────────────

func (uc *UseCase) AddAttachment(ctx context.Context, userID, id string, in dto.AttachmentRequest) (*dto.DraftResponse, error) {
	return uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		path := strings.TrimSpace(in.Path)
		if path == "" {
			return &domain.ValidationError{Section: entity.SectionAttachments, Fields: map[string]string{"path": "obligatorio"}}
		}
		d.Attachments = append(d.Attachments, entity.Attachment{Path: path, Description: strings.TrimSpace(in.Description)})
		return nil
	})
}

func (uc *UseCase) RemoveAttachment(ctx context.Context, userID, id string, index int) (*dto.DraftResponse, error) {
	return uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		if index < 0 || index >= len(d.Attachments) {
			return fmt.Errorf("%w: anexo %d", domain.ErrNotFound, index)
		}
		d.Attachments = append(d.Attachments[:index], d.Attachments[index+1:]...)
		return nil
	})
}

// ── Validación ────────────────────────────────────────────────────────────────

// ValidateSection valida una sección sin modificar el borrador.
func (uc *UseCase) ValidateSection(ctx context.Context, userID, id, section string) (*dto.ValidationResponse, error) {
	d, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return validationResponse(uc.schema.ValidateSection(d, section), nil)
}

// Validate valida todas las secciones.
func (uc *UseCase) Validate(ctx context.Context, userID, id string) (*dto.ValidationResponse, error) {
	d, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return validationResponse(uc.schema.Validate(d), uc.schema.SectionValidity(d))
}

func validationResponse(err error, sections map[string]bool) (*dto.ValidationResponse, error) {
	if err == nil {
		return &dto.ValidationResponse{Valid: true, Sections: sections}, nil
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return &dto.ValidationResponse{Valid: false, Sections: sections, Fields: verr.Fields}, nil
	}
	return nil, err
}

// ── Internos ──────────────────────────────────────────────────────────────────

// load trae el borrador y verifica que pertenezca al usuario.
func (uc *UseCase) load(ctx context.Context, userID, id string) (*entity.Draft, error) {
	d, err := uc.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: borrador %s", domain.ErrNotFound, id)
	}
	if d.UserID != userID {
		return nil, fmt.Errorf("%w: borrador %s", domain.ErrForbidden, id)
	}
	return d, nil
}

// mutate aplica fn sobre una copia y la guarda con control de revisión. Si otra escritura
// ganó, relee y reintenta; un error de fn deja el borrador sin cambios.
func (uc *UseCase) mutate(ctx context.Context, userID, id string, fn func(d *entity.Draft) error) (*dto.DraftResponse, error) {
	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		cur, err := uc.load(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		switch cur.Status.State {
		case entity.DraftSubmitting:
			return nil, fmt.Errorf("%w: %s", domain.ErrSubmitInFlight, id)
		case entity.DraftSucceeded:
			return nil, fmt.Errorf("%w: borrador %s ya enviado", domain.ErrConflict, id)
		}

		next := cur.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		if err := checkAllocation(cur, next); err != nil {
			return nil, err
		}
		// una edición tras un envío fallido vuelve a edición
		if next.Status.State == entity.DraftFailed {
			if err := next.Transition(entity.StatusIdle()); err != nil {
				return nil, err
			}
		}
		next.UpdatedAt = uc.now().UTC()

		err = uc.drafts.Update(ctx, next)
		if err == nil {
			return uc.ToResponse(next), nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		lastErr = err
		uc.log.Debug().Str("draft_id", id).Int("attempt", attempt+1).Msg("revisión desactualizada, reintentando")
	}
	return nil, lastErr
}

// checkAllocation rechaza toda edición que deje el rateio por encima del total del borrador
// (cabecera, ítems cuando la cabecera no trae total, o una NF-e importada). Un borrador que
// ya estaba excedido solo admite ediciones que no lo empeoren.
func checkAllocation(cur, next *entity.Draft) error {
	if len(next.Installments) == 0 {
		return nil
	}
	rem := prenote.ComputeRemaining(next.Total(), next.Installments)
	if !rem.IsNegative() {
		return nil
	}
	if prev := prenote.ComputeRemaining(cur.Total(), cur.Installments); prev.IsNegative() && rem.GreaterThanOrEqual(prev) {
		return nil
	}
	return fmt.Errorf("%w: el rateio asignado supera el total en %s",
		domain.ErrRemainingExceeded, rem.Neg().StringFixed(2))
}

// ToResponse DTO con total, saldo y validez por sección.
func (uc *UseCase) ToResponse(d *entity.Draft) *dto.DraftResponse {
	total := d.Total()
	return &dto.DraftResponse{
		ID:               d.ID,
		UserID:           d.UserID,
		Header:           d.Header,
		Items:            d.Items,
		Installments:     d.Installments,
		Attachments:      d.Attachments,
		IdempotencyToken: d.IdempotencyToken,
		Status:           d.Status,
		Revision:         d.Revision,
		Total:            total,
		Remaining:        prenote.ComputeRemaining(total, d.Installments),
		SectionValidity:  uc.schema.SectionValidity(d),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
