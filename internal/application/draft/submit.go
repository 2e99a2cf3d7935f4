package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jhoicas/hub-portal/internal/application/audit"
	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/repository"
)

// Submit valida el borrador completo y lo envía al ERP en un único intento.
//
//	Idle|Failed → Validating → Submitting → Succeeded (borrador eliminado)
//	                  │              └──→ Failed(motivo) (borrador intacto)
//	                  └──→ Idle (validación fallida, sin llamada al ERP)
//
// replayKey es la clave de idempotencia que el cliente ya usó: si el borrador no existe
// pero el envío quedó registrado con esa clave, se devuelve el resultado original.
func (uc *UseCase) Submit(ctx context.Context, userID, id, replayKey string) (*dto.SubmitResponse, error) {
	if !uc.locks.tryAcquire(id) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSubmitInFlight, id)
	}
	defer uc.locks.release(id)

	d, err := uc.load(ctx, userID, id)
	if errors.Is(err, domain.ErrNotFound) && replayKey != "" {
		if resp, ok := uc.replay(ctx, userID, id, replayKey); ok {
			return resp, nil
		}
	}
	if err != nil {
		return nil, err
	}

	switch d.Status.State {
	case entity.DraftSubmitting:
		if uc.now().Sub(d.UpdatedAt) < uc.staleAfter {
			return nil, fmt.Errorf("%w: %s", domain.ErrSubmitInFlight, id)
		}
		// un proceso caído dejó el estado; si el ERP alcanzó a registrarlo el libro lo dice
		if resp, ok := uc.replay(ctx, userID, id, d.IdempotencyToken); ok {
			return resp, nil
		}
		uc.log.Warn().Str("draft_id", id).Time("since", d.UpdatedAt).Msg("envío abandonado, se reintenta")
		d.Status = entity.StatusFailed("envío anterior interrumpido")
	case entity.DraftSucceeded:
		return nil, fmt.Errorf("%w: borrador %s ya enviado", domain.ErrConflict, id)
	}

	if err := d.Transition(entity.StatusValidating()); err != nil {
		return nil, err
	}
	if err := uc.schema.Validate(d); err != nil {
		// nada se persiste: el borrador sigue como estaba
		uc.log.Debug().Str("draft_id", id).Err(err).Msg("envío bloqueado por validación")
		return nil, err
	}
	if err := d.Transition(entity.StatusSubmitting()); err != nil {
		return nil, err
	}
	d.UpdatedAt = uc.now().UTC()
	if err := uc.drafts.Update(ctx, d); err != nil {
		return nil, err
	}

	// la respuesta del ERP se registra aunque el cliente se desconecte
	ctx = context.WithoutCancel(ctx)
	before := uc.ToResponse(d)

	res, sendErr := uc.gateway.SubmitPreNote(ctx, d, d.IdempotencyToken)
	if sendErr != nil {
		if err := d.Transition(entity.StatusFailed(sendErr.Error())); err != nil {
			return nil, err
		}
		d.UpdatedAt = uc.now().UTC()
		if err := uc.drafts.Update(ctx, d); err != nil {
			uc.log.Error().Err(err).Str("draft_id", id).Msg("no se pudo marcar el borrador como fallido")
		}
		uc.log.Warn().Err(sendErr).Str("draft_id", id).Msg("envío rechazado")
		return nil, fmt.Errorf("enviar borrador %s: %w", id, sendErr)
	}

	if err := uc.finish(ctx, d, before, res.PreNoteID, res.Message); err != nil {
		// el ERP ya aceptó: se informa el éxito y el borrador queda como Succeeded
		uc.log.Error().Err(err).Str("draft_id", id).Str("prenote_id", res.PreNoteID).Msg("cierre del envío pendiente")
		if terr := d.Transition(entity.StatusSucceeded()); terr == nil {
			d.UpdatedAt = uc.now().UTC()
			_ = uc.drafts.Update(ctx, d)
		}
	}
	uc.log.Info().Str("draft_id", id).Str("prenote_id", res.PreNoteID).Msg("pré-nota incluida en el ERP")
	return &dto.SubmitResponse{PreNoteID: res.PreNoteID, Message: res.Message}, nil
}

// finish en una transacción: asiento en el libro, auditoría y borrado del borrador.
func (uc *UseCase) finish(ctx context.Context, d *entity.Draft, before *dto.DraftResponse, preNoteID, message string) error {
	payload, err := json.Marshal(dto.SubmitResponse{PreNoteID: preNoteID, Message: message})
	if err != nil {
		return err
	}
	now := uc.now().UTC()
	entry, err := audit.NewEntry(audit.Event{
		Entity:   entity.AuditEntityDraft,
		EntityID: d.ID,
		Action:   entity.AuditActionSubmit,
		UserID:   d.UserID,
		Before:   before,
		After:    map[string]string{"prenote_id": preNoteID, "message": message},
	}, now)
	if err != nil {
		return err
	}
	return uc.tx.Run(ctx, func(drafts repository.DraftRepository, submissions repository.SubmissionRepository, audits repository.AuditRepository) error {
		if err := submissions.Create(ctx, &entity.Submission{
			IdempotencyKey: d.IdempotencyToken,
			DraftID:        d.ID,
			UserID:         d.UserID,
			PreNoteID:      preNoteID,
			Payload:        payload,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		if err := audits.Create(ctx, entry); err != nil {
			return err
		}
		return drafts.Delete(ctx, d.ID)
	})
}

// replay busca en el libro un envío ya registrado para el borrador.
func (uc *UseCase) replay(ctx context.Context, userID, id, key string) (*dto.SubmitResponse, bool) {
	sub, err := uc.submissions.GetByKey(ctx, key)
	if err != nil || sub == nil || sub.DraftID != id || sub.UserID != userID {
		return nil, false
	}
	resp := &dto.SubmitResponse{PreNoteID: sub.PreNoteID}
	if len(sub.Payload) > 0 {
		_ = json.Unmarshal(sub.Payload, resp)
	}
	resp.Replayed = true
	return resp, true
}
