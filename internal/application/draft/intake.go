package draft

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/hub-portal/internal/application/audit"
	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/prenote"
)

// ImportNFe precarga el borrador con una NF-e: completa los campos de cabecera vacíos y
// agrega una línea por <det>, con códigos de ítem secuenciales a partir de los existentes.
// El código de producto queda con el del proveedor hasta que el usuario lo resuelva.
func (uc *UseCase) ImportNFe(ctx context.Context, userID, id string, xml []byte) (*dto.DraftResponse, error) {
	if uc.nfe == nil {
		return nil, fmt.Errorf("%w: importación de NF-e no configurada", domain.ErrInvalidInput)
	}
	doc, err := uc.nfe.Parse(xml)
	if err != nil {
		return nil, err
	}

	resp, err := uc.mutate(ctx, userID, id, func(d *entity.Draft) error {
		return ApplyNFe(d, doc)
	})
	if err != nil {
		return nil, err
	}
	if uc.audit != nil {
		if _, aerr := uc.audit.Record(ctx, audit.Event{
			Entity:   entity.AuditEntityDraft,
			EntityID: id,
			Action:   entity.AuditActionImport,
			UserID:   userID,
			After:    map[string]any{"access_key": doc.AccessKey, "items": len(doc.Items)},
		}); aerr != nil {
			uc.log.Warn().Err(aerr).Str("draft_id", id).Msg("auditoría de importación pendiente")
		}
	}
	return resp, nil
}

// ApplyNFe vuelca la NF-e sobre d. Si se agotan los códigos de ítem devuelve error y d
// queda a medio completar: se aplica siempre sobre una copia.
func ApplyNFe(d *entity.Draft, doc *entity.NFeDocument) error {
	h := &d.Header
	fill(&h.Supplier, doc.SupplierCNPJ)
	fill(&h.DocumentNumber, doc.Number)
	fill(&h.Series, doc.Series)
	if h.IssueDate == "" && !doc.IssueDate.IsZero() {
		h.IssueDate = doc.IssueDate.Format("2006-01-02")
	}
	if h.TotalValue.IsZero() {
		h.TotalValue = doc.Total
	}

	codes := prenote.ItemCodes(d.Items)
	items := make([]entity.DraftItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		code, err := prenote.NextItemCode(codes)
		if err != nil {
			return err
		}
		codes = append(codes, code)
		items = append(items, entity.DraftItem{
			ItemCode:      code,
			SourceItem:    it.Number,
			ProductCode:   it.ProductCode,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitValue:     it.UnitValue,
			TotalValue:    it.TotalValue,
			UnitOfMeasure: unitOfMeasure(it.Unit),
		})
	}
	d.Items = append(d.Items, items...)
	return nil
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}

// unitOfMeasure el ERP usa unidades de dos letras.
func unitOfMeasure(u string) string {
	r := []rune(strings.ToUpper(strings.TrimSpace(u)))
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// PDF resumen imprimible del borrador.
func (uc *UseCase) PDF(ctx context.Context, userID, id string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("%w: generador de PDF no configurado", domain.ErrInvalidInput)
	}
	d, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateDraftPDF(ctx, d, prenote.ComputeRemaining(d.Total(), d.Installments))
}
