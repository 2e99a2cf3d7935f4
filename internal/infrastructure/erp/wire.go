package erp

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hub-portal/internal/application/ports"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

// ── Formato de fechas del ERP ─────────────────────────────────────────────────

var dateLayouts = []string{"2006-01-02", "20060102", "02/01/2006", time.RFC3339}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseDatePtr(s string) *time.Time {
	t := parseDate(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

// ── Listados ──────────────────────────────────────────────────────────────────

// listValues codifica la consulta como query string del ERP:
// page, pageSize, sort=col:asc,col:desc, search, filiais=a,b y f.<campo>[.de|.ate].
func listValues(q ports.ListQuery) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if len(q.Sort) > 0 {
		parts := make([]string, 0, len(q.Sort))
		for _, r := range q.Sort {
			dir := "asc"
			if r.Desc {
				dir = "desc"
			}
			parts = append(parts, r.ColumnID+":"+dir)
		}
		v.Set("sort", strings.Join(parts, ","))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if len(q.Branches) > 0 {
		v.Set("filiais", strings.Join(q.Branches, ","))
	}
	for key, f := range q.Filters {
		switch f.Kind {
		case viewstate.FilterSingle:
			v.Set("f."+key, f.Value)
		case viewstate.FilterSet:
			v.Set("f."+key, strings.Join(f.Values, ","))
		case viewstate.FilterRange:
			if f.From != "" {
				v.Set("f."+key+".de", f.From)
			}
			if f.To != "" {
				v.Set("f."+key+".ate", f.To)
			}
		}
	}
	return v
}

// totalFromHeader lee X-Total-Count. Sin cabecera se estima: si la página vino llena se
// asume que hay al menos una página más.
func totalFromHeader(resp *response, q ports.ListQuery, rows int) int {
	if n, err := strconv.Atoi(resp.header.Get("X-Total-Count")); err == nil && n >= 0 {
		return n
	}
	total := q.Offset() + rows
	if q.PageSize > 0 && rows == q.PageSize {
		total += q.PageSize
	}
	return total
}

// ── Pré-notas ─────────────────────────────────────────────────────────────────

type preNoteRow struct {
	Branch        string           `json:"filial"`
	Document      string           `json:"doc"`
	Series        string           `json:"serie"`
	Supplier      string           `json:"fornece"`
	SupplierStore string           `json:"loja"`
	SupplierName  string           `json:"nome_fornecedor"`
	Status        string           `json:"status"`
	Total         decimal.Decimal  `json:"valor_total"`
	InclusionDate string           `json:"dt_inclusao"`
	IssueDate     string           `json:"dt_emissao"`
	OperationType string           `json:"tes,omitempty"`
	CostCenter    string           `json:"centro_custo,omitempty"`
	AccountCode   string           `json:"conta,omitempty"`
	Category      string           `json:"categoria,omitempty"`
	Notes         string           `json:"obs_classificacao,omitempty"`
	ReviewedBy    string           `json:"revisado_por,omitempty"`
	ReviewedAt    string           `json:"dt_revisao,omitempty"`
	RejectReason  string           `json:"motivo_rejeicao,omitempty"`
	Items         []preNoteItemRow `json:"itens,omitempty"`
}

type preNoteItemRow struct {
	ItemCode      string          `json:"item"`
	ProductCode   string          `json:"produto"`
	Description   string          `json:"descricao"`
	Quantity      decimal.Decimal `json:"quantidade"`
	UnitValue     decimal.Decimal `json:"vl_unitario"`
	TotalValue    decimal.Decimal `json:"vl_total"`
	UnitOfMeasure string          `json:"um"`
}

func (r preNoteRow) toEntity() entity.PreNote {
	p := entity.PreNote{
		ID: entity.PreNoteKey{
			Branch: r.Branch, DocumentNumber: r.Document, Series: r.Series,
			Supplier: r.Supplier, SupplierStore: r.SupplierStore,
		}.String(),
		Branch:         r.Branch,
		DocumentNumber: r.Document,
		Series:         r.Series,
		Supplier:       r.Supplier,
		SupplierStore:  r.SupplierStore,
		SupplierName:   strings.TrimSpace(r.SupplierName),
		Status:         r.Status,
		Total:          r.Total,
		InclusionDate:  parseDate(r.InclusionDate),
		IssueDate:      parseDate(r.IssueDate),
		ReviewedBy:     r.ReviewedBy,
		ReviewedAt:     parseDatePtr(r.ReviewedAt),
		RejectReason:   r.RejectReason,
	}
	if r.OperationType != "" || r.CostCenter != "" || r.AccountCode != "" {
		p.Classification = &entity.PreNoteClassification{
			OperationType: r.OperationType,
			CostCenter:    r.CostCenter,
			AccountCode:   r.AccountCode,
			Category:      r.Category,
			Notes:         r.Notes,
		}
	}
	for _, it := range r.Items {
		p.Items = append(p.Items, entity.PreNoteItem{
			ItemCode:      it.ItemCode,
			ProductCode:   it.ProductCode,
			Description:   strings.TrimSpace(it.Description),
			Quantity:      it.Quantity,
			UnitValue:     it.UnitValue,
			TotalValue:    it.TotalValue,
			UnitOfMeasure: it.UnitOfMeasure,
		})
	}
	return p
}

// submitPayload cuerpo de inclusión: cabecera aplanada, ítems/rateios/anexos anidados.
type submitPayload struct {
	Branch           string           `json:"filial"`
	Supplier         string           `json:"fornece"`
	SupplierStore    string           `json:"loja,omitempty"`
	Document         string           `json:"doc"`
	Series           string           `json:"serie"`
	PaymentCondition string           `json:"cond_pagamento"`
	InclusionDate    string           `json:"dt_inclusao"`
	IssueDate        string           `json:"dt_emissao,omitempty"`
	FreightType      string           `json:"tipo_frete"`
	Priority         string           `json:"prioridade"`
	Observation      string           `json:"observacao,omitempty"`
	Total            decimal.Decimal  `json:"valor_total"`
	User             string           `json:"usuario"`
	Items            []preNoteItemRow `json:"itens"`
	Installments     []installmentRow `json:"rateios"`
	Attachments      []attachmentRow  `json:"anexos"`
}

type installmentRow struct {
	Branch     string          `json:"filial"`
	CostCenter string          `json:"centro_custo"`
	Percentage decimal.Decimal `json:"percentual"`
	Amount     decimal.Decimal `json:"valor"`
}

type attachmentRow struct {
	Path        string `json:"caminho"`
	Description string `json:"descricao,omitempty"`
}

func newSubmitPayload(d *entity.Draft) submitPayload {
	h := d.Header
	p := submitPayload{
		Branch:           h.Branch,
		Supplier:         h.Supplier,
		SupplierStore:    h.SupplierStore,
		Document:         h.DocumentNumber,
		Series:           h.Series,
		PaymentCondition: h.PaymentCondition,
		InclusionDate:    h.InclusionDate,
		IssueDate:        h.IssueDate,
		FreightType:      h.FreightType,
		Priority:         h.Priority,
		Observation:      h.Observation,
		Total:            d.Total(),
		User:             d.UserID,
		Items:            make([]preNoteItemRow, 0, len(d.Items)),
		Installments:     make([]installmentRow, 0, len(d.Installments)),
		Attachments:      make([]attachmentRow, 0, len(d.Attachments)),
	}
	for _, it := range d.Items {
		p.Items = append(p.Items, preNoteItemRow{
			ItemCode:      it.ItemCode,
			ProductCode:   it.ProductCode,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitValue:     it.UnitValue,
			TotalValue:    it.TotalValue,
			UnitOfMeasure: it.UnitOfMeasure,
		})
	}
	for _, inst := range d.Installments {
		p.Installments = append(p.Installments, installmentRow(inst))
	}
	for _, a := range d.Attachments {
		p.Attachments = append(p.Attachments, attachmentRow(a))
	}
	return p
}

// ── Andén ─────────────────────────────────────────────────────────────────────

type dockRow struct {
	ID           string `json:"id"`
	Branch       string `json:"filial"`
	Plate        string `json:"placa"`
	Driver       string `json:"motorista"`
	Carrier      string `json:"transportadora"`
	Document     string `json:"documento"`
	TireCount    int    `json:"qtd_pneus"`
	Status       string `json:"status"`
	OpenedAt     string `json:"dt_abertura"`
	ConfirmedBy  string `json:"conferido_por,omitempty"`
	ConfirmedAt  string `json:"dt_conferencia,omitempty"`
	ReversedBy   string `json:"estornado_por,omitempty"`
	ReversedAt   string `json:"dt_estorno,omitempty"`
	ReverseNotes string `json:"motivo_estorno,omitempty"`
}

func (r dockRow) toEntity() entity.DockMovement {
	return entity.DockMovement{
		ID:           r.ID,
		Branch:       r.Branch,
		Plate:        strings.ToUpper(strings.TrimSpace(r.Plate)),
		Driver:       strings.TrimSpace(r.Driver),
		Carrier:      strings.TrimSpace(r.Carrier),
		Document:     r.Document,
		TireCount:    r.TireCount,
		Status:       r.Status,
		OpenedAt:     parseDate(r.OpenedAt),
		ConfirmedBy:  r.ConfirmedBy,
		ConfirmedAt:  parseDatePtr(r.ConfirmedAt),
		ReversedBy:   r.ReversedBy,
		ReversedAt:   parseDatePtr(r.ReversedAt),
		ReverseNotes: r.ReverseNotes,
	}
}

// ── Autenticación ─────────────────────────────────────────────────────────────

type loginRow struct {
	UserID   string   `json:"id"`
	Username string   `json:"usuario"`
	Name     string   `json:"nome"`
	Branch   string   `json:"filial"`
	Branches []string `json:"filiais"`
	Role     string   `json:"perfil"`
}
