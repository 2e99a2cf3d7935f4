package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

// DraftResponse borrador con saldo de rateio y validez por sección (habilita "siguiente paso").
type DraftResponse struct {
	ID               string               `json:"id"`
	UserID           string               `json:"user_id"`
	Header           entity.DraftHeader   `json:"header"`
	Items            []entity.DraftItem   `json:"items"`
	Installments     []entity.Installment `json:"installments"`
	Attachments      []entity.Attachment  `json:"attachments"`
	IdempotencyToken string               `json:"idempotency_token"`
	Status           entity.DraftStatus   `json:"status"`
	Revision         int                  `json:"revision"`
	Total            decimal.Decimal      `json:"total"`
	Remaining        decimal.Decimal      `json:"remaining"`
	SectionValidity  map[string]bool      `json:"section_validity"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// CreateDraftRequest la cabecera es opcional al crear.
type CreateDraftRequest struct {
	Header *entity.DraftHeader `json:"header"`
}

// HeaderPatch cambios parciales de cabecera; nil = sin cambio.
type HeaderPatch struct {
	Branch           *string          `json:"branch"`
	Supplier         *string          `json:"supplier"`
	SupplierStore    *string          `json:"supplier_store"`
	DocumentNumber   *string          `json:"document_number"`
	Series           *string          `json:"series"`
	PaymentCondition *string          `json:"payment_condition"`
	InclusionDate    *string          `json:"inclusion_date"`
	IssueDate        *string          `json:"issue_date"`
	FreightType      *string          `json:"freight_type"`
	Priority         *string          `json:"priority"`
	Observation      *string          `json:"observation"`
	TotalValue       *decimal.Decimal `json:"total_value"`
}

// ItemRequest alta de ítem. Sin ItemCode se asigna el siguiente; sin TotalValue se calcula.
type ItemRequest struct {
	ItemCode      string           `json:"item_code"`
	SourceItem    string           `json:"source_item"`
	ProductCode   string           `json:"product_code"`
	Description   string           `json:"description"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitValue     decimal.Decimal  `json:"unit_value"`
	TotalValue    *decimal.Decimal `json:"total_value"`
	UnitOfMeasure string           `json:"unit_of_measure"`
}

// ItemPatch cambios parciales de un ítem; nil = sin cambio.
type ItemPatch struct {
	SourceItem    *string          `json:"source_item"`
	ProductCode   *string          `json:"product_code"`
	Description   *string          `json:"description"`
	Quantity      *decimal.Decimal `json:"quantity"`
	UnitValue     *decimal.Decimal `json:"unit_value"`
	TotalValue    *decimal.Decimal `json:"total_value"`
	UnitOfMeasure *string          `json:"unit_of_measure"`
}

// InstallmentRequest rateio por valor o por porcentaje del total.
type InstallmentRequest struct {
	Branch     string          `json:"branch"`
	CostCenter string          `json:"cost_center"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// InstallmentPatch cambios parciales de un rateio; nil = sin cambio.
type InstallmentPatch struct {
	Branch     *string          `json:"branch"`
	CostCenter *string          `json:"cost_center"`
	Percentage *decimal.Decimal `json:"percentage"`
	Amount     *decimal.Decimal `json:"amount"`
}

type AttachmentRequest struct {
	Path        string `json:"path" validate:"required"`
	Description string `json:"description" validate:"max=120"`
}

// ValidationResponse resultado de validar una sección o el borrador completo.
type ValidationResponse struct {
	Valid    bool              `json:"valid"`
	Sections map[string]bool   `json:"sections,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

type RemainingResponse struct {
	Total     decimal.Decimal `json:"total"`
	Allocated decimal.Decimal `json:"allocated"`
	Remaining decimal.Decimal `json:"remaining"`
}

type NextItemCodeResponse struct {
	ItemCode string `json:"item_code"`
}

// SubmitResponse Replayed indica que el envío ya se había registrado con la misma clave.
type SubmitResponse struct {
	PreNoteID string `json:"prenote_id"`
	Message   string `json:"message"`
	Replayed  bool   `json:"replayed"`
}
