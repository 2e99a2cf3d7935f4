package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

type PreNoteItemResponse struct {
	ItemCode      string          `json:"item_code"`
	ProductCode   string          `json:"product_code"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitValue     decimal.Decimal `json:"unit_value"`
	TotalValue    decimal.Decimal `json:"total_value"`
	UnitOfMeasure string          `json:"unit_of_measure"`
}

type ClassificationDTO struct {
	OperationType string `json:"operation_type" validate:"required,max=3"`
	CostCenter    string `json:"cost_center" validate:"required,max=9"`
	AccountCode   string `json:"account_code" validate:"required,max=20"`
	Category      string `json:"category" validate:"max=40"`
	Notes         string `json:"notes" validate:"max=250"`
}

type PreNoteResponse struct {
	ID             string                `json:"id"`
	Branch         string                `json:"branch"`
	DocumentNumber string                `json:"document_number"`
	Series         string                `json:"series"`
	Supplier       string                `json:"supplier"`
	SupplierStore  string                `json:"supplier_store"`
	SupplierName   string                `json:"supplier_name"`
	Status         string                `json:"status"`
	Total          decimal.Decimal       `json:"total"`
	InclusionDate  *time.Time            `json:"inclusion_date,omitempty"`
	IssueDate      *time.Time            `json:"issue_date,omitempty"`
	Classification *ClassificationDTO    `json:"classification,omitempty"`
	Items          []PreNoteItemResponse `json:"items,omitempty"`
	ReviewedBy     string                `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time            `json:"reviewed_at,omitempty"`
	RejectReason   string                `json:"reject_reason,omitempty"`
}

// PreNoteListResponse filas de la página actual más el estado de tabla con el que se consultó.
type PreNoteListResponse struct {
	Items      []PreNoteResponse    `json:"items"`
	Pagination viewstate.Pagination `json:"pagination"`
	ViewState  ViewStateResponse    `json:"view_state"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=250"`
}
