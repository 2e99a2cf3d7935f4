package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hub-portal/internal/domain"
)

// Estados de una pré-nota en el ERP.
const (
	PreNoteStatusPending    = "Pendente"
	PreNoteStatusClassified = "Classificada"
	PreNoteStatusApproved   = "Aprovada"
	PreNoteStatusRejected   = "Rejeitada"
)

// PreNote pré-nota de entrada tal como la devuelve el ERP (listado y detalle).
type PreNote struct {
	ID             string // clave compuesta filial|documento|serie|proveedor|tienda
	Branch         string
	DocumentNumber string
	Series         string
	Supplier       string
	SupplierStore  string
	SupplierName   string
	Status         string
	Total          decimal.Decimal
	InclusionDate  time.Time
	IssueDate      time.Time
	Classification *PreNoteClassification
	Items          []PreNoteItem
	ReviewedBy     string
	ReviewedAt     *time.Time
	RejectReason   string
}

// PreNoteItem línea de la pré-nota en el ERP.
type PreNoteItem struct {
	ItemCode      string
	ProductCode   string
	Description   string
	Quantity      decimal.Decimal
	UnitValue     decimal.Decimal
	TotalValue    decimal.Decimal
	UnitOfMeasure string
}

// PreNoteClassification datos fiscales/contables asignados en la clasificación.
type PreNoteClassification struct {
	OperationType string // TES / tipo de entrada
	CostCenter    string
	AccountCode   string
	Category      string
	Notes         string
}

// CanReview solo se aprueba o rechaza una pré-nota ya clasificada.
func (p *PreNote) CanReview() bool {
	return p.Status == PreNoteStatusClassified
}

// CanClassify se clasifica una pré-nota pendiente (o se reclasifica una ya clasificada).
func (p *PreNote) CanClassify() bool {
	return p.Status == PreNoteStatusPending || p.Status == PreNoteStatusClassified
}

// PreNoteKey clave compuesta con la que el ERP identifica una pré-nota.
type PreNoteKey struct {
	Branch         string
	DocumentNumber string
	Series         string
	Supplier       string
	SupplierStore  string
}

// String forma filial|documento|serie|proveedor|tienda usada como ID en el portal.
func (k PreNoteKey) String() string {
	return strings.Join([]string{k.Branch, k.DocumentNumber, k.Series, k.Supplier, k.SupplierStore}, "|")
}

// ParsePreNoteKey interpreta el ID del portal. La tienda es opcional.
func ParsePreNoteKey(id string) (PreNoteKey, error) {
	parts := strings.Split(id, "|")
	if len(parts) < 4 || len(parts) > 5 {
		return PreNoteKey{}, fmt.Errorf("%w: id de pré-nota %q", domain.ErrInvalidInput, id)
	}
	k := PreNoteKey{Branch: parts[0], DocumentNumber: parts[1], Series: parts[2], Supplier: parts[3]}
	if len(parts) == 5 {
		k.SupplierStore = parts[4]
	}
	if k.Branch == "" || k.DocumentNumber == "" || k.Supplier == "" {
		return PreNoteKey{}, fmt.Errorf("%w: id de pré-nota %q", domain.ErrInvalidInput, id)
	}
	return k, nil
}
