package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hub-portal/internal/domain"
)

// Secciones de un borrador de pré-nota.
const (
	SectionHeader       = "header"
	SectionItems        = "items"
	SectionInstallments = "installments"
	SectionAttachments  = "attachments"
)

// Sections orden de validación de las secciones.
var Sections = []string{SectionHeader, SectionItems, SectionInstallments, SectionAttachments}

// DraftHeader cabecera de la pré-nota. Los campos con `required` forman la lista fija de obligatorios.
type DraftHeader struct {
	Branch           string          `json:"branch" validate:"required,max=8"`
	Supplier         string          `json:"supplier" validate:"required,max=14"`
	SupplierStore    string          `json:"supplier_store" validate:"max=4"`
	DocumentNumber   string          `json:"document_number" validate:"required,max=9"`
	Series           string          `json:"series" validate:"required,max=3"`
	PaymentCondition string          `json:"payment_condition" validate:"required"`
	InclusionDate    string          `json:"inclusion_date" validate:"required,datetime=2006-01-02"`
	IssueDate        string          `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	FreightType      string          `json:"freight_type" validate:"required,oneof=C F T R D S"`
	Priority         string          `json:"priority" validate:"required"`
	Observation      string          `json:"observation" validate:"max=250"`
	TotalValue       decimal.Decimal `json:"total_value" validate:"gte=0"`
}

// DraftItem línea de la pré-nota: vincula el ítem del documento de origen a un producto resuelto.
// TotalValue ≈ Quantity × UnitValue se valida en la capa de reglas, no aquí.
type DraftItem struct {
	ItemCode      string          `json:"item_code" validate:"required,len=4,numeric"`
	SourceItem    string          `json:"source_item"`
	ProductCode   string          `json:"product_code" validate:"required,max=15"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitValue     decimal.Decimal `json:"unit_value" validate:"gte=0"`
	TotalValue    decimal.Decimal `json:"total_value" validate:"gte=0"`
	UnitOfMeasure string          `json:"unit_of_measure" validate:"required,max=2"`
}

// Installment rateio: reparte el total entre filial y centro de costo.
// Percentage es informativo; Amount es el valor que se suma contra el total.
type Installment struct {
	Branch     string          `json:"branch" validate:"required"`
	CostCenter string          `json:"cost_center" validate:"required"`
	Percentage decimal.Decimal `json:"percentage" validate:"gte=0,lte=100"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
}

// Attachment referencia a un archivo subido (no se guarda el contenido).
type Attachment struct {
	Path        string `json:"path" validate:"required"`
	Description string `json:"description" validate:"max=120"`
}

// DraftState etiqueta del estado del flujo de envío.
type DraftState string

const (
	DraftIdle       DraftState = "idle"
	DraftValidating DraftState = "validating"
	DraftSubmitting DraftState = "submitting"
	DraftFailed     DraftState = "failed"
	DraftSucceeded  DraftState = "succeeded"
)

// DraftStatus unión etiquetada: Reason solo tiene sentido en DraftFailed.
type DraftStatus struct {
	State  DraftState `json:"state"`
	Reason string     `json:"reason,omitempty"`
}

func StatusIdle() DraftStatus                { return DraftStatus{State: DraftIdle} }
func StatusValidating() DraftStatus          { return DraftStatus{State: DraftValidating} }
func StatusSubmitting() DraftStatus          { return DraftStatus{State: DraftSubmitting} }
func StatusSucceeded() DraftStatus           { return DraftStatus{State: DraftSucceeded} }
func StatusFailed(reason string) DraftStatus { return DraftStatus{State: DraftFailed, Reason: reason} }

var draftTransitions = map[DraftState][]DraftState{
	DraftIdle:       {DraftValidating, DraftIdle},
	DraftValidating: {DraftIdle, DraftSubmitting},
	DraftSubmitting: {DraftSucceeded, DraftFailed},
	DraftFailed:     {DraftValidating, DraftIdle},
	DraftSucceeded:  {DraftIdle},
}

// CanTransition indica si el paso from → to está permitido.
func CanTransition(from, to DraftState) bool {
	for _, s := range draftTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Draft borrador en curso de una pré-nota.
type Draft struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	Header           DraftHeader   `json:"header"`
	Items            []DraftItem   `json:"items"`
	Installments     []Installment `json:"installments"`
	Attachments      []Attachment  `json:"attachments"`
	IdempotencyToken string        `json:"idempotency_token"`
	Status           DraftStatus   `json:"status"`
	Revision         int           `json:"revision"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Transition cambia el estado si la transición es válida.
func (d *Draft) Transition(to DraftStatus) error {
	if !CanTransition(d.Status.State, to.State) {
		return fmt.Errorf("%w: borrador %s %s → %s", domain.ErrInvalidTransition, d.ID, d.Status.State, to.State)
	}
	d.Status = to
	return nil
}

// ItemsTotal suma de los totales de las líneas.
func (d *Draft) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range d.Items {
		sum = sum.Add(it.TotalValue)
	}
	return sum
}

// Total valor contra el que se reparte el rateio: el total declarado en cabecera
// o, si no se informó, la suma de las líneas.
func (d *Draft) Total() decimal.Decimal {
	if d.Header.TotalValue.GreaterThan(decimal.Zero) {
		return d.Header.TotalValue
	}
	return d.ItemsTotal()
}

// Clone copia profunda (las secciones son slices).
func (d *Draft) Clone() *Draft {
	c := *d
	c.Items = append([]DraftItem(nil), d.Items...)
	c.Installments = append([]Installment(nil), d.Installments...)
	c.Attachments = append([]Attachment(nil), d.Attachments...)
	return &c
}
