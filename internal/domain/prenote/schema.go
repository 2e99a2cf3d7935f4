// Package prenote reúne las reglas de negocio del borrador de pré-nota: esquemas
// declarativos por sección, saldo de rateio y numeración de ítems.
package prenote

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

// itemTotalTolerance diferencia máxima aceptada entre total y cantidad × valor unitario.
var itemTotalTolerance = decimal.RequireFromString("0.01")

// Schema valida secciones del borrador de forma aislada. Es seguro para uso concurrente.
type Schema struct {
	v *validator.Validate
}

// NewSchema construye el validador con soporte para decimal.Decimal y nombres JSON en los errores.
func NewSchema() *Schema {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Schema{v: v}
}

// ValidateSection aplica el esquema de una sección. Función pura: no modifica el borrador.
// Devuelve *domain.ValidationError con un mensaje por campo, o nil.
func (s *Schema) ValidateSection(d *entity.Draft, section string) error {
	fields := map[string]string{}
	switch section {
	case entity.SectionHeader:
		s.collect(fields, "header", d.Header)
	case entity.SectionItems:
		if len(d.Items) == 0 {
			fields["items"] = "debe haber al menos un ítem"
		}
		seen := map[string]int{}
		for i, it := range d.Items {
			prefix := fmt.Sprintf("items[%d]", i)
			s.collect(fields, prefix, it)
			if prev, dup := seen[it.ItemCode]; dup && it.ItemCode != "" {
				fields[prefix+".item_code"] = fmt.Sprintf("código repetido (ya usado en items[%d])", prev)
			}
			seen[it.ItemCode] = i
			if !ItemTotalMatches(it) {
				fields[prefix+".total_value"] = fmt.Sprintf("total %s no coincide con cantidad × valor unitario (%s)",
					it.TotalValue.StringFixed(2), it.Quantity.Mul(it.UnitValue).StringFixed(2))
			}
		}
	case entity.SectionInstallments:
		for i, inst := range d.Installments {
			s.collect(fields, fmt.Sprintf("installments[%d]", i), inst)
		}
		if len(d.Installments) > 0 {
			if rem := ComputeRemaining(d.Total(), d.Installments); rem.IsNegative() {
				fields["installments"] = fmt.Sprintf("la suma del rateio supera el total en %s", rem.Neg().StringFixed(2))
			}
		}
	case entity.SectionAttachments:
		for i, a := range d.Attachments {
			s.collect(fields, fmt.Sprintf("attachments[%d]", i), a)
		}
	default:
		return fmt.Errorf("%w: sección %q desconocida", domain.ErrInvalidInput, section)
	}
	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Section: section, Fields: fields}
}

// Validate valida todas las secciones; devuelve un único error con todos los campos.
func (s *Schema) Validate(d *entity.Draft) error {
	all := map[string]string{}
	for _, section := range entity.Sections {
		err := s.ValidateSection(d, section)
		if err == nil {
			continue
		}
		verr, ok := err.(*domain.ValidationError)
		if !ok {
			return err
		}
		for k, v := range verr.Fields {
			all[k] = v
		}
	}
	if len(all) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: all}
}

// SectionValidity mapa sección → válida, para habilitar "siguiente paso" en el front.
func (s *Schema) SectionValidity(d *entity.Draft) map[string]bool {
	out := make(map[string]bool, len(entity.Sections))
	for _, section := range entity.Sections {
		out[section] = s.ValidateSection(d, section) == nil
	}
	return out
}

func (s *Schema) collect(fields map[string]string, prefix string, v interface{}) {
	err := s.v.Struct(v)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields[prefix] = err.Error()
		return
	}
	for _, fe := range verrs {
		fields[prefix+"."+fe.Field()] = message(fe)
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "obligatorio"
	case "max":
		return "máximo " + fe.Param() + " caracteres"
	case "len":
		return "debe tener " + fe.Param() + " caracteres"
	case "numeric":
		return "solo dígitos"
	case "datetime":
		return "fecha inválida (AAAA-MM-DD)"
	case "oneof":
		return "valor no permitido (" + fe.Param() + ")"
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "gte":
		return "debe ser mayor o igual a " + fe.Param()
	case "lte":
		return "debe ser menor o igual a " + fe.Param()
	}
	return fe.Error()
}

// ItemTotalMatches total ≈ cantidad × valor unitario (tolerancia de un centavo).
func ItemTotalMatches(it entity.DraftItem) bool {
	expected := it.Quantity.Mul(it.UnitValue)
	return it.TotalValue.Sub(expected).Abs().LessThanOrEqual(itemTotalTolerance)
}
