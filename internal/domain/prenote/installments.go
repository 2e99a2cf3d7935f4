package prenote

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ComputeRemaining total − Σ installments.amount.
func ComputeRemaining(total decimal.Decimal, installments []entity.Installment) decimal.Decimal {
	rem := total
	for _, inst := range installments {
		rem = rem.Sub(inst.Amount)
	}
	return rem
}

// ResolveAmount completa el par percentage/amount: si solo viene el porcentaje, el valor se
// calcula sobre el total; si viene el valor, el porcentaje se deriva.
func ResolveAmount(total decimal.Decimal, inst entity.Installment) (entity.Installment, error) {
	switch {
	case inst.Amount.GreaterThan(decimal.Zero):
		if total.GreaterThan(decimal.Zero) {
			inst.Percentage = inst.Amount.Div(total).Mul(hundred).Round(4)
		}
	case inst.Percentage.GreaterThan(decimal.Zero):
		if inst.Percentage.GreaterThan(hundred) {
			return inst, fmt.Errorf("%w: porcentaje mayor que 100", domain.ErrInvalidInput)
		}
		inst.Amount = total.Mul(inst.Percentage).Div(hundred).Round(2)
	default:
		return inst, fmt.Errorf("%w: informe valor o porcentaje del rateio", domain.ErrInvalidInput)
	}
	return inst, nil
}

// CheckInstallment rechaza en el borde de edición un rateio que dejaría el saldo negativo.
// replace es el índice que se está editando (su valor anterior no cuenta) o -1 para uno nuevo.
func CheckInstallment(total decimal.Decimal, existing []entity.Installment, replace int, amount decimal.Decimal) error {
	others := make([]entity.Installment, 0, len(existing))
	for i, inst := range existing {
		if i != replace {
			others = append(others, inst)
		}
	}
	remaining := ComputeRemaining(total, others)
	if amount.GreaterThan(remaining) {
		return fmt.Errorf("%w: valor %s, saldo %s", domain.ErrRemainingExceeded, amount.StringFixed(2), remaining.StringFixed(2))
	}
	return nil
}
