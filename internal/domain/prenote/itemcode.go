package prenote

import (
	"fmt"
	"strconv"

	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

const (
	itemCodeWidth = 4
	itemCodeMax   = 9999
)

// NextItemCode siguiente código secuencial (4 dígitos con ceros a la izquierda) a partir del
// mayor código numérico existente. Los códigos no numéricos se ignoran.
func NextItemCode(codes []string) (string, error) {
	max := 0
	for _, c := range codes {
		n, err := strconv.Atoi(c)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	if max >= itemCodeMax {
		return "", fmt.Errorf("%w: se alcanzó el máximo de %d ítems", domain.ErrInvalidInput, itemCodeMax)
	}
	return fmt.Sprintf("%0*d", itemCodeWidth, max+1), nil
}

// ItemCodes extrae los códigos de las líneas del borrador.
func ItemCodes(items []entity.DraftItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ItemCode)
	}
	return out
}
