package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrValidation        = errors.New("validación fallida")
	ErrRemainingExceeded = errors.New("el valor supera el saldo disponible para rateio")
	ErrSubmitInFlight    = errors.New("ya hay un envío en curso para este borrador")
	ErrStaleResponse     = errors.New("respuesta obsoleta para el estado actual de la tabla")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrUpstream          = errors.New("error del ERP")
	ErrMalformedResponse = errors.New("respuesta del ERP mal formada")
)

// ValidationError errores de validación por campo (marcadores inline en el front).
type ValidationError struct {
	Section string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Section == "" {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": sección " + e.Section
}

// Unwrap permite errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error { return ErrValidation }
