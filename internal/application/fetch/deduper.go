// Package fetch agrupa las consultas de listado al ERP.
package fetch

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Deduper comparte una misma consulta entre llamadas concurrentes con la misma clave
// (la clave de consulta del estado de tabla). El valor cero está listo para usar.
type Deduper struct {
	group singleflight.Group
}

// Do ejecuta fn una sola vez por clave en vuelo. Cada llamador deja de esperar si su propio
// contexto se cancela; la consulta compartida sigue para los demás. shared indica si el
// resultado vino de otra llamada.
func (d *Deduper) Do(ctx context.Context, key string, fn func(context.Context) (any, error)) (v any, shared bool, err error) {
	ch := d.group.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	}
}
