package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/hub-portal/internal/domain/repository"
	"github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

var _ repository.ViewStateRepository = (*ViewStateStore)(nil)

// maxWatchRetries reintentos de la transacción optimista cuando otra escritura toca la misma clave.
const maxWatchRetries = 3

// ViewStateStore guarda el estado de tablas en Redis, una clave por (usuario, pantalla).
type ViewStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	opts   func(screen string) viewstate.Options
	log    zerolog.Logger
}

// NewViewStateStore construye el store. opts devuelve las opciones de cada pantalla.
func NewViewStateStore(client *redis.Client, prefix string, ttl time.Duration, opts func(screen string) viewstate.Options, log zerolog.Logger) *ViewStateStore {
	if prefix == "" {
		prefix = "hub:viewstate"
	}
	return &ViewStateStore{client: client, prefix: prefix, ttl: ttl, opts: opts, log: log}
}

// Key clave Redis de una pantalla.
func (s *ViewStateStore) Key(userID, screen string) string {
	return s.prefix + ":" + userID + ":" + screen
}

// Load lee el estado; si no existe o no se puede leer devuelve el estado por defecto.
func (s *ViewStateStore) Load(ctx context.Context, userID, screen string) (viewstate.State, bool, error) {
	data, err := s.client.Get(ctx, s.Key(userID, screen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return viewstate.New(s.opts(screen)), false, nil
	}
	if err != nil {
		return viewstate.State{}, false, fmt.Errorf("redis: leer estado de tabla: %w", err)
	}
	return s.decode(data, userID, screen), true, nil
}

// Update lectura-modificación-escritura bajo WATCH; si otra escritura gana se reintenta.
func (s *ViewStateStore) Update(ctx context.Context, userID, screen string, fn func(*viewstate.State) error) (viewstate.State, error) {
	key := s.Key(userID, screen)
	var result viewstate.State

	txf := func(tx *redis.Tx) error {
		st := viewstate.New(s.opts(screen))
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis: leer estado de tabla: %w", err)
		default:
			st = s.decode(data, userID, screen)
		}

		if err := fn(&st); err != nil {
			return err
		}
		raw, err := viewstate.Encode(st)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.ttl)
			return nil
		})
		if err == nil {
			result = st
		}
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug().Str("key", key).Int("attempt", i+1).Msg("conflicto de escritura en estado de tabla, reintentando")
			continue
		}
		return viewstate.State{}, err
	}
	return viewstate.State{}, fmt.Errorf("redis: estado de tabla %s: demasiados conflictos de escritura", key)
}

// Delete elimina el estado guardado.
func (s *ViewStateStore) Delete(ctx context.Context, userID, screen string) error {
	if err := s.client.Del(ctx, s.Key(userID, screen)).Err(); err != nil {
		return fmt.Errorf("redis: borrar estado de tabla: %w", err)
	}
	return nil
}

// decode nunca falla: un sobre ilegible o de una versión futura se reemplaza por el estado por defecto.
func (s *ViewStateStore) decode(data []byte, userID, screen string) viewstate.State {
	opts := s.opts(screen)
	st, err := viewstate.Decode(data, opts)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("screen", screen).Msg("estado de tabla descartado")
		return viewstate.New(opts)
	}
	return st
}
