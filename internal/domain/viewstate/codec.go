package viewstate

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion versión actual del sobre persistido.
const SchemaVersion = 1

// ErrUnsupportedSchema el sobre fue escrito por una versión más nueva del hub.
var ErrUnsupportedSchema = errors.New("viewstate: versión de esquema no soportada")

type envelope struct {
	Schema int             `json:"schema"`
	State  json.RawMessage `json:"state"`
}

// Encode serializa el estado dentro de un sobre versionado.
func Encode(s State) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("viewstate: serializar estado: %w", err)
	}
	return json.Marshal(envelope{Schema: SchemaVersion, State: raw})
}

// Decode lee un sobre versionado. Los datos sin sobre (esquema 0, el formato que guardaba el
// navegador) se migran leyéndolos como State plano.
func Decode(data []byte, opts Options) (State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return State{}, fmt.Errorf("viewstate: sobre inválido: %w", err)
	}
	payload := []byte(env.State)
	switch {
	case env.Schema == 0 || len(env.State) == 0:
		payload = data
	case env.Schema > SchemaVersion:
		return State{}, fmt.Errorf("%w: %d", ErrUnsupportedSchema, env.Schema)
	}

	s := New(opts)
	s.Pagination = Pagination{}
	if err := json.Unmarshal(payload, &s); err != nil {
		return State{}, fmt.Errorf("viewstate: estado inválido: %w", err)
	}
	return sanitize(s, opts), nil
}

// sanitize repara invariantes que un estado persistido pudo haber perdido.
func sanitize(s State, opts Options) State {
	def := New(opts)
	if s.PageSize <= 0 {
		s.PageSize = def.PageSize
	}
	if s.PageIndex < 0 {
		s.PageIndex = 0
	}
	if s.Filters == nil {
		s.Filters = map[string]FilterValue{}
	}
	for k, f := range s.Filters {
		if f.Validate() != nil || f.IsEmpty() {
			delete(s.Filters, k)
		}
	}
	s.Sorting = normalizeSorting(s.Sorting, opts.MultiSort)
	s.Branches = uniqueStrings(s.Branches)
	if s.Pagination.PageSize <= 0 {
		s.Pagination.PageSize = s.PageSize
	}
	if s.Pagination.Page <= 0 {
		s.Pagination.Page = s.PageIndex + 1
	}
	return s
}
