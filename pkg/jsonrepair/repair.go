// Package jsonrepair corrige el JSON mal formado que emiten algunos endpoints del ERP.
//
// Reglas (únicas y en este orden):
//  1. Un '}' seguido, tras espacios opcionales, de un '{' fuera de strings recibe una coma.
//  2. Si el resultado tiene más de un valor de nivel superior, se envuelve en [...].
//
// Ejemplo: {"a":1}{"b":2} → [{"a":1},{"b":2}]
package jsonrepair

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnrepairable el cuerpo no es JSON válido ni tras aplicar las reglas de reparación.
var ErrUnrepairable = errors.New("jsonrepair: JSON irreparable")

// Repair aplica las reglas de reparación y devuelve el JSON resultante.
// El segundo valor indica si hubo algún cambio.
func Repair(data []byte) ([]byte, bool) {
	data = bytes.TrimSpace(data)
	out := make([]byte, 0, len(data)+8)

	var (
		inString  bool
		escaped   bool
		depth     int
		topValues int
		changed   bool
	)
	for i := 0; i < len(data); i++ {
		c := data[i]
		out = append(out, c)

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				topValues++
			}
			if c == '}' && nextNonSpace(data, i+1) == '{' {
				out = append(out, ',')
				changed = true
			}
		}
	}

	if topValues > 1 {
		wrapped := make([]byte, 0, len(out)+2)
		wrapped = append(wrapped, '[')
		wrapped = append(wrapped, out...)
		wrapped = append(wrapped, ']')
		return wrapped, true
	}
	return out, changed
}

func nextNonSpace(data []byte, from int) byte {
	for j := from; j < len(data); j++ {
		switch data[j] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return data[j]
		}
	}
	return 0
}

// Unmarshal decodifica data en v. Intenta primero el JSON tal cual; si falla por
// sintaxis aplica Repair y reintenta una sola vez.
func Unmarshal(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	fixed, changed := Repair(data)
	if !changed {
		return fmt.Errorf("%w: %v", ErrUnrepairable, err)
	}
	if err := json.Unmarshal(fixed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnrepairable, err)
	}
	return nil
}
