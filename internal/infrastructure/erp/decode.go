package erp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/pkg/jsonrepair"
)

// errRejected el ERP respondió success=false (rechazo de negocio, no falla de red).
var errRejected = errors.New("rechazado por el ERP")

// envelope respuesta estándar de las mutaciones del ERP.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// toUTF8 convierte el cuerpo a UTF-8 según el charset declarado en Content-Type
// o, si no viene, según el charset configurado para el ERP.
func toUTF8(body []byte, contentType, fallback string) ([]byte, error) {
	cs := fallback
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil && params["charset"] != "" {
			cs = params["charset"]
		}
	}
	var cm *charmap.Charmap
	switch strings.ToLower(strings.TrimSpace(cs)) {
	case "iso-8859-1", "latin1", "latin-1", "iso8859-1":
		cm = charmap.ISO8859_1
	case "windows-1252", "cp1252":
		cm = charmap.Windows1252
	default:
		return body, nil
	}
	out, _, err := transform.Bytes(cm.NewDecoder(), body)
	if err != nil {
		return nil, fmt.Errorf("convertir %s a UTF-8: %w", cs, err)
	}
	return out, nil
}

// decode único punto de decodificación de cuerpos del ERP: JSON estricto y, si falla por
// sintaxis, las reglas de pkg/jsonrepair.
func decode(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: cuerpo vacío", domain.ErrMalformedResponse)
	}
	if err := jsonrepair.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

// decodeRows decodifica un listado. Acepta un arreglo, objetos concatenados o un único objeto.
func decodeRows[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []T{}, nil
	}
	var rows []T
	err := decode(trimmed, &rows)
	if err == nil {
		return rows, nil
	}
	if trimmed[0] != '{' {
		return nil, err
	}
	var single T
	if err := decode(trimmed, &single); err != nil {
		return nil, err
	}
	return []T{single}, nil
}

// decodeEnvelope valida el sobre; success=false es un error de negocio del ERP.
func decodeEnvelope(body []byte, data any) (*envelope, error) {
	var env envelope
	if err := decode(body, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "operación rechazada"
		}
		return &env, fmt.Errorf("%w: %w: %s", domain.ErrUpstream, errRejected, msg)
	}
	if data != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := decode(env.Data, data); err != nil {
			return &env, err
		}
	}
	return &env, nil
}

// upstreamError traduce un status no 2xx. 404 se reporta como ErrNotFound; 401/403 como
// ErrUnauthorized; el resto como ErrUpstream con el mensaje del ERP si se puede leer.
func upstreamError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var env envelope
	if err := jsonrepair.Unmarshal(body, &env); err == nil && env.Message != "" {
		msg = env.Message
	}
	if len(msg) > 300 {
		msg = msg[:300]
	}
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	}
	return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, status, msg)
}
