// Package erp implementa los puertos de salida hacia el REST del ERP.
// Toda respuesta pasa por un único adaptador de decodificación (decode.go).
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/pkg/config"
)

// maxBodyBytes límite de lectura de una respuesta del ERP.
const maxBodyBytes = 8 << 20

// Client cliente HTTP del ERP con autenticación básica de servicio.
type Client struct {
	baseURL        string
	username       string
	password       string
	defaultCharset string
	httpClient     *http.Client
	log            zerolog.Logger
}

// NewClient construye el cliente. Timeout de red según ERP_TIMEOUT; cada llamada lleva además el contexto del request.
func NewClient(cfg config.ERPConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		username:       cfg.Username,
		password:       cfg.Password,
		defaultCharset: cfg.Charset,
		httpClient:     &http.Client{Timeout: timeout},
		log:            log,
	}
}

// request parámetros de una llamada.
type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

// response cuerpo ya convertido a UTF-8 más las cabeceras que interesan.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, r request) (*response, error) {
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("erp: serializar request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("erp: crear HTTP request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: timeout o cancelación: %v", domain.ErrUpstream, ctx.Err())
		}
		return nil, fmt.Errorf("%w: llamada HTTP fallida: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %v", domain.ErrUpstream, err)
	}
	body, err := toUTF8(raw, resp.Header.Get("Content-Type"), c.defaultCharset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	c.log.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("erp call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp.StatusCode, body)
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

// getJSON GET y decodificación del cuerpo en out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) (*response, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}
	if err := decode(resp.body, out); err != nil {
		return nil, err
	}
	return resp, nil
}

// mutate envía una mutación y valida el sobre {success, message, data}.
func (c *Client) mutate(ctx context.Context, method, path string, body any, headers map[string]string, data any) (*envelope, error) {
	resp, err := c.do(ctx, request{method: method, path: path, body: body, headers: headers})
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(resp.body, data)
}
