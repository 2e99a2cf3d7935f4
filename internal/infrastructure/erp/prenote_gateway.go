package erp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jhoicas/hub-portal/internal/application/ports"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

var _ ports.PreNoteGateway = (*Client)(nil)

func keyValues(k entity.PreNoteKey) url.Values {
	v := url.Values{}
	v.Set("filial", k.Branch)
	v.Set("doc", k.DocumentNumber)
	v.Set("serie", k.Series)
	v.Set("fornece", k.Supplier)
	if k.SupplierStore != "" {
		v.Set("loja", k.SupplierStore)
	}
	return v
}

type keyBody struct {
	Branch        string `json:"filial"`
	Document      string `json:"doc"`
	Series        string `json:"serie"`
	Supplier      string `json:"fornece"`
	SupplierStore string `json:"loja,omitempty"`
}

func newKeyBody(k entity.PreNoteKey) keyBody {
	return keyBody{Branch: k.Branch, Document: k.DocumentNumber, Series: k.Series, Supplier: k.Supplier, SupplierStore: k.SupplierStore}
}

// ListPreNotes GET /prenotas con la consulta de la tabla.
func (c *Client) ListPreNotes(ctx context.Context, q ports.ListQuery) (*ports.PreNotePage, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/prenotas", query: listValues(q)})
	if err != nil {
		return nil, fmt.Errorf("erp: listar pré-notas: %w", err)
	}
	rows, err := decodeRows[preNoteRow](resp.body)
	if err != nil {
		return nil, fmt.Errorf("erp: listar pré-notas: %w", err)
	}
	page := &ports.PreNotePage{Items: make([]entity.PreNote, 0, len(rows))}
	for _, r := range rows {
		page.Items = append(page.Items, r.toEntity())
	}
	page.TotalCount = totalFromHeader(resp, q, len(rows))
	return page, nil
}

// GetPreNote GET /prenotas/detalhe.
func (c *Client) GetPreNote(ctx context.Context, id string) (*entity.PreNote, error) {
	key, err := entity.ParsePreNoteKey(id)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/prenotas/detalhe", query: keyValues(key)})
	if err != nil {
		return nil, fmt.Errorf("erp: detalle pré-nota: %w", err)
	}
	// el detalle puede venir como objeto único o como cabecera seguida de objetos sueltos
	rows, err := decodeRows[preNoteRow](resp.body)
	if err != nil {
		return nil, fmt.Errorf("erp: detalle pré-nota: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	p := rows[0].toEntity()
	return &p, nil
}

// SubmitPreNote POST /prenotas. Un único intento; el ERP deduplica por Idempotency-Key.
func (c *Client) SubmitPreNote(ctx context.Context, d *entity.Draft, idempotencyKey string) (*ports.SubmitResult, error) {
	var created keyBody
	env, err := c.mutate(ctx, http.MethodPost, "/prenotas", newSubmitPayload(d),
		map[string]string{"Idempotency-Key": idempotencyKey}, &created)
	if err != nil {
		return nil, fmt.Errorf("erp: incluir pré-nota: %w", err)
	}
	res := &ports.SubmitResult{Message: env.Message}
	if created.Document != "" {
		res.PreNoteID = entity.PreNoteKey{
			Branch: created.Branch, DocumentNumber: created.Document, Series: created.Series,
			Supplier: created.Supplier, SupplierStore: created.SupplierStore,
		}.String()
	}
	return res, nil
}

// ClassifyPreNote PUT /prenotas/classificacao.
func (c *Client) ClassifyPreNote(ctx context.Context, id string, cl entity.PreNoteClassification, userID string) error {
	key, err := entity.ParsePreNoteKey(id)
	if err != nil {
		return err
	}
	body := struct {
		keyBody
		OperationType string `json:"tes"`
		CostCenter    string `json:"centro_custo"`
		AccountCode   string `json:"conta"`
		Category      string `json:"categoria,omitempty"`
		Notes         string `json:"obs_classificacao,omitempty"`
		User          string `json:"usuario"`
	}{newKeyBody(key), cl.OperationType, cl.CostCenter, cl.AccountCode, cl.Category, cl.Notes, userID}
	if _, err := c.mutate(ctx, http.MethodPut, "/prenotas/classificacao", body, nil, nil); err != nil {
		return fmt.Errorf("erp: clasificar pré-nota: %w", err)
	}
	return nil
}

// ReviewPreNote PUT /prenotas/revisao (aprobar o rechazar).
func (c *Client) ReviewPreNote(ctx context.Context, id string, approve bool, reason, userID string) error {
	key, err := entity.ParsePreNoteKey(id)
	if err != nil {
		return err
	}
	action := "rejeitar"
	if approve {
		action = "aprovar"
	}
	body := struct {
		keyBody
		Action string `json:"acao"`
		Reason string `json:"motivo,omitempty"`
		User   string `json:"usuario"`
	}{newKeyBody(key), action, reason, userID}
	if _, err := c.mutate(ctx, http.MethodPut, "/prenotas/revisao", body, nil, nil); err != nil {
		return fmt.Errorf("erp: revisar pré-nota: %w", err)
	}
	return nil
}
