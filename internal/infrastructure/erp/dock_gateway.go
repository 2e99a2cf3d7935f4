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

var _ ports.DockGateway = (*Client)(nil)

// ListDockMovements GET /doca/movimentos.
func (c *Client) ListDockMovements(ctx context.Context, q ports.ListQuery) (*ports.DockPage, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/doca/movimentos", query: listValues(q)})
	if err != nil {
		return nil, fmt.Errorf("erp: listar movimientos de andén: %w", err)
	}
	rows, err := decodeRows[dockRow](resp.body)
	if err != nil {
		return nil, fmt.Errorf("erp: listar movimientos de andén: %w", err)
	}
	page := &ports.DockPage{Items: make([]entity.DockMovement, 0, len(rows))}
	for _, r := range rows {
		page.Items = append(page.Items, r.toEntity())
	}
	page.TotalCount = totalFromHeader(resp, q, len(rows))
	return page, nil
}

// GetDockMovement GET /doca/movimentos/{id}.
func (c *Client) GetDockMovement(ctx context.Context, id string) (*entity.DockMovement, error) {
	var row dockRow
	if _, err := c.getJSON(ctx, "/doca/movimentos/"+url.PathEscape(id), nil, &row); err != nil {
		return nil, fmt.Errorf("erp: movimiento de andén %s: %w", id, err)
	}
	if row.ID == "" {
		return nil, domain.ErrNotFound
	}
	m := row.toEntity()
	return &m, nil
}

// ConfirmDockMovement PUT /doca/movimentos/{id}/conferencia.
func (c *Client) ConfirmDockMovement(ctx context.Context, id, userID string) error {
	body := map[string]string{"usuario": userID}
	if _, err := c.mutate(ctx, http.MethodPut, "/doca/movimentos/"+url.PathEscape(id)+"/conferencia", body, nil, nil); err != nil {
		return fmt.Errorf("erp: conferir movimiento %s: %w", id, err)
	}
	return nil
}

// ReverseDockMovement PUT /doca/movimentos/{id}/estorno.
func (c *Client) ReverseDockMovement(ctx context.Context, id, userID, reason string) error {
	body := map[string]string{"usuario": userID, "motivo": reason}
	if _, err := c.mutate(ctx, http.MethodPut, "/doca/movimentos/"+url.PathEscape(id)+"/estorno", body, nil, nil); err != nil {
		return fmt.Errorf("erp: estornar movimiento %s: %w", id, err)
	}
	return nil
}
