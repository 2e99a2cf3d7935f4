package erp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jhoicas/hub-portal/internal/application/ports"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
)

var _ ports.AuthGateway = (*Client)(nil)

// Authenticate POST /auth/login. Credenciales rechazadas (401 o success=false) → ErrUnauthorized.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	body := map[string]string{"usuario": username, "senha": password}
	var row loginRow
	_, err := c.mutate(ctx, http.MethodPost, "/auth/login", body, nil, &row)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return nil, err
	case errors.Is(err, errRejected):
		// el ERP responde 200 con success=false cuando la contraseña no coincide
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	case err != nil:
		return nil, fmt.Errorf("erp: login: %w", err)
	}
	u := &entity.User{
		ID:       row.UserID,
		Username: row.Username,
		Name:     strings.TrimSpace(row.Name),
		Branch:   row.Branch,
		Branches: row.Branches,
		Role:     strings.ToLower(row.Role),
	}
	if u.Username == "" {
		u.Username = username
	}
	if u.ID == "" {
		u.ID = u.Username
	}
	if u.Branch == "" && len(u.Branches) > 0 {
		u.Branch = u.Branches[0]
	}
	return u, nil
}
