package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/domain"
)

func TestRespondError_Mapeo(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&domain.ValidationError{Fields: map[string]string{"a": "obligatorio"}}, fiber.StatusUnprocessableEntity},
		{fmt.Errorf("%w: saldo 10", domain.ErrRemainingExceeded), fiber.StatusUnprocessableEntity},
		{fmt.Errorf("%w: x", domain.ErrInvalidInput), fiber.StatusBadRequest},
		{domain.ErrNotFound, fiber.StatusNotFound},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized},
		{domain.ErrForbidden, fiber.StatusForbidden},
		{domain.ErrSubmitInFlight, fiber.StatusConflict},
		{domain.ErrStaleResponse, fiber.StatusConflict},
		{fmt.Errorf("enviar: %w", domain.ErrUpstream), fiber.StatusBadGateway},
		{domain.ErrMalformedResponse, fiber.StatusBadGateway},
		{errors.New("otro"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tc.err) })
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		resp.Body.Close()
	}
}

func TestRespondError_InternoNoExponeDetalle(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, fmt.Errorf("guardar borrador: %w", errors.New("pgx: conn 10.0.0.5:5432 closed")))
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "INTERNAL", out.Code)
	assert.NotContains(t, out.Message, "pgx")
	assert.NotContains(t, out.Message, "10.0.0.5")
}
