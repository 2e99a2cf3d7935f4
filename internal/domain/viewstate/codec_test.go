package viewstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

func TestEncodeDecode_SobreVersionado(t *testing.T) {
	s := viewstate.New(opts)
	require.NoError(t, s.SetFilters(map[string]viewstate.FilterValue{
		"status":  viewstate.Set("Pendente"),
		"emissao": viewstate.Range("2026-01-01", ""),
	}))
	require.NoError(t, s.SetPageIndex(1))

	raw, err := viewstate.Encode(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"schema":1`)

	got, err := viewstate.Decode(raw, opts)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

// El navegador guardaba el estado sin sobre y con filtros sin tipo.
func TestDecode_MigraFormatoDelNavegador(t *testing.T) {
	legacy := `{"pageIndex":2,"pageSize":25,"sorting":[{"id":"doc","desc":true}],
		"filters":{"status":"Pendente","filial":["0101","0102"],"emissao":{"from":"2026-01-01","to":"2026-01-31"},"vazio":""},
		"searchTerm":"pneu"}`

	got, err := viewstate.Decode([]byte(legacy), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PageIndex)
	assert.Equal(t, 25, got.PageSize)
	assert.Equal(t, viewstate.Single("Pendente"), got.Filters["status"])
	assert.Equal(t, viewstate.Set("0101", "0102"), got.Filters["filial"])
	assert.Equal(t, viewstate.Range("2026-01-01", "2026-01-31"), got.Filters["emissao"])
	assert.NotContains(t, got.Filters, "vazio")
	assert.Equal(t, 3, got.Pagination.Page)
}

func TestDecode_EsquemaFuturo(t *testing.T) {
	_, err := viewstate.Decode([]byte(`{"schema":99,"state":{}}`), opts)
	assert.ErrorIs(t, err, viewstate.ErrUnsupportedSchema)
}
