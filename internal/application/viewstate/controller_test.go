package viewstate_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appvs "github.com/jhoicas/hub-portal/internal/application/viewstate"
	"github.com/jhoicas/hub-portal/internal/domain"
	vs "github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

// memRepo ViewStateRepository en memoria.
type memRepo struct {
	mu     sync.Mutex
	opts   vs.Options
	states map[string]vs.State
}

func newMemRepo(opts vs.Options) *memRepo {
	return &memRepo{opts: opts, states: map[string]vs.State{}}
}

func (m *memRepo) Load(_ context.Context, userID, screen string) (vs.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID+":"+screen]
	if !ok {
		return vs.New(m.opts), false, nil
	}
	return st, true, nil
}

func (m *memRepo) Update(_ context.Context, userID, screen string, fn func(*vs.State) error) (vs.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + ":" + screen
	st, ok := m.states[key]
	if !ok {
		st = vs.New(m.opts)
	}
	if err := fn(&st); err != nil {
		return vs.State{}, err
	}
	m.states[key] = st
	return st, nil
}

func (m *memRepo) Delete(_ context.Context, userID, screen string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID+":"+screen)
	return nil
}

func newController() *appvs.Controller {
	opts := vs.Options{DefaultPageSize: 10, PageSizeOptions: vs.DefaultPageSizeOptions}
	return appvs.NewController(newMemRepo(opts), appvs.StaticOptions(opts), zerolog.Nop())
}

func TestController_EscenarioPendente(t *testing.T) {
	c := newController()
	ctx := context.Background()

	_, err := c.SetFilters(ctx, "u1", appvs.ScreenPreNotes, map[string]vs.FilterValue{"status": vs.Single("Pendente")})
	require.NoError(t, err)
	st, err := c.SetPageSize(ctx, "u1", appvs.ScreenPreNotes, 25)
	require.NoError(t, err)
	assert.Equal(t, 0, st.PageIndex)
	assert.Equal(t, 25, st.PageSize)
	assert.Equal(t, "Pendente", st.Filters["status"].Value)

	st, err = c.SetPagination(ctx, "u1", appvs.ScreenPreNotes,
		vs.Pagination{Page: 1, PageSize: 25, TotalCount: 40, TotalPages: 2}, st.QueryVersion)
	require.NoError(t, err)
	assert.Equal(t, 0, st.PageIndex)
	assert.Equal(t, 40, st.Pagination.TotalCount)
}

func TestController_EcoObsoletoNoSobrescribe(t *testing.T) {
	c := newController()
	ctx := context.Background()

	st, err := c.SetSearchTerm(ctx, "u1", appvs.ScreenDock, "abc")
	require.NoError(t, err)
	issued := st.QueryVersion

	// el usuario cambia el filtro antes de que llegue la respuesta
	_, err = c.SetSearchTerm(ctx, "u1", appvs.ScreenDock, "abcd")
	require.NoError(t, err)

	_, err = c.SetPagination(ctx, "u1", appvs.ScreenDock, vs.Pagination{Page: 1, TotalCount: 99}, issued)
	assert.ErrorIs(t, err, domain.ErrStaleResponse)

	cur, err := c.Get(ctx, "u1", appvs.ScreenDock)
	require.NoError(t, err)
	assert.NotEqual(t, 99, cur.Pagination.TotalCount)
}

func TestController_ToggleSortYClear(t *testing.T) {
	c := newController()
	ctx := context.Background()

	_, err := c.ToggleSort(ctx, "u1", appvs.ScreenPreNotes, "dt_inclusao", false)
	require.NoError(t, err)
	st, err := c.ToggleSort(ctx, "u1", appvs.ScreenPreNotes, "dt_inclusao", true)
	require.NoError(t, err)
	require.Len(t, st.Sorting, 1)
	assert.True(t, st.Sorting[0].Desc)

	_, err = c.SetBranches(ctx, "u1", appvs.ScreenPreNotes, []string{"0101"})
	require.NoError(t, err)
	_, err = c.SetPageIndex(ctx, "u1", appvs.ScreenPreNotes, 3)
	require.NoError(t, err)

	st, err = c.ClearFilters(ctx, "u1", appvs.ScreenPreNotes)
	require.NoError(t, err)
	assert.Equal(t, 0, st.PageIndex)
	assert.Empty(t, st.Branches)
	assert.Len(t, st.Sorting, 1, "limpiar filtros conserva el orden")
}

func TestController_Reconcile(t *testing.T) {
	c := newController()
	ctx := context.Background()

	_, err := c.SetPageIndex(ctx, "u1", appvs.ScreenPreNotes, 4)
	require.NoError(t, err)

	st, changed, err := c.Reconcile(ctx, "u1", appvs.ScreenPreNotes, 12)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, st.PageIndex)

	_, changed, err = c.Reconcile(ctx, "u1", appvs.ScreenPreNotes, 12)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestController_PantallaInvalida(t *testing.T) {
	c := newController()
	_, err := c.Get(context.Background(), "u1", "../otra:clave")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = c.Get(context.Background(), "", appvs.ScreenDock)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestController_Reset(t *testing.T) {
	c := newController()
	ctx := context.Background()
	_, err := c.SetSearchTerm(ctx, "u1", appvs.ScreenDock, "xyz")
	require.NoError(t, err)

	st, err := c.Reset(ctx, "u1", appvs.ScreenDock)
	require.NoError(t, err)
	assert.Empty(t, st.SearchTerm)

	st, err = c.Get(ctx, "u1", appvs.ScreenDock)
	require.NoError(t, err)
	assert.Empty(t, st.SearchTerm)
}

func TestController_ToResponseIncluyeQueryKey(t *testing.T) {
	c := newController()
	st, err := c.SetSearchTerm(context.Background(), "u1", appvs.ScreenDock, "pneu")
	require.NoError(t, err)

	resp := c.ToResponse(appvs.ScreenDock, st)
	assert.Equal(t, st.QueryKey(), resp.QueryKey)
	assert.Equal(t, vs.DefaultPageSizeOptions, resp.PageSizeOptions)
}
