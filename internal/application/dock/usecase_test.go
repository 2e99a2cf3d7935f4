package dock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-portal/internal/application/audit"
	"github.com/jhoicas/hub-portal/internal/application/dock"
	"github.com/jhoicas/hub-portal/internal/application/ports"
	appvs "github.com/jhoicas/hub-portal/internal/application/viewstate"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	vs "github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

type memViews struct {
	mu     sync.Mutex
	states map[string]vs.State
}

func (m *memViews) Load(_ context.Context, u, s string) (vs.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[u+":"+s]
	if !ok {
		return vs.New(vs.Options{DefaultPageSize: 25}), false, nil
	}
	return st, true, nil
}

func (m *memViews) Update(_ context.Context, u, s string, fn func(*vs.State) error) (vs.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[u+":"+s]
	if !ok {
		st = vs.New(vs.Options{DefaultPageSize: 25})
	}
	if err := fn(&st); err != nil {
		return vs.State{}, err
	}
	m.states[u+":"+s] = st
	return st, nil
}

func (m *memViews) Delete(_ context.Context, u, s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, u+":"+s)
	return nil
}

type fakeDock struct {
	movements map[string]*entity.DockMovement
	queries   []ports.ListQuery
	total     int
	confirmed []string
	reversed  map[string]string
}

func (f *fakeDock) ListDockMovements(_ context.Context, q ports.ListQuery) (*ports.DockPage, error) {
	f.queries = append(f.queries, q)
	return &ports.DockPage{Items: []entity.DockMovement{{ID: "M-1", Status: entity.DockStatusOpen}}, TotalCount: f.total}, nil
}

func (f *fakeDock) GetDockMovement(_ context.Context, id string) (*entity.DockMovement, error) {
	m, ok := f.movements[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeDock) ConfirmDockMovement(_ context.Context, id, _ string) error {
	f.confirmed = append(f.confirmed, id)
	return nil
}

func (f *fakeDock) ReverseDockMovement(_ context.Context, id, _ string, reason string) error {
	f.reversed[id] = reason
	return nil
}

type recorder struct{ events []audit.Event }

func (r *recorder) Record(_ context.Context, ev audit.Event) (*entity.AuditEntry, error) {
	r.events = append(r.events, ev)
	return &entity.AuditEntry{}, nil
}

func setup() (*dock.UseCase, *fakeDock, *recorder) {
	gw := &fakeDock{movements: map[string]*entity.DockMovement{}, reversed: map[string]string{}}
	rec := &recorder{}
	views := appvs.NewController(&memViews{states: map[string]vs.State{}},
		appvs.StaticOptions(vs.Options{DefaultPageSize: 25, PageSizeOptions: vs.DefaultPageSizeOptions}), zerolog.Nop())
	return dock.NewUseCase(gw, views, rec, zerolog.Nop()), gw, rec
}

var operator = ports.Actor{UserID: "op1", Branch: "0201", Role: entity.RoleDock}

func TestList(t *testing.T) {
	uc, gw, _ := setup()
	gw.total = 1

	out, err := uc.List(context.Background(), operator)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, appvs.ScreenDock, out.ViewState.Screen)
	assert.Equal(t, 1, out.Pagination.TotalCount)
	assert.Equal(t, 25, gw.queries[0].PageSize)
	assert.Equal(t, []string{"0201"}, gw.queries[0].Branches)
}

func TestConfirm(t *testing.T) {
	uc, gw, rec := setup()
	gw.movements["M-1"] = &entity.DockMovement{ID: "M-1", Status: entity.DockStatusOpen, Plate: "ABC1D23"}

	out, err := uc.Confirm(context.Background(), operator, "M-1")
	require.NoError(t, err)
	assert.Equal(t, entity.DockStatusConfirmed, out.Status)
	assert.Equal(t, "op1", out.ConfirmedBy)
	assert.Equal(t, []string{"M-1"}, gw.confirmed)
	require.Len(t, rec.events, 1)
	assert.Equal(t, entity.AuditActionConfirm, rec.events[0].Action)

	// un movimiento conferido no se vuelve a conferir
	gw.movements["M-1"].Status = entity.DockStatusConfirmed
	_, err = uc.Confirm(context.Background(), operator, "M-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReverse(t *testing.T) {
	uc, gw, rec := setup()
	gw.movements["M-2"] = &entity.DockMovement{ID: "M-2", Status: entity.DockStatusConfirmed}
	gw.movements["M-3"] = &entity.DockMovement{ID: "M-3", Status: entity.DockStatusOpen}
	ctx := context.Background()

	_, err := uc.Reverse(ctx, operator, "M-2", " ")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = uc.Reverse(ctx, operator, "M-3", "placa errada")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	out, err := uc.Reverse(ctx, operator, "M-2", "placa errada")
	require.NoError(t, err)
	assert.Equal(t, entity.DockStatusReversed, out.Status)
	assert.Equal(t, "placa errada", gw.reversed["M-2"])
	require.Len(t, rec.events, 1)
	assert.Equal(t, entity.AuditActionReverse, rec.events[0].Action)
}

func TestGet_NoEncontrado(t *testing.T) {
	uc, _, _ := setup()
	_, err := uc.Get(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
