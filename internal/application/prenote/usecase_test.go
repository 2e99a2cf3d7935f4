package prenote_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-portal/internal/application/audit"
	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/application/ports"
	"github.com/jhoicas/hub-portal/internal/application/prenote"
	appvs "github.com/jhoicas/hub-portal/internal/application/viewstate"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	vs "github.com/jhoicas/hub-portal/internal/domain/viewstate"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles
// ──────────────────────────────────────────────────────────────────────────────

type memViews struct {
	mu     sync.Mutex
	states map[string]vs.State
}

func (m *memViews) Load(_ context.Context, u, s string) (vs.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[u+":"+s]
	if !ok {
		return vs.New(vs.Options{DefaultPageSize: 10}), false, nil
	}
	return st, true, nil
}

func (m *memViews) Update(_ context.Context, u, s string, fn func(*vs.State) error) (vs.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[u+":"+s]
	if !ok {
		st = vs.New(vs.Options{DefaultPageSize: 10})
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

type fakeGateway struct {
	mu       sync.Mutex
	total    int
	queries  []ports.ListQuery
	notes    map[string]*entity.PreNote
	classify int
	reviews  []bool
	fail     error
}

func (g *fakeGateway) ListPreNotes(_ context.Context, q ports.ListQuery) (*ports.PreNotePage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, q)
	n := g.total - q.Offset()
	if n < 0 {
		n = 0
	}
	if n > q.PageSize {
		n = q.PageSize
	}
	items := make([]entity.PreNote, n)
	for i := range items {
		items[i] = entity.PreNote{ID: "0101|x|1|F1|", Status: entity.PreNoteStatusPending}
	}
	return &ports.PreNotePage{Items: items, TotalCount: g.total}, nil
}

func (g *fakeGateway) GetPreNote(_ context.Context, id string) (*entity.PreNote, error) {
	p, ok := g.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (g *fakeGateway) SubmitPreNote(context.Context, *entity.Draft, string) (*ports.SubmitResult, error) {
	return nil, errors.New("no usado")
}

func (g *fakeGateway) ClassifyPreNote(_ context.Context, _ string, _ entity.PreNoteClassification, _ string) error {
	g.classify++
	return g.fail
}

func (g *fakeGateway) ReviewPreNote(_ context.Context, _ string, approve bool, _ string, _ string) error {
	if g.fail != nil {
		return g.fail
	}
	g.reviews = append(g.reviews, approve)
	return nil
}

type fakeRecorder struct {
	events []audit.Event
	err    error
}

func (r *fakeRecorder) Record(_ context.Context, ev audit.Event) (*entity.AuditEntry, error) {
	r.events = append(r.events, ev)
	return &entity.AuditEntry{}, r.err
}

func setup(t *testing.T) (*prenote.UseCase, *fakeGateway, *fakeRecorder, *appvs.Controller) {
	t.Helper()
	gw := &fakeGateway{notes: map[string]*entity.PreNote{}}
	rec := &fakeRecorder{}
	views := appvs.NewController(&memViews{states: map[string]vs.State{}},
		appvs.StaticOptions(vs.Options{DefaultPageSize: 10, PageSizeOptions: vs.DefaultPageSizeOptions}), zerolog.Nop())
	return prenote.NewUseCase(gw, views, rec, zerolog.Nop()), gw, rec, views
}

var buyer = ports.Actor{UserID: "u1", Branch: "0101", Role: entity.RoleBuyer}

// ──────────────────────────────────────────────────────────────────────────────
// Listado
// ──────────────────────────────────────────────────────────────────────────────

func TestList_EcoDePaginacion(t *testing.T) {
	uc, gw, _, _ := setup(t)
	gw.total = 40

	out, err := uc.List(context.Background(), buyer, appvs.ScreenPreNotes)
	require.NoError(t, err)
	assert.Len(t, out.Items, 10)
	assert.Equal(t, 40, out.Pagination.TotalCount)
	assert.Equal(t, 4, out.Pagination.TotalPages)
	assert.Equal(t, 1, out.Pagination.Page)
	// sin filiales elegidas un comprador ve solo su filial
	require.Len(t, gw.queries, 1)
	assert.Equal(t, []string{"0101"}, gw.queries[0].Branches)
}

func TestList_AdminSinFilialPorDefecto(t *testing.T) {
	uc, gw, _, _ := setup(t)
	gw.total = 1
	_, err := uc.List(context.Background(), ports.Actor{UserID: "adm", Branch: "0101", Role: entity.RoleAdmin}, appvs.ScreenPreNotes)
	require.NoError(t, err)
	assert.Empty(t, gw.queries[0].Branches)
}

func TestList_PaginaFueraDeRangoVuelveAlInicio(t *testing.T) {
	uc, gw, _, views := setup(t)
	ctx := context.Background()
	_, err := views.SetPageIndex(ctx, "u1", appvs.ScreenPreNotes, 3)
	require.NoError(t, err)
	gw.total = 12

	out, err := uc.List(ctx, buyer, appvs.ScreenPreNotes)
	require.NoError(t, err)
	require.Len(t, gw.queries, 2, "una consulta extra tras reconciliar")
	assert.Equal(t, 4, gw.queries[0].Page)
	assert.Equal(t, 1, gw.queries[1].Page)
	assert.Equal(t, 0, out.ViewState.PageIndex)
	assert.Equal(t, 12, out.Pagination.TotalCount)
	assert.Len(t, out.Items, 10)
}

func TestList_PantallaDeTrabajoFijaEstado(t *testing.T) {
	uc, gw, _, _ := setup(t)
	gw.total = 3

	_, err := uc.List(context.Background(), buyer, appvs.ScreenApproval)
	require.NoError(t, err)
	assert.Equal(t, entity.PreNoteStatusClassified, gw.queries[0].Filters["status"].Value)

	st, err := uc.List(context.Background(), buyer, appvs.ScreenApproval)
	require.NoError(t, err)
	// el filtro fijo no se guarda en el estado del usuario
	assert.Empty(t, st.ViewState.Filters)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clasificación y revisión
// ──────────────────────────────────────────────────────────────────────────────

func TestClassify(t *testing.T) {
	uc, gw, rec, _ := setup(t)
	gw.notes["p1"] = &entity.PreNote{ID: "p1", Status: entity.PreNoteStatusPending, Total: decimal.NewFromInt(10)}

	out, err := uc.Classify(context.Background(), buyer, "p1", dto.ClassificationDTO{OperationType: " 001 ", CostCenter: "CC1", AccountCode: "1.1"})
	require.NoError(t, err)
	assert.Equal(t, entity.PreNoteStatusClassified, out.Status)
	assert.Equal(t, "001", out.Classification.OperationType)
	assert.Equal(t, 1, gw.classify)
	require.Len(t, rec.events, 1)
	assert.Equal(t, entity.AuditActionClassify, rec.events[0].Action)
	assert.Equal(t, "p1", rec.events[0].EntityID)
}

func TestClassify_EstadoInvalido(t *testing.T) {
	uc, gw, rec, _ := setup(t)
	gw.notes["p1"] = &entity.PreNote{ID: "p1", Status: entity.PreNoteStatusApproved}

	_, err := uc.Classify(context.Background(), buyer, "p1", dto.ClassificationDTO{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Zero(t, gw.classify)
	assert.Empty(t, rec.events)
}

func TestApproveYReject(t *testing.T) {
	uc, gw, rec, _ := setup(t)
	gw.notes["p1"] = &entity.PreNote{ID: "p1", Status: entity.PreNoteStatusClassified}
	ctx := context.Background()

	out, err := uc.Approve(ctx, buyer, "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.PreNoteStatusApproved, out.Status)
	assert.Equal(t, "u1", out.ReviewedBy)
	assert.NotNil(t, out.ReviewedAt)

	out, err = uc.Reject(ctx, buyer, "p1", "valor divergente")
	require.NoError(t, err)
	assert.Equal(t, entity.PreNoteStatusRejected, out.Status)
	assert.Equal(t, "valor divergente", out.RejectReason)

	assert.Equal(t, []bool{true, false}, gw.reviews)
	require.Len(t, rec.events, 2)
	assert.Equal(t, entity.AuditActionReject, rec.events[1].Action)
}

func TestReject_SinMotivo(t *testing.T) {
	uc, gw, _, _ := setup(t)
	gw.notes["p1"] = &entity.PreNote{ID: "p1", Status: entity.PreNoteStatusClassified}

	_, err := uc.Reject(context.Background(), buyer, "p1", "   ")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "reason")
	assert.Empty(t, gw.reviews)
}

func TestApprove_PendienteNoSeRevisa(t *testing.T) {
	uc, gw, _, _ := setup(t)
	gw.notes["p1"] = &entity.PreNote{ID: "p1", Status: entity.PreNoteStatusPending}
	_, err := uc.Approve(context.Background(), buyer, "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApprove_FalloDelERP(t *testing.T) {
	uc, gw, rec, _ := setup(t)
	gw.notes["p1"] = &entity.PreNote{ID: "p1", Status: entity.PreNoteStatusClassified}
	gw.fail = domain.ErrUpstream

	_, err := uc.Approve(context.Background(), buyer, "p1")
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Empty(t, rec.events)
}

func TestApprove_FalloDeAuditoriaNoRevierte(t *testing.T) {
	uc, gw, rec, _ := setup(t)
	gw.notes["p1"] = &entity.PreNote{ID: "p1", Status: entity.PreNoteStatusClassified}
	rec.err = errors.New("db caída")

	out, err := uc.Approve(context.Background(), buyer, "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.PreNoteStatusApproved, out.Status)
}
