package draft_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-portal/internal/application/audit"
	"github.com/jhoicas/hub-portal/internal/application/draft"
	"github.com/jhoicas/hub-portal/internal/application/dto"
	"github.com/jhoicas/hub-portal/internal/application/ports"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles
// ──────────────────────────────────────────────────────────────────────────────

type memDrafts struct {
	mu        sync.Mutex
	drafts    map[string]*entity.Draft
	conflicts int // próximas escrituras que pierden la revisión
}

func (m *memDrafts) Create(_ context.Context, d *entity.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[d.ID] = d.Clone()
	return nil
}

func (m *memDrafts) GetByID(_ context.Context, id string) (*entity.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, nil
	}
	return d.Clone(), nil
}

func (m *memDrafts) ListByUser(_ context.Context, userID string) ([]*entity.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Draft
	for _, d := range m.drafts {
		if d.UserID == userID {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

func (m *memDrafts) Update(_ context.Context, d *entity.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.drafts[d.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if m.conflicts > 0 {
		m.conflicts--
		cur.Revision++
		return domain.ErrConflict
	}
	if cur.Revision != d.Revision {
		return domain.ErrConflict
	}
	d.Revision++
	m.drafts[d.ID] = d.Clone()
	return nil
}

func (m *memDrafts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, id)
	return nil
}

type memSubmissions struct {
	mu   sync.Mutex
	rows map[string]*entity.Submission
}

func (m *memSubmissions) Create(_ context.Context, s *entity.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[s.IdempotencyKey]; ok {
		return domain.ErrConflict
	}
	m.rows[s.IdempotencyKey] = s
	return nil
}

func (m *memSubmissions) GetByKey(_ context.Context, key string) (*entity.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[key], nil
}

type memAudits struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
}

func (m *memAudits) Create(_ context.Context, e *entity.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAudits) ListByEntity(context.Context, string, string, int, int) ([]*entity.AuditEntry, int, error) {
	return nil, 0, nil
}

type fakeTx struct {
	drafts      *memDrafts
	submissions *memSubmissions
	audits      *memAudits
}

func (f *fakeTx) Run(_ context.Context, fn func(repository.DraftRepository, repository.SubmissionRepository, repository.AuditRepository) error) error {
	return fn(f.drafts, f.submissions, f.audits)
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	keys    []string
	fail    error
	release chan struct{}
	entered chan struct{}
}

func (g *fakeGateway) SubmitPreNote(_ context.Context, d *entity.Draft, key string) (*ports.SubmitResult, error) {
	g.mu.Lock()
	g.calls++
	g.keys = append(g.keys, key)
	g.mu.Unlock()
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	if g.fail != nil {
		return nil, g.fail
	}
	return &ports.SubmitResult{PreNoteID: d.Header.Branch + "|" + d.Header.DocumentNumber, Message: "incluída"}, nil
}

func (g *fakeGateway) ListPreNotes(context.Context, ports.ListQuery) (*ports.PreNotePage, error) {
	return nil, errors.New("no usado")
}
func (g *fakeGateway) GetPreNote(context.Context, string) (*entity.PreNote, error) {
	return nil, errors.New("no usado")
}
func (g *fakeGateway) ClassifyPreNote(context.Context, string, entity.PreNoteClassification, string) error {
	return errors.New("no usado")
}
func (g *fakeGateway) ReviewPreNote(context.Context, string, bool, string, string) error {
	return errors.New("no usado")
}

type fakeNFe struct{ doc *entity.NFeDocument }

func (f fakeNFe) Parse([]byte) (*entity.NFeDocument, error) { return f.doc, nil }

type recorder struct{ events []audit.Event }

func (r *recorder) Record(_ context.Context, ev audit.Event) (*entity.AuditEntry, error) {
	r.events = append(r.events, ev)
	return &entity.AuditEntry{}, nil
}

type fixture struct {
	uc          *draft.UseCase
	drafts      *memDrafts
	submissions *memSubmissions
	audits      *memAudits
	gateway     *fakeGateway
	recorder    *recorder
}

func newFixture(nfeDoc *entity.NFeDocument) *fixture {
	f := &fixture{
		drafts:      &memDrafts{drafts: map[string]*entity.Draft{}},
		submissions: &memSubmissions{rows: map[string]*entity.Submission{}},
		audits:      &memAudits{},
		gateway:     &fakeGateway{},
		recorder:    &recorder{},
	}
	f.uc = draft.NewUseCase(draft.Deps{
		Drafts:      f.drafts,
		Submissions: f.submissions,
		Tx:          &fakeTx{drafts: f.drafts, submissions: f.submissions, audits: f.audits},
		Gateway:     f.gateway,
		NFe:         fakeNFe{doc: nfeDoc},
		Audit:       f.recorder,
	}, zerolog.Nop())
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

var fullHeader = entity.DraftHeader{
	Branch:           "0101",
	Supplier:         "F0001",
	DocumentNumber:   "123",
	Series:           "1",
	PaymentCondition: "001",
	InclusionDate:    "2026-01-10",
	FreightType:      "C",
	Priority:         "2",
}

func (f *fixture) create(t *testing.T, h *entity.DraftHeader) *dto.DraftResponse {
	t.Helper()
	d, err := f.uc.Create(context.Background(), "u1", dto.CreateDraftRequest{Header: h})
	require.NoError(t, err)
	return d
}

func (f *fixture) readyDraft(t *testing.T) *dto.DraftResponse {
	t.Helper()
	h := fullHeader
	d := f.create(t, &h)
	d, err := f.uc.AddItem(context.Background(), "u1", d.ID, dto.ItemRequest{
		ProductCode: "PN175", Quantity: dec("4"), UnitValue: dec("250"), UnitOfMeasure: "un",
	})
	require.NoError(t, err)
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate(t *testing.T) {
	f := newFixture(nil)
	d := f.create(t, nil)

	assert.NotEmpty(t, d.ID)
	assert.NotEmpty(t, d.IdempotencyToken)
	assert.Equal(t, entity.DraftIdle, d.Status.State)
	assert.NotEmpty(t, d.Header.InclusionDate)
	assert.False(t, d.SectionValidity[entity.SectionHeader])
	assert.False(t, d.SectionValidity[entity.SectionItems])
	assert.True(t, d.SectionValidity[entity.SectionAttachments])
}

func TestAddItem_CodigoYTotal(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	d := f.create(t, nil)

	d, err := f.uc.AddItem(ctx, "u1", d.ID, dto.ItemRequest{ItemCode: "0001", ProductCode: "A", Quantity: dec("1"), UnitValue: dec("1"), UnitOfMeasure: "UN"})
	require.NoError(t, err)
	d, err = f.uc.AddItem(ctx, "u1", d.ID, dto.ItemRequest{ItemCode: "0003", ProductCode: "B", Quantity: dec("1"), UnitValue: dec("1"), UnitOfMeasure: "UN"})
	require.NoError(t, err)

	next, err := f.uc.NextItemCode(ctx, "u1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, "0004", next.ItemCode)

	d, err = f.uc.AddItem(ctx, "u1", d.ID, dto.ItemRequest{ProductCode: "C", Quantity: dec("3"), UnitValue: dec("2.5"), UnitOfMeasure: "pc"})
	require.NoError(t, err)
	require.Len(t, d.Items, 3)
	assert.Equal(t, "0004", d.Items[2].ItemCode)
	assert.True(t, dec("7.5").Equal(d.Items[2].TotalValue))
	assert.Equal(t, "PC", d.Items[2].UnitOfMeasure)

	_, err = f.uc.AddItem(ctx, "u1", d.ID, dto.ItemRequest{ItemCode: "0003", ProductCode: "D"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	d := f.readyDraft(t)

	d, err := f.uc.UpdateItem(ctx, "u1", d.ID, 0, dto.ItemPatch{Quantity: ptr(dec("2"))})
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(d.Items[0].TotalValue), "total recalculado")

	_, err = f.uc.UpdateItem(ctx, "u1", d.ID, 5, dto.ItemPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	d, err = f.uc.RemoveItem(ctx, "u1", d.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, d.Items)
}

func TestInstallments_SaldoEnElBordeDeEdicion(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	h := fullHeader
	h.TotalValue = dec("1000")
	d := f.create(t, &h)

	d, err := f.uc.AddInstallment(ctx, "u1", d.ID, dto.InstallmentRequest{Branch: "0101", CostCenter: "CC1", Amount: dec("300")})
	require.NoError(t, err)
	d, err = f.uc.AddInstallment(ctx, "u1", d.ID, dto.InstallmentRequest{Branch: "0101", CostCenter: "CC2", Amount: dec("200")})
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(d.Remaining))

	rem, err := f.uc.Remaining(ctx, "u1", d.ID)
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(rem.Remaining))
	assert.True(t, dec("500").Equal(rem.Allocated))

	_, err = f.uc.AddInstallment(ctx, "u1", d.ID, dto.InstallmentRequest{Branch: "0101", CostCenter: "CC3", Amount: dec("600")})
	assert.ErrorIs(t, err, domain.ErrRemainingExceeded)

	after, err := f.uc.Get(ctx, "u1", d.ID)
	require.NoError(t, err)
	assert.Len(t, after.Installments, 2, "el borrador no cambia")
	assert.Equal(t, d.Revision, after.Revision)
}

func TestInstallments_PorcentajeYEdicion(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	h := fullHeader
	h.TotalValue = dec("1000")
	d := f.create(t, &h)

	d, err := f.uc.AddInstallment(ctx, "u1", d.ID, dto.InstallmentRequest{Branch: "0101", CostCenter: "CC1", Percentage: dec("40")})
	require.NoError(t, err)
	assert.True(t, dec("400").Equal(d.Installments[0].Amount))

	// editar el mismo rateio no cuenta su valor anterior
	d, err = f.uc.UpdateInstallment(ctx, "u1", d.ID, 0, dto.InstallmentPatch{Amount: ptr(dec("1000"))})
	require.NoError(t, err)
	assert.True(t, d.Remaining.IsZero())

	_, err = f.uc.UpdateInstallment(ctx, "u1", d.ID, 0, dto.InstallmentPatch{Percentage: ptr(dec("120"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// bajar el total por debajo de lo rateado
	_, err = f.uc.SetHeader(ctx, "u1", d.ID, dto.HeaderPatch{TotalValue: ptr(dec("900"))})
	assert.ErrorIs(t, err, domain.ErrRemainingExceeded)

	d, err = f.uc.RemoveInstallment(ctx, "u1", d.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, d.Installments)
}

// El total cae a la suma de ítems cuando la cabecera no lo trae: editar ítems o importar
// una NF-e no puede dejar el rateio por encima.
func TestRateio_EdicionesQueReducenElTotal(t *testing.T) {
	ctx := context.Background()
	setup := func(t *testing.T, doc *entity.NFeDocument) (*fixture, *dto.DraftResponse) {
		f := newFixture(doc)
		d := f.readyDraft(t)
		require.True(t, dec("1000").Equal(d.Total))
		d, err := f.uc.AddInstallment(ctx, "u1", d.ID, dto.InstallmentRequest{Branch: "0101", CostCenter: "CC1", Amount: dec("900")})
		require.NoError(t, err)
		return f, d
	}
	unchanged := func(t *testing.T, f *fixture, before *dto.DraftResponse) {
		after, err := f.uc.Get(ctx, "u1", before.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Revision, after.Revision)
		assert.True(t, dec("100").Equal(after.Remaining))
	}

	t.Run("UpdateItem", func(t *testing.T) {
		f, d := setup(t, nil)
		_, err := f.uc.UpdateItem(ctx, "u1", d.ID, 0, dto.ItemPatch{Quantity: ptr(dec("1"))})
		assert.ErrorIs(t, err, domain.ErrRemainingExceeded)
		unchanged(t, f, d)

		out, err := f.uc.UpdateItem(ctx, "u1", d.ID, 0, dto.ItemPatch{Quantity: ptr(dec("5"))})
		require.NoError(t, err)
		assert.True(t, dec("350").Equal(out.Remaining))
	})

	t.Run("RemoveItem", func(t *testing.T) {
		f, d := setup(t, nil)
		_, err := f.uc.RemoveItem(ctx, "u1", d.ID, 0)
		assert.ErrorIs(t, err, domain.ErrRemainingExceeded)
		unchanged(t, f, d)
	})

	t.Run("ImportNFe", func(t *testing.T) {
		f, d := setup(t, &entity.NFeDocument{Number: "555", Total: dec("500")})
		_, err := f.uc.ImportNFe(ctx, "u1", d.ID, []byte("<NFe/>"))
		assert.ErrorIs(t, err, domain.ErrRemainingExceeded)
		unchanged(t, f, d)
	})
}

func TestSetHeader_Parcial(t *testing.T) {
	f := newFixture(nil)
	d := f.create(t, nil)

	d, err := f.uc.SetHeader(context.Background(), "u1", d.ID, dto.HeaderPatch{Branch: ptr(" 0101 "), FreightType: ptr("c")})
	require.NoError(t, err)
	assert.Equal(t, "0101", d.Header.Branch)
	assert.Equal(t, "C", d.Header.FreightType)
	assert.Empty(t, d.Header.Supplier)
}

func TestAttachments(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	d := f.create(t, nil)

	d, err := f.uc.AddAttachment(ctx, "u1", d.ID, dto.AttachmentRequest{Path: "/uploads/nf123.pdf", Description: "DANFE"})
	require.NoError(t, err)
	require.Len(t, d.Attachments, 1)

	_, err = f.uc.AddAttachment(ctx, "u1", d.ID, dto.AttachmentRequest{Path: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	d, err = f.uc.RemoveAttachment(ctx, "u1", d.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, d.Attachments)
}

func TestOtroUsuarioNoAccede(t *testing.T) {
	f := newFixture(nil)
	d := f.create(t, nil)
	_, err := f.uc.Get(context.Background(), "u2", d.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Get(context.Background(), "u1", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMutate_ReintentaConflictoDeRevision(t *testing.T) {
	f := newFixture(nil)
	d := f.create(t, nil)
	f.drafts.conflicts = 1

	d, err := f.uc.SetHeader(context.Background(), "u1", d.ID, dto.HeaderPatch{Branch: ptr("0101")})
	require.NoError(t, err)
	assert.Equal(t, "0101", d.Header.Branch)

	f.drafts.conflicts = 5
	_, err = f.uc.SetHeader(context.Background(), "u1", d.ID, dto.HeaderPatch{Branch: ptr("0102")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReset(t *testing.T) {
	f := newFixture(nil)
	d := f.readyDraft(t)

	out, err := f.uc.Reset(context.Background(), "u1", d.ID)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Empty(t, out.Header.Branch)
	assert.NotEqual(t, d.IdempotencyToken, out.IdempotencyToken)
}

func TestCancel(t *testing.T) {
	f := newFixture(nil)
	d := f.create(t, nil)
	require.NoError(t, f.uc.Cancel(context.Background(), "u1", d.ID))
	assert.Empty(t, f.drafts.drafts)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	h := fullHeader
	d := f.create(t, &h)

	res, err := f.uc.ValidateSection(ctx, "u1", d.ID, entity.SectionHeader)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = f.uc.Validate(ctx, "u1", d.ID)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Fields, "items")
	assert.True(t, res.Sections[entity.SectionHeader])
	assert.False(t, res.Sections[entity.SectionItems])

	_, err = f.uc.ValidateSection(ctx, "u1", d.ID, "impostos")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Envío
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_SinItemsNoLlamaAlERP(t *testing.T) {
	f := newFixture(nil)
	h := fullHeader
	d := f.create(t, &h)

	_, err := f.uc.Submit(context.Background(), "u1", d.ID, "")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items")
	assert.Zero(t, f.gateway.calls)

	after, err := f.uc.Get(context.Background(), "u1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DraftIdle, after.Status.State)
	assert.Equal(t, d.Revision, after.Revision)
}

func TestSubmit_Exito(t *testing.T) {
	f := newFixture(nil)
	d := f.readyDraft(t)

	res, err := f.uc.Submit(context.Background(), "u1", d.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "0101|123", res.PreNoteID)
	assert.False(t, res.Replayed)

	assert.Equal(t, 1, f.gateway.calls)
	assert.Equal(t, []string{d.IdempotencyToken}, f.gateway.keys)
	assert.Contains(t, f.submissions.rows, d.IdempotencyToken)
	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, entity.AuditActionSubmit, f.audits.entries[0].Action)
	assert.NotContains(t, f.drafts.drafts, d.ID, "el borrador se descarta tras el éxito")

	// reintento del cliente con la misma clave: mismo resultado, sin segunda llamada
	again, err := f.uc.Submit(context.Background(), "u1", d.ID, d.IdempotencyToken)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, res.PreNoteID, again.PreNoteID)
	assert.Equal(t, 1, f.gateway.calls)
}

func TestSubmit_FalloConservaBorrador(t *testing.T) {
	f := newFixture(nil)
	d := f.readyDraft(t)
	f.gateway.fail = errors.Join(domain.ErrUpstream, errors.New("documento já existe"))

	_, err := f.uc.Submit(context.Background(), "u1", d.ID, "")
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, 1, f.gateway.calls)

	after, err := f.uc.Get(context.Background(), "u1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DraftFailed, after.Status.State)
	assert.Contains(t, after.Status.Reason, "documento já existe")
	assert.Len(t, after.Items, 1)
	assert.Empty(t, f.submissions.rows)

	// corregir vuelve a edición
	after, err = f.uc.SetHeader(context.Background(), "u1", d.ID, dto.HeaderPatch{DocumentNumber: ptr("124")})
	require.NoError(t, err)
	assert.Equal(t, entity.DraftIdle, after.Status.State)
	assert.Empty(t, after.Status.Reason)
}

func TestSubmit_ConcurrenteRechazado(t *testing.T) {
	f := newFixture(nil)
	d := f.readyDraft(t)
	f.gateway.entered = make(chan struct{}, 1)
	f.gateway.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.uc.Submit(context.Background(), "u1", d.ID, "")
		done <- err
	}()
	<-f.gateway.entered

	_, err := f.uc.Submit(context.Background(), "u1", d.ID, "")
	assert.ErrorIs(t, err, domain.ErrSubmitInFlight)

	// mientras tanto el borrador no se puede editar
	_, err = f.uc.SetHeader(context.Background(), "u1", d.ID, dto.HeaderPatch{Series: ptr("2")})
	assert.ErrorIs(t, err, domain.ErrSubmitInFlight)

	close(f.gateway.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.gateway.calls)
}

func TestSubmit_SubmittingPersistidoDeOtraInstancia(t *testing.T) {
	f := newFixture(nil)
	d := f.readyDraft(t)

	stored := f.drafts.drafts[d.ID]
	stored.Status = entity.StatusSubmitting()
	stored.UpdatedAt = time.Now().UTC()

	_, err := f.uc.Submit(context.Background(), "u1", d.ID, "")
	assert.ErrorIs(t, err, domain.ErrSubmitInFlight)
	assert.Zero(t, f.gateway.calls)

	// abandonado hace tiempo: se reintenta
	stored.UpdatedAt = time.Now().Add(-time.Hour)
	_, err = f.uc.Submit(context.Background(), "u1", d.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.gateway.calls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Importación de NF-e
// ──────────────────────────────────────────────────────────────────────────────

func TestImportNFe(t *testing.T) {
	doc := &entity.NFeDocument{
		AccessKey:    "3526",
		Number:       "555",
		Series:       "1",
		IssueDate:    time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC),
		SupplierCNPJ: "12345678000195",
		Total:        dec("1050"),
		Items: []entity.NFeItem{
			{Number: "1", ProductCode: "PN-175", Description: "Pneu", Unit: "UND", Quantity: dec("4"), UnitValue: dec("250"), TotalValue: dec("1000")},
			{Number: "2", ProductCode: "VLV", Description: "Válvula", Unit: "PC", Quantity: dec("4"), UnitValue: dec("12.5"), TotalValue: dec("50")},
		},
	}
	f := newFixture(doc)
	d := f.create(t, &entity.DraftHeader{Branch: "0101", Series: "9"})

	out, err := f.uc.ImportNFe(context.Background(), "u1", d.ID, []byte("<NFe/>"))
	require.NoError(t, err)
	assert.Equal(t, "555", out.Header.DocumentNumber)
	assert.Equal(t, "9", out.Header.Series, "no pisa lo ya informado")
	assert.Equal(t, "12345678000195", out.Header.Supplier)
	assert.Equal(t, "2026-01-09", out.Header.IssueDate)
	assert.True(t, dec("1050").Equal(out.Total))
	require.Len(t, out.Items, 2)
	assert.Equal(t, "0001", out.Items[0].ItemCode)
	assert.Equal(t, "0002", out.Items[1].ItemCode)
	assert.Equal(t, "UN", out.Items[0].UnitOfMeasure)
	assert.Equal(t, "1", out.Items[0].SourceItem)
	require.Len(t, f.recorder.events, 1)
	assert.Equal(t, entity.AuditActionImport, f.recorder.events[0].Action)
}

func TestApplyNFe_UnidadConAcento(t *testing.T) {
	d := &entity.Draft{}
	require.NoError(t, draft.ApplyNFe(d, &entity.NFeDocument{
		Items: []entity.NFeItem{{Number: "1", ProductCode: "X", Unit: "çxa", Quantity: dec("1")}},
	}))
	require.Len(t, d.Items, 1)
	assert.Equal(t, "ÇX", d.Items[0].UnitOfMeasure)
	assert.True(t, utf8.ValidString(d.Items[0].UnitOfMeasure))
}
