package stocktake

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestock/internal/core/apperror"
	"gestock/internal/core/id"
	"gestock/internal/core/types"
	"gestock/internal/domain/catalogs/unit"
	"gestock/pkg/numerator"
)

type fakeRepo struct {
	docs  map[id.ID]*Stocktake
	lines map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*Stocktake),
		lines: make(map[id.ID][]Line),
	}
}

func (r *fakeRepo) Create(_ context.Context, doc *Stocktake) error {
	cp := *doc
	cp.Lines = nil
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) SaveLines(_ context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = append([]Line(nil), lines...)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*Stocktake, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("stocktake", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetLines(_ context.Context, docID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[docID]...), nil
}

func (r *fakeRepo) List(_ context.Context, warehouseID *id.ID, limit, offset int) ([]Stocktake, error) {
	out := make([]Stocktake, 0, len(r.docs))
	for _, doc := range r.docs {
		if warehouseID != nil && doc.WarehouseID != *warehouseID {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

type fakeUnitRepo struct {
	byCode map[string]*unit.Unit
}

func (r *fakeUnitRepo) Create(context.Context, *unit.Unit) error { return nil }

func (r *fakeUnitRepo) GetByID(_ context.Context, unitID id.ID) (*unit.Unit, error) {
	for _, u := range r.byCode {
		if u.ID == unitID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("unit", unitID.String())
}

func (r *fakeUnitRepo) ListByArticle(context.Context, id.ID) ([]unit.Unit, error) {
	return nil, nil
}

func (r *fakeUnitRepo) ListAll(context.Context) ([]unit.Unit, error) { return nil, nil }

func (r *fakeUnitRepo) FindByArticleCode(_ context.Context, code string) (*unit.Unit, error) {
	u, ok := r.byCode[code]
	if !ok {
		return nil, apperror.NewNotFound("unit", code)
	}
	return u, nil
}

type fakeSnapshotWriter struct {
	appended []Snapshot
}

func (w *fakeSnapshotWriter) Append(_ context.Context, snapshots []Snapshot) error {
	w.appended = append(w.appended, snapshots...)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeSnapshotWriter) {
	t.Helper()

	widgetID := id.New()
	boltID := id.New()
	units := &fakeUnitRepo{byCode: map[string]*unit.Unit{
		"WID-PC":  unit.NewBaseUnit(widgetID, "Piece", "WID-PC"),
		"WID-BOX": unit.NewUnit(widgetID, "Box", 1, decimal.NewFromInt(12), "WID-BOX"),
		"BLT-PC":  unit.NewBaseUnit(boltID, "Piece", "BLT-PC"),
	}}

	repo := newFakeRepo()
	snapshots := &fakeSnapshotWriter{}
	svc := NewService(repo, units, snapshots, numerator.NewMock(), nil)
	return svc, repo, snapshots
}

func TestService_CreateAppendsSnapshotPerLine(t *testing.T) {
	svc, repo, snapshots := newTestService(t)

	countedAt := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	doc := NewStocktake(id.New(), countedAt)
	doc.AddLine("WID-PC", types.NewQuantityFromFloat64(7))
	doc.AddLine("BLT-PC", types.NewQuantityFromFloat64(250))

	require.NoError(t, svc.Create(context.Background(), doc))

	assert.Len(t, repo.docs, 1)
	assert.Len(t, repo.lines[doc.ID], 2)

	require.Len(t, snapshots.appended, 2)
	for i, snap := range snapshots.appended {
		assert.Equal(t, doc.WarehouseID, snap.WarehouseID)
		assert.Equal(t, countedAt, snap.TakenAt)
		assert.Equal(t, doc.Lines[i].ArticleCode, snap.ArticleCode)
		assert.Equal(t, doc.Lines[i].Quantity, snap.Quantity)
	}
}

func TestService_CreateGeneratesNumber(t *testing.T) {
	svc, _, _ := newTestService(t)

	doc := NewStocktake(id.New(), time.Now().UTC())
	doc.AddLine("WID-PC", types.NewQuantityFromFloat64(1))

	require.NoError(t, svc.Create(context.Background(), doc))
	assert.Regexp(t, `^ST-\d{4}-\d{6}$`, doc.Number)
}

func TestService_CreateKeepsExplicitNumber(t *testing.T) {
	svc, _, _ := newTestService(t)

	doc := NewStocktake(id.New(), time.Now().UTC())
	doc.Number = "ST-2025-000099"
	doc.AddLine("WID-PC", types.NewQuantityFromFloat64(1))

	require.NoError(t, svc.Create(context.Background(), doc))
	assert.Equal(t, "ST-2025-000099", doc.Number)
}

// fakeTxManager records whether a transaction is active while fn runs.
type fakeTxManager struct {
	active bool
	calls  int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	m.active = true
	defer func() { m.active = false }()
	return fn(ctx)
}

// txObservingNumbers captures the transaction state at allocation time.
type txObservingNumbers struct {
	txm      *fakeTxManager
	insideTx bool
}

func (g *txObservingNumbers) NextNumber(_ context.Context, prefix string, at time.Time) (string, error) {
	g.insideTx = g.txm.active
	return fmt.Sprintf("%s-%d-%06d", prefix, at.Year(), 1), nil
}

func TestService_CreateAllocatesNumberInsideTransaction(t *testing.T) {
	widgetID := id.New()
	units := &fakeUnitRepo{byCode: map[string]*unit.Unit{
		"WID-PC": unit.NewBaseUnit(widgetID, "Piece", "WID-PC"),
	}}
	txm := &fakeTxManager{}
	numbers := &txObservingNumbers{txm: txm}
	svc := NewService(newFakeRepo(), units, &fakeSnapshotWriter{}, numbers, txm)

	doc := NewStocktake(id.New(), time.Now().UTC())
	doc.AddLine("WID-PC", types.NewQuantityFromFloat64(1))

	require.NoError(t, svc.Create(context.Background(), doc))
	assert.Equal(t, 1, txm.calls)
	// A failed create must roll the allocation back with the document, so
	// the sequence increment has to run on the transaction.
	assert.True(t, numbers.insideTx)
	assert.NotEmpty(t, doc.Number)
}

func TestService_CreateRejectsUnknownArticleCode(t *testing.T) {
	svc, repo, snapshots := newTestService(t)

	doc := NewStocktake(id.New(), time.Now().UTC())
	doc.AddLine("NOPE-123", types.NewQuantityFromFloat64(5))

	err := svc.Create(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Empty(t, repo.docs)
	assert.Empty(t, snapshots.appended)
}

func TestService_CreateRejectsInvalidDocument(t *testing.T) {
	svc, _, _ := newTestService(t)

	// No lines.
	doc := NewStocktake(id.New(), time.Now().UTC())
	err := svc.Create(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	// Negative count.
	doc = NewStocktake(id.New(), time.Now().UTC())
	doc.AddLine("WID-PC", types.NewQuantityFromFloat64(-1))
	err = svc.Create(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	// Duplicate code.
	doc = NewStocktake(id.New(), time.Now().UTC())
	doc.AddLine("WID-PC", types.NewQuantityFromFloat64(1))
	doc.AddLine("WID-PC", types.NewQuantityFromFloat64(2))
	err = svc.Create(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_CreateRejectsSameArticleUnderTwoCodes(t *testing.T) {
	svc, repo, snapshots := newTestService(t)

	// Both codes resolve to the widget; accepting them would append two
	// snapshots with the same (article, warehouse, taken_at) key and the
	// anchor would pick one of them arbitrarily.
	doc := NewStocktake(id.New(), time.Now().UTC())
	doc.AddLine("WID-BOX", types.NewQuantityFromFloat64(2))
	doc.AddLine("WID-PC", types.NewQuantityFromFloat64(4))

	err := svc.Create(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Empty(t, repo.docs)
	assert.Empty(t, snapshots.appended)
}

func TestService_ZeroCountIsAccepted(t *testing.T) {
	svc, _, snapshots := newTestService(t)

	doc := NewStocktake(id.New(), time.Now().UTC())
	doc.AddLine("WID-PC", types.Quantity(0))

	require.NoError(t, svc.Create(context.Background(), doc))
	require.Len(t, snapshots.appended, 1)
	assert.True(t, snapshots.appended[0].Quantity.IsZero())
}

func TestService_GetByIDReturnsLines(t *testing.T) {
	svc, _, _ := newTestService(t)

	doc := NewStocktake(id.New(), time.Now().UTC())
	doc.AddLine("WID-PC", types.NewQuantityFromFloat64(3))
	require.NoError(t, svc.Create(context.Background(), doc))

	got, err := svc.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "WID-PC", got.Lines[0].ArticleCode)
}
