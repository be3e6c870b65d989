package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dejargonator/dejargonator/internal/apperrors"
	"github.com/dejargonator/dejargonator/internal/models"
)

// fakeGateway is an in-memory AnalysisGateway with per-operation failure
// injection.
type fakeGateway struct {
	rows   []models.Analysis
	nextID int64

	failList   bool
	failInsert bool
	failUpdate bool
	failDelete bool
}

var errGatewayDown = errors.New("gateway down")

func newFakeGateway() *fakeGateway {
	return &fakeGateway{nextID: 1000}
}

func (g *fakeGateway) seed(id int64, owner, status string, createdAt time.Time) {
	g.rows = append(g.rows, models.Analysis{
		ID:             id,
		OwnerID:        owner,
		JobDescription: "desc",
		AnalysisResult: "analysis",
		Tone:           "professional",
		Persona:        "friendly-mentor",
		Status:         status,
		CreatedAt:      createdAt,
	})
}

func (g *fakeGateway) ListByOwner(_ context.Context, ownerID string) ([]models.Analysis, error) {
	if g.failList {
		return nil, apperrors.Unavailable("list analyses", errGatewayDown)
	}
	var out []models.Analysis
	for _, r := range g.rows {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (g *fakeGateway) Insert(_ context.Context, row *models.Analysis) error {
	if g.failInsert {
		return apperrors.Unavailable("insert analysis", errGatewayDown)
	}
	g.nextID++
	row.ID = g.nextID
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	g.rows = append(g.rows, *row)
	return nil
}

func (g *fakeGateway) UpdateStatus(_ context.Context, ownerID string, id int64, status string) error {
	if g.failUpdate {
		return apperrors.Unavailable("update analysis status", errGatewayDown)
	}
	for i, r := range g.rows {
		if r.ID == id && r.OwnerID == ownerID {
			g.rows[i].Status = status
			return nil
		}
	}
	return apperrors.NotFound("analysis row not found", nil)
}

func (g *fakeGateway) Delete(_ context.Context, ownerID string, id int64) error {
	if g.failDelete {
		return apperrors.Unavailable("delete analysis", errGatewayDown)
	}
	for i, r := range g.rows {
		if r.ID == id && r.OwnerID == ownerID {
			g.rows = append(g.rows[:i], g.rows[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("analysis row not found", nil)
}

// memMirror stores snapshots in a map.
type memMirror struct {
	saved map[string][]byte
}

func newMemMirror() *memMirror { return &memMirror{saved: make(map[string][]byte)} }

func (m *memMirror) Save(_ context.Context, ownerID string, payload []byte) error {
	m.saved[ownerID] = payload
	return nil
}

func (m *memMirror) Load(_ context.Context, ownerID string) ([]byte, bool, error) {
	p, ok := m.saved[ownerID]
	return p, ok, nil
}

// recordingRenderer counts render calls and remembers the changed stages.
type recordingRenderer struct {
	calls   int
	changed [][]models.Stage
}

func (r *recordingRenderer) Render(_ Snapshot, changed ...models.Stage) {
	r.calls++
	r.changed = append(r.changed, changed)
}

func newTestManager(t *testing.T, gw *fakeGateway) (*Manager, *memMirror, *recordingRenderer) {
	t.Helper()
	mi := newMemMirror()
	rr := &recordingRenderer{}
	return NewManager("user-1", gw, mi, rr, zap.NewNop()), mi, rr
}

// assertPartition checks that every id appears in exactly one bucket and
// the union of buckets is the whole collection.
func assertPartition(t *testing.T, snap Snapshot, wantTotal int) {
	t.Helper()
	seen := make(map[int64]models.Stage)
	for stage, recs := range snap {
		for _, rec := range recs {
			if prev, dup := seen[rec.ID]; dup {
				t.Fatalf("record %d in both %s and %s", rec.ID, prev, stage)
			}
			seen[rec.ID] = stage
			assert.Equal(t, stage, rec.Stage, "record %d stage field disagrees with its bucket", rec.ID)
		}
	}
	assert.Len(t, seen, wantTotal)
	assert.Equal(t, wantTotal, snap.Total())
}

func TestLoadPartitionsByStatus(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now().UTC()
	gw.seed(1, "user-1", "applied", now)
	gw.seed(2, "user-1", "offers", now)
	gw.seed(3, "user-1", "", now)          // missing status
	gw.seed(4, "user-1", "archived", now)  // unknown status
	gw.seed(9, "user-2", "applied", now)   // other owner, must not leak

	m, mi, _ := newTestManager(t, gw)
	snap, err := m.Load(context.Background())
	require.NoError(t, err)

	assertPartition(t, snap, 4)
	assert.Equal(t, int64(1), snap[models.StageApplied][0].ID)
	assert.Equal(t, int64(2), snap[models.StageOffers][0].ID)
	// Forward-compatibility rule: unknown and missing statuses land in analyzed.
	ids := []int64{snap[models.StageAnalyzed][0].ID, snap[models.StageAnalyzed][1].ID}
	assert.ElementsMatch(t, []int64{3, 4}, ids)

	_, mirrored := mi.saved["user-1"]
	assert.True(t, mirrored, "successful load must write through to the mirror")
}

func TestLoadUnauthenticated(t *testing.T) {
	m := NewManager("", newFakeGateway(), nil, nil, zap.NewNop())
	_, err := m.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnauthenticated))
}

func TestLoadGatewayFailureLeavesStateEmpty(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(1, "user-1", "applied", time.Now())
	gw.failList = true

	m, _, _ := newTestManager(t, gw)
	snap, err := m.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnavailable))
	assert.Equal(t, 0, snap.Total())
}

func TestMoveNoOpSameStage(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(1, "user-1", "analyzed", time.Now())
	m, _, rr := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	before := m.Snapshot()
	callsBefore := rr.calls
	snap, err := m.MoveTo(context.Background(), 1, models.StageAnalyzed, models.StageAnalyzed)
	require.NoError(t, err)
	assert.Equal(t, before, snap)
	assert.Equal(t, callsBefore, rr.calls, "no-op move must not re-render")
	assert.Equal(t, "analyzed", gw.rows[0].Status)
}

func TestMoveSuccess(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(1, "user-1", "analyzed", time.Now())
	m, mi, rr := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	callsBefore := rr.calls
	snap, err := m.MoveTo(context.Background(), 1, models.StageAnalyzed, models.StageOffers)
	require.NoError(t, err)

	assertPartition(t, snap, 1)
	assert.Empty(t, snap[models.StageAnalyzed])
	require.Len(t, snap[models.StageOffers], 1)
	assert.Equal(t, models.StageOffers, snap[models.StageOffers][0].Stage)
	assert.Equal(t, "offers", gw.rows[0].Status)
	assert.NotEmpty(t, mi.saved["user-1"])
	// Optimistic phase and confirmed phase both render.
	assert.Equal(t, callsBefore+2, rr.calls)
}

func TestMoveRollbackOnGatewayFailure(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now().UTC()
	gw.seed(1, "user-1", "analyzed", now)
	gw.seed(2, "user-1", "analyzed", now.Add(-time.Minute))
	m, _, _ := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	gw.failUpdate = true
	_, err = m.MoveTo(context.Background(), 1, models.StageAnalyzed, models.StageOffers)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnavailable))

	snap := m.Snapshot()
	assertPartition(t, snap, 2)
	assert.Empty(t, snap[models.StageOffers])
	require.Len(t, snap[models.StageAnalyzed], 2)
	// Exact reversal restores the original position and stage.
	assert.Equal(t, int64(1), snap[models.StageAnalyzed][0].ID)
	assert.Equal(t, models.StageAnalyzed, snap[models.StageAnalyzed][0].Stage)
	assert.Equal(t, "analyzed", gw.rows[0].Status)
}

func TestMoveNotFoundInSource(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(1, "user-1", "applied", time.Now())
	m, _, _ := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	_, err = m.MoveTo(context.Background(), 1, models.StageOffers, models.StageRejected)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	snap := m.Snapshot()
	assertPartition(t, snap, 1)
	require.Len(t, snap[models.StageApplied], 1)
}

func TestDeleteRollbackRestoresOriginalPosition(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now().UTC()
	gw.seed(1, "user-1", "toApply", now)
	gw.seed(2, "user-1", "toApply", now.Add(-time.Minute))
	gw.seed(3, "user-1", "toApply", now.Add(-2*time.Minute))
	m, _, _ := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	gw.failDelete = true
	_, err = m.Delete(context.Background(), 2, models.StageToApply)
	require.Error(t, err)

	snap := m.Snapshot()
	assertPartition(t, snap, 3)
	require.Len(t, snap[models.StageToApply], 3)
	assert.Equal(t, int64(2), snap[models.StageToApply][1].ID, "restored record must return to its original index")
}

func TestDeleteSuccessIsPermanent(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(1, "user-1", "rejected", time.Now())
	m, _, _ := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	snap, err := m.Delete(context.Background(), 1, models.StageRejected)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Total())
	assert.Empty(t, gw.rows)
}

func TestDuplicateIsNotOptimistic(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(1, "user-1", "rejected", time.Now())
	m, _, _ := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	gw.failInsert = true
	_, err = m.Duplicate(context.Background(), 1, models.StageRejected)
	require.Error(t, err)

	snap := m.Snapshot()
	assertPartition(t, snap, 1)
	require.Len(t, snap[models.StageRejected], 1)
	assert.Equal(t, int64(1), snap[models.StageRejected][0].ID)
}

func TestDuplicateMintsNewIdentity(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(1, "user-1", "interviewed", time.Now())
	m, _, _ := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	snap, err := m.Duplicate(context.Background(), 1, models.StageInterviewed)
	require.NoError(t, err)

	assertPartition(t, snap, 2)
	bucket := snap[models.StageInterviewed]
	require.Len(t, bucket, 2)
	assert.NotEqual(t, bucket[0].ID, bucket[1].ID)
	assert.Equal(t, bucket[0].JobDescription, bucket[1].JobDescription)
	assert.Equal(t, bucket[0].Analysis, bucket[1].Analysis)
	assert.Len(t, gw.rows, 2)
}

func TestDuplicateNotFound(t *testing.T) {
	gw := newFakeGateway()
	m, _, _ := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	_, err = m.Duplicate(context.Background(), 42, models.StageAnalyzed)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestCreateFromAnalysis(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(1, "user-1", "analyzed", time.Now().Add(-time.Hour))
	m, _, _ := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	rec, err := m.CreateFromAnalysis(context.Background(), AnalysisInput{
		JobDescription: "a brand new posting",
		Analysis:       "the critique",
		Tone:           "snarky",
		Persona:        "hr-insider",
	})
	require.NoError(t, err)
	assert.Greater(t, rec.ID, int64(1000), "record must carry the server-assigned id")
	assert.Equal(t, models.StageAnalyzed, rec.Stage)

	snap := m.Snapshot()
	assertPartition(t, snap, 2)
	assert.Equal(t, rec.ID, snap[models.StageAnalyzed][0].ID, "new records display newest first")
}

func TestCreateFromAnalysisInsertFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.failInsert = true
	m, _, _ := newTestManager(t, gw)

	_, err := m.CreateFromAnalysis(context.Background(), AnalysisInput{JobDescription: "x"})
	require.Error(t, err)
	assert.Equal(t, 0, m.Snapshot().Total())
}

func TestCachedSnapshotRoundTrip(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(1, "user-1", "applied", time.Now().UTC())
	m, _, _ := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	cached, ok := m.CachedSnapshot(context.Background())
	require.True(t, ok)
	require.Len(t, cached[models.StageApplied], 1)
	assert.Equal(t, int64(1), cached[models.StageApplied][0].ID)
}

func TestCachedSnapshotMiss(t *testing.T) {
	m, _, _ := newTestManager(t, newFakeGateway())
	_, ok := m.CachedSnapshot(context.Background())
	assert.False(t, ok)
}

// The end-to-end scenario from the behavioral contract: load two rows, move
// one, delete the other.
func TestLoadMoveDeleteScenario(t *testing.T) {
	gw := newFakeGateway()
	now := time.Now().UTC()
	gw.seed(1, "user-1", "applied", now)
	gw.seed(2, "user-1", "offers", now.Add(-time.Minute))
	m, _, _ := newTestManager(t, gw)

	snap, err := m.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap[models.StageApplied], 1)
	require.Len(t, snap[models.StageOffers], 1)
	assert.Equal(t, 2, snap.Total())

	snap, err = m.MoveTo(context.Background(), 1, models.StageApplied, models.StageInterviewed)
	require.NoError(t, err)
	assert.Empty(t, snap[models.StageApplied])
	require.Len(t, snap[models.StageInterviewed], 1)

	snap, err = m.Delete(context.Background(), 2, models.StageOffers)
	require.NoError(t, err)
	assert.Empty(t, snap[models.StageOffers])
	assert.Equal(t, 1, snap.Total())
	assertPartition(t, snap, 1)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	gw := newFakeGateway()
	gw.seed(1, "user-1", "analyzed", time.Now())
	m, _, _ := newTestManager(t, gw)
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	snap := m.Snapshot()
	snap[models.StageAnalyzed][0].Stage = models.StageOffers
	snap[models.StageAnalyzed][0].ID = 999

	fresh := m.Snapshot()
	assert.Equal(t, int64(1), fresh[models.StageAnalyzed][0].ID)
	assert.Equal(t, models.StageAnalyzed, fresh[models.StageAnalyzed][0].Stage)
}

func TestRegistryReturnsSameSessionManager(t *testing.T) {
	reg := NewRegistry(newFakeGateway(), nil, nil, zap.NewNop())
	a := reg.GetOrCreate("user-1")
	b := reg.GetOrCreate("user-1")
	c := reg.GetOrCreate("user-2")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)

	reg.Drop("user-1")
	assert.NotSame(t, a, reg.GetOrCreate("user-1"))
}
