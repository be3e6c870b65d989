package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dejargonator/dejargonator/internal/apperrors"
	"github.com/dejargonator/dejargonator/internal/gateway"
	"github.com/dejargonator/dejargonator/internal/mirror"
	"github.com/dejargonator/dejargonator/internal/models"
)

// AnalysisInput is the ingestion contract with the analysis producer: the
// tuple handed over when a critique completes.
type AnalysisInput struct {
	JobDescription string
	Analysis       string
	Tone           string
	Persona        string
}

// Manager owns the canonical in-process view of one user's JobRecords and
// provides the only sanctioned mutations. Each operation leaves memory, the
// local mirror, and the remote gateway eventually consistent: optimistic
// operations mutate memory first and reverse themselves exactly on gateway
// failure. A mutex serializes operations, so calls from one session are
// observed in the order issued. Nothing here retries; retry is an explicit
// re-invocation by the caller.
type Manager struct {
	mu sync.Mutex

	userID   string
	board    *board
	gateway  gateway.AnalysisGateway
	mirror   mirror.Mirror
	renderer Renderer
	logger   *zap.Logger
}

func NewManager(userID string, gw gateway.AnalysisGateway, mi mirror.Mirror, r Renderer, logger *zap.Logger) *Manager {
	if r == nil {
		r = NopRenderer{}
	}
	return &Manager{
		userID:   userID,
		board:    newBoard(),
		gateway:  gw,
		mirror:   mi,
		renderer: r,
		logger:   logger,
	}
}

// Load fetches every record owned by the session user, fully replacing the
// in-memory state. Bucket membership is re-derived from each row's persisted
// status; unknown values land in analyzed. On gateway failure the state is
// left empty and the error is surfaced as a notice, never a panic.
func (m *Manager) Load(ctx context.Context) (Snapshot, error) {
	if m.userID == "" {
		return nil, apperrors.Unauthenticated("sign in to view your dashboard", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.gateway.ListByOwner(ctx, m.userID)
	if err != nil {
		m.board.clear()
		snap := m.board.snapshot()
		m.renderer.Render(snap, models.Stages...)
		m.logger.Warn("dashboard load failed", zap.String("user", m.userID), zap.Error(err))
		return snap, err
	}

	m.board.clear()
	for _, row := range rows {
		rec := recordFromRow(row)
		m.board.push(rec.Stage, rec)
	}

	snap := m.board.snapshot()
	m.writeMirror(ctx, snap)
	m.renderer.Render(snap, models.Stages...)
	m.logger.Info("dashboard loaded",
		zap.String("user", m.userID),
		zap.Int("records", snap.Total()),
	)
	return snap, nil
}

// CachedSnapshot returns the last mirrored snapshot for instant display
// before a remote load resolves. ok is false when no mirror entry exists.
// The mirror is never authoritative; callers must still Load.
func (m *Manager) CachedSnapshot(ctx context.Context) (Snapshot, bool) {
	if m.mirror == nil || m.userID == "" {
		return nil, false
	}
	payload, ok, err := m.mirror.Load(ctx, m.userID)
	if err != nil {
		m.logger.Warn("mirror read failed", zap.String("user", m.userID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		m.logger.Warn("mirror payload corrupt", zap.String("user", m.userID), zap.Error(err))
		return nil, false
	}
	return snap, true
}

// MoveTo transfers a record between stage buckets. The in-memory move is
// optimistic: it is visible to the renderer immediately but not durable
// until the gateway confirms. On gateway failure the move is reversed
// exactly, restoring the record to its original index and stage.
func (m *Manager) MoveTo(ctx context.Context, id int64, from, to models.Stage) (Snapshot, error) {
	if !from.Valid() || !to.Valid() {
		return nil, apperrors.InvalidInput("unknown pipeline stage", nil)
	}
	if m.userID == "" {
		return nil, apperrors.Unauthenticated("sign in to update your dashboard", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if from == to {
		// Already there. Not an error, and nothing to persist.
		return m.board.snapshot(), nil
	}

	originalIdx, ok := applyMove(m.board, id, from, to)
	if !ok {
		return nil, apperrors.NotFound("job not found in "+from.String(), nil)
	}
	m.renderer.Render(m.board.snapshot(), from, to)

	if err := m.gateway.UpdateStatus(ctx, m.userID, id, to.String()); err != nil {
		revertMove(m.board, id, from, to, originalIdx)
		m.renderer.Render(m.board.snapshot(), from, to)
		m.logger.Warn("move failed, reverted",
			zap.Int64("id", id),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err),
		)
		return nil, err
	}

	snap := m.board.snapshot()
	m.writeMirror(ctx, snap)
	m.renderer.Render(snap, from, to)
	return snap, nil
}

// Duplicate copies a record into a new row with a fresh server-assigned id
// and created_at. It is deliberately not optimistic: a client-guessed id
// could collide with the eventual server id, so nothing is appended until
// the gateway confirms.
func (m *Manager) Duplicate(ctx context.Context, id int64, stage models.Stage) (Snapshot, error) {
	if !stage.Valid() {
		return nil, apperrors.InvalidInput("unknown pipeline stage", nil)
	}
	if m.userID == "" {
		return nil, apperrors.Unauthenticated("sign in to update your dashboard", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.board.indexOf(stage, id)
	if i == -1 {
		return nil, apperrors.NotFound("job not found in "+stage.String(), nil)
	}
	src := m.board.buckets[stage][i]

	row := models.Analysis{
		OwnerID:        m.userID,
		JobDescription: src.JobDescription,
		AnalysisResult: src.Analysis,
		Tone:           src.Tone,
		Persona:        src.Persona,
		Status:         stage.String(),
	}
	if err := m.gateway.Insert(ctx, &row); err != nil {
		m.logger.Warn("duplicate failed", zap.Int64("source", id), zap.Error(err))
		return nil, err
	}

	m.board.push(stage, recordFromRow(row))
	snap := m.board.snapshot()
	m.writeMirror(ctx, snap)
	m.renderer.Render(snap, stage)
	return snap, nil
}

// Delete removes a record permanently. The in-memory removal is optimistic;
// on gateway failure the record is re-inserted at its original position.
// Once the gateway confirms there is no recovery path, so callers must
// confirm with the user before invoking this.
func (m *Manager) Delete(ctx context.Context, id int64, stage models.Stage) (Snapshot, error) {
	if !stage.Valid() {
		return nil, apperrors.InvalidInput("unknown pipeline stage", nil)
	}
	if m.userID == "" {
		return nil, apperrors.Unauthenticated("sign in to update your dashboard", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.board.indexOf(stage, id)
	if i == -1 {
		return nil, apperrors.NotFound("job not found in "+stage.String(), nil)
	}
	removed := m.board.removeAt(stage, i)
	m.renderer.Render(m.board.snapshot(), stage)

	if err := m.gateway.Delete(ctx, m.userID, id); err != nil {
		m.board.insertAt(stage, i, removed)
		m.renderer.Render(m.board.snapshot(), stage)
		m.logger.Warn("delete failed, restored", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	snap := m.board.snapshot()
	m.writeMirror(ctx, snap)
	m.renderer.Render(snap, stage)
	m.logger.Info("job deleted permanently", zap.Int64("id", id), zap.String("stage", stage.String()))
	return snap, nil
}

// CreateFromAnalysis ingests a fresh critique from the analysis producer.
// The record starts in analyzed with createdAt now and a temporary
// client-side id until the gateway assigns the real one. Like Duplicate,
// nothing is appended until the insert confirms.
func (m *Manager) CreateFromAnalysis(ctx context.Context, in AnalysisInput) (JobRecord, error) {
	if m.userID == "" {
		return JobRecord{}, apperrors.Unauthenticated("sign in to save analyses", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := JobRecord{
		ID:             time.Now().UnixMilli(), // temporary, replaced on persist
		JobDescription: in.JobDescription,
		Analysis:       in.Analysis,
		Tone:           in.Tone,
		Persona:        in.Persona,
		CreatedAt:      time.Now().UTC(),
		Stage:          models.StageAnalyzed,
	}

	row := models.Analysis{
		OwnerID:        m.userID,
		JobDescription: rec.JobDescription,
		AnalysisResult: rec.Analysis,
		Tone:           rec.Tone,
		Persona:        rec.Persona,
		Status:         rec.Stage.String(),
		CreatedAt:      rec.CreatedAt,
	}
	if err := m.gateway.Insert(ctx, &row); err != nil {
		m.logger.Warn("save analysis failed", zap.Error(err))
		return JobRecord{}, err
	}

	rec.ID = row.ID
	rec.CreatedAt = row.CreatedAt
	// Newest first, matching Load's created_at descending order.
	m.board.insertAt(models.StageAnalyzed, 0, rec)

	snap := m.board.snapshot()
	m.writeMirror(ctx, snap)
	m.renderer.Render(snap, models.StageAnalyzed)
	return rec, nil
}

// Snapshot returns a deep copy of the current board.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.snapshot()
}

// writeMirror persists the whole snapshot, never a partial patch. Mirror
// failures are logged and swallowed: the mirror is best-effort only.
func (m *Manager) writeMirror(ctx context.Context, snap Snapshot) {
	if m.mirror == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		m.logger.Warn("mirror marshal failed", zap.Error(err))
		return
	}
	if err := m.mirror.Save(ctx, m.userID, payload); err != nil {
		m.logger.Warn("mirror write failed", zap.String("user", m.userID), zap.Error(err))
	}
}
