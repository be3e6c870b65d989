package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejargonator/dejargonator/internal/models"
)

func rec(id int64, stage models.Stage) JobRecord {
	return JobRecord{ID: id, Stage: stage}
}

func TestApplyAndRevertMoveAreExactInverses(t *testing.T) {
	b := newBoard()
	b.push(models.StageAnalyzed, rec(1, models.StageAnalyzed))
	b.push(models.StageAnalyzed, rec(2, models.StageAnalyzed))
	b.push(models.StageAnalyzed, rec(3, models.StageAnalyzed))

	idx, ok := applyMove(b, 2, models.StageAnalyzed, models.StageOffers)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	require.Len(t, b.buckets[models.StageOffers], 1)
	assert.Equal(t, models.StageOffers, b.buckets[models.StageOffers][0].Stage)
	assert.Len(t, b.buckets[models.StageAnalyzed], 2)

	revertMove(b, 2, models.StageAnalyzed, models.StageOffers, idx)
	assert.Empty(t, b.buckets[models.StageOffers])
	require.Len(t, b.buckets[models.StageAnalyzed], 3)
	assert.Equal(t, int64(2), b.buckets[models.StageAnalyzed][1].ID)
	assert.Equal(t, models.StageAnalyzed, b.buckets[models.StageAnalyzed][1].Stage)
}

func TestApplyMoveMissingRecord(t *testing.T) {
	b := newBoard()
	_, ok := applyMove(b, 7, models.StageAnalyzed, models.StageOffers)
	assert.False(t, ok)
	assert.Equal(t, 0, b.total())
}

func TestInsertAtClampsOutOfRangeIndex(t *testing.T) {
	b := newBoard()
	b.push(models.StageApplied, rec(1, models.StageApplied))
	b.insertAt(models.StageApplied, 10, rec(2, models.StageApplied))
	require.Len(t, b.buckets[models.StageApplied], 2)
	assert.Equal(t, int64(2), b.buckets[models.StageApplied][1].ID)

	b.insertAt(models.StageApplied, 0, rec(3, models.StageApplied))
	assert.Equal(t, int64(3), b.buckets[models.StageApplied][0].ID)
}

func TestRecordFromRowNormalizesLegacyPersona(t *testing.T) {
	row := models.Analysis{ID: 1, Tone: "snarky", Persona: "", Status: "applied"}
	got := recordFromRow(row)
	assert.Equal(t, "snarky", got.Persona, "legacy rows without a persona reuse the tone")
	assert.Equal(t, models.StageApplied, got.Stage)

	row.Persona = "hr-insider"
	assert.Equal(t, "hr-insider", recordFromRow(row).Persona)
}
