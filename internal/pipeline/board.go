package pipeline

import (
	"github.com/dejargonator/dejargonator/internal/models"
)

// board is the six-bucket collection. The buckets partition the full record
// set: every id lives in exactly one bucket, and moving a record is always
// remove-from-one plus add-to-another, never a copy.
type board struct {
	buckets map[models.Stage][]JobRecord
}

func newBoard() *board {
	b := &board{buckets: make(map[models.Stage][]JobRecord, len(models.Stages))}
	b.clear()
	return b
}

func (b *board) clear() {
	for _, st := range models.Stages {
		b.buckets[st] = nil
	}
}

func (b *board) indexOf(stage models.Stage, id int64) int {
	for i, rec := range b.buckets[stage] {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func (b *board) removeAt(stage models.Stage, i int) JobRecord {
	bucket := b.buckets[stage]
	rec := bucket[i]
	b.buckets[stage] = append(bucket[:i], bucket[i+1:]...)
	return rec
}

func (b *board) insertAt(stage models.Stage, i int, rec JobRecord) {
	bucket := b.buckets[stage]
	if i < 0 || i > len(bucket) {
		i = len(bucket)
	}
	bucket = append(bucket, JobRecord{})
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = rec
	b.buckets[stage] = bucket
}

func (b *board) push(stage models.Stage, rec JobRecord) {
	b.buckets[stage] = append(b.buckets[stage], rec)
}

func (b *board) total() int {
	n := 0
	for _, bucket := range b.buckets {
		n += len(bucket)
	}
	return n
}

func (b *board) snapshot() Snapshot {
	snap := make(Snapshot, len(models.Stages))
	for _, st := range models.Stages {
		bucket := make([]JobRecord, len(b.buckets[st]))
		copy(bucket, b.buckets[st])
		snap[st] = bucket
	}
	return snap
}

// applyMove performs the in-memory half of a stage move: remove from the
// source bucket, restamp the stage, append to the target bucket. It returns
// the record's original index so the move can be reversed exactly.
func applyMove(b *board, id int64, from, to models.Stage) (int, bool) {
	i := b.indexOf(from, id)
	if i == -1 {
		return -1, false
	}
	rec := b.removeAt(from, i)
	rec.Stage = to
	b.push(to, rec)
	return i, true
}

// revertMove undoes applyMove: the record leaves the target bucket and goes
// back to its original index in the source bucket with its old stage.
func revertMove(b *board, id int64, from, to models.Stage, originalIdx int) {
	i := b.indexOf(to, id)
	if i == -1 {
		return
	}
	rec := b.removeAt(to, i)
	rec.Stage = from
	b.insertAt(from, originalIdx, rec)
}
