package pipeline

import (
	"time"

	"github.com/dejargonator/dejargonator/internal/models"
)

// JobRecord is one analyzed job posting tracked through the pipeline. Only
// Stage mutates after creation; everything else is fixed at creation time.
type JobRecord struct {
	ID             int64        `json:"id"`
	JobDescription string       `json:"job_description"`
	Analysis       string       `json:"analysis"`
	Tone           string       `json:"tone"`
	Persona        string       `json:"persona"`
	CreatedAt      time.Time    `json:"created_at"`
	Stage          models.Stage `json:"stage"`
}

// Snapshot is the read-only per-stage view handed to renderers and HTTP
// responses. It is always a deep copy of the manager's state.
type Snapshot map[models.Stage][]JobRecord

// Total returns the number of records across all stages.
func (s Snapshot) Total() int {
	n := 0
	for _, recs := range s {
		n += len(recs)
	}
	return n
}

// recordFromRow normalizes a persisted row into the canonical in-memory
// shape. Legacy rows sometimes carried only a tone; persona falls back to it
// so no later code has to branch on field presence.
func recordFromRow(row models.Analysis) JobRecord {
	persona := row.Persona
	if persona == "" {
		persona = row.Tone
	}
	return JobRecord{
		ID:             row.ID,
		JobDescription: row.JobDescription,
		Analysis:       row.AnalysisResult,
		Tone:           row.Tone,
		Persona:        persona,
		CreatedAt:      row.CreatedAt,
		Stage:          models.ParseStage(row.Status),
	}
}
