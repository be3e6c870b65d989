package models

// Stage is one of the six pipeline states a tracked analysis occupies.
// Any stage may transition directly to any other; there is no terminal
// stage.
type Stage string

const (
	StageAnalyzed    Stage = "analyzed"
	StageToApply     Stage = "toApply"
	StageApplied     Stage = "applied"
	StageInterviewed Stage = "interviewed"
	StageOffers      Stage = "offers"
	StageRejected    Stage = "rejected"
)

// Stages lists every pipeline stage in board order.
var Stages = []Stage{
	StageAnalyzed,
	StageToApply,
	StageApplied,
	StageInterviewed,
	StageOffers,
	StageRejected,
}

// ParseStage maps a persisted status string to a Stage. Missing or
// unrecognized values fall back to StageAnalyzed so rows written by newer
// schema versions still load.
func ParseStage(s string) Stage {
	if st := Stage(s); st.Valid() {
		return st
	}
	return StageAnalyzed
}

// Valid reports whether s is one of the six known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageAnalyzed, StageToApply, StageApplied, StageInterviewed, StageOffers, StageRejected:
		return true
	}
	return false
}

func (s Stage) String() string { return string(s) }
