package models

import (
	"time"
)

// Profile mirrors one row of the hosted auth service's profile table.
// ID is the identity provider's subject, not an autoincrement.
type Profile struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email   string `gorm:"uniqueIndex;not null" json:"email"`
	Credits int    `gorm:"default:0" json:"credits"`
	IsPro   bool   `gorm:"default:false" json:"is_pro"`

	// YYYY-MM-DD of the last consumed free daily analysis, empty if never.
	LastFreeAnalysisDate string `json:"last_free_analysis_date"`
}

// Analysis is one persisted job analysis, the row form of a pipeline
// JobRecord. Every read and write is scoped by OwnerID.
type Analysis struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OwnerID        string `gorm:"index;not null" json:"owner_id"`
	JobDescription string `gorm:"type:text;not null" json:"job_description"`
	AnalysisResult string `gorm:"type:text" json:"analysis_result"`
	Tone           string `json:"tone"`
	Persona        string `json:"persona"`
	Status         string `gorm:"default:'analyzed'" json:"status"`
}
