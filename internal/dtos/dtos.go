package dtos

type AnalyzeRequest struct {
	JobDescription string `json:"job_description" binding:"required"`

	// Optional prompt variants; unknown values fall back to the defaults.
	Tone    string `json:"tone"`
	Persona string `json:"persona"`
}

type DocumentRequest struct {
	Type           string `json:"type" binding:"required"`
	JobDescription string `json:"job_description" binding:"required"`
	UserInput      string `json:"user_input" binding:"required"`
	JobAnalysis    string `json:"job_analysis"`
}

type MoveRequest struct {
	ID   int64  `json:"id" binding:"required"`
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type DuplicateRequest struct {
	ID    int64  `json:"id" binding:"required"`
	Stage string `json:"stage" binding:"required"`
}

type DeleteRequest struct {
	ID    int64  `json:"id" binding:"required"`
	Stage string `json:"stage" binding:"required"`

	// Deletion is permanent; the client must confirm explicitly.
	Confirm bool `json:"confirm"`
}

type AddCreditsRequest struct {
	Amount int `json:"amount" binding:"required"`
}
