package domain

import (
	"time"

	"github.com/google/uuid"
)

// Resolution records a human decision on a contradiction. Rows are
// append-only; the latest resolution for a contradiction wins.
type Resolution struct {
	ID              uuid.UUID  `json:"id"`
	ProjectID       uuid.UUID  `json:"project_id"`
	ContradictionID uuid.UUID  `json:"contradiction_id"`
	FinalDecision   string     `json:"final_decision"`
	WinnerFactID    *uuid.UUID `json:"winner_fact_id,omitempty"`
	CustomInput     string     `json:"custom_input,omitempty"`
	Reasoning       string     `json:"reasoning"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ResolutionDecision is one decision submitted by the reviewer. Exactly one
// of WinnerFactID and CustomInput must be set, and Reasoning is mandatory.
type ResolutionDecision struct {
	ContradictionID uuid.UUID  `json:"contradictionId"`
	WinnerFactID    *uuid.UUID `json:"winnerFactId,omitempty"`
	CustomInput     string     `json:"custom_input,omitempty"`
	Reasoning       string     `json:"reasoning"`
}

// ResolutionApply is one validated decision translated into writes: the
// resolution row to insert, the facts to deactivate, and the optional fact
// to keep active.
type ResolutionApply struct {
	Resolution        *Resolution
	DeactivateFactIDs []uuid.UUID
	WinnerFactID      *uuid.UUID
}
