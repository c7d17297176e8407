package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStage tracks how far a project has moved through the pipeline.
// Stages only ever move forward.
type ProjectStage int

const (
	StageInitialized ProjectStage = iota
	StageContextReady
	StageStakeholdersMapped
	StageFactsMapped
	StageConflictsResolved
	StageSynthesized
)

func (s ProjectStage) String() string {
	switch s {
	case StageInitialized:
		return "initialized"
	case StageContextReady:
		return "context_ready"
	case StageStakeholdersMapped:
		return "stakeholders_mapped"
	case StageFactsMapped:
		return "facts_mapped"
	case StageConflictsResolved:
		return "conflicts_resolved"
	case StageSynthesized:
		return "synthesized"
	default:
		return "unknown"
	}
}

// FileRef points at a document stored by the external file service.
type FileRef struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type Project struct {
	ID            uuid.UUID    `json:"id"`
	UserID        string       `json:"user_id"`
	Name          string       `json:"project_name"`
	Description   string       `json:"project_description"`
	Stage         ProjectStage `json:"stage"`
	Files         []FileRef    `json:"files"`
	FinalDocument string       `json:"final_document,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
