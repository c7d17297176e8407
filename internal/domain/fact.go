package domain

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceMessaging SourceType = "messaging"
	SourceFile      SourceType = "file"
)

func ValidSourceType(s string) bool {
	switch SourceType(s) {
	case SourceMessaging, SourceFile:
		return true
	}
	return false
}

// Fact is one atomic claim extracted from the project's context. Content is
// immutable once written; resolution only ever flips the active flag.
type Fact struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	Content       string     `json:"content"`
	Source        string     `json:"source"`
	Tone          string     `json:"tone,omitempty"`
	When          string     `json:"when,omitempty"`
	SourceType    SourceType `json:"sourceType"`
	Active        bool       `json:"active"`
	StakeholderID *uuid.UUID `json:"stakeholder_id,omitempty"`
	Embedding     []float32  `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
}

// FactWithScore is a fact plus its cosine similarity to a search query.
type FactWithScore struct {
	Fact
	Score float64 `json:"score"`
}

// FactFilter selects which facts a listing returns.
type FactFilter string

const (
	FactFilterActive     FactFilter = "active"
	FactFilterSuperseded FactFilter = "superseded"
	FactFilterAll        FactFilter = "all"
)
