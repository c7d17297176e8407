package domain

import (
	"time"

	"github.com/google/uuid"
)

type InfluenceTier string

const (
	InfluenceHigh   InfluenceTier = "High"
	InfluenceMedium InfluenceTier = "Medium"
	InfluenceLow    InfluenceTier = "Low"
)

func ValidInfluenceTier(s string) bool {
	switch InfluenceTier(s) {
	case InfluenceHigh, InfluenceMedium, InfluenceLow:
		return true
	}
	return false
}

type StanceTag string

const (
	StanceSupportive StanceTag = "Supportive"
	StanceNeutral    StanceTag = "Neutral"
	StanceSkeptical  StanceTag = "Skeptical"
	StanceBlocking   StanceTag = "Blocking"
)

func ValidStanceTag(s string) bool {
	switch StanceTag(s) {
	case StanceSupportive, StanceNeutral, StanceSkeptical, StanceBlocking:
		return true
	}
	return false
}

// Stakeholder is a person extracted from the project's communications.
// Rows are append-only; extraction never edits an existing stakeholder.
type Stakeholder struct {
	ID        uuid.UUID     `json:"id"`
	ProjectID uuid.UUID     `json:"project_id"`
	Name      string        `json:"name"`
	Role      string        `json:"role"`
	Influence InfluenceTier `json:"influence,omitempty"`
	Stance    StanceTag     `json:"stance,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
