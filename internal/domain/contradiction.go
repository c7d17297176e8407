package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contradiction groups two or more facts that cannot all hold at once.
// Each detection run replaces the project's whole set.
type Contradiction struct {
	ID        uuid.UUID   `json:"id"`
	ProjectID uuid.UUID   `json:"project_id"`
	FactIDs   []uuid.UUID `json:"factIds"`
	Context   string      `json:"context"`
	CreatedAt time.Time   `json:"created_at"`
}
