package domain

import (
	"context"
	"io"

	"github.com/google/uuid"
)

type ProjectStore interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListByUserID(ctx context.Context, userID string) ([]Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	AppendFiles(ctx context.Context, id uuid.UUID, files []FileRef) (*Project, error)
	// AdvanceStage bumps the stage by one and returns the new value.
	AdvanceStage(ctx context.Context, id uuid.UUID) (ProjectStage, error)
	// SetStageAtLeast raises the stage to the given value if it is currently
	// lower. Never moves the stage backwards.
	SetStageAtLeast(ctx context.Context, id uuid.UUID, stage ProjectStage) error
	SetFinalDocument(ctx context.Context, id uuid.UUID, doc string) error
}

type StakeholderStore interface {
	CreateBatch(ctx context.Context, stakeholders []*Stakeholder) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Stakeholder, error)
}

type FactStore interface {
	CreateBatch(ctx context.Context, facts []*Fact) error
	GetByID(ctx context.Context, id uuid.UUID) (*Fact, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, filter FactFilter) ([]Fact, error)
	SearchSimilar(ctx context.Context, projectID uuid.UUID, embedding []float32, limit int) ([]FactWithScore, error)
}

type ContradictionStore interface {
	// ReplaceForProject deletes every contradiction for the project and
	// inserts the given set in a single transaction.
	ReplaceForProject(ctx context.Context, projectID uuid.UUID, contradictions []*Contradiction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contradiction, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Contradiction, error)
}

type ResolutionStore interface {
	// ApplyBatch persists all resolutions and fact supersessions in a single
	// transaction. Either every decision lands or none do.
	ApplyBatch(ctx context.Context, projectID uuid.UUID, applies []ResolutionApply) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Resolution, error)
}

// ChatMessage is one message from a communication channel.
type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"message"`
	SentAt string `json:"timestamp,omitempty"`
}

// ChannelMessages is a per-channel message list from the caller. A channel
// flagged IsRelevant=false must never reach the oracle.
type ChannelMessages struct {
	Channel    string        `json:"channel"`
	IsRelevant *bool         `json:"is_relevant,omitempty"`
	Messages   []ChatMessage `json:"messages"`
}

// Relevant reports whether the channel may be used as extraction context.
// Only an explicit false excludes it.
func (c ChannelMessages) Relevant() bool {
	return c.IsRelevant == nil || *c.IsRelevant
}

// ExtractionInput is the grounded context handed to the oracle. Channels are
// already filtered to relevant ones by the caller.
type ExtractionInput struct {
	ProjectName        string
	ProjectDescription string
	Channels           []ChannelMessages
	FileLinks          []FileRef
}

// ExtractedStakeholder is the oracle's untrusted stakeholder output.
type ExtractedStakeholder struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Influence string `json:"influence,omitempty"`
	Stance    string `json:"stance,omitempty"`
}

// ExtractedFact is the oracle's untrusted fact output.
type ExtractedFact struct {
	Content     string `json:"content"`
	Source      string `json:"source"`
	Tone        string `json:"tone,omitempty"`
	When        string `json:"when,omitempty"`
	SourceType  string `json:"sourceType"`
	Stakeholder string `json:"stakeholder,omitempty"`
}

// FactForReview is one numbered fact in the detector or synthesis prompt.
type FactForReview struct {
	ID          uuid.UUID
	Source      string
	Stakeholder string
	Content     string
}

// DetectedContradiction is the oracle's untrusted detector output.
type DetectedContradiction struct {
	FactIDs []string `json:"factIds"`
	Context string   `json:"context"`
}

// SynthesisInput carries the consistent state used to draft the final document.
type SynthesisInput struct {
	ProjectName        string
	ProjectDescription string
	Facts              []FactForReview
	Decisions          []string
}

// OracleClient is the text-completion oracle. Implementations build prompts,
// call the model, and defensively parse its output; raw model text is always
// returned alongside the parsed result for diagnosis.
type OracleClient interface {
	MapStakeholders(ctx context.Context, in ExtractionInput) ([]ExtractedStakeholder, string, error)
	// MapStakeholdersStream is MapStakeholders with incremental raw output
	// delivered through onDelta as it arrives.
	MapStakeholdersStream(ctx context.Context, in ExtractionInput, onDelta func(string)) ([]ExtractedStakeholder, string, error)
	MapFacts(ctx context.Context, in ExtractionInput) ([]ExtractedFact, string, error)
	FindContradictions(ctx context.Context, facts []FactForReview) ([]DetectedContradiction, string, error)
	Synthesize(ctx context.Context, in SynthesisInput) (string, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// FileIngestor hands a binary blob to the external file service and returns
// a stable reference to it.
type FileIngestor interface {
	Ingest(ctx context.Context, filename, contentType string, r io.Reader) (FileRef, error)
}
