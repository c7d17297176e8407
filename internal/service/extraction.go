package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExtractionService struct {
	projects     domain.ProjectStore
	stakeholders domain.StakeholderStore
	facts        domain.FactStore
	oracle       domain.OracleClient
	embedder     domain.EmbeddingClient
	logger       *zap.Logger
}

func NewExtractionService(
	ps domain.ProjectStore,
	ss domain.StakeholderStore,
	fs domain.FactStore,
	oracle domain.OracleClient,
	embedder domain.EmbeddingClient,
	logger *zap.Logger,
) *ExtractionService {
	return &ExtractionService{
		projects:     ps,
		stakeholders: ss,
		facts:        fs,
		oracle:       oracle,
		embedder:     embedder,
		logger:       logger,
	}
}

// buildInput assembles the grounded oracle context. Channels flagged not
// relevant are dropped here, before any prompt is built.
func (s *ExtractionService) buildInput(ctx context.Context, projectID uuid.UUID, channels []domain.ChannelMessages) (*domain.Project, domain.ExtractionInput, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, domain.ExtractionInput{}, mapNotFound(err, ErrProjectNotFound)
	}

	relevant := make([]domain.ChannelMessages, 0, len(channels))
	for _, ch := range channels {
		if ch.Relevant() && len(ch.Messages) > 0 {
			relevant = append(relevant, ch)
		}
	}

	if len(relevant) == 0 && len(project.Files) == 0 {
		return nil, domain.ExtractionInput{}, ErrNoUsableContext
	}

	return project, domain.ExtractionInput{
		ProjectName:        project.Name,
		ProjectDescription: project.Description,
		Channels:           relevant,
		FileLinks:          project.Files,
	}, nil
}

// MapStakeholdersResult carries the saved rows plus the raw model text for
// client-side inspection.
type MapStakeholdersResult struct {
	Stakeholders     []*domain.Stakeholder `json:"stakeholders"`
	RawModelResponse string                `json:"raw_model_response,omitempty"`
}

func (s *ExtractionService) MapStakeholders(ctx context.Context, projectID uuid.UUID, channels []domain.ChannelMessages) (*MapStakeholdersResult, error) {
	return s.mapStakeholders(ctx, projectID, channels, nil)
}

// MapStakeholdersStream is MapStakeholders with incremental model output
// pushed through onDelta.
func (s *ExtractionService) MapStakeholdersStream(ctx context.Context, projectID uuid.UUID, channels []domain.ChannelMessages, onDelta func(string)) (*MapStakeholdersResult, error) {
	return s.mapStakeholders(ctx, projectID, channels, onDelta)
}

func (s *ExtractionService) mapStakeholders(ctx context.Context, projectID uuid.UUID, channels []domain.ChannelMessages, onDelta func(string)) (*MapStakeholdersResult, error) {
	if s.oracle == nil {
		return nil, ErrOracleNotConfigured
	}

	_, input, err := s.buildInput(ctx, projectID, channels)
	if err != nil {
		return nil, err
	}

	var extracted []domain.ExtractedStakeholder
	var raw string
	if onDelta != nil {
		extracted, raw, err = s.oracle.MapStakeholdersStream(ctx, input, onDelta)
	} else {
		extracted, raw, err = s.oracle.MapStakeholders(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	rows := make([]*domain.Stakeholder, 0, len(extracted))
	for i, e := range extracted {
		if err := validateStakeholder(i, e); err != nil {
			return nil, err
		}
		rows = append(rows, &domain.Stakeholder{
			ProjectID: projectID,
			Name:      e.Name,
			Role:      e.Role,
			Influence: domain.InfluenceTier(e.Influence),
			Stance:    domain.StanceTag(e.Stance),
		})
	}

	if err := s.stakeholders.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("save stakeholders: %w", err)
	}

	if err := s.projects.SetStageAtLeast(ctx, projectID, domain.StageStakeholdersMapped); err != nil {
		return nil, err
	}

	s.logger.Info("stakeholders mapped",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(rows)))

	return &MapStakeholdersResult{Stakeholders: rows, RawModelResponse: raw}, nil
}

func validateStakeholder(i int, e domain.ExtractedStakeholder) error {
	if strings.TrimSpace(e.Name) == "" {
		return &ValidationError{Item: i, Field: "name", Detail: "is required"}
	}
	if strings.TrimSpace(e.Role) == "" {
		return &ValidationError{Item: i, Field: "role", Detail: "is required"}
	}
	if e.Influence != "" && !domain.ValidInfluenceTier(e.Influence) {
		return &ValidationError{Item: i, Field: "influence", Detail: "must be High, Medium or Low"}
	}
	if e.Stance != "" && !domain.ValidStanceTag(e.Stance) {
		return &ValidationError{Item: i, Field: "stance", Detail: "must be Supportive, Neutral, Skeptical or Blocking"}
	}
	return nil
}

// MapFactsResult mirrors what the caller sent plus what the oracle returned.
type MapFactsResult struct {
	SavedFacts       []*domain.Fact           `json:"savedFacts"`
	RelatedChats     []domain.ChannelMessages `json:"relatedChats"`
	FileLinks        []domain.FileRef         `json:"fileLinks"`
	RawModelResponse string                   `json:"raw_model_response,omitempty"`
}

func (s *ExtractionService) MapFacts(ctx context.Context, projectID uuid.UUID, channels []domain.ChannelMessages) (*MapFactsResult, error) {
	if s.oracle == nil {
		return nil, ErrOracleNotConfigured
	}

	_, input, err := s.buildInput(ctx, projectID, channels)
	if err != nil {
		return nil, err
	}

	extracted, raw, err := s.oracle.MapFacts(ctx, input)
	if err != nil {
		return nil, err
	}

	known, err := s.stakeholders.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]uuid.UUID, len(known))
	for _, st := range known {
		byName[strings.ToLower(st.Name)] = st.ID
	}

	rows := make([]*domain.Fact, 0, len(extracted))
	for i, e := range extracted {
		if err := validateFact(i, e); err != nil {
			return nil, err
		}

		fact := &domain.Fact{
			ProjectID:  projectID,
			Content:    e.Content,
			Source:     e.Source,
			Tone:       e.Tone,
			When:       e.When,
			SourceType: domain.SourceType(e.SourceType),
		}

		// Link to a stakeholder only on an exact case-insensitive name
		// match. An unrecognized speaker stays unlinked.
		if e.Stakeholder != "" {
			if id, ok := byName[strings.ToLower(e.Stakeholder)]; ok {
				fact.StakeholderID = &id
			}
		}

		if s.embedder != nil {
			emb, err := s.embedder.Embed(ctx, e.Content)
			if err != nil {
				s.logger.Warn("fact embedding failed",
					zap.String("project_id", projectID.String()),
					zap.Error(err))
			} else {
				fact.Embedding = emb
			}
		}

		rows = append(rows, fact)
	}

	if err := s.facts.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("save facts: %w", err)
	}

	if err := s.projects.SetStageAtLeast(ctx, projectID, domain.StageFactsMapped); err != nil {
		return nil, err
	}

	s.logger.Info("facts mapped",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(rows)))

	return &MapFactsResult{
		SavedFacts:       rows,
		RelatedChats:     input.Channels,
		FileLinks:        input.FileLinks,
		RawModelResponse: raw,
	}, nil
}

func validateFact(i int, e domain.ExtractedFact) error {
	if strings.TrimSpace(e.Content) == "" {
		return &ValidationError{Item: i, Field: "content", Detail: "is required"}
	}
	if strings.TrimSpace(e.Source) == "" {
		return &ValidationError{Item: i, Field: "source", Detail: "is required"}
	}
	if !domain.ValidSourceType(e.SourceType) {
		return &ValidationError{Item: i, Field: "sourceType", Detail: "must be messaging or file"}
	}
	return nil
}

func (s *ExtractionService) ListStakeholders(ctx context.Context, projectID uuid.UUID) ([]domain.Stakeholder, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return s.stakeholders.ListByProject(ctx, projectID)
}

func (s *ExtractionService) ListFacts(ctx context.Context, projectID uuid.UUID, filter domain.FactFilter) ([]domain.Fact, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return s.facts.ListByProject(ctx, projectID, filter)
}

// SearchFacts finds stored facts semantically close to the query text.
func (s *ExtractionService) SearchFacts(ctx context.Context, projectID uuid.UUID, query string, limit int) ([]domain.FactWithScore, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalidArg("query is required")
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	if s.embedder == nil {
		return nil, invalidArg("semantic search is not configured")
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.facts.SearchSimilar(ctx, projectID, emb, limit)
}
