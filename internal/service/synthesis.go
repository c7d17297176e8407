package service

import (
	"context"
	"fmt"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SynthesisService struct {
	projects     domain.ProjectStore
	stakeholders domain.StakeholderStore
	facts        domain.FactStore
	resolutions  domain.ResolutionStore
	oracle       domain.OracleClient
	logger       *zap.Logger
}

func NewSynthesisService(
	ps domain.ProjectStore,
	ss domain.StakeholderStore,
	fs domain.FactStore,
	rs domain.ResolutionStore,
	oracle domain.OracleClient,
	logger *zap.Logger,
) *SynthesisService {
	return &SynthesisService{
		projects:     ps,
		stakeholders: ss,
		facts:        fs,
		resolutions:  rs,
		oracle:       oracle,
		logger:       logger,
	}
}

// Synthesize drafts the final document from the project's active facts and
// recorded decisions, stores it on the project and marks the pipeline done.
func (s *SynthesisService) Synthesize(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	if s.oracle == nil {
		return nil, ErrOracleNotConfigured
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	if project.Stage < domain.StageFactsMapped {
		return nil, ErrStageTooEarly
	}

	facts, err := s.facts.ListByProject(ctx, projectID, domain.FactFilterActive)
	if err != nil {
		return nil, err
	}

	stakeholders, err := s.stakeholders.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(stakeholders))
	for _, st := range stakeholders {
		names[st.ID] = st.Name
	}

	review := make([]domain.FactForReview, 0, len(facts))
	for _, f := range facts {
		name := ""
		if f.StakeholderID != nil {
			name = names[*f.StakeholderID]
		}
		review = append(review, domain.FactForReview{
			ID:          f.ID,
			Source:      f.Source,
			Stakeholder: name,
			Content:     f.Content,
		})
	}

	resolutions, err := s.resolutions.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	decisions := make([]string, 0, len(resolutions))
	for _, r := range resolutions {
		decisions = append(decisions, fmt.Sprintf("%s (reasoning: %s)", r.FinalDecision, r.Reasoning))
	}

	doc, err := s.oracle.Synthesize(ctx, domain.SynthesisInput{
		ProjectName:        project.Name,
		ProjectDescription: project.Description,
		Facts:              review,
		Decisions:          decisions,
	})
	if err != nil {
		return nil, err
	}

	if err := s.projects.SetFinalDocument(ctx, projectID, doc); err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	if err := s.projects.SetStageAtLeast(ctx, projectID, domain.StageSynthesized); err != nil {
		return nil, err
	}

	project.FinalDocument = doc
	if project.Stage < domain.StageSynthesized {
		project.Stage = domain.StageSynthesized
	}

	s.logger.Info("document synthesized",
		zap.String("project_id", projectID.String()),
		zap.Int("facts", len(review)),
		zap.Int("decisions", len(decisions)))

	return project, nil
}
