package service

import (
	"context"
	"fmt"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ConflictService struct {
	projects       domain.ProjectStore
	stakeholders   domain.StakeholderStore
	facts          domain.FactStore
	contradictions domain.ContradictionStore
	oracle         domain.OracleClient
	logger         *zap.Logger
}

func NewConflictService(
	ps domain.ProjectStore,
	ss domain.StakeholderStore,
	fs domain.FactStore,
	cs domain.ContradictionStore,
	oracle domain.OracleClient,
	logger *zap.Logger,
) *ConflictService {
	return &ConflictService{
		projects:       ps,
		stakeholders:   ss,
		facts:          fs,
		contradictions: cs,
		oracle:         oracle,
		logger:         logger,
	}
}

// FindContradictionsResult carries the fresh contradiction set and the raw
// model output.
type FindContradictionsResult struct {
	Contradictions   []*domain.Contradiction `json:"contradictions"`
	RawModelResponse string                  `json:"raw_model_response,omitempty"`
}

// FindContradictions runs detection over the project's active facts and
// atomically replaces the stored contradiction set with the new one. When
// detection fails the stored set is left as it was.
func (s *ConflictService) FindContradictions(ctx context.Context, projectID uuid.UUID) (*FindContradictionsResult, error) {
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

	// A single fact cannot conflict with anything. Skip the oracle and
	// leave any stored contradictions alone.
	if len(facts) < 2 {
		return &FindContradictionsResult{Contradictions: []*domain.Contradiction{}}, nil
	}

	review, valid, err := s.factsForReview(ctx, projectID, facts)
	if err != nil {
		return nil, err
	}

	detected, raw, err := s.oracle.FindContradictions(ctx, review)
	if err != nil {
		return nil, &LogicEngineError{Raw: raw, Err: err}
	}

	rows := make([]*domain.Contradiction, 0, len(detected))
	for i, d := range detected {
		ids, err := resolveFactIDs(i, d.FactIDs, valid)
		if err != nil {
			return nil, &LogicEngineError{Raw: raw, Err: err}
		}
		rows = append(rows, &domain.Contradiction{
			ProjectID: projectID,
			FactIDs:   ids,
			Context:   d.Context,
		})
	}

	if err := s.contradictions.ReplaceForProject(ctx, projectID, rows); err != nil {
		return nil, fmt.Errorf("replace contradictions: %w", err)
	}

	s.logger.Info("contradictions detected",
		zap.String("project_id", projectID.String()),
		zap.Int("facts", len(facts)),
		zap.Int("contradictions", len(rows)))

	return &FindContradictionsResult{Contradictions: rows, RawModelResponse: raw}, nil
}

// factsForReview renders active facts for the detector prompt with their
// stakeholder names attached, and returns the set of ids the oracle is
// allowed to reference.
func (s *ConflictService) factsForReview(ctx context.Context, projectID uuid.UUID, facts []domain.Fact) ([]domain.FactForReview, map[uuid.UUID]bool, error) {
	stakeholders, err := s.stakeholders.ListByProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[uuid.UUID]string, len(stakeholders))
	for _, st := range stakeholders {
		names[st.ID] = st.Name
	}

	review := make([]domain.FactForReview, 0, len(facts))
	valid := make(map[uuid.UUID]bool, len(facts))
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
		valid[f.ID] = true
	}
	return review, valid, nil
}

// resolveFactIDs parses and checks the oracle's referenced ids. Every id
// must name a fact from the prompt, and a group needs at least two.
func resolveFactIDs(item int, raw []string, valid map[uuid.UUID]bool) ([]uuid.UUID, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("contradiction %d references %d facts, need at least 2", item, len(raw))
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("contradiction %d has malformed fact id %q", item, r)
		}
		if !valid[id] {
			return nil, fmt.Errorf("contradiction %d references unknown fact %s", item, id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *ConflictService) ListContradictions(ctx context.Context, projectID uuid.UUID) ([]domain.Contradiction, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return s.contradictions.ListByProject(ctx, projectID)
}
