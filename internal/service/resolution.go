package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrResolutionShape            = invalidArg("Provide either winnerFactId or custom_input, not both or neither.")
	ErrResolutionReasoningMissing = invalidArg("Resolution reasoning is mandatory.")
)

type ResolutionService struct {
	projects       domain.ProjectStore
	facts          domain.FactStore
	contradictions domain.ContradictionStore
	resolutions    domain.ResolutionStore
	logger         *zap.Logger
}

func NewResolutionService(
	ps domain.ProjectStore,
	fs domain.FactStore,
	cs domain.ContradictionStore,
	rs domain.ResolutionStore,
	logger *zap.Logger,
) *ResolutionService {
	return &ResolutionService{
		projects:       ps,
		facts:          fs,
		contradictions: cs,
		resolutions:    rs,
		logger:         logger,
	}
}

// Resolve applies a batch of reviewer decisions. Every decision is validated
// before anything is written, so a bad one rejects the whole batch with
// nothing persisted.
func (s *ResolutionService) Resolve(ctx context.Context, projectID uuid.UUID, decisions []domain.ResolutionDecision) ([]*domain.Resolution, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	if project.Stage < domain.StageFactsMapped {
		return nil, ErrStageTooEarly
	}
	if len(decisions) == 0 {
		return nil, invalidArg("no resolutions in request")
	}

	for _, d := range decisions {
		if d.ContradictionID == uuid.Nil {
			return nil, invalidArg("contradictionId is required")
		}
		hasWinner := d.WinnerFactID != nil
		hasCustom := strings.TrimSpace(d.CustomInput) != ""
		if hasWinner == hasCustom {
			return nil, ErrResolutionShape
		}
		if strings.TrimSpace(d.Reasoning) == "" {
			return nil, ErrResolutionReasoningMissing
		}
	}

	applies := make([]domain.ResolutionApply, 0, len(decisions))
	for _, d := range decisions {
		apply, err := s.buildApply(ctx, projectID, d)
		if err != nil {
			return nil, err
		}
		applies = append(applies, apply)
	}

	if err := s.resolutions.ApplyBatch(ctx, projectID, applies); err != nil {
		return nil, fmt.Errorf("apply resolutions: %w", err)
	}

	if err := s.projects.SetStageAtLeast(ctx, projectID, domain.StageConflictsResolved); err != nil {
		return nil, err
	}

	resolved := make([]*domain.Resolution, 0, len(applies))
	for _, a := range applies {
		resolved = append(resolved, a.Resolution)
	}

	s.logger.Info("contradictions resolved",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(resolved)))

	return resolved, nil
}

// buildApply turns one validated decision into the writes it implies: mark
// all contesting facts inactive, then keep the winner active if one was
// picked. Fact content is immutable, so reading it here and writing inside
// the batch transaction is safe.
func (s *ResolutionService) buildApply(ctx context.Context, projectID uuid.UUID, d domain.ResolutionDecision) (domain.ResolutionApply, error) {
	contradiction, err := s.contradictions.GetByID(ctx, d.ContradictionID)
	if err != nil {
		return domain.ResolutionApply{}, mapNotFound(err, ErrContradictionNotFound)
	}
	if contradiction.ProjectID != projectID {
		return domain.ResolutionApply{}, ErrContradictionNotFound
	}

	resolution := &domain.Resolution{
		ProjectID:       projectID,
		ContradictionID: contradiction.ID,
		CustomInput:     strings.TrimSpace(d.CustomInput),
		Reasoning:       d.Reasoning,
	}

	if d.WinnerFactID != nil {
		winner := *d.WinnerFactID
		if !containsID(contradiction.FactIDs, winner) {
			return domain.ResolutionApply{}, invalidArgf("winnerFactId %s is not part of contradiction %s", winner, contradiction.ID)
		}
		fact, err := s.facts.GetByID(ctx, winner)
		if err != nil {
			return domain.ResolutionApply{}, mapNotFound(err, ErrFactNotFound)
		}
		resolution.WinnerFactID = &winner
		resolution.FinalDecision = decisionText(fact.Content)
	} else {
		resolution.FinalDecision = resolution.CustomInput
	}

	return domain.ResolutionApply{
		Resolution:        resolution,
		DeactivateFactIDs: contradiction.FactIDs,
		WinnerFactID:      resolution.WinnerFactID,
	}, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// decisionText extracts the human-readable claim from fact content. Some
// facts store a JSON object with a statement field; plain text passes
// through as is.
func decisionText(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") {
		var obj struct {
			Statement string `json:"statement"`
		}
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil && obj.Statement != "" {
			return obj.Statement
		}
	}
	return content
}

func (s *ResolutionService) ListResolutions(ctx context.Context, projectID uuid.UUID) ([]domain.Resolution, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return s.resolutions.ListByProject(ctx, projectID)
}
