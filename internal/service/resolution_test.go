package service

import (
	"context"
	"errors"
	"testing"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newResolutionFixture() (*ResolutionService, *mockProjectStore, *mockFactStore, *mockContradictionStore, *mockResolutionStore) {
	projects := newMockProjectStore()
	facts := newMockFactStore()
	contradictions := newMockContradictionStore()
	resolutions := newMockResolutionStore(facts)
	svc := NewResolutionService(projects, facts, contradictions, resolutions, zap.NewNop())
	return svc, projects, facts, contradictions, resolutions
}

func TestResolveRejectsBothWinnerAndCustom(t *testing.T) {
	svc, projects, facts, contradictions, _ := newResolutionFixture()
	project := projects.addProject(domain.StageFactsMapped, nil)
	f1 := facts.addFact(project.ID, "Budget is $40,000", nil)
	f2 := facts.addFact(project.ID, "Budget is $65,000", nil)
	c := contradictions.addContradiction(project.ID, []uuid.UUID{f1.ID, f2.ID})

	_, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: c.ID, WinnerFactID: &f1.ID, CustomInput: "split the difference", Reasoning: "because"},
	})
	if !errors.Is(err, ErrResolutionShape) {
		t.Fatalf("expected ErrResolutionShape, got %v", err)
	}
	if err.Error() != "Provide either winnerFactId or custom_input, not both or neither." {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestResolveRejectsNeitherWinnerNorCustom(t *testing.T) {
	svc, projects, facts, contradictions, _ := newResolutionFixture()
	project := projects.addProject(domain.StageFactsMapped, nil)
	f1 := facts.addFact(project.ID, "Budget is $40,000", nil)
	f2 := facts.addFact(project.ID, "Budget is $65,000", nil)
	c := contradictions.addContradiction(project.ID, []uuid.UUID{f1.ID, f2.ID})

	_, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: c.ID, Reasoning: "because"},
	})
	if !errors.Is(err, ErrResolutionShape) {
		t.Fatalf("expected ErrResolutionShape, got %v", err)
	}
}

func TestResolveRequiresReasoning(t *testing.T) {
	svc, projects, facts, contradictions, _ := newResolutionFixture()
	project := projects.addProject(domain.StageFactsMapped, nil)
	f1 := facts.addFact(project.ID, "Budget is $40,000", nil)
	f2 := facts.addFact(project.ID, "Budget is $65,000", nil)
	c := contradictions.addContradiction(project.ID, []uuid.UUID{f1.ID, f2.ID})

	_, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: c.ID, WinnerFactID: &f1.ID, Reasoning: "   "},
	})
	if !errors.Is(err, ErrResolutionReasoningMissing) {
		t.Fatalf("expected ErrResolutionReasoningMissing, got %v", err)
	}
	if err.Error() != "Resolution reasoning is mandatory." {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestResolveFailFastBatchPersistsNothing(t *testing.T) {
	svc, projects, facts, contradictions, resolutions := newResolutionFixture()
	project := projects.addProject(domain.StageFactsMapped, nil)
	f1 := facts.addFact(project.ID, "Budget is $40,000", nil)
	f2 := facts.addFact(project.ID, "Budget is $65,000", nil)
	c := contradictions.addContradiction(project.ID, []uuid.UUID{f1.ID, f2.ID})

	_, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: c.ID, WinnerFactID: &f1.ID, Reasoning: "finance is authoritative"},
		{ContradictionID: c.ID, Reasoning: "missing a decision"},
	})
	if !errors.Is(err, ErrResolutionShape) {
		t.Fatalf("expected ErrResolutionShape, got %v", err)
	}

	if !facts.facts[f1.ID].Active || !facts.facts[f2.ID].Active {
		t.Error("no fact should be superseded when any decision in the batch is invalid")
	}
	saved, _ := resolutions.ListByProject(context.Background(), project.ID)
	if len(saved) != 0 {
		t.Errorf("expected no resolutions persisted, got %d", len(saved))
	}
}

func TestResolveWinnerSupersedesLosers(t *testing.T) {
	svc, projects, facts, contradictions, resolutions := newResolutionFixture()
	project := projects.addProject(domain.StageFactsMapped, nil)
	f1 := facts.addFact(project.ID, "Budget is $40,000", nil)
	f2 := facts.addFact(project.ID, "Budget is $65,000", nil)
	c := contradictions.addContradiction(project.ID, []uuid.UUID{f1.ID, f2.ID})

	resolved, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: c.ID, WinnerFactID: &f1.ID, Reasoning: "finance figure is contractual"},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolution, got %d", len(resolved))
	}
	if resolved[0].FinalDecision != "Budget is $40,000" {
		t.Errorf("final decision should be the winner's content, got %q", resolved[0].FinalDecision)
	}

	if !facts.facts[f1.ID].Active {
		t.Error("winner fact must stay active")
	}
	if facts.facts[f2.ID].Active {
		t.Error("losing fact must be superseded")
	}
	if facts.facts[f2.ID].Content != "Budget is $65,000" {
		t.Error("superseded fact content must never change")
	}

	saved, _ := resolutions.ListByProject(context.Background(), project.ID)
	if len(saved) != 1 {
		t.Fatalf("expected 1 stored resolution, got %d", len(saved))
	}

	p, _ := projects.GetByID(context.Background(), project.ID)
	if p.Stage != domain.StageConflictsResolved {
		t.Errorf("expected stage %v, got %v", domain.StageConflictsResolved, p.Stage)
	}
}

func TestResolveCustomSupersedesAll(t *testing.T) {
	svc, projects, facts, contradictions, _ := newResolutionFixture()
	project := projects.addProject(domain.StageFactsMapped, nil)
	f1 := facts.addFact(project.ID, "Budget is $40,000", nil)
	f2 := facts.addFact(project.ID, "Budget is $65,000", nil)
	c := contradictions.addContradiction(project.ID, []uuid.UUID{f1.ID, f2.ID})

	resolved, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: c.ID, CustomInput: "Budget settled at $50,000 after the steering call", Reasoning: "compromise agreed on 2026-08-20"},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved[0].FinalDecision != "Budget settled at $50,000 after the steering call" {
		t.Errorf("final decision should be the custom input, got %q", resolved[0].FinalDecision)
	}
	if resolved[0].WinnerFactID != nil {
		t.Error("custom resolution has no winner fact")
	}

	if facts.facts[f1.ID].Active || facts.facts[f2.ID].Active {
		t.Error("custom resolution must supersede every contesting fact")
	}
}

func TestResolveWinnerMustBelongToContradiction(t *testing.T) {
	svc, projects, facts, contradictions, _ := newResolutionFixture()
	project := projects.addProject(domain.StageFactsMapped, nil)
	f1 := facts.addFact(project.ID, "Budget is $40,000", nil)
	f2 := facts.addFact(project.ID, "Budget is $65,000", nil)
	outsider := facts.addFact(project.ID, "Launch before Black Friday", nil)
	c := contradictions.addContradiction(project.ID, []uuid.UUID{f1.ID, f2.ID})

	_, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: c.ID, WinnerFactID: &outsider.ID, Reasoning: "wrong pick"},
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestResolveUnknownContradiction(t *testing.T) {
	svc, projects, facts, _, _ := newResolutionFixture()
	project := projects.addProject(domain.StageFactsMapped, nil)
	f1 := facts.addFact(project.ID, "Budget is $40,000", nil)

	_, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: uuid.New(), WinnerFactID: &f1.ID, Reasoning: "stale id"},
	})
	if !errors.Is(err, ErrContradictionNotFound) {
		t.Fatalf("expected ErrContradictionNotFound, got %v", err)
	}
}

func TestResolveAgainAppendsHistory(t *testing.T) {
	svc, projects, facts, contradictions, resolutions := newResolutionFixture()
	project := projects.addProject(domain.StageFactsMapped, nil)
	f1 := facts.addFact(project.ID, "Budget is $40,000", nil)
	f2 := facts.addFact(project.ID, "Budget is $65,000", nil)
	c := contradictions.addContradiction(project.ID, []uuid.UUID{f1.ID, f2.ID})

	if _, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: c.ID, WinnerFactID: &f1.ID, Reasoning: "first pass"},
	}); err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: c.ID, WinnerFactID: &f2.ID, Reasoning: "overturned after new contract"},
	}); err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}

	saved, _ := resolutions.ListByProject(context.Background(), project.ID)
	if len(saved) != 2 {
		t.Fatalf("resolution history must be append-only, got %d rows", len(saved))
	}

	// Latest decision wins: f2 active again, f1 superseded.
	if facts.facts[f1.ID].Active {
		t.Error("first winner should be superseded by the re-resolution")
	}
	if !facts.facts[f2.ID].Active {
		t.Error("new winner should be active after the re-resolution")
	}
}

func TestDecisionTextUnwrapsStatement(t *testing.T) {
	got := decisionText(`{"statement": "Budget is $40,000", "tone": "firm"}`)
	if got != "Budget is $40,000" {
		t.Errorf("expected nested statement, got %q", got)
	}

	plain := decisionText("Budget is $40,000")
	if plain != "Budget is $40,000" {
		t.Errorf("plain content should pass through, got %q", plain)
	}

	malformed := decisionText(`{"statement": `)
	if malformed != `{"statement": ` {
		t.Errorf("malformed JSON should pass through untouched, got %q", malformed)
	}
}

func TestResolveStageGate(t *testing.T) {
	svc, projects, _, _, _ := newResolutionFixture()
	project := projects.addProject(domain.StageContextReady, nil)

	_, err := svc.Resolve(context.Background(), project.ID, []domain.ResolutionDecision{
		{ContradictionID: uuid.New(), CustomInput: "x", Reasoning: "y"},
	})
	if !errors.Is(err, ErrStageTooEarly) {
		t.Fatalf("expected ErrStageTooEarly, got %v", err)
	}
}
