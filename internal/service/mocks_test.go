package service

import (
	"context"
	"time"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/anvaya-ai/anvaya/internal/store"
	"github.com/google/uuid"
)

// mockProjectStore implements domain.ProjectStore for testing.
type mockProjectStore struct {
	projects map[uuid.UUID]*domain.Project
}

func newMockProjectStore() *mockProjectStore {
	return &mockProjectStore{projects: make(map[uuid.UUID]*domain.Project)}
}

func (m *mockProjectStore) addProject(stage domain.ProjectStage, files []domain.FileRef) *domain.Project {
	p := &domain.Project{
		ID:        uuid.New(),
		UserID:    "user-1",
		Name:      "Checkout Revamp",
		Stage:     stage,
		Files:     files,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.projects[p.ID] = p
	return p
}

func (m *mockProjectStore) Create(ctx context.Context, p *domain.Project) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	stored := *p
	m.projects[p.ID] = &stored
	return nil
}

func (m *mockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProjectStore) ListByUserID(ctx context.Context, userID string) ([]domain.Project, error) {
	var results []domain.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			results = append(results, *p)
		}
	}
	return results, nil
}

func (m *mockProjectStore) Update(ctx context.Context, p *domain.Project) error {
	stored, ok := m.projects[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	stored.Name = p.Name
	stored.Description = p.Description
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *mockProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *mockProjectStore) AppendFiles(ctx context.Context, id uuid.UUID, files []domain.FileRef) (*domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Files = append(p.Files, files...)
	copied := *p
	return &copied, nil
}

func (m *mockProjectStore) AdvanceStage(ctx context.Context, id uuid.UUID) (domain.ProjectStage, error) {
	p, ok := m.projects[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	p.Stage++
	return p.Stage, nil
}

func (m *mockProjectStore) SetStageAtLeast(ctx context.Context, id uuid.UUID, stage domain.ProjectStage) error {
	p, ok := m.projects[id]
	if !ok {
		return store.ErrNotFound
	}
	if stage > p.Stage {
		p.Stage = stage
	}
	return nil
}

func (m *mockProjectStore) SetFinalDocument(ctx context.Context, id uuid.UUID, doc string) error {
	p, ok := m.projects[id]
	if !ok {
		return store.ErrNotFound
	}
	p.FinalDocument = doc
	return nil
}

// mockStakeholderStore implements domain.StakeholderStore for testing.
type mockStakeholderStore struct {
	stakeholders map[uuid.UUID]*domain.Stakeholder
	createErr    error
}

func newMockStakeholderStore() *mockStakeholderStore {
	return &mockStakeholderStore{stakeholders: make(map[uuid.UUID]*domain.Stakeholder)}
}

func (m *mockStakeholderStore) addStakeholder(projectID uuid.UUID, name, role string) *domain.Stakeholder {
	st := &domain.Stakeholder{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now(),
	}
	m.stakeholders[st.ID] = st
	return st
}

func (m *mockStakeholderStore) CreateBatch(ctx context.Context, stakeholders []*domain.Stakeholder) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, st := range stakeholders {
		st.ID = uuid.New()
		st.CreatedAt = time.Now()
		stored := *st
		m.stakeholders[st.ID] = &stored
	}
	return nil
}

func (m *mockStakeholderStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Stakeholder, error) {
	var results []domain.Stakeholder
	for _, st := range m.stakeholders {
		if st.ProjectID == projectID {
			results = append(results, *st)
		}
	}
	return results, nil
}

// mockFactStore implements domain.FactStore for testing.
type mockFactStore struct {
	facts map[uuid.UUID]*domain.Fact
	order []uuid.UUID
}

func newMockFactStore() *mockFactStore {
	return &mockFactStore{facts: make(map[uuid.UUID]*domain.Fact)}
}

func (m *mockFactStore) addFact(projectID uuid.UUID, content string, stakeholderID *uuid.UUID) *domain.Fact {
	f := &domain.Fact{
		ID:            uuid.New(),
		ProjectID:     projectID,
		Content:       content,
		Source:        "#general",
		SourceType:    domain.SourceMessaging,
		Active:        true,
		StakeholderID: stakeholderID,
		CreatedAt:     time.Now(),
	}
	m.facts[f.ID] = f
	m.order = append(m.order, f.ID)
	return f
}

func (m *mockFactStore) CreateBatch(ctx context.Context, facts []*domain.Fact) error {
	for _, f := range facts {
		f.ID = uuid.New()
		f.Active = true
		f.CreatedAt = time.Now()
		stored := *f
		m.facts[f.ID] = &stored
		m.order = append(m.order, f.ID)
	}
	return nil
}

func (m *mockFactStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Fact, error) {
	f, ok := m.facts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (m *mockFactStore) ListByProject(ctx context.Context, projectID uuid.UUID, filter domain.FactFilter) ([]domain.Fact, error) {
	var results []domain.Fact
	for _, id := range m.order {
		f := m.facts[id]
		if f.ProjectID != projectID {
			continue
		}
		switch filter {
		case domain.FactFilterActive:
			if !f.Active {
				continue
			}
		case domain.FactFilterSuperseded:
			if f.Active {
				continue
			}
		}
		results = append(results, *f)
	}
	return results, nil
}

func (m *mockFactStore) SearchSimilar(ctx context.Context, projectID uuid.UUID, embedding []float32, limit int) ([]domain.FactWithScore, error) {
	var results []domain.FactWithScore
	for _, id := range m.order {
		f := m.facts[id]
		if f.ProjectID != projectID || len(f.Embedding) == 0 {
			continue
		}
		results = append(results, domain.FactWithScore{Fact: *f, Score: 0.5})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// mockContradictionStore implements domain.ContradictionStore for testing.
// Setting replaceErr simulates a failed transaction: the stored set is left
// untouched.
type mockContradictionStore struct {
	contradictions map[uuid.UUID]*domain.Contradiction
	replaceErr     error
}

func newMockContradictionStore() *mockContradictionStore {
	return &mockContradictionStore{contradictions: make(map[uuid.UUID]*domain.Contradiction)}
}

func (m *mockContradictionStore) addContradiction(projectID uuid.UUID, factIDs []uuid.UUID) *domain.Contradiction {
	c := &domain.Contradiction{
		ID:        uuid.New(),
		ProjectID: projectID,
		FactIDs:   factIDs,
		Context:   "seeded",
		CreatedAt: time.Now(),
	}
	m.contradictions[c.ID] = c
	return c
}

func (m *mockContradictionStore) ReplaceForProject(ctx context.Context, projectID uuid.UUID, contradictions []*domain.Contradiction) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	for id, c := range m.contradictions {
		if c.ProjectID == projectID {
			delete(m.contradictions, id)
		}
	}
	for _, c := range contradictions {
		c.ID = uuid.New()
		c.CreatedAt = time.Now()
		stored := *c
		m.contradictions[c.ID] = &stored
	}
	return nil
}

func (m *mockContradictionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contradiction, error) {
	c, ok := m.contradictions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockContradictionStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Contradiction, error) {
	var results []domain.Contradiction
	for _, c := range m.contradictions {
		if c.ProjectID == projectID {
			results = append(results, *c)
		}
	}
	return results, nil
}

// mockResolutionStore implements domain.ResolutionStore for testing. It
// applies supersession against the given fact store the way the real
// transaction does.
type mockResolutionStore struct {
	resolutions []domain.Resolution
	facts       *mockFactStore
	applyErr    error
}

func newMockResolutionStore(facts *mockFactStore) *mockResolutionStore {
	return &mockResolutionStore{facts: facts}
}

func (m *mockResolutionStore) ApplyBatch(ctx context.Context, projectID uuid.UUID, applies []domain.ResolutionApply) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	for _, apply := range applies {
		r := apply.Resolution
		r.ID = uuid.New()
		r.CreatedAt = time.Now()
		m.resolutions = append(m.resolutions, *r)

		for _, id := range apply.DeactivateFactIDs {
			if f, ok := m.facts.facts[id]; ok && f.ProjectID == projectID {
				f.Active = false
			}
		}
		if apply.WinnerFactID != nil {
			f, ok := m.facts.facts[*apply.WinnerFactID]
			if !ok {
				return store.ErrNotFound
			}
			f.Active = true
		}
	}
	return nil
}

func (m *mockResolutionStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Resolution, error) {
	var results []domain.Resolution
	for _, r := range m.resolutions {
		if r.ProjectID == projectID {
			results = append(results, r)
		}
	}
	return results, nil
}
