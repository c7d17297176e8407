package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/anvaya-ai/anvaya/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxFilesPerUpload caps how many documents one attach request may carry.
const MaxFilesPerUpload = 10

type ProjectService struct {
	projects domain.ProjectStore
	ingestor domain.FileIngestor
	logger   *zap.Logger
}

func NewProjectService(ps domain.ProjectStore, fi domain.FileIngestor, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: ps,
		ingestor: fi,
		logger:   logger,
	}
}

// CreateInput is the input for creating a new project.
type CreateInput struct {
	UserID      string
	Name        string
	Description string
}

func (s *ProjectService) Create(ctx context.Context, input CreateInput) (*domain.Project, error) {
	if input.Name == "" {
		return nil, ErrProjectNameMissing
	}
	if input.UserID == "" {
		return nil, ErrUserIDMissing
	}

	project := &domain.Project{
		UserID:      input.UserID,
		Name:        input.Name,
		Description: input.Description,
		Stage:       domain.StageInitialized,
		Files:       []domain.FileRef{},
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("user_id", project.UserID))

	return project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) ListByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	if userID == "" {
		return nil, ErrUserIDMissing
	}
	return s.projects.ListByUserID(ctx, userID)
}

// UpdateInput carries the editable project fields. Nil means keep.
type UpdateInput struct {
	Name        *string
	Description *string
}

func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrProjectNameMissing
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.projects.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProjectNotFound
	}
	return err
}

// Upload is one incoming document.
type Upload struct {
	Filename    string
	ContentType string
	Open        func() (multipart.File, error)
}

// AttachFiles pushes each upload to the file service and appends the
// returned references to the project. The stage moves to context-ready
// once at least one file lands.
func (s *ProjectService) AttachFiles(ctx context.Context, id uuid.UUID, uploads []Upload) (*domain.Project, error) {
	if len(uploads) == 0 {
		return nil, invalidArg("no files in request")
	}
	if len(uploads) > MaxFilesPerUpload {
		return nil, ErrTooManyFiles
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	refs := make([]domain.FileRef, 0, len(uploads))
	for _, up := range uploads {
		ref, err := s.ingestOne(ctx, up)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", up.Filename, err)
		}
		refs = append(refs, ref)
	}

	project, err := s.projects.AppendFiles(ctx, id, refs)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if err := s.projects.SetStageAtLeast(ctx, id, domain.StageContextReady); err != nil {
		return nil, err
	}
	if project.Stage < domain.StageContextReady {
		project.Stage = domain.StageContextReady
	}

	s.logger.Info("files attached",
		zap.String("project_id", id.String()),
		zap.Int("count", len(refs)))

	return project, nil
}

func (s *ProjectService) ingestOne(ctx context.Context, up Upload) (domain.FileRef, error) {
	f, err := up.Open()
	if err != nil {
		return domain.FileRef{}, err
	}
	defer func() { _ = f.Close() }()
	return s.ingestor.Ingest(ctx, up.Filename, up.ContentType, f)
}

// AdvanceStage bumps the pipeline stage by one. The final stage is a hard
// ceiling.
func (s *ProjectService) AdvanceStage(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Stage >= domain.StageSynthesized {
		return nil, ErrStageComplete
	}

	stage, err := s.projects.AdvanceStage(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	project.Stage = stage
	return project, nil
}
