package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectStore struct {
	db *pgxpool.Pool
}

func NewProjectStore(db *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{db: db}
}

const projectColumns = `id, user_id, project_name, project_description, stage, files, COALESCE(final_document, ''), created_at, updated_at`

func (s *ProjectStore) Create(ctx context.Context, p *domain.Project) error {
	if p.Files == nil {
		p.Files = []domain.FileRef{}
	}
	files, err := json.Marshal(p.Files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO projects (user_id, project_name, project_description, stage, files)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		p.UserID, p.Name, p.Description, p.Stage, files,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (s *ProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	p := &domain.Project{}
	err := s.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Stage, &p.Files, &p.FinalDocument, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProjectStore) ListByUserID(ctx context.Context, userID string) ([]domain.Project, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Stage, &p.Files, &p.FinalDocument, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectStore) Update(ctx context.Context, p *domain.Project) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE projects SET project_name = $1, project_description = $2, updated_at = NOW() WHERE id = $3`,
		p.Name, p.Description, p.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM projects WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProjectStore) AppendFiles(ctx context.Context, id uuid.UUID, files []domain.FileRef) (*domain.Project, error) {
	appended, err := json.Marshal(files)
	if err != nil {
		return nil, fmt.Errorf("marshal files: %w", err)
	}

	p := &domain.Project{}
	err = s.db.QueryRow(ctx,
		`UPDATE projects SET files = files || $2::jsonb, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+projectColumns,
		id, appended,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Stage, &p.Files, &p.FinalDocument, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProjectStore) AdvanceStage(ctx context.Context, id uuid.UUID) (domain.ProjectStage, error) {
	var stage domain.ProjectStage
	err := s.db.QueryRow(ctx,
		`UPDATE projects SET stage = stage + 1, updated_at = NOW() WHERE id = $1 RETURNING stage`,
		id,
	).Scan(&stage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return stage, nil
}

func (s *ProjectStore) SetStageAtLeast(ctx context.Context, id uuid.UUID, stage domain.ProjectStage) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE projects SET stage = GREATEST(stage, $2), updated_at = NOW() WHERE id = $1`,
		id, stage,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProjectStore) SetFinalDocument(ctx context.Context, id uuid.UUID, doc string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE projects SET final_document = $2, updated_at = NOW() WHERE id = $1`,
		id, doc,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
