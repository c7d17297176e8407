package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

type FactStore struct {
	db *pgxpool.Pool
}

func NewFactStore(db *pgxpool.Pool) *FactStore {
	return &FactStore{db: db}
}

const factColumns = `id, project_id, content, source, COALESCE(tone, ''), COALESCE(claimed_at, ''), source_type, active, stakeholder_id, created_at`

func (s *FactStore) CreateBatch(ctx context.Context, facts []*domain.Fact) error {
	if len(facts) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, f := range facts {
		var embedding *pgvector.Vector
		if len(f.Embedding) > 0 {
			v := pgvector.NewVector(f.Embedding)
			embedding = &v
		}

		err := tx.QueryRow(ctx,
			`INSERT INTO facts (project_id, content, source, tone, claimed_at, source_type, active, stakeholder_id, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)
			 RETURNING id, active, created_at`,
			f.ProjectID, f.Content, f.Source, nullable(f.Tone), nullable(f.When), f.SourceType, f.StakeholderID, embedding,
		).Scan(&f.ID, &f.Active, &f.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *FactStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Fact, error) {
	f := &domain.Fact{}
	err := s.db.QueryRow(ctx,
		`SELECT `+factColumns+` FROM facts WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.ProjectID, &f.Content, &f.Source, &f.Tone, &f.When, &f.SourceType, &f.Active, &f.StakeholderID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FactStore) ListByProject(ctx context.Context, projectID uuid.UUID, filter domain.FactFilter) ([]domain.Fact, error) {
	query := `SELECT ` + factColumns + ` FROM facts WHERE project_id = $1`
	switch filter {
	case domain.FactFilterActive:
		query += ` AND active = TRUE`
	case domain.FactFilterSuperseded:
		query += ` AND active = FALSE`
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []domain.Fact
	for rows.Next() {
		var f domain.Fact
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Content, &f.Source, &f.Tone, &f.When, &f.SourceType, &f.Active, &f.StakeholderID, &f.CreatedAt); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

func (s *FactStore) SearchSimilar(ctx context.Context, projectID uuid.UUID, embedding []float32, limit int) ([]domain.FactWithScore, error) {
	if limit <= 0 {
		limit = 10
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT `+factColumns+`, 1 - (embedding <=> $2) AS score
		 FROM facts
		 WHERE project_id = $1 AND embedding IS NOT NULL
		 ORDER BY score DESC
		 LIMIT $3`,
		projectID, vec, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search similar query: %w", err)
	}
	defer rows.Close()

	var results []domain.FactWithScore
	for rows.Next() {
		var fs domain.FactWithScore
		err := rows.Scan(&fs.ID, &fs.ProjectID, &fs.Content, &fs.Source, &fs.Tone, &fs.When, &fs.SourceType, &fs.Active, &fs.StakeholderID, &fs.CreatedAt, &fs.Score)
		if err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		results = append(results, fs)
	}
	return results, rows.Err()
}
