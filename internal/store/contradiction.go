package store

import (
	"context"
	"errors"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContradictionStore struct {
	db *pgxpool.Pool
}

func NewContradictionStore(db *pgxpool.Pool) *ContradictionStore {
	return &ContradictionStore{db: db}
}

// ReplaceForProject swaps the project's contradiction set atomically. A
// per-project advisory lock serializes concurrent detection runs so the
// delete and insert never interleave.
func (s *ContradictionStore) ReplaceForProject(ctx context.Context, projectID uuid.UUID, contradictions []*domain.Contradiction) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, projectID.String()); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM contradictions WHERE project_id = $1`, projectID); err != nil {
		return err
	}

	for _, c := range contradictions {
		err := tx.QueryRow(ctx,
			`INSERT INTO contradictions (project_id, fact_ids, context)
			 VALUES ($1, $2, $3)
			 RETURNING id, created_at`,
			c.ProjectID, c.FactIDs, c.Context,
		).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *ContradictionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contradiction, error) {
	c := &domain.Contradiction{}
	err := s.db.QueryRow(ctx,
		`SELECT id, project_id, fact_ids, context, created_at FROM contradictions WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.ProjectID, &c.FactIDs, &c.Context, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *ContradictionStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Contradiction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, project_id, fact_ids, context, created_at
		 FROM contradictions WHERE project_id = $1 ORDER BY created_at`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contradictions []domain.Contradiction
	for rows.Next() {
		var c domain.Contradiction
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.FactIDs, &c.Context, &c.CreatedAt); err != nil {
			return nil, err
		}
		contradictions = append(contradictions, c)
	}
	return contradictions, rows.Err()
}
