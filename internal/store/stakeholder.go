package store

import (
	"context"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StakeholderStore struct {
	db *pgxpool.Pool
}

func NewStakeholderStore(db *pgxpool.Pool) *StakeholderStore {
	return &StakeholderStore{db: db}
}

func (s *StakeholderStore) CreateBatch(ctx context.Context, stakeholders []*domain.Stakeholder) error {
	if len(stakeholders) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, st := range stakeholders {
		err := tx.QueryRow(ctx,
			`INSERT INTO stakeholders (project_id, name, role, influence, stance)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			st.ProjectID, st.Name, st.Role, nullable(string(st.Influence)), nullable(string(st.Stance)),
		).Scan(&st.ID, &st.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *StakeholderStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Stakeholder, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, project_id, name, role, COALESCE(influence, ''), COALESCE(stance, ''), created_at
		 FROM stakeholders WHERE project_id = $1 ORDER BY created_at`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stakeholders []domain.Stakeholder
	for rows.Next() {
		var st domain.Stakeholder
		if err := rows.Scan(&st.ID, &st.ProjectID, &st.Name, &st.Role, &st.Influence, &st.Stance, &st.CreatedAt); err != nil {
			return nil, err
		}
		stakeholders = append(stakeholders, st)
	}
	return stakeholders, rows.Err()
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
