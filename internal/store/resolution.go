package store

import (
	"context"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResolutionStore struct {
	db *pgxpool.Pool
}

func NewResolutionStore(db *pgxpool.Pool) *ResolutionStore {
	return &ResolutionStore{db: db}
}

// ApplyBatch writes all resolutions and fact supersessions in one
// transaction. For each decision: insert the resolution row, mark every
// contesting fact inactive, then reactivate the winner if one was chosen.
// The two-step deactivate/reactivate handles the custom-resolution case
// uniformly, where no fact survives.
func (s *ResolutionStore) ApplyBatch(ctx context.Context, projectID uuid.UUID, applies []domain.ResolutionApply) error {
	if len(applies) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, projectID.String()); err != nil {
		return err
	}

	for _, apply := range applies {
		r := apply.Resolution
		err := tx.QueryRow(ctx,
			`INSERT INTO resolutions (project_id, contradiction_id, final_decision, winner_fact_id, custom_input, reasoning)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at`,
			r.ProjectID, r.ContradictionID, r.FinalDecision, r.WinnerFactID, nullable(r.CustomInput), r.Reasoning,
		).Scan(&r.ID, &r.CreatedAt)
		if err != nil {
			return err
		}

		if len(apply.DeactivateFactIDs) > 0 {
			_, err = tx.Exec(ctx,
				`UPDATE facts SET active = FALSE WHERE project_id = $1 AND id = ANY($2)`,
				projectID, apply.DeactivateFactIDs,
			)
			if err != nil {
				return err
			}
		}

		if apply.WinnerFactID != nil {
			tag, err := tx.Exec(ctx,
				`UPDATE facts SET active = TRUE WHERE project_id = $1 AND id = $2`,
				projectID, *apply.WinnerFactID,
			)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
		}
	}

	return tx.Commit(ctx)
}

func (s *ResolutionStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Resolution, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, project_id, contradiction_id, final_decision, winner_fact_id, COALESCE(custom_input, ''), reasoning, created_at
		 FROM resolutions WHERE project_id = $1 ORDER BY created_at`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resolutions []domain.Resolution
	for rows.Next() {
		var r domain.Resolution
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.ContradictionID, &r.FinalDecision, &r.WinnerFactID, &r.CustomInput, &r.Reasoning, &r.CreatedAt); err != nil {
			return nil, err
		}
		resolutions = append(resolutions, r)
	}
	return resolutions, rows.Err()
}
