package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanRepository keeps the full plan as a JSONB document next to a
// normalized line table for reporting queries.
type PlanRepository struct {
	pool *pgxpool.Pool
}

func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

func (r *PlanRepository) Save(ctx context.Context, plan *models.PurchasePlan) error {
	document, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	total, err := numeric(plan.TotalCost)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO purchase_plans (
            id, household_id, created_at, total_cost, total_packages,
            total_weight_lb, store_count, document
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8
        )
    `
	_, err = tx.Exec(ctx, query,
		plan.ID,
		plan.HouseholdID,
		plan.CreatedAt,
		total,
		plan.TotalPackages,
		plan.TotalWeightLb,
		len(plan.Stores),
		document,
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"purchase_plan_lines"},
		[]string{"plan_id", "line_no", "store", "item_id", "quantity", "line_cost", "line_weight_lb"},
		pgx.CopyFromSlice(len(plan.Entries), func(i int) ([]interface{}, error) {
			e := plan.Entries[i]
			cost, err := numeric(e.LineCost)
			if err != nil {
				return nil, err
			}
			return []interface{}{plan.ID, i + 1, e.Item.Store, e.Item.ID, e.Quantity, cost, e.LineWeightLb}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy plan lines: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PlanRepository) GetByID(ctx context.Context, id string) (*models.PurchasePlan, error) {
	var document []byte
	err := r.pool.QueryRow(ctx, "SELECT document FROM purchase_plans WHERE id = $1", id).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("plan %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var plan models.PurchasePlan
	if err := json.Unmarshal(document, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan %s: %w", id, err)
	}
	return &plan, nil
}
