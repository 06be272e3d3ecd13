package output

import (
	"context"
	"fmt"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/repositories"
)

// RepositoryOutput persists plans through a PlanRepository. Closing it does
// not close the underlying connection, which the caller owns.
type RepositoryOutput struct {
	repo repositories.PlanRepository
}

func NewRepositoryOutput(repo repositories.PlanRepository) *RepositoryOutput {
	return &RepositoryOutput{repo: repo}
}

func (r *RepositoryOutput) WritePlan(ctx context.Context, plan *models.PurchasePlan) error {
	if err := r.repo.Save(ctx, plan); err != nil {
		return fmt.Errorf("failed to persist plan %s: %w", plan.ID, err)
	}
	return nil
}

func (r *RepositoryOutput) Close() error {
	return nil
}
