package repositories

import (
	"context"
	"errors"

	"github.com/chrisdamba/grocerplan/internal/models"
)

// ErrNotFound is returned by GetByID when no plan has the requested id.
var ErrNotFound = errors.New("not found")

type CatalogRepository interface {
	BulkCreate(ctx context.Context, items []models.CatalogItem) error
	GetAll(ctx context.Context) ([]models.CatalogItem, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type PlanRepository interface {
	Save(ctx context.Context, plan *models.PurchasePlan) error
	GetByID(ctx context.Context, id string) (*models.PurchasePlan, error)
}
