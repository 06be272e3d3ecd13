package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) BulkCreate(ctx context.Context, items []models.CatalogItem) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"catalog_items"},
		[]string{
			"id", "name", "food", "store", "category", "unit_price",
			"calories", "protein_g", "carbs_g", "fat_g", "max_quantity", "weight_lb",
		},
		pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
			price, err := numeric(items[i].UnitPrice)
			if err != nil {
				return nil, err
			}
			return []interface{}{
				items[i].ID,
				items[i].Name,
				items[i].Food,
				items[i].Store,
				string(items[i].Category),
				price,
				items[i].Nutrients.Calories,
				items[i].Nutrients.ProteinG,
				items[i].Nutrients.CarbsG,
				items[i].Nutrients.FatG,
				items[i].MaxQuantity,
				items[i].WeightLb,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy catalog items: %w", err)
	}
	return nil
}

// GetAll returns the catalog ordered by store and id.
func (r *CatalogRepository) GetAll(ctx context.Context) ([]models.CatalogItem, error) {
	query := `
        SELECT
            id,
            name,
            food,
            store,
            category,
            unit_price::text,
            calories,
            protein_g,
            carbs_g,
            fat_g,
            max_quantity,
            weight_lb
        FROM catalog_items
        ORDER BY store, id
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CatalogItem
	for rows.Next() {
		var item models.CatalogItem
		var category, price string
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Food,
			&item.Store,
			&category,
			&price,
			&item.Nutrients.Calories,
			&item.Nutrients.ProteinG,
			&item.Nutrients.CarbsG,
			&item.Nutrients.FatG,
			&item.MaxQuantity,
			&item.WeightLb,
		)
		if err != nil {
			return nil, err
		}
		item.Category = models.Category(category)
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("item %s: invalid unit_price %q: %w", item.ID, price, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM catalog_items").Scan(&count)
	return count, err
}

func (r *CatalogRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM catalog_items")
	return err
}
