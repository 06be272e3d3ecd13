package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chrisdamba/grocerplan/internal/catalog"
	"github.com/chrisdamba/grocerplan/internal/dataset"
	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/optimizer"
	"github.com/chrisdamba/grocerplan/internal/output"
	"github.com/chrisdamba/grocerplan/internal/planner"
	"github.com/chrisdamba/grocerplan/internal/reference"
	"github.com/chrisdamba/grocerplan/internal/repositories"
	"github.com/chrisdamba/grocerplan/internal/repositories/mongodb"
	"github.com/chrisdamba/grocerplan/internal/repositories/postgres"
)

// closer collects cleanup functions run in reverse order.
type closer []func()

func (c *closer) add(f func()) { *c = append(*c, f) }

func (c closer) close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func loadReference(config *models.Config) (*reference.Table, error) {
	if config.ReferenceFile == "" {
		return reference.Default(), nil
	}
	table, err := reference.Load(config.ReferenceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference table: %w", err)
	}
	return table, nil
}

func loadCatalog(ctx context.Context, config *models.Config, logger *zap.Logger) (*catalog.Catalog, error) {
	var items []models.CatalogItem
	switch config.CatalogSource {
	case "postgres":
		pool, err := postgres.Connect(ctx, config.Database.URL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		if items, err = postgres.NewCatalogRepository(pool).GetAll(ctx); err != nil {
			return nil, fmt.Errorf("failed to read catalog from postgres: %w", err)
		}
	default:
		if config.CatalogFile == "" {
			return nil, errors.New("no catalog: set catalog_file or pass --catalog")
		}
		var err error
		if items, err = dataset.LoadCatalog(config.CatalogFile); err != nil {
			return nil, err
		}
	}

	cat, err := catalog.Normalize(items, catalog.WithKnownStores(config.Stores))
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		zap.String("source", config.CatalogSource),
		zap.Int("items", cat.Len()),
		zap.Int("eligible", len(cat.Eligible())),
		zap.Strings("stores", cat.Stores()))
	return cat, nil
}

func newPlanner(ctx context.Context, config *models.Config, logger *zap.Logger) (*planner.Planner, error) {
	table, err := loadReference(config)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(ctx, config, logger.Named("catalog"))
	if err != nil {
		return nil, err
	}

	engine := optimizer.NewEngine(
		optimizer.WithSolver(optimizer.NewBranchAndBound(config.MaxNodes, logger.Named("solver"))),
		optimizer.WithTimeout(config.SolveTimeout),
		optimizer.WithRequiredCategories(config.Categories()),
		optimizer.WithLogger(logger.Named("engine")),
	)
	return planner.New(cat, table, engine,
		planner.WithConcurrency(config.Concurrency),
		planner.WithLogger(logger.Named("planner"))), nil
}

// openPlanStore connects the plan repository selected by the config, Postgres
// first. It returns nil when persistence is off.
func openPlanStore(ctx context.Context, config *models.Config, cleanup *closer) (repositories.PlanRepository, error) {
	if !config.PersistPlans {
		return nil, nil
	}
	if config.Database.URL != "" {
		pool, err := postgres.Connect(ctx, config.Database.URL)
		if err != nil {
			return nil, err
		}
		cleanup.add(pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			return nil, err
		}
		return postgres.NewPlanRepository(pool), nil
	}

	repo, err := mongodb.NewPlanRepository(ctx, config.MongoDB.URI, config.MongoDB.DBName)
	if err != nil {
		return nil, err
	}
	cleanup.add(func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	})
	return repo, nil
}

// openWriter builds the configured plan writer, with persistence appended
// when persist_plans is set.
func openWriter(ctx context.Context, config *models.Config, logger *zap.Logger, cleanup *closer) (output.PlanWriter, repositories.PlanRepository, error) {
	dest, err := output.NewDestination(ctx, config, logger.Named("output"))
	if err != nil {
		return nil, nil, err
	}
	cleanup.add(func() {
		if err := dest.Close(); err != nil {
			logger.Error("failed to close output", zap.Error(err))
		}
	})

	store, err := openPlanStore(ctx, config, cleanup)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		return dest, nil, nil
	}
	return output.NewMultiOutput(dest, output.NewRepositoryOutput(store)), store, nil
}

// loadHousehold reads one household and appends stock_file entries, if set.
func loadHousehold(config *models.Config, path string) (models.Household, error) {
	if path == "" {
		path = config.HouseholdFile
	}
	if path == "" {
		return models.Household{}, errors.New("no household: set household_file or pass --household")
	}
	h, err := dataset.LoadHousehold(path)
	if err != nil {
		return models.Household{}, err
	}
	if config.StockFile != "" {
		stock, err := dataset.LoadStock(config.StockFile)
		if err != nil {
			return models.Household{}, err
		}
		h.Stock = append(h.Stock, stock...)
	}
	return h, nil
}
