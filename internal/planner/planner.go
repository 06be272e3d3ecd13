// Package planner drives one weekly solve end to end: pantry resolution,
// demand aggregation, optimization and plan assembly.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/grocerplan/internal/assembler"
	"github.com/chrisdamba/grocerplan/internal/catalog"
	"github.com/chrisdamba/grocerplan/internal/demand"
	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/optimizer"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Planner struct {
	catalog     *catalog.Catalog
	aggregator  *demand.Aggregator
	engine      *optimizer.Engine
	assembler   *assembler.Assembler
	concurrency int
	logger      *zap.Logger
}

type Option func(*Planner)

func WithConcurrency(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New wires a planner around a catalog and reference table that are shared,
// read-only, by every solve.
func New(cat *catalog.Catalog, table demand.RequirementSource, engine *optimizer.Engine, opts ...Option) *Planner {
	p := &Planner{
		catalog:     cat,
		aggregator:  demand.NewAggregator(table),
		engine:      engine,
		assembler:   assembler.New(),
		concurrency: 1,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.engine == nil {
		p.engine = optimizer.NewEngine(optimizer.WithLogger(p.logger.Named("engine")))
	}
	return p
}

func (p *Planner) Catalog() *catalog.Catalog {
	return p.catalog
}

// Requirement computes the net weekly requirement without solving.
func (p *Planner) Requirement(household models.Household) (models.NetWeeklyRequirement, error) {
	stock, err := p.catalog.ResolveStock(household.Stock)
	if err != nil {
		return models.NetWeeklyRequirement{}, err
	}
	return p.aggregator.NetWeekly(household.Members, stock)
}

// Plan solves one household. Lookup and stock errors surface before the solver
// is ever invoked.
func (p *Planner) Plan(ctx context.Context, household models.Household) (*models.PurchasePlan, error) {
	solveID := uuid.New().String()
	logger := p.logger.With(zap.String("solve_id", solveID), zap.String("household_id", household.ID))
	start := time.Now()

	req, err := p.Requirement(household)
	if err != nil {
		logger.Warn("requirement rejected", zap.Error(err))
		return nil, err
	}
	logger.Debug("net weekly requirement",
		zap.Float64("calories", req.Net.Calories),
		zap.Float64("protein_g", req.Net.ProteinG),
		zap.Float64("carbs_g", req.Net.CarbsG),
		zap.Float64("fat_g", req.Net.FatG))

	res, err := p.engine.Solve(ctx, req.Net, p.catalog)
	if err != nil {
		logger.Warn("solve failed", zap.Error(err))
		return nil, err
	}

	plan, err := p.assembler.Assemble(household.ID, req, res)
	if err != nil {
		logger.Error("plan assembly failed", zap.Error(err))
		return nil, err
	}

	logger.Info("plan ready",
		zap.String("plan_id", plan.ID),
		zap.String("total_cost", plan.TotalCost.StringFixed(2)),
		zap.Int("packages", plan.TotalPackages),
		zap.Int("stores", len(plan.Stores)),
		zap.Duration("duration", time.Since(start)))
	return plan, nil
}

// BatchResult pairs a household with its plan or the error that stopped it.
type BatchResult struct {
	HouseholdID string
	Plan        *models.PurchasePlan
	Err         error
}

// PlanBatch solves independent households in parallel. A failed household
// does not stop the batch; only cancellation of ctx does. Results keep input
// order. onResult, when set, is called once per finished household from the
// worker goroutines.
func (p *Planner) PlanBatch(ctx context.Context, households []models.Household, onResult func(BatchResult)) ([]BatchResult, error) {
	results := make([]BatchResult, len(households))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, h := range households {
		i, h := i, h
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plan, err := p.Plan(gctx, h)
			results[i] = BatchResult{HouseholdID: h.ID, Plan: plan, Err: err}
			if onResult != nil {
				onResult(results[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch aborted: %w", err)
	}
	return results, nil
}
