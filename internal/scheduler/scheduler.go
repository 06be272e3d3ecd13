// Package scheduler re-plans every household on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/output"
	"github.com/chrisdamba/grocerplan/internal/planner"
)

// HouseholdSource returns the households to plan for. It is called once per
// run so edits to the household file are picked up.
type HouseholdSource func() ([]models.Household, error)

// RunSummary counts the outcome of one scheduled run.
type RunSummary struct {
	Households int
	Planned    int
	Failed     int
	Duration   time.Duration
}

// Scheduler manages the weekly replan job.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	planner    *planner.Planner
	households HouseholdSource
	writer     output.PlanWriter
	jobTimeout time.Duration
	logger     *zap.Logger

	// writers are not safe for concurrent use
	mu sync.Mutex
}

// NewScheduler creates a scheduler that runs on cfg.Cron in cfg.Timezone.
func NewScheduler(cfg models.ScheduleConfig, p *planner.Planner, households HouseholdSource, writer output.PlanWriter, jobTimeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := time.Local
	if cfg.Timezone != "" && cfg.Timezone != "Local" {
		var err error
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			return nil, fmt.Errorf("invalid schedule timezone: %w", err)
		}
	}
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Minute
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		spec:       cfg.Cron,
		planner:    p,
		households: households,
		writer:     writer,
		jobTimeout: jobTimeout,
		logger:     logger,
	}, nil
}

// Start registers the replan job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.replan); err != nil {
		return fmt.Errorf("failed to schedule weekly replan %q: %w", s.spec, err)
	}
	s.logger.Info("starting scheduler", zap.String("cron", s.spec))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) replan() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	summary, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("weekly replan failed", zap.Error(err))
		return
	}
	s.logger.Info("weekly replan finished",
		zap.Int("households", summary.Households),
		zap.Int("planned", summary.Planned),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration))
}

// RunOnce plans every household and writes each successful plan. A household
// that cannot be planned is logged and counted; it does not stop the run.
func (s *Scheduler) RunOnce(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	households, err := s.households()
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to load households: %w", err)
	}

	summary := RunSummary{Households: len(households)}
	var writeErr error
	_, err = s.planner.PlanBatch(ctx, households, func(r planner.BatchResult) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if r.Err != nil {
			summary.Failed++
			s.logger.Warn("household not planned", zap.String("household_id", r.HouseholdID), zap.Error(r.Err))
			return
		}
		if err := s.writer.WritePlan(ctx, r.Plan); err != nil {
			summary.Failed++
			if writeErr == nil {
				writeErr = err
			}
			s.logger.Error("failed to write plan", zap.String("plan_id", r.Plan.ID), zap.Error(err))
			return
		}
		summary.Planned++
	})
	summary.Duration = time.Since(start)
	if err != nil {
		return summary, err
	}
	if writeErr != nil {
		return summary, fmt.Errorf("some plans were not written: %w", writeErr)
	}
	return summary, nil
}
