package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/chrisdamba/grocerplan/internal/catalog"
	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/planner"
	"github.com/chrisdamba/grocerplan/internal/reference"
	"github.com/shopspring/decimal"
)

type recordingWriter struct {
	plans []*models.PurchasePlan
	err   error
}

func (r *recordingWriter) WritePlan(ctx context.Context, plan *models.PurchasePlan) error {
	if r.err != nil {
		return r.err
	}
	r.plans = append(r.plans, plan)
	return nil
}

func (r *recordingWriter) Close() error { return nil }

func testPlanner(t *testing.T) *planner.Planner {
	t.Helper()
	daily := models.Nutrients{Calories: 1000, ProteinG: 20, CarbsG: 100, FatG: 20}
	table, err := reference.NewTable([]models.RequirementRow{
		{Sex: models.SexMale, MinAge: 19, MaxAge: 50, Daily: daily},
		{Sex: models.SexFemale, MinAge: 19, MaxAge: 50, Daily: daily},
	})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	var items []models.CatalogItem
	for i, c := range models.RequiredCategories {
		items = append(items, models.CatalogItem{
			ID:          string(c),
			Name:        string(c),
			Store:       "Kroger",
			Category:    c,
			UnitPrice:   decimal.NewFromInt(int64(i + 1)),
			Nutrients:   daily,
			MaxQuantity: 14,
			WeightLb:    1,
		})
	}
	cat, err := catalog.Normalize(items)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return planner.New(cat, table, nil, planner.WithConcurrency(2))
}

func TestRunOnce(t *testing.T) {
	households := []models.Household{
		{ID: "a", Members: []models.HouseholdMember{{Age: 30, Sex: models.SexMale}}},
		{ID: "b", Members: []models.HouseholdMember{{Age: 5, Sex: models.SexMale}}},
		{ID: "c", Members: []models.HouseholdMember{{Age: 40, Sex: models.SexFemale}}},
	}
	writer := &recordingWriter{}
	s, err := NewScheduler(models.ScheduleConfig{Cron: "0 8 * * 6", Timezone: "UTC"}, testPlanner(t),
		func() ([]models.Household, error) { return households, nil }, writer, 0, nil)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	summary, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if summary.Households != 3 || summary.Planned != 2 || summary.Failed != 1 {
		t.Errorf("Unexpected summary %+v", summary)
	}
	if len(writer.plans) != 2 {
		t.Errorf("Expected 2 plans written, got %d", len(writer.plans))
	}
}

func TestRunOnceErrors(t *testing.T) {
	households := []models.Household{{ID: "a", Members: []models.HouseholdMember{{Age: 30, Sex: models.SexMale}}}}

	t.Run("Household source fails", func(t *testing.T) {
		boom := errors.New("file vanished")
		s, _ := NewScheduler(models.ScheduleConfig{Cron: "@weekly"}, testPlanner(t),
			func() ([]models.Household, error) { return nil, boom }, &recordingWriter{}, 0, nil)
		if _, err := s.RunOnce(context.Background()); !errors.Is(err, boom) {
			t.Errorf("Expected %v, got %v", boom, err)
		}
	})

	t.Run("Writer fails", func(t *testing.T) {
		boom := errors.New("disk full")
		s, _ := NewScheduler(models.ScheduleConfig{Cron: "@weekly"}, testPlanner(t),
			func() ([]models.Household, error) { return households, nil }, &recordingWriter{err: boom}, 0, nil)
		summary, err := s.RunOnce(context.Background())
		if !errors.Is(err, boom) {
			t.Errorf("Expected %v, got %v", boom, err)
		}
		if summary.Failed != 1 {
			t.Errorf("Expected the failed write to be counted, got %+v", summary)
		}
	})
}

func TestSchedulerConfig(t *testing.T) {
	source := func() ([]models.Household, error) { return nil, nil }

	if _, err := NewScheduler(models.ScheduleConfig{Cron: "@weekly", Timezone: "Mars/Olympus"}, nil, source, nil, 0, nil); err == nil {
		t.Error("Expected an unknown timezone to fail")
	}

	s, err := NewScheduler(models.ScheduleConfig{Cron: "not a cron"}, nil, source, nil, 0, nil)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	if err := s.Start(); err == nil {
		s.Stop()
		t.Error("Expected an invalid cron expression to fail")
	}

	s, _ = NewScheduler(models.ScheduleConfig{Cron: "0 8 * * 6", Timezone: "UTC"}, nil, source, nil, 0, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()
}
