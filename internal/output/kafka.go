package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/shopspring/decimal"
)

type MessageProducer interface {
	WriteMessage(topic, key string, msg []byte) error
	Close() error
}

// PlanEvent is the message published for every finished plan. Lines carry
// enough to rebuild the shopping list without the catalog.
type PlanEvent struct {
	PlanID        string           `json:"plan_id"`
	HouseholdID   string           `json:"household_id,omitempty"`
	Timestamp     int64            `json:"timestamp"`
	TotalCost     decimal.Decimal  `json:"total_cost"`
	TotalPackages int              `json:"total_packages"`
	TotalWeightLb float64          `json:"total_weight_lb"`
	StoreCount    int              `json:"store_count"`
	Net           models.Nutrients `json:"net_requirement"`
	Achieved      models.Nutrients `json:"nutrients_achieved"`
	Lines         []PlanEventLine  `json:"lines"`
	SolveMillis   int64            `json:"solve_ms"`
}

type PlanEventLine struct {
	Store    string          `json:"store"`
	ItemID   string          `json:"item_id"`
	Quantity int             `json:"quantity"`
	LineCost decimal.Decimal `json:"line_cost"`
}

func NewPlanEvent(plan *models.PurchasePlan) PlanEvent {
	s := plan.Summary()
	ev := PlanEvent{
		PlanID:        plan.ID,
		HouseholdID:   plan.HouseholdID,
		Timestamp:     plan.CreatedAt.Unix(),
		TotalCost:     s.TotalCost,
		TotalPackages: s.TotalPackages,
		TotalWeightLb: s.TotalWeightLb,
		StoreCount:    s.StoreCount,
		Net:           plan.Requirement.Net,
		Achieved:      plan.NutrientsAchieved,
		SolveMillis:   plan.Stats.Duration.Milliseconds(),
	}
	for _, e := range plan.Entries {
		ev.Lines = append(ev.Lines, PlanEventLine{
			Store:    e.Item.Store,
			ItemID:   e.Item.ID,
			Quantity: e.Quantity,
			LineCost: e.LineCost,
		})
	}
	return ev
}

type KafkaOutput struct {
	producer MessageProducer
	topic    string
}

func NewKafkaOutput(producer MessageProducer, topic string) *KafkaOutput {
	return &KafkaOutput{producer: producer, topic: topic}
}

func (k *KafkaOutput) WritePlan(ctx context.Context, plan *models.PurchasePlan) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := json.Marshal(NewPlanEvent(plan))
	if err != nil {
		return fmt.Errorf("failed to encode plan event: %w", err)
	}
	key := plan.HouseholdID
	if key == "" {
		key = plan.ID
	}
	return k.producer.WriteMessage(k.topic, key, msg)
}

func (k *KafkaOutput) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}
