// Package mongodb archives purchase plans in MongoDB.
package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/repositories"
)

const plansCollection = "purchase_plans"

// PlanRepository implements repositories.PlanRepository for MongoDB.
type PlanRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// planRecord is the stored form. Plan holds the JSON rendering of the plan
// so decimals keep their exact text; the top-level fields are for queries.
type planRecord struct {
	ID            string               `bson:"_id"`
	HouseholdID   string               `bson:"household_id"`
	CreatedAt     time.Time            `bson:"created_at"`
	TotalCost     primitive.Decimal128 `bson:"total_cost"`
	TotalPackages int                  `bson:"total_packages"`
	StoreCount    int                  `bson:"store_count"`
	Plan          bson.D               `bson:"plan"`
}

type storedPlan struct {
	Plan bson.Raw `bson:"plan"`
}

// NewPlanRepository connects, pings and returns a repository.
func NewPlanRepository(ctx context.Context, uri string, dbName string) (*PlanRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &PlanRepository{
		client:   client,
		dbName:   dbName,
		collName: plansCollection,
	}, nil
}

func (r *PlanRepository) Save(ctx context.Context, plan *models.PurchasePlan) error {
	record, err := newPlanRecord(plan)
	if err != nil {
		return err
	}
	collection := r.client.Database(r.dbName).Collection(r.collName)
	if _, err := collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert purchase plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id string) (*models.PurchasePlan, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	var stored storedPlan
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("plan %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase plan: %w", err)
	}
	return decodePlan(stored.Plan)
}

// Close closes the MongoDB connection.
func (r *PlanRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func newPlanRecord(plan *models.PurchasePlan) (*planRecord, error) {
	total, err := primitive.ParseDecimal128(plan.TotalCost.String())
	if err != nil {
		return nil, fmt.Errorf("invalid total cost %s: %w", plan.TotalCost, err)
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert plan to bson: %w", err)
	}
	return &planRecord{
		ID:            plan.ID,
		HouseholdID:   plan.HouseholdID,
		CreatedAt:     plan.CreatedAt,
		TotalCost:     total,
		TotalPackages: plan.TotalPackages,
		StoreCount:    len(plan.Stores),
		Plan:          doc,
	}, nil
}

func decodePlan(raw bson.Raw) (*models.PurchasePlan, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert plan to json: %w", err)
	}
	var plan models.PurchasePlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	return &plan, nil
}
