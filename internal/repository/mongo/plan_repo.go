package mongo

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	workoutPlanCollectionName    = "workout_plans"
	nutritionPlanCollectionName  = "nutrition_plans"
	stepsPlanCollectionName      = "steps_plans"
	supplementPlanCollectionName = "supplement_plans"
)

// The four plan collections share identical access patterns, so the common
// pieces live in planCollection and each typed repo only supplies its own
// update document.

type planCollection struct {
	collection *mongo.Collection
}

func (p *planCollection) insert(ctx context.Context, meta *domain.PlanMeta, doc any) (primitive.ObjectID, error) {
	if err := meta.Client.Validate(); err != nil {
		return primitive.NilObjectID, err
	}

	meta.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	result, err := p.collection.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

func (p *planCollection) update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	if id == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}
	fields["updatedAt"] = time.Now().UTC()

	result, err := p.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func findPlans[T any](ctx context.Context, p *planCollection, client domain.ClientRef) ([]T, error) {
	var plans []T
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := p.collection.Find(ctx, clientFilter(client), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// deleteByBudgetAndClient removes every row matching the (budget, client)
// pair. Zero matches is not an error: the cascade is best-effort per
// collection and a client may never have had this plan type.
func (p *planCollection) deleteByBudgetAndClient(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error {
	_, err := p.collection.DeleteMany(ctx, budgetClientFilter(budgetID, client))
	return err
}

func (p *planCollection) setClient(ctx context.Context, from, to domain.ClientRef) error {
	if err := to.Validate(); err != nil {
		return err
	}

	set, unset := clientSetFields(to)
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err := p.collection.UpdateMany(ctx, clientFilter(from), update)
	return err
}

// --- Workout plans ---

type mongoWorkoutPlanRepository struct {
	planCollection
}

// NewMongoWorkoutPlanRepository creates a workout plan repository backed by MongoDB.
func NewMongoWorkoutPlanRepository(db *mongo.Database) repository.WorkoutPlanRepository {
	return &mongoWorkoutPlanRepository{planCollection{db.Collection(workoutPlanCollectionName)}}
}

func (r *mongoWorkoutPlanRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error) {
	return r.insert(ctx, &plan.PlanMeta, plan)
}

func (r *mongoWorkoutPlanRepository) GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.WorkoutPlan, error) {
	return findPlans[domain.WorkoutPlan](ctx, &r.planCollection, client)
}

func (r *mongoWorkoutPlanRepository) Update(ctx context.Context, plan *domain.WorkoutPlan) error {
	return r.update(ctx, plan.ID, bson.M{
		"name":     plan.Name,
		"days":     plan.Days,
		"notes":    plan.Notes,
		"budgetId": plan.BudgetID,
		"isActive": plan.IsActive,
	})
}

func (r *mongoWorkoutPlanRepository) DeleteByBudgetAndClient(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error {
	return r.deleteByBudgetAndClient(ctx, budgetID, client)
}

func (r *mongoWorkoutPlanRepository) SetClient(ctx context.Context, from, to domain.ClientRef) error {
	return r.setClient(ctx, from, to)
}

// --- Nutrition plans ---

type mongoNutritionPlanRepository struct {
	planCollection
}

// NewMongoNutritionPlanRepository creates a nutrition plan repository backed by MongoDB.
func NewMongoNutritionPlanRepository(db *mongo.Database) repository.NutritionPlanRepository {
	return &mongoNutritionPlanRepository{planCollection{db.Collection(nutritionPlanCollectionName)}}
}

func (r *mongoNutritionPlanRepository) Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	return r.insert(ctx, &plan.PlanMeta, plan)
}

func (r *mongoNutritionPlanRepository) GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.NutritionPlan, error) {
	return findPlans[domain.NutritionPlan](ctx, &r.planCollection, client)
}

func (r *mongoNutritionPlanRepository) Update(ctx context.Context, plan *domain.NutritionPlan) error {
	return r.update(ctx, plan.ID, bson.M{
		"targets":     plan.Targets,
		"eatingOrder": plan.EatingOrder,
		"eatingRules": plan.EatingRules,
		"budgetId":    plan.BudgetID,
		"isActive":    plan.IsActive,
	})
}

func (r *mongoNutritionPlanRepository) DeleteByBudgetAndClient(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error {
	return r.deleteByBudgetAndClient(ctx, budgetID, client)
}

func (r *mongoNutritionPlanRepository) SetClient(ctx context.Context, from, to domain.ClientRef) error {
	return r.setClient(ctx, from, to)
}

// --- Steps plans ---

type mongoStepsPlanRepository struct {
	planCollection
}

// NewMongoStepsPlanRepository creates a steps plan repository backed by MongoDB.
func NewMongoStepsPlanRepository(db *mongo.Database) repository.StepsPlanRepository {
	return &mongoStepsPlanRepository{planCollection{db.Collection(stepsPlanCollectionName)}}
}

func (r *mongoStepsPlanRepository) Create(ctx context.Context, plan *domain.StepsPlan) (primitive.ObjectID, error) {
	return r.insert(ctx, &plan.PlanMeta, plan)
}

func (r *mongoStepsPlanRepository) GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.StepsPlan, error) {
	return findPlans[domain.StepsPlan](ctx, &r.planCollection, client)
}

func (r *mongoStepsPlanRepository) Update(ctx context.Context, plan *domain.StepsPlan) error {
	return r.update(ctx, plan.ID, bson.M{
		"goal":         plan.Goal,
		"min":          plan.Min,
		"max":          plan.Max,
		"instructions": plan.Instructions,
		"budgetId":     plan.BudgetID,
		"isActive":     plan.IsActive,
	})
}

func (r *mongoStepsPlanRepository) DeleteByBudgetAndClient(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error {
	return r.deleteByBudgetAndClient(ctx, budgetID, client)
}

func (r *mongoStepsPlanRepository) SetClient(ctx context.Context, from, to domain.ClientRef) error {
	return r.setClient(ctx, from, to)
}

// --- Supplement plans ---

type mongoSupplementPlanRepository struct {
	planCollection
}

// NewMongoSupplementPlanRepository creates a supplement plan repository backed by MongoDB.
func NewMongoSupplementPlanRepository(db *mongo.Database) repository.SupplementPlanRepository {
	return &mongoSupplementPlanRepository{planCollection{db.Collection(supplementPlanCollectionName)}}
}

func (r *mongoSupplementPlanRepository) Create(ctx context.Context, plan *domain.SupplementPlan) (primitive.ObjectID, error) {
	return r.insert(ctx, &plan.PlanMeta, plan)
}

func (r *mongoSupplementPlanRepository) GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.SupplementPlan, error) {
	return findPlans[domain.SupplementPlan](ctx, &r.planCollection, client)
}

func (r *mongoSupplementPlanRepository) Update(ctx context.Context, plan *domain.SupplementPlan) error {
	return r.update(ctx, plan.ID, bson.M{
		"supplements": plan.Supplements,
		"budgetId":    plan.BudgetID,
		"isActive":    plan.IsActive,
	})
}

func (r *mongoSupplementPlanRepository) DeleteByBudgetAndClient(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error {
	return r.deleteByBudgetAndClient(ctx, budgetID, client)
}

func (r *mongoSupplementPlanRepository) SetClient(ctx context.Context, from, to domain.ClientRef) error {
	return r.setClient(ctx, from, to)
}

// EnsurePlanIndexes creates the shared indexes for one plan collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "leadId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "budgetId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
