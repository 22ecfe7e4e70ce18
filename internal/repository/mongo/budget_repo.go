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

const budgetCollectionName = "budgets"

// mongoBudgetRepository implements repository.BudgetRepository
type mongoBudgetRepository struct {
	collection *mongo.Collection
}

// NewMongoBudgetRepository creates a new Budget repository backed by MongoDB.
func NewMongoBudgetRepository(db *mongo.Database) repository.BudgetRepository {
	return &mongoBudgetRepository{
		collection: db.Collection(budgetCollectionName),
	}
}

// Create inserts a new budget into the database.
func (r *mongoBudgetRepository) Create(ctx context.Context, budget *domain.Budget) (primitive.ObjectID, error) {
	if budget.Name == "" || budget.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("budget name and coach ID are required")
	}
	if err := budget.NutritionTargets.Validate(); err != nil {
		return primitive.NilObjectID, err
	}

	budget.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	budget.CreatedAt = now
	budget.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, budget)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a budget by its ID.
func (r *mongoBudgetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Budget, error) {
	var budget domain.Budget
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&budget)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &budget, nil
}

// GetByCoachID retrieves all budgets owned by a specific coach, newest first.
func (r *mongoBudgetRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Budget, error) {
	var budgets []domain.Budget
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &budgets); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return budgets, nil
}

// Update replaces the full set of non-identity fields on a budget in one
// write. The ID, owner and creation timestamp never change; everything else is
// taken from the passed struct, so callers must supply the complete desired
// state rather than a partial patch.
func (r *mongoBudgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	if budget.ID == primitive.NilObjectID {
		return errors.New("budget ID is required for update")
	}
	if budget.Name == "" {
		return errors.New("budget name cannot be empty")
	}
	if err := budget.NutritionTargets.Validate(); err != nil {
		return err
	}

	filter := bson.M{"_id": budget.ID}
	update := bson.M{
		"$set": bson.M{
			"name":                 budget.Name,
			"description":          budget.Description,
			"nutritionTargets":     budget.NutritionTargets,
			"stepsGoal":            budget.StepsGoal,
			"stepsMin":             budget.StepsMin,
			"stepsMax":             budget.StepsMax,
			"stepsInstructions":    budget.StepsInstructions,
			"workoutTemplateId":    budget.WorkoutTemplateID,
			"nutritionTemplateId":  budget.NutritionTemplateID,
			"supplementTemplateId": budget.SupplementTemplateID,
			"supplements":          budget.Supplements,
			"eatingOrder":          budget.EatingOrder,
			"eatingRules":          budget.EatingRules,
			"otherNotes":           budget.OtherNotes,
			"cardioTraining":       budget.CardioTraining,
			"intervalTraining":     budget.IntervalTraining,
			"isPublic":             budget.IsPublic,
			"updatedAt":            time.Now().UTC(),
			// Note: We specifically DO NOT set coachId here
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a budget, scoped to its owning coach.
func (r *mongoBudgetRepository) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "coachId": coachID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureBudgetIndexes creates necessary indexes for the budgets collection.
func EnsureBudgetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "isPublic", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
