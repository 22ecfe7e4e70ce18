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

const assignmentCollectionName = "budget_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new budget assignment.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.BudgetAssignment) (primitive.ObjectID, error) {
	if assignment.BudgetID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires budgetId")
	}
	if err := assignment.Client.Validate(); err != nil {
		return primitive.NilObjectID, err
	}

	assignment.ID = primitive.NewObjectID()
	assignment.AssignedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assignment ID")
	}

	return insertedID, nil
}

// GetByID retrieves an assignment by its ID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BudgetAssignment, error) {
	var assignment domain.BudgetAssignment
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByBudgetID retrieves all assignments of a budget, oldest first so that
// "first in list" resolution is stable across reads.
func (r *mongoAssignmentRepository) GetByBudgetID(ctx context.Context, budgetID primitive.ObjectID) ([]domain.BudgetAssignment, error) {
	return r.find(ctx, bson.M{"budgetId": budgetID})
}

// GetByClient retrieves all assignments for a customer or lead.
func (r *mongoAssignmentRepository) GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.BudgetAssignment, error) {
	return r.find(ctx, clientFilter(client))
}

func (r *mongoAssignmentRepository) find(ctx context.Context, filter bson.M) ([]domain.BudgetAssignment, error) {
	var assignments []domain.BudgetAssignment
	findOptions := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// SetClient re-points an assignment at another client, used when a lead is
// converted to a customer.
func (r *mongoAssignmentRepository) SetClient(ctx context.Context, id primitive.ObjectID, client domain.ClientRef) error {
	if err := client.Validate(); err != nil {
		return err
	}

	set, unset := clientSetFields(client)
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an assignment row. Cascading plan deletion is the service
// layer's job; the repo only touches its own collection.
func (r *mongoAssignmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAssignmentIndexes creates necessary indexes for the budget_assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "budgetId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "leadId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
