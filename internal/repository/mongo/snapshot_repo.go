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

const snapshotCollectionName = "action_plan_snapshots"

// mongoSnapshotRepository implements repository.SnapshotRepository.
// Snapshots are append-only; there is deliberately no update or delete.
type mongoSnapshotRepository struct {
	collection *mongo.Collection
}

// NewMongoSnapshotRepository creates a new Snapshot repository backed by MongoDB.
func NewMongoSnapshotRepository(db *mongo.Database) repository.SnapshotRepository {
	return &mongoSnapshotRepository{
		collection: db.Collection(snapshotCollectionName),
	}
}

// Create inserts a new snapshot.
func (r *mongoSnapshotRepository) Create(ctx context.Context, snapshot *domain.ActionPlanSnapshot) (primitive.ObjectID, error) {
	if snapshot.Budget.ID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("snapshot requires a budget")
	}
	if err := snapshot.Client.Validate(); err != nil {
		return primitive.NilObjectID, err
	}

	snapshot.ID = primitive.NewObjectID()
	if snapshot.CapturedAt.IsZero() {
		snapshot.CapturedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, snapshot)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a snapshot by ID.
func (r *mongoSnapshotRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ActionPlanSnapshot, error) {
	var snapshot domain.ActionPlanSnapshot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&snapshot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &snapshot, nil
}

// GetByClient retrieves a client's snapshot history, newest first.
func (r *mongoSnapshotRepository) GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.ActionPlanSnapshot, error) {
	var snapshots []domain.ActionPlanSnapshot
	findOptions := options.Find().SetSort(bson.D{{Key: "capturedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, clientFilter(client), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// EnsureSnapshotIndexes creates necessary indexes for the snapshots collection.
func EnsureSnapshotIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "capturedAt", Value: -1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "leadId", Value: 1}, {Key: "capturedAt", Value: -1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
