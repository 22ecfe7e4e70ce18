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

const meetingCollectionName = "meetings"

// mongoMeetingRepository implements repository.MeetingRepository
type mongoMeetingRepository struct {
	collection *mongo.Collection
}

// NewMongoMeetingRepository creates a new Meeting repository backed by MongoDB.
func NewMongoMeetingRepository(db *mongo.Database) repository.MeetingRepository {
	return &mongoMeetingRepository{
		collection: db.Collection(meetingCollectionName),
	}
}

// Create inserts a new meeting.
func (r *mongoMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) (primitive.ObjectID, error) {
	if meeting.CoachID == primitive.NilObjectID || meeting.ScheduledAt.IsZero() {
		return primitive.NilObjectID, errors.New("meeting requires coach ID and scheduled time")
	}
	if err := meeting.Client.Validate(); err != nil {
		return primitive.NilObjectID, err
	}

	meeting.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, meeting)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a meeting by ID.
func (r *mongoMeetingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meeting, error) {
	var meeting domain.Meeting
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&meeting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

// GetByCoachID retrieves a coach's meetings, soonest first.
func (r *mongoMeetingRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Meeting, error) {
	var meetings []domain.Meeting
	findOptions := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &meetings); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return meetings, nil
}

// Update modifies an existing meeting.
func (r *mongoMeetingRepository) Update(ctx context.Context, meeting *domain.Meeting) error {
	if meeting.ID == primitive.NilObjectID {
		return errors.New("meeting ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"kind":            meeting.Kind,
			"scheduledAt":     meeting.ScheduledAt,
			"durationMinutes": meeting.DurationMinutes,
			"location":        meeting.Location,
			"notes":           meeting.Notes,
			"updatedAt":       time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": meeting.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a meeting, scoped to the owning coach.
func (r *mongoMeetingRepository) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "coachId": coachID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMeetingIndexes creates necessary indexes for the meetings collection.
func EnsureMeetingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "scheduledAt", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
