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

const paymentCollectionName = "payments"

// mongoPaymentRepository implements repository.PaymentRepository
type mongoPaymentRepository struct {
	collection *mongo.Collection
}

// NewMongoPaymentRepository creates a new Payment repository backed by MongoDB.
func NewMongoPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &mongoPaymentRepository{
		collection: db.Collection(paymentCollectionName),
	}
}

// Create inserts a new payment row.
func (r *mongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	if err := payment.Validate(); err != nil {
		return primitive.NilObjectID, err
	}
	if payment.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("payment requires coach ID")
	}

	payment.ID = primitive.NewObjectID()
	payment.CreatedAt = time.Now().UTC()
	if payment.PaidAt.IsZero() {
		payment.PaidAt = payment.CreatedAt
	}

	result, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByClient retrieves all payments for a customer or lead, newest first.
func (r *mongoPaymentRepository) GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.Payment, error) {
	return r.find(ctx, clientFilter(client))
}

// GetByCoachID retrieves all payments recorded by a coach, newest first.
func (r *mongoPaymentRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Payment, error) {
	return r.find(ctx, bson.M{"coachId": coachID})
}

func (r *mongoPaymentRepository) find(ctx context.Context, filter bson.M) ([]domain.Payment, error) {
	var payments []domain.Payment
	findOptions := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

// Delete removes a payment, scoped to the owning coach.
func (r *mongoPaymentRepository) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "coachId": coachID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePaymentIndexes creates necessary indexes for the payments collection.
func EnsurePaymentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "paidAt", Value: -1}},
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
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
