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
	customerCollectionName = "customers"
	leadCollectionName     = "leads"
)

// --- Customers ---

// mongoCustomerRepository implements repository.CustomerRepository
type mongoCustomerRepository struct {
	collection *mongo.Collection
}

// NewMongoCustomerRepository creates a new Customer repository backed by MongoDB.
func NewMongoCustomerRepository(db *mongo.Database) repository.CustomerRepository {
	return &mongoCustomerRepository{
		collection: db.Collection(customerCollectionName),
	}
}

// Create inserts a new customer.
func (r *mongoCustomerRepository) Create(ctx context.Context, customer *domain.Customer) (primitive.ObjectID, error) {
	if customer.Name == "" || customer.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("customer name and coach ID are required")
	}

	customer.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, customer)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a customer by ID.
func (r *mongoCustomerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// GetByCoachID retrieves all customers of a coach, newest first.
func (r *mongoCustomerRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Customer, error) {
	var customers []domain.Customer
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

// Update modifies an existing customer's contact fields.
func (r *mongoCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == primitive.NilObjectID {
		return errors.New("customer ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":      customer.Name,
			"email":     customer.Email,
			"phone":     customer.Phone,
			"notes":     customer.Notes,
			"portalId":  customer.PortalID,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": customer.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a customer, scoped to the owning coach.
func (r *mongoCustomerRepository) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "coachId": coachID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// --- Leads ---

// mongoLeadRepository implements repository.LeadRepository
type mongoLeadRepository struct {
	collection *mongo.Collection
}

// NewMongoLeadRepository creates a new Lead repository backed by MongoDB.
func NewMongoLeadRepository(db *mongo.Database) repository.LeadRepository {
	return &mongoLeadRepository{
		collection: db.Collection(leadCollectionName),
	}
}

// Create inserts a new lead.
func (r *mongoLeadRepository) Create(ctx context.Context, lead *domain.Lead) (primitive.ObjectID, error) {
	if lead.Name == "" || lead.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("lead name and coach ID are required")
	}
	if lead.Status == "" {
		lead.Status = domain.LeadNew
	}

	lead.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, lead)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a lead by ID.
func (r *mongoLeadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lead)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

// GetByCoachID retrieves all leads of a coach, newest first.
func (r *mongoLeadRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Lead, error) {
	var leads []domain.Lead
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return leads, nil
}

// Update modifies an existing lead.
func (r *mongoLeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == primitive.NilObjectID {
		return errors.New("lead ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":      lead.Name,
			"email":     lead.Email,
			"phone":     lead.Phone,
			"status":    lead.Status,
			"source":    lead.Source,
			"notes":     lead.Notes,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": lead.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a lead, scoped to the owning coach.
func (r *mongoLeadRepository) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "coachId": coachID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureClientIndexes creates indexes for the customers and leads collections.
func EnsureClientIndexes(ctx context.Context, customers, leads *mongo.Collection) {
	coachIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = customers.Indexes().CreateMany(ctx, coachIdx)
	_, _ = leads.Indexes().CreateMany(ctx, append(coachIdx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index(),
	}))
}
