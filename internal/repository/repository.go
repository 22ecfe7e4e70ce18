package repository

import (
	"coachdesk/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with login accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// BudgetRepository defines the interface for interacting with budget templates.
type BudgetRepository interface {
	Create(ctx context.Context, budget *domain.Budget) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Budget, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Budget, error)
	// Update replaces the full non-identity field set in one write. Callers
	// must pass the complete desired state, not a partial patch.
	Update(ctx context.Context, budget *domain.Budget) error
	Delete(ctx context.Context, id, coachID primitive.ObjectID) error
}

// AssignmentRepository defines the interface for budget-to-client links.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.BudgetAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BudgetAssignment, error)
	GetByBudgetID(ctx context.Context, budgetID primitive.ObjectID) ([]domain.BudgetAssignment, error)
	GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.BudgetAssignment, error)
	SetClient(ctx context.Context, id primitive.ObjectID, client domain.ClientRef) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutPlanRepository manages per-client workout plan rows.
type WorkoutPlanRepository interface {
	Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error)
	GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.WorkoutPlan, error)
	Update(ctx context.Context, plan *domain.WorkoutPlan) error
	DeleteByBudgetAndClient(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error
	SetClient(ctx context.Context, from, to domain.ClientRef) error
}

// NutritionPlanRepository manages per-client nutrition plan rows.
type NutritionPlanRepository interface {
	Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error)
	GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.NutritionPlan, error)
	Update(ctx context.Context, plan *domain.NutritionPlan) error
	DeleteByBudgetAndClient(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error
	SetClient(ctx context.Context, from, to domain.ClientRef) error
}

// StepsPlanRepository manages per-client steps plan rows.
type StepsPlanRepository interface {
	Create(ctx context.Context, plan *domain.StepsPlan) (primitive.ObjectID, error)
	GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.StepsPlan, error)
	Update(ctx context.Context, plan *domain.StepsPlan) error
	DeleteByBudgetAndClient(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error
	SetClient(ctx context.Context, from, to domain.ClientRef) error
}

// SupplementPlanRepository manages per-client supplement plan rows.
type SupplementPlanRepository interface {
	Create(ctx context.Context, plan *domain.SupplementPlan) (primitive.ObjectID, error)
	GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.SupplementPlan, error)
	Update(ctx context.Context, plan *domain.SupplementPlan) error
	DeleteByBudgetAndClient(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error
	SetClient(ctx context.Context, from, to domain.ClientRef) error
}

// CustomerRepository defines the interface for customer records.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Customer, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id, coachID primitive.ObjectID) error
}

// LeadRepository defines the interface for lead records.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lead, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Lead, error)
	Update(ctx context.Context, lead *domain.Lead) error
	Delete(ctx context.Context, id, coachID primitive.ObjectID) error
}

// PaymentRepository defines the interface for payment rows.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error)
	GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.Payment, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Payment, error)
	Delete(ctx context.Context, id, coachID primitive.ObjectID) error
}

// MeetingRepository defines the interface for meeting rows.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *domain.Meeting) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meeting, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Meeting, error)
	Update(ctx context.Context, meeting *domain.Meeting) error
	Delete(ctx context.Context, id, coachID primitive.ObjectID) error
}

// SnapshotRepository stores immutable action-plan snapshots. No update method:
// snapshots are written once and only ever read or listed.
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *domain.ActionPlanSnapshot) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ActionPlanSnapshot, error)
	GetByClient(ctx context.Context, client domain.ClientRef) ([]domain.ActionPlanSnapshot, error)
}
