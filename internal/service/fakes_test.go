package service

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces the budget and sync services
// depend on. Each fake supports error injection so tests can exercise the
// partial-failure paths without a running database.

type fakeBudgetRepo struct {
	budgets   map[primitive.ObjectID]*domain.Budget
	createErr error
	updateErr error
}

func newFakeBudgetRepo() *fakeBudgetRepo {
	return &fakeBudgetRepo{budgets: make(map[primitive.ObjectID]*domain.Budget)}
}

func (r *fakeBudgetRepo) Create(_ context.Context, budget *domain.Budget) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	stored := *budget
	stored.ID = id
	r.budgets[id] = &stored
	return id, nil
}

func (r *fakeBudgetRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Budget, error) {
	budget, ok := r.budgets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *budget
	return &copied, nil
}

func (r *fakeBudgetRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Budget, error) {
	var out []domain.Budget
	for _, budget := range r.budgets {
		if budget.CoachID == coachID {
			out = append(out, *budget)
		}
	}
	return out, nil
}

func (r *fakeBudgetRepo) Update(_ context.Context, budget *domain.Budget) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	existing, ok := r.budgets[budget.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored := *budget
	stored.CoachID = existing.CoachID
	r.budgets[budget.ID] = &stored
	return nil
}

func (r *fakeBudgetRepo) Delete(_ context.Context, id, coachID primitive.ObjectID) error {
	budget, ok := r.budgets[id]
	if !ok || budget.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.budgets, id)
	return nil
}

type fakeAssignmentRepo struct {
	assignments []domain.BudgetAssignment
	createErr   error
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *domain.BudgetAssignment) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	stored := *assignment
	stored.ID = id
	r.assignments = append(r.assignments, stored)
	return id, nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.BudgetAssignment, error) {
	for i := range r.assignments {
		if r.assignments[i].ID == id {
			copied := r.assignments[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAssignmentRepo) GetByBudgetID(_ context.Context, budgetID primitive.ObjectID) ([]domain.BudgetAssignment, error) {
	var out []domain.BudgetAssignment
	for _, a := range r.assignments {
		if a.BudgetID == budgetID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) GetByClient(_ context.Context, client domain.ClientRef) ([]domain.BudgetAssignment, error) {
	var out []domain.BudgetAssignment
	for _, a := range r.assignments {
		if a.Client.Key() == client.Key() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) SetClient(_ context.Context, id primitive.ObjectID, client domain.ClientRef) error {
	for i := range r.assignments {
		if r.assignments[i].ID == id {
			r.assignments[i].Client = client
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeAssignmentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range r.assignments {
		if r.assignments[i].ID == id {
			r.assignments = append(r.assignments[:i], r.assignments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeWorkoutRepo struct {
	plans     []domain.WorkoutPlan
	createErr error
	updateErr error
	deleteErr error
}

func (r *fakeWorkoutRepo) Create(_ context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	stored := *plan
	stored.ID = id
	r.plans = append(r.plans, stored)
	return id, nil
}

func (r *fakeWorkoutRepo) GetByClient(_ context.Context, client domain.ClientRef) ([]domain.WorkoutPlan, error) {
	var out []domain.WorkoutPlan
	for _, p := range r.plans {
		if p.Client.Key() == client.Key() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) Update(_ context.Context, plan *domain.WorkoutPlan) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for i := range r.plans {
		if r.plans[i].ID == plan.ID {
			r.plans[i] = *plan
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeWorkoutRepo) DeleteByBudgetAndClient(_ context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.plans[:0]
	for _, p := range r.plans {
		if p.BudgetID != nil && *p.BudgetID == budgetID && p.Client.Key() == client.Key() {
			continue
		}
		kept = append(kept, p)
	}
	r.plans = kept
	return nil
}

func (r *fakeWorkoutRepo) SetClient(_ context.Context, from, to domain.ClientRef) error {
	for i := range r.plans {
		if r.plans[i].Client.Key() == from.Key() {
			r.plans[i].Client = to
		}
	}
	return nil
}

type fakeNutritionRepo struct {
	plans     []domain.NutritionPlan
	createErr error
	updateErr error
	deleteErr error
}

func (r *fakeNutritionRepo) Create(_ context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	stored := *plan
	stored.ID = id
	r.plans = append(r.plans, stored)
	return id, nil
}

func (r *fakeNutritionRepo) GetByClient(_ context.Context, client domain.ClientRef) ([]domain.NutritionPlan, error) {
	var out []domain.NutritionPlan
	for _, p := range r.plans {
		if p.Client.Key() == client.Key() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeNutritionRepo) Update(_ context.Context, plan *domain.NutritionPlan) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for i := range r.plans {
		if r.plans[i].ID == plan.ID {
			r.plans[i] = *plan
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNutritionRepo) DeleteByBudgetAndClient(_ context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.plans[:0]
	for _, p := range r.plans {
		if p.BudgetID != nil && *p.BudgetID == budgetID && p.Client.Key() == client.Key() {
			continue
		}
		kept = append(kept, p)
	}
	r.plans = kept
	return nil
}

func (r *fakeNutritionRepo) SetClient(_ context.Context, from, to domain.ClientRef) error {
	for i := range r.plans {
		if r.plans[i].Client.Key() == from.Key() {
			r.plans[i].Client = to
		}
	}
	return nil
}

type fakeStepsRepo struct {
	plans     []domain.StepsPlan
	createErr error
	updateErr error
	deleteErr error
}

func (r *fakeStepsRepo) Create(_ context.Context, plan *domain.StepsPlan) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	stored := *plan
	stored.ID = id
	r.plans = append(r.plans, stored)
	return id, nil
}

func (r *fakeStepsRepo) GetByClient(_ context.Context, client domain.ClientRef) ([]domain.StepsPlan, error) {
	var out []domain.StepsPlan
	for _, p := range r.plans {
		if p.Client.Key() == client.Key() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeStepsRepo) Update(_ context.Context, plan *domain.StepsPlan) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for i := range r.plans {
		if r.plans[i].ID == plan.ID {
			r.plans[i] = *plan
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeStepsRepo) DeleteByBudgetAndClient(_ context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.plans[:0]
	for _, p := range r.plans {
		if p.BudgetID != nil && *p.BudgetID == budgetID && p.Client.Key() == client.Key() {
			continue
		}
		kept = append(kept, p)
	}
	r.plans = kept
	return nil
}

func (r *fakeStepsRepo) SetClient(_ context.Context, from, to domain.ClientRef) error {
	for i := range r.plans {
		if r.plans[i].Client.Key() == from.Key() {
			r.plans[i].Client = to
		}
	}
	return nil
}

type fakeSupplementRepo struct {
	plans     []domain.SupplementPlan
	createErr error
	updateErr error
	deleteErr error
}

func (r *fakeSupplementRepo) Create(_ context.Context, plan *domain.SupplementPlan) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	stored := *plan
	stored.ID = id
	r.plans = append(r.plans, stored)
	return id, nil
}

func (r *fakeSupplementRepo) GetByClient(_ context.Context, client domain.ClientRef) ([]domain.SupplementPlan, error) {
	var out []domain.SupplementPlan
	for _, p := range r.plans {
		if p.Client.Key() == client.Key() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeSupplementRepo) Update(_ context.Context, plan *domain.SupplementPlan) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for i := range r.plans {
		if r.plans[i].ID == plan.ID {
			r.plans[i] = *plan
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeSupplementRepo) DeleteByBudgetAndClient(_ context.Context, budgetID primitive.ObjectID, client domain.ClientRef) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.plans[:0]
	for _, p := range r.plans {
		if p.BudgetID != nil && *p.BudgetID == budgetID && p.Client.Key() == client.Key() {
			continue
		}
		kept = append(kept, p)
	}
	r.plans = kept
	return nil
}

func (r *fakeSupplementRepo) SetClient(_ context.Context, from, to domain.ClientRef) error {
	for i := range r.plans {
		if r.plans[i].Client.Key() == from.Key() {
			r.plans[i].Client = to
		}
	}
	return nil
}
