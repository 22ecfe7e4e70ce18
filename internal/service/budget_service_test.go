package service

import (
	"coachdesk/internal/cache"
	"coachdesk/internal/domain"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type budgetFixture struct {
	budgets     *fakeBudgetRepo
	assignments *fakeAssignmentRepo
	workouts    *fakeWorkoutRepo
	nutrition   *fakeNutritionRepo
	steps       *fakeStepsRepo
	supplements *fakeSupplementRepo
	cache       cache.Cache
	svc         BudgetService
}

func newBudgetFixture() *budgetFixture {
	f := &budgetFixture{
		budgets:     newFakeBudgetRepo(),
		assignments: &fakeAssignmentRepo{},
		workouts:    &fakeWorkoutRepo{},
		nutrition:   &fakeNutritionRepo{},
		steps:       &fakeStepsRepo{},
		supplements: &fakeSupplementRepo{},
		cache:       cache.NewMemoryCache(),
	}
	logger := zap.NewNop()
	sync := NewPlanSynchronizer(f.workouts, f.nutrition, f.steps, f.supplements, f.cache, logger)
	f.svc = NewBudgetService(f.budgets, f.assignments, f.workouts, f.nutrition, f.steps, f.supplements, sync, f.cache, logger)
	return f
}

func (f *budgetFixture) mustCreateBudget(t *testing.T, coachID primitive.ObjectID) *domain.Budget {
	t.Helper()
	budget := testBudget()
	budget.ID = primitive.NilObjectID
	budget.CoachID = coachID
	created, err := f.svc.CreateBudget(context.Background(), budget)
	require.NoError(t, err)
	return created
}

func TestCreateBudgetValidation(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()

	_, err := f.svc.CreateBudget(ctx, &domain.Budget{Name: "", CoachID: primitive.NewObjectID()})
	assert.Error(t, err)

	_, err = f.svc.CreateBudget(ctx, &domain.Budget{
		Name:             "bad macros",
		CoachID:          primitive.NewObjectID(),
		NutritionTargets: domain.NutritionTargets{Calories: -100},
	})
	assert.ErrorIs(t, err, domain.ErrNegativeTargets)
}

func TestGetBudgetReadsThroughCache(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	budget := f.mustCreateBudget(t, coachID)

	got, err := f.svc.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.Equal(t, budget.Name, got.Name)

	// Second read is served from cache: mutate the store underneath and the
	// stale name must come back until the entry is invalidated.
	f.budgets.budgets[budget.ID].Name = "renamed behind the cache"
	got, err = f.svc.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.Equal(t, budget.Name, got.Name)

	require.NoError(t, f.cache.Invalidate(ctx, cache.BudgetKey(budget.ID.Hex())))
	got, err = f.svc.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed behind the cache", got.Name)
}

func TestGetBudgetNotFound(t *testing.T) {
	f := newBudgetFixture()
	_, err := f.svc.GetBudget(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrBudgetNotFound)
}

func TestUpdateBudgetSyncsActiveAssignments(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	budget := f.mustCreateBudget(t, coachID)

	activeClient := domain.NewCustomerRef(primitive.NewObjectID())
	inactiveClient := domain.NewCustomerRef(primitive.NewObjectID())
	_, err := f.assignments.Create(ctx, &domain.BudgetAssignment{BudgetID: budget.ID, Client: activeClient, IsActive: true})
	require.NoError(t, err)
	_, err = f.assignments.Create(ctx, &domain.BudgetAssignment{BudgetID: budget.ID, Client: inactiveClient})
	require.NoError(t, err)

	budget.NutritionTargets.Calories = 2500
	require.NoError(t, f.svc.UpdateBudget(ctx, budget, coachID))

	// Only the active assignment's client got plan rows.
	activePlans, err := f.nutrition.GetByClient(ctx, activeClient)
	require.NoError(t, err)
	require.Len(t, activePlans, 1)
	assert.Equal(t, float64(2500), activePlans[0].Targets["calories"])

	inactivePlans, err := f.nutrition.GetByClient(ctx, inactiveClient)
	require.NoError(t, err)
	assert.Empty(t, inactivePlans)
}

func TestUpdateBudgetOwnership(t *testing.T) {
	f := newBudgetFixture()
	coachID := primitive.NewObjectID()
	budget := f.mustCreateBudget(t, coachID)

	err := f.svc.UpdateBudget(context.Background(), budget, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrBudgetAccessDenied)
}

func TestUpdateBudgetWriteFailureSkipsSyncAndInvalidation(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	budget := f.mustCreateBudget(t, coachID)

	client := domain.NewCustomerRef(primitive.NewObjectID())
	_, err := f.assignments.Create(ctx, &domain.BudgetAssignment{BudgetID: budget.ID, Client: client, IsActive: true})
	require.NoError(t, err)

	key := cache.BudgetKey(budget.ID.Hex())
	require.NoError(t, f.cache.Set(ctx, key, []byte("cached"), time.Minute))

	f.budgets.updateErr = errors.New("write concern failed")
	err = f.svc.UpdateBudget(ctx, budget, coachID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPartialSync)

	// The failed write must leave derived state alone: no sync, cache intact.
	assert.Empty(t, f.nutrition.plans)
	val, cacheErr := f.cache.Get(ctx, key)
	require.NoError(t, cacheErr)
	assert.Equal(t, []byte("cached"), val)
}

func TestUpdateBudgetPartialSync(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	budget := f.mustCreateBudget(t, coachID)

	client := domain.NewCustomerRef(primitive.NewObjectID())
	_, err := f.assignments.Create(ctx, &domain.BudgetAssignment{BudgetID: budget.ID, Client: client, IsActive: true})
	require.NoError(t, err)

	f.steps.createErr = errors.New("steps collection unavailable")
	err = f.svc.UpdateBudget(ctx, budget, coachID)
	assert.ErrorIs(t, err, ErrPartialSync)

	// The budget write itself stands, as do the plan types that succeeded.
	assert.Len(t, f.nutrition.plans, 1)
	assert.Len(t, f.supplements.plans, 1)
}

func TestUpdateBudgetInvalidatesBudgetCaches(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	budget := f.mustCreateBudget(t, coachID)

	budgetKey := cache.BudgetKey(budget.ID.Hex())
	listKey := cache.BudgetsKey(coachID.Hex())
	require.NoError(t, f.cache.Set(ctx, budgetKey, []byte("stale"), time.Minute))
	require.NoError(t, f.cache.Set(ctx, listKey, []byte("stale"), time.Minute))

	require.NoError(t, f.svc.UpdateBudget(ctx, budget, coachID))

	_, err := f.cache.Get(ctx, budgetKey)
	assert.ErrorIs(t, err, cache.ErrMiss)
	_, err = f.cache.Get(ctx, listKey)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestAssignBudget(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	budget := f.mustCreateBudget(t, coachID)
	client := domain.NewCustomerRef(primitive.NewObjectID())

	assignment, err := f.svc.AssignBudget(ctx, budget.ID, client, coachID)
	require.NoError(t, err)
	assert.True(t, assignment.IsActive)
	assert.Equal(t, budget.ID, assignment.BudgetID)

	// All four plan rows exist for the client.
	assert.Len(t, f.workouts.plans, 1)
	assert.Len(t, f.nutrition.plans, 1)
	assert.Len(t, f.steps.plans, 1)
	assert.Len(t, f.supplements.plans, 1)
}

func TestAssignBudgetAccessRules(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	ownerID := primitive.NewObjectID()
	otherCoach := primitive.NewObjectID()
	client := domain.NewCustomerRef(primitive.NewObjectID())

	private := f.mustCreateBudget(t, ownerID)
	_, err := f.svc.AssignBudget(ctx, private.ID, client, otherCoach)
	assert.ErrorIs(t, err, ErrBudgetAccessDenied)

	public := testBudget()
	public.ID = primitive.NilObjectID
	public.CoachID = ownerID
	public.IsPublic = true
	created, err := f.svc.CreateBudget(ctx, public)
	require.NoError(t, err)

	_, err = f.svc.AssignBudget(ctx, created.ID, client, otherCoach)
	assert.NoError(t, err)

	_, err = f.svc.AssignBudget(ctx, primitive.NewObjectID(), client, ownerID)
	assert.ErrorIs(t, err, ErrBudgetNotFound)
}

func TestDeleteAssignmentCascades(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	budget := f.mustCreateBudget(t, coachID)
	client := domain.NewCustomerRef(primitive.NewObjectID())

	assignment, err := f.svc.AssignBudget(ctx, budget.ID, client, coachID)
	require.NoError(t, err)

	// An unrelated client's rows must survive the cascade.
	otherClient := domain.NewCustomerRef(primitive.NewObjectID())
	_, err = f.svc.AssignBudget(ctx, budget.ID, otherClient, coachID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAssignment(ctx, assignment.ID))

	deleted, err := f.workouts.GetByClient(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, deleted)
	nutritionRows, err := f.nutrition.GetByClient(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, nutritionRows)
	stepsRows, err := f.steps.GetByClient(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, stepsRows)
	supplementRows, err := f.supplements.GetByClient(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, supplementRows)

	kept, err := f.workouts.GetByClient(ctx, otherClient)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	remaining, err := f.assignments.GetByClient(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	err = f.svc.DeleteAssignment(ctx, assignment.ID)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestCreateBlankPlans(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	client := domain.NewLeadRef(primitive.NewObjectID())

	budget, err := f.svc.CreateBlankPlans(ctx, "Onboarding plan", client, coachID)
	require.NoError(t, err)
	assert.Equal(t, "Onboarding plan", budget.Name)
	assert.Equal(t, coachID, budget.CoachID)

	assignments, err := f.assignments.GetByClient(ctx, client)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.True(t, assignments[0].IsActive)
	assert.Equal(t, budget.ID, assignments[0].BudgetID)

	// One row per plan type, all pointing back at the new budget.
	require.Len(t, f.workouts.plans, 1)
	require.Len(t, f.nutrition.plans, 1)
	require.Len(t, f.steps.plans, 1)
	require.Len(t, f.supplements.plans, 1)
	assert.Equal(t, budget.ID, *f.workouts.plans[0].BudgetID)
	assert.Equal(t, budget.ID, *f.nutrition.plans[0].BudgetID)
	assert.Equal(t, budget.ID, *f.steps.plans[0].BudgetID)
	assert.Equal(t, budget.ID, *f.supplements.plans[0].BudgetID)
}

func TestDeleteBudgetCascadesAssignments(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	budget := f.mustCreateBudget(t, coachID)
	client := domain.NewCustomerRef(primitive.NewObjectID())

	_, err := f.svc.AssignBudget(ctx, budget.ID, client, coachID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBudget(ctx, budget.ID, coachID))

	_, err = f.budgets.GetByID(ctx, budget.ID)
	assert.Error(t, err)

	assignments, err := f.assignments.GetByClient(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, assignments)
	assert.Empty(t, f.workouts.plans)
}

func TestGetClientPlansResolvesView(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	budget := f.mustCreateBudget(t, coachID)
	client := domain.NewCustomerRef(primitive.NewObjectID())

	// Unassigned client resolves to an empty view.
	view, err := f.svc.GetClientPlans(ctx, client)
	require.NoError(t, err)
	assert.Nil(t, view.BudgetID)
	assert.Nil(t, view.Workout)

	_, err = f.svc.AssignBudget(ctx, budget.ID, client, coachID)
	require.NoError(t, err)

	view, err = f.svc.GetClientPlans(ctx, client)
	require.NoError(t, err)
	require.NotNil(t, view.BudgetID)
	assert.Equal(t, budget.ID, *view.BudgetID)
	require.NotNil(t, view.Workout)
	require.NotNil(t, view.Nutrition)
	require.NotNil(t, view.Steps)
	require.NotNil(t, view.Supplement)
	assert.Equal(t, float64(2100), view.Nutrition.Targets["calories"])
}

func TestGetClientPlansFallbackBudgetID(t *testing.T) {
	f := newBudgetFixture()
	ctx := context.Background()
	client := domain.NewLeadRef(primitive.NewObjectID())

	// Plan rows without any assignment: the budget id comes from the
	// workout-first back-reference fallback.
	planBudget := primitive.NewObjectID()
	_, err := f.workouts.Create(ctx, &domain.WorkoutPlan{
		PlanMeta: domain.PlanMeta{BudgetID: &planBudget, Client: client, IsActive: true},
	})
	require.NoError(t, err)

	view, err := f.svc.GetClientPlans(ctx, client)
	require.NoError(t, err)
	require.NotNil(t, view.BudgetID)
	assert.Equal(t, planBudget, *view.BudgetID)
}
