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

type syncFixture struct {
	workouts    *fakeWorkoutRepo
	nutrition   *fakeNutritionRepo
	steps       *fakeStepsRepo
	supplements *fakeSupplementRepo
	cache       cache.Cache
	sync        PlanSynchronizer
}

func newSyncFixture() *syncFixture {
	f := &syncFixture{
		workouts:    &fakeWorkoutRepo{},
		nutrition:   &fakeNutritionRepo{},
		steps:       &fakeStepsRepo{},
		supplements: &fakeSupplementRepo{},
		cache:       cache.NewMemoryCache(),
	}
	f.sync = NewPlanSynchronizer(f.workouts, f.nutrition, f.steps, f.supplements, f.cache, zap.NewNop())
	return f
}

func testBudget() *domain.Budget {
	return &domain.Budget{
		ID:      primitive.NewObjectID(),
		CoachID: primitive.NewObjectID(),
		Name:    "Cut phase 1",
		NutritionTargets: domain.NutritionTargets{
			Calories: 2100, Protein: 180, Carbs: 200, Fat: 60,
		},
		StepsGoal:   10000,
		Supplements: []domain.SupplementItem{{Name: "Creatine", Dosage: "5g daily"}},
		EatingOrder: "protein first",
	}
}

func TestSyncCreatesMissingPlans(t *testing.T) {
	f := newSyncFixture()
	budget := testBudget()
	client := domain.NewCustomerRef(primitive.NewObjectID())

	require.NoError(t, f.sync.SyncPlansFromBudget(context.Background(), budget, client, budget.CoachID))

	// Workout rows are never created by budget-level sync.
	assert.Empty(t, f.workouts.plans)

	require.Len(t, f.nutrition.plans, 1)
	created := f.nutrition.plans[0]
	assert.True(t, created.IsActive)
	assert.Equal(t, budget.ID, *created.BudgetID)
	assert.Equal(t, float64(2100), created.Targets["calories"])
	assert.Equal(t, "protein first", created.EatingOrder)
	_, hasFiber := created.Targets["fiber"]
	assert.False(t, hasFiber, "unset fiber should not be written")

	require.Len(t, f.steps.plans, 1)
	assert.Equal(t, 10000, f.steps.plans[0].Goal)

	require.Len(t, f.supplements.plans, 1)
	assert.Equal(t, "Creatine", f.supplements.plans[0].Supplements[0].Name)
}

func TestSyncPreservesNutritionMetadata(t *testing.T) {
	f := newSyncFixture()
	budget := testBudget()
	client := domain.NewCustomerRef(primitive.NewObjectID())

	f.nutrition.plans = []domain.NutritionPlan{{
		PlanMeta: domain.PlanMeta{ID: primitive.NewObjectID(), Client: client, IsActive: true},
		Targets: map[string]any{
			"calories":           float64(1800),
			"_manual_override":   true,
			"_calculator_inputs": map[string]any{"weight": float64(82)},
		},
	}}

	require.NoError(t, f.sync.SyncPlansFromBudget(context.Background(), budget, client, budget.CoachID))

	updated := f.nutrition.plans[0]
	assert.Equal(t, float64(2100), updated.Targets["calories"])
	assert.Equal(t, true, updated.Targets["_manual_override"])
	assert.Equal(t, map[string]any{"weight": float64(82)}, updated.Targets["_calculator_inputs"])
	assert.Equal(t, budget.ID, *updated.BudgetID)
}

func TestSyncUpdatesResolvedActivePlanOnly(t *testing.T) {
	f := newSyncFixture()
	budget := testBudget()
	client := domain.NewCustomerRef(primitive.NewObjectID())

	inactiveID := primitive.NewObjectID()
	activeID := primitive.NewObjectID()
	f.steps.plans = []domain.StepsPlan{
		{PlanMeta: domain.PlanMeta{ID: inactiveID, Client: client}, Goal: 6000},
		{PlanMeta: domain.PlanMeta{ID: activeID, Client: client, IsActive: true}, Goal: 8000},
	}

	require.NoError(t, f.sync.SyncPlansFromBudget(context.Background(), budget, client, budget.CoachID))

	require.Len(t, f.steps.plans, 2)
	for _, plan := range f.steps.plans {
		switch plan.ID {
		case activeID:
			assert.Equal(t, 10000, plan.Goal)
		case inactiveID:
			assert.Equal(t, 6000, plan.Goal)
		}
	}
}

func TestSyncStepsRange(t *testing.T) {
	f := newSyncFixture()
	client := domain.NewCustomerRef(primitive.NewObjectID())

	budget := testBudget()
	minSteps, maxSteps := 8000, 12000
	budget.StepsMin, budget.StepsMax = &minSteps, &maxSteps

	require.NoError(t, f.sync.SyncPlansFromBudget(context.Background(), budget, client, budget.CoachID))
	require.Len(t, f.steps.plans, 1)
	require.NotNil(t, f.steps.plans[0].Min)
	assert.Equal(t, 8000, *f.steps.plans[0].Min)
	assert.Equal(t, 12000, *f.steps.plans[0].Max)

	// A budget with only one bound falls back to the single goal.
	budget.StepsMax = nil
	require.NoError(t, f.sync.SyncPlansFromBudget(context.Background(), budget, client, budget.CoachID))
	assert.Nil(t, f.steps.plans[0].Min)
	assert.Nil(t, f.steps.plans[0].Max)
	assert.Equal(t, 10000, f.steps.plans[0].Goal)
}

func TestSyncOneTypeFailureDoesNotBlockOthers(t *testing.T) {
	f := newSyncFixture()
	f.steps.createErr = errors.New("steps collection unavailable")
	budget := testBudget()
	client := domain.NewLeadRef(primitive.NewObjectID())

	err := f.sync.SyncPlansFromBudget(context.Background(), budget, client, budget.CoachID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps")

	// The other plan types were still written.
	assert.Len(t, f.nutrition.plans, 1)
	assert.Len(t, f.supplements.plans, 1)
	assert.Empty(t, f.steps.plans)
}

func TestSyncRejectsInvalidInput(t *testing.T) {
	f := newSyncFixture()
	ctx := context.Background()

	err := f.sync.SyncPlansFromBudget(ctx, nil, domain.NewCustomerRef(primitive.NewObjectID()), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrBudgetRequired)

	err = f.sync.SyncPlansFromBudget(ctx, testBudget(), domain.ClientRef{}, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrInvalidClientRef)
}

func TestSyncInvalidatesPlanCaches(t *testing.T) {
	f := newSyncFixture()
	budget := testBudget()
	client := domain.NewCustomerRef(primitive.NewObjectID())
	ctx := context.Background()

	key := cache.PlansKey(string(domain.PlanNutrition), client.Key())
	require.NoError(t, f.cache.Set(ctx, key, []byte("stale"), time.Minute))

	require.NoError(t, f.sync.SyncPlansFromBudget(ctx, budget, client, budget.CoachID))

	_, err := f.cache.Get(ctx, key)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestCreatePlansForAssignment(t *testing.T) {
	f := newSyncFixture()
	budget := testBudget()
	client := domain.NewCustomerRef(primitive.NewObjectID())

	require.NoError(t, f.sync.CreatePlansForAssignment(context.Background(), budget, client, budget.CoachID))

	require.Len(t, f.workouts.plans, 1)
	require.Len(t, f.nutrition.plans, 1)
	require.Len(t, f.steps.plans, 1)
	require.Len(t, f.supplements.plans, 1)

	// The blank workout carries the budget name but no training content yet.
	workout := f.workouts.plans[0]
	assert.Equal(t, "Cut phase 1", workout.Name)
	assert.Empty(t, workout.Days)
	assert.True(t, workout.IsActive)
	assert.Equal(t, budget.ID, *workout.BudgetID)
	assert.Equal(t, budget.ID, *f.nutrition.plans[0].BudgetID)
	assert.Equal(t, budget.ID, *f.steps.plans[0].BudgetID)
	assert.Equal(t, budget.ID, *f.supplements.plans[0].BudgetID)
}
