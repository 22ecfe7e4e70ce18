package service

import (
	"coachdesk/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolveActiveAssignmentEmpty(t *testing.T) {
	assert.Nil(t, ResolveActiveAssignment(nil))
	assert.Nil(t, ResolveActiveAssignment([]domain.BudgetAssignment{}))
}

func TestResolveActiveAssignmentPrefersActive(t *testing.T) {
	first := domain.BudgetAssignment{ID: primitive.NewObjectID()}
	active := domain.BudgetAssignment{ID: primitive.NewObjectID(), IsActive: true}

	resolved := ResolveActiveAssignment([]domain.BudgetAssignment{first, active})
	require.NotNil(t, resolved)
	assert.Equal(t, active.ID, resolved.ID)
}

func TestResolveActiveAssignmentFallsBackToFirst(t *testing.T) {
	first := domain.BudgetAssignment{ID: primitive.NewObjectID()}
	second := domain.BudgetAssignment{ID: primitive.NewObjectID()}

	resolved := ResolveActiveAssignment([]domain.BudgetAssignment{first, second})
	require.NotNil(t, resolved)
	assert.Equal(t, first.ID, resolved.ID)
}

func TestResolveActivePlansSameRule(t *testing.T) {
	activeID := primitive.NewObjectID()

	workouts := []domain.WorkoutPlan{
		{PlanMeta: domain.PlanMeta{ID: primitive.NewObjectID()}},
		{PlanMeta: domain.PlanMeta{ID: activeID, IsActive: true}},
	}
	resolved := ResolveActiveWorkoutPlan(workouts)
	require.NotNil(t, resolved)
	assert.Equal(t, activeID, resolved.ID)

	firstID := primitive.NewObjectID()
	steps := []domain.StepsPlan{
		{PlanMeta: domain.PlanMeta{ID: firstID}},
		{PlanMeta: domain.PlanMeta{ID: primitive.NewObjectID()}},
	}
	resolvedSteps := ResolveActiveStepsPlan(steps)
	require.NotNil(t, resolvedSteps)
	assert.Equal(t, firstID, resolvedSteps.ID)

	assert.Nil(t, ResolveActiveNutritionPlan(nil))
	assert.Nil(t, ResolveActiveSupplementPlan(nil))
}

func TestFallbackBudgetIDPriority(t *testing.T) {
	workoutBudget := primitive.NewObjectID()
	nutritionBudget := primitive.NewObjectID()
	supplementBudget := primitive.NewObjectID()

	workout := &domain.WorkoutPlan{PlanMeta: domain.PlanMeta{BudgetID: &workoutBudget}}
	nutrition := &domain.NutritionPlan{PlanMeta: domain.PlanMeta{BudgetID: &nutritionBudget}}
	supplement := &domain.SupplementPlan{PlanMeta: domain.PlanMeta{BudgetID: &supplementBudget}}

	// Workout outranks everything.
	got := FallbackBudgetID(workout, nutrition, nil, supplement)
	require.NotNil(t, got)
	assert.Equal(t, workoutBudget, *got)

	// Without workout, nutrition wins over supplements.
	got = FallbackBudgetID(nil, nutrition, nil, supplement)
	require.NotNil(t, got)
	assert.Equal(t, nutritionBudget, *got)

	// A resolved plan without a back-reference is skipped.
	got = FallbackBudgetID(&domain.WorkoutPlan{}, nil, nil, supplement)
	require.NotNil(t, got)
	assert.Equal(t, supplementBudget, *got)

	assert.Nil(t, FallbackBudgetID(nil, nil, nil, nil))
}

func TestResolveBudgetIDAssignmentWinsOverFallback(t *testing.T) {
	assignmentBudget := primitive.NewObjectID()
	planBudget := primitive.NewObjectID()

	assignments := []domain.BudgetAssignment{{ID: primitive.NewObjectID(), BudgetID: assignmentBudget}}
	workout := &domain.WorkoutPlan{PlanMeta: domain.PlanMeta{BudgetID: &planBudget}}

	got := ResolveBudgetID(assignments, workout, nil, nil, nil)
	require.NotNil(t, got)
	assert.Equal(t, assignmentBudget, *got)

	got = ResolveBudgetID(nil, workout, nil, nil, nil)
	require.NotNil(t, got)
	assert.Equal(t, planBudget, *got)
}
