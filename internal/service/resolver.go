package service

import (
	"coachdesk/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolution rule shared by assignments and every plan-type history: the
// entry flagged active wins; with no active entry the first in list is used;
// an empty list resolves to nil. Absence is an empty state for the
// presentation layer, never an error.

// ResolveActiveAssignment picks the assignment currently in effect.
func ResolveActiveAssignment(assignments []domain.BudgetAssignment) *domain.BudgetAssignment {
	for i := range assignments {
		if assignments[i].IsActive {
			return &assignments[i]
		}
	}
	if len(assignments) > 0 {
		return &assignments[0]
	}
	return nil
}

// ResolveActiveWorkoutPlan picks the workout plan currently in effect.
func ResolveActiveWorkoutPlan(plans []domain.WorkoutPlan) *domain.WorkoutPlan {
	for i := range plans {
		if plans[i].IsActive {
			return &plans[i]
		}
	}
	if len(plans) > 0 {
		return &plans[0]
	}
	return nil
}

// ResolveActiveNutritionPlan picks the nutrition plan currently in effect.
func ResolveActiveNutritionPlan(plans []domain.NutritionPlan) *domain.NutritionPlan {
	for i := range plans {
		if plans[i].IsActive {
			return &plans[i]
		}
	}
	if len(plans) > 0 {
		return &plans[0]
	}
	return nil
}

// ResolveActiveStepsPlan picks the steps plan currently in effect.
func ResolveActiveStepsPlan(plans []domain.StepsPlan) *domain.StepsPlan {
	for i := range plans {
		if plans[i].IsActive {
			return &plans[i]
		}
	}
	if len(plans) > 0 {
		return &plans[0]
	}
	return nil
}

// ResolveActiveSupplementPlan picks the supplement plan currently in effect.
func ResolveActiveSupplementPlan(plans []domain.SupplementPlan) *domain.SupplementPlan {
	for i := range plans {
		if plans[i].IsActive {
			return &plans[i]
		}
	}
	if len(plans) > 0 {
		return &plans[0]
	}
	return nil
}

// FallbackBudgetID derives a budget id from resolved plan rows when no
// assignment names one. Priority order is workout, nutrition, steps,
// supplements; the first non-nil back-reference wins.
func FallbackBudgetID(
	workout *domain.WorkoutPlan,
	nutrition *domain.NutritionPlan,
	steps *domain.StepsPlan,
	supplement *domain.SupplementPlan,
) *primitive.ObjectID {
	if workout != nil && workout.BudgetID != nil {
		return workout.BudgetID
	}
	if nutrition != nil && nutrition.BudgetID != nil {
		return nutrition.BudgetID
	}
	if steps != nil && steps.BudgetID != nil {
		return steps.BudgetID
	}
	if supplement != nil && supplement.BudgetID != nil {
		return supplement.BudgetID
	}
	return nil
}

// ResolveBudgetID combines both rules: the resolved assignment's budget when
// one exists, else the plan-row fallback.
func ResolveBudgetID(
	assignments []domain.BudgetAssignment,
	workout *domain.WorkoutPlan,
	nutrition *domain.NutritionPlan,
	steps *domain.StepsPlan,
	supplement *domain.SupplementPlan,
) *primitive.ObjectID {
	if assignment := ResolveActiveAssignment(assignments); assignment != nil {
		return &assignment.BudgetID
	}
	return FallbackBudgetID(workout, nutrition, steps, supplement)
}
