package service

import (
	"coachdesk/internal/cache"
	"coachdesk/internal/domain"
	"coachdesk/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrBudgetRequired = errors.New("budget is required for synchronization")
)

// PlanSynchronizer propagates a budget's current field values into the
// per-client plan rows derived from it.
type PlanSynchronizer interface {
	// SyncPlansFromBudget creates or updates the nutrition, steps and
	// supplement rows for one client so their values match the budget. The
	// workout row is never touched by budget-level sync; its content is
	// managed through its own editor. Each plan type is written
	// independently: a failure on one is logged and does not block the
	// others, and nothing is rolled back. The returned error aggregates the
	// types that failed.
	SyncPlansFromBudget(ctx context.Context, budget *domain.Budget, client domain.ClientRef, coachID primitive.ObjectID) error

	// CreatePlansForAssignment creates one row of each of the four plan
	// types for a freshly assigned client, including a blank workout plan.
	CreatePlansForAssignment(ctx context.Context, budget *domain.Budget, client domain.ClientRef, coachID primitive.ObjectID) error
}

// planSynchronizer implements the PlanSynchronizer interface.
type planSynchronizer struct {
	workoutRepo    repository.WorkoutPlanRepository
	nutritionRepo  repository.NutritionPlanRepository
	stepsRepo      repository.StepsPlanRepository
	supplementRepo repository.SupplementPlanRepository
	cache          cache.Cache
	logger         *zap.Logger
}

// NewPlanSynchronizer creates a new instance of planSynchronizer.
func NewPlanSynchronizer(
	workoutRepo repository.WorkoutPlanRepository,
	nutritionRepo repository.NutritionPlanRepository,
	stepsRepo repository.StepsPlanRepository,
	supplementRepo repository.SupplementPlanRepository,
	cache cache.Cache,
	logger *zap.Logger,
) PlanSynchronizer {
	return &planSynchronizer{
		workoutRepo:    workoutRepo,
		nutritionRepo:  nutritionRepo,
		stepsRepo:      stepsRepo,
		supplementRepo: supplementRepo,
		cache:          cache,
		logger:         logger,
	}
}

// mergeTargets overlays the budget's macro targets on the plan's existing
// targets map. Keys the budget does not own (calculator inputs, manual
// override flags and other out-of-band metadata) are preserved untouched.
func mergeTargets(existing map[string]any, t domain.NutritionTargets) map[string]any {
	merged := make(map[string]any, len(existing)+5)
	for k, v := range existing {
		merged[k] = v
	}
	merged["calories"] = t.Calories
	merged["protein"] = t.Protein
	merged["carbs"] = t.Carbs
	merged["fat"] = t.Fat
	if t.Fiber > 0 {
		merged["fiber"] = t.Fiber
	}
	return merged
}

// SyncPlansFromBudget propagates budget values into the client's plan rows.
func (s *planSynchronizer) SyncPlansFromBudget(ctx context.Context, budget *domain.Budget, client domain.ClientRef, coachID primitive.ObjectID) error {
	if budget == nil || budget.ID == primitive.NilObjectID {
		return ErrBudgetRequired
	}
	if err := client.Validate(); err != nil {
		return err
	}

	var errs []error
	record := func(planType domain.PlanType, err error) {
		if err != nil {
			s.logger.Warn("plan sync failed",
				zap.String("planType", string(planType)),
				zap.String("budgetId", budget.ID.Hex()),
				zap.String("client", client.Key()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", planType, err))
		}
	}

	record(domain.PlanNutrition, s.syncNutrition(ctx, budget, client, coachID))
	record(domain.PlanSteps, s.syncSteps(ctx, budget, client, coachID))
	record(domain.PlanSupplement, s.syncSupplements(ctx, budget, client, coachID))

	s.invalidatePlanCaches(ctx, client)

	return errors.Join(errs...)
}

func (s *planSynchronizer) syncNutrition(ctx context.Context, budget *domain.Budget, client domain.ClientRef, coachID primitive.ObjectID) error {
	plans, err := s.nutritionRepo.GetByClient(ctx, client)
	if err != nil {
		return err
	}

	plan := ResolveActiveNutritionPlan(plans)
	if plan == nil {
		created := &domain.NutritionPlan{
			PlanMeta:    domain.PlanMeta{BudgetID: &budget.ID, Client: client, CoachID: coachID, IsActive: true},
			Targets:     mergeTargets(nil, budget.NutritionTargets),
			EatingOrder: budget.EatingOrder,
			EatingRules: budget.EatingRules,
		}
		_, err = s.nutritionRepo.Create(ctx, created)
		return err
	}

	plan.Targets = mergeTargets(plan.Targets, budget.NutritionTargets)
	plan.EatingOrder = budget.EatingOrder
	plan.EatingRules = budget.EatingRules
	plan.BudgetID = &budget.ID
	return s.nutritionRepo.Update(ctx, plan)
}

func (s *planSynchronizer) syncSteps(ctx context.Context, budget *domain.Budget, client domain.ClientRef, coachID primitive.ObjectID) error {
	plans, err := s.stepsRepo.GetByClient(ctx, client)
	if err != nil {
		return err
	}

	plan := ResolveActiveStepsPlan(plans)
	if plan == nil {
		plan = &domain.StepsPlan{
			PlanMeta: domain.PlanMeta{BudgetID: &budget.ID, Client: client, CoachID: coachID, IsActive: true},
		}
		applyStepsFromBudget(plan, budget)
		_, err = s.stepsRepo.Create(ctx, plan)
		return err
	}

	applyStepsFromBudget(plan, budget)
	plan.BudgetID = &budget.ID
	return s.stepsRepo.Update(ctx, plan)
}

// applyStepsFromBudget copies the step prescription: the min/max pair when
// the budget carries both bounds, the single goal otherwise.
func applyStepsFromBudget(plan *domain.StepsPlan, budget *domain.Budget) {
	plan.Goal = budget.StepsGoal
	if budget.HasStepsRange() {
		plan.Min = budget.StepsMin
		plan.Max = budget.StepsMax
	} else {
		plan.Min = nil
		plan.Max = nil
	}
	plan.Instructions = budget.StepsInstructions
}

func (s *planSynchronizer) syncSupplements(ctx context.Context, budget *domain.Budget, client domain.ClientRef, coachID primitive.ObjectID) error {
	plans, err := s.supplementRepo.GetByClient(ctx, client)
	if err != nil {
		return err
	}

	plan := ResolveActiveSupplementPlan(plans)
	if plan == nil {
		created := &domain.SupplementPlan{
			PlanMeta:    domain.PlanMeta{BudgetID: &budget.ID, Client: client, CoachID: coachID, IsActive: true},
			Supplements: budget.Supplements,
		}
		_, err = s.supplementRepo.Create(ctx, created)
		return err
	}

	plan.Supplements = budget.Supplements
	plan.BudgetID = &budget.ID
	return s.supplementRepo.Update(ctx, plan)
}

// CreatePlansForAssignment creates the initial row of every plan type,
// including the blank workout plan that budget-level sync never touches.
func (s *planSynchronizer) CreatePlansForAssignment(ctx context.Context, budget *domain.Budget, client domain.ClientRef, coachID primitive.ObjectID) error {
	if budget == nil || budget.ID == primitive.NilObjectID {
		return ErrBudgetRequired
	}
	if err := client.Validate(); err != nil {
		return err
	}

	meta := domain.PlanMeta{BudgetID: &budget.ID, Client: client, CoachID: coachID, IsActive: true}

	var errs []error
	record := func(planType domain.PlanType, err error) {
		if err != nil {
			s.logger.Warn("plan creation failed",
				zap.String("planType", string(planType)),
				zap.String("budgetId", budget.ID.Hex()),
				zap.String("client", client.Key()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", planType, err))
		}
	}

	_, err := s.workoutRepo.Create(ctx, &domain.WorkoutPlan{PlanMeta: meta, Name: budget.Name})
	record(domain.PlanWorkout, err)

	_, err = s.nutritionRepo.Create(ctx, &domain.NutritionPlan{
		PlanMeta:    meta,
		Targets:     mergeTargets(nil, budget.NutritionTargets),
		EatingOrder: budget.EatingOrder,
		EatingRules: budget.EatingRules,
	})
	record(domain.PlanNutrition, err)

	stepsPlan := &domain.StepsPlan{PlanMeta: meta}
	applyStepsFromBudget(stepsPlan, budget)
	_, err = s.stepsRepo.Create(ctx, stepsPlan)
	record(domain.PlanSteps, err)

	_, err = s.supplementRepo.Create(ctx, &domain.SupplementPlan{PlanMeta: meta, Supplements: budget.Supplements})
	record(domain.PlanSupplement, err)

	s.invalidatePlanCaches(ctx, client)

	return errors.Join(errs...)
}

// invalidatePlanCaches drops the cached plan histories for one client so
// dependent views refetch. Cache trouble is logged, never propagated: stale
// reads expire on TTL.
func (s *planSynchronizer) invalidatePlanCaches(ctx context.Context, client domain.ClientRef) {
	for _, planType := range domain.PlanTypes {
		key := cache.PlansKey(string(planType), client.Key())
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}
