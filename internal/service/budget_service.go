package service

import (
	"coachdesk/internal/cache"
	"coachdesk/internal/domain"
	"coachdesk/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrBudgetNotFound       = errors.New("budget not found")
	ErrBudgetAccessDenied   = errors.New("access denied to this budget")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	// ErrPartialSync wraps per-assignment synchronization failures after a
	// successful budget write. The budget update stands; some derived plan
	// rows may be stale until the next sync.
	ErrPartialSync = errors.New("budget saved but some plans failed to synchronize")
)

// BudgetService manages budget templates and their propagation into
// per-client plan rows.
type BudgetService interface {
	CreateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error)
	GetBudget(ctx context.Context, id primitive.ObjectID) (*domain.Budget, error)
	GetCoachBudgets(ctx context.Context, coachID primitive.ObjectID) ([]domain.Budget, error)

	// UpdateBudget replaces the budget's full non-identity field set, then
	// synchronizes every active assignment and invalidates dependent caches.
	// If the underlying write fails nothing is synchronized or invalidated.
	// Sync failures after a successful write are reported as ErrPartialSync.
	UpdateBudget(ctx context.Context, budget *domain.Budget, coachID primitive.ObjectID) error

	DeleteBudget(ctx context.Context, id, coachID primitive.ObjectID) error

	// AssignBudget links a budget to a client and creates the initial plan
	// rows, including the blank workout plan.
	AssignBudget(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef, coachID primitive.ObjectID) (*domain.BudgetAssignment, error)

	// DeleteAssignment hard-deletes the assignment and every plan row
	// matching its (budget, client) pair. Irreversible.
	DeleteAssignment(ctx context.Context, assignmentID primitive.ObjectID) error

	// CreateBlankPlans bootstraps a client with no assignment: one new
	// budget, one active assignment, one row of each plan type.
	CreateBlankPlans(ctx context.Context, name string, client domain.ClientRef, coachID primitive.ObjectID) (*domain.Budget, error)

	GetClientAssignments(ctx context.Context, client domain.ClientRef) ([]domain.BudgetAssignment, error)

	// GetClientPlans resolves the client's current plan of each type plus the
	// effective budget id, for the dashboard view.
	GetClientPlans(ctx context.Context, client domain.ClientRef) (*ClientPlans, error)
}

// ClientPlans is the resolved dashboard view of one client: the plan in effect
// for each type and the budget those plans derive from. Any field may be nil;
// an unassigned client is an empty view, not an error.
type ClientPlans struct {
	BudgetID   *primitive.ObjectID    `json:"budgetId,omitempty"`
	Workout    *domain.WorkoutPlan    `json:"workout,omitempty"`
	Nutrition  *domain.NutritionPlan  `json:"nutrition,omitempty"`
	Steps      *domain.StepsPlan      `json:"steps,omitempty"`
	Supplement *domain.SupplementPlan `json:"supplement,omitempty"`
}

// budgetService implements the BudgetService interface.
type budgetService struct {
	budgetRepo     repository.BudgetRepository
	assignmentRepo repository.AssignmentRepository
	workoutRepo    repository.WorkoutPlanRepository
	nutritionRepo  repository.NutritionPlanRepository
	stepsRepo      repository.StepsPlanRepository
	supplementRepo repository.SupplementPlanRepository
	synchronizer   PlanSynchronizer
	cache          cache.Cache
	logger         *zap.Logger
}

// NewBudgetService creates a new instance of budgetService.
func NewBudgetService(
	budgetRepo repository.BudgetRepository,
	assignmentRepo repository.AssignmentRepository,
	workoutRepo repository.WorkoutPlanRepository,
	nutritionRepo repository.NutritionPlanRepository,
	stepsRepo repository.StepsPlanRepository,
	supplementRepo repository.SupplementPlanRepository,
	synchronizer PlanSynchronizer,
	cache cache.Cache,
	logger *zap.Logger,
) BudgetService {
	return &budgetService{
		budgetRepo:     budgetRepo,
		assignmentRepo: assignmentRepo,
		workoutRepo:    workoutRepo,
		nutritionRepo:  nutritionRepo,
		stepsRepo:      stepsRepo,
		supplementRepo: supplementRepo,
		synchronizer:   synchronizer,
		cache:          cache,
		logger:         logger,
	}
}

// CreateBudget validates and persists a new budget template.
func (s *budgetService) CreateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	if budget.Name == "" || budget.CoachID == primitive.NilObjectID {
		return nil, errors.New("budget name and coach ID are required")
	}
	if err := budget.NutritionTargets.Validate(); err != nil {
		return nil, err
	}

	budgetID, err := s.budgetRepo.Create(ctx, budget)
	if err != nil {
		return nil, err
	}
	budget.ID = budgetID

	s.invalidate(ctx, cache.BudgetsKey(budget.CoachID.Hex()))
	return budget, nil
}

// GetBudget retrieves one budget, reading through the cache.
func (s *budgetService) GetBudget(ctx context.Context, id primitive.ObjectID) (*domain.Budget, error) {
	key := cache.BudgetKey(id.Hex())
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var budget domain.Budget
		if err := json.Unmarshal(raw, &budget); err == nil {
			return &budget, nil
		}
		// Corrupt entry; drop it and fall through to the store.
		s.invalidate(ctx, key)
	}

	budget, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}

	if raw, err := json.Marshal(budget); err == nil {
		if err := s.cache.Set(ctx, key, raw, cache.DefaultTTL); err != nil {
			s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return budget, nil
}

// GetCoachBudgets retrieves a coach's budget collection, reading through the cache.
func (s *budgetService) GetCoachBudgets(ctx context.Context, coachID primitive.ObjectID) ([]domain.Budget, error) {
	key := cache.BudgetsKey(coachID.Hex())
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var budgets []domain.Budget
		if err := json.Unmarshal(raw, &budgets); err == nil {
			return budgets, nil
		}
		s.invalidate(ctx, key)
	}

	budgets, err := s.budgetRepo.GetByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(budgets); err == nil {
		if err := s.cache.Set(ctx, key, raw, cache.DefaultTTL); err != nil {
			s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return budgets, nil
}

// UpdateBudget writes the budget, then propagates it to every active
// assignment. Synchronization is awaited and sequential: the caller learns
// about partial failures instead of a fire-and-forget success.
func (s *budgetService) UpdateBudget(ctx context.Context, budget *domain.Budget, coachID primitive.ObjectID) error {
	existing, err := s.budgetRepo.GetByID(ctx, budget.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBudgetNotFound
		}
		return err
	}
	if existing.CoachID != coachID {
		return ErrBudgetAccessDenied
	}

	if err := s.budgetRepo.Update(ctx, budget); err != nil {
		// Failed write: no synchronization, no cache invalidation.
		return err
	}

	var syncErrs []error
	assignments, err := s.assignmentRepo.GetByBudgetID(ctx, budget.ID)
	if err != nil {
		syncErrs = append(syncErrs, fmt.Errorf("list assignments: %w", err))
	} else {
		for _, assignment := range assignments {
			if !assignment.IsActive {
				continue
			}
			if err := s.synchronizer.SyncPlansFromBudget(ctx, budget, assignment.Client, existing.CoachID); err != nil {
				syncErrs = append(syncErrs, fmt.Errorf("client %s: %w", assignment.Client.Key(), err))
			}
		}
	}

	s.invalidate(ctx, cache.BudgetKey(budget.ID.Hex()))
	s.invalidate(ctx, cache.BudgetsKey(existing.CoachID.Hex()))

	if len(syncErrs) > 0 {
		return fmt.Errorf("%w: %w", ErrPartialSync, errors.Join(syncErrs...))
	}
	return nil
}

// DeleteBudget removes a budget and cascades through its assignments.
func (s *budgetService) DeleteBudget(ctx context.Context, id, coachID primitive.ObjectID) error {
	assignments, err := s.assignmentRepo.GetByBudgetID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.budgetRepo.Delete(ctx, id, coachID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBudgetNotFound
		}
		return err
	}

	for _, assignment := range assignments {
		if err := s.DeleteAssignment(ctx, assignment.ID); err != nil {
			s.logger.Warn("assignment cascade failed during budget delete",
				zap.String("assignmentId", assignment.ID.Hex()), zap.Error(err))
		}
	}

	s.invalidate(ctx, cache.BudgetKey(id.Hex()))
	s.invalidate(ctx, cache.BudgetsKey(coachID.Hex()))
	return nil
}

// AssignBudget links a budget to a client and materializes its plan rows.
func (s *budgetService) AssignBudget(ctx context.Context, budgetID primitive.ObjectID, client domain.ClientRef, coachID primitive.ObjectID) (*domain.BudgetAssignment, error) {
	if err := client.Validate(); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.GetByID(ctx, budgetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}
	if budget.CoachID != coachID && !budget.IsPublic {
		return nil, ErrBudgetAccessDenied
	}

	assignment := &domain.BudgetAssignment{
		BudgetID: budgetID,
		Client:   client,
		IsActive: true,
	}
	assignmentID, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = assignmentID

	if err := s.synchronizer.CreatePlansForAssignment(ctx, budget, client, coachID); err != nil {
		return assignment, fmt.Errorf("%w: %w", ErrPartialSync, err)
	}
	return assignment, nil
}

// DeleteAssignment removes the assignment row, then deletes all plan rows
// matching its (budget, client) pair. Each plan collection's delete is
// attempted independently; there is no rollback of the ones that succeeded.
func (s *budgetService) DeleteAssignment(ctx context.Context, assignmentID primitive.ObjectID) error {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if err := s.assignmentRepo.Delete(ctx, assignmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	var errs []error
	cascade := func(planType domain.PlanType, err error) {
		if err != nil {
			s.logger.Warn("plan cascade delete failed",
				zap.String("planType", string(planType)),
				zap.String("assignmentId", assignmentID.Hex()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", planType, err))
		}
	}

	cascade(domain.PlanWorkout, s.workoutRepo.DeleteByBudgetAndClient(ctx, assignment.BudgetID, assignment.Client))
	cascade(domain.PlanNutrition, s.nutritionRepo.DeleteByBudgetAndClient(ctx, assignment.BudgetID, assignment.Client))
	cascade(domain.PlanSteps, s.stepsRepo.DeleteByBudgetAndClient(ctx, assignment.BudgetID, assignment.Client))
	cascade(domain.PlanSupplement, s.supplementRepo.DeleteByBudgetAndClient(ctx, assignment.BudgetID, assignment.Client))

	for _, planType := range domain.PlanTypes {
		s.invalidate(ctx, cache.PlansKey(string(planType), assignment.Client.Key()))
	}

	return errors.Join(errs...)
}

// CreateBlankPlans bootstraps a fresh client: a new budget named after the
// client's plan, an active assignment and one row of each plan type, all
// sharing the new budget's id.
func (s *budgetService) CreateBlankPlans(ctx context.Context, name string, client domain.ClientRef, coachID primitive.ObjectID) (*domain.Budget, error) {
	if err := client.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		name = "Action plan"
	}

	budget := &domain.Budget{Name: name, CoachID: coachID}
	budgetID, err := s.budgetRepo.Create(ctx, budget)
	if err != nil {
		return nil, err
	}
	budget.ID = budgetID

	assignment := &domain.BudgetAssignment{BudgetID: budgetID, Client: client, IsActive: true}
	if _, err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}

	if err := s.synchronizer.CreatePlansForAssignment(ctx, budget, client, coachID); err != nil {
		return budget, fmt.Errorf("%w: %w", ErrPartialSync, err)
	}

	s.invalidate(ctx, cache.BudgetsKey(coachID.Hex()))
	return budget, nil
}

// GetClientAssignments lists a client's assignments for resolution in views.
func (s *budgetService) GetClientAssignments(ctx context.Context, client domain.ClientRef) ([]domain.BudgetAssignment, error) {
	if err := client.Validate(); err != nil {
		return nil, err
	}
	return s.assignmentRepo.GetByClient(ctx, client)
}

// GetClientPlans loads each plan-type history through the cache and applies
// the active-or-first resolution rule.
func (s *budgetService) GetClientPlans(ctx context.Context, client domain.ClientRef) (*ClientPlans, error) {
	if err := client.Validate(); err != nil {
		return nil, err
	}

	var workouts []domain.WorkoutPlan
	if err := s.readThrough(ctx, cache.PlansKey(string(domain.PlanWorkout), client.Key()), &workouts, func() error {
		var err error
		workouts, err = s.workoutRepo.GetByClient(ctx, client)
		return err
	}); err != nil {
		return nil, err
	}

	var nutrition []domain.NutritionPlan
	if err := s.readThrough(ctx, cache.PlansKey(string(domain.PlanNutrition), client.Key()), &nutrition, func() error {
		var err error
		nutrition, err = s.nutritionRepo.GetByClient(ctx, client)
		return err
	}); err != nil {
		return nil, err
	}

	var steps []domain.StepsPlan
	if err := s.readThrough(ctx, cache.PlansKey(string(domain.PlanSteps), client.Key()), &steps, func() error {
		var err error
		steps, err = s.stepsRepo.GetByClient(ctx, client)
		return err
	}); err != nil {
		return nil, err
	}

	var supplements []domain.SupplementPlan
	if err := s.readThrough(ctx, cache.PlansKey(string(domain.PlanSupplement), client.Key()), &supplements, func() error {
		var err error
		supplements, err = s.supplementRepo.GetByClient(ctx, client)
		return err
	}); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.GetByClient(ctx, client)
	if err != nil {
		return nil, err
	}

	view := &ClientPlans{
		Workout:    ResolveActiveWorkoutPlan(workouts),
		Nutrition:  ResolveActiveNutritionPlan(nutrition),
		Steps:      ResolveActiveStepsPlan(steps),
		Supplement: ResolveActiveSupplementPlan(supplements),
	}
	view.BudgetID = ResolveBudgetID(assignments, view.Workout, view.Nutrition, view.Steps, view.Supplement)
	return view, nil
}

// readThrough fills dest from the cache when possible, otherwise via load,
// writing the loaded value back under key.
func (s *budgetService) readThrough(ctx context.Context, key string, dest any, load func() error) error {
	if raw, err := s.cache.Get(ctx, key); err == nil {
		if err := json.Unmarshal(raw, dest); err == nil {
			return nil
		}
		s.invalidate(ctx, key)
	}

	if err := load(); err != nil {
		return err
	}

	if raw, err := json.Marshal(dest); err == nil {
		if err := s.cache.Set(ctx, key, raw, cache.DefaultTTL); err != nil {
			s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (s *budgetService) invalidate(ctx context.Context, key string) {
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
