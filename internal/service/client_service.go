package service

import (
	"coachdesk/internal/cache"
	"coachdesk/internal/domain"
	"coachdesk/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrLeadNotFound         = errors.New("lead not found")
	ErrClientAccessDenied   = errors.New("access denied to this client")
	ErrLeadAlreadyConverted = errors.New("lead has already been converted")
)

// ClientService manages customer and lead records, including the lead to
// customer conversion that re-points assignments and plan rows.
type ClientService interface {
	CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id, coachID primitive.ObjectID) (*domain.Customer, error)
	GetCoachCustomers(ctx context.Context, coachID primitive.ObjectID) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer *domain.Customer, coachID primitive.ObjectID) error
	DeleteCustomer(ctx context.Context, id, coachID primitive.ObjectID) error

	CreateLead(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)
	GetLead(ctx context.Context, id, coachID primitive.ObjectID) (*domain.Lead, error)
	GetCoachLeads(ctx context.Context, coachID primitive.ObjectID) ([]domain.Lead, error)
	UpdateLead(ctx context.Context, lead *domain.Lead, coachID primitive.ObjectID) error
	DeleteLead(ctx context.Context, id, coachID primitive.ObjectID) error

	// ConvertLead turns a lead into a customer: contact fields are copied,
	// the lead is marked converted, and all assignments and plan rows are
	// re-pointed at the new customer.
	ConvertLead(ctx context.Context, leadID, coachID primitive.ObjectID) (*domain.Customer, error)
}

// clientService implements the ClientService interface.
type clientService struct {
	customerRepo   repository.CustomerRepository
	leadRepo       repository.LeadRepository
	assignmentRepo repository.AssignmentRepository
	workoutRepo    repository.WorkoutPlanRepository
	nutritionRepo  repository.NutritionPlanRepository
	stepsRepo      repository.StepsPlanRepository
	supplementRepo repository.SupplementPlanRepository
	cache          cache.Cache
	logger         *zap.Logger
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	customerRepo repository.CustomerRepository,
	leadRepo repository.LeadRepository,
	assignmentRepo repository.AssignmentRepository,
	workoutRepo repository.WorkoutPlanRepository,
	nutritionRepo repository.NutritionPlanRepository,
	stepsRepo repository.StepsPlanRepository,
	supplementRepo repository.SupplementPlanRepository,
	cache cache.Cache,
	logger *zap.Logger,
) ClientService {
	return &clientService{
		customerRepo:   customerRepo,
		leadRepo:       leadRepo,
		assignmentRepo: assignmentRepo,
		workoutRepo:    workoutRepo,
		nutritionRepo:  nutritionRepo,
		stepsRepo:      stepsRepo,
		supplementRepo: supplementRepo,
		cache:          cache,
		logger:         logger,
	}
}

// === Customers ===

func (s *clientService) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer.Name == "" || customer.CoachID == primitive.NilObjectID {
		return nil, errors.New("customer name and coach ID are required")
	}

	id, err := s.customerRepo.Create(ctx, customer)
	if err != nil {
		return nil, err
	}
	customer.ID = id
	return customer, nil
}

func (s *clientService) GetCustomer(ctx context.Context, id, coachID primitive.ObjectID) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if customer.CoachID != coachID {
		return nil, ErrClientAccessDenied
	}
	return customer, nil
}

func (s *clientService) GetCoachCustomers(ctx context.Context, coachID primitive.ObjectID) ([]domain.Customer, error) {
	return s.customerRepo.GetByCoachID(ctx, coachID)
}

func (s *clientService) UpdateCustomer(ctx context.Context, customer *domain.Customer, coachID primitive.ObjectID) error {
	existing, err := s.customerRepo.GetByID(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}
	if existing.CoachID != coachID {
		return ErrClientAccessDenied
	}
	return s.customerRepo.Update(ctx, customer)
}

func (s *clientService) DeleteCustomer(ctx context.Context, id, coachID primitive.ObjectID) error {
	err := s.customerRepo.Delete(ctx, id, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCustomerNotFound
	}
	return err
}

// === Leads ===

func (s *clientService) CreateLead(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if lead.Name == "" || lead.CoachID == primitive.NilObjectID {
		return nil, errors.New("lead name and coach ID are required")
	}

	id, err := s.leadRepo.Create(ctx, lead)
	if err != nil {
		return nil, err
	}
	lead.ID = id
	return lead, nil
}

func (s *clientService) GetLead(ctx context.Context, id, coachID primitive.ObjectID) (*domain.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	if lead.CoachID != coachID {
		return nil, ErrClientAccessDenied
	}
	return lead, nil
}

func (s *clientService) GetCoachLeads(ctx context.Context, coachID primitive.ObjectID) ([]domain.Lead, error) {
	return s.leadRepo.GetByCoachID(ctx, coachID)
}

func (s *clientService) UpdateLead(ctx context.Context, lead *domain.Lead, coachID primitive.ObjectID) error {
	existing, err := s.leadRepo.GetByID(ctx, lead.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLeadNotFound
		}
		return err
	}
	if existing.CoachID != coachID {
		return ErrClientAccessDenied
	}
	return s.leadRepo.Update(ctx, lead)
}

func (s *clientService) DeleteLead(ctx context.Context, id, coachID primitive.ObjectID) error {
	err := s.leadRepo.Delete(ctx, id, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLeadNotFound
	}
	return err
}

// === Conversion ===

// ConvertLead creates the customer, marks the lead converted, then re-points
// assignments and plan rows. Re-pointing is best-effort per collection: a
// failure is logged and the remaining collections are still attempted, so a
// partially converted client keeps as much history attached as possible.
func (s *clientService) ConvertLead(ctx context.Context, leadID, coachID primitive.ObjectID) (*domain.Customer, error) {
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	if lead.CoachID != coachID {
		return nil, ErrClientAccessDenied
	}
	if lead.Status == domain.LeadConverted {
		return nil, ErrLeadAlreadyConverted
	}

	customer := &domain.Customer{
		CoachID: lead.CoachID,
		Name:    lead.Name,
		Email:   lead.Email,
		Phone:   lead.Phone,
		Notes:   lead.Notes,
		LeadID:  &lead.ID,
	}
	customerID, err := s.customerRepo.Create(ctx, customer)
	if err != nil {
		return nil, err
	}
	customer.ID = customerID

	lead.Status = domain.LeadConverted
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		s.logger.Warn("failed to mark lead converted", zap.String("leadId", leadID.Hex()), zap.Error(err))
	}

	from := domain.NewLeadRef(leadID)
	to := domain.NewCustomerRef(customerID)

	assignments, err := s.assignmentRepo.GetByClient(ctx, from)
	if err != nil {
		s.logger.Warn("failed to list lead assignments for conversion", zap.Error(err))
	} else {
		for _, assignment := range assignments {
			if err := s.assignmentRepo.SetClient(ctx, assignment.ID, to); err != nil {
				s.logger.Warn("failed to re-point assignment",
					zap.String("assignmentId", assignment.ID.Hex()), zap.Error(err))
			}
		}
	}

	repoint := func(planType domain.PlanType, err error) {
		if err != nil {
			s.logger.Warn("failed to re-point plan rows",
				zap.String("planType", string(planType)), zap.Error(err))
		}
	}
	repoint(domain.PlanWorkout, s.workoutRepo.SetClient(ctx, from, to))
	repoint(domain.PlanNutrition, s.nutritionRepo.SetClient(ctx, from, to))
	repoint(domain.PlanSteps, s.stepsRepo.SetClient(ctx, from, to))
	repoint(domain.PlanSupplement, s.supplementRepo.SetClient(ctx, from, to))

	for _, planType := range domain.PlanTypes {
		for _, key := range []string{
			cache.PlansKey(string(planType), from.Key()),
			cache.PlansKey(string(planType), to.Key()),
		} {
			if err := s.cache.Invalidate(ctx, key); err != nil {
				s.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
			}
		}
	}

	return customer, nil
}
