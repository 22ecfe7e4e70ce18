package api

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/service"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BudgetHandler holds the budget service dependency.
type BudgetHandler struct {
	budgetService service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// --- Request/Response Structs ---

type BudgetRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`

	NutritionTargets domain.NutritionTargets `json:"nutritionTargets"`

	StepsGoal         int    `json:"stepsGoal"`
	StepsMin          *int   `json:"stepsMin"`
	StepsMax          *int   `json:"stepsMax"`
	StepsInstructions string `json:"stepsInstructions"`

	WorkoutTemplateID    *string `json:"workoutTemplateId"`
	NutritionTemplateID  *string `json:"nutritionTemplateId"`
	SupplementTemplateID *string `json:"supplementTemplateId"`

	Supplements []domain.SupplementItem `json:"supplements"`

	EatingOrder string `json:"eatingOrder"`
	EatingRules string `json:"eatingRules"`
	OtherNotes  string `json:"otherNotes"`

	CardioTraining   []domain.CardioTraining   `json:"cardioTraining"`
	IntervalTraining []domain.IntervalTraining `json:"intervalTraining"`

	IsPublic bool `json:"isPublic"`
}

// toDomain maps the request onto a budget owned by coachID.
func (r BudgetRequest) toDomain(coachID primitive.ObjectID) (*domain.Budget, error) {
	budget := &domain.Budget{
		CoachID:           coachID,
		Name:              r.Name,
		Description:       r.Description,
		NutritionTargets:  r.NutritionTargets,
		StepsGoal:         r.StepsGoal,
		StepsMin:          r.StepsMin,
		StepsMax:          r.StepsMax,
		StepsInstructions: r.StepsInstructions,
		Supplements:       r.Supplements,
		EatingOrder:       r.EatingOrder,
		EatingRules:       r.EatingRules,
		OtherNotes:        r.OtherNotes,
		CardioTraining:    r.CardioTraining,
		IntervalTraining:  r.IntervalTraining,
		IsPublic:          r.IsPublic,
	}

	for _, ref := range []struct {
		raw  *string
		dest **primitive.ObjectID
	}{
		{r.WorkoutTemplateID, &budget.WorkoutTemplateID},
		{r.NutritionTemplateID, &budget.NutritionTemplateID},
		{r.SupplementTemplateID, &budget.SupplementTemplateID},
	} {
		if ref.raw == nil || *ref.raw == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(*ref.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid template id %q", *ref.raw)
		}
		*ref.dest = &id
	}

	return budget, nil
}

// ClientRefRequest names the assignment target: exactly one of the two ids.
type ClientRefRequest struct {
	CustomerID string `json:"customerId"`
	LeadID     string `json:"leadId"`
}

func (r ClientRefRequest) toRef() (domain.ClientRef, error) {
	return buildClientRef(r.CustomerID, r.LeadID)
}

type BlankPlansRequest struct {
	Name       string `json:"name"`
	CustomerID string `json:"customerId"`
	LeadID     string `json:"leadId"`
}

// --- Handler Methods ---

// CreateBudget creates a new budget owned by the authenticated coach.
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	budget, err := req.toDomain(coachID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.budgetService.CreateBudget(c.Request.Context(), budget)
	if err != nil {
		if errors.Is(err, domain.ErrNegativeTargets) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create budget")
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetCoachBudgets lists the authenticated coach's budgets.
func (h *BudgetHandler) GetCoachBudgets(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	budgets, err := h.budgetService.GetCoachBudgets(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list budgets")
		return
	}
	c.JSON(http.StatusOK, budgets)
}

// GetBudget returns one budget. Non-owners only see public budgets.
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	budgetID, ok := objectIDParam(c, "budgetId")
	if !ok {
		return
	}

	budget, err := h.budgetService.GetBudget(c.Request.Context(), budgetID)
	if err != nil {
		if errors.Is(err, service.ErrBudgetNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to get budget")
		}
		return
	}
	if budget.CoachID != coachID && !budget.IsPublic {
		abortWithError(c, http.StatusForbidden, "Access denied to this budget")
		return
	}

	c.JSON(http.StatusOK, budget)
}

// UpdateBudget replaces the budget's full field set and synchronizes every
// active assignment. A partial sync still saves the budget; the response
// carries the warning instead of failing.
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	budgetID, ok := objectIDParam(c, "budgetId")
	if !ok {
		return
	}

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	budget, err := req.toDomain(coachID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	budget.ID = budgetID

	err = h.budgetService.UpdateBudget(c.Request.Context(), budget, coachID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "saved"})
	case errors.Is(err, service.ErrPartialSync):
		c.JSON(http.StatusOK, gin.H{"status": "saved", "syncWarning": err.Error()})
	case errors.Is(err, service.ErrBudgetNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrBudgetAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to update budget")
	}
}

// DeleteBudget removes a budget and cascades its assignments and plan rows.
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	budgetID, ok := objectIDParam(c, "budgetId")
	if !ok {
		return
	}

	err := h.budgetService.DeleteBudget(c.Request.Context(), budgetID, coachID)
	if err != nil {
		if errors.Is(err, service.ErrBudgetNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete budget")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignBudget links a budget to a customer or lead.
func (h *BudgetHandler) AssignBudget(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	budgetID, ok := objectIDParam(c, "budgetId")
	if !ok {
		return
	}

	var req ClientRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	client, err := req.toRef()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	assignment, err := h.budgetService.AssignBudget(c.Request.Context(), budgetID, client, coachID)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, assignment)
	case errors.Is(err, service.ErrPartialSync):
		// Assignment exists; some plan rows failed to materialize.
		c.JSON(http.StatusCreated, gin.H{"assignment": assignment, "syncWarning": err.Error()})
	case errors.Is(err, service.ErrBudgetNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrBudgetAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to assign budget")
	}
}

// DeleteAssignment removes an assignment and its derived plan rows.
func (h *BudgetHandler) DeleteAssignment(c *gin.Context) {
	assignmentID, ok := objectIDParam(c, "assignmentId")
	if !ok {
		return
	}

	err := h.budgetService.DeleteAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete assignment")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GetClientAssignments lists a client's assignments.
func (h *BudgetHandler) GetClientAssignments(c *gin.Context) {
	client, ok := clientRefFromQuery(c)
	if !ok {
		return
	}

	assignments, err := h.budgetService.GetClientAssignments(c.Request.Context(), client)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list assignments")
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// GetClientPlans returns the resolved dashboard view of a client's plans.
func (h *BudgetHandler) GetClientPlans(c *gin.Context) {
	client, ok := clientRefFromQuery(c)
	if !ok {
		return
	}

	plans, err := h.budgetService.GetClientPlans(c.Request.Context(), client)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// CreateBlankPlans bootstraps a client with a fresh budget, assignment and one
// row of each plan type.
func (h *BudgetHandler) CreateBlankPlans(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	var req BlankPlansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	client, err := buildClientRef(req.CustomerID, req.LeadID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	budget, err := h.budgetService.CreateBlankPlans(c.Request.Context(), req.Name, client, coachID)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, budget)
	case errors.Is(err, service.ErrPartialSync):
		c.JSON(http.StatusCreated, gin.H{"budget": budget, "syncWarning": err.Error()})
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to create blank plans")
	}
}

// --- Shared helpers ---

// coachIDFromContext parses the authenticated user's id set by AuthMiddleware.
func coachIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Invalid user ID in token")
		return primitive.NilObjectID, false
	}
	return id, true
}

// objectIDParam parses a hex ObjectID path parameter.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

// buildClientRef converts optional hex ids into a validated ClientRef.
func buildClientRef(customerID, leadID string) (domain.ClientRef, error) {
	var ref domain.ClientRef
	if customerID != "" {
		id, err := primitive.ObjectIDFromHex(customerID)
		if err != nil {
			return ref, errors.New("invalid customerId format")
		}
		ref.CustomerID = &id
	}
	if leadID != "" {
		id, err := primitive.ObjectIDFromHex(leadID)
		if err != nil {
			return ref, errors.New("invalid leadId format")
		}
		ref.LeadID = &id
	}
	if err := ref.Validate(); err != nil {
		return ref, err
	}
	return ref, nil
}

// clientRefFromQuery reads customerId/leadId query parameters.
func clientRefFromQuery(c *gin.Context) (domain.ClientRef, bool) {
	ref, err := buildClientRef(c.Query("customerId"), c.Query("leadId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return ref, false
	}
	return ref, true
}
