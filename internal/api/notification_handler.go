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

// NotificationHandler sends WhatsApp messages to customers and leads.
type NotificationHandler struct {
	notificationService service.NotificationService
	budgetService       service.BudgetService
	clientService       service.ClientService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(
	notificationService service.NotificationService,
	budgetService service.BudgetService,
	clientService service.ClientService,
) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		budgetService:       budgetService,
		clientService:       clientService,
	}
}

// --- Request Structs ---

type BudgetAssignedMessageRequest struct {
	BudgetID   string `json:"budgetId" binding:"required"`
	CustomerID string `json:"customerId"`
	LeadID     string `json:"leadId"`
	// Optional custom template; empty uses the default.
	Template string `json:"template"`
}

type CustomMessageRequest struct {
	CustomerID string `json:"customerId"`
	LeadID     string `json:"leadId"`
	Message    string `json:"message" binding:"required"`
}

// --- Handler Methods ---

// SendBudgetAssigned notifies a client that a budget was assigned to them.
func (h *NotificationHandler) SendBudgetAssigned(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	var req BudgetAssignedMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	budgetID, err := primitive.ObjectIDFromHex(req.BudgetID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid budgetId format")
		return
	}
	client, err := buildClientRef(req.CustomerID, req.LeadID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	name, phone, ok := h.contactForClient(c, client, coachID)
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

	result, err := h.notificationService.SendBudgetAssigned(c.Request.Context(), name, phone, budget, req.Template)
	if err != nil {
		if errors.Is(err, service.ErrMissingPhoneNumber) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusBadGateway, "Failed to reach WhatsApp gateway")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": result.Success, "error": result.Error})
}

// SendCustomMessage delivers a coach-written message to a client.
func (h *NotificationHandler) SendCustomMessage(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	var req CustomMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := buildClientRef(req.CustomerID, req.LeadID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	_, phone, ok := h.contactForClient(c, client, coachID)
	if !ok {
		return
	}

	result, err := h.notificationService.SendCustomMessage(c.Request.Context(), phone, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrMissingPhoneNumber) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusBadGateway, "Failed to reach WhatsApp gateway")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": result.Success, "error": result.Error})
}

// GetBudgetLink returns the shareable read-only URL for a budget.
func (h *NotificationHandler) GetBudgetLink(c *gin.Context) {
	budgetID, ok := objectIDParam(c, "budgetId")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": h.notificationService.GenerateBudgetLink(budgetID.Hex())})
}

// contactForClient resolves the name and phone of a customer or lead.
func (h *NotificationHandler) contactForClient(c *gin.Context, client domain.ClientRef, coachID primitive.ObjectID) (name, phone string, ok bool) {
	ctx := c.Request.Context()
	switch {
	case client.CustomerID != nil:
		customer, err := h.clientService.GetCustomer(ctx, *client.CustomerID, coachID)
		if err != nil {
			respondClientError(c, err, "Failed to get customer")
			return "", "", false
		}
		return customer.Name, customer.Phone, true
	default:
		lead, err := h.clientService.GetLead(ctx, *client.LeadID, coachID)
		if err != nil {
			respondClientError(c, err, "Failed to get lead")
			return "", "", false
		}
		return lead.Name, lead.Phone, true
	}
}
