package api

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/service"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ClientHandler exposes customer and lead management plus portal onboarding.
type ClientHandler struct {
	clientService       service.ClientService
	authService         service.AuthService
	notificationService service.NotificationService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(
	clientService service.ClientService,
	authService service.AuthService,
	notificationService service.NotificationService,
) *ClientHandler {
	return &ClientHandler{
		clientService:       clientService,
		authService:         authService,
		notificationService: notificationService,
	}
}

// --- Request/Response Structs ---

type CustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type LeadRequest struct {
	Name   string            `json:"name" binding:"required"`
	Email  string            `json:"email" binding:"omitempty,email"`
	Phone  string            `json:"phone"`
	Status domain.LeadStatus `json:"status" binding:"omitempty,oneof=new contacted qualified converted lost"`
	Source string            `json:"source"`
	Notes  string            `json:"notes"`
}

type PortalCredentialsRequest struct {
	// Optional custom WhatsApp template; empty uses the default.
	Template string `json:"template"`
	// Skip the WhatsApp message and just return the credentials.
	SkipMessage bool `json:"skipMessage"`
}

// --- Customer handlers ---

func (h *ClientHandler) CreateCustomer(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	customer, err := h.clientService.CreateCustomer(c.Request.Context(), &domain.Customer{
		CoachID: coachID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Notes:   req.Notes,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *ClientHandler) GetCustomers(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	customers, err := h.clientService.GetCoachCustomers(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list customers")
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *ClientHandler) GetCustomer(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	customerID, ok := objectIDParam(c, "customerId")
	if !ok {
		return
	}

	customer, err := h.clientService.GetCustomer(c.Request.Context(), customerID, coachID)
	if err != nil {
		respondClientError(c, err, "Failed to get customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *ClientHandler) UpdateCustomer(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	customerID, ok := objectIDParam(c, "customerId")
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	customer := &domain.Customer{
		ID:      customerID,
		CoachID: coachID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Notes:   req.Notes,
	}
	if err := h.clientService.UpdateCustomer(c.Request.Context(), customer, coachID); err != nil {
		respondClientError(c, err, "Failed to update customer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *ClientHandler) DeleteCustomer(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	customerID, ok := objectIDParam(c, "customerId")
	if !ok {
		return
	}

	if err := h.clientService.DeleteCustomer(c.Request.Context(), customerID, coachID); err != nil {
		respondClientError(c, err, "Failed to delete customer")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Lead handlers ---

func (h *ClientHandler) CreateLead(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	status := req.Status
	if status == "" {
		status = domain.LeadNew
	}
	lead, err := h.clientService.CreateLead(c.Request.Context(), &domain.Lead{
		CoachID: coachID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Status:  status,
		Source:  req.Source,
		Notes:   req.Notes,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create lead")
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (h *ClientHandler) GetLeads(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	leads, err := h.clientService.GetCoachLeads(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list leads")
		return
	}
	c.JSON(http.StatusOK, leads)
}

func (h *ClientHandler) UpdateLead(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	leadID, ok := objectIDParam(c, "leadId")
	if !ok {
		return
	}

	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	lead := &domain.Lead{
		ID:      leadID,
		CoachID: coachID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Status:  req.Status,
		Source:  req.Source,
		Notes:   req.Notes,
	}
	if err := h.clientService.UpdateLead(c.Request.Context(), lead, coachID); err != nil {
		respondClientError(c, err, "Failed to update lead")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *ClientHandler) DeleteLead(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	leadID, ok := objectIDParam(c, "leadId")
	if !ok {
		return
	}

	if err := h.clientService.DeleteLead(c.Request.Context(), leadID, coachID); err != nil {
		respondClientError(c, err, "Failed to delete lead")
		return
	}
	c.Status(http.StatusNoContent)
}

// ConvertLead turns a lead into a customer, re-pointing its assignments and
// plan rows.
func (h *ClientHandler) ConvertLead(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	leadID, ok := objectIDParam(c, "leadId")
	if !ok {
		return
	}

	customer, err := h.clientService.ConvertLead(c.Request.Context(), leadID, coachID)
	if err != nil {
		if errors.Is(err, service.ErrLeadAlreadyConverted) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		respondClientError(c, err, "Failed to convert lead")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// IssuePortalCredentials creates a portal login for a customer and sends the
// credentials over WhatsApp. The message is best-effort; the credentials are
// returned regardless so the coach can pass them on manually.
func (h *ClientHandler) IssuePortalCredentials(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	customerID, ok := objectIDParam(c, "customerId")
	if !ok {
		return
	}

	// Body is optional for this endpoint.
	var req PortalCredentialsRequest
	_ = c.ShouldBindJSON(&req)

	customer, err := h.clientService.GetCustomer(c.Request.Context(), customerID, coachID)
	if err != nil {
		respondClientError(c, err, "Failed to get customer")
		return
	}

	creds, err := h.authService.IssuePortalCredentials(c.Request.Context(), customerID, coachID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerHasPortal):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrCustomerNeedsEmail):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			respondClientError(c, err, "Failed to issue credentials")
		}
		return
	}

	response := gin.H{"email": creds.Email, "password": creds.Password, "loginUrl": creds.LoginURL}

	if !req.SkipMessage && customer.Phone != "" {
		result, err := h.notificationService.SendPortalCredentials(
			c.Request.Context(), customer.Name, customer.Phone, creds, req.Template)
		switch {
		case err != nil:
			response["messageSent"] = false
			response["messageError"] = err.Error()
		case !result.Success:
			response["messageSent"] = false
			response["messageError"] = result.Error
		default:
			response["messageSent"] = true
		}
	}

	c.JSON(http.StatusCreated, response)
}

// respondClientError maps client-service errors onto HTTP statuses.
func respondClientError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrCustomerNotFound), errors.Is(err, service.ErrLeadNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClientAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
