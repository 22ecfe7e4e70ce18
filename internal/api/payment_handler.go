package api

import (
	"coachdesk/internal/domain"
	"coachdesk/internal/service"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PaymentHandler exposes payment bookkeeping.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type PaymentRequest struct {
	CustomerID string               `json:"customerId"`
	LeadID     string               `json:"leadId"`
	Amount     float64              `json:"amount" binding:"required"`
	Currency   string               `json:"currency"`
	Method     domain.PaymentMethod `json:"method" binding:"omitempty,oneof=cash card transfer other"`
	PaidAt     *time.Time           `json:"paidAt"`
	Notes      string               `json:"notes"`
}

// RecordPayment stores a client payment.
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := buildClientRef(req.CustomerID, req.LeadID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), &domain.Payment{
		CoachID:  coachID,
		Client:   client,
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
		PaidAt:   paidAt,
		Notes:    req.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNonPositiveAmount) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to record payment")
		}
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// GetPayments lists payments: for one client when customerId/leadId is given,
// otherwise all of the coach's payments.
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	if c.Query("customerId") != "" || c.Query("leadId") != "" {
		client, ok := clientRefFromQuery(c)
		if !ok {
			return
		}
		payments, err := h.paymentService.GetClientPayments(c.Request.Context(), client)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "Failed to list payments")
			return
		}
		c.JSON(http.StatusOK, payments)
		return
	}

	payments, err := h.paymentService.GetCoachPayments(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, payments)
}

// DeletePayment removes a payment row.
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	paymentID, ok := objectIDParam(c, "paymentId")
	if !ok {
		return
	}

	if err := h.paymentService.DeletePayment(c.Request.Context(), paymentID, coachID); err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete payment")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
