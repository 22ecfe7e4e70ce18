package api

import (
	"coachdesk/internal/service"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SnapshotHandler exposes action-plan snapshot capture and history.
type SnapshotHandler struct {
	snapshotService service.SnapshotService
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(snapshotService service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshotService: snapshotService}
}

type SnapshotRequest struct {
	BudgetID   string `json:"budgetId" binding:"required"`
	CustomerID string `json:"customerId"`
	LeadID     string `json:"leadId"`
}

// CaptureSnapshot stores an immutable copy of a budget for a client.
func (h *SnapshotHandler) CaptureSnapshot(c *gin.Context) {
	var req SnapshotRequest
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

	snapshot, err := h.snapshotService.CaptureSnapshot(c.Request.Context(), budgetID, client)
	if err != nil {
		if errors.Is(err, service.ErrBudgetNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to capture snapshot")
		}
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// GetClientSnapshots lists a client's snapshot history.
func (h *SnapshotHandler) GetClientSnapshots(c *gin.Context) {
	client, ok := clientRefFromQuery(c)
	if !ok {
		return
	}

	snapshots, err := h.snapshotService.GetClientSnapshots(c.Request.Context(), client)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

// GetSnapshotDownloadURL returns a temporary URL for the archived document.
func (h *SnapshotHandler) GetSnapshotDownloadURL(c *gin.Context) {
	snapshotID, ok := objectIDParam(c, "snapshotId")
	if !ok {
		return
	}

	url, err := h.snapshotService.SnapshotDownloadURL(c.Request.Context(), snapshotID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSnapshotNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSnapshotNotArchived):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
