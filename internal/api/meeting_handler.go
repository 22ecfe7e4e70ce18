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

// MeetingHandler exposes meeting scheduling.
type MeetingHandler struct {
	meetingService service.MeetingService
}

// NewMeetingHandler creates a new MeetingHandler.
func NewMeetingHandler(meetingService service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: meetingService}
}

type MeetingRequest struct {
	CustomerID      string             `json:"customerId"`
	LeadID          string             `json:"leadId"`
	Kind            domain.MeetingKind `json:"kind" binding:"omitempty,oneof=intro check_in follow_up"`
	ScheduledAt     time.Time          `json:"scheduledAt" binding:"required"`
	DurationMinutes int                `json:"durationMinutes"`
	Location        string             `json:"location"`
	Notes           string             `json:"notes"`
}

// ScheduleMeeting books a session with a customer or lead.
func (h *MeetingHandler) ScheduleMeeting(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	var req MeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := buildClientRef(req.CustomerID, req.LeadID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	meeting, err := h.meetingService.ScheduleMeeting(c.Request.Context(), &domain.Meeting{
		CoachID:         coachID,
		Client:          client,
		Kind:            req.Kind,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Notes:           req.Notes,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to schedule meeting")
		return
	}
	c.JSON(http.StatusCreated, meeting)
}

// GetMeetings lists the coach's scheduled meetings.
func (h *MeetingHandler) GetMeetings(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	meetings, err := h.meetingService.GetCoachMeetings(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list meetings")
		return
	}
	c.JSON(http.StatusOK, meetings)
}

// UpdateMeeting reschedules or edits a meeting.
func (h *MeetingHandler) UpdateMeeting(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	meetingID, ok := objectIDParam(c, "meetingId")
	if !ok {
		return
	}

	var req MeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := buildClientRef(req.CustomerID, req.LeadID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	meeting := &domain.Meeting{
		ID:              meetingID,
		CoachID:         coachID,
		Client:          client,
		Kind:            req.Kind,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Notes:           req.Notes,
	}
	if err := h.meetingService.UpdateMeeting(c.Request.Context(), meeting, coachID); err != nil {
		switch {
		case errors.Is(err, service.ErrMeetingNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrMeetingAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update meeting")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// CancelMeeting removes a meeting.
func (h *MeetingHandler) CancelMeeting(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	meetingID, ok := objectIDParam(c, "meetingId")
	if !ok {
		return
	}

	if err := h.meetingService.CancelMeeting(c.Request.Context(), meetingID, coachID); err != nil {
		if errors.Is(err, service.ErrMeetingNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to cancel meeting")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
