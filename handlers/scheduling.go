package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonflow/models"
	"salonflow/services/scheduling"
	"salonflow/utils"
)

// SchedulingHandler exposes the scheduling session lifecycle over HTTP. The
// handler is presentation glue only; every rule lives in the service.
type SchedulingHandler struct {
	Service scheduling.SchedulingService
	Logger  *zap.Logger
}

// NewSchedulingHandler builds the handler.
func NewSchedulingHandler(service scheduling.SchedulingService, logger *zap.Logger) *SchedulingHandler {
	return &SchedulingHandler{Service: service, Logger: logger}
}

// BeginSession starts a session from the assembled cart.
func (h *SchedulingHandler) BeginSession(c *gin.Context) {
	var input struct {
		SalonID          string                  `json:"salonId" binding:"required"`
		Mode             models.SessionMode      `json:"mode"`
		Items            []models.ServiceItem    `json:"items" binding:"required"`
		Participants     []models.ParticipantTag `json:"participants"`
		RescheduleTarget *models.AppointmentRef  `json:"rescheduleTarget"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if input.Mode == "" {
		input.Mode = models.ModeIndividual
	}

	session, err := h.Service.Begin(c.Request.Context(), scheduling.BeginInput{
		SalonID:          input.SalonID,
		AccountID:        c.GetString("accountID"),
		Mode:             input.Mode,
		Items:            input.Items,
		Participants:     input.Participants,
		RescheduleTarget: input.RescheduleTarget,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// AssignProfessionals records the professional choice per service item.
func (h *SchedulingHandler) AssignProfessionals(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input struct {
		Assignments []models.ProfessionalAssignment `json:"assignments" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Service.AssignProfessionals(c.Request.Context(), sessionID, input.Assignments)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// GetSlots returns the selectable dates and the filtered slot list for the
// current item on the requested (or default) date.
func (h *SchedulingHandler) GetSlots(c *gin.Context) {
	sessionID := c.Param("sessionID")
	date := c.Query("date")

	view, err := h.Service.Slots(c.Request.Context(), sessionID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Advance commits the chosen slot for the current item.
func (h *SchedulingHandler) Advance(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input struct {
		Date   string `json:"date"`
		SlotID string `json:"slotId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	outcome, err := h.Service.Advance(c.Request.Context(), sessionID, input.Date, input.SlotID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// RescheduleAdvance commits the replacement slot of a reschedule session.
func (h *SchedulingHandler) RescheduleAdvance(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input struct {
		Date   string `json:"date"`
		SlotID string `json:"slotId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	outcome, err := h.Service.RescheduleAdvance(c.Request.Context(), sessionID, input.Date, input.SlotID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Reopen adds items for more participants to a group session.
func (h *SchedulingHandler) Reopen(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input struct {
		Items        []models.ServiceItem    `json:"items" binding:"required"`
		Participants []models.ParticipantTag `json:"participants" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Service.Reopen(c.Request.Context(), sessionID, input.Items, input.Participants)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Submit drives the terminal transition.
func (h *SchedulingHandler) Submit(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input struct {
		Contact models.ContactInfo `json:"contact" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.Service.Submit(c.Request.Context(), sessionID, input.Contact)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if result.Degraded {
		// Persisted locally because the backend was down: visible, not a success.
		c.JSON(http.StatusAccepted, gin.H{"isLocalBooking": true})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AbandonSession clears the session; abandoning never submits anything.
func (h *SchedulingHandler) AbandonSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if err := h.Service.Abandon(c.Request.Context(), sessionID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"abandoned": true})
}

// respondError maps the engine's error kinds onto HTTP statuses, keeping each
// condition independently observable by the client.
func (h *SchedulingHandler) respondError(c *gin.Context, err error) {
	var partial *scheduling.PartialBatchError
	if errors.As(err, &partial) {
		c.JSON(http.StatusMultiStatus, gin.H{
			"error":      "partial batch failure",
			"createdIds": partial.CreatedIDs,
			"failed":     partial.Failed,
			"details":    partial.Cause.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, scheduling.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found or expired"})
	case errors.Is(err, scheduling.ErrTransitionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "transition in flight", "details": err.Error()})
	case errors.Is(err, scheduling.ErrSlotConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "slot no longer available", "details": err.Error()})
	case errors.Is(err, scheduling.ErrPolicyViolation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "policy violation", "details": err.Error()})
	case errors.Is(err, scheduling.ErrProfessionalUnresolved):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "professional unresolved", "details": err.Error()})
	case errors.Is(err, scheduling.ErrNoSlotSelected),
		errors.Is(err, scheduling.ErrAssignmentMissing),
		errors.Is(err, scheduling.ErrStageMismatch),
		errors.Is(err, scheduling.ErrGroupModeOnly):
		c.JSON(http.StatusBadRequest, gin.H{"error": "selection required", "details": err.Error()})
	case errors.Is(err, scheduling.ErrTransportFailure):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backend unreachable", "details": err.Error()})
	default:
		h.Logger.Error("Unhandled scheduling error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
