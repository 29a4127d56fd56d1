package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"culturemap/internal/auth"
	"culturemap/internal/services"
)

// EventHandler handles event endpoints
type EventHandler struct {
	eventService *services.EventService
	logger       *zap.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService *services.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

// ListEvents returns all events with their venue
// GET /event/getall
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.eventService.ListEvents()
	if err != nil {
		h.logger.Error("failed to list events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// CreateEvent creates an administrator-authored event; admin only
// POST /event/create
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var input services.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.eventService.CreateEvent(input)
	if err != nil {
		if errors.Is(err, services.ErrVenueNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid location ID."})
			return
		}
		h.logger.Error("event creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Event created successfully.",
		"event":   event,
	})
}

// UpdateEvent applies partial edits to an event; admin only
// PUT /event/:event_id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var input services.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.eventService.UpdateEvent(c.Param("event_id"), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID."})
		case errors.Is(err, services.ErrVenueNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid location ID."})
		default:
			h.logger.Error("event update failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Event updated successfully.",
		"event":   event,
	})
}

// DeleteEvent removes an event; admin only
// DELETE /event/:event_id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	event, err := h.eventService.DeleteEvent(c.Param("event_id"))
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID."})
			return
		}
		h.logger.Error("event deletion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Event deleted successfully.",
		"event":   event,
	})
}

// ToggleFavorite toggles the event in the user's favorites
// POST /event/toggle_fav
func (h *EventHandler) ToggleFavorite(c *gin.Context) {
	username, ok := auth.GetUsername(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		EventID string `json:"event_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.eventService.ToggleFavorite(req.EventID, username)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid event ID."})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username."})
		default:
			h.logger.Error("failed to toggle event favorite", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Event favorites updated successfully.",
		"user":    user,
	})
}
