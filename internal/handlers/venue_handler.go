package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"culturemap/internal/auth"
	"culturemap/internal/services"
)

// VenueHandler handles venue endpoints
type VenueHandler struct {
	venueService *services.VenueService
	logger       *zap.Logger
}

// NewVenueHandler creates a new VenueHandler
func NewVenueHandler(venueService *services.VenueService, logger *zap.Logger) *VenueHandler {
	return &VenueHandler{
		venueService: venueService,
		logger:       logger,
	}
}

// ListVenues returns all venues with comments and hosted events
// GET /location/getall
func (h *VenueHandler) ListVenues(c *gin.Context) {
	venues, err := h.venueService.ListVenues()
	if err != nil {
		h.logger.Error("failed to list venues", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get locations"})
		return
	}

	c.JSON(http.StatusOK, venues)
}

// GetVenue returns one venue by loc_id
// GET /location/:location_id
func (h *VenueHandler) GetVenue(c *gin.Context) {
	venue, err := h.venueService.GetVenue(c.Param("location_id"))
	if err != nil {
		if errors.Is(err, services.ErrVenueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		h.logger.Error("failed to get venue", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get location"})
		return
	}

	c.JSON(http.StatusOK, venue)
}

// AddComment appends the authenticated user's comment to a venue
// POST /location/addcomment
func (h *VenueHandler) AddComment(c *gin.Context) {
	username, ok := auth.GetUsername(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		LocationID string `json:"location_id" binding:"required"`
		Comment    string `json:"comment" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	venue, err := h.venueService.AddComment(req.LocationID, username, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVenueNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid location ID."})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username."})
		default:
			h.logger.Error("failed to add comment", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Comment added successfully.",
		"location": venue,
	})
}

// ToggleFavorite toggles the venue in the user's favorites
// POST /location/toggle_fav
func (h *VenueHandler) ToggleFavorite(c *gin.Context) {
	username, ok := auth.GetUsername(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		LocID string `json:"loc_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.venueService.ToggleFavorite(req.LocID, username)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVenueNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid location ID."})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username."})
		default:
			h.logger.Error("failed to toggle venue favorite", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Location favorites updated successfully.",
		"user":    user,
	})
}
