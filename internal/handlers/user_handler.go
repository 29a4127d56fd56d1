package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"culturemap/internal/services"
)

// UserHandler handles administrative user management endpoints
type UserHandler struct {
	authService *services.AuthService
	userService *services.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *services.AuthService, userService *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
		logger:      logger,
	}
}

// CreateUser creates a user of any type; admin only
// POST /user/create
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Type     string `json:"type" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.CreateUser(req.Username, req.Password, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidUserType):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user type."})
		case errors.Is(err, services.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists."})
		default:
			h.logger.Error("user creation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "new " + user.Type + " type user " + user.Username + " created successfully",
	})
}

// ListUsers returns all users; admin only
// GET /user/getall
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateUser updates a user's password and/or type; admin only
// PUT /user/:username
func (h *UserHandler) UpdateUser(c *gin.Context) {
	username := c.Param("username")

	var req struct {
		Password string `json:"password"`
		Type     string `json:"type"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateUser(username, req.Password, req.Type)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username."})
			return
		}
		h.logger.Error("user update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully.",
		"user":    user,
	})
}

// DeleteUser removes a user; admin only
// DELETE /user/:username
func (h *UserHandler) DeleteUser(c *gin.Context) {
	username := c.Param("username")

	if err := h.userService.DeleteUser(username); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username."})
			return
		}
		h.logger.Error("user deletion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully.",
	})
}
