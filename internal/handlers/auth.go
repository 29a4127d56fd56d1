package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"culturemap/internal/auth"
	"culturemap/internal/services"
)

// SyncTrigger requests a detached catalog sync pass
type SyncTrigger interface {
	Trigger(opts services.SyncOptions)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	sessions    auth.SessionStore
	syncJob     SyncTrigger
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, sessions auth.SessionStore, syncJob SyncTrigger, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		syncJob:     syncJob,
		logger:      logger,
	}
}

// Login authenticates a user and sets the JWT cookie. A successful login
// also requests a background catalog sync; its outcome never reaches this
// response.
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username or password."})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}

	h.syncJob.Trigger(services.SyncOptions{})

	token, err := auth.GenerateToken(user.Username, user.Type)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}

	h.sessions.Add(user.Username, token)

	c.SetCookie(auth.CookieName, token, 3600, "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful."})
}

// Logout invalidates the session token and clears the cookie
// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(auth.CookieName)
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, false)

	if err == nil && token != "" {
		if claims, err := auth.ValidateToken(token); err == nil {
			h.sessions.Remove(claims.Username, token)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout successful."})
}

// Register creates a new regular user account
// POST /user/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists."})
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "new user " + user.Username + " registered successfully",
	})
}

// GetCurrentUser returns the authenticated user with favorites populated
// GET /user/current
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	username, ok := auth.GetUsername(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.authService.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error("failed to fetch current user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch current user"})
		return
	}

	c.JSON(http.StatusOK, user)
}
