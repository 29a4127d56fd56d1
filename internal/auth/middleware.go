package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"culturemap/internal/models"
)

// CookieName is the cookie carrying the JWT token
const CookieName = "jwt-token"

// UserMiddleware validates the JWT cookie against the session store and
// protects routes open to any authenticated user.
func UserMiddleware(sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, sessions)
		if !ok {
			return
		}

		c.Set("username", claims.Username)
		c.Set("user_type", claims.Type)

		c.Next()
	}
}

// AdminMiddleware additionally requires the admin user type.
func AdminMiddleware(sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, sessions)
		if !ok {
			return
		}

		if claims.Type != models.UserTypeAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Set("user_type", claims.Type)

		c.Next()
	}
}

func authenticate(c *gin.Context, sessions SessionStore) (*Claims, bool) {
	tokenString, err := c.Cookie(CookieName)
	if err != nil || tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access token missing"})
		c.Abort()
		return nil, false
	}

	claims, err := ValidateToken(tokenString)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid token"})
		c.Abort()
		return nil, false
	}

	// A token that verifies but is no longer in the session store has been
	// logged out.
	if !sessions.Valid(claims.Username, tokenString) {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid token"})
		c.Abort()
		return nil, false
	}

	return claims, true
}

// GetUsername retrieves the authenticated username from the context
func GetUsername(c *gin.Context) (string, bool) {
	value, exists := c.Get("username")
	if !exists {
		return "", false
	}

	username, ok := value.(string)
	return username, ok
}
