package middleware

import (
	"net/http"
	"strings"

	"github.com/rodamidia/roda-campaign-services-backend/internal/services/auth"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware validates session tokens and scopes requests to a role.
type SessionMiddleware struct {
	authService *auth.AuthService
}

func NewSessionMiddleware(authService *auth.AuthService) *SessionMiddleware {
	return &SessionMiddleware{authService: authService}
}

// RequireRole validates the bearer session token and requires it to carry
// the given role. Session identity is set in the request context.
func (m *SessionMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")

		// Check if it's Bearer token
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		// Extract token
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// Validate token
		session, err := m.authService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if session.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		// Set session info in context
		c.Set("session", session)
		c.Set("role", session.Role)
		c.Set("campaign_id", session.CampaignID)
		if session.DriverID != "" {
			c.Set("driver_id", session.DriverID)
		}
		if session.GraphicID != "" {
			c.Set("graphic_id", session.GraphicID)
		}
		if session.Username != "" {
			c.Set("username", session.Username)
		}

		c.Next()
	}
}
