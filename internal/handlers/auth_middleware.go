package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/confhub/proposal-service/internal/auth"
	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
)

// SessionAuthMiddleware resolves the session cookie to a user and puts
// it on the request context for handlers and policies.
type SessionAuthMiddleware struct {
	sessions   *auth.SessionStore
	users      repositories.UserRepository
	cookieName string
}

func NewSessionAuthMiddleware(sessions *auth.SessionStore, users repositories.UserRepository, cookieName string) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{
		sessions:   sessions,
		users:      users,
		cookieName: cookieName,
	}
}

// AuthMiddleware rejects requests without a valid session.
func (m *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope("Unauthenticated", nil))
			return
		}

		userID, err := m.sessions.Get(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrSessionNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope("Unauthenticated", nil))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorEnvelope("Internal server error", nil))
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			// The session may outlive a deleted account
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope("Unauthenticated", nil))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorEnvelope("Internal server error", nil))
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("session_token", token)

		c.Next()
	}
}

// RequireRoleMiddleware gates a route group to the given roles. Admins
// always pass.
func (m *SessionAuthMiddleware) RequireRoleMiddleware(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope("Unauthenticated", nil))
			return
		}

		user, ok := value.(*models.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope("Unauthenticated", nil))
			return
		}

		if user.IsAdmin() {
			c.Next()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, errorEnvelope("Forbidden", nil))
	}
}
