package middleware

import (
	"net/http" // HTTP status codes

	"banking_backend/internal/auth"  // Session resolution
	"banking_backend/internal/store" // User lookup

	"github.com/gin-gonic/gin" // Gin web framework
)

// CustomerIDKey is the gin context key the identity middlewares fill and
// the API handlers read.
const CustomerIDKey = "customerID"

// SessionAuth resolves the session cookie into a request-scoped customer
// id. The user must still exist and still be active; anything else is a 401.
func SessionAuth(sessions *auth.Sessions, ledger *store.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(auth.SessionCookieName) // Read the session cookie
		if err != nil {
			// No cookie means no session
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		customerID, err := sessions.Resolve(c.Request.Context(), cookie)
		if err != nil {
			// Tampered, expired or revoked token
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		if _, err := ledger.ActiveUserByID(c.Request.Context(), customerID); err != nil {
			// A session must not outlive its user or survive deactivation
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed or user inactive"})
			return
		}
		c.Set(CustomerIDKey, customerID) // Store customer id in context
		c.Next()                         // Proceed to the next handler
	}
}
