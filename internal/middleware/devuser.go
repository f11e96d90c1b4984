package middleware

import (
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes

	"banking_backend/internal/domain" // Sentinel errors
	"banking_backend/internal/store"  // User and account provisioning

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Zero opening balance
	"github.com/sirupsen/logrus"    // Logging library
)

// DevUser is the dev-mode identity strategy: every request runs as one
// fixed user, created together with a single account on first access. No
// cookies, no tokens.
func DevUser(ledger *store.Ledger, email, fullName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user, err := ledger.UserByEmail(ctx, email)
		if errors.Is(err, domain.ErrUserNotFound) {
			// First access provisions the dev user
			user, err = ledger.CreateUser(ctx, nil, email, fullName)
			if err == nil {
				logrus.WithField("customer_id", user.CustomerID).Info("Dev user created")
			}
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not resolve dev user"})
			return
		}
		// Dev mode assumes exactly one account; provision it if missing
		if _, err := ledger.FirstAccountByOwner(ctx, user.CustomerID); errors.Is(err, domain.ErrAccountNotFound) {
			account, err := ledger.CreateAccount(ctx, user.CustomerID, decimal.Zero)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not provision dev account"})
				return
			}
			logrus.WithField("account_number", account.AccountNumber).Info("Dev account created")
		} else if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not resolve dev account"})
			return
		}
		c.Set(CustomerIDKey, user.CustomerID) // Store customer id in context
		c.Next()                              // Proceed to the next handler
	}
}
