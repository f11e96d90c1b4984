package api

import (
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes

	"banking_backend/internal/auth"       // Token verification and sessions
	"banking_backend/internal/domain"     // Importing domain models
	"banking_backend/internal/middleware" // Context key
	"banking_backend/internal/store"      // Ledger store

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/google/uuid"        // Customer ids
	"github.com/shopspring/decimal" // Zero opening balance
	"github.com/sirupsen/logrus"    // Logging library
)

// SignInRequest carries the Google ID token obtained by the frontend
type SignInRequest struct {
	Token string `json:"token"` // Raw ID token
}

// signedInUser is the user summary returned on successful sign-in
type signedInUser struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
}

// setSessionCookie writes the session cookie with the attributes a
// cross-site frontend needs: SameSite=None requires Secure, and HttpOnly
// keeps scripts out.
func setSessionCookie(c *gin.Context, domain, token string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(auth.SessionCookieName, token, maxAge, "/", domain, true, true)
}

// GoogleSignInHandler verifies a Google ID token, provisions the user and a
// default account on first sign-in, and opens a session.
func GoogleSignInHandler(verifier auth.TokenVerifier, ledger *store.Ledger, sessions *auth.Sessions, cookieDomain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignInRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Missing ID token"})
			return
		}
		identity, err := verifier.Verify(c.Request.Context(), req.Token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Google ID token"})
			return
		}
		user, err := ledger.UserByGoogleID(c.Request.Context(), identity.Subject)
		if err == nil && !user.IsActive {
			err = domain.ErrUserInactive
		}
		switch {
		case err == nil:
			// Returning active user
		case errors.Is(err, domain.ErrUserInactive):
			logrus.WithField("email", identity.Email).Warn("Sign-in rejected for inactive user")
			c.JSON(http.StatusForbidden, gin.H{"message": "User account is inactive"})
			return
		case errors.Is(err, domain.ErrUserNotFound):
			// First sign-in: create the profile and a default account at balance 0
			googleID := identity.Subject
			user, err = ledger.CreateUser(c.Request.Context(), &googleID, identity.Email, identity.FullName)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"email": identity.Email,
					"error": err.Error(),
				}).Error("Sign-in failed creating user")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred during sign-in."})
				return
			}
			account, err := ledger.CreateAccount(c.Request.Context(), user.CustomerID, decimal.Zero)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"customer_id": user.CustomerID,
					"error":       err.Error(),
				}).Error("Sign-in failed creating default account")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred during sign-in."})
				return
			}
			logrus.WithFields(logrus.Fields{
				"customer_id":    user.CustomerID,
				"account_number": account.AccountNumber,
			}).Info("New user registered with default account")
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred during sign-in."})
			return
		}
		token, err := sessions.Issue(c.Request.Context(), user.CustomerID)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to issue session")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred during sign-in."})
			return
		}
		setSessionCookie(c, cookieDomain, token, int(auth.SessionTTL.Seconds()))
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"user": signedInUser{
				CustomerID: user.CustomerID.String(),
				Email:      user.EmailAddress,
				FullName:   user.FullName,
			},
		})
	}
}

// LogoutHandler revokes the session behind the cookie and clears it
func LogoutHandler(sessions *auth.Sessions, cookieDomain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(auth.SessionCookieName); err == nil {
			if err := sessions.Revoke(c.Request.Context(), cookie); err != nil {
				logrus.WithField("error", err.Error()).Warn("Session revocation failed")
			}
		}
		setSessionCookie(c, cookieDomain, "", -1) // Expire the cookie
		c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
	}
}

// IndexHandler greets the caller, by name when a valid session rides along
func IndexHandler(ledger *store.Ledger, sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(auth.SessionCookieName); err == nil {
			if customerID, err := sessions.Resolve(c.Request.Context(), cookie); err == nil {
				if user, err := ledger.UserByID(c.Request.Context(), customerID); err == nil {
					c.JSON(http.StatusOK, gin.H{"message": "Welcome " + user.FullName + "!", "logged_in": true})
					return
				}
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "Welcome! Please log in.", "logged_in": false})
	}
}

// requestCustomerID reads the identity the middleware resolved. A missing
// value means the route was wired without an identity middleware.
func requestCustomerID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(middleware.CustomerIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return uuid.Nil, false
	}
	return id, true
}
