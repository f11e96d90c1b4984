package api

import (
	"context"  // Mutation function signature
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes
	"time"     // Response timestamps

	"banking_backend/internal/domain"  // Importing domain models
	"banking_backend/internal/service" // Account service
	"banking_backend/internal/store"   // Ledger store

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Fixed-point money
	"github.com/sirupsen/logrus"    // Logging library
)

// recentTransactionLimit is how many ledger entries ride along with each
// account in the listing response.
const recentTransactionLimit = 10

// profileResponse mirrors the user_profile row for the frontend
type profileResponse struct {
	CustomerID   string    `json:"customer_id"`
	FullName     string    `json:"full_name"`
	Address      *string   `json:"address"`
	PhoneNumber  *string   `json:"phone_number"`
	EmailAddress string    `json:"email_address"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// transactionResponse is one immutable ledger entry. Monetary values are
// decimal strings, never floats.
type transactionResponse struct {
	TransactionNumber string          `json:"transaction_number"`
	Type              string          `json:"type"`
	AmountBefore      decimal.Decimal `json:"amount_before"`
	AmountAfter       decimal.Decimal `json:"amount_after"`
	Timestamp         time.Time       `json:"timestamp"`
	Description       *string         `json:"description"`
}

// accountResponse is one account with its most recent transactions
type accountResponse struct {
	AccountNumber  string                `json:"account_number"`
	CustomerID     string                `json:"customer_id"`
	AccountBalance decimal.Decimal       `json:"account_balance"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Transactions   []transactionResponse `json:"transactions"`
}

// AmountRequest carries the amount of a deposit or withdrawal, with an
// optional free-text description for the ledger entry.
type AmountRequest struct {
	Amount      decimal.Decimal `json:"amount"`      // Decimal string or number
	Description string          `json:"description"` // Optional ledger note
}

// ProfileHandler returns the authenticated user's profile
func ProfileHandler(ledger *store.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := requestCustomerID(c)
		if !ok {
			return
		}
		user, err := ledger.UserByID(c.Request.Context(), customerID)
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred fetching profile."})
			return
		}
		c.JSON(http.StatusOK, profileResponse{
			CustomerID:   user.CustomerID.String(),
			FullName:     user.FullName,
			Address:      user.Address,
			PhoneNumber:  user.PhoneNumber,
			EmailAddress: user.EmailAddress,
			IsActive:     user.IsActive,
			CreatedAt:    user.CreatedAt,
			UpdatedAt:    user.UpdatedAt,
		})
	}
}

// AccountHandler lists the user's accounts, each with its last 10
// transactions, most recent first. A user with no accounts gets an empty
// list.
func AccountHandler(ledger *store.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := requestCustomerID(c)
		if !ok {
			return
		}
		accounts, err := ledger.AccountsByOwner(c.Request.Context(), customerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred fetching account data."})
			return
		}
		resp := make([]accountResponse, 0, len(accounts))
		for _, account := range accounts {
			transactions, err := ledger.RecentTransactions(c.Request.Context(), account.AccountNumber, recentTransactionLimit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred fetching account data."})
				return
			}
			txs := make([]transactionResponse, 0, len(transactions))
			for _, t := range transactions {
				txs = append(txs, transactionResponse{
					TransactionNumber: t.TransactionNumber.String(),
					Type:              string(t.Type),
					AmountBefore:      t.AmountBefore,
					AmountAfter:       t.AmountAfter,
					Timestamp:         t.Timestamp,
					Description:       t.Description,
				})
			}
			resp = append(resp, accountResponse{
				AccountNumber:  account.AccountNumber,
				CustomerID:     account.CustomerID.String(),
				AccountBalance: account.AccountBalance,
				CreatedAt:      account.CreatedAt,
				UpdatedAt:      account.UpdatedAt,
				Transactions:   txs,
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}

// DepositHandler credits the user's account and returns the new balance
func DepositHandler(ledger *store.Ledger, accounts *service.Accounts) gin.HandlerFunc {
	return mutationHandler(ledger, accounts.Deposit)
}

// WithdrawHandler debits the user's account and returns the new balance
func WithdrawHandler(ledger *store.Ledger, accounts *service.Accounts) gin.HandlerFunc {
	return mutationHandler(ledger, accounts.Withdraw)
}

// mutationHandler is the shared deposit/withdraw plumbing: resolve the
// caller's account, run the mutation, map domain rejections to 400.
func mutationHandler(ledger *store.Ledger, mutate func(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (decimal.Decimal, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := requestCustomerID(c)
		if !ok {
			return
		}
		var req AmountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid amount"})
			return
		}
		account, err := ledger.FirstAccountByOwner(c.Request.Context(), customerID)
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Account not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
			return
		}
		balance, err := mutate(c.Request.Context(), account.AccountNumber, req.Amount, req.Description)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"balance": balance})
		case errors.Is(err, domain.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid amount"})
		case errors.Is(err, domain.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient funds"})
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Account not found"})
		default:
			logrus.WithFields(logrus.Fields{
				"account_number": account.AccountNumber,
				"error":          err.Error(),
			}).Error("Balance mutation request failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
		}
	}
}
