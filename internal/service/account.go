package service

import (
	"context" // Request-scoped DB calls
	"errors"  // Sentinel error matching
	"time"    // Transaction timestamps

	"banking_backend/internal/domain" // Importing domain models
	"banking_backend/internal/store"  // Transaction-scoped account reads

	"github.com/google/uuid"        // Transaction numbers
	"github.com/shopspring/decimal" // Fixed-point money
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// balanceWriteAttempts caps the compare-and-swap retry loop. A miss means a
// concurrent writer committed between our read and our update; the whole
// read-compute-write unit is retried from scratch.
const balanceWriteAttempts = 5

// errStaleBalance signals a lost CAS race inside one attempt.
var errStaleBalance = errors.New("stale balance read")

// Accounts implements the two state-changing operations, deposit and
// withdraw. Every successful mutation commits the new balance together with
// exactly one immutable transaction row carrying the before/after snapshot;
// on any failure neither is written.
type Accounts struct {
	db *gorm.DB // Database handle
}

// NewAccounts wraps a GORM handle
func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

// Deposit adds amount to the account balance and appends a DEPOSIT
// transaction. Returns the new balance.
func (s *Accounts) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	return s.mutate(ctx, accountNumber, amount, domain.TransactionDeposit, description)
}

// Withdraw subtracts amount from the account balance and appends a
// WITHDRAWAL transaction. Fails with ErrInsufficientFunds if amount exceeds
// the current balance; nothing is written in that case. Returns the new
// balance.
func (s *Accounts) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	return s.mutate(ctx, accountNumber, amount, domain.TransactionWithdrawal, description)
}

// mutate runs one atomic balance mutation: read the current balance, compute
// the new one, swap it in only if the read is still current, and append the
// transaction row. The conditional update (WHERE account_balance = before)
// is what prevents two concurrent operations from both committing against
// the same before value.
func (s *Accounts) mutate(ctx context.Context, accountNumber string, amount decimal.Decimal, txType domain.TransactionType, description string) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	var after decimal.Decimal
	for attempt := 0; attempt < balanceWriteAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Read through a transaction-scoped ledger so the balance we
			// CAS against came from this very transaction
			account, err := store.NewLedger(tx).AccountByNumber(ctx, accountNumber)
			if err != nil {
				return err
			}
			before := account.AccountBalance
			switch txType {
			case domain.TransactionDeposit:
				after = before.Add(amount)
			case domain.TransactionWithdrawal:
				if amount.GreaterThan(before) {
					return domain.ErrInsufficientFunds
				}
				after = before.Sub(amount)
			default:
				return domain.ErrInvalidAmount // No other mutation is implemented
			}
			// Compare-and-swap: only commit against the balance we read
			res := tx.Model(&domain.AccountDetails{}).
				Where("account_number = ? AND account_balance = ?", accountNumber, before).
				Update("account_balance", after)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStaleBalance // Concurrent writer won, retry the unit
			}
			record := domain.Transaction{
				TransactionNumber: uuid.New(),
				AccountNumber:     accountNumber,
				Type:              txType,
				AmountBefore:      before, // Snapshot preceding the mutation
				AmountAfter:       after,  // Snapshot following the mutation
				Timestamp:         time.Now().UTC(),
			}
			if description != "" {
				record.Description = &description
			}
			return tx.Create(&record).Error // Rolls back the balance write on failure
		})
		if errors.Is(err, errStaleBalance) {
			continue
		}
		if err != nil {
			// Domain rejections are the caller's business; log the rest
			if !errors.Is(err, domain.ErrAccountNotFound) && !errors.Is(err, domain.ErrInsufficientFunds) {
				logrus.WithFields(logrus.Fields{
					"account_number": accountNumber, // Target account
					"type":           txType,        // Mutation type
					"amount":         amount.String(),
					"error":          err.Error(),
				}).Error("Balance mutation failed")
			}
			return decimal.Zero, err
		}
		// Log successful mutation
		logrus.WithFields(logrus.Fields{
			"account_number": accountNumber,  // Target account
			"type":           txType,         // Mutation type
			"amount":         amount.String(),
			"balance":        after.String(), // New balance
		}).Info("Balance mutation committed")
		return after, nil
	}
	logrus.WithFields(logrus.Fields{
		"account_number": accountNumber,
		"type":           txType,
	}).Error("Balance mutation gave up after repeated conflicts")
	return decimal.Zero, domain.ErrBalanceConflict
}
