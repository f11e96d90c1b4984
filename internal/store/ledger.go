package store

import (
	"context" // Request-scoped DB calls
	"errors"  // Sentinel error matching
	"strings" // Account number formatting

	"banking_backend/internal/domain" // Importing domain models

	"github.com/google/uuid"        // UUID generation
	"github.com/shopspring/decimal" // Fixed-point money
	"gorm.io/gorm"                  // GORM ORM library
)

// accountNumberAttempts caps the collision-retry loop of CreateAccount.
// Past this the keyspace is effectively exhausted (or the RNG is broken)
// and we fail instead of spinning.
const accountNumberAttempts = 1000

// Ledger is the persistent store for users, accounts and transactions.
type Ledger struct {
	db *gorm.DB // Database handle
}

// NewLedger wraps a GORM handle
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// generateAccountNumber returns a candidate human-readable account token:
// "ACC" plus 12 uppercase hex characters of fresh UUID entropy.
func generateAccountNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ACC" + raw[:12]
}

// CreateUser inserts a new user profile. Fails with ErrDuplicateIdentity if
// the email or the external google id is already registered.
func (l *Ledger) CreateUser(ctx context.Context, googleID *string, email, fullName string) (*domain.UserProfile, error) {
	// Pre-check both unique columns so callers get a domain error instead
	// of a driver-specific unique-violation
	var existing domain.UserProfile
	query := l.db.WithContext(ctx).Where("email_address = ?", email)
	if googleID != nil {
		query = query.Or("google_id = ?", *googleID)
	}
	if err := query.First(&existing).Error; err == nil {
		return nil, domain.ErrDuplicateIdentity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user := domain.UserProfile{
		CustomerID:   uuid.New(), // Fresh primary key
		GoogleID:     googleID,   // Nil in dev mode
		EmailAddress: email,
		FullName:     fullName,
		IsActive:     true, // New users start active
	}
	if err := l.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByID fetches a user profile by customer id
func (l *Ledger) UserByID(ctx context.Context, customerID uuid.UUID) (*domain.UserProfile, error) {
	var user domain.UserProfile
	if err := l.db.WithContext(ctx).First(&user, "customer_id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ActiveUserByID fetches a user profile by customer id and requires it to
// still be active. Session resolution goes through this so deactivating a
// user also kills their live sessions.
func (l *Ledger) ActiveUserByID(ctx context.Context, customerID uuid.UUID) (*domain.UserProfile, error) {
	user, err := l.UserByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}
	return user, nil
}

// UserByGoogleID fetches a user profile by its external identity id
func (l *Ledger) UserByGoogleID(ctx context.Context, googleID string) (*domain.UserProfile, error) {
	var user domain.UserProfile
	if err := l.db.WithContext(ctx).First(&user, "google_id = ?", googleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UserByEmail fetches a user profile by email address
func (l *Ledger) UserByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	var user domain.UserProfile
	if err := l.db.WithContext(ctx).First(&user, "email_address = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateAccount opens an account for a user, allocating a globally unique
// account number. Collisions against the store are retried up to
// accountNumberAttempts times, then ErrAccountNumbersExhausted is returned.
func (l *Ledger) CreateAccount(ctx context.Context, customerID uuid.UUID, initialBalance decimal.Decimal) (*domain.AccountDetails, error) {
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		candidate := generateAccountNumber()
		var taken domain.AccountDetails
		err := l.db.WithContext(ctx).First(&taken, "account_number = ?", candidate).Error
		if err == nil {
			continue // Collision, draw again
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		account := domain.AccountDetails{
			AccountNumber:  candidate,
			CustomerID:     customerID,
			AccountBalance: initialBalance,
		}
		if err := l.db.WithContext(ctx).Create(&account).Error; err != nil {
			return nil, err
		}
		return &account, nil
	}
	return nil, domain.ErrAccountNumbersExhausted
}

// AccountsByOwner lists all accounts of a user, oldest first. An owner with
// no accounts gets an empty slice, not an error.
func (l *Ledger) AccountsByOwner(ctx context.Context, customerID uuid.UUID) ([]domain.AccountDetails, error) {
	var accounts []domain.AccountDetails
	err := l.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at asc").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// FirstAccountByOwner returns the user's oldest account; ErrAccountNotFound
// if the user has none. Deposit/withdraw target this account.
func (l *Ledger) FirstAccountByOwner(ctx context.Context, customerID uuid.UUID) (*domain.AccountDetails, error) {
	var account domain.AccountDetails
	err := l.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at asc").
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// AccountByNumber fetches a single account by its account number
func (l *Ledger) AccountByNumber(ctx context.Context, accountNumber string) (*domain.AccountDetails, error) {
	var account domain.AccountDetails
	if err := l.db.WithContext(ctx).First(&account, "account_number = ?", accountNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// RecentTransactions returns up to limit transactions of an account, most
// recent first.
func (l *Ledger) RecentTransactions(ctx context.Context, accountNumber string, limit int) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	err := l.db.WithContext(ctx).
		Where("account_number = ?", accountNumber).
		Order("timestamp desc").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}
