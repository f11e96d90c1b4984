package domain

import (
	"time" // Timestamps

	"github.com/google/uuid"        // UUID foreign key
	"github.com/shopspring/decimal" // Fixed-point money
)

// AccountDetails Model
type AccountDetails struct {
	AccountNumber  string          `gorm:"column:account_number;size:50;primaryKey" json:"account_number"`             // Human-readable unique token, e.g. ACC1A2B3C4D5E6F
	CustomerID     uuid.UUID       `gorm:"column:customer_id;type:char(36);not null;index" json:"customer_id"`         // Owning user
	AccountBalance decimal.Decimal `gorm:"column:account_balance;type:decimal(19,4);not null;default:0" json:"account_balance"` // Non-negative by policy
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`                                        // Timestamp of creation
	UpdatedAt      time.Time       `gorm:"column:updated_at" json:"updated_at"`                                        // Timestamp of last update
	Transactions   []Transaction   `gorm:"foreignKey:AccountNumber;references:AccountNumber" json:"transactions,omitempty"` // One-to-many relationship with transactions
}

// TableName keeps the original schema table name
func (AccountDetails) TableName() string { return "account_details" }
