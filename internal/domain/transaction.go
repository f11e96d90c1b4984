package domain

import (
	"time" // Timestamps

	"github.com/google/uuid"        // UUID primary key
	"github.com/shopspring/decimal" // Fixed-point money
)

// TransactionType tags a ledger entry with the mutation that produced it.
type TransactionType string

// Only DEPOSIT and WITHDRAWAL are produced today; the remaining values are
// declared for schema compatibility and have no operation behind them.
const (
	TransactionDeposit     TransactionType = "DEPOSIT"
	TransactionWithdrawal  TransactionType = "WITHDRAWAL"
	TransactionTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTransferOut TransactionType = "TRANSFER_OUT"
	TransactionFee         TransactionType = "FEE"
)

// Transaction Model. Rows are append-only: created as the side effect of a
// balance mutation, never updated or deleted.
type Transaction struct {
	TransactionNumber uuid.UUID       `gorm:"column:transaction_number;type:char(36);primaryKey" json:"transaction_number"` // Primary key
	AccountNumber     string          `gorm:"column:account_number;size:50;not null;index" json:"-"`                        // Owning account
	Type              TransactionType `gorm:"column:type;size:20;not null" json:"type"`                                     // DEPOSIT or WITHDRAWAL
	AmountBefore      decimal.Decimal `gorm:"column:amount_before;type:decimal(19,4);not null" json:"amount_before"`        // Balance immediately before the mutation
	AmountAfter       decimal.Decimal `gorm:"column:amount_after;type:decimal(19,4);not null" json:"amount_after"`          // Balance immediately after the mutation
	Timestamp         time.Time       `gorm:"column:timestamp;not null" json:"timestamp"`                                   // Time of the mutation
	Description       *string         `gorm:"column:description;size:255" json:"description"`                               // Optional free text
}

// TableName keeps the original schema table name
func (Transaction) TableName() string { return "transactions" }
