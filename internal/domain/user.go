package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID primary keys
)

// UserProfile Model
type UserProfile struct {
	CustomerID   uuid.UUID        `gorm:"column:customer_id;type:char(36);primaryKey" json:"customer_id"`     // Primary key
	GoogleID     *string          `gorm:"column:google_id;size:255;unique" json:"-"`                          // External identity id (nullable)
	EmailAddress string           `gorm:"column:email_address;size:255;unique;not null" json:"email_address"` // Unique email
	FullName     string           `gorm:"column:full_name;size:255" json:"full_name"`                         // Display name
	Address      *string          `gorm:"column:address;type:text" json:"address"`                            // Optional postal address
	PhoneNumber  *string          `gorm:"column:phone_number;size:50" json:"phone_number"`                    // Optional phone number
	IsActive     bool             `gorm:"column:is_active;not null;default:true" json:"is_active"`            // Inactive users cannot sign in
	CreatedAt    time.Time        `gorm:"column:created_at" json:"created_at"`                                // Timestamp of creation
	UpdatedAt    time.Time        `gorm:"column:updated_at" json:"updated_at"`                                // Timestamp of last update
	Accounts     []AccountDetails `gorm:"foreignKey:CustomerID;references:CustomerID" json:"-"`               // One-to-many relationship with accounts
}

// TableName keeps the original schema table name
func (UserProfile) TableName() string { return "user_profile" }
