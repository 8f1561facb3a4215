package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation types. An operation's type is independent of its
// category's type; the two are not required to match.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Operation represents a single income or expense ledger entry.
type Operation struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	CategoryID  uint            `gorm:"index;not null" json:"category_id"`
	Type        string          `gorm:"size:16;index;not null" json:"type"` // income / expense
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Description string          `gorm:"size:255" json:"description"`
	Date        time.Time       `gorm:"index;not null" json:"date"` // when the transaction happened
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	User     User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Category Category `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}
