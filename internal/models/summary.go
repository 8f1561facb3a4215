package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary tables are derived data: each row must equal the sum over the
// owner's operations in the corresponding bucket and can always be
// rebuilt from the operations table. Rows are zeroed, never deleted,
// when a bucket empties.

// DailySummary is the cached aggregate for one user and one calendar day.
// Date holds the bucket day at local midnight.
type DailySummary struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"uniqueIndex:idx_daily_user_date;not null" json:"user_id"`
	Date         time.Time       `gorm:"uniqueIndex:idx_daily_user_date;not null" json:"date"`
	TotalIncome  decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_income"`
	TotalExpense decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_expense"`
	Balance      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// WeeklySummary is keyed by ISO-8601 week number and ISO year.
type WeeklySummary struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"uniqueIndex:idx_weekly_user_week_year;not null" json:"user_id"`
	Week         int             `gorm:"uniqueIndex:idx_weekly_user_week_year;not null" json:"week"`
	Year         int             `gorm:"uniqueIndex:idx_weekly_user_week_year;not null" json:"year"`
	TotalIncome  decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_income"`
	TotalExpense decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_expense"`
	Balance      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MonthlySummary is keyed by calendar month and year.
type MonthlySummary struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"uniqueIndex:idx_monthly_user_month_year;not null" json:"user_id"`
	Month        int             `gorm:"uniqueIndex:idx_monthly_user_month_year;not null" json:"month"` // 1-12
	Year         int             `gorm:"uniqueIndex:idx_monthly_user_month_year;not null" json:"year"`
	TotalIncome  decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_income"`
	TotalExpense decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_expense"`
	Balance      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
