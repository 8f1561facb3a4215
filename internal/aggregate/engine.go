// Package aggregate recomputes the cached day/week/month summaries
// from the operations table. Recomputation is always full (sum over the
// bucket's operations), never incremental, so it stays correct after
// edits and deletes and is idempotent.
package aggregate

import (
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Engine recomputes summary rows for the buckets containing a given date.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Recompute rebuilds the daily, weekly and monthly summary rows for the
// buckets containing date, for one user. Each bucket upsert is an
// independent step: a failure in one does not prevent the others, and
// all failures are joined into the returned error. The caller's ledger
// write is assumed to have committed already; an error here means the
// summaries are stale, not that the operation failed.
func (e *Engine) Recompute(userID uint, date time.Time) error {
	var errs []error

	if err := e.recomputeDay(userID, date); err != nil {
		errs = append(errs, fmt.Errorf("daily summary: %w", err))
	}
	if err := e.recomputeWeek(userID, date); err != nil {
		errs = append(errs, fmt.Errorf("weekly summary: %w", err))
	}
	if err := e.recomputeMonth(userID, date); err != nil {
		errs = append(errs, fmt.Errorf("monthly summary: %w", err))
	}

	return errors.Join(errs...)
}

// totals sums the user's operations with start <= date < end (or
// date <= end when inclusive) into income and expense totals.
func (e *Engine) totals(userID uint, start, end time.Time, inclusive bool) (income, expense decimal.Decimal, err error) {
	q := e.db.Where("user_id = ? AND date >= ?", userID, start)
	if inclusive {
		q = q.Where("date <= ?", end)
	} else {
		q = q.Where("date < ?", end)
	}

	var ops []models.Operation
	if err := q.Find(&ops).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	income, expense = decimal.Zero, decimal.Zero
	for i := range ops {
		if ops[i].Type == models.TypeIncome {
			income = income.Add(ops[i].Amount)
		} else {
			expense = expense.Add(ops[i].Amount)
		}
	}
	return income, expense, nil
}

func (e *Engine) recomputeDay(userID uint, date time.Time) error {
	start, end := DayRange(date)
	income, expense, err := e.totals(userID, start, end, false)
	if err != nil {
		return err
	}

	var row models.DailySummary
	err = e.db.Where("user_id = ? AND date = ?", userID, start).First(&row).Error
	switch {
	case err == nil:
		return e.db.Model(&row).Updates(map[string]interface{}{
			"total_income":  income,
			"total_expense": expense,
			"balance":       income.Sub(expense),
		}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.DailySummary{
			UserID:       userID,
			Date:         start,
			TotalIncome:  income,
			TotalExpense: expense,
			Balance:      income.Sub(expense),
		}
		return e.db.Create(&row).Error
	default:
		return err
	}
}

func (e *Engine) recomputeWeek(userID uint, date time.Time) error {
	// Stored key: ISO week/year. Member selection: Sunday window.
	week, year := ISOWeekKey(date)
	start, end := SundayWeekRange(date)

	income, expense, err := e.totals(userID, start, end, false)
	if err != nil {
		return err
	}

	var row models.WeeklySummary
	err = e.db.Where("user_id = ? AND week = ? AND year = ?", userID, week, year).First(&row).Error
	switch {
	case err == nil:
		return e.db.Model(&row).Updates(map[string]interface{}{
			"total_income":  income,
			"total_expense": expense,
			"balance":       income.Sub(expense),
		}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.WeeklySummary{
			UserID:       userID,
			Week:         week,
			Year:         year,
			TotalIncome:  income,
			TotalExpense: expense,
			Balance:      income.Sub(expense),
		}
		return e.db.Create(&row).Error
	default:
		return err
	}
}

func (e *Engine) recomputeMonth(userID uint, date time.Time) error {
	start, end := MonthRange(date)
	income, expense, err := e.totals(userID, start, end, true)
	if err != nil {
		return err
	}

	month := int(date.Month())
	year := date.Year()

	var row models.MonthlySummary
	err = e.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).First(&row).Error
	switch {
	case err == nil:
		return e.db.Model(&row).Updates(map[string]interface{}{
			"total_income":  income,
			"total_expense": expense,
			"balance":       income.Sub(expense),
		}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.MonthlySummary{
			UserID:       userID,
			Month:        month,
			Year:         year,
			TotalIncome:  income,
			TotalExpense: expense,
			Balance:      income.Sub(expense),
		}
		return e.db.Create(&row).Error
	default:
		return err
	}
}
