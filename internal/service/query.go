package service

import (
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/aggregate"
	"finance-tracker/internal/models"
	"finance-tracker/internal/policy"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QueryService is read-only retrieval of operations and summaries,
// filtered through the access policy. It never triggers recomputation.
type QueryService struct {
	db       *gorm.DB
	pageSize int
}

// NewQueryService builds a query service with the given default page
// size for list queries (non-positive means 50).
func NewQueryService(db *gorm.DB, pageSize int) *QueryService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &QueryService{db: db, pageSize: pageSize}
}

// OperationFilter narrows a list query. UserID is honored for admins
// only (0 meaning all users); Limit defaults to the configured page size.
type OperationFilter struct {
	UserID uint
	Limit  int
	Offset int
}

// Totals is an income/expense/balance triple.
type Totals struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

func sumOps(ops []models.Operation) Totals {
	income, expense := decimal.Zero, decimal.Zero
	for i := range ops {
		if ops[i].Type == models.TypeIncome {
			income = income.Add(ops[i].Amount)
		} else {
			expense = expense.Add(ops[i].Amount)
		}
	}
	return Totals{TotalIncome: income, TotalExpense: expense, Balance: income.Sub(expense)}
}

func zeroTotals() Totals {
	return Totals{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero, Balance: decimal.Zero}
}

// ListOperations returns a page of operations with their category and
// user joined, newest first, plus the total matching count.
func (s *QueryService) ListOperations(p policy.Principal, f OperationFilter) ([]models.Operation, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = s.pageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	base := s.db.Model(&models.Operation{})
	if scope := policy.ScopeUser(p, f.UserID); scope != 0 {
		base = base.Where("user_id = ?", scope)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count operations: %w", err)
	}

	var ops []models.Operation
	if err := base.Session(&gorm.Session{}).
		Preload("Category").
		Preload("User").
		Order("date DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&ops).Error; err != nil {
		return nil, 0, fmt.Errorf("list operations: %w", err)
	}
	return ops, total, nil
}

// GetOperation returns one operation visible to the principal.
// Cross-user ids surface as ErrNotFound for non-admins.
func (s *QueryService) GetOperation(p policy.Principal, id uint) (*models.Operation, error) {
	q := s.db.Preload("Category").Preload("User").Where("id = ?", id)
	if !p.IsAdmin() {
		q = q.Where("user_id = ?", p.ID)
	}

	var op models.Operation
	if err := q.First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get operation: %w", err)
	}
	return &op, nil
}

// DaySummaryView is today's stored aggregate plus the day's operations,
// always scoped to the principal's own account.
type DaySummaryView struct {
	Totals
	Operations []models.Operation `json:"-"`
}

// DaySummary reads the stored daily aggregate for the day containing
// now plus the raw operations backing it. A missing row means no
// operation was ever recorded that day and reads as zeros.
func (s *QueryService) DaySummary(p policy.Principal, now time.Time) (*DaySummaryView, error) {
	start, end := aggregate.DayRange(now)

	view := &DaySummaryView{Totals: zeroTotals()}

	var row models.DailySummary
	err := s.db.Where("user_id = ? AND date = ?", p.ID, start).First(&row).Error
	switch {
	case err == nil:
		view.Totals = Totals{TotalIncome: row.TotalIncome, TotalExpense: row.TotalExpense, Balance: row.Balance}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no operations in this bucket yet
	default:
		return nil, fmt.Errorf("daily summary: %w", err)
	}

	if err := s.db.Preload("Category").Preload("User").
		Where("user_id = ? AND date >= ? AND date < ?", p.ID, start, end).
		Order("date DESC").
		Find(&view.Operations).Error; err != nil {
		return nil, fmt.Errorf("day operations: %w", err)
	}
	return view, nil
}

// DayBreakdown is one day's slice of a weekly view.
type DayBreakdown struct {
	Date time.Time `json:"date"`
	Totals
	OperationsCount int `json:"operationsCount"`
}

// ExportRow is the flat shape handed off to spreadsheet export.
type ExportRow struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	User        string          `json:"user"`
	Category    string          `json:"category"`
}

// WeekSummaryView combines the stored weekly aggregate with the raw
// operations of the Sunday-aligned selection window and their per-day
// breakdown.
type WeekSummaryView struct {
	Totals
	Week            int            `json:"week"`
	Year            int            `json:"year"`
	WeekStart       time.Time      `json:"weekStart"`
	WeekEnd         time.Time      `json:"weekEnd"`
	DailySummaries  []DayBreakdown `json:"dailySummaries"`
	Operations      []ExportRow    `json:"operations"`
	TotalOperations int            `json:"totalOperations"`
	FilteredByUser  uint           `json:"filteredByUser,omitempty"`
	IsAdmin         bool           `json:"isAdmin"`
}

// WeekSummary builds the weekly view for the week containing now.
// Admins see all users unless requestedUser filters to one; regular
// users only ever see themselves. Stored totals come from the weekly
// summary rows keyed by ISO week; member operations come from the
// Sunday-to-Sunday window (the inherited key/selection mismatch).
func (s *QueryService) WeekSummary(p policy.Principal, requestedUser uint, now time.Time) (*WeekSummaryView, error) {
	week, year := aggregate.ISOWeekKey(now)
	start, end := aggregate.SundayWeekRange(now)
	scope := policy.ScopeUser(p, requestedUser)

	view := &WeekSummaryView{
		Totals:         zeroTotals(),
		Week:           week,
		Year:           year,
		WeekStart:      start,
		WeekEnd:        end,
		FilteredByUser: requestedUser,
		IsAdmin:        p.IsAdmin(),
	}

	rowQ := s.db.Model(&models.WeeklySummary{}).Where("week = ? AND year = ?", week, year)
	if scope != 0 {
		rowQ = rowQ.Where("user_id = ?", scope)
	}
	var rows []models.WeeklySummary
	if err := rowQ.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("weekly summary: %w", err)
	}
	for i := range rows {
		view.TotalIncome = view.TotalIncome.Add(rows[i].TotalIncome)
		view.TotalExpense = view.TotalExpense.Add(rows[i].TotalExpense)
	}
	view.Balance = view.TotalIncome.Sub(view.TotalExpense)

	opQ := s.db.Preload("Category").Preload("User").
		Where("date >= ? AND date < ?", start, end)
	if scope != 0 {
		opQ = opQ.Where("user_id = ?", scope)
	}
	var ops []models.Operation
	if err := opQ.Order("date DESC").Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("week operations: %w", err)
	}
	view.TotalOperations = len(ops)

	// per-day sub-partitioning is done in memory over the already
	// filtered set, not via additional store queries
	view.DailySummaries = make([]DayBreakdown, 0, 7)
	for i := 0; i < 7; i++ {
		dayStart := start.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		var dayOps []models.Operation
		for j := range ops {
			if !ops[j].Date.Before(dayStart) && ops[j].Date.Before(dayEnd) {
				dayOps = append(dayOps, ops[j])
			}
		}
		view.DailySummaries = append(view.DailySummaries, DayBreakdown{
			Date:            dayStart,
			Totals:          sumOps(dayOps),
			OperationsCount: len(dayOps),
		})
	}

	view.Operations = make([]ExportRow, 0, len(ops))
	for i := range ops {
		view.Operations = append(view.Operations, ExportRow{
			Date:        ops[i].Date,
			Description: ops[i].Description,
			Amount:      ops[i].Amount,
			Type:        ops[i].Type,
			User:        ops[i].User.Name,
			Category:    ops[i].Category.Name,
		})
	}
	return view, nil
}

// WeekChunk is a 7-day slice of a monthly view, counted from the 1st.
type WeekChunk struct {
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
	Totals
	Operations []models.Operation `json:"-"`
}

// MonthSummaryView combines the stored monthly aggregate with a weekly
// breakdown of the month's operations.
type MonthSummaryView struct {
	Totals
	Month           int         `json:"month"`
	Year            int         `json:"year"`
	WeeklySummaries []WeekChunk `json:"weeklySummaries"`
}

// MonthSummary builds the monthly view for the principal's own account,
// for the month containing now.
func (s *QueryService) MonthSummary(p policy.Principal, now time.Time) (*MonthSummaryView, error) {
	start, end := aggregate.MonthRange(now)

	view := &MonthSummaryView{
		Totals: zeroTotals(),
		Month:  int(now.Month()),
		Year:   now.Year(),
	}

	var row models.MonthlySummary
	err := s.db.Where("user_id = ? AND month = ? AND year = ?", p.ID, view.Month, view.Year).First(&row).Error
	switch {
	case err == nil:
		view.Totals = Totals{TotalIncome: row.TotalIncome, TotalExpense: row.TotalExpense, Balance: row.Balance}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("monthly summary: %w", err)
	}

	// User is joined too: the chunk operations render through the same
	// view as every other operation list
	var ops []models.Operation
	if err := s.db.Preload("Category").Preload("User").
		Where("user_id = ? AND date >= ? AND date <= ?", p.ID, start, end).
		Order("date DESC").
		Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("month operations: %w", err)
	}

	// group into 7-day chunks starting at the 1st, in memory
	for chunkStart := start; !chunkStart.After(end); chunkStart = chunkStart.AddDate(0, 0, 7) {
		chunkEnd := chunkStart.AddDate(0, 0, 7)
		if chunkEnd.After(end) {
			chunkEnd = end.Add(time.Nanosecond) // cap at end of month
		}

		var chunkOps []models.Operation
		for i := range ops {
			if !ops[i].Date.Before(chunkStart) && ops[i].Date.Before(chunkEnd) {
				chunkOps = append(chunkOps, ops[i])
			}
		}
		view.WeeklySummaries = append(view.WeeklySummaries, WeekChunk{
			WeekStart:  chunkStart,
			WeekEnd:    chunkEnd,
			Totals:     sumOps(chunkOps),
			Operations: chunkOps,
		})
	}
	return view, nil
}

// PeriodTotals computes the income/expense/balance of the principal's
// own operations for the day, Monday-start week or month containing
// now, straight from the raw operations.
func (s *QueryService) PeriodTotals(p policy.Principal, period string, now time.Time) (*Totals, error) {
	var start, end time.Time
	switch period {
	case "day":
		start, end = aggregate.DayRange(now)
	case "week":
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		start = midnight.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7)) // back to Monday
		end = start.AddDate(0, 0, 7)
	case "month", "":
		start, end = aggregate.MonthRange(now)
		end = end.Add(time.Nanosecond)
	default:
		return nil, invalidField("period", "must be day, week or month")
	}

	var ops []models.Operation
	if err := s.db.
		Where("user_id = ? AND date >= ? AND date < ?", p.ID, start, end).
		Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("period operations: %w", err)
	}
	t := sumOps(ops)
	return &t, nil
}
