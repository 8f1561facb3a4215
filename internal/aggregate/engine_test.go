package aggregate

import (
	"testing"
	"time"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// a second connection would see a different in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Operation{},
		&models.DailySummary{},
		&models.WeeklySummary{},
		&models.MonthlySummary{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedOperation(t *testing.T, db *gorm.DB, userID uint, opType string, amount int64, at time.Time) *models.Operation {
	t.Helper()
	op := models.Operation{
		UserID:     userID,
		CategoryID: 1,
		Type:       opType,
		Amount:     decimal.NewFromInt(amount),
		Date:       at,
	}
	if err := db.Create(&op).Error; err != nil {
		t.Fatalf("seed operation: %v", err)
	}
	return &op
}

func wantDecimal(t *testing.T, name string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Errorf("%s = %s, want %d", name, got, want)
	}
}

func TestRecomputeCreatesAllThreeBuckets(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	at := time.Date(2025, time.June, 17, 10, 0, 0, 0, time.UTC)

	seedOperation(t, db, 1, models.TypeIncome, 100, at)
	seedOperation(t, db, 1, models.TypeExpense, 30, at)

	if err := engine.Recompute(1, at); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	var daily models.DailySummary
	if err := db.Where("user_id = ? AND date = ?", 1, time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)).
		First(&daily).Error; err != nil {
		t.Fatalf("daily row: %v", err)
	}
	wantDecimal(t, "daily.TotalIncome", daily.TotalIncome, 100)
	wantDecimal(t, "daily.TotalExpense", daily.TotalExpense, 30)
	wantDecimal(t, "daily.Balance", daily.Balance, 70)

	var weekly models.WeeklySummary
	if err := db.Where("user_id = ? AND week = ? AND year = ?", 1, 25, 2025).First(&weekly).Error; err != nil {
		t.Fatalf("weekly row: %v", err)
	}
	wantDecimal(t, "weekly.TotalIncome", weekly.TotalIncome, 100)
	wantDecimal(t, "weekly.TotalExpense", weekly.TotalExpense, 30)
	wantDecimal(t, "weekly.Balance", weekly.Balance, 70)

	var monthly models.MonthlySummary
	if err := db.Where("user_id = ? AND month = ? AND year = ?", 1, 6, 2025).First(&monthly).Error; err != nil {
		t.Fatalf("monthly row: %v", err)
	}
	wantDecimal(t, "monthly.TotalIncome", monthly.TotalIncome, 100)
	wantDecimal(t, "monthly.TotalExpense", monthly.TotalExpense, 30)
	wantDecimal(t, "monthly.Balance", monthly.Balance, 70)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	at := time.Date(2025, time.June, 17, 10, 0, 0, 0, time.UTC)

	seedOperation(t, db, 1, models.TypeIncome, 250, at)

	if err := engine.Recompute(1, at); err != nil {
		t.Fatalf("first Recompute: %v", err)
	}
	var first models.DailySummary
	if err := db.Where("user_id = ?", 1).First(&first).Error; err != nil {
		t.Fatalf("first daily row: %v", err)
	}

	if err := engine.Recompute(1, at); err != nil {
		t.Fatalf("second Recompute: %v", err)
	}
	var second models.DailySummary
	if err := db.Where("user_id = ?", 1).First(&second).Error; err != nil {
		t.Fatalf("second daily row: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("recompute created a new row: id %d then %d", first.ID, second.ID)
	}
	if !first.TotalIncome.Equal(second.TotalIncome) ||
		!first.TotalExpense.Equal(second.TotalExpense) ||
		!first.Balance.Equal(second.Balance) {
		t.Errorf("rows differ: %+v vs %+v", first, second)
	}

	var count int64
	db.Model(&models.DailySummary{}).Count(&count)
	if count != 1 {
		t.Errorf("daily summary rows = %d, want 1", count)
	}
}

func TestRecomputeZeroesEmptiedBucket(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	at := time.Date(2025, time.June, 17, 10, 0, 0, 0, time.UTC)

	op := seedOperation(t, db, 1, models.TypeIncome, 100, at)
	if err := engine.Recompute(1, at); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	if err := db.Delete(&models.Operation{}, op.ID).Error; err != nil {
		t.Fatalf("delete operation: %v", err)
	}
	if err := engine.Recompute(1, at); err != nil {
		t.Fatalf("Recompute after delete: %v", err)
	}

	// the row is zeroed, not removed
	var daily models.DailySummary
	if err := db.Where("user_id = ?", 1).First(&daily).Error; err != nil {
		t.Fatalf("daily row after delete: %v", err)
	}
	wantDecimal(t, "daily.TotalIncome", daily.TotalIncome, 0)
	wantDecimal(t, "daily.TotalExpense", daily.TotalExpense, 0)
	wantDecimal(t, "daily.Balance", daily.Balance, 0)
}

func TestRecomputeScopesToUserAndBucket(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	at := time.Date(2025, time.June, 17, 10, 0, 0, 0, time.UTC)

	seedOperation(t, db, 1, models.TypeIncome, 100, at)
	seedOperation(t, db, 2, models.TypeIncome, 999, at)                    // other user
	seedOperation(t, db, 1, models.TypeIncome, 50, at.AddDate(0, 0, 10))   // 06-27: same month, outside day and window
	seedOperation(t, db, 1, models.TypeExpense, 40, at.Add(-48*time.Hour)) // 06-15: inside the Sunday window, other day
	seedOperation(t, db, 1, models.TypeExpense, 5, at.AddDate(0, -1, 0))   // previous month

	if err := engine.Recompute(1, at); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	var daily models.DailySummary
	if err := db.Where("user_id = ? AND date = ?", 1, time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)).
		First(&daily).Error; err != nil {
		t.Fatalf("daily row: %v", err)
	}
	wantDecimal(t, "daily.TotalIncome", daily.TotalIncome, 100)
	wantDecimal(t, "daily.TotalExpense", daily.TotalExpense, 0)

	// 06-15 falls inside the Sunday window of 06-17, 06-27 does not
	var weekly models.WeeklySummary
	if err := db.Where("user_id = ? AND week = ? AND year = ?", 1, 25, 2025).First(&weekly).Error; err != nil {
		t.Fatalf("weekly row: %v", err)
	}
	wantDecimal(t, "weekly.TotalIncome", weekly.TotalIncome, 100)
	wantDecimal(t, "weekly.TotalExpense", weekly.TotalExpense, 40)

	// the month bucket sees 06-15, 06-17 and 06-27 but not May
	var monthly models.MonthlySummary
	if err := db.Where("user_id = ? AND month = ? AND year = ?", 1, 6, 2025).First(&monthly).Error; err != nil {
		t.Fatalf("monthly row: %v", err)
	}
	wantDecimal(t, "monthly.TotalIncome", monthly.TotalIncome, 150)
	wantDecimal(t, "monthly.TotalExpense", monthly.TotalExpense, 40)

	// no rows were written for the other user
	var otherCount int64
	db.Model(&models.DailySummary{}).Where("user_id = ?", 2).Count(&otherCount)
	if otherCount != 0 {
		t.Errorf("unexpected summary rows for user 2: %d", otherCount)
	}
}

// An operation on the Sunday before the ISO week start is still
// selected into the weekly bucket: the stored key is the ISO week, the
// member window is Sunday-aligned.
func TestRecomputeWeekUsesSundayWindow(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)

	sunday := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)  // before ISO W25 (starts 06-16)
	tuesday := time.Date(2025, time.June, 17, 9, 0, 0, 0, time.UTC) // inside ISO W25

	seedOperation(t, db, 1, models.TypeIncome, 10, sunday)
	seedOperation(t, db, 1, models.TypeIncome, 20, tuesday)

	if err := engine.Recompute(1, tuesday); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	var weekly models.WeeklySummary
	if err := db.Where("user_id = ? AND week = ? AND year = ?", 1, 25, 2025).First(&weekly).Error; err != nil {
		t.Fatalf("weekly row: %v", err)
	}
	wantDecimal(t, "weekly.TotalIncome", weekly.TotalIncome, 30)
}
