package service

import (
	"testing"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/policy"

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
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedUsers creates one admin and one regular user and returns their
// principals. The admin gets id 1, the user id 2.
func seedUsers(t *testing.T, db *gorm.DB) (admin, user policy.Principal) {
	t.Helper()

	rows := []models.User{
		{Email: "admin@example.com", Name: "Admin", PasswordHash: "x", Role: models.RoleAdmin},
		{Email: "user@example.com", Name: "User", PasswordHash: "x", Role: models.RoleUser},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return policy.FromUser(&rows[0]), policy.FromUser(&rows[1])
}

func seedCategory(t *testing.T, db *gorm.DB, name, catType string) *models.Category {
	t.Helper()
	cat := models.Category{Name: name, Type: catType}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return &cat
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Errorf("%s = %s, want %d", name, got, want)
	}
}

func june17() time.Time {
	return time.Date(2025, time.June, 17, 12, 0, 0, 0, time.UTC)
}
