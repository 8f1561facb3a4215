package database

import (
	"fmt"
	"log"

	"finance-tracker/internal/config"
	"finance-tracker/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureAdmin creates the initial administrator account if no user with
// the configured email exists yet. Safe to call on every startup.
func EnsureAdmin(db *gorm.DB, cfg config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil // seeding disabled
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("email = ?", cfg.Email).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), 12)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = "Administrator"
	}
	admin := models.User{
		Email:        cfg.Email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Printf("admin account created for %s", cfg.Email)
	return nil
}
