package models

import "time"

// User roles. Admins manage users and categories and can see every
// user's operations; regular users only see their own.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents application user.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"size:64" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:USER" json:"role"` // ADMIN / USER
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
