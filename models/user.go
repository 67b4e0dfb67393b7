package models

import "time"

// Role distinguishes customers from back-office staff.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is an account that can place orders and leave reviews.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null"`
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"not null;default:customer"`
	CreatedAt    time.Time
}

func (u *User) TableName() string {
	return "users"
}
