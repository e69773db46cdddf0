package user

import (
	"time"

	"helphands-go/internal/domain/access"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusEnrolled = "enrolled"
	StatusPending  = "pending"
)

type User struct {
	ID           string      `gorm:"type:uuid;primaryKey"`
	Name         string      `gorm:"not null"`
	Email        string      `gorm:"not null;uniqueIndex"`
	PasswordHash string      `gorm:"column:password_hash;not null"`
	Phone        string      `gorm:"not null;default:''"`
	Address      string      `gorm:"not null;default:''"`
	Role         access.Role `gorm:"type:varchar(16);not null;default:volunteer"`
	Status       string      `gorm:"type:varchar(16);not null;default:active"`
	CreatedAt    time.Time   `gorm:"autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime"`
}

type ListFilter struct {
	Role   string
	Status string
}

type RegisterInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
	Phone    string `validate:"max=30"`
	Address  string `validate:"max=200"`
}

type SeedAdminInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
}

type UpdateUserInput struct {
	ID      string
	Name    *string `validate:"omitnil,min=1,max=100"`
	Email   *string `validate:"omitnil,email,max=254"`
	Phone   *string `validate:"omitempty,max=30"`
	Address *string `validate:"omitempty,max=200"`
	Role    *string `validate:"omitempty,oneof=volunteer admin"`
	Status  *string `validate:"omitempty,oneof=active inactive enrolled pending"`
}
