package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleAgent UserRole = "agent"
)

// Principal is the acting user extracted from an access token.
type Principal struct {
	UserID    uuid.UUID
	Role      UserRole
	CompanyID uuid.UUID
	Name      string
}

func (p Principal) IsAdmin() bool { return p.Role == UserRoleAdmin }

func (p Principal) IsAgent() bool { return p.Role == UserRoleAgent }

type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time
}

func (Company) TableName() string { return "companies" }

type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name        string     `gorm:"not null"`
	Email       string     `gorm:"not null;uniqueIndex"`
	Role        UserRole   `gorm:"not null"`
	CompanyID   *uuid.UUID `gorm:"type:uuid"`
	TargetSales Money      `gorm:"type:numeric(14,2);not null;default:0"`
	IsActive    bool       `gorm:"not null"`
	CreatedAt   time.Time
}

func (User) TableName() string { return "users" }
