package model

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	MonthlyCost Money     `gorm:"type:numeric(14,2);not null"`
	Department  string
	CreatedAt   time.Time
}

func (Service) TableName() string { return "services" }

// Package bundles services for a fixed duration. Every clause compiled for
// it must carry exactly DurationMonths.
type Package struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name           string      `gorm:"not null"`
	Type           string      `gorm:"not null"`
	DurationMonths int         `gorm:"not null"`
	TotalPrice     Money       `gorm:"type:numeric(14,2);not null"`
	ServiceIDs     []uuid.UUID `gorm:"-"`
	CreatedAt      time.Time
}

func (Package) TableName() string { return "packages" }

type PackageService struct {
	PackageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ServiceID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position  int       `gorm:"not null;default:0"`
}

func (PackageService) TableName() string { return "package_services" }

type Clause struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ServiceID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ClauseText     string    `gorm:"not null"`
	DurationMonths int       `gorm:"not null"`
	SortOrder      int       `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Clause) TableName() string { return "contract_clauses" }

type Addon struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Price       Money     `gorm:"type:numeric(14,2);not null"`
	Description string
}

func (Addon) TableName() string { return "addons" }

type Coupon struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code            string    `gorm:"not null;uniqueIndex"`
	DiscountPercent Money     `gorm:"type:numeric(5,2);not null"`
	IsActive        bool      `gorm:"not null"`
	ExpiresAt       *time.Time
	UsageLimit      *int
	UsedCount       int `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Coupon) TableName() string { return "coupons" }
