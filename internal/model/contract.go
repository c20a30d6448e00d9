package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ContractStatus string

const (
	ContractStatusPendingReview ContractStatus = "pending_review"
	ContractStatusApproved      ContractStatus = "approved"
	ContractStatusRejected      ContractStatus = "rejected"
	ContractStatusCompleted     ContractStatus = "completed"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusPendingReview, ContractStatusApproved, ContractStatusRejected, ContractStatusCompleted:
		return true
	}
	return false
}

// Contract is the aggregate root. Clauses is a snapshot taken at creation
// and is never re-derived from contract_clauses.
type Contract struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientName   string    `gorm:"not null"`
	ClientEmail  *string
	ClientPhone  *string
	TotalAmount  Money                       `gorm:"type:numeric(14,2);not null"`
	Clauses      datatypes.JSONSlice[string] `gorm:"column:contract_clauses;not null"`
	Status       ContractStatus              `gorm:"not null;default:pending_review;index"`
	SalesAgentID uuid.UUID                   `gorm:"type:uuid;not null;index"`
	PackageID    uuid.UUID                   `gorm:"type:uuid;not null"`
	CouponCode   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Addons []ContractAddonView `gorm:"-"`
}

func (Contract) TableName() string { return "contracts" }

// ContractAddon links an add-on to a contract. Add-ons start unapproved
// regardless of the contract status.
type ContractAddon struct {
	ContractID uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AddonID    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	IsApproved bool       `gorm:"not null;default:false"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt *time.Time
}

func (ContractAddon) TableName() string { return "contract_addons" }

type ContractAddonView struct {
	AddonID    uuid.UUID `json:"addon_id"`
	Name       string    `json:"name"`
	Price      Money     `json:"price"`
	IsApproved bool      `json:"is_approved"`
}

const (
	AuditActionContractCreated   = "contract_created"
	AuditActionContractUpdated   = "contract_updated"
	AuditActionContractApproved  = "contract_approved"
	AuditActionContractRejected  = "contract_rejected"
	AuditActionContractCompleted = "contract_completed"
	AuditActionAddonApproved     = "addon_approved"
)

// AuditEntry is append-only. ID grows with insertion order.
type AuditEntry struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `gorm:"type:uuid;not null"`
	Action     string    `gorm:"not null"`
	Details    string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`

	UserName string `gorm:"->;-:migration"`
}

func (AuditEntry) TableName() string { return "contract_audit_logs" }
