package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	MinHoursWorked = 0
	MaxHoursWorked = 24
)

// Timelog is a single day's worked hours under one contract.
type Timelog struct {
	BaseModel

	Date        datatypes.Date  `gorm:"type:date;not null;uniqueIndex:idx_timelog_contract_date"`
	HoursWorked decimal.Decimal `gorm:"type:numeric(4,2);not null"`
	ContractID  uint            `gorm:"not null;uniqueIndex:idx_timelog_contract_date;index"`

	// Relationships
	Contract Contract `gorm:"foreignKey:ContractID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// OwnerID is the user of the parent contract. Contract must be preloaded.
func (t *Timelog) OwnerID() uint {
	return t.Contract.UserID
}
