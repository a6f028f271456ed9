package models

import "github.com/shopspring/decimal"

const DefaultCurrency = "USD"

// Contract binds one user to one project at an hourly rate.
type Contract struct {
	BaseModel

	UserID              uint            `gorm:"not null;uniqueIndex:idx_contract_user_project"`
	ProjectID           uint            `gorm:"not null;uniqueIndex:idx_contract_user_project;index"`
	HourlyPrice         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	HourlyPriceCurrency string          `gorm:"size:3;not null;default:USD"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Project  Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Timelogs []Timelog `gorm:"foreignKey:ContractID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (c *Contract) OwnerID() uint {
	return c.UserID
}
