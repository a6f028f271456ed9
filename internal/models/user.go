package models

import "time"

type User struct {
	BaseModel

	Username     string `gorm:"size:150;uniqueIndex;not null"`
	Email        string `gorm:"size:254;uniqueIndex;not null"`
	FirstName    string `gorm:"size:150"`
	LastName     string `gorm:"size:150"`
	PasswordHash string `gorm:"not null"`
	IsStaff      bool   `gorm:"not null;default:false"`
	DateJoined   time.Time

	// Relationships
	Contracts []Contract `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
