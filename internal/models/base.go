package models

import "time"

// BaseModel mirrors gorm.Model without DeletedAt: rows in this service are hard deleted.
type BaseModel struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
