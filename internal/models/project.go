package models

type Project struct {
	BaseModel

	Name string `gorm:"size:300;not null"`

	// Relationships
	Contracts []Contract `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
