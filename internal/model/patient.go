package model

import (
	"time"
)

type Patient struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"not null;index" json:"user_id"`
	Name      string     `gorm:"size:150;not null" json:"name"`
	Phone     string     `gorm:"size:30;index" json:"phone"`
	Email     string     `gorm:"size:100" json:"email,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	PhotoURL  string     `gorm:"size:500" json:"photo_url,omitempty"`
	Notes     string     `gorm:"type:text" json:"notes,omitempty"`
	// Source records how the patient entered the base: manual, import.
	Source    string     `gorm:"size:20;default:manual" json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}
