package model

import (
	"time"
)

// Commitment is an ad-hoc personal entry on the agenda (a course, an errand),
// not tied to a patient. Same date/time column convention as Appointment.
type Commitment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Date      string    `gorm:"size:10;not null;index" json:"date"` // YYYY-MM-DD
	StartTime string    `gorm:"size:5;not null" json:"start_time"`  // HH:MM
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`    // HH:MM
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Commitment) TableName() string {
	return "commitments"
}
