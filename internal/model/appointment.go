package model

import (
	"time"
)

const (
	AppointmentScheduled = "scheduled"
	AppointmentConfirmed = "confirmed"
	AppointmentDone      = "done"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no_show"
)

// Appointment stores the agenda date and times the way the mobile client
// submits them: a calendar date plus wall-clock HH:MM strings. Normalization
// into time.Time happens once, at agenda assembly.
type Appointment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	PatientID *int64    `gorm:"index" json:"patient_id,omitempty"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Procedure string    `gorm:"size:100" json:"procedure,omitempty"`
	Date      string    `gorm:"size:10;not null;index" json:"date"`       // YYYY-MM-DD
	StartTime string    `gorm:"size:5;not null" json:"start_time"`        // HH:MM
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`          // HH:MM
	Status    string    `gorm:"size:20;default:scheduled;index" json:"status"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}
