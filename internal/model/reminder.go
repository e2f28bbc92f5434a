package model

import (
	"time"
)

const (
	ReminderPending = "pending"
	ReminderQueued  = "queued"
	ReminderSent    = "sent"
	ReminderFailed  = "failed"

	ReminderChannelEmail = "email"
	ReminderChannelPush  = "push"
)

type Reminder struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        int64      `gorm:"not null;index" json:"user_id"`
	AppointmentID int64      `gorm:"not null;index" json:"appointment_id"`
	Channel       string     `gorm:"size:10;not null" json:"channel"` // email, push
	RemindAt      time.Time  `gorm:"not null;index" json:"remind_at"`
	Status        string     `gorm:"size:10;default:pending;index" json:"status"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	ErrorMessage  string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (Reminder) TableName() string {
	return "reminders"
}
