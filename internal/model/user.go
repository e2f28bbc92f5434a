package model

import (
	"time"
)

type User struct {
	ID                    int64      `gorm:"primaryKey" json:"id"`
	Name                  string     `gorm:"size:100;not null" json:"name"`
	Email                 *string    `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash          *string    `gorm:"size:255" json:"-"`
	GoogleID              *string    `gorm:"column:google_id;size:100;uniqueIndex" json:"-"`
	Phone                 string     `gorm:"size:30" json:"phone"`
	ClinicName            string     `gorm:"size:150" json:"clinic_name"`
	AvatarURL             string     `gorm:"size:500" json:"avatar_url"`
	// TrialEndsAt, when set at signup, takes precedence over CreatedAt + trial days.
	TrialEndsAt           *time.Time `json:"trial_ends_at,omitempty"`
	StripeCustomerID      *string    `gorm:"size:100" json:"-"`
	EmailVerified         bool       `gorm:"default:false" json:"email_verified"`
	VerificationCode      *string    `gorm:"size:100" json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
