package model

import (
	"time"
)

// CourtesyAccess is the allow-list fallback consulted when no subscription or
// trial applies. A nil ExpiresAt means the grant never expires.
type CourtesyAccess struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"not null;uniqueIndex" json:"user_id"`
	Reason    string     `gorm:"size:200" json:"reason,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (CourtesyAccess) TableName() string {
	return "courtesy_access"
}
