package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// IntArray is stored as a JSON array column.
type IntArray []int

func (a IntArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

func (a *IntArray) Scan(value interface{}) error {
	if value == nil {
		*a = []int{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, a)
}

// RecurringBlock is a weekly-repeating time reservation (lunch break, gym)
// materialized into concrete agenda items per displayed date.
type RecurringBlock struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	StartTime  string    `gorm:"size:5;not null" json:"start_time"` // HH:MM
	EndTime    string    `gorm:"size:5;not null" json:"end_time"`   // HH:MM
	DaysOfWeek IntArray  `gorm:"type:json" json:"days_of_week"`     // 0=Sunday .. 6=Saturday
	Active     bool      `gorm:"index" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (RecurringBlock) TableName() string {
	return "recurring_blocks"
}
