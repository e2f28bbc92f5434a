package model

import (
	"time"
)

const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
	SubscriptionPending   = "pending"
)

// Subscription is one billing relationship row as written by the payment
// collaborator. Rows are superseded by new ones on plan change, never mutated
// in place; only Status moves (active -> cancelled/expired).
type Subscription struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	UserID             int64      `gorm:"not null;index" json:"user_id"`
	// PlanTier is the explicit tier identifier (basic, pro, premium). Older
	// rows may lack it, in which case the amount thresholds classify the plan.
	PlanTier           string     `gorm:"size:20" json:"plan_tier,omitempty"`
	PlanAmount         float64    `gorm:"type:decimal(10,2)" json:"plan_amount"`
	DiscountPercentage *float64   `json:"discount_percentage,omitempty"` // 0-100; 100 means courtesy
	NextBillingDate    *time.Time `json:"next_billing_date,omitempty"`
	Status             string     `gorm:"size:20;default:active;index" json:"status"`
	StripeSessionID    string     `gorm:"size:100" json:"-"`
	StripeSubID        string     `gorm:"size:100;index" json:"-"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
