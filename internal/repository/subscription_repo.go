package repository

import (
	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create inserts a new billing row. Plan changes always insert; the previous
// row is superseded, never rewritten.
func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

// GetLatestActive returns the newest active subscription for the user, or
// gorm.ErrRecordNotFound.
func (r *SubscriptionRepository) GetLatestActive(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ? AND status = ?", userID, model.SubscriptionActive).
		Order("created_at DESC, id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByStripeSubID(stripeSubID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("stripe_sub_id = ?", stripeSubID).
		Order("created_at DESC, id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) ListByUser(userID int64) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&model.Subscription{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SupersedeActive marks the user's current active rows as expired, ahead of
// inserting the replacement row.
func (r *SubscriptionRepository) SupersedeActive(userID int64) error {
	return r.db.Model(&model.Subscription{}).
		Where("user_id = ? AND status = ?", userID, model.SubscriptionActive).
		Update("status", model.SubscriptionExpired).Error
}
