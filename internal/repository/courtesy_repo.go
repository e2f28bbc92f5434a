package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/internal/model"
)

type CourtesyRepository struct {
	db *gorm.DB
}

func NewCourtesyRepository(db *gorm.DB) *CourtesyRepository {
	return &CourtesyRepository{db: db}
}

func (r *CourtesyRepository) Create(grant *model.CourtesyAccess) error {
	return r.db.Create(grant).Error
}

// GetByUser returns the allow-list row for the user, or gorm.ErrRecordNotFound.
// Expiry is evaluated by the resolver, not here.
func (r *CourtesyRepository) GetByUser(userID int64) (*model.CourtesyAccess, error) {
	var grant model.CourtesyAccess
	err := r.db.Where("user_id = ?", userID).First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *CourtesyRepository) Delete(userID int64) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.CourtesyAccess{}).Error
}

// DeleteExpiredBefore purges grants that expired before the cutoff.
func (r *CourtesyRepository) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("expires_at IS NOT NULL AND expires_at < ?", cutoff).
		Delete(&model.CourtesyAccess{})
	return result.RowsAffected, result.Error
}
