package repository

import (
	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/internal/model"
)

type CommitmentRepository struct {
	db *gorm.DB
}

func NewCommitmentRepository(db *gorm.DB) *CommitmentRepository {
	return &CommitmentRepository{db: db}
}

func (r *CommitmentRepository) Create(commitment *model.Commitment) error {
	return r.db.Create(commitment).Error
}

func (r *CommitmentRepository) GetByID(userID, id int64) (*model.Commitment, error) {
	var commitment model.Commitment
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&commitment).Error
	if err != nil {
		return nil, err
	}
	return &commitment, nil
}

func (r *CommitmentRepository) ListByDate(userID int64, date string) ([]model.Commitment, error) {
	var commitments []model.Commitment
	err := r.db.Where("user_id = ? AND date = ?", userID, date).
		Order("id ASC").
		Find(&commitments).Error
	return commitments, err
}

func (r *CommitmentRepository) ListByDateRange(userID int64, fromDate, toDate string) ([]model.Commitment, error) {
	var commitments []model.Commitment
	err := r.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, fromDate, toDate).
		Order("id ASC").
		Find(&commitments).Error
	return commitments, err
}

func (r *CommitmentRepository) Delete(userID, id int64) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Commitment{}).Error
}
