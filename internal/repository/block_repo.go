package repository

import (
	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/internal/model"
)

type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

func (r *BlockRepository) Create(block *model.RecurringBlock) error {
	return r.db.Create(block).Error
}

func (r *BlockRepository) GetByID(userID, id int64) (*model.RecurringBlock, error) {
	var block model.RecurringBlock
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// ListActive excludes inactive rules at the query boundary; the layout engine
// never sees them.
func (r *BlockRepository) ListActive(userID int64) ([]model.RecurringBlock, error) {
	var blocks []model.RecurringBlock
	err := r.db.Where("user_id = ? AND active = ?", userID, true).
		Order("id ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *BlockRepository) List(userID int64) ([]model.RecurringBlock, error) {
	var blocks []model.RecurringBlock
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&blocks).Error
	return blocks, err
}

func (r *BlockRepository) Update(block *model.RecurringBlock) error {
	return r.db.Save(block).Error
}

func (r *BlockRepository) Delete(userID, id int64) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.RecurringBlock{}).Error
}
