package repository

import (
	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/internal/model"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(patient *model.Patient) error {
	return r.db.Create(patient).Error
}

func (r *PatientRepository) GetByID(userID, id int64) (*model.Patient, error) {
	var patient model.Patient
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&patient).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *PatientRepository) List(userID int64, search string, page, pageSize int) ([]model.Patient, int64, error) {
	query := r.db.Model(&model.Patient{}).Where("user_id = ?", userID)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var patients []model.Patient
	err := query.Order("name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&patients).Error
	return patients, total, err
}

func (r *PatientRepository) Update(patient *model.Patient) error {
	return r.db.Save(patient).Error
}

func (r *PatientRepository) UpdateFields(userID, id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Patient{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields).Error
}

func (r *PatientRepository) Delete(userID, id int64) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Patient{}).Error
}

func (r *PatientRepository) ExistsByPhone(userID int64, phone string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Patient{}).
		Where("user_id = ? AND phone = ?", userID, phone).
		Count(&count).Error
	return count > 0, err
}
