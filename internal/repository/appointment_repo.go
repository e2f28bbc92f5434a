package repository

import (
	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/internal/model"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(appointment *model.Appointment) error {
	return r.db.Create(appointment).Error
}

func (r *AppointmentRepository) GetByID(userID, id int64) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.db.Preload("Patient").
		Where("id = ? AND user_id = ?", id, userID).
		First(&appointment).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// ListByDate returns appointments for one day in fetch order (insertion
// order); cancelled ones are excluded from the agenda.
func (r *AppointmentRepository) ListByDate(userID int64, date string) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.Preload("Patient").
		Where("user_id = ? AND date = ? AND status <> ?", userID, date, model.AppointmentCancelled).
		Order("id ASC").
		Find(&appointments).Error
	return appointments, err
}

func (r *AppointmentRepository) ListByDateRange(userID int64, fromDate, toDate string) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.Preload("Patient").
		Where("user_id = ? AND date >= ? AND date <= ? AND status <> ?",
			userID, fromDate, toDate, model.AppointmentCancelled).
		Order("id ASC").
		Find(&appointments).Error
	return appointments, err
}

func (r *AppointmentRepository) ListByPatient(userID, patientID int64) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.Where("user_id = ? AND patient_id = ?", userID, patientID).
		Order("date DESC, start_time DESC").
		Find(&appointments).Error
	return appointments, err
}

func (r *AppointmentRepository) Update(appointment *model.Appointment) error {
	return r.db.Save(appointment).Error
}

func (r *AppointmentRepository) UpdateFields(userID, id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Appointment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields).Error
}

func (r *AppointmentRepository) Delete(userID, id int64) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Appointment{}).Error
}
