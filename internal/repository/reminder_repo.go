package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/internal/model"
)

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(reminder *model.Reminder) error {
	return r.db.Create(reminder).Error
}

func (r *ReminderRepository) GetByID(id int64) (*model.Reminder, error) {
	var reminder model.Reminder
	err := r.db.Where("id = ?", id).First(&reminder).Error
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// ListDue returns pending reminders whose remind_at has passed.
func (r *ReminderRepository) ListDue(now time.Time, limit int) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.Where("status = ? AND remind_at <= ?", model.ReminderPending, now).
		Order("remind_at ASC").
		Limit(limit).
		Find(&reminders).Error
	return reminders, err
}

func (r *ReminderRepository) MarkQueued(id int64) error {
	return r.db.Model(&model.Reminder{}).Where("id = ? AND status = ?", id, model.ReminderPending).
		Update("status", model.ReminderQueued).Error
}

func (r *ReminderRepository) MarkSent(id int64, at time.Time) error {
	return r.db.Model(&model.Reminder{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":  model.ReminderSent,
		"sent_at": at,
	}).Error
}

func (r *ReminderRepository) MarkFailed(id int64, message string) error {
	return r.db.Model(&model.Reminder{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        model.ReminderFailed,
		"error_message": message,
	}).Error
}

func (r *ReminderRepository) DeleteByAppointment(appointmentID int64) error {
	return r.db.Where("appointment_id = ? AND status = ?", appointmentID, model.ReminderPending).
		Delete(&model.Reminder{}).Error
}

// DeleteDeliveredBefore purges sent/failed reminders older than the cutoff.
// Pending and queued rows stay; a queued row may still be in flight.
func (r *ReminderRepository) DeleteDeliveredBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("status IN ? AND remind_at < ?",
		[]string{model.ReminderSent, model.ReminderFailed}, cutoff).
		Delete(&model.Reminder{})
	return result.RowsAffected, result.Error
}
