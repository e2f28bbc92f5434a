package service

import (
	"context"
	"log"
	"time"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/pkg/queue"
	"github.com/agendahof/agendahof-server/internal/repository"
)

const dueBatchSize = 200

// ReminderService schedules reminder rows at fixed offsets before each
// appointment and hands due ones to the dispatch queue. Delivery itself is
// the worker's job.
type ReminderService struct {
	reminderRepo *repository.ReminderRepository
	dispatchQ    *queue.Queue
	cfg          *config.Config
}

func NewReminderService(
	reminderRepo *repository.ReminderRepository,
	dispatchQ *queue.Queue,
	cfg *config.Config,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		dispatchQ:    dispatchQ,
		cfg:          cfg,
	}
}

// ScheduleForAppointment creates one email and one push reminder per
// configured offset. Offsets already in the past are skipped.
func (s *ReminderService) ScheduleForAppointment(appointment *model.Appointment, start time.Time) error {
	now := time.Now()
	for _, minutes := range s.cfg.Reminder.OffsetsMinutes {
		remindAt := start.Add(-time.Duration(minutes) * time.Minute)
		if remindAt.Before(now) {
			continue
		}
		for _, channel := range []string{model.ReminderChannelEmail, model.ReminderChannelPush} {
			reminder := &model.Reminder{
				UserID:        appointment.UserID,
				AppointmentID: appointment.ID,
				Channel:       channel,
				RemindAt:      remindAt,
				Status:        model.ReminderPending,
			}
			if err := s.reminderRepo.Create(reminder); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ReminderService) RescheduleForAppointment(appointment *model.Appointment, start time.Time) error {
	s.CancelForAppointment(appointment.ID)
	return s.ScheduleForAppointment(appointment, start)
}

// CancelForAppointment drops still-pending reminders; delivered ones keep
// their history.
func (s *ReminderService) CancelForAppointment(appointmentID int64) {
	if err := s.reminderRepo.DeleteByAppointment(appointmentID); err != nil {
		log.Printf("Reminder: failed to cancel reminders for appointment %d: %v", appointmentID, err)
	}
}

// EnqueueDue moves due pending reminders onto the dispatch queue and marks
// them queued so the next scan does not pick them up again. Returns how many
// were handed off.
func (s *ReminderService) EnqueueDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.reminderRepo.ListDue(now, dueBatchSize)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, reminder := range due {
		msg := &queue.ReminderMessage{
			ReminderID:    reminder.ID,
			AppointmentID: reminder.AppointmentID,
			UserID:        reminder.UserID,
			Channel:       reminder.Channel,
		}
		if err := s.dispatchQ.Push(ctx, msg); err != nil {
			log.Printf("Reminder: failed to enqueue reminder %d: %v", reminder.ID, err)
			continue
		}
		if err := s.reminderRepo.MarkQueued(reminder.ID); err != nil {
			log.Printf("Reminder: failed to mark reminder %d queued: %v", reminder.ID, err)
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// PurgeDelivered removes sent/failed reminders older than the retention
// window.
func (s *ReminderService) PurgeDelivered(now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -s.cfg.Reminder.RetentionDays)
	return s.reminderRepo.DeleteDeliveredBefore(cutoff)
}
