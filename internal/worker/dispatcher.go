package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/pkg/email"
	"github.com/agendahof/agendahof-server/internal/pkg/pubsub"
	"github.com/agendahof/agendahof-server/internal/pkg/queue"
	"github.com/agendahof/agendahof-server/internal/repository"
)

// Dispatcher delivers queued reminders. Email goes out directly over SMTP;
// push rides the pub/sub channel so the API process can forward it to live
// websocket connections.
type Dispatcher struct {
	reminderRepo    *repository.ReminderRepository
	appointmentRepo *repository.AppointmentRepository
	userRepo        *repository.UserRepository
	emailSvc        *email.Service
	publisher       *pubsub.Publisher
	cfg             *config.Config
}

func NewDispatcher(
	reminderRepo *repository.ReminderRepository,
	appointmentRepo *repository.AppointmentRepository,
	userRepo *repository.UserRepository,
	emailSvc *email.Service,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *Dispatcher {
	return &Dispatcher{
		reminderRepo:    reminderRepo,
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		emailSvc:        emailSvc,
		publisher:       publisher,
		cfg:             cfg,
	}
}

// Process delivers one reminder. Delivery problems are recorded on the row,
// not retried here.
func (d *Dispatcher) Process(ctx context.Context, msg *queue.ReminderMessage) error {
	reminder, err := d.reminderRepo.GetByID(msg.ReminderID)
	if err != nil {
		return fmt.Errorf("failed to get reminder %d: %w", msg.ReminderID, err)
	}

	if reminder.Status != model.ReminderQueued {
		log.Printf("Reminder %d already %s, skipping", reminder.ID, reminder.Status)
		return nil
	}

	appointment, err := d.appointmentRepo.GetByID(reminder.UserID, reminder.AppointmentID)
	if err != nil {
		d.markFailed(reminder.ID, "appointment no longer exists")
		return nil
	}
	if appointment.Status == model.AppointmentCancelled {
		d.markFailed(reminder.ID, "appointment cancelled")
		return nil
	}

	switch reminder.Channel {
	case model.ReminderChannelEmail:
		err = d.deliverEmail(reminder, appointment)
	case model.ReminderChannelPush:
		err = d.deliverPush(reminder, appointment)
	default:
		err = fmt.Errorf("unknown channel %q", reminder.Channel)
	}

	if err != nil {
		d.markFailed(reminder.ID, err.Error())
		return err
	}

	if err := d.reminderRepo.MarkSent(reminder.ID, time.Now()); err != nil {
		log.Printf("Failed to mark reminder %d sent: %v", reminder.ID, err)
	}
	return nil
}

func (d *Dispatcher) deliverEmail(reminder *model.Reminder, appointment *model.Appointment) error {
	user, err := d.userRepo.GetByID(reminder.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.Email == nil {
		return fmt.Errorf("user %d has no email address", user.ID)
	}

	patientName := appointment.Title
	if appointment.Patient != nil {
		patientName = appointment.Patient.Name
	}

	return d.emailSvc.SendAppointmentReminder(*user.Email, patientName, appointment.Date, appointment.StartTime)
}

func (d *Dispatcher) deliverPush(reminder *model.Reminder, appointment *model.Appointment) error {
	return d.publisher.PublishAgendaEvent(reminder.UserID, pubsub.EventReminderDue, map[string]interface{}{
		"reminder_id":    reminder.ID,
		"appointment_id": appointment.ID,
		"title":          appointment.Title,
		"date":           appointment.Date,
		"start_time":     appointment.StartTime,
	})
}

func (d *Dispatcher) markFailed(reminderID int64, message string) {
	if err := d.reminderRepo.MarkFailed(reminderID, message); err != nil {
		log.Printf("Failed to mark reminder %d failed: %v", reminderID, err)
	}
}
