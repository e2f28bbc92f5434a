package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/internal/model"
)

// TestUser creates a verified user with a running trial.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	trialEnd := time.Now().Add(7 * 24 * time.Hour)
	user := &model.User{
		Name:          fmt.Sprintf("Dr. Test %d", time.Now().UnixNano()%10000),
		Email:         &email,
		PasswordHash:  &passwordHash,
		TrialEndsAt:   &trialEnd,
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail sets the email.
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithTrialEnd sets the explicit trial end.
func WithTrialEnd(at time.Time) func(*model.User) {
	return func(u *model.User) {
		u.TrialEndsAt = &at
	}
}

// WithoutTrialEnd removes the explicit trial marker so resolution falls back
// to created_at arithmetic.
func WithoutTrialEnd() func(*model.User) {
	return func(u *model.User) {
		u.TrialEndsAt = nil
	}
}

// TestPatient creates a patient for the user.
func TestPatient(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Patient)) *model.Patient {
	t.Helper()

	patient := &model.Patient{
		UserID: userID,
		Name:   fmt.Sprintf("Patient %d", time.Now().UnixNano()%10000),
		Phone:  fmt.Sprintf("+55119%08d", time.Now().UnixNano()%100000000),
		Source: "manual",
	}

	for _, opt := range opts {
		opt(patient)
	}

	if err := db.Create(patient).Error; err != nil {
		t.Fatalf("Failed to create test patient: %v", err)
	}

	return patient
}

// WithPatientName sets the patient name.
func WithPatientName(name string) func(*model.Patient) {
	return func(p *model.Patient) {
		p.Name = name
	}
}

// WithPatientPhone sets the patient phone.
func WithPatientPhone(phone string) func(*model.Patient) {
	return func(p *model.Patient) {
		p.Phone = phone
	}
}

// TestAppointment creates a scheduled appointment on the given date and times.
func TestAppointment(t *testing.T, db *gorm.DB, userID int64, date, start, end string, opts ...func(*model.Appointment)) *model.Appointment {
	t.Helper()

	appointment := &model.Appointment{
		UserID:    userID,
		Title:     "Consultation",
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    model.AppointmentScheduled,
	}

	for _, opt := range opts {
		opt(appointment)
	}

	if err := db.Create(appointment).Error; err != nil {
		t.Fatalf("Failed to create test appointment: %v", err)
	}

	return appointment
}

// WithAppointmentStatus sets the status.
func WithAppointmentStatus(status string) func(*model.Appointment) {
	return func(a *model.Appointment) {
		a.Status = status
	}
}

// WithAppointmentPatient links a patient.
func WithAppointmentPatient(patientID int64) func(*model.Appointment) {
	return func(a *model.Appointment) {
		a.PatientID = &patientID
	}
}

// TestCommitment creates a personal commitment.
func TestCommitment(t *testing.T, db *gorm.DB, userID int64, date, start, end string) *model.Commitment {
	t.Helper()

	commitment := &model.Commitment{
		UserID:    userID,
		Title:     "Dentistry course",
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}

	if err := db.Create(commitment).Error; err != nil {
		t.Fatalf("Failed to create test commitment: %v", err)
	}

	return commitment
}

// TestBlock creates an active weekly block.
func TestBlock(t *testing.T, db *gorm.DB, userID int64, start, end string, days []int, opts ...func(*model.RecurringBlock)) *model.RecurringBlock {
	t.Helper()

	block := &model.RecurringBlock{
		UserID:     userID,
		Title:      "Lunch",
		StartTime:  start,
		EndTime:    end,
		DaysOfWeek: model.IntArray(days),
		Active:     true,
	}

	for _, opt := range opts {
		opt(block)
	}

	if err := db.Create(block).Error; err != nil {
		t.Fatalf("Failed to create test block: %v", err)
	}

	return block
}

// WithBlockInactive pauses the block.
func WithBlockInactive() func(*model.RecurringBlock) {
	return func(b *model.RecurringBlock) {
		b.Active = false
	}
}

// TestSubscription creates an active subscription row.
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	next := time.Now().AddDate(0, 1, 0)
	sub := &model.Subscription{
		UserID:          userID,
		PlanTier:        "premium",
		PlanAmount:      99,
		NextBillingDate: &next,
		Status:          model.SubscriptionActive,
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithPlan sets tier and amount.
func WithPlan(tier string, amount float64) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.PlanTier = tier
		s.PlanAmount = amount
	}
}

// WithNextBilling sets the billing horizon.
func WithNextBilling(at time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.NextBillingDate = &at
	}
}

// WithDiscount sets the discount percentage.
func WithDiscount(pct float64) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.DiscountPercentage = &pct
	}
}

// WithSubscriptionStatus sets the status.
func WithSubscriptionStatus(status string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = status
	}
}

// TestCourtesy creates a courtesy grant, permanent unless an expiry is given.
func TestCourtesy(t *testing.T, db *gorm.DB, userID int64, expiresAt *time.Time) *model.CourtesyAccess {
	t.Helper()

	grant := &model.CourtesyAccess{
		UserID:    userID,
		Reason:    "early supporter",
		ExpiresAt: expiresAt,
	}

	if err := db.Create(grant).Error; err != nil {
		t.Fatalf("Failed to create test courtesy grant: %v", err)
	}

	return grant
}

// TestReminder creates a pending reminder.
func TestReminder(t *testing.T, db *gorm.DB, userID, appointmentID int64, remindAt time.Time, opts ...func(*model.Reminder)) *model.Reminder {
	t.Helper()

	reminder := &model.Reminder{
		UserID:        userID,
		AppointmentID: appointmentID,
		Channel:       model.ReminderChannelEmail,
		RemindAt:      remindAt,
		Status:        model.ReminderPending,
	}

	for _, opt := range opts {
		opt(reminder)
	}

	if err := db.Create(reminder).Error; err != nil {
		t.Fatalf("Failed to create test reminder: %v", err)
	}

	return reminder
}

// WithReminderStatus sets the status.
func WithReminderStatus(status string) func(*model.Reminder) {
	return func(r *model.Reminder) {
		r.Status = status
	}
}

// WithReminderChannel sets the channel.
func WithReminderChannel(channel string) func(*model.Reminder) {
	return func(r *model.Reminder) {
		r.Channel = channel
	}
}
