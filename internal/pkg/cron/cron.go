package cron

import (
	"context"
	"log"
	"time"

	"github.com/agendahof/agendahof-server/internal/pkg/email"
	"github.com/agendahof/agendahof-server/internal/repository"
	"github.com/agendahof/agendahof-server/internal/service"
)

type Service struct {
	reminderService *service.ReminderService
	userRepo        *repository.UserRepository
	courtesyRepo    *repository.CourtesyRepository
	emailSvc        *email.Service
	stopChan        chan struct{}
}

func NewService(
	reminderService *service.ReminderService,
	userRepo *repository.UserRepository,
	courtesyRepo *repository.CourtesyRepository,
	emailSvc *email.Service,
) *Service {
	return &Service{
		reminderService: reminderService,
		userRepo:        userRepo,
		courtesyRepo:    courtesyRepo,
		emailSvc:        emailSvc,
		stopChan:        make(chan struct{}),
	}
}

// Start launches the background loops.
func (s *Service) Start() {
	go s.runReminderScan()
	go s.runDailyTasks()
	log.Println("Cron service started (reminder scan + daily tasks)")
}

// Stop terminates the background loops.
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runReminderScan moves due reminders onto the dispatch queue once a minute.
func (s *Service) runReminderScan() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.enqueueDueReminders()
		}
	}
}

func (s *Service) enqueueDueReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.reminderService.EnqueueDue(ctx, time.Now())
	if err != nil {
		log.Printf("Reminder scan failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Reminder scan: %d reminders queued", n)
	}
}

// runDailyTasks fires once a day shortly after midnight UTC.
func (s *Service) runDailyTasks() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.sendTrialExpiryNotices()
			s.purgeStaleRecords()
			timer.Reset(24 * time.Hour)
		}
	}
}

// sendTrialExpiryNotices warns users whose trial ends within the next three
// days. One notice per run; re-notification is bounded by the window moving
// forward daily.
func (s *Service) sendTrialExpiryNotices() {
	if s.emailSvc == nil {
		return
	}
	now := time.Now()
	users, err := s.userRepo.ListTrialEndingBetween(now, now.Add(3*24*time.Hour))
	if err != nil {
		log.Printf("Trial expiry scan failed: %v", err)
		return
	}

	sent := 0
	for i := range users {
		u := &users[i]
		if u.Email == nil || u.TrialEndsAt == nil {
			continue
		}
		daysLeft := int(time.Until(*u.TrialEndsAt).Hours()/24) + 1
		if err := s.emailSvc.SendTrialExpiryNotice(*u.Email, u.Name, daysLeft); err != nil {
			log.Printf("Failed to send trial notice to user %d: %v", u.ID, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Printf("Trial expiry notices sent: %d", sent)
	}
}

// purgeStaleRecords drops delivered reminders past retention and expired
// courtesy grants.
func (s *Service) purgeStaleRecords() {
	now := time.Now()

	reminders, err := s.reminderService.PurgeDelivered(now)
	if err != nil {
		log.Printf("Reminder purge failed: %v", err)
	}

	grants, err := s.courtesyRepo.DeleteExpiredBefore(now)
	if err != nil {
		log.Printf("Courtesy purge failed: %v", err)
	}

	if reminders > 0 || grants > 0 {
		log.Printf("Purge summary: reminders=%d, courtesy_grants=%d", reminders, grants)
	}
}

// RunNow triggers the daily tasks immediately instead of waiting for
// midnight.
func (s *Service) RunNow() {
	s.sendTrialExpiryNotices()
	s.purgeStaleRecords()
}
