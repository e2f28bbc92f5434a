package cron

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/pkg/queue"
	"github.com/agendahof/agendahof-server/internal/repository"
	"github.com/agendahof/agendahof-server/internal/service"
	"github.com/agendahof/agendahof-server/internal/testutil"
)

func TestCron_EnqueueAndPurge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := &config.Config{}
	cfg.Reminder.OffsetsMinutes = []int{1440, 60}
	cfg.Reminder.RetentionDays = 30

	dispatchQ := queue.NewQueue(client, "test:reminders")
	reminderService := service.NewReminderService(
		repository.NewReminderRepository(db), dispatchQ, cfg)
	svc := NewService(
		reminderService,
		repository.NewUserRepository(db),
		repository.NewCourtesyRepository(db),
		nil,
	)

	user := testutil.TestUser(t, db)
	appointment := testutil.TestAppointment(t, db, user.ID, "2025-03-10", "10:00", "11:00")

	now := time.Now()
	due := testutil.TestReminder(t, db, user.ID, appointment.ID, now.Add(-time.Minute))
	stale := testutil.TestReminder(t, db, user.ID, appointment.ID, now.AddDate(0, 0, -60),
		testutil.WithReminderStatus(model.ReminderSent))
	expired := now.Add(-time.Hour)
	testutil.TestCourtesy(t, db, user.ID, &expired)

	t.Run("scan moves due reminders to the queue", func(t *testing.T) {
		svc.enqueueDueReminders()

		length, err := dispatchQ.Length(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, 1, length)

		var reloaded model.Reminder
		require.NoError(t, db.First(&reloaded, due.ID).Error)
		assert.Equal(t, model.ReminderQueued, reloaded.Status)
	})

	t.Run("daily tasks purge stale rows", func(t *testing.T) {
		svc.RunNow()

		assert.Error(t, db.First(&model.Reminder{}, stale.ID).Error)

		var grants int64
		require.NoError(t, db.Model(&model.CourtesyAccess{}).
			Where("user_id = ?", user.ID).Count(&grants).Error)
		assert.Zero(t, grants)
	})
}

func TestCron_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	cfg := &config.Config{}
	cfg.Reminder.OffsetsMinutes = []int{60}
	cfg.Reminder.RetentionDays = 30

	reminderService := service.NewReminderService(
		repository.NewReminderRepository(db), nil, cfg)
	svc := NewService(
		reminderService,
		repository.NewUserRepository(db),
		repository.NewCourtesyRepository(db),
		nil,
	)

	svc.Start()
	svc.Stop()
}
