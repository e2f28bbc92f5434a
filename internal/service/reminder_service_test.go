package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/pkg/queue"
	"github.com/agendahof/agendahof-server/internal/repository"
	"github.com/agendahof/agendahof-server/internal/testutil"
)

func newTestReminderService(t *testing.T, db *gorm.DB) (*ReminderService, *queue.Queue) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	q := queue.NewQueue(client, "test:reminders")
	svc := NewReminderService(repository.NewReminderRepository(db), q, testAgendaConfig())
	return svc, q
}

func TestReminderService_ScheduleForAppointment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc, _ := newTestReminderService(t, db)

	user := testutil.TestUser(t, db)

	t.Run("one row per offset per channel", func(t *testing.T) {
		start := time.Now().Add(48 * time.Hour)
		appointment := testutil.TestAppointment(t, db, user.ID,
			start.Format("2006-01-02"), "10:00", "11:00")

		require.NoError(t, svc.ScheduleForAppointment(appointment, start))

		var reminders []model.Reminder
		require.NoError(t, db.Where("appointment_id = ?", appointment.ID).
			Order("remind_at, channel").Find(&reminders).Error)
		require.Len(t, reminders, 4)

		// 24h offset first, then 1h
		assert.WithinDuration(t, start.Add(-24*time.Hour), reminders[0].RemindAt, time.Second)
		assert.WithinDuration(t, start.Add(-time.Hour), reminders[2].RemindAt, time.Second)
		for _, r := range reminders {
			assert.Equal(t, model.ReminderPending, r.Status)
		}
	})

	t.Run("offsets in the past are skipped", func(t *testing.T) {
		// 30 minutes away: both the 24h and the 1h offset already passed
		start := time.Now().Add(30 * time.Minute)
		appointment := testutil.TestAppointment(t, db, user.ID,
			start.Format("2006-01-02"), "10:00", "11:00")

		require.NoError(t, svc.ScheduleForAppointment(appointment, start))

		var count int64
		require.NoError(t, db.Model(&model.Reminder{}).
			Where("appointment_id = ?", appointment.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("near appointment keeps only the short offset", func(t *testing.T) {
		start := time.Now().Add(3 * time.Hour)
		appointment := testutil.TestAppointment(t, db, user.ID,
			start.Format("2006-01-02"), "10:00", "11:00")

		require.NoError(t, svc.ScheduleForAppointment(appointment, start))

		var reminders []model.Reminder
		require.NoError(t, db.Where("appointment_id = ?", appointment.ID).
			Find(&reminders).Error)
		require.Len(t, reminders, 2)
		for _, r := range reminders {
			assert.WithinDuration(t, start.Add(-time.Hour), r.RemindAt, time.Second)
		}
	})
}

func TestReminderService_EnqueueDue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc, q := newTestReminderService(t, db)
	ctx := context.Background()

	user := testutil.TestUser(t, db)
	appointment := testutil.TestAppointment(t, db, user.ID, "2025-03-10", "10:00", "11:00")

	now := time.Now()
	due := testutil.TestReminder(t, db, user.ID, appointment.ID, now.Add(-time.Minute))
	notYet := testutil.TestReminder(t, db, user.ID, appointment.ID, now.Add(time.Hour))

	enqueued, err := svc.EnqueueDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, enqueued)

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, length)

	msg, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, due.ID, msg.ReminderID)
	assert.Equal(t, appointment.ID, msg.AppointmentID)

	var reloaded model.Reminder
	require.NoError(t, db.First(&reloaded, due.ID).Error)
	assert.Equal(t, model.ReminderQueued, reloaded.Status)

	var untouched model.Reminder
	require.NoError(t, db.First(&untouched, notYet.ID).Error)
	assert.Equal(t, model.ReminderPending, untouched.Status)

	// queued rows are not picked up again
	enqueued, err = svc.EnqueueDue(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, enqueued)
}

func TestReminderService_PurgeDelivered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc, _ := newTestReminderService(t, db)

	user := testutil.TestUser(t, db)
	appointment := testutil.TestAppointment(t, db, user.ID, "2025-03-10", "10:00", "11:00")

	now := time.Now()
	old := now.AddDate(0, 0, -60)

	stale := testutil.TestReminder(t, db, user.ID, appointment.ID, old,
		testutil.WithReminderStatus(model.ReminderSent))
	recent := testutil.TestReminder(t, db, user.ID, appointment.ID, now.Add(-time.Hour),
		testutil.WithReminderStatus(model.ReminderSent))
	stalePending := testutil.TestReminder(t, db, user.ID, appointment.ID, old)
	staleQueued := testutil.TestReminder(t, db, user.ID, appointment.ID, old,
		testutil.WithReminderStatus(model.ReminderQueued))

	purged, err := svc.PurgeDelivered(now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	var count int64
	require.NoError(t, db.Model(&model.Reminder{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	assert.Error(t, db.First(&model.Reminder{}, stale.ID).Error)
	assert.NoError(t, db.First(&model.Reminder{}, recent.ID).Error)
	assert.NoError(t, db.First(&model.Reminder{}, stalePending.ID).Error)

	// a queued row may still be sitting in the dispatch queue
	assert.NoError(t, db.First(&model.Reminder{}, staleQueued.ID).Error)
}
