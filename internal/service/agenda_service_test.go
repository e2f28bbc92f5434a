package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/repository"
	"github.com/agendahof/agendahof-server/internal/testutil"
)

func testAgendaConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Calendar = config.CalendarConfig{
		WindowStartHour: 7,
		WindowEndHour:   24,
		SlotMinutes:     15,
		UnitHeightPx:    40,
		ScrollLeadInPx:  40,
	}
	cfg.Reminder.OffsetsMinutes = []int{1440, 60}
	cfg.Reminder.RetentionDays = 30
	return cfg
}

func newTestAgendaService(t *testing.T, db *gorm.DB) *AgendaService {
	t.Helper()
	cfg := testAgendaConfig()
	reminderService := NewReminderService(repository.NewReminderRepository(db), nil, cfg)
	return NewAgendaService(
		repository.NewAppointmentRepository(db),
		repository.NewCommitmentRepository(db),
		repository.NewBlockRepository(db),
		reminderService,
		nil,
		cfg,
	)
}

// 2025-03-10 is a Monday.
const monday = "2025-03-10"

func TestAgendaService_DayLayout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newTestAgendaService(t, db)

	user := testutil.TestUser(t, db)
	noon := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

	t.Run("mixes all three kinds", func(t *testing.T) {
		defer testutil.TruncateTables(t, db)
		user := testutil.TestUser(t, db)

		testutil.TestAppointment(t, db, user.ID, monday, "09:00", "10:00")
		testutil.TestCommitment(t, db, user.ID, monday, "14:00", "15:00")
		testutil.TestBlock(t, db, user.ID, "12:00", "13:00", []int{1}) // Mondays

		layout, err := svc.DayLayout(user.ID, monday, noon)
		require.NoError(t, err)
		require.Len(t, layout.Items, 3)

		kinds := make(map[string]bool)
		for _, item := range layout.Items {
			kinds[item.Kind] = true
		}
		assert.True(t, kinds[model.KindAppointment])
		assert.True(t, kinds[model.KindCommitment])
		assert.True(t, kinds[model.KindBlock])

		// sorted by start: appointment 09:00, block 12:00, commitment 14:00
		assert.Equal(t, model.KindAppointment, layout.Items[0].Kind)
		assert.Equal(t, model.KindBlock, layout.Items[1].Kind)
		assert.Equal(t, model.KindCommitment, layout.Items[2].Kind)
	})

	t.Run("block only appears on its weekdays", func(t *testing.T) {
		defer testutil.TruncateTables(t, db)
		user := testutil.TestUser(t, db)

		testutil.TestBlock(t, db, user.ID, "12:00", "13:00", []int{2, 4}) // Tue, Thu

		layout, err := svc.DayLayout(user.ID, monday, noon)
		require.NoError(t, err)
		assert.Empty(t, layout.Items)

		tuesday := "2025-03-11"
		layout, err = svc.DayLayout(user.ID, tuesday, noon)
		require.NoError(t, err)
		require.Len(t, layout.Items, 1)
		assert.Equal(t, model.KindBlock, layout.Items[0].Kind)
	})

	t.Run("inactive block is excluded", func(t *testing.T) {
		defer testutil.TruncateTables(t, db)
		user := testutil.TestUser(t, db)

		testutil.TestBlock(t, db, user.ID, "12:00", "13:00", []int{1}, testutil.WithBlockInactive())

		layout, err := svc.DayLayout(user.ID, monday, noon)
		require.NoError(t, err)
		assert.Empty(t, layout.Items)
	})

	t.Run("cancelled appointments are excluded", func(t *testing.T) {
		defer testutil.TruncateTables(t, db)
		user := testutil.TestUser(t, db)

		testutil.TestAppointment(t, db, user.ID, monday, "09:00", "10:00",
			testutil.WithAppointmentStatus(model.AppointmentCancelled))
		testutil.TestAppointment(t, db, user.ID, monday, "11:00", "12:00")

		layout, err := svc.DayLayout(user.ID, monday, noon)
		require.NoError(t, err)
		require.Len(t, layout.Items, 1)
		assert.Equal(t, "11:00", layout.Items[0].Start.Format("15:04"))
	})

	t.Run("malformed rows are dropped not fatal", func(t *testing.T) {
		defer testutil.TruncateTables(t, db)
		user := testutil.TestUser(t, db)

		testutil.TestAppointment(t, db, user.ID, monday, "9h30", "10h30")
		testutil.TestAppointment(t, db, user.ID, monday, "11:00", "12:00")

		layout, err := svc.DayLayout(user.ID, monday, noon)
		require.NoError(t, err)
		require.Len(t, layout.Items, 1)
		assert.Equal(t, "11:00", layout.Items[0].Start.Format("15:04"))
	})

	t.Run("now marker only on the displayed day", func(t *testing.T) {
		defer testutil.TruncateTables(t, db)
		user := testutil.TestUser(t, db)

		layout, err := svc.DayLayout(user.ID, monday, noon)
		require.NoError(t, err)
		require.NotNil(t, layout.NowMarker)
		assert.Equal(t, 800, layout.NowMarker.TopPx)

		otherDay := time.Date(2025, 3, 12, 12, 0, 0, 0, time.Local)
		layout, err = svc.DayLayout(user.ID, monday, otherDay)
		require.NoError(t, err)
		assert.Nil(t, layout.NowMarker)
	})

	t.Run("now marker hidden outside window", func(t *testing.T) {
		defer testutil.TruncateTables(t, db)
		user := testutil.TestUser(t, db)

		early := time.Date(2025, 3, 10, 6, 30, 0, 0, time.Local)
		layout, err := svc.DayLayout(user.ID, monday, early)
		require.NoError(t, err)
		assert.Nil(t, layout.NowMarker)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := svc.DayLayout(user.ID, "10/03/2025", noon)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})
}

func TestAgendaService_WeekLayout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newTestAgendaService(t, db)

	user := testutil.TestUser(t, db)
	noon := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

	testutil.TestAppointment(t, db, user.ID, monday, "09:00", "10:00")
	testutil.TestAppointment(t, db, user.ID, "2025-03-13", "14:00", "15:00")
	testutil.TestBlock(t, db, user.ID, "12:00", "13:00", []int{1, 2, 3, 4, 5}) // weekdays

	week, err := svc.WeekLayout(user.ID, monday, noon)
	require.NoError(t, err)
	require.Len(t, week.Days, 7)

	assert.Equal(t, monday, week.Days[0].Date)
	assert.Equal(t, "2025-03-16", week.Days[6].Date)

	// Monday: appointment + block
	assert.Len(t, week.Days[0].Items, 2)
	// Thursday: appointment + block
	assert.Len(t, week.Days[3].Items, 2)
	// Saturday and Sunday: block skips the weekend
	assert.Empty(t, week.Days[5].Items)
	assert.Empty(t, week.Days[6].Items)
}

func TestAgendaService_Appointments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newTestAgendaService(t, db)

	user := testutil.TestUser(t, db)

	t.Run("create schedules reminders", func(t *testing.T) {
		futureDate := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		appointment, err := svc.CreateAppointment(user.ID, &dto.CreateAppointmentRequest{
			Title:     "Botox session",
			Date:      futureDate,
			StartTime: "10:00",
			EndTime:   "11:00",
		})
		require.NoError(t, err)
		assert.NotZero(t, appointment.ID)
		assert.Equal(t, model.AppointmentScheduled, appointment.Status)

		var reminders []model.Reminder
		require.NoError(t, db.Where("appointment_id = ?", appointment.ID).Find(&reminders).Error)
		// two offsets, two channels each
		assert.Len(t, reminders, 4)
	})

	t.Run("cancel drops pending reminders", func(t *testing.T) {
		futureDate := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		appointment, err := svc.CreateAppointment(user.ID, &dto.CreateAppointmentRequest{
			Title:     "Filler session",
			Date:      futureDate,
			StartTime: "14:00",
			EndTime:   "15:00",
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteAppointment(user.ID, appointment.ID))

		var count int64
		require.NoError(t, db.Model(&model.Reminder{}).
			Where("appointment_id = ? AND status = ?", appointment.ID, model.ReminderPending).
			Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("reschedule replaces reminders", func(t *testing.T) {
		futureDate := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		appointment, err := svc.CreateAppointment(user.ID, &dto.CreateAppointmentRequest{
			Title:     "Checkup",
			Date:      futureDate,
			StartTime: "09:00",
			EndTime:   "09:30",
		})
		require.NoError(t, err)

		newStart := "16:00"
		newEnd := "16:30"
		_, err = svc.UpdateAppointment(user.ID, appointment.ID, &dto.UpdateAppointmentRequest{
			StartTime: &newStart,
			EndTime:   &newEnd,
		})
		require.NoError(t, err)

		var reminders []model.Reminder
		require.NoError(t, db.Where("appointment_id = ? AND status = ?",
			appointment.ID, model.ReminderPending).Find(&reminders).Error)
		require.Len(t, reminders, 4)
		for _, r := range reminders {
			// offsets of 24h and 1h before the new 16:00 start
			assert.Contains(t, []string{"16:00", "15:00"}, r.RemindAt.Format("15:04"))
		}
	})

	t.Run("invalid times rejected", func(t *testing.T) {
		_, err := svc.CreateAppointment(user.ID, &dto.CreateAppointmentRequest{
			Title:     "Broken",
			Date:      "2025-13-40",
			StartTime: "10:00",
			EndTime:   "11:00",
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("missing appointment", func(t *testing.T) {
		_, err := svc.GetAppointment(user.ID, 999999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("other user's appointment is invisible", func(t *testing.T) {
		other := testutil.TestUser(t, db)
		appointment := testutil.TestAppointment(t, db, other.ID, monday, "09:00", "10:00")

		_, err := svc.GetAppointment(user.ID, appointment.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAgendaService_Blocks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newTestAgendaService(t, db)

	user := testutil.TestUser(t, db)

	t.Run("create and toggle", func(t *testing.T) {
		block, err := svc.CreateBlock(user.ID, &dto.CreateBlockRequest{
			Title:      "Lunch",
			StartTime:  "12:00",
			EndTime:    "13:00",
			DaysOfWeek: []int{1, 2, 3, 4, 5},
		})
		require.NoError(t, err)
		assert.True(t, block.Active)

		inactive := false
		updated, err := svc.UpdateBlock(user.ID, block.ID, &dto.UpdateBlockRequest{Active: &inactive})
		require.NoError(t, err)
		assert.False(t, updated.Active)
	})

	t.Run("invalid times rejected", func(t *testing.T) {
		_, err := svc.CreateBlock(user.ID, &dto.CreateBlockRequest{
			Title:      "Broken",
			StartTime:  "noon",
			EndTime:    "13:00",
			DaysOfWeek: []int{1},
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})
}
