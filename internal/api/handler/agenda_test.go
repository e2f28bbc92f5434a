package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/api/middleware"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/pkg/response"
	"github.com/agendahof/agendahof-server/internal/repository"
	"github.com/agendahof/agendahof-server/internal/service"
	"github.com/agendahof/agendahof-server/internal/testutil"
)

func agendaTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Calendar = config.CalendarConfig{
		WindowStartHour: 7,
		WindowEndHour:   24,
		SlotMinutes:     15,
		UnitHeightPx:    40,
		ScrollLeadInPx:  40,
	}
	cfg.Reminder.OffsetsMinutes = []int{1440, 60}
	return cfg
}

func setupAgendaRouter(t *testing.T, db *gorm.DB, userID int64) *gin.Engine {
	t.Helper()

	cfg := agendaTestConfig()
	reminderService := service.NewReminderService(repository.NewReminderRepository(db), nil, cfg)
	agendaService := service.NewAgendaService(
		repository.NewAppointmentRepository(db),
		repository.NewCommitmentRepository(db),
		repository.NewBlockRepository(db),
		reminderService,
		nil,
		cfg,
	)
	handler := NewAgendaHandler(agendaService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	router.GET("/agenda/day", handler.Day)
	router.GET("/agenda/week", handler.Week)
	router.POST("/appointments", handler.CreateAppointment)
	router.GET("/appointments/:id", handler.GetAppointment)
	router.DELETE("/appointments/:id", handler.DeleteAppointment)
	return router
}

func TestAgendaHandler_Day(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	router := setupAgendaRouter(t, db, user.ID)

	testutil.TestAppointment(t, db, user.ID, "2025-03-10", "09:00", "10:00")

	t.Run("returns placed items", func(t *testing.T) {
		w := performRequest(router, "GET", "/agenda/day?date=2025-03-10", nil)

		resp := parseResponse(t, w)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, response.CodeSuccess, resp.Code)

		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "2025-03-10", data["date"])
		items, ok := data["items"].([]interface{})
		require.True(t, ok)
		assert.Len(t, items, 1)
	})

	t.Run("missing date", func(t *testing.T) {
		w := performRequest(router, "GET", "/agenda/day", nil)

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeParamError, resp.Code)
	})

	t.Run("malformed date", func(t *testing.T) {
		w := performRequest(router, "GET", "/agenda/day?date=10-03-2025", nil)

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeParamError, resp.Code)
	})
}

func TestAgendaHandler_Week(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	router := setupAgendaRouter(t, db, user.ID)

	w := performRequest(router, "GET", "/agenda/week?start_date=2025-03-10", nil)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	days, ok := data["days"].([]interface{})
	require.True(t, ok)
	assert.Len(t, days, 7)
}

func TestAgendaHandler_Appointments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	router := setupAgendaRouter(t, db, user.ID)

	t.Run("create", func(t *testing.T) {
		futureDate := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		w := performRequest(router, "POST", "/appointments", dto.CreateAppointmentRequest{
			Title:     "Botox session",
			Date:      futureDate,
			StartTime: "10:00",
			EndTime:   "11:00",
		})

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("create with bad time", func(t *testing.T) {
		w := performRequest(router, "POST", "/appointments", dto.CreateAppointmentRequest{
			Title:     "Broken",
			Date:      "2025-03-10",
			StartTime: "25:99",
			EndTime:   "11:00",
		})

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeParamError, resp.Code)
	})

	t.Run("get missing", func(t *testing.T) {
		w := performRequest(router, "GET", "/appointments/999999", nil)

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeResourceNotFound, resp.Code)
	})

	t.Run("delete", func(t *testing.T) {
		appointment := testutil.TestAppointment(t, db, user.ID, "2025-03-10", "14:00", "15:00")

		w := performRequest(router, "DELETE", fmt.Sprintf("/appointments/%d", appointment.ID), nil)

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := performRequest(router, "DELETE", "/appointments/notanumber", nil)

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeParamError, resp.Code)
	})
}
