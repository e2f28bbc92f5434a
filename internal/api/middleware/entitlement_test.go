package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/pkg/response"
	"github.com/agendahof/agendahof-server/internal/repository"
	"github.com/agendahof/agendahof-server/internal/service"
	"github.com/agendahof/agendahof-server/internal/testutil"
)

func newEntitlementRouter(db *gorm.DB, userID int64) *gin.Engine {
	cfg := &config.Config{}
	cfg.Billing.GraceDays = 5
	cfg.Billing.PremiumThreshold = 99
	cfg.Billing.ProThreshold = 79
	cfg.Trial.Days = 7

	entitlementService := service.NewEntitlementService(
		repository.NewUserRepository(db),
		repository.NewSubscriptionRepository(db),
		repository.NewCourtesyRepository(db),
		cfg,
	)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	})
	router.Use(RequireActiveAccess(entitlementService))
	router.POST("/test", func(c *gin.Context) {
		response.Success(c, gin.H{"written": true})
	})
	return router
}

func TestRequireActiveAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	t.Run("trial user may write", func(t *testing.T) {
		user := testutil.TestUser(t, db)
		router := newEntitlementRouter(db, user.ID)

		req := httptest.NewRequest("POST", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("lapsed user is blocked", func(t *testing.T) {
		expired := time.Now().Add(-48 * time.Hour)
		user := testutil.TestUser(t, db, testutil.WithTrialEnd(expired))
		router := newEntitlementRouter(db, user.ID)

		req := httptest.NewRequest("POST", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		resp := parseResponse(t, w)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, response.CodeAccessExpired, resp.Code)
	})

	t.Run("lapsed user with subscription may write", func(t *testing.T) {
		expired := time.Now().Add(-48 * time.Hour)
		user := testutil.TestUser(t, db, testutil.WithTrialEnd(expired))
		testutil.TestSubscription(t, db, user.ID)
		router := newEntitlementRouter(db, user.ID)

		req := httptest.NewRequest("POST", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("unauthenticated request is refused", func(t *testing.T) {
		router := newEntitlementRouter(db, 0)

		req := httptest.NewRequest("POST", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeAuthFailed, resp.Code)
	})
}
