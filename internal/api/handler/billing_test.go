package handler

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/api/middleware"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/pkg/response"
	"github.com/agendahof/agendahof-server/internal/repository"
	"github.com/agendahof/agendahof-server/internal/service"
	"github.com/agendahof/agendahof-server/internal/testutil"
)

func TestBillingHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	cfg := &config.Config{}
	cfg.Billing.GraceDays = 5
	cfg.Billing.PremiumThreshold = 99
	cfg.Billing.ProThreshold = 79
	cfg.Billing.Plans = []config.PlanConfig{
		{ID: "plan_premium", Name: "Premium", Tier: "premium", Amount: 99, Currency: "BRL"},
	}
	cfg.Trial.Days = 7

	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	billingService := service.NewBillingService(subRepo, userRepo, cfg)
	entitlementService := service.NewEntitlementService(
		userRepo, subRepo, repository.NewCourtesyRepository(db), cfg)
	handler := NewBillingHandler(billingService, entitlementService)

	user := testutil.TestUser(t, db)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user.ID)
		c.Next()
	})
	router.GET("/plans", handler.Plans)
	router.GET("/billing/entitlement", handler.Entitlement)
	router.POST("/billing/checkout", handler.Checkout)

	t.Run("plans", func(t *testing.T) {
		w := performRequest(router, "GET", "/plans", nil)

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeSuccess, resp.Code)

		plans, ok := resp.Data.([]interface{})
		require.True(t, ok)
		assert.Len(t, plans, 1)
	})

	t.Run("entitlement for trial user", func(t *testing.T) {
		w := performRequest(router, "GET", "/billing/entitlement", nil)

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeSuccess, resp.Code)

		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, true, data["is_active"])
		assert.Equal(t, true, data["is_on_trial"])
	})

	t.Run("checkout with unknown plan", func(t *testing.T) {
		w := performRequest(router, "POST", "/billing/checkout", dto.CheckoutRequest{
			PlanID: "plan_enterprise",
		})

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeParamError, resp.Code)
	})

	t.Run("checkout without billing configured", func(t *testing.T) {
		w := performRequest(router, "POST", "/billing/checkout", dto.CheckoutRequest{
			PlanID: "plan_premium",
		})

		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeServerError, resp.Code)
	})
}
