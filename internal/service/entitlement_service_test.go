package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/repository"
	"github.com/agendahof/agendahof-server/internal/testutil"
)

func testBilling() *config.BillingConfig {
	return &config.BillingConfig{
		GraceDays:        5,
		PremiumThreshold: 99,
		ProThreshold:     79,
	}
}

func futureTime(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func TestResolveEntitlement_Subscription(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, -6, 0) // trial long over

	t.Run("active subscription wins", func(t *testing.T) {
		next := now.AddDate(0, 0, 20)
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Subscription: &model.Subscription{
				Status:          model.SubscriptionActive,
				PlanTier:        "premium",
				PlanAmount:      99,
				NextBillingDate: &next,
			},
		}, testBilling(), 7)

		assert.True(t, result.IsActive)
		assert.True(t, result.HasPaidSubscription)
		assert.False(t, result.IsOnTrial)
		assert.False(t, result.IsCourtesy)
		assert.Equal(t, PlanLabelPremium, result.PlanLabel)
	})

	t.Run("explicit tier beats amount thresholds", func(t *testing.T) {
		next := now.AddDate(0, 0, 20)
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Subscription: &model.Subscription{
				Status:          model.SubscriptionActive,
				PlanTier:        "basic",
				PlanAmount:      99, // amount alone would say premium
				NextBillingDate: &next,
			},
		}, testBilling(), 7)

		assert.Equal(t, PlanLabelBasic, result.PlanLabel)
	})

	t.Run("legacy rows classify by amount", func(t *testing.T) {
		next := now.AddDate(0, 0, 20)
		cases := []struct {
			amount float64
			label  string
		}{
			{99, PlanLabelPremium},
			{120, PlanLabelPremium},
			{79, PlanLabelPro},
			{80, PlanLabelPro},
			{50, PlanLabelBasic},
		}
		for _, tc := range cases {
			result := ResolveEntitlement(EntitlementInput{
				Now:              now,
				AccountCreatedAt: created,
				Subscription: &model.Subscription{
					Status:          model.SubscriptionActive,
					PlanAmount:      tc.amount,
					NextBillingDate: &next,
				},
			}, testBilling(), 7)
			assert.Equal(t, tc.label, result.PlanLabel, "amount %.0f", tc.amount)
		}
	})

	t.Run("full discount is courtesy not paid", func(t *testing.T) {
		discount := 100.0
		next := now.AddDate(0, 0, 20)
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Subscription: &model.Subscription{
				Status:             model.SubscriptionActive,
				PlanTier:           "premium",
				PlanAmount:         99,
				DiscountPercentage: &discount,
				NextBillingDate:    &next,
			},
		}, testBilling(), 7)

		assert.True(t, result.IsActive)
		assert.True(t, result.IsCourtesy)
		assert.False(t, result.HasPaidSubscription)
		assert.Equal(t, PlanLabelCourtesy, result.PlanLabel)
	})

	t.Run("partial discount stays paid", func(t *testing.T) {
		discount := 50.0
		next := now.AddDate(0, 0, 20)
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Subscription: &model.Subscription{
				Status:             model.SubscriptionActive,
				PlanTier:           "pro",
				PlanAmount:         79,
				DiscountPercentage: &discount,
				NextBillingDate:    &next,
			},
		}, testBilling(), 7)

		assert.True(t, result.HasPaidSubscription)
		assert.Equal(t, PlanLabelPro, result.PlanLabel)
	})

	t.Run("missed payment within grace stays active", func(t *testing.T) {
		next := now.AddDate(0, 0, -4) // 4 days overdue, grace is 5
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Subscription: &model.Subscription{
				Status:          model.SubscriptionActive,
				PlanTier:        "premium",
				PlanAmount:      99,
				NextBillingDate: &next,
			},
		}, testBilling(), 7)

		assert.True(t, result.IsActive)
		assert.True(t, result.HasPaidSubscription)
	})

	t.Run("missed payment past grace falls through", func(t *testing.T) {
		next := now.AddDate(0, 0, -6) // 6 days overdue
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Subscription: &model.Subscription{
				Status:          model.SubscriptionActive,
				PlanTier:        "premium",
				PlanAmount:      99,
				NextBillingDate: &next,
			},
		}, testBilling(), 7)

		// trial is long over and no courtesy exists, nothing is left
		assert.False(t, result.IsActive)
		assert.False(t, result.HasPaidSubscription)
		assert.Empty(t, result.PlanLabel)
	})

	t.Run("lapsed subscription can fall back to courtesy", func(t *testing.T) {
		next := now.AddDate(0, 0, -10)
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Subscription: &model.Subscription{
				Status:          model.SubscriptionActive,
				PlanTier:        "premium",
				PlanAmount:      99,
				NextBillingDate: &next,
			},
			Courtesy: &model.CourtesyAccess{UserID: 1},
		}, testBilling(), 7)

		assert.True(t, result.IsActive)
		assert.True(t, result.IsCourtesy)
	})

	t.Run("cancelled subscription is ignored", func(t *testing.T) {
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Subscription: &model.Subscription{
				Status:     model.SubscriptionCancelled,
				PlanTier:   "premium",
				PlanAmount: 99,
			},
		}, testBilling(), 7)

		assert.False(t, result.IsActive)
	})
}

func TestResolveEntitlement_Trial(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("inside default window", func(t *testing.T) {
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: now.AddDate(0, 0, -3),
		}, testBilling(), 7)

		assert.True(t, result.IsActive)
		assert.True(t, result.IsOnTrial)
		assert.Equal(t, 4, result.TrialDaysLeft)
		assert.Equal(t, PlanLabelTrial, result.PlanLabel)
	})

	t.Run("explicit trial end overrides created_at arithmetic", func(t *testing.T) {
		trialEnd := now.AddDate(0, 0, 10)
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: now.AddDate(0, 0, -30), // would be long over
			TrialEndsAt:      &trialEnd,
		}, testBilling(), 7)

		assert.True(t, result.IsOnTrial)
		assert.Equal(t, 10, result.TrialDaysLeft)
	})

	t.Run("partial day rounds up", func(t *testing.T) {
		trialEnd := now.Add(36 * time.Hour)
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: now.AddDate(0, 0, -1),
			TrialEndsAt:      &trialEnd,
		}, testBilling(), 7)

		assert.Equal(t, 2, result.TrialDaysLeft)
	})

	t.Run("exact expiry instant still counts", func(t *testing.T) {
		trialEnd := now
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: now.AddDate(0, 0, -7),
			TrialEndsAt:      &trialEnd,
		}, testBilling(), 7)

		assert.True(t, result.IsOnTrial)
		assert.Equal(t, 0, result.TrialDaysLeft)
	})

	t.Run("expired trial", func(t *testing.T) {
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: now.AddDate(0, 0, -8),
		}, testBilling(), 7)

		assert.False(t, result.IsActive)
		assert.False(t, result.IsOnTrial)
	})
}

func TestResolveEntitlement_Courtesy(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, -6, 0)

	t.Run("permanent grant", func(t *testing.T) {
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Courtesy:         &model.CourtesyAccess{UserID: 1},
		}, testBilling(), 7)

		assert.True(t, result.IsActive)
		assert.True(t, result.IsCourtesy)
		assert.Equal(t, PlanLabelCourtesy, result.PlanLabel)
	})

	t.Run("future expiry", func(t *testing.T) {
		expires := now.AddDate(0, 1, 0)
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Courtesy:         &model.CourtesyAccess{UserID: 1, ExpiresAt: &expires},
		}, testBilling(), 7)

		assert.True(t, result.IsCourtesy)
	})

	t.Run("expired grant", func(t *testing.T) {
		expires := now.AddDate(0, -1, 0)
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
			Courtesy:         &model.CourtesyAccess{UserID: 1, ExpiresAt: &expires},
		}, testBilling(), 7)

		assert.False(t, result.IsActive)
		assert.False(t, result.IsCourtesy)
	})

	t.Run("nothing at all", func(t *testing.T) {
		result := ResolveEntitlement(EntitlementInput{
			Now:              now,
			AccountCreatedAt: created,
		}, testBilling(), 7)

		assert.False(t, result.IsActive)
		assert.Empty(t, result.PlanLabel)
	})
}

func TestEntitlementService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	cfg := &config.Config{}
	cfg.Billing = *testBilling()
	cfg.Trial.Days = 7

	svc := NewEntitlementService(
		repository.NewUserRepository(db),
		repository.NewSubscriptionRepository(db),
		repository.NewCourtesyRepository(db),
		cfg,
	)

	t.Run("fresh account is on trial", func(t *testing.T) {
		user := testutil.TestUser(t, db)

		result, err := svc.GetEntitlement(user.ID)
		require.NoError(t, err)
		assert.True(t, result.IsActive)
		assert.True(t, result.IsOnTrial)
	})

	t.Run("subscriber", func(t *testing.T) {
		user := testutil.TestUser(t, db, testutil.WithTrialEnd(time.Now().AddDate(0, 0, -30)))
		testutil.TestSubscription(t, db, user.ID)

		result, err := svc.GetEntitlement(user.ID)
		require.NoError(t, err)
		assert.True(t, result.IsActive)
		assert.True(t, result.HasPaidSubscription)
		assert.Equal(t, PlanLabelPremium, result.PlanLabel)
	})

	t.Run("latest active row wins", func(t *testing.T) {
		user := testutil.TestUser(t, db, testutil.WithTrialEnd(time.Now().AddDate(0, 0, -30)))
		testutil.TestSubscription(t, db, user.ID,
			testutil.WithPlan("premium", 99),
			testutil.WithSubscriptionStatus(model.SubscriptionExpired))
		testutil.TestSubscription(t, db, user.ID, testutil.WithPlan("pro", 79))

		result, err := svc.GetEntitlement(user.ID)
		require.NoError(t, err)
		assert.Equal(t, PlanLabelPro, result.PlanLabel)
	})

	t.Run("lapsed everything blocks writes", func(t *testing.T) {
		user := testutil.TestUser(t, db, testutil.WithTrialEnd(time.Now().AddDate(0, 0, -30)))

		active, err := svc.IsActive(user.ID)
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("courtesy grant reopens access", func(t *testing.T) {
		user := testutil.TestUser(t, db, testutil.WithTrialEnd(time.Now().AddDate(0, 0, -30)))
		testutil.TestCourtesy(t, db, user.ID, nil)

		result, err := svc.GetEntitlement(user.ID)
		require.NoError(t, err)
		assert.True(t, result.IsActive)
		assert.True(t, result.IsCourtesy)
	})

	t.Run("expired courtesy loads but resolves inactive", func(t *testing.T) {
		user := testutil.TestUser(t, db, testutil.WithTrialEnd(time.Now().AddDate(0, 0, -30)))
		testutil.TestCourtesy(t, db, user.ID, futureTime(-time.Hour))

		active, err := svc.IsActive(user.ID)
		require.NoError(t, err)
		assert.False(t, active)
	})
}
