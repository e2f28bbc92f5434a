package service

import (
	"log"
	"time"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/repository"
)

const (
	PlanLabelTrial    = "Trial"
	PlanLabelCourtesy = "Courtesy"
	PlanLabelPremium  = "Premium"
	PlanLabelPro      = "Pro"
	PlanLabelBasic    = "Basic"
)

// EntitlementInput is the snapshot one resolution runs over. Subscription and
// Courtesy are nil when the corresponding record is absent -- or when its
// lookup failed, which is treated identically.
type EntitlementInput struct {
	Now              time.Time
	AccountCreatedAt time.Time
	TrialEndsAt      *time.Time
	Subscription     *model.Subscription
	Courtesy         *model.CourtesyAccess
}

// ResolveEntitlement computes the account's access category. Precedence is
// strict and the first match wins: active paid subscription (with the
// 100%-discount courtesy case and the missed-payment grace fallthrough),
// then the trial window, then the courtesy allow-list, then nothing.
func ResolveEntitlement(in EntitlementInput, billing *config.BillingConfig, trialDays int) dto.EntitlementResult {
	var result dto.EntitlementResult

	if sub := in.Subscription; sub != nil && sub.Status == model.SubscriptionActive {
		if sub.DiscountPercentage != nil && *sub.DiscountPercentage == 100 {
			// A fully discounted active row is courtesy, whatever the amount.
			result.IsCourtesy = true
			result.IsActive = true
			result.PlanLabel = PlanLabelCourtesy
			return result
		}

		grace := time.Duration(billing.GraceDays) * 24 * time.Hour
		lapsed := sub.NextBillingDate != nil && in.Now.Sub(*sub.NextBillingDate) > grace
		if !lapsed {
			result.HasPaidSubscription = true
			result.IsActive = true
			result.PlanLabel = planLabel(sub, billing)
			return result
		}
		// Payment lapsed beyond the grace window: continue as if no active
		// subscription existed.
	}

	trialEnd := in.AccountCreatedAt.Add(time.Duration(trialDays) * 24 * time.Hour)
	if in.TrialEndsAt != nil {
		trialEnd = *in.TrialEndsAt
	}
	if !in.Now.After(trialEnd) {
		result.IsOnTrial = true
		result.IsActive = true
		result.TrialDaysLeft = ceilDays(trialEnd.Sub(in.Now))
		result.PlanLabel = PlanLabelTrial
		return result
	}

	if g := in.Courtesy; g != nil {
		if g.ExpiresAt == nil || g.ExpiresAt.After(in.Now) {
			result.IsCourtesy = true
			result.IsActive = true
			result.PlanLabel = PlanLabelCourtesy
			return result
		}
	}

	return result
}

// planLabel prefers the row's explicit tier; rows written before tiers were
// recorded fall back to amount thresholds.
func planLabel(sub *model.Subscription, billing *config.BillingConfig) string {
	switch sub.PlanTier {
	case "premium":
		return PlanLabelPremium
	case "pro":
		return PlanLabelPro
	case "basic":
		return PlanLabelBasic
	}

	switch {
	case sub.PlanAmount >= billing.PremiumThreshold:
		return PlanLabelPremium
	case sub.PlanAmount >= billing.ProThreshold:
		return PlanLabelPro
	default:
		return PlanLabelBasic
	}
}

func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}

type EntitlementService struct {
	userRepo     *repository.UserRepository
	subRepo      *repository.SubscriptionRepository
	courtesyRepo *repository.CourtesyRepository
	cfg          *config.Config
}

func NewEntitlementService(
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	courtesyRepo *repository.CourtesyRepository,
	cfg *config.Config,
) *EntitlementService {
	return &EntitlementService{
		userRepo:     userRepo,
		subRepo:      subRepo,
		courtesyRepo: courtesyRepo,
		cfg:          cfg,
	}
}

// GetEntitlement resolves the current access for a user. A failed subscription
// or courtesy lookup is logged and treated as record-absent so a transient
// store error never blanks the account screen.
func (s *EntitlementService) GetEntitlement(userID int64) (*dto.EntitlementResult, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	in := EntitlementInput{
		Now:              time.Now(),
		AccountCreatedAt: user.CreatedAt,
		TrialEndsAt:      user.TrialEndsAt,
	}

	sub, err := s.subRepo.GetLatestActive(userID)
	if err == nil {
		in.Subscription = sub
	} else if !isNotFound(err) {
		log.Printf("Entitlement: subscription lookup failed for user %d: %v", userID, err)
	}

	grant, err := s.courtesyRepo.GetByUser(userID)
	if err == nil {
		in.Courtesy = grant
	} else if !isNotFound(err) {
		log.Printf("Entitlement: courtesy lookup failed for user %d: %v", userID, err)
	}

	result := ResolveEntitlement(in, &s.cfg.Billing, s.cfg.Trial.Days)
	return &result, nil
}

// IsActive is the boolean gate used by the write-path middleware.
func (s *EntitlementService) IsActive(userID int64) (bool, error) {
	result, err := s.GetEntitlement(userID)
	if err != nil {
		return false, err
	}
	return result.IsActive, nil
}
